package arena_errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

const (
	CodeUniqueConstraint     = "23505"
	CodeForeignKeyConstraint = "23503"
)

var (
	ErrInternal       = errors.New("internal service error. please try again later")
	ErrInvalidRequest = errors.New("invalid request")
	ErrValidation     = errors.New("validation failed")
	ErrUnAuthorized   = errors.New("user not allowed to perform this action")
	ErrNotFound       = errors.New("entity not found")
	ErrComponentStart = errors.New("cannot start component")

	ErrContestNotFound = fmt.Errorf("%w, contest not found", ErrNotFound)
	ErrProblemNotFound = fmt.Errorf("%w, problem not found", ErrNotFound)

	ErrStateConflict       = errors.New("state conflict")
	ErrContestNotAttended  = &stateError{msg: "contest not attended"}
	ErrContestNotLive      = &stateError{msg: "contest is not live"}
	ErrProblemNotInContest = &stateError{msg: "problem is not part of the contest"}
)

// stateError matches itself and ErrStateConflict with errors.Is
type stateError struct {
	msg string
}

func (e *stateError) Error() string {
	return e.msg
}

func (e *stateError) Is(target error) bool {
	return target == ErrStateConflict
}

func HandleDBErrors(
	err error,
	errMsgs map[string]map[string]string,
	contextMessage string,
) error {
	if errors.Is(err, pgx.ErrNoRows) {
		log.Warn(fmt.Sprintf("%s, %v", contextMessage, ErrNotFound))
		return fmt.Errorf("%w, %s", ErrNotFound, contextMessage)
	}

	// assume its an internal error first
	wrapped := fmt.Errorf(
		"%w, %s, %w",
		ErrInternal,
		contextMessage,
		err,
	)

	// check if its a pg error
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		log.Error(wrapped)
		return wrapped
	}

	if errMsgs == nil {
		log.Warnf("got null errMsgs")
		log.Error(wrapped)
		return wrapped
	}

	switch pgErr.Code {
	case CodeForeignKeyConstraint:
		return handleConstraintError(pgErr, errMsgs[CodeForeignKeyConstraint], "foreign key")
	case CodeUniqueConstraint:
		return handleConstraintError(pgErr, errMsgs[CodeUniqueConstraint], "unique key")
	}

	// unknown error
	log.Error(wrapped)
	return wrapped
}

func handleConstraintError(
	pgErr *pgconn.PgError,
	msgs map[string]string,
	kind string,
) error {
	msg, ok := msgs[pgErr.ConstraintName]
	if !ok {
		log.Warnf(
			"unknown %s violation, %s",
			kind,
			pgErr.ConstraintName,
		)
		msg = pgErr.Detail
	}
	err := fmt.Errorf(
		"%w, %s",
		ErrInvalidRequest,
		msg,
	)
	log.Error(err)
	return err
}
