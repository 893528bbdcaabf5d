package problem_service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tcp_snm/arena/internal/arena_errors"
)

func (p *ProblemService) GetProblemByID(
	ctx context.Context,
	domainID string,
	id int32,
) (Problem, error) {
	dbProblem, err := p.DB.GetProblemByID(ctx, domainID, id)
	if err != nil {
		err = arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch problem with id %v in domain %s", id, domainID),
		)
		if errors.Is(err, arena_errors.ErrNotFound) {
			return Problem{}, fmt.Errorf(
				"%w, no problem exist with id %v",
				arena_errors.ErrProblemNotFound,
				id,
			)
		}
		return Problem{}, err
	}

	return dbProblemToServiceProblem(dbProblem), nil
}

// fetches all the problems in a single query, missing ids are simply absent
func (p *ProblemService) GetProblemsByIDs(
	ctx context.Context,
	domainID string,
	ids []int32,
) (map[int32]Problem, error) {
	res := make(map[int32]Problem, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	dbProblems, err := p.DB.GetProblemsByIDs(ctx, domainID, ids)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch problems %v in domain %s", ids, domainID),
		)
	}

	for _, dbProblem := range dbProblems {
		res[dbProblem.DocID] = dbProblemToServiceProblem(dbProblem)
	}
	return res, nil
}

// ValidateProblemIDs fails with ErrProblemNotFound naming the first id
// that does not exist in the domain
func (p *ProblemService) ValidateProblemIDs(
	ctx context.Context,
	domainID string,
	ids []int32,
) error {
	problems, err := p.GetProblemsByIDs(ctx, domainID, ids)
	if err != nil {
		return err
	}

	missing := slices.IndexFunc(ids, func(id int32) bool {
		_, ok := problems[id]
		return !ok
	})
	if missing >= 0 {
		return fmt.Errorf(
			"%w, no problem exist with id %v in domain %s",
			arena_errors.ErrProblemNotFound,
			ids[missing],
			domainID,
		)
	}
	return nil
}
