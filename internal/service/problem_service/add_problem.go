package problem_service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/user_service"
)

func (p *ProblemService) AddProblem(
	ctx context.Context,
	domainID string,
	problemRequest ProblemInput,
) (Problem, error) {
	// get the user details from claims
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return Problem{}, err
	}

	// authorize (only managers can add problems)
	err = p.UserServiceConfig.AuthorizeUserRole(
		ctx, domainID, claims.UserId, user_service.RoleManager,
		fmt.Sprintf(
			"user %s tried for manager access to add a problem in domain %s",
			claims.UserName,
			domainID,
		),
	)
	if err != nil {
		return Problem{}, err
	}

	// validate problem
	if err = service.ValidateInput(problemRequest); err != nil {
		return Problem{}, err
	}

	dbProblem, err := p.DB.InsertProblem(ctx, database.InsertProblemParams{
		DomainID: domainID,
		Title:    problemRequest.Title,
		OwnerUID: claims.UserId,
	})
	if err != nil {
		return Problem{}, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot insert problem %q into domain %s", problemRequest.Title, domainID),
		)
	}

	log.WithFields(log.Fields{
		"domain_id":  domainID,
		"problem_id": dbProblem.DocID,
		"owner":      claims.UserName,
	}).Info("problem added")

	return dbProblemToServiceProblem(dbProblem), nil
}
