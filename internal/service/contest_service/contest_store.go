package contest_service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/user_service"
)

func (c *ContestService) Start() {
	for _, field := range []struct {
		field any
		name  string
	}{
		{c.DB, "database"}, {c.UserServiceConfig, "user service"},
		{c.ProblemServiceConfig, "problem service"},
	} {
		if field.field == nil {
			panic(fmt.Sprintf("contest service expects non-nil %v", field.name))
		}
	}

	c.logger = logrus.WithField("from", "contest service")
	c.logger.Info("initialized contest service")
}

func (c *ContestService) getLogger() *logrus.Entry {
	if c.logger == nil {
		return logrus.WithField("from", "contest service")
	}
	return c.logger
}

func validateRule(rule Rule) error {
	if _, ok := contestRules[rule]; !ok {
		return fmt.Errorf(
			"%w, unknown contest rule %v",
			arena_errors.ErrValidation,
			rule,
		)
	}
	return nil
}

func (c *ContestService) validateContest(
	ctx context.Context,
	domainID string,
	contest ContestInput,
) error {
	if err := service.ValidateInput(contest); err != nil {
		return err
	}

	if err := validateRule(contest.Rule); err != nil {
		return err
	}

	// every problem must exist in the domain at the time of writing
	return c.ProblemServiceConfig.ValidateProblemIDs(ctx, domainID, contest.Pids)
}

func (c *ContestService) CreateContest(
	ctx context.Context,
	domainID string,
	contest ContestInput,
) (int64, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return 0, err
	}

	// authorize
	err = c.UserServiceConfig.AuthorizeUserRole(
		ctx, domainID, claims.UserId, user_service.RoleManager,
		fmt.Sprintf(
			"user %s tried for manager access to create a contest in domain %s",
			claims.UserName,
			domainID,
		),
	)
	if err != nil {
		return 0, err
	}

	if err = c.validateContest(ctx, domainID, contest); err != nil {
		return 0, err
	}

	pids := contest.Pids
	if pids == nil {
		pids = []int32{}
	}

	dbContest, err := c.DB.CreateContest(ctx, database.CreateContestParams{
		DomainID: domainID,
		Title:    contest.Title,
		Slug:     slug.Make(contest.Title),
		Rule:     int16(contest.Rule),
		BeginAt:  contest.BeginAt.UTC(),
		EndAt:    contest.EndAt.UTC(),
		Pids:     pids,
		OwnerUID: claims.UserId,
	})
	if err != nil {
		return 0, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot create contest %q in domain %s", contest.Title, domainID),
		)
	}

	c.getLogger().WithFields(logrus.Fields{
		"domain_id":  domainID,
		"contest_id": dbContest.DocID,
		"owner":      claims.UserName,
	}).Info("contest created")

	return dbContest.DocID, nil
}

func (c *ContestService) GetContestByID(
	ctx context.Context,
	domainID string,
	contestID int64,
) (Contest, error) {
	dbContest, err := c.DB.GetContestByID(ctx, domainID, contestID)
	if err != nil {
		err = arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot get contest with id %v in domain %s", contestID, domainID),
		)
		if errors.Is(err, arena_errors.ErrNotFound) {
			return Contest{}, fmt.Errorf(
				"%w, no contest exist with id %v",
				arena_errors.ErrContestNotFound,
				contestID,
			)
		}
		return Contest{}, err
	}

	return dbContestToServiceContest(dbContest), nil
}

// ListContests pages through a domain's contests newest first. Ordering is
// by contest id, so pages stay stable while contests are being created.
func (c *ContestService) ListContests(
	ctx context.Context,
	request ListContestsRequest,
) (ContestPage, error) {
	if request.Page == 0 {
		request.Page = 1
	}
	if request.PageSize == 0 {
		request.PageSize = ContestsPerPage
	}

	if err := service.ValidateInput(request); err != nil {
		return ContestPage{}, err
	}

	// rule 0 means all rules
	var rule *int16
	if request.Rule != 0 {
		if err := validateRule(request.Rule); err != nil {
			return ContestPage{}, err
		}
		r := int16(request.Rule)
		rule = &r
	}

	offset := (request.Page - 1) * request.PageSize

	dbContests, err := c.DB.GetContestsByFilters(ctx, database.GetContestsByFiltersParams{
		DomainID: request.DomainID,
		Rule:     rule,
		Limit:    request.PageSize,
		Offset:   offset,
	})
	if err != nil {
		err = fmt.Errorf(
			"%w, cannot fetch contests with filters from db, %w",
			arena_errors.ErrInternal,
			err,
		)
		c.getLogger().WithField("filters", request).Error(err)
		return ContestPage{}, err
	}

	total, err := c.DB.CountContestsByFilters(ctx, request.DomainID, rule)
	if err != nil {
		err = fmt.Errorf(
			"%w, cannot count contests with filters in db, %w",
			arena_errors.ErrInternal,
			err,
		)
		c.getLogger().WithField("filters", request).Error(err)
		return ContestPage{}, err
	}

	contests := make([]Contest, 0, len(dbContests))
	for _, dbContest := range dbContests {
		contests = append(contests, dbContestToServiceContest(dbContest))
	}

	return ContestPage{
		Contests:  contests,
		Total:     total,
		PageCount: service.PageCount(total, request.PageSize),
		Page:      request.Page,
	}, nil
}

// UpdateContest applies the patch on top of the current contest and
// validates the result as a whole. Problem statuses already recorded for
// pids that get removed are kept.
func (c *ContestService) UpdateContest(
	ctx context.Context,
	domainID string,
	contestID int64,
	patch ContestPatch,
) (Contest, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return Contest{}, err
	}

	previous, err := c.GetContestByID(ctx, domainID, contestID)
	if err != nil {
		return Contest{}, err
	}

	// authorize
	err = c.UserServiceConfig.AuthorizeCreatorAccess(
		ctx,
		domainID,
		previous.OwnerUID,
		claims.UserId,
		fmt.Sprintf(
			"user %s tried to update contest with id %v",
			claims.UserName,
			contestID,
		),
	)
	if err != nil {
		return Contest{}, err
	}

	merged := ContestInput{
		Title:   previous.Title,
		Rule:    previous.Rule,
		BeginAt: previous.BeginAt,
		EndAt:   previous.EndAt,
		Pids:    previous.Pids,
	}
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Rule != nil {
		merged.Rule = *patch.Rule
	}
	if patch.BeginAt != nil {
		merged.BeginAt = *patch.BeginAt
	}
	if patch.EndAt != nil {
		merged.EndAt = *patch.EndAt
	}
	if patch.Pids != nil {
		merged.Pids = *patch.Pids
		if merged.Pids == nil {
			merged.Pids = []int32{}
		}
	}

	if err = c.validateContest(ctx, domainID, merged); err != nil {
		return Contest{}, err
	}

	dbContest, err := c.DB.UpdateContest(ctx, database.UpdateContestParams{
		DomainID: domainID,
		DocID:    contestID,
		Title:    merged.Title,
		Slug:     slug.Make(merged.Title),
		Rule:     int16(merged.Rule),
		BeginAt:  merged.BeginAt.UTC(),
		EndAt:    merged.EndAt.UTC(),
		Pids:     merged.Pids,
	})
	if err != nil {
		return Contest{}, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot update contest with id %v in domain %s", contestID, domainID),
		)
	}

	c.getLogger().WithFields(logrus.Fields{
		"domain_id":  domainID,
		"contest_id": contestID,
		"user":       claims.UserName,
	}).Info("contest updated")

	return dbContestToServiceContest(dbContest), nil
}
