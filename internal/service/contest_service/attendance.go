package contest_service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/database"
)

// returns only the status row, without detail. nil when the user never
// attended nor submitted
func (c *ContestService) getAttendStatus(
	ctx context.Context,
	domainID string,
	contestID int64,
	userID uuid.UUID,
) (*ContestStatus, error) {
	dbStatus, err := c.DB.GetContestStatus(ctx, domainID, contestID, userID)
	if err != nil {
		err = arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot get status of user %v in contest %v", userID, contestID),
		)
		if errors.Is(err, arena_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &ContestStatus{
		ContestID: dbStatus.ContestID,
		UserID:    dbStatus.UserID,
		Attend:    dbStatus.Attend,
		Detail:    map[int32]ProblemStatus{},
	}, nil
}

func (c *ContestService) GetStatus(
	ctx context.Context,
	domainID string,
	contestID int64,
	userID uuid.UUID,
) (*ContestStatus, error) {
	status, err := c.getAttendStatus(ctx, domainID, contestID, userID)
	if err != nil || status == nil {
		return nil, err
	}

	dbProblemStatuses, err := c.DB.GetProblemStatusesByUsers(
		ctx, domainID, contestID, []uuid.UUID{userID},
	)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot get problem statuses of user %v in contest %v", userID, contestID),
		)
	}
	for _, ps := range dbProblemStatuses {
		status.Detail[ps.ProblemID] = dbProblemStatusToServiceStatus(ps)
	}

	return status, nil
}

// GetStatusBatch fetches the statuses of many users in one contest with two
// queries regardless of the number of users. Users without a status are
// absent from the result.
func (c *ContestService) GetStatusBatch(
	ctx context.Context,
	domainID string,
	contestID int64,
	userIDs []uuid.UUID,
) (map[uuid.UUID]ContestStatus, error) {
	res := make(map[uuid.UUID]ContestStatus, len(userIDs))
	if len(userIDs) == 0 {
		return res, nil
	}

	dbStatuses, err := c.DB.GetContestStatusesByUsers(ctx, domainID, contestID, userIDs)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot get statuses of %v users in contest %v", len(userIDs), contestID),
		)
	}
	for _, s := range dbStatuses {
		res[s.UserID] = ContestStatus{
			ContestID: s.ContestID,
			UserID:    s.UserID,
			Attend:    s.Attend,
			Detail:    map[int32]ProblemStatus{},
		}
	}
	if len(res) == 0 {
		return res, nil
	}

	dbProblemStatuses, err := c.DB.GetProblemStatusesByUsers(ctx, domainID, contestID, userIDs)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot get problem statuses of %v users in contest %v", len(userIDs), contestID),
		)
	}
	for _, ps := range dbProblemStatuses {
		status, ok := res[ps.UserID]
		if !ok {
			continue
		}
		status.Detail[ps.ProblemID] = dbProblemStatusToServiceStatus(ps)
	}

	return res, nil
}

// statuses of one user across many contests, used by contest listings
func (c *ContestService) GetStatusByContests(
	ctx context.Context,
	domainID string,
	userID uuid.UUID,
	contestIDs []int64,
) (map[int64]ContestStatus, error) {
	res := make(map[int64]ContestStatus, len(contestIDs))
	if len(contestIDs) == 0 {
		return res, nil
	}

	dbStatuses, err := c.DB.GetContestStatusesByContests(ctx, domainID, userID, contestIDs)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot get statuses of user %v in %v contests", userID, len(contestIDs)),
		)
	}
	for _, s := range dbStatuses {
		res[s.ContestID] = ContestStatus{
			ContestID: s.ContestID,
			UserID:    s.UserID,
			Attend:    s.Attend,
			Detail:    map[int32]ProblemStatus{},
		}
	}
	if len(res) == 0 {
		return res, nil
	}

	dbProblemStatuses, err := c.DB.GetProblemStatusesByContests(ctx, domainID, userID, contestIDs)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot get problem statuses of user %v in %v contests", userID, len(contestIDs)),
		)
	}
	for _, ps := range dbProblemStatuses {
		status, ok := res[ps.ContestID]
		if !ok {
			continue
		}
		status.Detail[ps.ProblemID] = dbProblemStatusToServiceStatus(ps)
	}

	return res, nil
}

// Attend marks the user as attending. It is a single upsert on the
// (domain, contest, user) key, so repeated or concurrent calls converge to
// one status with attend = 1.
func (c *ContestService) Attend(
	ctx context.Context,
	domainID string,
	contestID int64,
	userID uuid.UUID,
) (*ContestStatus, error) {
	now := c.Now()

	contest, err := c.GetContestByID(ctx, domainID, contestID)
	if err != nil {
		return nil, err
	}

	if contest.Phase(now) == PhaseDone {
		c.getLogger().Warnf(
			"user %v tried to attend contest with id %v after it ended",
			userID,
			contestID,
		)
		return nil, fmt.Errorf(
			"%w, contest %v has ended",
			arena_errors.ErrContestNotLive,
			contestID,
		)
	}

	dbStatus, err := c.DB.UpsertContestAttend(ctx, domainID, contestID, userID)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot mark user %v as attending contest %v", userID, contestID),
		)
	}

	c.getLogger().WithFields(logrus.Fields{
		"domain_id":  domainID,
		"contest_id": contestID,
		"user_id":    userID,
	}).Info("user attended contest")

	return &ContestStatus{
		ContestID: dbStatus.ContestID,
		UserID:    dbStatus.UserID,
		Attend:    dbStatus.Attend,
		Detail:    map[int32]ProblemStatus{},
	}, nil
}

// RecordSubmission links a submission into detail[pid]. The latest call for
// a (user, pid) decides rid, accepted and score while submit_count keeps
// growing. A record that is already linked is not counted again. Each pid is
// its own row, so submissions to different problems never contend.
func (c *ContestService) RecordSubmission(
	ctx context.Context,
	params RecordSubmissionParams,
) (ProblemStatus, error) {
	err := c.DB.EnsureContestStatus(ctx, params.DomainID, params.ContestID, params.UserID)
	if err != nil {
		return ProblemStatus{}, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot ensure status of user %v in contest %v", params.UserID, params.ContestID),
		)
	}

	dbProblemStatus, err := c.DB.UpsertProblemStatus(ctx, database.UpsertProblemStatusParams{
		DomainID:  params.DomainID,
		ContestID: params.ContestID,
		UserID:    params.UserID,
		ProblemID: params.ProblemID,
		RecordID:  params.RecordID,
		Accepted:  params.Accepted,
		Score:     params.Score,
	})
	if err != nil {
		return ProblemStatus{}, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf(
				"cannot record submission %v of user %v to problem %v in contest %v",
				params.RecordID,
				params.UserID,
				params.ProblemID,
				params.ContestID,
			),
		)
	}

	return dbProblemStatusToServiceStatus(dbProblemStatus), nil
}

// ApplyVerdict copies a judged record's verdict into detail[pid], but only
// while that record is still the latest one for the problem. It reports
// whether an entry was updated.
func (c *ContestService) ApplyVerdict(
	ctx context.Context,
	params RecordSubmissionParams,
) (bool, error) {
	rows, err := c.DB.UpdateProblemStatusVerdict(ctx, database.UpdateProblemStatusVerdictParams{
		DomainID:  params.DomainID,
		ContestID: params.ContestID,
		UserID:    params.UserID,
		ProblemID: params.ProblemID,
		RecordID:  params.RecordID,
		Accepted:  params.Accepted,
		Score:     params.Score,
	})
	if err != nil {
		return false, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot apply verdict of record %v in contest %v", params.RecordID, params.ContestID),
		)
	}

	if rows == 0 {
		c.getLogger().Debugf(
			"verdict of record %v not applied, it is no longer the latest for problem %v",
			params.RecordID,
			params.ProblemID,
		)
	}

	return rows > 0, nil
}
