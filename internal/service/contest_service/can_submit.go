package contest_service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"golang.org/x/sync/errgroup"
)

// CanSubmit runs the submission preconditions against one contest read, one
// status read and the given now. The first failing check decides the error:
// contest exists, problem belongs to it, user attended, contest is ongoing.
func (c *ContestService) CanSubmit(
	ctx context.Context,
	domainID string,
	contestID int64,
	userID uuid.UUID,
	problemID int32,
	now time.Time,
) (Contest, error) {
	contest, err := c.GetContestByID(ctx, domainID, contestID)
	if err != nil {
		return Contest{}, err
	}

	if !contest.HasProblem(problemID) {
		c.getLogger().Warnf(
			"user %v tried to submit solution to problem with id %v that doesn't exist in contest with id %v",
			userID,
			problemID,
			contestID,
		)
		return Contest{}, fmt.Errorf(
			"%w, problem %v is not part of contest %v",
			arena_errors.ErrProblemNotInContest,
			problemID,
			contestID,
		)
	}

	status, err := c.getAttendStatus(ctx, domainID, contestID, userID)
	if err != nil {
		return Contest{}, err
	}
	if !status.Attended() {
		c.getLogger().Warnf(
			"user %v tried to submit solution to contest with id %v without attending",
			userID,
			contestID,
		)
		return Contest{}, fmt.Errorf(
			"%w, user has not attended contest %v",
			arena_errors.ErrContestNotAttended,
			contestID,
		)
	}

	if phase := contest.Phase(now); phase != PhaseOngoing {
		c.getLogger().Warnf(
			"user %v tried to submit solution to contest with id %v while it is %v",
			userID,
			contestID,
			phase,
		)
		return Contest{}, fmt.Errorf(
			"%w, contest %v is %v",
			arena_errors.ErrContestNotLive,
			contestID,
			phase,
		)
	}

	return contest, nil
}

// CanShowLiveRecords reports whether records of the contest may be shown to
// the user. Everyone sees them once the contest is done, scoreboard viewers
// see them live.
func (c *ContestService) CanShowLiveRecords(
	ctx context.Context,
	contest Contest,
	userID uuid.UUID,
	now time.Time,
) (bool, error) {
	if contest.Phase(now) == PhaseDone {
		return true, nil
	}
	if userID == uuid.Nil {
		return false, nil
	}
	return c.UserServiceConfig.CanViewScoreboard(ctx, contest.DomainID, userID)
}

// CanViewProblem gates a contest problem page. Until the contest is done
// only attendees may open its problems, and only while it is running.
func (c *ContestService) CanViewProblem(
	ctx context.Context,
	domainID string,
	contestID int64,
	problemID int32,
	userID uuid.UUID,
) (Contest, error) {
	now := c.Now()

	contest, err := c.GetContestByID(ctx, domainID, contestID)
	if err != nil {
		return Contest{}, err
	}

	if !contest.HasProblem(problemID) {
		return Contest{}, fmt.Errorf(
			"%w, problem %v is not part of contest %v",
			arena_errors.ErrProblemNotInContest,
			problemID,
			contestID,
		)
	}

	phase := contest.Phase(now)
	if phase == PhaseDone {
		return contest, nil
	}

	status, err := c.getAttendStatus(ctx, domainID, contestID, userID)
	if err != nil {
		return Contest{}, err
	}
	if !status.Attended() {
		c.getLogger().Warnf(
			"user %v tried to view problem %v of contest %v without attending",
			userID,
			problemID,
			contestID,
		)
		return Contest{}, fmt.Errorf(
			"%w, user has not attended contest %v",
			arena_errors.ErrContestNotAttended,
			contestID,
		)
	}
	if phase != PhaseOngoing {
		return Contest{}, fmt.Errorf(
			"%w, contest %v is %v",
			arena_errors.ErrContestNotLive,
			contestID,
			phase,
		)
	}

	return contest, nil
}

// GetContestDetail loads the contest and the caller's status concurrently,
// then the contest's problems in one batch. Record ids in the detail are
// cleared unless records may be shown.
func (c *ContestService) GetContestDetail(
	ctx context.Context,
	domainID string,
	contestID int64,
	userID uuid.UUID,
) (ContestDetail, error) {
	now := c.Now()

	var (
		contest Contest
		status  *ContestStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contest, err = c.GetContestByID(gctx, domainID, contestID)
		return err
	})
	if userID != uuid.Nil {
		g.Go(func() error {
			var err error
			status, err = c.GetStatus(gctx, domainID, contestID, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return ContestDetail{}, err
	}

	showRecords, err := c.CanShowLiveRecords(ctx, contest, userID, now)
	if err != nil {
		return ContestDetail{}, err
	}

	// problems deleted since the contest was created are simply absent
	problems, err := c.ProblemServiceConfig.GetProblemsByIDs(ctx, domainID, contest.Pids)
	if err != nil {
		return ContestDetail{}, err
	}

	if status != nil && !showRecords {
		for pid, ps := range status.Detail {
			ps.RecordID = uuid.Nil
			status.Detail[pid] = ps
		}
	}

	return ContestDetail{
		Contest:     contest,
		Phase:       contest.Phase(now),
		Status:      status,
		Attended:    status.Attended(),
		ShowRecords: showRecords,
		Problems:    problems,
	}, nil
}

// GetScoreboardStatuses returns the statuses of the given users for a
// scoreboard, only when the viewer may see live records.
func (c *ContestService) GetScoreboardStatuses(
	ctx context.Context,
	domainID string,
	contestID int64,
	viewerID uuid.UUID,
	userIDs []uuid.UUID,
) (map[uuid.UUID]ContestStatus, error) {
	now := c.Now()

	contest, err := c.GetContestByID(ctx, domainID, contestID)
	if err != nil {
		return nil, err
	}

	show, err := c.CanShowLiveRecords(ctx, contest, viewerID, now)
	if err != nil {
		return nil, err
	}
	if !show {
		c.getLogger().Warnf(
			"user %v tried to view statuses of contest %v before it ended",
			viewerID,
			contestID,
		)
		return nil, fmt.Errorf(
			"%w, statuses of contest %v are hidden until it ends",
			arena_errors.ErrUnAuthorized,
			contestID,
		)
	}

	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	unique := make([]uuid.UUID, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	return c.GetStatusBatch(ctx, domainID, contestID, unique)
}
