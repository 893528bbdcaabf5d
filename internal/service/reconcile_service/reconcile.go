package reconcile_service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/service/submission_service"
	"golang.org/x/sync/errgroup"
)

var logger = logrus.WithField("from", "reconcile service")

// ReconcileAttendance recomputes contests.attend of a domain from the
// attended statuses. Every contest is reset to zero first, so contests that
// lost all attendees end at zero. Running it twice leaves the same counts.
func (r *ReconcileService) ReconcileAttendance(
	ctx context.Context,
	domainID string,
) (PassResult, error) {
	result := PassResult{Pass: passAttendance}

	if err := r.DB.ResetContestAttend(ctx, domainID); err != nil {
		return result, wrapPassError(err, passAttendance, domainID, "cannot reset attend counters")
	}

	counts, err := r.DB.CountAttendeesByContest(ctx, domainID)
	if err != nil {
		return result, wrapPassError(err, passAttendance, domainID, "cannot count attendees")
	}
	result.Groups = len(counts)

	// an empty bulk is rejected by the store, there is nothing to set anyway
	if len(counts) == 0 {
		return result, nil
	}

	if err = r.DB.BulkSetContestAttend(ctx, domainID, counts); err != nil {
		return result, wrapPassError(err, passAttendance, domainID, "cannot write attend counters")
	}
	result.BulkWritten = true

	return result, nil
}

// ReconcileProblemCounts recomputes domain_users.num_problems from problem
// ownership, creating counter rows for owners that have none.
func (r *ReconcileService) ReconcileProblemCounts(
	ctx context.Context,
	domainID string,
) (PassResult, error) {
	result := PassResult{Pass: passProblemCount}

	if err := r.DB.ResetDomainUserProblemCounts(ctx, domainID); err != nil {
		return result, wrapPassError(err, passProblemCount, domainID, "cannot reset problem counters")
	}

	counts, err := r.DB.CountProblemsByOwner(ctx, domainID)
	if err != nil {
		return result, wrapPassError(err, passProblemCount, domainID, "cannot count problems by owner")
	}
	result.Groups = len(counts)

	if len(counts) == 0 {
		return result, nil
	}

	if err = r.DB.BulkUpsertDomainUserProblemCounts(ctx, domainID, counts); err != nil {
		return result, wrapPassError(err, passProblemCount, domainID, "cannot write problem counters")
	}
	result.BulkWritten = true

	return result, nil
}

// SyncPendingSubmissions brings status entries in line with the contest
// records they summarize. It links records that never made it into their
// submitter's status and repairs entries left behind by a failed status
// write: a stale latest record, a short submit count or a missed verdict.
// Entries are only ever moved forward, so running alongside live
// submissions neither double counts nor rolls one back.
func (r *ReconcileService) SyncPendingSubmissions(
	ctx context.Context,
	domainID string,
) (PassResult, error) {
	result := PassResult{Pass: passSync}

	unsynced, err := r.DB.GetUnsyncedContestSubmissions(
		ctx,
		domainID,
		int16(submission_service.VerdictAccepted),
	)
	if err != nil {
		return result, wrapPassError(err, passSync, domainID, "cannot get unsynced submissions")
	}
	result.Groups = len(unsynced)

	for _, u := range unsynced {
		if err = r.syncSubmission(ctx, domainID, u); err != nil {
			return result, err
		}
		result.BulkWritten = true
	}

	return result, nil
}

func (r *ReconcileService) syncSubmission(
	ctx context.Context,
	domainID string,
	u database.UnsyncedSubmission,
) error {
	if err := r.DB.EnsureContestStatus(ctx, domainID, u.ContestID, u.UserID); err != nil {
		return wrapPassError(
			err, passSync, domainID,
			fmt.Sprintf("cannot ensure status of user %v in contest %v", u.UserID, u.ContestID),
		)
	}

	written, err := r.DB.SyncProblemStatus(ctx, database.SyncProblemStatusParams{
		DomainID:    domainID,
		ContestID:   u.ContestID,
		UserID:      u.UserID,
		ProblemID:   u.ProblemID,
		RecordID:    u.RecordID,
		Accepted:    submission_service.Verdict(u.Verdict) == submission_service.VerdictAccepted,
		Score:       u.Score,
		SubmitCount: u.SubmitCount,
	})
	if err != nil {
		return wrapPassError(
			err, passSync, domainID,
			fmt.Sprintf("cannot sync record %v", u.RecordID),
		)
	}

	// not written means a live submission got there first
	if written {
		logger.WithFields(logrus.Fields{
			"domain_id":    domainID,
			"contest_id":   u.ContestID,
			"problem_id":   u.ProblemID,
			"record_id":    u.RecordID,
			"submit_count": u.SubmitCount,
		}).Info("synced pending submission")
	}
	return nil
}

// RunDomain runs every pass of a domain concurrently. The passes touch
// disjoint tables, a failing pass does not stop the others and is retried
// on the next run.
func (r *ReconcileService) RunDomain(
	ctx context.Context,
	domainID string,
) ([]PassResult, error) {
	passes := []func(context.Context, string) (PassResult, error){
		r.ReconcileAttendance,
		r.ReconcileProblemCounts,
		r.SyncPendingSubmissions,
	}

	var (
		mu      sync.Mutex
		results = make([]PassResult, len(passes))
		errs    []error
	)

	var g errgroup.Group
	for i, pass := range passes {
		g.Go(func() error {
			res, err := pass(ctx, domainID)
			mu.Lock()
			defer mu.Unlock()
			results[i] = res
			if err != nil {
				errs = append(errs, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return results, fmt.Errorf(
			"%w, %v of %v passes failed for domain %s, first: %w",
			arena_errors.ErrInternal,
			len(errs),
			len(passes),
			domainID,
			errs[0],
		)
	}

	logger.WithFields(logrus.Fields{
		"domain_id": domainID,
		"results":   results,
	}).Debug("reconciled domain")

	return results, nil
}

func wrapPassError(err error, pass string, domainID string, msg string) error {
	err = fmt.Errorf(
		"%w, %s pass of domain %s: %s, %w",
		arena_errors.ErrInternal,
		pass,
		domainID,
		msg,
		err,
	)
	logger.Error(err)
	return err
}
