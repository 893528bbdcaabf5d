package submission_service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/contest_service"
	"github.com/tcp_snm/arena/internal/service/user_service"
)

// ApplyJudgeVerdict stores a judge's final verdict on the record and, for
// contest records, on the submitter's status if the record is still their
// latest for the problem.
func (s *SubmissionService) ApplyJudgeVerdict(
	ctx context.Context,
	recordID uuid.UUID,
	req VerdictRequest,
) (Record, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return Record{}, err
	}

	if err = service.ValidateInput(req); err != nil {
		return Record{}, err
	}
	if !req.Verdict.IsFinal() {
		return Record{}, fmt.Errorf(
			"%w, %v is not a final verdict",
			arena_errors.ErrValidation,
			req.Verdict,
		)
	}

	record, err := s.Records.Get(ctx, recordID)
	if err != nil {
		return Record{}, err
	}

	// authorize
	err = s.UserService.AuthorizeUserRole(
		ctx, record.DomainID, claims.UserId, user_service.RoleJudge,
		fmt.Sprintf(
			"user %s tried for judge access to set verdict of record %v",
			claims.UserName,
			recordID,
		),
	)
	if err != nil {
		return Record{}, err
	}

	record, err = s.Records.UpdateVerdict(ctx, recordID, req.Verdict, req.Score)
	if err != nil {
		return Record{}, err
	}

	if record.ContestID == nil {
		return record, nil
	}

	applied, err := s.ContestService.ApplyVerdict(ctx, contest_service.RecordSubmissionParams{
		DomainID:  record.DomainID,
		ContestID: *record.ContestID,
		UserID:    record.UserID,
		ProblemID: record.ProblemID,
		RecordID:  record.ID,
		Accepted:  record.Verdict == VerdictAccepted,
		Score:     record.Score,
	})
	if err != nil {
		return Record{}, err
	}

	s.getLogger().WithFields(logrus.Fields{
		"record_id":  record.ID,
		"contest_id": *record.ContestID,
		"verdict":    record.Verdict.String(),
		"applied":    applied,
	}).Debug("judge verdict received")

	return record, nil
}

// GetRecord returns a record to its owner, or to anyone once the contest
// allows records to be shown.
func (s *SubmissionService) GetRecord(
	ctx context.Context,
	recordID uuid.UUID,
) (Record, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return Record{}, err
	}

	record, err := s.Records.Get(ctx, recordID)
	if err != nil {
		return Record{}, err
	}

	if record.UserID == claims.UserId || !record.Hidden || record.ContestID == nil {
		return record, nil
	}

	contest, err := s.ContestService.GetContestByID(ctx, record.DomainID, *record.ContestID)
	if err != nil {
		return Record{}, err
	}
	show, err := s.ContestService.CanShowLiveRecords(
		ctx, contest, claims.UserId, s.ContestService.Now(),
	)
	if err != nil {
		return Record{}, err
	}
	if !show {
		s.getLogger().Warnf(
			"user %s tried to view hidden record %v of contest %v",
			claims.UserName,
			recordID,
			contest.ID,
		)
		return Record{}, arena_errors.ErrUnAuthorized
	}

	// code stays with its author
	record.Code = ""
	return record, nil
}

// ListUserProblemRecords returns the caller's most recent records to a
// contest problem, under the same checks as a submission. The list is empty
// while the contest keeps records hidden from the caller.
func (s *SubmissionService) ListUserProblemRecords(
	ctx context.Context,
	domainID string,
	contestID int64,
	problemID int32,
) ([]Record, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	now := s.ContestService.Now()
	contest, err := s.ContestService.CanSubmit(ctx, domainID, contestID, claims.UserId, problemID, now)
	if err != nil {
		return nil, err
	}

	show, err := s.ContestService.CanShowLiveRecords(ctx, contest, claims.UserId, now)
	if err != nil {
		return nil, err
	}
	if !show {
		return []Record{}, nil
	}

	return s.Records.ListUserContestProblem(ctx, ListRecordsParams{
		DomainID:  domainID,
		ContestID: contestID,
		UserID:    claims.UserId,
		ProblemID: problemID,
		Limit:     RecentRecordsLimit,
	})
}
