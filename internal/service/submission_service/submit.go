package submission_service

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/contest_service"
)

// Submit creates a contest record for the caller and links it into their
// contest status. Nothing is written unless every contest check passes.
func (s *SubmissionService) Submit(
	ctx context.Context,
	req SubmitRequest,
) (uuid.UUID, error) {
	// get user from claims
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	if err = service.ValidateInput(req); err != nil {
		return uuid.Nil, err
	}
	if !slices.Contains(supportedLanguages, req.Lang) {
		return uuid.Nil, fmt.Errorf(
			"%w, language %q is not supported",
			arena_errors.ErrValidation,
			req.Lang,
		)
	}

	// one now for every check of this submission
	now := s.ContestService.Now()

	contest, err := s.ContestService.CanSubmit(
		ctx,
		req.DomainID,
		req.ContestID,
		claims.UserId,
		req.ProblemID,
		now,
	)
	if err != nil {
		return uuid.Nil, err
	}

	showRecord, err := s.ContestService.CanShowLiveRecords(ctx, contest, claims.UserId, now)
	if err != nil {
		return uuid.Nil, err
	}

	contestID := contest.ID
	record, err := s.Records.Create(ctx, CreateRecordParams{
		DomainID:  req.DomainID,
		ProblemID: req.ProblemID,
		Type:      RecordTypeSubmission,
		UserID:    claims.UserId,
		Lang:      req.Lang,
		Code:      req.Code,
		ContestID: &contestID,
		Hidden:    !showRecord,
	})
	if err != nil {
		return uuid.Nil, err
	}

	_, err = s.ContestService.RecordSubmission(ctx, contest_service.RecordSubmissionParams{
		DomainID:  req.DomainID,
		ContestID: contest.ID,
		UserID:    claims.UserId,
		ProblemID: req.ProblemID,
		RecordID:  record.ID,
		Accepted:  false,
		Score:     0,
	})
	if err != nil {
		// the record is already durable, the reconciler links it later
		s.getLogger().WithFields(logrus.Fields{
			"record_id":  record.ID,
			"contest_id": contest.ID,
			"problem_id": req.ProblemID,
			"user":       claims.UserName,
		}).Errorf("record created but contest status not updated, %v", err)
		return record.ID, nil
	}

	s.getLogger().WithFields(logrus.Fields{
		"record_id":  record.ID,
		"contest_id": contest.ID,
		"problem_id": req.ProblemID,
		"user":       claims.UserName,
	}).Debug("submission recorded")

	return record.ID, nil
}
