package submission_service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/database"
)

// DBRecordService keeps records in the same postgres database as the
// contests
type DBRecordService struct {
	DB     database.Querier
	logger *logrus.Entry
}

func NewDBRecordService(db database.Querier) *DBRecordService {
	if db == nil {
		panic("record service expects non-nil database")
	}
	return &DBRecordService{
		DB:     db,
		logger: logrus.WithField("from", fromRecordService),
	}
}

func (r *DBRecordService) Create(
	ctx context.Context,
	params CreateRecordParams,
) (Record, error) {
	id, err := uuid.NewV7()
	if err != nil {
		err = fmt.Errorf("%w, cannot generate record id, %w", arena_errors.ErrInternal, err)
		r.logger.Error(err)
		return Record{}, err
	}

	dbRecord, err := r.DB.InsertRecord(ctx, database.InsertRecordParams{
		ID:         id,
		DomainID:   params.DomainID,
		ProblemID:  params.ProblemID,
		RecordType: int16(params.Type),
		UserID:     params.UserID,
		Lang:       params.Lang,
		Code:       params.Code,
		ContestID:  params.ContestID,
		Hidden:     params.Hidden,
	})
	if err != nil {
		return Record{}, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf(
				"cannot insert record of user %v to problem %v in domain %s",
				params.UserID,
				params.ProblemID,
				params.DomainID,
			),
		)
	}

	return dbRecordToServiceRecord(dbRecord), nil
}

func (r *DBRecordService) Get(ctx context.Context, recordID uuid.UUID) (Record, error) {
	dbRecord, err := r.DB.GetRecordByID(ctx, recordID)
	if err != nil {
		err = arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot get record with id %v", recordID),
		)
		if errors.Is(err, arena_errors.ErrNotFound) {
			return Record{}, fmt.Errorf(
				"%w, no record exist with id %v",
				arena_errors.ErrNotFound,
				recordID,
			)
		}
		return Record{}, err
	}

	return dbRecordToServiceRecord(dbRecord), nil
}

func (r *DBRecordService) UpdateVerdict(
	ctx context.Context,
	recordID uuid.UUID,
	verdict Verdict,
	score int32,
) (Record, error) {
	dbRecord, err := r.DB.UpdateRecordVerdict(ctx, recordID, int16(verdict), score)
	if err != nil {
		err = arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot update verdict of record %v", recordID),
		)
		if errors.Is(err, arena_errors.ErrNotFound) {
			return Record{}, fmt.Errorf(
				"%w, no record exist with id %v",
				arena_errors.ErrNotFound,
				recordID,
			)
		}
		return Record{}, err
	}

	return dbRecordToServiceRecord(dbRecord), nil
}

// ListUserContestProblem returns the newest records first
func (r *DBRecordService) ListUserContestProblem(
	ctx context.Context,
	params ListRecordsParams,
) ([]Record, error) {
	dbRecords, err := r.DB.ListUserContestProblemRecords(ctx, database.ListUserContestProblemRecordsParams{
		DomainID:  params.DomainID,
		ContestID: params.ContestID,
		UserID:    params.UserID,
		ProblemID: params.ProblemID,
		Limit:     params.Limit,
	})
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf(
				"cannot list records of user %v to problem %v in contest %v",
				params.UserID,
				params.ProblemID,
				params.ContestID,
			),
		)
	}

	records := make([]Record, 0, len(dbRecords))
	for _, dbRecord := range dbRecords {
		records = append(records, dbRecordToServiceRecord(dbRecord))
	}
	return records, nil
}
