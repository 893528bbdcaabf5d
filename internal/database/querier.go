package database

import (
	"context"

	"github.com/google/uuid"
)

type Querier interface {
	// contests
	CreateContest(ctx context.Context, arg CreateContestParams) (Contest, error)
	GetContestByID(ctx context.Context, domainID string, docID int64) (Contest, error)
	GetContestsByFilters(ctx context.Context, arg GetContestsByFiltersParams) ([]Contest, error)
	CountContestsByFilters(ctx context.Context, domainID string, rule *int16) (int64, error)
	UpdateContest(ctx context.Context, arg UpdateContestParams) (Contest, error)
	GetDomainIDs(ctx context.Context) ([]string, error)

	// contest status
	GetContestStatus(ctx context.Context, domainID string, contestID int64, userID uuid.UUID) (ContestStatus, error)
	GetContestStatusesByUsers(ctx context.Context, domainID string, contestID int64, userIDs []uuid.UUID) ([]ContestStatus, error)
	GetContestStatusesByContests(ctx context.Context, domainID string, userID uuid.UUID, contestIDs []int64) ([]ContestStatus, error)
	GetProblemStatusesByUsers(ctx context.Context, domainID string, contestID int64, userIDs []uuid.UUID) ([]ContestProblemStatus, error)
	GetProblemStatusesByContests(ctx context.Context, domainID string, userID uuid.UUID, contestIDs []int64) ([]ContestProblemStatus, error)
	UpsertContestAttend(ctx context.Context, domainID string, contestID int64, userID uuid.UUID) (ContestStatus, error)
	EnsureContestStatus(ctx context.Context, domainID string, contestID int64, userID uuid.UUID) error
	UpsertProblemStatus(ctx context.Context, arg UpsertProblemStatusParams) (ContestProblemStatus, error)
	UpdateProblemStatusVerdict(ctx context.Context, arg UpdateProblemStatusVerdictParams) (int64, error)
	GetProblemStatus(ctx context.Context, domainID string, contestID int64, userID uuid.UUID, problemID int32) (ContestProblemStatus, error)
	SyncProblemStatus(ctx context.Context, arg SyncProblemStatusParams) (bool, error)

	// reconciliation
	ResetContestAttend(ctx context.Context, domainID string) error
	CountAttendeesByContest(ctx context.Context, domainID string) ([]ContestAttendCount, error)
	BulkSetContestAttend(ctx context.Context, domainID string, counts []ContestAttendCount) error
	ResetDomainUserProblemCounts(ctx context.Context, domainID string) error
	CountProblemsByOwner(ctx context.Context, domainID string) ([]OwnerProblemCount, error)
	BulkUpsertDomainUserProblemCounts(ctx context.Context, domainID string, counts []OwnerProblemCount) error
	GetUnsyncedContestSubmissions(ctx context.Context, domainID string, acceptedVerdict int16) ([]UnsyncedSubmission, error)
	GetDomainUser(ctx context.Context, domainID string, userID uuid.UUID) (DomainUser, error)

	// problems
	InsertProblem(ctx context.Context, arg InsertProblemParams) (Problem, error)
	GetProblemByID(ctx context.Context, domainID string, docID int32) (Problem, error)
	GetProblemsByIDs(ctx context.Context, domainID string, docIDs []int32) ([]Problem, error)

	// records
	InsertRecord(ctx context.Context, arg InsertRecordParams) (Record, error)
	GetRecordByID(ctx context.Context, id uuid.UUID) (Record, error)
	UpdateRecordVerdict(ctx context.Context, id uuid.UUID, verdict int16, score int32) (Record, error)
	ListUserContestProblemRecords(ctx context.Context, arg ListUserContestProblemRecordsParams) ([]Record, error)

	// users
	GetUserRoles(ctx context.Context, domainID string, userID uuid.UUID) ([]string, error)
}

var _ Querier = (*Queries)(nil)
