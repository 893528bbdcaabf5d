package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const contestStatusColumns = `domain_id, contest_id, user_id, attend, created_at`

const problemStatusColumns = `domain_id, contest_id, user_id, problem_id, record_id, accepted, score, submit_count, updated_at`

func scanContestStatus(row rowScanner) (ContestStatus, error) {
	var i ContestStatus
	err := row.Scan(
		&i.DomainID,
		&i.ContestID,
		&i.UserID,
		&i.Attend,
		&i.CreatedAt,
	)
	return i, err
}

func scanProblemStatus(row rowScanner) (ContestProblemStatus, error) {
	var i ContestProblemStatus
	err := row.Scan(
		&i.DomainID,
		&i.ContestID,
		&i.UserID,
		&i.ProblemID,
		&i.RecordID,
		&i.Accepted,
		&i.Score,
		&i.SubmitCount,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) queryContestStatuses(ctx context.Context, query string, args ...any) ([]ContestStatus, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ContestStatus{}
	for rows.Next() {
		i, err := scanContestStatus(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) queryProblemStatuses(ctx context.Context, query string, args ...any) ([]ContestProblemStatus, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ContestProblemStatus{}
	for rows.Next() {
		i, err := scanProblemStatus(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getContestStatus = `
SELECT ` + contestStatusColumns + `
FROM contest_status
WHERE domain_id = $1 AND contest_id = $2 AND user_id = $3`

func (q *Queries) GetContestStatus(
	ctx context.Context,
	domainID string,
	contestID int64,
	userID uuid.UUID,
) (ContestStatus, error) {
	row := q.db.QueryRow(ctx, getContestStatus, domainID, contestID, userID)
	return scanContestStatus(row)
}

const getContestStatusesByUsers = `
SELECT ` + contestStatusColumns + `
FROM contest_status
WHERE domain_id = $1 AND contest_id = $2 AND user_id = ANY($3::UUID[])`

func (q *Queries) GetContestStatusesByUsers(
	ctx context.Context,
	domainID string,
	contestID int64,
	userIDs []uuid.UUID,
) ([]ContestStatus, error) {
	return q.queryContestStatuses(ctx, getContestStatusesByUsers, domainID, contestID, userIDs)
}

const getContestStatusesByContests = `
SELECT ` + contestStatusColumns + `
FROM contest_status
WHERE domain_id = $1 AND user_id = $2 AND contest_id = ANY($3::BIGINT[])`

func (q *Queries) GetContestStatusesByContests(
	ctx context.Context,
	domainID string,
	userID uuid.UUID,
	contestIDs []int64,
) ([]ContestStatus, error) {
	return q.queryContestStatuses(ctx, getContestStatusesByContests, domainID, userID, contestIDs)
}

const getProblemStatusesByUsers = `
SELECT ` + problemStatusColumns + `
FROM contest_problem_status
WHERE domain_id = $1 AND contest_id = $2 AND user_id = ANY($3::UUID[])`

func (q *Queries) GetProblemStatusesByUsers(
	ctx context.Context,
	domainID string,
	contestID int64,
	userIDs []uuid.UUID,
) ([]ContestProblemStatus, error) {
	return q.queryProblemStatuses(ctx, getProblemStatusesByUsers, domainID, contestID, userIDs)
}

const getProblemStatusesByContests = `
SELECT ` + problemStatusColumns + `
FROM contest_problem_status
WHERE domain_id = $1 AND user_id = $2 AND contest_id = ANY($3::BIGINT[])`

func (q *Queries) GetProblemStatusesByContests(
	ctx context.Context,
	domainID string,
	userID uuid.UUID,
	contestIDs []int64,
) ([]ContestProblemStatus, error) {
	return q.queryProblemStatuses(ctx, getProblemStatusesByContests, domainID, userID, contestIDs)
}

// attend only ever moves 0 -> 1
const upsertContestAttend = `
INSERT INTO contest_status (domain_id, contest_id, user_id, attend)
VALUES ($1, $2, $3, 1)
ON CONFLICT (domain_id, contest_id, user_id) DO UPDATE SET attend = 1
RETURNING ` + contestStatusColumns

func (q *Queries) UpsertContestAttend(
	ctx context.Context,
	domainID string,
	contestID int64,
	userID uuid.UUID,
) (ContestStatus, error) {
	row := q.db.QueryRow(ctx, upsertContestAttend, domainID, contestID, userID)
	return scanContestStatus(row)
}

const ensureContestStatus = `
INSERT INTO contest_status (domain_id, contest_id, user_id, attend)
VALUES ($1, $2, $3, 0)
ON CONFLICT (domain_id, contest_id, user_id) DO NOTHING`

func (q *Queries) EnsureContestStatus(
	ctx context.Context,
	domainID string,
	contestID int64,
	userID uuid.UUID,
) error {
	_, err := q.db.Exec(ctx, ensureContestStatus, domainID, contestID, userID)
	return err
}

// a record that is already linked, by an earlier attempt or by the sync
// pass, is not counted again
const upsertProblemStatus = `
INSERT INTO contest_problem_status
    (domain_id, contest_id, user_id, problem_id, record_id, accepted, score, submit_count, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, 1, now())
ON CONFLICT (domain_id, contest_id, user_id, problem_id) DO UPDATE
SET record_id = EXCLUDED.record_id,
    accepted = EXCLUDED.accepted,
    score = EXCLUDED.score,
    submit_count = contest_problem_status.submit_count + 1,
    updated_at = now()
WHERE contest_problem_status.record_id <> EXCLUDED.record_id
RETURNING ` + problemStatusColumns

type UpsertProblemStatusParams struct {
	DomainID  string
	ContestID int64
	UserID    uuid.UUID
	ProblemID int32
	RecordID  uuid.UUID
	Accepted  bool
	Score     int32
}

func (q *Queries) UpsertProblemStatus(ctx context.Context, arg UpsertProblemStatusParams) (ContestProblemStatus, error) {
	row := q.db.QueryRow(ctx, upsertProblemStatus,
		arg.DomainID,
		arg.ContestID,
		arg.UserID,
		arg.ProblemID,
		arg.RecordID,
		arg.Accepted,
		arg.Score,
	)
	ps, err := scanProblemStatus(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// the guard skipped the update, report the entry as it stands
		return q.GetProblemStatus(ctx, arg.DomainID, arg.ContestID, arg.UserID, arg.ProblemID)
	}
	return ps, err
}

const getProblemStatus = `
SELECT ` + problemStatusColumns + `
FROM contest_problem_status
WHERE domain_id = $1 AND contest_id = $2 AND user_id = $3 AND problem_id = $4`

func (q *Queries) GetProblemStatus(
	ctx context.Context,
	domainID string,
	contestID int64,
	userID uuid.UUID,
	problemID int32,
) (ContestProblemStatus, error) {
	row := q.db.QueryRow(ctx, getProblemStatus, domainID, contestID, userID, problemID)
	return scanProblemStatus(row)
}

// only the entry still pointing at the judged record is updated
const updateProblemStatusVerdict = `
UPDATE contest_problem_status
SET accepted = $6, score = $7, updated_at = now()
WHERE domain_id = $1 AND contest_id = $2 AND user_id = $3 AND problem_id = $4 AND record_id = $5`

type UpdateProblemStatusVerdictParams struct {
	DomainID  string
	ContestID int64
	UserID    uuid.UUID
	ProblemID int32
	RecordID  uuid.UUID
	Accepted  bool
	Score     int32
}

func (q *Queries) UpdateProblemStatusVerdict(ctx context.Context, arg UpdateProblemStatusVerdictParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateProblemStatusVerdict,
		arg.DomainID,
		arg.ContestID,
		arg.UserID,
		arg.ProblemID,
		arg.RecordID,
		arg.Accepted,
		arg.Score,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// the sync pass only moves an entry forward: a higher count, or the same
// record with a different verdict. A live submission that landed between
// the read and this write keeps its record and count
const syncProblemStatus = `
INSERT INTO contest_problem_status
    (domain_id, contest_id, user_id, problem_id, record_id, accepted, score, submit_count, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (domain_id, contest_id, user_id, problem_id) DO UPDATE
SET record_id = EXCLUDED.record_id,
    accepted = EXCLUDED.accepted,
    score = EXCLUDED.score,
    submit_count = EXCLUDED.submit_count,
    updated_at = now()
WHERE contest_problem_status.submit_count < EXCLUDED.submit_count
   OR (contest_problem_status.submit_count = EXCLUDED.submit_count
       AND contest_problem_status.record_id = EXCLUDED.record_id
       AND (contest_problem_status.accepted, contest_problem_status.score)
           IS DISTINCT FROM (EXCLUDED.accepted, EXCLUDED.score))`

type SyncProblemStatusParams struct {
	DomainID    string
	ContestID   int64
	UserID      uuid.UUID
	ProblemID   int32
	RecordID    uuid.UUID
	Accepted    bool
	Score       int32
	SubmitCount int32
}

// SyncProblemStatus reports whether the entry was written
func (q *Queries) SyncProblemStatus(ctx context.Context, arg SyncProblemStatusParams) (bool, error) {
	tag, err := q.db.Exec(ctx, syncProblemStatus,
		arg.DomainID,
		arg.ContestID,
		arg.UserID,
		arg.ProblemID,
		arg.RecordID,
		arg.Accepted,
		arg.Score,
		arg.SubmitCount,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
