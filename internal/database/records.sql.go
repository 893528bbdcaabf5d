package database

import (
	"context"

	"github.com/google/uuid"
)

const recordColumns = `id, domain_id, problem_id, record_type, user_id, lang, code, contest_id, hidden, verdict, score, created_at`

func scanRecord(row rowScanner) (Record, error) {
	var i Record
	err := row.Scan(
		&i.ID,
		&i.DomainID,
		&i.ProblemID,
		&i.RecordType,
		&i.UserID,
		&i.Lang,
		&i.Code,
		&i.ContestID,
		&i.Hidden,
		&i.Verdict,
		&i.Score,
		&i.CreatedAt,
	)
	return i, err
}

const insertRecord = `
INSERT INTO records (id, domain_id, problem_id, record_type, user_id, lang, code, contest_id, hidden)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + recordColumns

type InsertRecordParams struct {
	ID         uuid.UUID
	DomainID   string
	ProblemID  int32
	RecordType int16
	UserID     uuid.UUID
	Lang       string
	Code       string
	ContestID  *int64
	Hidden     bool
}

func (q *Queries) InsertRecord(ctx context.Context, arg InsertRecordParams) (Record, error) {
	row := q.db.QueryRow(ctx, insertRecord,
		arg.ID,
		arg.DomainID,
		arg.ProblemID,
		arg.RecordType,
		arg.UserID,
		arg.Lang,
		arg.Code,
		arg.ContestID,
		arg.Hidden,
	)
	return scanRecord(row)
}

const getRecordByID = `
SELECT ` + recordColumns + `
FROM records
WHERE id = $1`

func (q *Queries) GetRecordByID(ctx context.Context, id uuid.UUID) (Record, error) {
	row := q.db.QueryRow(ctx, getRecordByID, id)
	return scanRecord(row)
}

const updateRecordVerdict = `
UPDATE records
SET verdict = $2, score = $3
WHERE id = $1
RETURNING ` + recordColumns

func (q *Queries) UpdateRecordVerdict(ctx context.Context, id uuid.UUID, verdict int16, score int32) (Record, error) {
	row := q.db.QueryRow(ctx, updateRecordVerdict, id, verdict, score)
	return scanRecord(row)
}

// served by records_contest_idx
const listUserContestProblemRecords = `
SELECT ` + recordColumns + `
FROM records
WHERE domain_id = $1 AND contest_id = $2 AND user_id = $3 AND problem_id = $4
ORDER BY created_at DESC, id DESC
LIMIT $5`

type ListUserContestProblemRecordsParams struct {
	DomainID  string
	ContestID int64
	UserID    uuid.UUID
	ProblemID int32
	Limit     int32
}

func (q *Queries) ListUserContestProblemRecords(ctx context.Context, arg ListUserContestProblemRecordsParams) ([]Record, error) {
	rows, err := q.db.Query(ctx, listUserContestProblemRecords,
		arg.DomainID,
		arg.ContestID,
		arg.UserID,
		arg.ProblemID,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Record{}
	for rows.Next() {
		i, err := scanRecord(rows)
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

const getUserRoles = `
SELECT role_name
FROM user_roles
WHERE domain_id = $1 AND user_id = $2`

func (q *Queries) GetUserRoles(ctx context.Context, domainID string, userID uuid.UUID) ([]string, error) {
	rows, err := q.db.Query(ctx, getUserRoles, domainID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		items = append(items, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
