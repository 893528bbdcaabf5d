package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const contestColumns = `domain_id, doc_id, title, slug, rule, begin_at, end_at, pids, owner_uid, attend, created_at`

func scanContest(row rowScanner) (Contest, error) {
	var i Contest
	err := row.Scan(
		&i.DomainID,
		&i.DocID,
		&i.Title,
		&i.Slug,
		&i.Rule,
		&i.BeginAt,
		&i.EndAt,
		&i.Pids,
		&i.OwnerUID,
		&i.Attend,
		&i.CreatedAt,
	)
	return i, err
}

const createContest = `
INSERT INTO contests (domain_id, title, slug, rule, begin_at, end_at, pids, owner_uid)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + contestColumns

type CreateContestParams struct {
	DomainID string
	Title    string
	Slug     string
	Rule     int16
	BeginAt  time.Time
	EndAt    time.Time
	Pids     []int32
	OwnerUID uuid.UUID
}

func (q *Queries) CreateContest(ctx context.Context, arg CreateContestParams) (Contest, error) {
	row := q.db.QueryRow(ctx, createContest,
		arg.DomainID,
		arg.Title,
		arg.Slug,
		arg.Rule,
		arg.BeginAt,
		arg.EndAt,
		arg.Pids,
		arg.OwnerUID,
	)
	return scanContest(row)
}

const getContestByID = `
SELECT ` + contestColumns + `
FROM contests
WHERE domain_id = $1 AND doc_id = $2`

func (q *Queries) GetContestByID(ctx context.Context, domainID string, docID int64) (Contest, error) {
	row := q.db.QueryRow(ctx, getContestByID, domainID, docID)
	return scanContest(row)
}

const getContestsByFilters = `
SELECT ` + contestColumns + `
FROM contests
WHERE domain_id = $1 AND ($2::SMALLINT IS NULL OR rule = $2)
ORDER BY doc_id DESC
LIMIT $3 OFFSET $4`

type GetContestsByFiltersParams struct {
	DomainID string
	Rule     *int16
	Limit    int32
	Offset   int32
}

func (q *Queries) GetContestsByFilters(ctx context.Context, arg GetContestsByFiltersParams) ([]Contest, error) {
	rows, err := q.db.Query(ctx, getContestsByFilters,
		arg.DomainID,
		arg.Rule,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Contest{}
	for rows.Next() {
		i, err := scanContest(rows)
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

const countContestsByFilters = `
SELECT COUNT(*)
FROM contests
WHERE domain_id = $1 AND ($2::SMALLINT IS NULL OR rule = $2)`

func (q *Queries) CountContestsByFilters(ctx context.Context, domainID string, rule *int16) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countContestsByFilters, domainID, rule).Scan(&count)
	return count, err
}

const updateContest = `
UPDATE contests
SET title = $3, slug = $4, rule = $5, begin_at = $6, end_at = $7, pids = $8
WHERE domain_id = $1 AND doc_id = $2
RETURNING ` + contestColumns

type UpdateContestParams struct {
	DomainID string
	DocID    int64
	Title    string
	Slug     string
	Rule     int16
	BeginAt  time.Time
	EndAt    time.Time
	Pids     []int32
}

func (q *Queries) UpdateContest(ctx context.Context, arg UpdateContestParams) (Contest, error) {
	row := q.db.QueryRow(ctx, updateContest,
		arg.DomainID,
		arg.DocID,
		arg.Title,
		arg.Slug,
		arg.Rule,
		arg.BeginAt,
		arg.EndAt,
		arg.Pids,
	)
	return scanContest(row)
}

const getDomainIDs = `
SELECT domain_id FROM contests
UNION
SELECT domain_id FROM problems`

func (q *Queries) GetDomainIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, getDomainIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var domainID string
		if err := rows.Scan(&domainID); err != nil {
			return nil, err
		}
		items = append(items, domainID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
