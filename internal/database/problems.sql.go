package database

import (
	"context"

	"github.com/google/uuid"
)

const problemColumns = `domain_id, doc_id, title, owner_uid, created_at`

func scanProblem(row rowScanner) (Problem, error) {
	var i Problem
	err := row.Scan(
		&i.DomainID,
		&i.DocID,
		&i.Title,
		&i.OwnerUID,
		&i.CreatedAt,
	)
	return i, err
}

const insertProblem = `
INSERT INTO problems (domain_id, title, owner_uid)
VALUES ($1, $2, $3)
RETURNING ` + problemColumns

type InsertProblemParams struct {
	DomainID string
	Title    string
	OwnerUID uuid.UUID
}

func (q *Queries) InsertProblem(ctx context.Context, arg InsertProblemParams) (Problem, error) {
	row := q.db.QueryRow(ctx, insertProblem, arg.DomainID, arg.Title, arg.OwnerUID)
	return scanProblem(row)
}

const getProblemByID = `
SELECT ` + problemColumns + `
FROM problems
WHERE domain_id = $1 AND doc_id = $2`

func (q *Queries) GetProblemByID(ctx context.Context, domainID string, docID int32) (Problem, error) {
	row := q.db.QueryRow(ctx, getProblemByID, domainID, docID)
	return scanProblem(row)
}

const getProblemsByIDs = `
SELECT ` + problemColumns + `
FROM problems
WHERE domain_id = $1 AND doc_id = ANY($2::INTEGER[])`

func (q *Queries) GetProblemsByIDs(ctx context.Context, domainID string, docIDs []int32) ([]Problem, error) {
	rows, err := q.db.Query(ctx, getProblemsByIDs, domainID, docIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Problem{}
	for rows.Next() {
		i, err := scanProblem(rows)
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
