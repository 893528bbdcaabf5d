package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const resetContestAttend = `
UPDATE contests SET attend = 0 WHERE domain_id = $1`

func (q *Queries) ResetContestAttend(ctx context.Context, domainID string) error {
	_, err := q.db.Exec(ctx, resetContestAttend, domainID)
	return err
}

const countAttendeesByContest = `
SELECT contest_id, COUNT(*)::INTEGER AS attend
FROM contest_status
WHERE domain_id = $1 AND attend = 1
GROUP BY contest_id`

func (q *Queries) CountAttendeesByContest(ctx context.Context, domainID string) ([]ContestAttendCount, error) {
	rows, err := q.db.Query(ctx, countAttendeesByContest, domainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ContestAttendCount{}
	for rows.Next() {
		var i ContestAttendCount
		if err := rows.Scan(&i.ContestID, &i.Attend); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setContestAttend = `
UPDATE contests SET attend = $3 WHERE domain_id = $1 AND doc_id = $2`

func (q *Queries) BulkSetContestAttend(ctx context.Context, domainID string, counts []ContestAttendCount) error {
	batch := &pgx.Batch{}
	for _, c := range counts {
		batch.Queue(setContestAttend, domainID, c.ContestID, c.Attend)
	}
	return execBatch(ctx, q.db, batch)
}

const resetDomainUserProblemCounts = `
UPDATE domain_users SET num_problems = 0 WHERE domain_id = $1`

func (q *Queries) ResetDomainUserProblemCounts(ctx context.Context, domainID string) error {
	_, err := q.db.Exec(ctx, resetDomainUserProblemCounts, domainID)
	return err
}

const countProblemsByOwner = `
SELECT owner_uid, COUNT(*)::INTEGER AS num_problems
FROM problems
WHERE domain_id = $1
GROUP BY owner_uid`

func (q *Queries) CountProblemsByOwner(ctx context.Context, domainID string) ([]OwnerProblemCount, error) {
	rows, err := q.db.Query(ctx, countProblemsByOwner, domainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OwnerProblemCount{}
	for rows.Next() {
		var i OwnerProblemCount
		if err := rows.Scan(&i.OwnerUID, &i.NumProblems); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertDomainUserProblemCount = `
INSERT INTO domain_users (domain_id, user_id, num_problems)
VALUES ($1, $2, $3)
ON CONFLICT (domain_id, user_id) DO UPDATE SET num_problems = EXCLUDED.num_problems`

func (q *Queries) BulkUpsertDomainUserProblemCounts(ctx context.Context, domainID string, counts []OwnerProblemCount) error {
	batch := &pgx.Batch{}
	for _, c := range counts {
		batch.Queue(upsertDomainUserProblemCount, domainID, c.OwnerUID, c.NumProblems)
	}
	return execBatch(ctx, q.db, batch)
}

const getDomainUser = `
SELECT domain_id, user_id, num_problems
FROM domain_users
WHERE domain_id = $1 AND user_id = $2`

func (q *Queries) GetDomainUser(ctx context.Context, domainID string, userID uuid.UUID) (DomainUser, error) {
	var i DomainUser
	err := q.db.QueryRow(ctx, getDomainUser, domainID, userID).Scan(
		&i.DomainID,
		&i.UserID,
		&i.NumProblems,
	)
	return i, err
}

// latest record and record count of every (contest, user, problem) whose
// status entry is missing or behind its records
const getUnsyncedContestSubmissions = `
WITH latest AS (
    SELECT r.contest_id,
           r.user_id,
           r.problem_id,
           (ARRAY_AGG(r.id ORDER BY r.created_at DESC, r.id DESC))[1] AS record_id,
           (ARRAY_AGG(r.verdict ORDER BY r.created_at DESC, r.id DESC))[1] AS verdict,
           (ARRAY_AGG(r.score ORDER BY r.created_at DESC, r.id DESC))[1] AS score,
           COUNT(*)::INTEGER AS submit_count
    FROM records r
    WHERE r.domain_id = $1
      AND r.contest_id IS NOT NULL
    GROUP BY r.contest_id, r.user_id, r.problem_id
)
SELECT l.contest_id, l.user_id, l.problem_id, l.record_id, l.verdict, l.score, l.submit_count
FROM latest l
LEFT JOIN contest_problem_status s
    ON s.domain_id = $1
   AND s.contest_id = l.contest_id
   AND s.user_id = l.user_id
   AND s.problem_id = l.problem_id
WHERE s.record_id IS NULL
   OR s.submit_count < l.submit_count
   OR (s.submit_count = l.submit_count
       AND s.record_id = l.record_id
       AND (s.accepted, s.score) IS DISTINCT FROM (l.verdict = $2, l.score))`

func (q *Queries) GetUnsyncedContestSubmissions(
	ctx context.Context,
	domainID string,
	acceptedVerdict int16,
) ([]UnsyncedSubmission, error) {
	rows, err := q.db.Query(ctx, getUnsyncedContestSubmissions, domainID, acceptedVerdict)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []UnsyncedSubmission{}
	for rows.Next() {
		var i UnsyncedSubmission
		if err := rows.Scan(
			&i.ContestID,
			&i.UserID,
			&i.ProblemID,
			&i.RecordID,
			&i.Verdict,
			&i.Score,
			&i.SubmitCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
