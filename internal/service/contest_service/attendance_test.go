package contest_service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/service/contest_service"
)

func TestAttendIsIdempotent(t *testing.T) {
	f := newFixture(t)
	contest := f.createContest(t, f.addProblems(t, 1))
	user := uuid.New()

	for i := range 3 {
		status, err := f.cs.Attend(context.Background(), testDomain, contest.ID, user)
		if err != nil {
			t.Fatalf("attend #%v failed: %v", i, err)
		}
		if !status.Attended() {
			t.Fatalf("attend #%v did not mark the user as attending", i)
		}
	}

	statuses, err := f.cs.GetStatusBatch(context.Background(), testDomain, contest.ID, []uuid.UUID{user})
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 {
		t.Fatalf("expected exactly one status, got %v", len(statuses))
	}
	if statuses[user].Attend != 1 {
		t.Errorf("attend = %v, want 1", statuses[user].Attend)
	}
}

func TestAttendRejectsEndedContest(t *testing.T) {
	f := newFixture(t)
	contest := f.createContest(t, nil)
	f.now = T(10)

	_, err := f.cs.Attend(context.Background(), testDomain, contest.ID, uuid.New())
	if !errors.Is(err, arena_errors.ErrContestNotLive) {
		t.Fatalf("expected contest not live, got %v", err)
	}
	if !errors.Is(err, arena_errors.ErrStateConflict) {
		t.Errorf("contest not live should be a state conflict")
	}
	if n := f.db.Calls("UpsertContestAttend"); n != 0 {
		t.Errorf("attend was written %v times for an ended contest", n)
	}
}

func TestAttendUnknownContest(t *testing.T) {
	f := newFixture(t)
	_, err := f.cs.Attend(context.Background(), testDomain, 77, uuid.New())
	if !errors.Is(err, arena_errors.ErrContestNotFound) {
		t.Fatalf("expected contest not found, got %v", err)
	}
}

func TestConcurrentAttendsConverge(t *testing.T) {
	f := newFixture(t)
	contest := f.createContest(t, nil)

	users := make([]uuid.UUID, 20)
	for i := range users {
		users[i] = uuid.New()
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(users)*2)
	for _, user := range users {
		// every user attends twice at the same time
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.cs.Attend(context.Background(), testDomain, contest.ID, user); err != nil {
					errs <- err
				}
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent attend failed: %v", err)
	}

	statuses, err := f.cs.GetStatusBatch(context.Background(), testDomain, contest.ID, users)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != len(users) {
		t.Errorf("got %v statuses, want %v", len(statuses), len(users))
	}
	for _, s := range statuses {
		if s.Attend != 1 {
			t.Errorf("user %v has attend %v", s.UserID, s.Attend)
		}
	}
}

func TestGetStatusBatchUsesTwoQueries(t *testing.T) {
	f := newFixture(t)
	pids := f.addProblems(t, 2)
	contest := f.createContest(t, pids)
	f.now = T(1)

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, user := range users[:2] {
		if _, err := f.cs.Attend(context.Background(), testDomain, contest.ID, user); err != nil {
			t.Fatal(err)
		}
		for _, pid := range pids {
			_, err := f.cs.RecordSubmission(context.Background(), contest_service.RecordSubmissionParams{
				DomainID: testDomain, ContestID: contest.ID, UserID: user,
				ProblemID: pid, RecordID: uuid.New(),
			})
			if err != nil {
				t.Fatal(err)
			}
		}
	}

	statuses, err := f.cs.GetStatusBatch(context.Background(), testDomain, contest.ID, users)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 2 {
		t.Fatalf("got %v statuses, want 2", len(statuses))
	}
	if _, ok := statuses[users[2]]; ok {
		t.Errorf("user without status is present in the batch")
	}
	for _, user := range users[:2] {
		if len(statuses[user].Detail) != len(pids) {
			t.Errorf("user %v has %v problem entries, want %v", user, len(statuses[user].Detail), len(pids))
		}
	}
	if n := f.db.Calls("GetContestStatusesByUsers"); n != 1 {
		t.Errorf("status query ran %v times, want 1", n)
	}
	if n := f.db.Calls("GetProblemStatusesByUsers"); n != 1 {
		t.Errorf("problem status query ran %v times, want 1", n)
	}

	// nobody has a status, the detail query is skipped
	if _, err = f.cs.GetStatusBatch(context.Background(), testDomain, contest.ID, []uuid.UUID{uuid.New()}); err != nil {
		t.Fatal(err)
	}
	if n := f.db.Calls("GetProblemStatusesByUsers"); n != 1 {
		t.Errorf("problem status query ran for users without status")
	}
}

func TestGetStatusByContests(t *testing.T) {
	f := newFixture(t)
	first := f.createContest(t, nil)
	second := f.createContest(t, nil)
	third := f.createContest(t, nil)
	user := uuid.New()

	for _, c := range []contest_service.Contest{first, third} {
		if _, err := f.cs.Attend(context.Background(), testDomain, c.ID, user); err != nil {
			t.Fatal(err)
		}
	}

	statuses, err := f.cs.GetStatusByContests(
		context.Background(), testDomain, user, []int64{first.ID, second.ID, third.ID},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 2 {
		t.Fatalf("got %v statuses, want 2", len(statuses))
	}
	if _, ok := statuses[second.ID]; ok {
		t.Errorf("status present for a contest the user never attended")
	}
}

func TestRecordSubmissionLatestWins(t *testing.T) {
	f := newFixture(t)
	pids := f.addProblems(t, 2)
	contest := f.createContest(t, pids)
	user := uuid.New()

	record := func(pid int32, rid uuid.UUID, accepted bool, score int32) contest_service.ProblemStatus {
		t.Helper()
		ps, err := f.cs.RecordSubmission(context.Background(), contest_service.RecordSubmissionParams{
			DomainID: testDomain, ContestID: contest.ID, UserID: user,
			ProblemID: pid, RecordID: rid, Accepted: accepted, Score: score,
		})
		if err != nil {
			t.Fatal(err)
		}
		return ps
	}

	first, second := uuid.New(), uuid.New()
	record(pids[0], first, true, 100)
	ps := record(pids[0], second, false, 0)
	if ps.RecordID != second || ps.Accepted || ps.Score != 0 {
		t.Errorf("latest submission did not win: %+v", ps)
	}
	if ps.SubmitCount != 2 {
		t.Errorf("submit count = %v, want 2", ps.SubmitCount)
	}

	// other problems are independent
	other := record(pids[1], uuid.New(), false, 0)
	if other.SubmitCount != 1 {
		t.Errorf("submit count of another problem = %v, want 1", other.SubmitCount)
	}

	// a submission without attending creates the status row, unattended
	status, err := f.cs.GetStatus(context.Background(), testDomain, contest.ID, user)
	if err != nil {
		t.Fatal(err)
	}
	if status == nil || status.Attended() {
		t.Fatalf("expected an unattended status, got %+v", status)
	}
	if len(status.Detail) != 2 {
		t.Errorf("detail has %v entries, want 2", len(status.Detail))
	}
}

func TestRecordSubmissionUnknownContest(t *testing.T) {
	f := newFixture(t)
	pids := f.addProblems(t, 1)

	_, err := f.cs.RecordSubmission(context.Background(), contest_service.RecordSubmissionParams{
		DomainID: testDomain, ContestID: 12345, UserID: uuid.New(),
		ProblemID: pids[0], RecordID: uuid.New(),
	})
	if !errors.Is(err, arena_errors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for a missing contest, got %v", err)
	}
}

func TestApplyVerdictOnlyForLatestRecord(t *testing.T) {
	f := newFixture(t)
	pids := f.addProblems(t, 1)
	contest := f.createContest(t, pids)
	user := uuid.New()

	params := func(rid uuid.UUID, accepted bool, score int32) contest_service.RecordSubmissionParams {
		return contest_service.RecordSubmissionParams{
			DomainID: testDomain, ContestID: contest.ID, UserID: user,
			ProblemID: pids[0], RecordID: rid, Accepted: accepted, Score: score,
		}
	}

	stale, latest := uuid.New(), uuid.New()
	for _, rid := range []uuid.UUID{stale, latest} {
		if _, err := f.cs.RecordSubmission(context.Background(), params(rid, false, 0)); err != nil {
			t.Fatal(err)
		}
	}

	applied, err := f.cs.ApplyVerdict(context.Background(), params(stale, true, 100))
	if err != nil {
		t.Fatal(err)
	}
	if applied {
		t.Errorf("verdict of a stale record was applied")
	}

	applied, err = f.cs.ApplyVerdict(context.Background(), params(latest, true, 100))
	if err != nil {
		t.Fatal(err)
	}
	if !applied {
		t.Fatalf("verdict of the latest record was not applied")
	}

	status, err := f.cs.GetStatus(context.Background(), testDomain, contest.ID, user)
	if err != nil {
		t.Fatal(err)
	}
	ps := status.Detail[pids[0]]
	if ps.RecordID != latest || !ps.Accepted || ps.Score != 100 {
		t.Errorf("unexpected entry after verdict: %+v", ps)
	}
	if ps.SubmitCount != 2 {
		t.Errorf("verdict changed submit count to %v", ps.SubmitCount)
	}
}

func TestRecordSubmissionSameRecordCountedOnce(t *testing.T) {
	f := newFixture(t)
	pids := f.addProblems(t, 1)
	contest := f.createContest(t, pids)

	params := contest_service.RecordSubmissionParams{
		DomainID: testDomain, ContestID: contest.ID, UserID: uuid.New(),
		ProblemID: pids[0], RecordID: uuid.New(),
	}
	for range 3 {
		ps, err := f.cs.RecordSubmission(context.Background(), params)
		if err != nil {
			t.Fatal(err)
		}
		if ps.RecordID != params.RecordID || ps.SubmitCount != 1 {
			t.Fatalf("retried record changed the entry: %+v", ps)
		}
	}
}
