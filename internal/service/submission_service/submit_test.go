package submission_service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/service/submission_service"
)

func TestContestLifecycle(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	userCtx := ctxOf(user, "contestant")
	judgeCtx := ctxOf(f.judge, "judge")
	a := f.pids[0]

	// attends at T1
	f.now = T(1)
	status, err := f.cs.Attend(context.Background(), testDomain, f.contest.ID, user)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Attended() || len(status.Detail) != 0 {
		t.Fatalf("unexpected status after attending: %+v", status)
	}

	// submits to A at T2 and gets accepted
	f.now = T(2)
	first, err := f.sub.Submit(userCtx, f.submitRequest(a))
	if err != nil {
		t.Fatalf("submission at T2 failed: %v", err)
	}
	if _, err = f.sub.ApplyJudgeVerdict(judgeCtx, first, submission_service.VerdictRequest{
		Verdict: submission_service.VerdictAccepted, Score: 100,
	}); err != nil {
		t.Fatalf("cannot apply verdict: %v", err)
	}

	ps := f.status(t, user).Detail[a]
	if ps.RecordID != first || !ps.Accepted || ps.SubmitCount != 1 {
		t.Fatalf("after accepted submission got %+v", ps)
	}

	// second submission to A at T3 is rejected
	f.now = T(3)
	second, err := f.sub.Submit(userCtx, f.submitRequest(a))
	if err != nil {
		t.Fatalf("submission at T3 failed: %v", err)
	}
	if _, err = f.sub.ApplyJudgeVerdict(judgeCtx, second, submission_service.VerdictRequest{
		Verdict: submission_service.VerdictWrongAnswer,
	}); err != nil {
		t.Fatalf("cannot apply verdict: %v", err)
	}

	status = f.status(t, user)
	ps = status.Detail[a]
	if ps.RecordID != second || ps.Accepted || ps.SubmitCount != 2 {
		t.Fatalf("latest submission does not decide the entry: %+v", ps)
	}
	if len(status.Detail) != 1 {
		t.Errorf("detail has %v entries, want 1", len(status.Detail))
	}

	// a late verdict of the first record does not override the second
	if _, err = f.sub.ApplyJudgeVerdict(judgeCtx, first, submission_service.VerdictRequest{
		Verdict: submission_service.VerdictAccepted, Score: 100,
	}); err != nil {
		t.Fatal(err)
	}
	if ps = f.status(t, user).Detail[a]; ps.RecordID != second || ps.Accepted {
		t.Errorf("stale verdict overrode the latest entry: %+v", ps)
	}

	// T11 is after the end
	f.now = T(11)
	before := f.db.RecordCount()
	if _, err = f.sub.Submit(userCtx, f.submitRequest(a)); !errors.Is(err, arena_errors.ErrContestNotLive) {
		t.Fatalf("expected contest not live at T11, got %v", err)
	}
	if f.db.RecordCount() != before {
		t.Errorf("a record was created for a rejected submission")
	}
}

func TestSubmitRejectionsWriteNothing(t *testing.T) {
	f := newFixture(t)
	attendee, outsider := uuid.New(), uuid.New()
	f.now = T(1)
	if _, err := f.cs.Attend(context.Background(), testDomain, f.contest.ID, attendee); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		ctx     context.Context
		mutate  func(*submission_service.SubmitRequest)
		wantErr error
	}{
		{"no claims", context.Background(), nil, arena_errors.ErrInternal},
		{"not attended", ctxOf(outsider, "outsider"), nil, arena_errors.ErrContestNotAttended},
		{"unknown contest", ctxOf(attendee, "attendee"), func(r *submission_service.SubmitRequest) { r.ContestID = 999 }, arena_errors.ErrContestNotFound},
		{"problem outside contest", ctxOf(attendee, "attendee"), func(r *submission_service.SubmitRequest) { r.ProblemID = 999 }, arena_errors.ErrProblemNotInContest},
		{"unsupported language", ctxOf(attendee, "attendee"), func(r *submission_service.SubmitRequest) { r.Lang = "cobol" }, arena_errors.ErrValidation},
		{"empty code", ctxOf(attendee, "attendee"), func(r *submission_service.SubmitRequest) { r.Code = "" }, arena_errors.ErrValidation},
		{"code too long", ctxOf(attendee, "attendee"), func(r *submission_service.SubmitRequest) { r.Code = strings.Repeat("a", 65537) }, arena_errors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.submitRequest(f.pids[0])
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			rid, err := f.sub.Submit(tt.ctx, req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if rid != uuid.Nil {
				t.Errorf("rejected submission returned record %v", rid)
			}
		})
	}

	if n := f.db.RecordCount(); n != 0 {
		t.Errorf("%v records created by rejected submissions", n)
	}
	if n := f.db.Calls("UpsertProblemStatus"); n != 0 {
		t.Errorf("problem status written %v times by rejected submissions", n)
	}
	if n := f.db.Calls("EnsureContestStatus"); n != 0 {
		t.Errorf("contest status written %v times by rejected submissions", n)
	}
}

func TestSubmitHidesRecordsWhileRunning(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	f.now = T(1)
	if _, err := f.cs.Attend(context.Background(), testDomain, f.contest.ID, user); err != nil {
		t.Fatal(err)
	}

	rid, err := f.sub.Submit(ctxOf(user, "contestant"), f.submitRequest(f.pids[1]))
	if err != nil {
		t.Fatal(err)
	}
	record, err := f.sub.Records.Get(context.Background(), rid)
	if err != nil {
		t.Fatal(err)
	}
	if !record.Hidden {
		t.Errorf("record of a running contest is not hidden")
	}
	if record.ContestID == nil || *record.ContestID != f.contest.ID {
		t.Errorf("record is not linked to the contest: %v", record.ContestID)
	}
	if record.Verdict != submission_service.VerdictWaiting {
		t.Errorf("new record has verdict %v", record.Verdict)
	}
}

func TestSubmitSurvivesStatusFailure(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	f.now = T(1)
	if _, err := f.cs.Attend(context.Background(), testDomain, f.contest.ID, user); err != nil {
		t.Fatal(err)
	}

	f.db.FailOn("UpsertProblemStatus", errors.New("connection reset by peer"))
	rid, err := f.sub.Submit(ctxOf(user, "contestant"), f.submitRequest(f.pids[0]))
	if err != nil {
		t.Fatalf("submission failed although the record was created: %v", err)
	}
	if rid == uuid.Nil {
		t.Fatalf("no record id returned")
	}
	if f.db.RecordCount() != 1 {
		t.Errorf("record count = %v, want 1", f.db.RecordCount())
	}
	if _, ok := f.status(t, user).Detail[f.pids[0]]; ok {
		t.Errorf("problem status written although the upsert failed")
	}
	f.db.FailOn("UpsertProblemStatus", nil)
}

func TestConcurrentSubmissionsCount(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	userCtx := ctxOf(user, "contestant")
	f.now = T(1)
	if _, err := f.cs.Attend(context.Background(), testDomain, f.contest.ID, user); err != nil {
		t.Fatal(err)
	}

	const perProblem = 10
	var wg sync.WaitGroup
	errs := make(chan error, perProblem*len(f.pids))
	for _, pid := range f.pids {
		for range perProblem {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.sub.Submit(userCtx, f.submitRequest(pid)); err != nil {
					errs <- err
				}
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent submission failed: %v", err)
	}

	status := f.status(t, user)
	for _, pid := range f.pids {
		if got := status.Detail[pid].SubmitCount; got != perProblem {
			t.Errorf("problem %v has submit count %v, want %v", pid, got, perProblem)
		}
	}
}
