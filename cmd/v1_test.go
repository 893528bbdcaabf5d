package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/api"
	"github.com/tcp_snm/arena/internal/config"
	"github.com/tcp_snm/arena/internal/database/dbtest"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/user_service"
	"github.com/tcp_snm/arena/middleware"
)

const testDomain = "system"

func TestMain(m *testing.M) {
	// setup
	fmt.Println("starting initializations")

	// logger
	fmt.Println("initializing logger")
	logrus.SetFormatter(&logrus.TextFormatter{
		// Force colors to be enabled
		ForceColors: true,
		// Add the full timestamp
		FullTimestamp: true,
		PadLevelText:  false,
	})
	logrus.SetLevel(logrus.DebugLevel)

	logrus.Info("initializing service")
	service.InitializeServices()

	logrus.Info("starting tests")
	code := m.Run()

	logrus.Info("tests completed")
	os.Exit(code)
}

type testServer struct {
	t      *testing.T
	db     *dbtest.FakeQueries
	api    *api.Api
	router *chi.Mux
	auth   middleware.JWTAuth
	now    time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := &testServer{
		t:    t,
		db:   dbtest.NewFakeQueries(),
		auth: middleware.JWTAuth{Secret: []byte("test-secret")},
		now:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.api = initApi(ctx, s.db, nil, config.Config{
		ReconcileInterval: time.Hour,
		RoleCacheSize:     16,
	})
	t.Cleanup(func() {
		cancel()
		s.api.ReconcileServiceConfig.Wait()
	})
	s.api.ContestServiceConfig.Clock = func() time.Time { return s.now }

	s.router = chi.NewRouter()
	setCors(s.router)
	s.router.Mount("/v1", NewV1Router(s.api, s.auth))
	return s
}

func (s *testServer) token(userID uuid.UUID, roles ...user_service.UserRole) string {
	s.t.Helper()
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	if len(names) > 0 {
		s.db.SetRoles(testDomain, userID, names...)
	}
	token, err := s.auth.IssueToken(service.UserCredentialClaims{
		UserId:   userID,
		UserName: "user-" + userID.String()[:8],
	}, time.Hour)
	if err != nil {
		s.t.Fatal(err)
	}
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			s.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.KeyJwtSessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("cannot decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %v, want %v, body: %s", rec.Code, want, rec.Body.String())
	}
}

// contestView is the subset of the contest detail the tests read
type contestView struct {
	Contest struct {
		ID     int64 `json:"contest_id"`
		Attend int32 `json:"attend"`
	} `json:"contest"`
	Phase  string `json:"phase"`
	Status *struct {
		Attend int16 `json:"attend"`
		Detail map[string]struct {
			RecordID    uuid.UUID `json:"rid"`
			Accepted    bool      `json:"accepted"`
			Score       int32     `json:"score"`
			SubmitCount int32     `json:"submit_count"`
		} `json:"detail"`
	} `json:"status"`
	Attended    bool `json:"attended"`
	ShowRecords bool `json:"show_records"`
	Problems    map[string]struct {
		Title string `json:"title"`
	} `json:"problems"`
}

func TestContestFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	managerToken := s.token(uuid.New(), user_service.RoleManager)
	judgeToken := s.token(uuid.New(), user_service.RoleJudge)
	contestant := uuid.New()
	contestantToken := s.token(contestant)
	outsiderToken := s.token(uuid.New())

	// problem and contest
	rec := s.do(http.MethodPost, "/v1/d/system/problems", managerToken, map[string]string{"title": "A + B"})
	expectStatus(t, rec, http.StatusCreated)
	problem := decode[struct {
		ID int32 `json:"problem_id"`
	}](t, rec)

	rec = s.do(http.MethodPost, "/v1/d/system/contests", managerToken, map[string]any{
		"title":    "Sunday Sprint",
		"rule":     3,
		"begin_at": "2025-03-01T10:00:00Z",
		"end_at":   "2025-03-01T12:00:00Z",
		"pids":     []int32{problem.ID},
	})
	expectStatus(t, rec, http.StatusCreated)
	created := decode[map[string]int64](t, rec)
	contestPath := fmt.Sprintf("/v1/d/system/contests/%d", created["contest_id"])
	submitPath := fmt.Sprintf("%s/problems/%d/submit", contestPath, problem.ID)
	submission := map[string]string{"lang": "cpp", "code": "int main() {}"}

	// pending contests take attendance but no submissions
	expectStatus(t, s.do(http.MethodPost, contestPath+"/attend", contestantToken, nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodPost, submitPath, contestantToken, submission), http.StatusConflict)

	s.now = time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	expectStatus(t, s.do(http.MethodPost, submitPath, outsiderToken, submission), http.StatusConflict)
	expectStatus(t, s.do(
		http.MethodGet, fmt.Sprintf("%s/problems/%d", contestPath, problem.ID), contestantToken, nil,
	), http.StatusOK)

	rec = s.do(http.MethodPost, submitPath, contestantToken, submission)
	expectStatus(t, rec, http.StatusCreated)
	rid := decode[map[string]string](t, rec)["rid"]

	// judge reports back
	expectStatus(t, s.do(http.MethodPost, "/v1/records/"+rid+"/verdict", contestantToken, map[string]any{
		"verdict": 1, "score": 100,
	}), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodPost, "/v1/records/"+rid+"/verdict", judgeToken, map[string]any{
		"verdict": 1, "score": 100,
	}), http.StatusOK)

	rec = s.do(http.MethodGet, contestPath, contestantToken, nil)
	expectStatus(t, rec, http.StatusOK)
	view := decode[contestView](t, rec)
	if view.Phase != "ongoing" || !view.Attended || view.ShowRecords {
		t.Errorf("unexpected contest view %+v", view)
	}
	entry, ok := view.Status.Detail[fmt.Sprint(problem.ID)]
	if !ok {
		t.Fatalf("problem entry missing: %s", rec.Body.String())
	}
	if !entry.Accepted || entry.SubmitCount != 1 || entry.RecordID != uuid.Nil {
		t.Errorf("unexpected entry %+v", entry)
	}
	if view.Problems[fmt.Sprint(problem.ID)].Title != "A + B" {
		t.Errorf("problem titles missing from detail: %s", rec.Body.String())
	}

	// the submit page lists nothing while records are hidden
	rec = s.do(http.MethodGet, submitPath, contestantToken, nil)
	expectStatus(t, rec, http.StatusOK)
	if listed := decode[map[string][]json.RawMessage](t, rec)["records"]; listed == nil || len(listed) != 0 {
		t.Errorf("hidden records listed: %s", rec.Body.String())
	}
	expectStatus(t, s.do(http.MethodGet, submitPath, outsiderToken, nil), http.StatusConflict)

	// hidden while running, except to its author
	expectStatus(t, s.do(http.MethodGet, "/v1/records/"+rid, outsiderToken, nil), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodGet, "/v1/records/"+rid, contestantToken, nil), http.StatusOK)

	statusBody := map[string][]string{"user_ids": {contestant.String()}}
	expectStatus(t, s.do(http.MethodPost, contestPath+"/status", outsiderToken, statusBody), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodPost, contestPath+"/status", managerToken, statusBody), http.StatusOK)

	// counters are fixed by a reconcile run
	rec = s.do(http.MethodPost, "/v1/d/system/reconcile", managerToken, nil)
	expectStatus(t, rec, http.StatusAccepted)
	queued := decode[struct {
		RunID uuid.UUID `json:"run_id"`
	}](t, rec)
	if queued.RunID == uuid.Nil {
		t.Fatalf("no run id in %s", rec.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = s.do(http.MethodGet, "/v1/reconcile/runs?run_id="+queued.RunID.String(), managerToken, nil)
		expectStatus(t, rec, http.StatusOK)
		run := decode[struct {
			State int `json:"state"`
		}](t, rec)
		if run.State == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("reconcile run did not complete: %s", rec.Body.String())
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = s.do(http.MethodGet, contestPath, outsiderToken, nil)
	expectStatus(t, rec, http.StatusOK)
	if view = decode[contestView](t, rec); view.Contest.Attend != 1 {
		t.Errorf("attend = %v after reconcile, want 1", view.Contest.Attend)
	}

	// after the end everyone sees records
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expectStatus(t, s.do(http.MethodPost, submitPath, contestantToken, submission), http.StatusConflict)
	expectStatus(t, s.do(http.MethodGet, "/v1/records/"+rid, outsiderToken, nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodPost, contestPath+"/attend", outsiderToken, nil), http.StatusConflict)
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	managerToken := s.token(uuid.New(), user_service.RoleManager)
	userToken := s.token(uuid.New())

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"health without token", http.MethodGet, "/v1/healthz", "", nil, http.StatusOK},
		{"no token", http.MethodGet, "/v1/d/system/contests", "", nil, http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/v1/d/system/contests", "garbage", nil, http.StatusUnauthorized},
		{"list contests", http.MethodGet, "/v1/d/system/contests?page=1&page_size=5", userToken, nil, http.StatusOK},
		{"bad page", http.MethodGet, "/v1/d/system/contests?page=first", userToken, nil, http.StatusBadRequest},
		{"page size too large", http.MethodGet, "/v1/d/system/contests?page_size=1000", userToken, nil, http.StatusBadRequest},
		{"unknown contest", http.MethodGet, "/v1/d/system/contests/42", userToken, nil, http.StatusNotFound},
		{"bad contest id", http.MethodGet, "/v1/d/system/contests/abc", userToken, nil, http.StatusBadRequest},
		{"attend unknown contest", http.MethodPost, "/v1/d/system/contests/42/attend", userToken, nil, http.StatusNotFound},
		{"create without role", http.MethodPost, "/v1/d/system/contests", userToken, map[string]any{
			"title": "Sunday Sprint", "rule": 3, "begin_at": "2025-03-01T10:00:00Z", "end_at": "2025-03-01T12:00:00Z",
		}, http.StatusForbidden},
		{"create with unknown field", http.MethodPost, "/v1/d/system/contests", managerToken, `{"title":"x","color":"red"}`, http.StatusBadRequest},
		{"create with unknown problem", http.MethodPost, "/v1/d/system/contests", managerToken, map[string]any{
			"title": "Sunday Sprint", "rule": 3, "begin_at": "2025-03-01T10:00:00Z", "end_at": "2025-03-01T12:00:00Z", "pids": []int{77},
		}, http.StatusNotFound},
		{"submit to unknown contest", http.MethodPost, "/v1/d/system/contests/42/problems/1/submit", userToken,
			map[string]string{"lang": "cpp", "code": "x"}, http.StatusNotFound},
		{"bad record id", http.MethodGet, "/v1/records/not-a-uuid", userToken, nil, http.StatusBadRequest},
		{"unknown record", http.MethodGet, "/v1/records/" + uuid.NewString(), userToken, nil, http.StatusNotFound},
		{"reconcile without role", http.MethodPost, "/v1/d/system/reconcile", userToken, nil, http.StatusForbidden},
		{"unknown run", http.MethodGet, "/v1/reconcile/runs?run_id=" + uuid.NewString(), managerToken, nil, http.StatusNotFound},
		{"bad run id", http.MethodGet, "/v1/reconcile/runs?run_id=7", managerToken, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.token, tt.body)
			expectStatus(t, rec, tt.want)
		})
	}

	// database failures never leak their details
	s.db.FailOn("GetContestsByFilters", fmt.Errorf("dial tcp 10.0.0.7:5432: connection refused"))
	rec := s.do(http.MethodGet, "/v1/d/system/contests", userToken, nil)
	expectStatus(t, rec, http.StatusInternalServerError)
	if bytes.Contains(rec.Body.Bytes(), []byte("10.0.0.7")) {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
}
