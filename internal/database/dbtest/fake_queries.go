// Package dbtest provides an in-memory database.Querier for service tests.
package dbtest

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tcp_snm/arena/internal/database"
)

type statusKey struct {
	domainID  string
	contestID int64
	userID    uuid.UUID
}

type problemStatusKey struct {
	statusKey
	problemID int32
}

type domainKey struct {
	domainID string
	docID    int64
}

type userKey struct {
	domainID string
	userID   uuid.UUID
}

// FakeQueries keeps every table in maps guarded by a single mutex, so each
// method is atomic the same way a single SQL statement is.
type FakeQueries struct {
	mu sync.Mutex

	nextContestID int64
	nextProblemID int32
	seq           time.Duration

	contests       map[domainKey]database.Contest
	statuses       map[statusKey]database.ContestStatus
	problemStatus  map[problemStatusKey]database.ContestProblemStatus
	problems       map[domainKey]database.Problem
	domainUsers    map[userKey]database.DomainUser
	records        map[uuid.UUID]database.Record
	roles          map[userKey][]string
	calls          map[string]int
	failures       map[string]error
	clockReference time.Time
}

func NewFakeQueries() *FakeQueries {
	return &FakeQueries{
		contests:       make(map[domainKey]database.Contest),
		statuses:       make(map[statusKey]database.ContestStatus),
		problemStatus:  make(map[problemStatusKey]database.ContestProblemStatus),
		problems:       make(map[domainKey]database.Problem),
		domainUsers:    make(map[userKey]database.DomainUser),
		records:        make(map[uuid.UUID]database.Record),
		roles:          make(map[userKey][]string),
		calls:          make(map[string]int),
		failures:       make(map[string]error),
		clockReference: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

var _ database.Querier = (*FakeQueries)(nil)

// Calls reports how many times the named method has been invoked.
func (f *FakeQueries) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// FailOn makes the named method return err until cleared with a nil err.
func (f *FakeQueries) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, method)
		return
	}
	f.failures[method] = err
}

// SetRoles grants roles to a user in a domain.
func (f *FakeQueries) SetRoles(domainID string, userID uuid.UUID, roles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[userKey{domainID, userID}] = roles
}

// SetDomainUser seeds a counter row, e.g. a stale cached value.
func (f *FakeQueries) SetDomainUser(du database.DomainUser) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domainUsers[userKey{du.DomainID, du.UserID}] = du
}

// SetContestAttend overwrites the cached attendance counter directly.
func (f *FakeQueries) SetContestAttend(domainID string, contestID int64, attend int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := domainKey{domainID, contestID}
	c, ok := f.contests[key]
	if !ok {
		return
	}
	c.Attend = attend
	f.contests[key] = c
}

// RecordCount returns the number of stored records.
func (f *FakeQueries) RecordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// must be called with mu held
func (f *FakeQueries) enter(method string) error {
	f.calls[method]++
	return f.failures[method]
}

// monotonically increasing timestamps keep "latest" well defined
func (f *FakeQueries) tick() time.Time {
	f.seq += time.Millisecond
	return f.clockReference.Add(f.seq)
}

func fkError(constraint string) error {
	return &pgconn.PgError{
		Code:           "23503",
		ConstraintName: constraint,
		Detail:         "referenced row is not present",
	}
}

func (f *FakeQueries) CreateContest(ctx context.Context, arg database.CreateContestParams) (database.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateContest"); err != nil {
		return database.Contest{}, err
	}
	f.nextContestID++
	c := database.Contest{
		DomainID:  arg.DomainID,
		DocID:     f.nextContestID,
		Title:     arg.Title,
		Slug:      arg.Slug,
		Rule:      arg.Rule,
		BeginAt:   arg.BeginAt,
		EndAt:     arg.EndAt,
		Pids:      slices.Clone(arg.Pids),
		OwnerUID:  arg.OwnerUID,
		CreatedAt: f.tick(),
	}
	f.contests[domainKey{c.DomainID, c.DocID}] = c
	return c, nil
}

func (f *FakeQueries) GetContestByID(ctx context.Context, domainID string, docID int64) (database.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetContestByID"); err != nil {
		return database.Contest{}, err
	}
	c, ok := f.contests[domainKey{domainID, docID}]
	if !ok {
		return database.Contest{}, pgx.ErrNoRows
	}
	c.Pids = slices.Clone(c.Pids)
	return c, nil
}

func (f *FakeQueries) filterContests(domainID string, rule *int16) []database.Contest {
	items := []database.Contest{}
	for _, c := range f.contests {
		if c.DomainID != domainID {
			continue
		}
		if rule != nil && c.Rule != *rule {
			continue
		}
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DocID > items[j].DocID
	})
	return items
}

func (f *FakeQueries) GetContestsByFilters(ctx context.Context, arg database.GetContestsByFiltersParams) ([]database.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetContestsByFilters"); err != nil {
		return nil, err
	}
	items := f.filterContests(arg.DomainID, arg.Rule)
	start := min(int(arg.Offset), len(items))
	end := min(start+int(arg.Limit), len(items))
	return items[start:end], nil
}

func (f *FakeQueries) CountContestsByFilters(ctx context.Context, domainID string, rule *int16) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CountContestsByFilters"); err != nil {
		return 0, err
	}
	return int64(len(f.filterContests(domainID, rule))), nil
}

func (f *FakeQueries) UpdateContest(ctx context.Context, arg database.UpdateContestParams) (database.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateContest"); err != nil {
		return database.Contest{}, err
	}
	key := domainKey{arg.DomainID, arg.DocID}
	c, ok := f.contests[key]
	if !ok {
		return database.Contest{}, pgx.ErrNoRows
	}
	c.Title = arg.Title
	c.Slug = arg.Slug
	c.Rule = arg.Rule
	c.BeginAt = arg.BeginAt
	c.EndAt = arg.EndAt
	c.Pids = slices.Clone(arg.Pids)
	f.contests[key] = c
	return c, nil
}

func (f *FakeQueries) GetDomainIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetDomainIDs"); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for k := range f.contests {
		seen[k.domainID] = true
	}
	for k := range f.problems {
		seen[k.domainID] = true
	}
	items := make([]string, 0, len(seen))
	for d := range seen {
		items = append(items, d)
	}
	sort.Strings(items)
	return items, nil
}

func (f *FakeQueries) GetContestStatus(ctx context.Context, domainID string, contestID int64, userID uuid.UUID) (database.ContestStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetContestStatus"); err != nil {
		return database.ContestStatus{}, err
	}
	s, ok := f.statuses[statusKey{domainID, contestID, userID}]
	if !ok {
		return database.ContestStatus{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *FakeQueries) GetContestStatusesByUsers(ctx context.Context, domainID string, contestID int64, userIDs []uuid.UUID) ([]database.ContestStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetContestStatusesByUsers"); err != nil {
		return nil, err
	}
	items := []database.ContestStatus{}
	for _, uid := range userIDs {
		if s, ok := f.statuses[statusKey{domainID, contestID, uid}]; ok {
			items = append(items, s)
		}
	}
	return items, nil
}

func (f *FakeQueries) GetContestStatusesByContests(ctx context.Context, domainID string, userID uuid.UUID, contestIDs []int64) ([]database.ContestStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetContestStatusesByContests"); err != nil {
		return nil, err
	}
	items := []database.ContestStatus{}
	for _, cid := range contestIDs {
		if s, ok := f.statuses[statusKey{domainID, cid, userID}]; ok {
			items = append(items, s)
		}
	}
	return items, nil
}

func (f *FakeQueries) GetProblemStatusesByUsers(ctx context.Context, domainID string, contestID int64, userIDs []uuid.UUID) ([]database.ContestProblemStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetProblemStatusesByUsers"); err != nil {
		return nil, err
	}
	items := []database.ContestProblemStatus{}
	for k, ps := range f.problemStatus {
		if k.domainID == domainID && k.contestID == contestID && slices.Contains(userIDs, k.userID) {
			items = append(items, ps)
		}
	}
	return items, nil
}

func (f *FakeQueries) GetProblemStatusesByContests(ctx context.Context, domainID string, userID uuid.UUID, contestIDs []int64) ([]database.ContestProblemStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetProblemStatusesByContests"); err != nil {
		return nil, err
	}
	items := []database.ContestProblemStatus{}
	for k, ps := range f.problemStatus {
		if k.domainID == domainID && k.userID == userID && slices.Contains(contestIDs, k.contestID) {
			items = append(items, ps)
		}
	}
	return items, nil
}

func (f *FakeQueries) UpsertContestAttend(ctx context.Context, domainID string, contestID int64, userID uuid.UUID) (database.ContestStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpsertContestAttend"); err != nil {
		return database.ContestStatus{}, err
	}
	if _, ok := f.contests[domainKey{domainID, contestID}]; !ok {
		return database.ContestStatus{}, fkError("contest_status_contest_fkey")
	}
	key := statusKey{domainID, contestID, userID}
	s, ok := f.statuses[key]
	if !ok {
		s = database.ContestStatus{
			DomainID:  domainID,
			ContestID: contestID,
			UserID:    userID,
			CreatedAt: f.tick(),
		}
	}
	s.Attend = 1
	f.statuses[key] = s
	return s, nil
}

func (f *FakeQueries) EnsureContestStatus(ctx context.Context, domainID string, contestID int64, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("EnsureContestStatus"); err != nil {
		return err
	}
	if _, ok := f.contests[domainKey{domainID, contestID}]; !ok {
		return fkError("contest_status_contest_fkey")
	}
	key := statusKey{domainID, contestID, userID}
	if _, ok := f.statuses[key]; !ok {
		f.statuses[key] = database.ContestStatus{
			DomainID:  domainID,
			ContestID: contestID,
			UserID:    userID,
			CreatedAt: f.tick(),
		}
	}
	return nil
}

func (f *FakeQueries) UpsertProblemStatus(ctx context.Context, arg database.UpsertProblemStatusParams) (database.ContestProblemStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpsertProblemStatus"); err != nil {
		return database.ContestProblemStatus{}, err
	}
	if _, ok := f.contests[domainKey{arg.DomainID, arg.ContestID}]; !ok {
		return database.ContestProblemStatus{}, fkError("contest_problem_status_contest_fkey")
	}
	key := problemStatusKey{statusKey{arg.DomainID, arg.ContestID, arg.UserID}, arg.ProblemID}
	ps, ok := f.problemStatus[key]
	if ok && ps.RecordID == arg.RecordID {
		return ps, nil
	}
	ps.DomainID = arg.DomainID
	ps.ContestID = arg.ContestID
	ps.UserID = arg.UserID
	ps.ProblemID = arg.ProblemID
	ps.RecordID = arg.RecordID
	ps.Accepted = arg.Accepted
	ps.Score = arg.Score
	ps.SubmitCount++
	ps.UpdatedAt = f.tick()
	f.problemStatus[key] = ps
	return ps, nil
}

func (f *FakeQueries) UpdateProblemStatusVerdict(ctx context.Context, arg database.UpdateProblemStatusVerdictParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateProblemStatusVerdict"); err != nil {
		return 0, err
	}
	key := problemStatusKey{statusKey{arg.DomainID, arg.ContestID, arg.UserID}, arg.ProblemID}
	ps, ok := f.problemStatus[key]
	if !ok || ps.RecordID != arg.RecordID {
		return 0, nil
	}
	ps.Accepted = arg.Accepted
	ps.Score = arg.Score
	ps.UpdatedAt = f.tick()
	f.problemStatus[key] = ps
	return 1, nil
}

func (f *FakeQueries) GetProblemStatus(ctx context.Context, domainID string, contestID int64, userID uuid.UUID, problemID int32) (database.ContestProblemStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetProblemStatus"); err != nil {
		return database.ContestProblemStatus{}, err
	}
	ps, ok := f.problemStatus[problemStatusKey{statusKey{domainID, contestID, userID}, problemID}]
	if !ok {
		return database.ContestProblemStatus{}, pgx.ErrNoRows
	}
	return ps, nil
}

func (f *FakeQueries) SyncProblemStatus(ctx context.Context, arg database.SyncProblemStatusParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SyncProblemStatus"); err != nil {
		return false, err
	}
	if _, ok := f.contests[domainKey{arg.DomainID, arg.ContestID}]; !ok {
		return false, fkError("contest_problem_status_contest_fkey")
	}
	key := problemStatusKey{statusKey{arg.DomainID, arg.ContestID, arg.UserID}, arg.ProblemID}
	if ps, ok := f.problemStatus[key]; ok {
		behind := ps.SubmitCount < arg.SubmitCount
		differs := ps.SubmitCount == arg.SubmitCount && ps.RecordID == arg.RecordID &&
			(ps.Accepted != arg.Accepted || ps.Score != arg.Score)
		if !behind && !differs {
			return false, nil
		}
	}
	f.problemStatus[key] = database.ContestProblemStatus{
		DomainID:    arg.DomainID,
		ContestID:   arg.ContestID,
		UserID:      arg.UserID,
		ProblemID:   arg.ProblemID,
		RecordID:    arg.RecordID,
		Accepted:    arg.Accepted,
		Score:       arg.Score,
		SubmitCount: arg.SubmitCount,
		UpdatedAt:   f.tick(),
	}
	return true, nil
}

func (f *FakeQueries) ResetContestAttend(ctx context.Context, domainID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ResetContestAttend"); err != nil {
		return err
	}
	for k, c := range f.contests {
		if k.domainID == domainID {
			c.Attend = 0
			f.contests[k] = c
		}
	}
	return nil
}

func (f *FakeQueries) CountAttendeesByContest(ctx context.Context, domainID string) ([]database.ContestAttendCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CountAttendeesByContest"); err != nil {
		return nil, err
	}
	counts := make(map[int64]int32)
	for k, s := range f.statuses {
		if k.domainID == domainID && s.Attend == 1 {
			counts[k.contestID]++
		}
	}
	items := []database.ContestAttendCount{}
	for cid, n := range counts {
		items = append(items, database.ContestAttendCount{ContestID: cid, Attend: n})
	}
	return items, nil
}

func (f *FakeQueries) BulkSetContestAttend(ctx context.Context, domainID string, counts []database.ContestAttendCount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("BulkSetContestAttend"); err != nil {
		return err
	}
	for _, c := range counts {
		key := domainKey{domainID, c.ContestID}
		if contest, ok := f.contests[key]; ok {
			contest.Attend = c.Attend
			f.contests[key] = contest
		}
	}
	return nil
}

func (f *FakeQueries) ResetDomainUserProblemCounts(ctx context.Context, domainID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ResetDomainUserProblemCounts"); err != nil {
		return err
	}
	for k, du := range f.domainUsers {
		if k.domainID == domainID {
			du.NumProblems = 0
			f.domainUsers[k] = du
		}
	}
	return nil
}

func (f *FakeQueries) CountProblemsByOwner(ctx context.Context, domainID string) ([]database.OwnerProblemCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CountProblemsByOwner"); err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int32)
	for k, p := range f.problems {
		if k.domainID == domainID {
			counts[p.OwnerUID]++
		}
	}
	items := []database.OwnerProblemCount{}
	for owner, n := range counts {
		items = append(items, database.OwnerProblemCount{OwnerUID: owner, NumProblems: n})
	}
	return items, nil
}

func (f *FakeQueries) BulkUpsertDomainUserProblemCounts(ctx context.Context, domainID string, counts []database.OwnerProblemCount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("BulkUpsertDomainUserProblemCounts"); err != nil {
		return err
	}
	for _, c := range counts {
		key := userKey{domainID, c.OwnerUID}
		du := f.domainUsers[key]
		du.DomainID = domainID
		du.UserID = c.OwnerUID
		du.NumProblems = c.NumProblems
		f.domainUsers[key] = du
	}
	return nil
}

func (f *FakeQueries) GetUnsyncedContestSubmissions(ctx context.Context, domainID string, acceptedVerdict int16) ([]database.UnsyncedSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetUnsyncedContestSubmissions"); err != nil {
		return nil, err
	}
	groups := make(map[problemStatusKey]*database.UnsyncedSubmission)
	latest := make(map[problemStatusKey]time.Time)
	for _, r := range f.records {
		if r.DomainID != domainID || r.ContestID == nil {
			continue
		}
		key := problemStatusKey{statusKey{domainID, *r.ContestID, r.UserID}, r.ProblemID}
		g, ok := groups[key]
		if !ok {
			g = &database.UnsyncedSubmission{
				ContestID: *r.ContestID,
				UserID:    r.UserID,
				ProblemID: r.ProblemID,
			}
			groups[key] = g
		}
		g.SubmitCount++
		if !ok || r.CreatedAt.After(latest[key]) {
			latest[key] = r.CreatedAt
			g.RecordID = r.ID
			g.Verdict = r.Verdict
			g.Score = r.Score
		}
	}
	items := []database.UnsyncedSubmission{}
	for key, g := range groups {
		ps, ok := f.problemStatus[key]
		synced := ok && (ps.SubmitCount > g.SubmitCount ||
			(ps.SubmitCount == g.SubmitCount &&
				(ps.RecordID != g.RecordID ||
					(ps.Accepted == (g.Verdict == acceptedVerdict) && ps.Score == g.Score))))
		if !synced {
			items = append(items, *g)
		}
	}
	return items, nil
}

func (f *FakeQueries) GetDomainUser(ctx context.Context, domainID string, userID uuid.UUID) (database.DomainUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetDomainUser"); err != nil {
		return database.DomainUser{}, err
	}
	du, ok := f.domainUsers[userKey{domainID, userID}]
	if !ok {
		return database.DomainUser{}, pgx.ErrNoRows
	}
	return du, nil
}

func (f *FakeQueries) InsertProblem(ctx context.Context, arg database.InsertProblemParams) (database.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("InsertProblem"); err != nil {
		return database.Problem{}, err
	}
	f.nextProblemID++
	p := database.Problem{
		DomainID:  arg.DomainID,
		DocID:     f.nextProblemID,
		Title:     arg.Title,
		OwnerUID:  arg.OwnerUID,
		CreatedAt: f.tick(),
	}
	f.problems[domainKey{p.DomainID, int64(p.DocID)}] = p
	return p, nil
}

func (f *FakeQueries) GetProblemByID(ctx context.Context, domainID string, docID int32) (database.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetProblemByID"); err != nil {
		return database.Problem{}, err
	}
	p, ok := f.problems[domainKey{domainID, int64(docID)}]
	if !ok {
		return database.Problem{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *FakeQueries) GetProblemsByIDs(ctx context.Context, domainID string, docIDs []int32) ([]database.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetProblemsByIDs"); err != nil {
		return nil, err
	}
	items := []database.Problem{}
	for _, id := range docIDs {
		if p, ok := f.problems[domainKey{domainID, int64(id)}]; ok {
			items = append(items, p)
		}
	}
	return items, nil
}

func (f *FakeQueries) InsertRecord(ctx context.Context, arg database.InsertRecordParams) (database.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("InsertRecord"); err != nil {
		return database.Record{}, err
	}
	if _, ok := f.problems[domainKey{arg.DomainID, int64(arg.ProblemID)}]; !ok {
		return database.Record{}, fkError("records_problem_fkey")
	}
	var contestID *int64
	if arg.ContestID != nil {
		cid := *arg.ContestID
		contestID = &cid
	}
	r := database.Record{
		ID:         arg.ID,
		DomainID:   arg.DomainID,
		ProblemID:  arg.ProblemID,
		RecordType: arg.RecordType,
		UserID:     arg.UserID,
		Lang:       arg.Lang,
		Code:       arg.Code,
		ContestID:  contestID,
		Hidden:     arg.Hidden,
		CreatedAt:  f.tick(),
	}
	f.records[r.ID] = r
	return r, nil
}

func (f *FakeQueries) GetRecordByID(ctx context.Context, id uuid.UUID) (database.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetRecordByID"); err != nil {
		return database.Record{}, err
	}
	r, ok := f.records[id]
	if !ok {
		return database.Record{}, pgx.ErrNoRows
	}
	return r, nil
}

func (f *FakeQueries) UpdateRecordVerdict(ctx context.Context, id uuid.UUID, verdict int16, score int32) (database.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateRecordVerdict"); err != nil {
		return database.Record{}, err
	}
	r, ok := f.records[id]
	if !ok {
		return database.Record{}, pgx.ErrNoRows
	}
	r.Verdict = verdict
	r.Score = score
	f.records[id] = r
	return r, nil
}

func (f *FakeQueries) ListUserContestProblemRecords(ctx context.Context, arg database.ListUserContestProblemRecordsParams) ([]database.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListUserContestProblemRecords"); err != nil {
		return nil, err
	}
	items := []database.Record{}
	for _, r := range f.records {
		if r.DomainID == arg.DomainID && r.ContestID != nil && *r.ContestID == arg.ContestID &&
			r.UserID == arg.UserID && r.ProblemID == arg.ProblemID {
			items = append(items, r)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > int(arg.Limit) {
		items = items[:arg.Limit]
	}
	return items, nil
}

func (f *FakeQueries) GetUserRoles(ctx context.Context, domainID string, userID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetUserRoles"); err != nil {
		return nil, err
	}
	return slices.Clone(f.roles[userKey{domainID, userID}]), nil
}
