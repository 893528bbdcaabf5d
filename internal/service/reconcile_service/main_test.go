package reconcile_service_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/database/dbtest"
	"github.com/tcp_snm/arena/internal/service"
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

func createContest(t *testing.T, db *dbtest.FakeQueries, domainID string, pids []int32) database.Contest {
	t.Helper()
	begin := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c, err := db.CreateContest(context.Background(), database.CreateContestParams{
		DomainID: domainID,
		Title:    "weekly round",
		Slug:     "weekly-round",
		Rule:     3,
		BeginAt:  begin,
		EndAt:    begin.Add(2 * time.Hour),
		Pids:     pids,
		OwnerUID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("cannot create contest: %v", err)
	}
	return c
}

func addProblem(t *testing.T, db *dbtest.FakeQueries, domainID string, owner uuid.UUID) int32 {
	t.Helper()
	p, err := db.InsertProblem(context.Background(), database.InsertProblemParams{
		DomainID: domainID,
		Title:    "a problem",
		OwnerUID: owner,
	})
	if err != nil {
		t.Fatalf("cannot insert problem: %v", err)
	}
	return p.DocID
}

func attend(t *testing.T, db *dbtest.FakeQueries, domainID string, contestID int64, userID uuid.UUID) {
	t.Helper()
	if _, err := db.UpsertContestAttend(context.Background(), domainID, contestID, userID); err != nil {
		t.Fatalf("cannot attend: %v", err)
	}
}

// inserts a contest record without linking it into the status
func insertRecord(t *testing.T, db *dbtest.FakeQueries, contest database.Contest, userID uuid.UUID, pid int32) uuid.UUID {
	t.Helper()
	id := uuid.New()
	contestID := contest.DocID
	_, err := db.InsertRecord(context.Background(), database.InsertRecordParams{
		ID:         id,
		DomainID:   contest.DomainID,
		ProblemID:  pid,
		RecordType: 0,
		UserID:     userID,
		Lang:       "cpp",
		Code:       "int main() {}",
		ContestID:  &contestID,
		Hidden:     true,
	})
	if err != nil {
		t.Fatalf("cannot insert record: %v", err)
	}
	return id
}

func attendOf(t *testing.T, db *dbtest.FakeQueries, domainID string, contestID int64) int32 {
	t.Helper()
	c, err := db.GetContestByID(context.Background(), domainID, contestID)
	if err != nil {
		t.Fatalf("cannot get contest: %v", err)
	}
	return c.Attend
}

// polls cond until it holds or the timeout passes
func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
