package reconcile_service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/service/user_service"
)

const (
	defaultInterval     = 10 * time.Minute
	defaultQueueBuffer  = 64
	defaultQueueName    = "arena:reconcile"
	redisPopTimeout     = 5 * time.Second
	maxFinishedRunsKept = 256

	passAttendance   = "attendance"
	passProblemCount = "problem_count"
	passSync         = "sync_submissions"
)

type RunState int

const (
	StateQueued RunState = iota
	StateRunning
	StateCompleted
	StateFailed
)

var runStateNames = [...]string{"queued", "running", "completed", "failed"}

func (s RunState) String() string {
	if s < StateQueued || s > StateFailed {
		return "unknown"
	}
	return runStateNames[s]
}

// PassResult reports what a single reconciliation pass wrote
type PassResult struct {
	Pass   string `json:"pass"`
	Groups int    `json:"groups"`
	// false when the grouped result was empty and the bulk write skipped
	BulkWritten bool `json:"bulk_written"`
}

// Run is one reconciliation of one domain
type Run struct {
	RunID      uuid.UUID    `json:"run_id"`
	DomainID   string       `json:"domain_id"`
	QueueTime  time.Time    `json:"queue_time"`
	LaunchTime time.Time    `json:"launch_time"`
	FinishTime time.Time    `json:"finish_time"`
	State      RunState     `json:"state"`
	Results    []PassResult `json:"results"`
	Error      string       `json:"error,omitempty"`
}

func (r Run) String() string {
	return fmt.Sprintf(
		"[RunID=%s DomainID=%s QueueTime=%s LaunchTime=%s State=%v]",
		r.RunID, r.DomainID, r.QueueTime, r.LaunchTime, r.State,
	)
}

type roleAuthorizer interface {
	AuthorizeUserRole(ctx context.Context, domainID string, userID uuid.UUID, role user_service.UserRole, warnMessage string) error
}

type ReconcileService struct {
	DB database.Querier
	// authorizes manual triggers, may be nil when only the ticker is used
	UserService roleAuthorizer
	// Queue is optional, without it triggers stay in process
	Queue       TriggerQueue
	Interval    time.Duration
	QueueBuffer int32

	runQueue chan string
	// domain id -> run that is queued or running
	inFlight map[string]*Run
	runs     map[uuid.UUID]*Run
	finished []uuid.UUID
	// inFlight, runs and finished use the below lock
	runLock sync.RWMutex
	wg      sync.WaitGroup
}
