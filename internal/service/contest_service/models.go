package contest_service

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/service/problem_service"
	"github.com/tcp_snm/arena/internal/service/user_service"
)

const (
	ContestsPerPage    = 20
	MaxContestsPerPage = 100
	MaxContestProblems = 100
)

var (
	errMsgs = map[string]map[string]string{
		"23503": {
			"contest_status_contest_fkey":         "contest does not exist",
			"contest_problem_status_contest_fkey": "contest does not exist",
		},
	}
)

// Privileges is the permission capability the contest rules are layered on
type Privileges interface {
	AuthorizeUserRole(ctx context.Context, domainID string, userID uuid.UUID, role user_service.UserRole, warnMessage string) error
	AuthorizeCreatorAccess(ctx context.Context, domainID string, creatorID uuid.UUID, userID uuid.UUID, warnMessage string) error
	CanViewScoreboard(ctx context.Context, domainID string, userID uuid.UUID) (bool, error)
}

type ContestService struct {
	DB                   database.Querier
	UserServiceConfig    Privileges
	ProblemServiceConfig *problem_service.ProblemService
	// Clock overrides time.Now, tests pin it
	Clock  func() time.Time
	logger *logrus.Entry
}

type Rule int16

const (
	RuleOI  Rule = 2
	RuleACM Rule = 3
)

var contestRules = map[Rule]string{
	RuleOI:  "oi",
	RuleACM: "acm",
}

func (r Rule) String() string {
	if name, ok := contestRules[r]; ok {
		return name
	}
	return "unknown"
}

type Contest struct {
	DomainID  string    `json:"domain_id"`
	ID        int64     `json:"contest_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Rule      Rule      `json:"rule"`
	BeginAt   time.Time `json:"begin_at"`
	EndAt     time.Time `json:"end_at"`
	Pids      []int32   `json:"pids"`
	OwnerUID  uuid.UUID `json:"owner_uid"`
	Attend    int32     `json:"attend"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Contest) Phase(now time.Time) Phase {
	return GetPhase(c.BeginAt, c.EndAt, now)
}

func (c Contest) HasProblem(problemID int32) bool {
	return slices.Contains(c.Pids, problemID)
}

type ContestInput struct {
	Title   string    `json:"title" validate:"required,min=5,max=100"`
	Rule    Rule      `json:"rule"`
	BeginAt time.Time `json:"begin_at" validate:"required"`
	EndAt   time.Time `json:"end_at" validate:"required,gtfield=BeginAt"`
	Pids    []int32   `json:"pids" validate:"max=100,unique,dive,gt=0"`
}

// nil fields are left untouched
type ContestPatch struct {
	Title   *string    `json:"title"`
	Rule    *Rule      `json:"rule"`
	BeginAt *time.Time `json:"begin_at"`
	EndAt   *time.Time `json:"end_at"`
	Pids    *[]int32   `json:"pids"`
}

type ListContestsRequest struct {
	DomainID string `json:"domain_id" validate:"required"`
	Rule     Rule   `json:"rule"`
	Page     int32  `json:"page" validate:"gte=1"`
	PageSize int32  `json:"page_size" validate:"gte=1,lte=100"`
}

type ContestPage struct {
	Contests  []Contest `json:"contests"`
	Total     int64     `json:"total"`
	PageCount int64     `json:"page_count"`
	Page      int32     `json:"page"`
}

type ProblemStatus struct {
	ProblemID   int32     `json:"pid"`
	RecordID    uuid.UUID `json:"rid"`
	Accepted    bool      `json:"accepted"`
	Score       int32     `json:"score"`
	SubmitCount int32     `json:"submit_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ContestStatus struct {
	ContestID int64                   `json:"contest_id"`
	UserID    uuid.UUID               `json:"user_id"`
	Attend    int16                   `json:"attend"`
	Detail    map[int32]ProblemStatus `json:"detail"`
}

func (s *ContestStatus) Attended() bool {
	return s != nil && s.Attend == 1
}

type RecordSubmissionParams struct {
	DomainID  string
	ContestID int64
	UserID    uuid.UUID
	ProblemID int32
	RecordID  uuid.UUID
	Accepted  bool
	Score     int32
}

type ContestDetail struct {
	Contest     Contest                           `json:"contest"`
	Phase       Phase                             `json:"phase"`
	Status      *ContestStatus                    `json:"status"`
	Attended    bool                              `json:"attended"`
	ShowRecords bool                              `json:"show_records"`
	Problems    map[int32]problem_service.Problem `json:"problems"`
}

func dbContestToServiceContest(c database.Contest) Contest {
	pids := c.Pids
	if pids == nil {
		pids = []int32{}
	}
	return Contest{
		DomainID:  c.DomainID,
		ID:        c.DocID,
		Title:     c.Title,
		Slug:      c.Slug,
		Rule:      Rule(c.Rule),
		BeginAt:   c.BeginAt.UTC(),
		EndAt:     c.EndAt.UTC(),
		Pids:      pids,
		OwnerUID:  c.OwnerUID,
		Attend:    c.Attend,
		CreatedAt: c.CreatedAt,
	}
}

func dbProblemStatusToServiceStatus(ps database.ContestProblemStatus) ProblemStatus {
	return ProblemStatus{
		ProblemID:   ps.ProblemID,
		RecordID:    ps.RecordID,
		Accepted:    ps.Accepted,
		Score:       ps.Score,
		SubmitCount: ps.SubmitCount,
		UpdatedAt:   ps.UpdatedAt,
	}
}
