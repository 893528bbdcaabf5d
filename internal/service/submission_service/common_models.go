package submission_service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/service/contest_service"
)

var (
	// used for conversion of db error codes to user understandable messages
	errMsgs = map[string]map[string]string{
		"23503": {
			"records_problem_fkey": "problem does not exist",
		},
	}
)

const (
	fromSubmissionService = "submission service"
	fromRecordService     = "record service"

	// records listed on a contest problem's submit page
	RecentRecordsLimit = 10
)

type RecordType int16

const (
	RecordTypeSubmission RecordType = 0
	RecordTypePretest    RecordType = 1
)

type Verdict int16

const (
	VerdictWaiting      Verdict = 0
	VerdictAccepted     Verdict = 1
	VerdictWrongAnswer  Verdict = 2
	VerdictTimeLimit    Verdict = 3
	VerdictMemoryLimit  Verdict = 4
	VerdictOutputLimit  Verdict = 5
	VerdictRuntimeError Verdict = 6
	VerdictCompileError Verdict = 7
	VerdictSystemError  Verdict = 8
	VerdictCanceled     Verdict = 9
	VerdictJudging      Verdict = 20
	VerdictCompiling    Verdict = 21
)

var verdictNames = map[Verdict]string{
	VerdictWaiting:      "waiting",
	VerdictAccepted:     "accepted",
	VerdictWrongAnswer:  "wrong_answer",
	VerdictTimeLimit:    "time_limit_exceeded",
	VerdictMemoryLimit:  "memory_limit_exceeded",
	VerdictOutputLimit:  "output_limit_exceeded",
	VerdictRuntimeError: "runtime_error",
	VerdictCompileError: "compile_error",
	VerdictSystemError:  "system_error",
	VerdictCanceled:     "canceled",
	VerdictJudging:      "judging",
	VerdictCompiling:    "compiling",
}

func (v Verdict) String() string {
	if name, ok := verdictNames[v]; ok {
		return name
	}
	return "unknown"
}

// final verdicts are the ones a judge reports back, the rest are
// intermediate states of a record
func (v Verdict) IsFinal() bool {
	switch v {
	case VerdictWaiting, VerdictJudging, VerdictCompiling:
		return false
	}
	_, ok := verdictNames[v]
	return ok
}

var supportedLanguages = []string{"c", "cc", "cpp", "java", "pas", "py", "py3", "go", "rs"}

// RecordService owns the records. The contest core only creates them and
// reads them back, verdicts arrive through the judge callback.
type RecordService interface {
	Create(ctx context.Context, params CreateRecordParams) (Record, error)
	Get(ctx context.Context, recordID uuid.UUID) (Record, error)
	UpdateVerdict(ctx context.Context, recordID uuid.UUID, verdict Verdict, score int32) (Record, error)
	ListUserContestProblem(ctx context.Context, params ListRecordsParams) ([]Record, error)
}

type ListRecordsParams struct {
	DomainID  string
	ContestID int64
	UserID    uuid.UUID
	ProblemID int32
	Limit     int32
}

type CreateRecordParams struct {
	DomainID  string
	ProblemID int32
	Type      RecordType
	UserID    uuid.UUID
	Lang      string
	Code      string
	ContestID *int64
	Hidden    bool
}

type Record struct {
	ID        uuid.UUID  `json:"rid"`
	DomainID  string     `json:"domain_id"`
	ProblemID int32      `json:"pid"`
	Type      RecordType `json:"type"`
	UserID    uuid.UUID  `json:"uid"`
	Lang      string     `json:"lang"`
	Code      string     `json:"code,omitempty"`
	ContestID *int64     `json:"contest_id"`
	Hidden    bool       `json:"hidden"`
	Verdict   Verdict    `json:"verdict"`
	Score     int32      `json:"score"`
	CreatedAt time.Time  `json:"created_at"`
}

type SubmissionService struct {
	Records        RecordService
	UserService    contest_service.Privileges
	ContestService *contest_service.ContestService
	logger         *logrus.Entry
}

type SubmitRequest struct {
	DomainID  string `json:"domain_id" validate:"required"`
	ContestID int64  `json:"contest_id" validate:"gt=0"`
	ProblemID int32  `json:"problem_id" validate:"gt=0"`
	Lang      string `json:"lang" validate:"required"`
	Code      string `json:"code" validate:"required,max=65536"`
}

type VerdictRequest struct {
	Verdict Verdict `json:"verdict"`
	Score   int32   `json:"score" validate:"gte=0,lte=100"`
}

func dbRecordToServiceRecord(r database.Record) Record {
	return Record{
		ID:        r.ID,
		DomainID:  r.DomainID,
		ProblemID: r.ProblemID,
		Type:      RecordType(r.RecordType),
		UserID:    r.UserID,
		Lang:      r.Lang,
		Code:      r.Code,
		ContestID: r.ContestID,
		Hidden:    r.Hidden,
		Verdict:   Verdict(r.Verdict),
		Score:     r.Score,
		CreatedAt: r.CreatedAt,
	}
}
