package database

import (
	"time"

	"github.com/google/uuid"
)

type Contest struct {
	DomainID  string
	DocID     int64
	Title     string
	Slug      string
	Rule      int16
	BeginAt   time.Time
	EndAt     time.Time
	Pids      []int32
	OwnerUID  uuid.UUID
	Attend    int32
	CreatedAt time.Time
}

type ContestStatus struct {
	DomainID  string
	ContestID int64
	UserID    uuid.UUID
	Attend    int16
	CreatedAt time.Time
}

type ContestProblemStatus struct {
	DomainID    string
	ContestID   int64
	UserID      uuid.UUID
	ProblemID   int32
	RecordID    uuid.UUID
	Accepted    bool
	Score       int32
	SubmitCount int32
	UpdatedAt   time.Time
}

type Problem struct {
	DomainID  string
	DocID     int32
	Title     string
	OwnerUID  uuid.UUID
	CreatedAt time.Time
}

type DomainUser struct {
	DomainID    string
	UserID      uuid.UUID
	NumProblems int32
}

type Record struct {
	ID         uuid.UUID
	DomainID   string
	ProblemID  int32
	RecordType int16
	UserID     uuid.UUID
	Lang       string
	Code       string
	ContestID  *int64
	Hidden     bool
	Verdict    int16
	Score      int32
	CreatedAt  time.Time
}

// one group row of the attendance aggregation
type ContestAttendCount struct {
	ContestID int64
	Attend    int32
}

// one group row of the problem ownership aggregation
type OwnerProblemCount struct {
	OwnerUID    uuid.UUID
	NumProblems int32
}

// latest contest record of a (contest, user, problem) whose problem status
// row is missing or stale
type UnsyncedSubmission struct {
	ContestID   int64
	UserID      uuid.UUID
	ProblemID   int32
	RecordID    uuid.UUID
	Verdict     int16
	Score       int32
	SubmitCount int32
}
