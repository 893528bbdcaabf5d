package contest_service

import (
	"encoding/json"
	"time"
)

// Phase is derived from the contest window and the current time, it is
// never stored
type Phase int

const (
	PhasePending Phase = iota
	PhaseOngoing
	PhaseDone
)

var phaseNames = [...]string{"pending", "ongoing", "done"}

func (p Phase) String() string {
	if p < PhasePending || p > PhaseDone {
		return "unknown"
	}
	return phaseNames[p]
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// GetPhase: [beginAt, endAt) is ongoing
func GetPhase(beginAt, endAt, now time.Time) Phase {
	if now.Before(beginAt) {
		return PhasePending
	}
	if now.Before(endAt) {
		return PhaseOngoing
	}
	return PhaseDone
}

// Now is read once per operation and handed to every check in it
func (c *ContestService) Now() time.Time {
	if c.Clock != nil {
		return c.Clock().UTC()
	}
	return time.Now().UTC()
}
