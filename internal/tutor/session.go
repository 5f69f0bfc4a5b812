package tutor

import (
	"slices"
	"time"

	"github.com/opengov/earlymath/internal/llm"
)

// State is a session lifecycle phase.
type State string

const (
	// StateActive sessions accept turns.
	StateActive State = "active"
	// StateIdle sessions are parked by inactivity or budget and resume
	// on the next ask.
	StateIdle State = "idle"
	// StateClosed sessions ended explicitly or outlived the close
	// timeout.
	StateClosed State = "closed"
	// StateErrored sessions hit an unrecoverable provider fault.
	StateErrored State = "errored"
)

// Session is one tutoring conversation between a student and the tutor.
type Session struct {
	ID         string
	StudentID  string
	Topic      string
	Grade      int
	Difficulty int
	Rationale  string
	State      State
	Greeting   string
	Turns      []Turn
	TurnsUsed  int
	CostUSD    float64
	StartedAt  time.Time
	LastActive time.Time
}

// Turn is a single message in the session transcript. The greeting is
// not a turn; it lives in Session.Greeting.
type Turn struct {
	Role    llm.Role
	Content string
	At      time.Time
}

// Terminal reports whether the session stopped accepting turns for good.
func (s *Session) Terminal() bool {
	return s.State == StateClosed || s.State == StateErrored
}

// expire applies inactivity transitions. Idle sessions resume on the
// next ask; closed ones do not.
func (s *Session) expire(now time.Time, idleAfter, closeAfter time.Duration) {
	if s.Terminal() || s.LastActive.IsZero() {
		return
	}
	since := now.Sub(s.LastActive)
	switch {
	case closeAfter > 0 && since >= closeAfter:
		s.State = StateClosed
	case idleAfter > 0 && since >= idleAfter:
		s.State = StateIdle
	}
}

// clone returns a copy safe to hand outside the session lock.
func (s Session) clone() Session {
	s.Turns = slices.Clone(s.Turns)
	return s
}
