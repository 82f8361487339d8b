package round

import (
	"errors"
	"time"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseActive    Phase = "active"
	PhaseResolving Phase = "resolving"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseIdle, PhaseActive, PhaseResolving:
		return true
	default:
		return false
	}
}

var ErrInvalidRound = errors.New("invalid_round")

// State is the client's view of the authority's current round. When Phase is
// not idle, EndTime is after StartTime.
type State struct {
	RoundID     string
	Phase       Phase
	StartTime   time.Time
	EndTime     time.Time
	RoundNumber int
}

// Start is a round_start from the authority.
type Start struct {
	RoundID     string
	ServerTime  time.Time
	StartTime   time.Time
	EndTime     time.Time
	RoundNumber int
}

func (s Start) Validate() error {
	if s.RoundID == "" || s.ServerTime.IsZero() {
		return ErrInvalidRound
	}
	if !s.EndTime.After(s.StartTime) {
		return ErrInvalidRound
	}
	return nil
}

// Result is a round_result from the authority.
type Result struct {
	RoundID    string
	LosingSlot int
}

// Partial is a game_state push; nil fields were not sent.
type Partial struct {
	RoundID     *string
	Active      *bool
	StartTime   *time.Time
	EndTime     *time.Time
	RoundNumber *int
	ServerTime  *time.Time
}

// asStart reports whether the partial carries a complete, active round.
func (p Partial) asStart() (Start, bool) {
	if p.Active == nil || !*p.Active || p.RoundID == nil || p.StartTime == nil || p.EndTime == nil || p.ServerTime == nil {
		return Start{}, false
	}
	st := Start{
		RoundID:    *p.RoundID,
		ServerTime: *p.ServerTime,
		StartTime:  *p.StartTime,
		EndTime:    *p.EndTime,
	}
	if p.RoundNumber != nil {
		st.RoundNumber = *p.RoundNumber
	}
	if st.Validate() != nil {
		return Start{}, false
	}
	return st, true
}
