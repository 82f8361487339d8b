package round

import (
	"time"

	"mines-client/internal/clocksync"
)

// Machine tracks round phase and timing. It is driven only by authority
// events and the display timer; it is not safe for concurrent use.
type Machine struct {
	sync        *clocksync.Sync
	state       State
	lastRoundID string
}

func NewMachine(sync *clocksync.Sync) *Machine {
	return &Machine{sync: sync, state: State{Phase: PhaseIdle}}
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Phase() Phase { return m.state.Phase }

func (m *Machine) RoundID() string { return m.state.RoundID }

// CanSelect is true between rounds: slot choice is locked while betting is open.
func (m *Machine) CanSelect() bool { return m.state.Phase != PhaseActive }

func (m *Machine) CanBet() bool { return m.state.Phase == PhaseActive }

// Remaining is the betting time left on the authority clock.
func (m *Machine) Remaining() time.Duration {
	if m.state.Phase != PhaseActive {
		return 0
	}
	return m.sync.Remaining(m.state.EndTime)
}

// Known reports whether roundID is the current round or the one before it.
func (m *Machine) Known(roundID string) bool {
	if roundID == "" {
		return false
	}
	if m.state.Phase != PhaseIdle && m.state.RoundID == roundID {
		return true
	}
	return m.lastRoundID == roundID
}

// Start replaces the round wholesale. A repeat of a known round is ignored
// without touching the clock offset; the first return value reports whether
// the transition happened.
func (m *Machine) Start(s Start) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	if m.Known(s.RoundID) {
		return false, nil
	}
	m.sync.Synchronize(s.ServerTime)
	if m.state.RoundID != "" {
		m.lastRoundID = m.state.RoundID
	}
	m.state = State{
		RoundID:     s.RoundID,
		Phase:       PhaseActive,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		RoundNumber: s.RoundNumber,
	}
	return true, nil
}

// Resolve moves the current active round to resolving. Results for any other
// round, or repeats for a round already resolving, are ignored.
func (m *Machine) Resolve(r Result) bool {
	if r.RoundID == "" || r.RoundID != m.state.RoundID || m.state.Phase != PhaseActive {
		return false
	}
	m.state.Phase = PhaseResolving
	return true
}

// Finish ends the display window for roundID. A timer left over from a round
// that has since been replaced is a no-op.
func (m *Machine) Finish(roundID string) bool {
	if m.state.Phase != PhaseResolving || m.state.RoundID != roundID {
		return false
	}
	m.lastRoundID = roundID
	m.state = State{Phase: PhaseIdle, RoundNumber: m.state.RoundNumber}
	return true
}

type MergeOutcome int

const (
	MergeIgnored MergeOutcome = iota
	MergeUpdated
	MergeStarted
)

// Merge applies a game_state push. A push describing a new active round is
// promoted to Start; otherwise only round number and the current round's
// timing are merged and the phase is left alone.
func (m *Machine) Merge(p Partial) MergeOutcome {
	if st, ok := p.asStart(); ok && !m.Known(st.RoundID) {
		if started, err := m.Start(st); err == nil && started {
			return MergeStarted
		}
		return MergeIgnored
	}

	out := MergeIgnored
	if p.RoundNumber != nil && *p.RoundNumber != m.state.RoundNumber {
		m.state.RoundNumber = *p.RoundNumber
		out = MergeUpdated
	}
	if m.state.Phase == PhaseIdle {
		return out
	}
	if p.RoundID != nil && *p.RoundID != m.state.RoundID {
		return out
	}
	start, end := m.state.StartTime, m.state.EndTime
	if p.StartTime != nil {
		start = *p.StartTime
	}
	if p.EndTime != nil {
		end = *p.EndTime
	}
	if !end.After(start) {
		return out
	}
	if !start.Equal(m.state.StartTime) || !end.Equal(m.state.EndTime) {
		m.state.StartTime = start
		m.state.EndTime = end
		out = MergeUpdated
	}
	return out
}

// Restore reinstates a persisted round and clock offset verbatim.
func (m *Machine) Restore(s State, offset time.Duration) error {
	if !s.Phase.Valid() {
		return ErrInvalidRound
	}
	if s.Phase != PhaseIdle && (s.RoundID == "" || !s.EndTime.After(s.StartTime)) {
		return ErrInvalidRound
	}
	m.state = s
	m.sync.Restore(offset)
	return nil
}
