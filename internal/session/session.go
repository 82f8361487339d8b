// Package session runs the client's single control loop. Authority events,
// user commands, the presentation tick and the post-result display timer are
// all handled on one goroutine; readers see an immutable View.
package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"mines-client/internal/clocksync"
	"mines-client/internal/ledger"
	"mines-client/internal/metrics"
	"mines-client/internal/round"
	"mines-client/internal/store"
	"mines-client/internal/ws"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	TickInterval    = 100 * time.Millisecond
	DisplayDuration = 5 * time.Second
)

var ErrStopped = errors.New("session_stopped")

// Emitter sends outbound events to the authority.
type Emitter interface {
	Emit(event string, payload any) error
}

type Options struct {
	Clock          clockwork.Clock
	Store          *store.Store
	Emitter        Emitter
	InitialBalance decimal.Decimal
	SlotCount      int
	PlayerName     string
}

type Session struct {
	clock   clockwork.Clock
	sync    *clocksync.Sync
	machine *round.Machine
	ledger  *ledger.Ledger
	store   *store.Store
	emitter Emitter

	players     map[string]ws.Player
	connected   bool
	lastOutcome *ledger.Outcome

	display      clockwork.Timer
	displayRound string

	commands chan func()
	done     chan struct{}
	running  atomic.Bool
	view     atomic.Pointer[View]
}

func New(opts Options) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	name := opts.PlayerName
	if name == "" {
		name = store.NewDisplayName()
	}
	identity := ledger.Identity{PlayerID: store.NewPlayerID(), DisplayName: name}
	sync := clocksync.New(clock)
	s := &Session{
		clock:    clock,
		sync:     sync,
		machine:  round.NewMachine(sync),
		ledger:   ledger.New(identity, opts.InitialBalance, opts.SlotCount),
		store:    opts.Store,
		emitter:  opts.Emitter,
		players:  map[string]ws.Player{},
		commands: make(chan func()),
		done:     make(chan struct{}),
	}
	s.publish()
	return s
}

// Recover restores the durable ledger and, when still fresh, the round that
// was in progress. Unreadable records fall back to defaults. Defaults are only
// written back when no ledger is stored; a failed read leaves the stored
// ledger untouched.
func (s *Session) Recover(ctx context.Context) {
	snap, roundOK, err := s.store.LoadRoundSnapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("round snapshot unavailable, starting cold")
	}
	currentRound := ""
	if roundOK {
		state := roundStateFromSnapshot(snap)
		if err := s.machine.Restore(state, time.Duration(snap.Offset)*time.Millisecond); err != nil {
			log.Warn().Err(err).Str("round_id", snap.RoundID).Msg("discarding invalid round snapshot")
			if err := s.store.DeleteRoundSnapshot(ctx); err != nil {
				log.Warn().Err(err).Msg("delete round snapshot failed")
			}
		} else if state.Phase != round.PhaseIdle {
			currentRound = state.RoundID
			s.ledger.BeginRound(currentRound)
			log.Info().
				Str("round_id", state.RoundID).
				Str("phase", string(state.Phase)).
				Dur("remaining", s.machine.Remaining()).
				Msg("round restored")
		}
	}

	led, ledgerOK, err := s.store.LoadLedger(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("ledger unavailable, using defaults")
	}
	switch {
	case ledgerOK:
		s.ledger.Restore(ledgerStateFromSnapshot(led), currentRound)
	case err == nil:
		s.saveLedger(ctx)
	}
	metrics.Balance.Set(s.ledger.Balance().InexactFloat64())
	s.publish()
}

// Run processes events until ctx ends or events is closed. Both scheduled
// tasks are stopped before it returns.
func (s *Session) Run(ctx context.Context, events <-chan ws.Event) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("session already running")
	}
	ticker := s.clock.NewTicker(TickInterval)
	defer func() {
		ticker.Stop()
		s.stopDisplay()
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.handle(ctx, ev)
			s.publish()
		case fn := <-s.commands:
			fn()
			s.publish()
		case <-ticker.Chan():
			s.publish()
		case <-s.displayChan():
			s.finishDisplay()
			s.publish()
		}
	}
}

// View returns the most recently published read model.
func (s *Session) View() View {
	return *s.view.Load()
}

// do runs fn on the loop goroutine and waits for it.
func (s *Session) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case s.commands <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrStopped
	}
	<-finished
	return nil
}

func (s *Session) scheduleDisplay(roundID string) {
	s.stopDisplay()
	s.display = s.clock.NewTimer(DisplayDuration)
	s.displayRound = roundID
}

func (s *Session) stopDisplay() {
	if s.display != nil {
		s.display.Stop()
	}
	s.display = nil
	s.displayRound = ""
}

func (s *Session) displayChan() <-chan time.Time {
	if s.display == nil {
		return nil
	}
	return s.display.Chan()
}

func (s *Session) finishDisplay() {
	roundID := s.displayRound
	s.display = nil
	s.displayRound = ""
	if s.machine.Finish(roundID) {
		log.Debug().Str("round_id", roundID).Msg("display window closed")
	}
}
