package session

import (
	"context"

	"mines-client/internal/metrics"
	"mines-client/internal/round"
	"mines-client/internal/ws"

	"github.com/rs/zerolog/log"
)

func (s *Session) handle(ctx context.Context, ev ws.Event) {
	metrics.EventsTotal.WithLabelValues(ev.Name).Inc()
	switch ev.Name {
	case ws.EventConnected:
		s.connected = true
		s.announce()
	case ws.EventDisconnected:
		s.connected = false
	case ws.EventOnlinePlayers:
		s.players = make(map[string]ws.Player, len(ev.Players))
		for _, p := range ev.Players {
			s.players[p.ID] = p
		}
	case ws.EventPlayerJoined:
		s.players[ev.Player.ID] = ev.Player
	case ws.EventPlayerLeft:
		delete(s.players, ev.PlayerID)
		s.ledger.ForgetPlayer(ev.PlayerID)
	case ws.EventGameState:
		s.onGameState(ctx, ev.State)
	case ws.EventRoundStart:
		s.onRoundStart(ctx, ev)
	case ws.EventRoundResult:
		s.onRoundResult(ctx, ev.Result)
	case ws.EventPlayerBet:
		if s.ledger.ApplyRosterBet(s.machine.Phase(), ev.Bet) {
			s.saveLedger(ctx)
		}
	default:
		log.Debug().Str("event", ev.Name).Msg("ignoring event")
	}
}

func (s *Session) announce() {
	id := s.ledger.Identity()
	err := s.emitter.Emit(ws.EventPlayerJoin, ws.PlayerJoin{
		PlayerID:    id.PlayerID,
		DisplayName: id.DisplayName,
		Balance:     s.ledger.Balance(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("player_join not sent")
	}
}

func (s *Session) onRoundStart(ctx context.Context, ev ws.Event) {
	started, err := s.machine.Start(ev.Start)
	if err != nil {
		log.Warn().Err(err).Str("round_id", ev.Start.RoundID).Msg("rejecting round_start")
		return
	}
	if !started {
		log.Debug().Str("round_id", ev.Start.RoundID).Msg("ignoring repeated round_start")
		return
	}
	s.roundStarted(ctx)
}

func (s *Session) onGameState(ctx context.Context, p round.Partial) {
	switch s.machine.Merge(p) {
	case round.MergeStarted:
		s.roundStarted(ctx)
	case round.MergeUpdated:
		if s.machine.Phase() == round.PhaseActive {
			s.saveRound(ctx)
		}
	}
}

// roundStarted resets everything scoped to the previous round.
func (s *Session) roundStarted(ctx context.Context) {
	st := s.machine.State()
	s.stopDisplay()
	s.ledger.BeginRound(st.RoundID)
	s.lastOutcome = nil
	s.saveRound(ctx)
	log.Info().
		Str("round_id", st.RoundID).
		Int("round_number", st.RoundNumber).
		Dur("offset", s.sync.Offset()).
		Dur("remaining", s.machine.Remaining()).
		Msg("round started")
}

func (s *Session) onRoundResult(ctx context.Context, res round.Result) {
	if !s.machine.Resolve(res) {
		log.Debug().
			Str("round_id", res.RoundID).
			Str("current_round_id", s.machine.RoundID()).
			Msg("ignoring round_result")
		return
	}
	s.deleteRound(ctx)

	if out, ok := s.ledger.Settle(res); ok {
		s.lastOutcome = &out
		label := "lost"
		if out.Won {
			label = "won"
		}
		metrics.SettlementsTotal.WithLabelValues(label).Inc()
		s.saveLedger(ctx)
		log.Info().
			Str("round_id", res.RoundID).
			Int("losing_slot", res.LosingSlot).
			Int("selected_slot", out.SelectedSlot).
			Bool("won", out.Won).
			Str("profit", out.Profit.String()).
			Str("balance", s.ledger.Balance().String()).
			Msg("round settled")
	}
	s.scheduleDisplay(res.RoundID)
}
