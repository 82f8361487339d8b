package session

import (
	"context"

	"mines-client/internal/ledger"
	"mines-client/internal/metrics"
	"mines-client/internal/ws"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SelectSlot chooses the slot for the next bet.
func (s *Session) SelectSlot(ctx context.Context, slot int) error {
	var err error
	if doErr := s.do(ctx, func() {
		if !s.machine.CanSelect() {
			err = ledger.ErrRoundInProgress
			return
		}
		err = s.ledger.SelectSlot(s.machine.Phase(), slot)
	}); doErr != nil {
		return doErr
	}
	return err
}

// PlaceBet debits amount on the selected slot for the active round and
// announces it to the authority. An emit failure does not undo the bet.
func (s *Session) PlaceBet(ctx context.Context, amount decimal.Decimal) (ledger.BetRecord, error) {
	var (
		bet ledger.BetRecord
		err error
	)
	doErr := s.do(ctx, func() {
		if !s.machine.CanBet() {
			err = ledger.ErrRoundNotActive
			metrics.BetsTotal.WithLabelValues(err.Error()).Inc()
			return
		}
		bet, err = s.ledger.PlaceBet(s.machine.Phase(), s.machine.RoundID(), amount)
		if err != nil {
			metrics.BetsTotal.WithLabelValues(err.Error()).Inc()
			return
		}
		metrics.BetsTotal.WithLabelValues("accepted").Inc()
		s.saveLedger(ctx)
		if emitErr := s.emitter.Emit(ws.EventPlaceBet, ws.PlaceBet{
			PlayerID:     bet.PlayerID,
			Amount:       bet.Amount,
			SelectedSlot: bet.Slot,
		}); emitErr != nil {
			log.Warn().Err(emitErr).Str("round_id", bet.RoundID).Msg("place_bet not sent")
		}
		log.Info().
			Str("round_id", bet.RoundID).
			Str("amount", bet.Amount.String()).
			Int("slot", bet.Slot).
			Msg("bet placed")
	})
	if doErr != nil {
		return ledger.BetRecord{}, doErr
	}
	return bet, err
}

func (s *Session) ResetStats(ctx context.Context) error {
	return s.do(ctx, func() {
		s.ledger.ResetStats()
		s.saveLedger(ctx)
	})
}

// ResetGame restores the initial balance and clears statistics.
func (s *Session) ResetGame(ctx context.Context) error {
	return s.do(ctx, func() {
		s.ledger.ResetGame()
		s.lastOutcome = nil
		s.saveLedger(ctx)
	})
}

func (s *Session) Export(ctx context.Context) (ledger.Export, error) {
	var out ledger.Export
	err := s.do(ctx, func() {
		out = s.ledger.Export(s.clock.Now())
	})
	return out, err
}
