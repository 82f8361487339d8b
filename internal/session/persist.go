package session

import (
	"context"
	"time"

	"mines-client/internal/ledger"
	"mines-client/internal/metrics"
	"mines-client/internal/round"
	"mines-client/internal/store"

	"github.com/rs/zerolog/log"
)

func roundStateFromSnapshot(snap store.RoundSnapshot) round.State {
	return round.State{
		RoundID:     snap.RoundID,
		Phase:       round.Phase(snap.Phase),
		StartTime:   time.UnixMilli(snap.StartTime).UTC(),
		EndTime:     time.UnixMilli(snap.EndTime).UTC(),
		RoundNumber: snap.RoundNumber,
	}
}

func ledgerStateFromSnapshot(snap store.LedgerSnapshot) ledger.State {
	st := ledger.State{
		Identity: ledger.Identity{PlayerID: snap.PlayerID, DisplayName: snap.DisplayName},
		Balance:  snap.Balance,
		Stats: ledger.Stats{
			GamesPlayed:  snap.GamesPlayed,
			Wins:         snap.Wins,
			Losses:       snap.Losses,
			TotalWagered: snap.TotalWagered,
		},
	}
	if p := snap.PendingBet; p != nil {
		st.PendingBet = &ledger.BetRecord{
			PlayerID: snap.PlayerID,
			RoundID:  p.RoundID,
			Amount:   p.Amount,
			Slot:     p.SelectedSlot,
		}
	}
	return st
}

// Store writes outlive the caller's context and are bounded by storeTimeout.
const storeTimeout = 5 * time.Second

func storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
}

func (s *Session) saveRound(ctx context.Context) {
	ctx, cancel := storeContext(ctx)
	defer cancel()
	st := s.machine.State()
	_, err := s.store.SaveRoundSnapshot(ctx, store.RoundSnapshot{
		RoundID:     st.RoundID,
		Phase:       string(st.Phase),
		StartTime:   st.StartTime.UnixMilli(),
		EndTime:     st.EndTime.UnixMilli(),
		RoundNumber: st.RoundNumber,
		Offset:      s.sync.Offset().Milliseconds(),
	})
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("save_round").Inc()
		log.Error().Err(err).Str("round_id", st.RoundID).Msg("save round snapshot failed")
	}
}

func (s *Session) deleteRound(ctx context.Context) {
	ctx, cancel := storeContext(ctx)
	defer cancel()
	if err := s.store.DeleteRoundSnapshot(ctx); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("delete_round").Inc()
		log.Error().Err(err).Msg("delete round snapshot failed")
	}
}

func (s *Session) saveLedger(ctx context.Context) {
	ctx, cancel := storeContext(ctx)
	defer cancel()
	st := s.ledger.State()
	snap := store.LedgerSnapshot{
		PlayerID:     st.Identity.PlayerID,
		DisplayName:  st.Identity.DisplayName,
		Balance:      st.Balance,
		GamesPlayed:  st.Stats.GamesPlayed,
		Wins:         st.Stats.Wins,
		Losses:       st.Stats.Losses,
		TotalWagered: st.Stats.TotalWagered,
	}
	if st.PendingBet != nil {
		snap.PendingBet = &store.PendingBet{
			RoundID:      st.PendingBet.RoundID,
			Amount:       st.PendingBet.Amount,
			SelectedSlot: st.PendingBet.Slot,
		}
	}
	if err := s.store.SaveLedger(ctx, snap); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("save_ledger").Inc()
		log.Error().Err(err).Msg("save ledger failed")
	}
	metrics.Balance.Set(st.Balance.InexactFloat64())
}
