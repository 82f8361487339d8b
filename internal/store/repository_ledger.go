package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LedgerSnapshot is the durable account record. It never expires.
type LedgerSnapshot struct {
	PlayerID     string          `json:"playerId"`
	DisplayName  string          `json:"displayName"`
	Balance      decimal.Decimal `json:"balance"`
	GamesPlayed  int             `json:"gamesPlayed"`
	Wins         int             `json:"wins"`
	Losses       int             `json:"losses"`
	TotalWagered decimal.Decimal `json:"totalWagered"`
	PendingBet   *PendingBet     `json:"pendingBet,omitempty"`
}

// PendingBet is the local bet of the round that was in progress when the
// ledger was written.
type PendingBet struct {
	RoundID      string          `json:"roundId"`
	Amount       decimal.Decimal `json:"amount"`
	SelectedSlot int             `json:"selectedSlot"`
}

func (s *Store) SaveLedger(ctx context.Context, snap LedgerSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode ledger snapshot: %w", err)
	}
	if err := s.kv.Put(ctx, ledgerSnapshotKey, data, 0); err != nil {
		return fmt.Errorf("write ledger snapshot: %w", err)
	}
	return nil
}

// LoadLedger returns the stored ledger. A missing or unreadable record reports
// false so the caller starts from defaults; an unreadable record is left in
// place and is overwritten by the next save. A record without a player id is
// unreadable.
func (s *Store) LoadLedger(ctx context.Context) (LedgerSnapshot, bool, error) {
	data, err := s.kv.Get(ctx, ledgerSnapshotKey)
	if errors.Is(err, ErrNotFound) {
		return LedgerSnapshot{}, false, nil
	}
	if err != nil {
		return LedgerSnapshot{}, false, fmt.Errorf("read ledger snapshot: %w", err)
	}
	var snap LedgerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Msg("ledger snapshot unreadable, using defaults")
		return LedgerSnapshot{}, false, nil
	}
	if snap.PlayerID == "" {
		log.Warn().Msg("ledger snapshot has no player id, using defaults")
		return LedgerSnapshot{}, false, nil
	}
	return snap, true, nil
}
