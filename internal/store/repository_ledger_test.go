package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLedgerSnapshotRoundTrip(t *testing.T) {
	st, _, _ := newMemoryStore(t)
	ctx := context.Background()

	in := LedgerSnapshot{
		PlayerID:     "player_abc",
		DisplayName:  "Anna12",
		Balance:      decimal.RequireFromString("14.5"),
		GamesPlayed:  3,
		Wins:         2,
		Losses:       1,
		TotalWagered: decimal.NewFromInt(12),
		PendingBet: &PendingBet{
			RoundID:      "r-9",
			Amount:       decimal.NewFromInt(2),
			SelectedSlot: 4,
		},
	}
	if err := st.SaveLedger(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := st.LoadLedger(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !got.Balance.Equal(in.Balance) {
		t.Fatalf("balance = %s, want %s", got.Balance, in.Balance)
	}
	if got.PlayerID != in.PlayerID || got.Wins != 2 || got.Losses != 1 || got.GamesPlayed != 3 {
		t.Fatalf("unexpected ledger: %+v", got)
	}
	if got.PendingBet == nil || got.PendingBet.RoundID != "r-9" || got.PendingBet.SelectedSlot != 4 {
		t.Fatalf("pending bet = %+v", got.PendingBet)
	}
}

func TestLedgerSnapshotMalformedUsesDefaults(t *testing.T) {
	st, kv, _ := newMemoryStore(t)
	ctx := context.Background()
	if err := kv.Put(ctx, ledgerSnapshotKey, []byte(`{"balance":"abc"`), 0); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok, err := st.LoadLedger(ctx); err != nil || ok {
		t.Fatalf("load malformed: ok=%v err=%v", ok, err)
	}
}

func TestLedgerSnapshotWithoutIdentityUsesDefaults(t *testing.T) {
	st, kv, _ := newMemoryStore(t)
	ctx := context.Background()
	for _, raw := range []string{`{}`, `null`, `{"balance":"50"}`} {
		if err := kv.Put(ctx, ledgerSnapshotKey, []byte(raw), 0); err != nil {
			t.Fatalf("put: %v", err)
		}
		if _, ok, err := st.LoadLedger(ctx); err != nil || ok {
			t.Fatalf("load %s: ok=%v err=%v", raw, ok, err)
		}
	}
}

func TestLedgerSnapshotAbsent(t *testing.T) {
	st, _, _ := newMemoryStore(t)
	if _, ok, err := st.LoadLedger(context.Background()); err != nil || ok {
		t.Fatalf("load empty: ok=%v err=%v", ok, err)
	}
}
