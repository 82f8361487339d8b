package ledger

import (
	"errors"
	"testing"
	"time"

	"mines-client/internal/round"

	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func newActiveLedger(t *testing.T, balance string) *Ledger {
	t.Helper()
	l := New(Identity{PlayerID: "player_me", DisplayName: "Me"}, d(balance), 9)
	if err := l.SelectSlot(round.PhaseIdle, 3); err != nil {
		t.Fatalf("select slot: %v", err)
	}
	l.BeginRound("r-1")
	return l
}

func TestSelectSlotOnlyBetweenRounds(t *testing.T) {
	l := New(Identity{PlayerID: "p"}, d("10"), 9)
	tests := []struct {
		phase round.Phase
		slot  int
		want  error
	}{
		{round.PhaseIdle, 4, nil},
		{round.PhaseResolving, 5, nil},
		{round.PhaseActive, 6, ErrRoundInProgress},
		{round.PhaseIdle, 0, ErrInvalidSlot},
		{round.PhaseIdle, 10, ErrInvalidSlot},
	}
	for _, tt := range tests {
		if err := l.SelectSlot(tt.phase, tt.slot); !errors.Is(err, tt.want) {
			t.Fatalf("SelectSlot(%s, %d) = %v, want %v", tt.phase, tt.slot, err, tt.want)
		}
	}
	if l.SelectedSlot() != 5 {
		t.Fatalf("SelectedSlot() = %d, want 5", l.SelectedSlot())
	}
}

func TestPlaceBetValidation(t *testing.T) {
	tests := []struct {
		name     string
		phase    round.Phase
		amount   string
		noSelect bool
		want     error
	}{
		{"idle", round.PhaseIdle, "5", false, ErrRoundNotActive},
		{"resolving", round.PhaseResolving, "5", false, ErrRoundNotActive},
		{"zero", round.PhaseActive, "0", false, ErrInvalidAmount},
		{"below one", round.PhaseActive, "0.5", false, ErrInvalidAmount},
		{"over balance", round.PhaseActive, "10.01", false, ErrInsufficientBalance},
		{"no slot", round.PhaseActive, "5", true, ErrNoSlotSelected},
		{"min", round.PhaseActive, "1", false, nil},
		{"all in", round.PhaseActive, "10", false, nil},
	}
	for _, tt := range tests {
		var l *Ledger
		if tt.noSelect {
			l = New(Identity{PlayerID: "player_me"}, d("10"), 9)
			l.BeginRound("r-1")
		} else {
			l = newActiveLedger(t, "10")
		}
		bet, err := l.PlaceBet(tt.phase, "r-1", d(tt.amount))
		if !errors.Is(err, tt.want) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
		if tt.want != nil {
			if !l.Balance().Equal(d("10")) {
				t.Fatalf("%s: balance changed to %s on rejection", tt.name, l.Balance())
			}
			if _, ok := l.LocalBet(); ok {
				t.Fatalf("%s: bet recorded on rejection", tt.name)
			}
			continue
		}
		want := d("10").Sub(d(tt.amount))
		if !l.Balance().Equal(want) {
			t.Fatalf("%s: balance = %s, want %s", tt.name, l.Balance(), want)
		}
		if bet.Slot != 3 || bet.RoundID != "r-1" || bet.PlayerID != "player_me" {
			t.Fatalf("%s: unexpected bet %+v", tt.name, bet)
		}
	}
}

func TestPlaceBetOncePerRound(t *testing.T) {
	l := newActiveLedger(t, "10")
	if _, err := l.PlaceBet(round.PhaseActive, "r-1", d("2")); err != nil {
		t.Fatalf("first bet: %v", err)
	}
	if _, err := l.PlaceBet(round.PhaseActive, "r-1", d("2")); !errors.Is(err, ErrBetAlreadyPlaced) {
		t.Fatalf("second bet err = %v, want ErrBetAlreadyPlaced", err)
	}
	if !l.Balance().Equal(d("8")) {
		t.Fatalf("balance = %s, want 8", l.Balance())
	}
}

func TestSettleWin(t *testing.T) {
	l := newActiveLedger(t, "100")
	if _, err := l.PlaceBet(round.PhaseActive, "r-1", d("10")); err != nil {
		t.Fatalf("place bet: %v", err)
	}
	afterBet := l.Balance()

	out, ok := l.Settle(round.Result{RoundID: "r-1", LosingSlot: 7})
	if !ok || !out.Won {
		t.Fatalf("Settle() = %+v, %v; want win", out, ok)
	}
	if got := l.Balance().Sub(afterBet); !got.Equal(d("14.5")) {
		t.Fatalf("balance increase = %s, want 14.5", got)
	}
	if !out.Profit.Equal(d("4.5")) {
		t.Fatalf("profit = %s, want 4.5", out.Profit)
	}
	if !out.Profit.Equal(Profit(out.Stake)) {
		t.Fatal("outcome profit must come from Profit()")
	}
	st := l.Stats()
	if st.Wins != 1 || st.Losses != 0 || st.GamesPlayed != 1 || !st.TotalWagered.Equal(d("10")) {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestSettleLoss(t *testing.T) {
	l := newActiveLedger(t, "100")
	l.PlaceBet(round.PhaseActive, "r-1", d("10"))
	afterBet := l.Balance()

	out, ok := l.Settle(round.Result{RoundID: "r-1", LosingSlot: 3})
	if !ok || out.Won {
		t.Fatalf("Settle() = %+v, %v; want loss", out, ok)
	}
	if !l.Balance().Equal(afterBet) {
		t.Fatalf("balance = %s, want unchanged %s", l.Balance(), afterBet)
	}
	if !out.Profit.Equal(d("-10")) {
		t.Fatalf("profit = %s, want -10", out.Profit)
	}
	st := l.Stats()
	if st.Losses != 1 || st.Wins != 0 || st.GamesPlayed != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	l := newActiveLedger(t, "100")
	l.PlaceBet(round.PhaseActive, "r-1", d("10"))
	res := round.Result{RoundID: "r-1", LosingSlot: 7}

	if _, ok := l.Settle(res); !ok {
		t.Fatal("first settle should apply")
	}
	balance, stats := l.Balance(), l.Stats()
	if _, ok := l.Settle(res); ok {
		t.Fatal("second settle must be a no-op")
	}
	if !l.Balance().Equal(balance) || l.Stats().GamesPlayed != stats.GamesPlayed {
		t.Fatalf("second settle changed ledger: %s %+v", l.Balance(), l.Stats())
	}
}

func TestSettleWithoutBet(t *testing.T) {
	l := newActiveLedger(t, "10")
	if _, ok := l.Settle(round.Result{RoundID: "r-1", LosingSlot: 1}); ok {
		t.Fatal("settle without bet must be skipped")
	}
	l.PlaceBet(round.PhaseActive, "r-1", d("1"))
	if _, ok := l.Settle(round.Result{RoundID: "r-0", LosingSlot: 1}); ok {
		t.Fatal("settle for another round must be skipped")
	}
	if l.Stats().GamesPlayed != 0 {
		t.Fatalf("games played = %d, want 0", l.Stats().GamesPlayed)
	}
}

func TestRosterEchoIsIdempotent(t *testing.T) {
	l := newActiveLedger(t, "10")
	bet, err := l.PlaceBet(round.PhaseActive, "r-1", d("4"))
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}

	if l.ApplyRosterBet(round.PhaseActive, BetRecord{PlayerID: bet.PlayerID, Amount: d("4"), Slot: 3}) {
		t.Fatal("matching echo must not change balance")
	}
	if l.ApplyRosterBet(round.PhaseActive, BetRecord{PlayerID: bet.PlayerID, Amount: d("4.0"), Slot: 3}) {
		t.Fatal("repeated echo must not change balance")
	}
	if !l.Balance().Equal(d("6")) {
		t.Fatalf("balance = %s, want 6", l.Balance())
	}

	l.ApplyRosterBet(round.PhaseActive, BetRecord{PlayerID: "player_other", Amount: d("3"), Slot: 1})
	if got := len(l.RoundBets()); got != 2 {
		t.Fatalf("roster bets = %d, want 2", got)
	}
	if !l.Balance().Equal(d("6")) {
		t.Fatalf("other player's bet changed balance to %s", l.Balance())
	}
}

func TestRosterEchoAdoptsAuthorityCopy(t *testing.T) {
	l := newActiveLedger(t, "10")
	if !l.ApplyRosterBet(round.PhaseActive, BetRecord{PlayerID: "player_me", Amount: d("2"), Slot: 8}) {
		t.Fatal("echo without local bet should debit")
	}
	if !l.Balance().Equal(d("8")) {
		t.Fatalf("balance = %s, want 8", l.Balance())
	}
	bet, ok := l.LocalBet()
	if !ok || bet.Slot != 8 || bet.RoundID != "r-1" {
		t.Fatalf("unexpected local bet %+v %v", bet, ok)
	}

	if !l.ApplyRosterBet(round.PhaseActive, BetRecord{PlayerID: "player_me", Amount: d("5"), Slot: 8}) {
		t.Fatal("differing echo should adjust balance")
	}
	if !l.Balance().Equal(d("5")) {
		t.Fatalf("balance = %s, want 5", l.Balance())
	}
	if l.ApplyRosterBet(round.PhaseResolving, BetRecord{PlayerID: "player_me", Amount: d("1"), Slot: 2}) {
		t.Fatal("echo outside active round must be ignored")
	}
}

func TestRosterEchoNeverOverdrawsBalance(t *testing.T) {
	l := newActiveLedger(t, "10")
	if l.ApplyRosterBet(round.PhaseActive, BetRecord{PlayerID: "player_me", Amount: d("25"), Slot: 8}) {
		t.Fatal("echo larger than balance must be ignored")
	}
	if !l.Balance().Equal(d("10")) {
		t.Fatalf("balance = %s, want 10", l.Balance())
	}
	if _, ok := l.LocalBet(); ok {
		t.Fatal("ignored echo must not become the local bet")
	}

	if _, err := l.PlaceBet(round.PhaseActive, "r-1", d("4")); err != nil {
		t.Fatalf("place bet: %v", err)
	}
	if l.ApplyRosterBet(round.PhaseActive, BetRecord{PlayerID: "player_me", Amount: d("10.01"), Slot: 3}) {
		t.Fatal("differing echo beyond balance plus local stake must be ignored")
	}
	if !l.Balance().Equal(d("6")) {
		t.Fatalf("balance = %s, want 6", l.Balance())
	}
	if !l.ApplyRosterBet(round.PhaseActive, BetRecord{PlayerID: "player_me", Amount: d("10"), Slot: 3}) {
		t.Fatal("echo equal to balance plus local stake should be adopted")
	}
	if !l.Balance().IsZero() {
		t.Fatalf("balance = %s, want 0", l.Balance())
	}
}

func TestBeginRoundClearsBets(t *testing.T) {
	l := newActiveLedger(t, "10")
	l.PlaceBet(round.PhaseActive, "r-1", d("1"))
	l.ApplyRosterBet(round.PhaseActive, BetRecord{PlayerID: "player_other", Amount: d("3"), Slot: 1})

	l.BeginRound("r-2")
	if _, ok := l.LocalBet(); ok {
		t.Fatal("local bet survived new round")
	}
	if len(l.RoundBets()) != 0 {
		t.Fatalf("roster bets = %d, want 0", len(l.RoundBets()))
	}
	if l.SelectedSlot() != 3 {
		t.Fatalf("selection should persist across rounds, got %d", l.SelectedSlot())
	}
}

func TestResetGameRestoresInitialStake(t *testing.T) {
	l := newActiveLedger(t, "10")
	l.PlaceBet(round.PhaseActive, "r-1", d("10"))
	l.Settle(round.Result{RoundID: "r-1", LosingSlot: 3})

	l.ResetStats()
	if l.Stats().GamesPlayed != 0 || !l.Balance().Equal(d("0")) {
		t.Fatalf("ResetStats touched balance or kept stats: %s %+v", l.Balance(), l.Stats())
	}
	l.ResetGame()
	if !l.Balance().Equal(d("10")) {
		t.Fatalf("balance after reset = %s, want 10", l.Balance())
	}
}

func TestRestorePendingBetForCurrentRound(t *testing.T) {
	src := newActiveLedger(t, "10")
	src.PlaceBet(round.PhaseActive, "r-1", d("4"))
	st := src.State()

	l := New(Identity{PlayerID: "fresh"}, d("10"), 9)
	l.Restore(st, "r-1")
	if l.Identity().PlayerID != "player_me" {
		t.Fatalf("identity = %+v", l.Identity())
	}
	if !l.Balance().Equal(d("6")) {
		t.Fatalf("balance = %s, want 6", l.Balance())
	}
	out, ok := l.Settle(round.Result{RoundID: "r-1", LosingSlot: 9})
	if !ok || !out.Won {
		t.Fatalf("restored bet did not settle: %+v %v", out, ok)
	}

	other := New(Identity{}, d("10"), 9)
	other.Restore(st, "r-2")
	if _, ok := other.LocalBet(); ok {
		t.Fatal("pending bet for another round must not be restored")
	}
}

func TestExport(t *testing.T) {
	l := newActiveLedger(t, "10")
	l.PlaceBet(round.PhaseActive, "r-1", d("2"))
	l.Settle(round.Result{RoundID: "r-1", LosingSlot: 1})

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	exp := l.Export(now)
	if exp.PlayerID != "player_me" || exp.Wins != 1 || exp.WinRate != 100 {
		t.Fatalf("unexpected export: %+v", exp)
	}
	if !exp.Balance.Equal(d("10.9")) {
		t.Fatalf("export balance = %s, want 10.9", exp.Balance)
	}
	if !exp.ExportTime.Equal(now) {
		t.Fatalf("export time = %v", exp.ExportTime)
	}
}
