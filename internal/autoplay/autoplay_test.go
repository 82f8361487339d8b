package autoplay

import (
	"context"
	"math/rand"
	"testing"

	"mines-client/internal/ledger"
	"mines-client/internal/round"
	"mines-client/internal/session"

	"github.com/shopspring/decimal"
)

type fakePlayer struct {
	view    session.View
	selects []int
	bets    []decimal.Decimal
}

func (f *fakePlayer) View() session.View { return f.view }

func (f *fakePlayer) SelectSlot(_ context.Context, slot int) error {
	f.selects = append(f.selects, slot)
	f.view.Selected = slot
	return nil
}

func (f *fakePlayer) PlaceBet(_ context.Context, amount decimal.Decimal) (ledger.BetRecord, error) {
	f.bets = append(f.bets, amount)
	return ledger.BetRecord{Amount: amount}, nil
}

func TestDecide(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	stake := decimal.NewFromInt(2)
	active := session.View{Phase: round.PhaseActive, RoundID: "r-1", SlotCount: 9, Selected: 3, Balance: decimal.NewFromInt(10)}

	if a := decide(rnd, session.View{Phase: round.PhaseIdle, SlotCount: 9}, stake, false, ""); a.Kind != ActionSelect || a.Slot < 1 || a.Slot > 9 {
		t.Fatalf("idle action = %+v", a)
	}
	if a := decide(rnd, session.View{Phase: round.PhaseIdle, SlotCount: 9}, stake, true, ""); a.Kind != ActionWait {
		t.Fatalf("idle after pick = %+v", a)
	}
	if a := decide(rnd, active, stake, false, ""); a.Kind != ActionBet || !a.Amount.Equal(stake) {
		t.Fatalf("active action = %+v", a)
	}
	if a := decide(rnd, active, stake, false, "r-1"); a.Kind != ActionWait {
		t.Fatalf("retry same round = %+v", a)
	}
	poor := active
	poor.Balance = decimal.NewFromInt(1)
	if a := decide(rnd, poor, stake, false, ""); a.Kind != ActionWait {
		t.Fatalf("insufficient balance = %+v", a)
	}
	withBet := active
	withBet.LocalBet = &session.BetView{PlayerID: "p1"}
	if a := decide(rnd, withBet, stake, false, ""); a.Kind != ActionWait {
		t.Fatalf("bet already placed = %+v", a)
	}
}

func TestStepPicksOncePerGapAndBetsOncePerRound(t *testing.T) {
	p := &fakePlayer{view: session.View{Phase: round.PhaseIdle, SlotCount: 9, Balance: decimal.NewFromInt(10)}}
	bot := New(p, decimal.NewFromInt(1), nil, rand.New(rand.NewSource(7)))
	ctx := context.Background()

	bot.Step(ctx)
	bot.Step(ctx)
	if len(p.selects) != 1 {
		t.Fatalf("selects = %v, want one", p.selects)
	}

	p.view.Phase = round.PhaseActive
	p.view.RoundID = "r-1"
	bot.Step(ctx)
	bot.Step(ctx)
	if len(p.bets) != 1 {
		t.Fatalf("bets = %v, want one", p.bets)
	}

	p.view.Phase = round.PhaseResolving
	bot.Step(ctx)
	if len(p.selects) != 2 {
		t.Fatalf("selects after round = %v, want two", p.selects)
	}
}
