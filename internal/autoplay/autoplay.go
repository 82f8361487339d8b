// Package autoplay drives a session without a human: it picks a random slot
// between rounds and stakes a fixed amount once per round.
package autoplay

import (
	"context"
	"math/rand"
	"time"

	"mines-client/internal/ledger"
	"mines-client/internal/round"
	"mines-client/internal/session"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const Interval = 500 * time.Millisecond

type Player interface {
	View() session.View
	SelectSlot(ctx context.Context, slot int) error
	PlaceBet(ctx context.Context, amount decimal.Decimal) (ledger.BetRecord, error)
}

type ActionKind string

const (
	ActionWait   ActionKind = "wait"
	ActionSelect ActionKind = "select"
	ActionBet    ActionKind = "bet"
)

type Action struct {
	Kind   ActionKind
	Slot   int
	Amount decimal.Decimal
}

type Bot struct {
	player Player
	stake  decimal.Decimal
	clock  clockwork.Clock
	rnd    *rand.Rand

	picked     bool
	triedBetOn string
}

func New(player Player, stake decimal.Decimal, clock clockwork.Clock, rnd *rand.Rand) *Bot {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Bot{player: player, stake: stake, clock: clock, rnd: rnd}
}

func (b *Bot) Run(ctx context.Context) {
	ticker := b.clock.NewTicker(Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			b.Step(ctx)
		}
	}
}

// Step looks at the current view and performs at most one action.
func (b *Bot) Step(ctx context.Context) Action {
	v := b.player.View()
	act := decide(b.rnd, v, b.stake, b.picked, b.triedBetOn)
	switch act.Kind {
	case ActionSelect:
		if err := b.player.SelectSlot(ctx, act.Slot); err != nil {
			log.Debug().Err(err).Int("slot", act.Slot).Msg("autoplay select rejected")
			return act
		}
		b.picked = true
	case ActionBet:
		b.triedBetOn = v.RoundID
		if _, err := b.player.PlaceBet(ctx, act.Amount); err != nil {
			log.Debug().Err(err).Str("round_id", v.RoundID).Msg("autoplay bet rejected")
		}
	}
	if v.Phase == round.PhaseActive {
		b.picked = false
	}
	return act
}

func decide(rnd *rand.Rand, v session.View, stake decimal.Decimal, picked bool, triedBetOn string) Action {
	if v.Phase != round.PhaseActive {
		if picked || v.SlotCount < 1 {
			return Action{Kind: ActionWait}
		}
		return Action{Kind: ActionSelect, Slot: rnd.Intn(v.SlotCount) + 1}
	}
	if v.LocalBet != nil || v.Selected < 1 || triedBetOn == v.RoundID {
		return Action{Kind: ActionWait}
	}
	if v.Balance.LessThan(stake) {
		return Action{Kind: ActionWait}
	}
	return Action{Kind: ActionBet, Amount: stake}
}
