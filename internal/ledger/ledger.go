// Package ledger records the local player's bet for the current round, the
// round's roster bets, and settles the local bet against the revealed losing
// slot.
package ledger

import (
	"sort"
	"time"

	"mines-client/internal/round"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Ledger struct {
	identity  Identity
	initial   decimal.Decimal
	slotCount int

	balance  decimal.Decimal
	stats    Stats
	selected int

	roundID string
	local   *BetRecord
	roster  map[string]BetRecord
}

func New(identity Identity, initial decimal.Decimal, slotCount int) *Ledger {
	return &Ledger{
		identity:  identity,
		initial:   initial,
		slotCount: slotCount,
		balance:   initial,
		roster:    map[string]BetRecord{},
	}
}

func (l *Ledger) Identity() Identity              { return l.identity }
func (l *Ledger) Balance() decimal.Decimal        { return l.balance }
func (l *Ledger) Stats() Stats                    { return l.stats }
func (l *Ledger) SelectedSlot() int               { return l.selected }
func (l *Ledger) SlotCount() int                  { return l.slotCount }
func (l *Ledger) InitialBalance() decimal.Decimal { return l.initial }

// LocalBet is the local player's bet for the current round, if any.
func (l *Ledger) LocalBet() (BetRecord, bool) {
	if l.local == nil {
		return BetRecord{}, false
	}
	return *l.local, true
}

// RoundBets returns the roster bets of the current round ordered by player.
func (l *Ledger) RoundBets() []BetRecord {
	out := make([]BetRecord, 0, len(l.roster))
	for _, b := range l.roster {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// BeginRound drops every bet of the previous round.
func (l *Ledger) BeginRound(roundID string) {
	l.roundID = roundID
	l.local = nil
	l.roster = map[string]BetRecord{}
}

// ForgetPlayer removes a departed player's roster bet. The local bet is kept.
func (l *Ledger) ForgetPlayer(playerID string) {
	if playerID == l.identity.PlayerID {
		return
	}
	delete(l.roster, playerID)
}

// SelectSlot chooses the slot for the next bet. Selection is only allowed
// between rounds.
func (l *Ledger) SelectSlot(phase round.Phase, slot int) error {
	if phase == round.PhaseActive {
		return ErrRoundInProgress
	}
	if slot < 1 || slot > l.slotCount {
		return ErrInvalidSlot
	}
	l.selected = slot
	return nil
}

// PlaceBet validates and records the local bet, debiting the stake before the
// authority confirms it.
func (l *Ledger) PlaceBet(phase round.Phase, roundID string, amount decimal.Decimal) (BetRecord, error) {
	if phase != round.PhaseActive || roundID == "" {
		return BetRecord{}, ErrRoundNotActive
	}
	if amount.LessThan(minStake) {
		return BetRecord{}, ErrInvalidAmount
	}
	if amount.GreaterThan(l.balance) {
		return BetRecord{}, ErrInsufficientBalance
	}
	if l.selected < 1 || l.selected > l.slotCount {
		return BetRecord{}, ErrNoSlotSelected
	}
	if l.local != nil && l.local.RoundID == roundID {
		return BetRecord{}, ErrBetAlreadyPlaced
	}
	if l.roundID != roundID {
		l.BeginRound(roundID)
	}

	bet := BetRecord{
		PlayerID: l.identity.PlayerID,
		RoundID:  roundID,
		Amount:   amount,
		Slot:     l.selected,
	}
	l.balance = l.balance.Sub(amount)
	l.local = &bet
	l.roster[bet.PlayerID] = bet
	return bet, nil
}

// ApplyRosterBet records a player_bet broadcast for the current round and
// reports whether the local balance changed. The authority's copy of the local
// player's bet is authoritative but is never debited twice.
func (l *Ledger) ApplyRosterBet(phase round.Phase, bet BetRecord) bool {
	if l.roundID == "" || bet.PlayerID == "" {
		return false
	}
	bet.RoundID = l.roundID
	if bet.PlayerID != l.identity.PlayerID {
		l.roster[bet.PlayerID] = bet
		return false
	}
	if phase != round.PhaseActive {
		log.Debug().Str("round_id", l.roundID).Msg("ignoring own bet echo outside active round")
		return false
	}

	available := l.balance
	switch {
	case l.local == nil:
	case l.local.sameBet(bet):
		return false
	default:
		log.Warn().
			Str("round_id", l.roundID).
			Int("local_slot", l.local.Slot).
			Int("echo_slot", bet.Slot).
			Str("local_amount", l.local.Amount.String()).
			Str("echo_amount", bet.Amount.String()).
			Msg("authority bet differs from local bet; adopting authority copy")
		available = available.Add(l.local.Amount)
	}
	if bet.Amount.GreaterThan(available) {
		log.Warn().
			Str("round_id", l.roundID).
			Str("echo_amount", bet.Amount.String()).
			Str("available", available.String()).
			Msg("ignoring own bet echo larger than balance")
		return false
	}
	l.balance = available.Sub(bet.Amount)
	l.local = &bet
	l.roster[bet.PlayerID] = bet
	l.selected = bet.Slot
	return true
}

// Settle applies the round result to the local bet. Without a local bet for
// the round nothing changes; the bet is consumed so settlement happens once.
func (l *Ledger) Settle(res round.Result) (Outcome, bool) {
	if l.local == nil || l.local.RoundID != res.RoundID {
		return Outcome{}, false
	}
	bet := *l.local
	l.local = nil

	out := Outcome{
		RoundID:      res.RoundID,
		LosingSlot:   res.LosingSlot,
		SelectedSlot: bet.Slot,
		Stake:        bet.Amount,
		Won:          bet.Slot != res.LosingSlot,
	}
	l.stats.GamesPlayed++
	l.stats.TotalWagered = l.stats.TotalWagered.Add(bet.Amount)
	if out.Won {
		out.Payout = Payout(bet.Amount)
		out.Profit = Profit(bet.Amount)
		l.balance = l.balance.Add(out.Payout)
		l.stats.Wins++
	} else {
		out.Payout = decimal.Zero
		out.Profit = bet.Amount.Neg()
		l.stats.Losses++
	}
	return out, true
}

func (l *Ledger) ResetStats() {
	l.stats = Stats{}
}

// ResetGame restores the initial stake and clears the statistics.
func (l *Ledger) ResetGame() {
	l.balance = l.initial
	l.stats = Stats{}
}

func (l *Ledger) State() State {
	st := State{Identity: l.identity, Balance: l.balance, Stats: l.stats}
	if l.local != nil {
		bet := *l.local
		st.PendingBet = &bet
	}
	return st
}

// Restore loads the durable state. A pending bet is reinstated only when it
// belongs to currentRound.
func (l *Ledger) Restore(st State, currentRound string) {
	if st.Identity.PlayerID != "" {
		l.identity = st.Identity
	}
	l.balance = st.Balance
	l.stats = st.Stats
	if st.PendingBet != nil && currentRound != "" && st.PendingBet.RoundID == currentRound {
		bet := *st.PendingBet
		bet.PlayerID = l.identity.PlayerID
		l.roundID = currentRound
		l.local = &bet
		l.roster = map[string]BetRecord{bet.PlayerID: bet}
		l.selected = bet.Slot
	}
}

func (l *Ledger) Export(now time.Time) Export {
	return Export{
		PlayerID:    l.identity.PlayerID,
		DisplayName: l.identity.DisplayName,
		Balance:     l.balance,
		GamesPlayed: l.stats.GamesPlayed,
		Wins:        l.stats.Wins,
		Losses:      l.stats.Losses,
		Wagered:     l.stats.TotalWagered,
		WinRate:     l.stats.WinRate(),
		ExportTime:  now.UTC(),
	}
}
