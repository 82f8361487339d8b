package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutMultiplier is credited on a win: the stake plus 0.45 profit.
var PayoutMultiplier = decimal.RequireFromString("1.45")

var minStake = decimal.NewFromInt(1)

// Profit is what a winning stake earns on top of itself. Displays must use it
// instead of their own ratio so they agree with the balance credit.
func Profit(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(PayoutMultiplier.Sub(decimal.NewFromInt(1)))
}

// Payout is the amount credited for a winning stake.
func Payout(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(PayoutMultiplier)
}

type Identity struct {
	PlayerID    string
	DisplayName string
}

// BetRecord is one player's bet for one round. It is never modified after
// creation; a correction replaces it.
type BetRecord struct {
	PlayerID string
	RoundID  string
	Amount   decimal.Decimal
	Slot     int
}

func (b BetRecord) sameBet(o BetRecord) bool {
	return b.Slot == o.Slot && b.Amount.Equal(o.Amount)
}

type Stats struct {
	GamesPlayed  int
	Wins         int
	Losses       int
	TotalWagered decimal.Decimal
}

// WinRate is wins as a percentage of games played.
func (s Stats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// Outcome describes one settled local bet.
type Outcome struct {
	RoundID      string
	LosingSlot   int
	SelectedSlot int
	Stake        decimal.Decimal
	Won          bool
	Payout       decimal.Decimal
	Profit       decimal.Decimal
}

// State is the durable part of the ledger.
type State struct {
	Identity   Identity
	Balance    decimal.Decimal
	Stats      Stats
	PendingBet *BetRecord
}

type Export struct {
	PlayerID    string          `json:"playerId"`
	DisplayName string          `json:"displayName"`
	Balance     decimal.Decimal `json:"balance"`
	GamesPlayed int             `json:"gamesPlayed"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
	Wagered     decimal.Decimal `json:"totalWagered"`
	WinRate     float64         `json:"winRate"`
	ExportTime  time.Time       `json:"exportTime"`
}
