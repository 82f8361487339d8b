package session

import (
	"sort"
	"time"

	"mines-client/internal/ledger"
	"mines-client/internal/round"

	"github.com/shopspring/decimal"
)

type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

func urgencyFor(seconds int) Urgency {
	switch {
	case seconds <= 5:
		return UrgencyCritical
	case seconds <= 10:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

type PlayerView struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type BetView struct {
	PlayerID     string          `json:"playerId"`
	Amount       decimal.Decimal `json:"amount"`
	SelectedSlot int             `json:"selectedSlot"`
}

type OutcomeView struct {
	RoundID      string          `json:"roundId"`
	LosingSlot   int             `json:"losingSlot"`
	SelectedSlot int             `json:"selectedSlot"`
	Stake        decimal.Decimal `json:"stake"`
	Won          bool            `json:"won"`
	Payout       decimal.Decimal `json:"payout"`
	Profit       decimal.Decimal `json:"profit"`
}

// View is an immutable snapshot of the session for presentation.
type View struct {
	PlayerID    string          `json:"playerId"`
	DisplayName string          `json:"displayName"`
	Connected   bool            `json:"connected"`
	Phase       round.Phase     `json:"phase"`
	RoundID     string          `json:"roundId,omitempty"`
	RoundNumber int             `json:"roundNumber"`
	RemainingMs int64           `json:"remainingMs"`
	Seconds     int             `json:"remainingSeconds"`
	Urgency     Urgency         `json:"urgency"`
	SlotCount   int             `json:"slotCount"`
	Selected    int             `json:"selectedSlot"`
	Balance     decimal.Decimal `json:"balance"`
	GamesPlayed int             `json:"gamesPlayed"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
	Wagered     decimal.Decimal `json:"totalWagered"`
	WinRate     float64         `json:"winRate"`
	OnlineCount int             `json:"onlineCount"`
	InRound     int             `json:"playersInRound"`
	ActiveGames int             `json:"activeGames"`
	Players     []PlayerView    `json:"players"`
	RoundBets   []BetView       `json:"roundBets"`
	LocalBet    *BetView        `json:"localBet,omitempty"`
	LastOutcome *OutcomeView    `json:"lastOutcome,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (s *Session) publish() {
	st := s.machine.State()
	stats := s.ledger.Stats()
	id := s.ledger.Identity()

	v := &View{
		PlayerID:    id.PlayerID,
		DisplayName: id.DisplayName,
		Connected:   s.connected,
		Phase:       st.Phase,
		RoundID:     st.RoundID,
		RoundNumber: st.RoundNumber,
		Urgency:     UrgencyNormal,
		SlotCount:   s.ledger.SlotCount(),
		Selected:    s.ledger.SelectedSlot(),
		Balance:     s.ledger.Balance(),
		GamesPlayed: stats.GamesPlayed,
		Wins:        stats.Wins,
		Losses:      stats.Losses,
		Wagered:     stats.TotalWagered,
		WinRate:     stats.WinRate(),
		OnlineCount: len(s.players),
		UpdatedAt:   s.clock.Now(),
	}
	if st.Phase == round.PhaseActive {
		remaining := s.machine.Remaining()
		v.RemainingMs = remaining.Milliseconds()
		v.Seconds = int(remaining / time.Second)
		v.Urgency = urgencyFor(v.Seconds)
		v.ActiveGames = 1
	}

	v.Players = make([]PlayerView, 0, len(s.players))
	for _, p := range s.players {
		v.Players = append(v.Players, PlayerView{ID: p.ID, Name: p.Name, Balance: p.Balance})
	}
	sort.Slice(v.Players, func(i, j int) bool { return v.Players[i].ID < v.Players[j].ID })

	bets := s.ledger.RoundBets()
	v.InRound = len(bets)
	v.RoundBets = make([]BetView, 0, len(bets))
	for _, b := range bets {
		v.RoundBets = append(v.RoundBets, betView(b))
	}
	if b, ok := s.ledger.LocalBet(); ok {
		bv := betView(b)
		v.LocalBet = &bv
	}
	if o := s.lastOutcome; o != nil {
		v.LastOutcome = &OutcomeView{
			RoundID:      o.RoundID,
			LosingSlot:   o.LosingSlot,
			SelectedSlot: o.SelectedSlot,
			Stake:        o.Stake,
			Won:          o.Won,
			Payout:       o.Payout,
			Profit:       o.Profit,
		}
	}
	s.view.Store(v)
}

func betView(b ledger.BetRecord) BetView {
	return BetView{PlayerID: b.PlayerID, Amount: b.Amount, SelectedSlot: b.Slot}
}
