package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mines-client/internal/ledger"
	"mines-client/internal/round"

	"github.com/shopspring/decimal"
)

const (
	EventOnlinePlayers = "online_players"
	EventGameState     = "game_state"
	EventRoundStart    = "round_start"
	EventRoundResult   = "round_result"
	EventPlayerJoined  = "player_joined"
	EventPlayerLeft    = "player_left"
	EventPlayerBet     = "player_bet"

	EventPlayerJoin = "player_join"
	EventPlaceBet   = "place_bet"

	// Local pseudo-events, never sent by the authority.
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
)

var (
	ErrUnknownEvent   = errors.New("unknown_event")
	ErrInvalidPayload = errors.New("invalid_payload")
)

// Envelope frames every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Player struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type gameStatePayload struct {
	RoundID     *string `json:"roundId"`
	Active      *bool   `json:"active"`
	StartTime   *int64  `json:"startTime"`
	EndTime     *int64  `json:"endTime"`
	RoundNumber *int    `json:"roundNumber"`
	ServerTime  *int64  `json:"serverTime"`
}

type roundStartPayload struct {
	RoundID     string `json:"roundId"`
	ServerTime  int64  `json:"serverTime"`
	StartTime   int64  `json:"startTime"`
	EndTime     int64  `json:"endTime"`
	RoundNumber int    `json:"roundNumber"`
}

type roundResultPayload struct {
	RoundID    string `json:"roundId"`
	LosingSlot int    `json:"losingSlot"`
}

type playerBetPayload struct {
	PlayerID     string          `json:"playerId"`
	Amount       decimal.Decimal `json:"amount"`
	SelectedSlot int             `json:"selectedSlot"`
}

// PlayerJoin announces the local player after every (re)connect.
type PlayerJoin struct {
	PlayerID    string          `json:"playerId"`
	DisplayName string          `json:"displayName"`
	Balance     decimal.Decimal `json:"balance"`
}

type PlaceBet struct {
	PlayerID     string          `json:"playerId"`
	Amount       decimal.Decimal `json:"amount"`
	SelectedSlot int             `json:"selectedSlot"`
}

// Event is one validated inbound message. Only the field matching Name is set.
type Event struct {
	Name string

	Players  []Player
	Player   Player
	PlayerID string
	State    round.Partial
	Start    round.Start
	Result   round.Result
	Bet      ledger.BetRecord
}

func millis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Parse decodes and validates one inbound frame.
func Parse(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	ev := Event{Name: env.Event}
	var err error
	switch env.Event {
	case EventOnlinePlayers:
		ev.Players, err = parsePlayers(env.Data)
	case EventGameState:
		ev.State, err = parseGameState(env.Data)
	case EventRoundStart:
		ev.Start, err = parseRoundStart(env.Data)
	case EventRoundResult:
		ev.Result, err = parseRoundResult(env.Data)
	case EventPlayerJoined:
		ev.Player, err = parsePlayer(env.Data)
	case EventPlayerLeft:
		ev.PlayerID, err = parsePlayerLeft(env.Data)
	case EventPlayerBet:
		ev.Bet, err = parsePlayerBet(env.Data)
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("%w: missing data", ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func parsePlayer(data json.RawMessage) (Player, error) {
	var p Player
	if err := decode(data, &p); err != nil {
		return Player{}, err
	}
	if p.ID == "" {
		return Player{}, fmt.Errorf("%w: player id required", ErrInvalidPayload)
	}
	return p, nil
}

// parsePlayers accepts a list of players or a list of [id, player] pairs.
func parsePlayers(data json.RawMessage) ([]Player, error) {
	var items []json.RawMessage
	if err := decode(data, &items); err != nil {
		return nil, err
	}
	out := make([]Player, 0, len(items))
	for _, item := range items {
		var pair []json.RawMessage
		if json.Unmarshal(item, &pair) == nil {
			if len(pair) != 2 {
				return nil, fmt.Errorf("%w: malformed player entry", ErrInvalidPayload)
			}
			item = pair[1]
		}
		p, err := parsePlayer(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parsePlayerLeft(data json.RawMessage) (string, error) {
	var id string
	if json.Unmarshal(data, &id) == nil {
		if id == "" {
			return "", fmt.Errorf("%w: player id required", ErrInvalidPayload)
		}
		return id, nil
	}
	p, err := parsePlayer(data)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func parseGameState(data json.RawMessage) (round.Partial, error) {
	var p gameStatePayload
	if err := decode(data, &p); err != nil {
		return round.Partial{}, err
	}
	out := round.Partial{
		RoundID:     p.RoundID,
		Active:      p.Active,
		RoundNumber: p.RoundNumber,
	}
	for _, f := range []struct {
		src *int64
		dst **time.Time
	}{
		{p.StartTime, &out.StartTime},
		{p.EndTime, &out.EndTime},
		{p.ServerTime, &out.ServerTime},
	} {
		if f.src != nil {
			t := millis(*f.src)
			*f.dst = &t
		}
	}
	return out, nil
}

func parseRoundStart(data json.RawMessage) (round.Start, error) {
	var p roundStartPayload
	if err := decode(data, &p); err != nil {
		return round.Start{}, err
	}
	if p.ServerTime <= 0 {
		return round.Start{}, fmt.Errorf("%w: serverTime required", ErrInvalidPayload)
	}
	st := round.Start{
		RoundID:     p.RoundID,
		ServerTime:  millis(p.ServerTime),
		StartTime:   millis(p.StartTime),
		EndTime:     millis(p.EndTime),
		RoundNumber: p.RoundNumber,
	}
	if err := st.Validate(); err != nil {
		return round.Start{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return st, nil
}

func parseRoundResult(data json.RawMessage) (round.Result, error) {
	var p roundResultPayload
	if err := decode(data, &p); err != nil {
		return round.Result{}, err
	}
	if p.RoundID == "" || p.LosingSlot < 1 {
		return round.Result{}, fmt.Errorf("%w: roundId and losingSlot required", ErrInvalidPayload)
	}
	return round.Result{RoundID: p.RoundID, LosingSlot: p.LosingSlot}, nil
}

func parsePlayerBet(data json.RawMessage) (ledger.BetRecord, error) {
	var p playerBetPayload
	if err := decode(data, &p); err != nil {
		return ledger.BetRecord{}, err
	}
	if p.PlayerID == "" || !p.Amount.IsPositive() || p.SelectedSlot < 1 {
		return ledger.BetRecord{}, fmt.Errorf("%w: playerId, amount and selectedSlot required", ErrInvalidPayload)
	}
	return ledger.BetRecord{PlayerID: p.PlayerID, Amount: p.Amount, Slot: p.SelectedSlot}, nil
}

// Encode frames an outbound payload.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
