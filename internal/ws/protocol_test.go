package ws

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseRoundStart(t *testing.T) {
	raw := []byte(`{"event":"round_start","data":{"roundId":"r-1","serverTime":1700000000500,"startTime":1700000000000,"endTime":1700000030000,"roundNumber":4}}`)
	ev, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.Name != EventRoundStart || ev.Start.RoundID != "r-1" || ev.Start.RoundNumber != 4 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if got := ev.Start.EndTime.Sub(ev.Start.StartTime); got != 30*time.Second {
		t.Fatalf("duration = %v, want 30s", got)
	}
	if ev.Start.ServerTime.UnixMilli() != 1700000000500 {
		t.Fatalf("server time = %d", ev.Start.ServerTime.UnixMilli())
	}
}

func TestParseRejectsInvalidPayloads(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `{`, ErrInvalidPayload},
		{"unknown event", `{"event":"chat","data":{}}`, ErrUnknownEvent},
		{"start end before start", `{"event":"round_start","data":{"roundId":"r","serverTime":5,"startTime":10,"endTime":10}}`, ErrInvalidPayload},
		{"start missing id", `{"event":"round_start","data":{"serverTime":5,"startTime":1,"endTime":10}}`, ErrInvalidPayload},
		{"start missing server time", `{"event":"round_start","data":{"roundId":"r","startTime":1,"endTime":10}}`, ErrInvalidPayload},
		{"result missing slot", `{"event":"round_result","data":{"roundId":"r"}}`, ErrInvalidPayload},
		{"result missing data", `{"event":"round_result"}`, ErrInvalidPayload},
		{"bet zero amount", `{"event":"player_bet","data":{"playerId":"p","amount":0,"selectedSlot":3}}`, ErrInvalidPayload},
		{"bet bad amount", `{"event":"player_bet","data":{"playerId":"p","amount":"x","selectedSlot":3}}`, ErrInvalidPayload},
		{"joined without id", `{"event":"player_joined","data":{"name":"x"}}`, ErrInvalidPayload},
		{"left empty", `{"event":"player_left","data":""}`, ErrInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParsePlayerBet(t *testing.T) {
	ev, err := Parse([]byte(`{"event":"player_bet","data":{"playerId":"p1","amount":2.5,"selectedSlot":7}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.Bet.PlayerID != "p1" || ev.Bet.Slot != 7 || ev.Bet.Amount.String() != "2.5" {
		t.Fatalf("bet = %+v", ev.Bet)
	}
}

func TestParseOnlinePlayersShapes(t *testing.T) {
	for _, raw := range []string{
		`{"event":"online_players","data":[{"id":"a","name":"A","balance":10},{"id":"b","name":"B","balance":"3.5"}]}`,
		`{"event":"online_players","data":[["a",{"id":"a","name":"A","balance":10}],["b",{"id":"b","name":"B","balance":3.5}]]}`,
	} {
		ev, err := Parse([]byte(raw))
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		if len(ev.Players) != 2 || ev.Players[1].ID != "b" || ev.Players[1].Balance.String() != "3.5" {
			t.Fatalf("players = %+v", ev.Players)
		}
	}
}

func TestParsePlayerLeftShapes(t *testing.T) {
	for _, raw := range []string{
		`{"event":"player_left","data":"p9"}`,
		`{"event":"player_left","data":{"id":"p9"}}`,
	} {
		ev, err := Parse([]byte(raw))
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		if ev.PlayerID != "p9" {
			t.Fatalf("player id = %q", ev.PlayerID)
		}
	}
}

func TestParseGameStatePartial(t *testing.T) {
	ev, err := Parse([]byte(`{"event":"game_state","data":{"roundNumber":12,"endTime":1700000030000}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := ev.State
	if p.RoundNumber == nil || *p.RoundNumber != 12 {
		t.Fatalf("round number = %v", p.RoundNumber)
	}
	if p.EndTime == nil || p.EndTime.UnixMilli() != 1700000030000 {
		t.Fatalf("end time = %v", p.EndTime)
	}
	if p.RoundID != nil || p.Active != nil || p.StartTime != nil || p.ServerTime != nil {
		t.Fatalf("unexpected fields set: %+v", p)
	}
}

func TestEncodePlaceBet(t *testing.T) {
	raw, err := Encode(EventPlaceBet, PlaceBet{PlayerID: "p1", SelectedSlot: 3})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var env struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Event != EventPlaceBet || env.Data["playerId"] != "p1" || env.Data["selectedSlot"] != float64(3) {
		t.Fatalf("envelope = %s", raw)
	}
}
