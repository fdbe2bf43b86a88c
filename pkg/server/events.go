package server

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vctt94/pokertable/pkg/poker"
)

// ClientAction is the inbound wire frame from a websocket client. Type
// is either a betting action (FOLD, CHECK, CALL, BET) or a table-level
// request (JOIN, SIT_OUT, SIT_IN, STAND_UP, BUY_CHIPS, USE_TIME_BANK,
// SHOW_CARD, TOGGLE_STRADDLE, START_GAME, STOP_GAME).
type ClientAction struct {
	Type     string   `json:"type"`
	ActionID string   `json:"actionId,omitempty"`
	Amount   int64    `json:"amount,omitempty"`
	Seat     int      `json:"seat,omitempty"`
	Name     string   `json:"name,omitempty"`
	Cards    []string `json:"cards,omitempty"`
}

var betActionTypes = map[string]poker.ActionType{
	"FOLD":  poker.ActionFold,
	"CHECK": poker.ActionCheck,
	"CALL":  poker.ActionCall,
	"BET":   poker.ActionBet,
}

var tableEventTypes = map[string]poker.EventType{
	"JOIN":            poker.EventJoin,
	"SIT_OUT":         poker.EventSitOut,
	"SIT_IN":          poker.EventSitIn,
	"STAND_UP":        poker.EventStandUp,
	"BUY_CHIPS":       poker.EventBuyChips,
	"USE_TIME_BANK":   poker.EventUseTimeBank,
	"SHOW_CARD":       poker.EventShowCard,
	"TOGGLE_STRADDLE": poker.EventToggleStraddle,
	"START_GAME":      poker.EventStartGame,
	"STOP_GAME":       poker.EventStopGame,
}

// toEvent translates a wire frame into the table event it requests.
// The player identity always comes from the connection, never from the
// frame.
func (a *ClientAction) toEvent(playerID string) (poker.Event, error) {
	id := a.ActionID
	if id == "" {
		id = uuid.NewString()
	}
	ev := poker.Event{
		ID:       id,
		PlayerID: playerID,
		Seat:     -1,
	}

	if at, ok := betActionTypes[a.Type]; ok {
		ev.Type = poker.EventBetAction
		ev.Action = poker.Action{Type: at, Seat: -1, Amount: a.Amount}
		return ev, nil
	}

	et, ok := tableEventTypes[a.Type]
	if !ok {
		return poker.Event{}, fmt.Errorf("unknown action type %q", a.Type)
	}
	ev.Type = et

	switch et {
	case poker.EventJoin:
		ev.Seat = a.Seat
		ev.Amount = a.Amount
		ev.Name = a.Name
	case poker.EventBuyChips:
		ev.Amount = a.Amount
	case poker.EventShowCard:
		for _, raw := range a.Cards {
			c, err := poker.ParseCard(raw)
			if err != nil {
				return poker.Event{}, fmt.Errorf("bad card %q: %v", raw, err)
			}
			ev.Cards = append(ev.Cards, c)
		}
	}
	return ev, nil
}

// timerEvent maps a scheduler firing back onto the table event that
// consumes it. Seat -1 firings are stage timers.
func timerEvent(f poker.TimerFired) poker.Event {
	if f.Seat < 0 {
		return poker.Event{
			Type: poker.EventTimedStep,
			ID:   uuid.NewString(),
			Seat: -1,
			Seq:  f.Seq,
		}
	}
	return poker.Event{
		Type: poker.EventTurnTimeout,
		ID:   uuid.NewString(),
		Seat: f.Seat,
		Seq:  f.Seq,
	}
}

// ServerMessage is the outbound wire frame. Type is one of "state",
// "hand_result" or "error".
type ServerMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type errorPayload struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func marshalMessage(msgType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ServerMessage{Type: msgType, Data: raw})
}

func errorMessage(reason, detail string) []byte {
	raw, err := marshalMessage("error", errorPayload{Reason: reason, Detail: detail})
	if err != nil {
		return []byte(`{"type":"error"}`)
	}
	return raw
}
