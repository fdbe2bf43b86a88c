package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokertable/pkg/poker"
)

func TestClientActionToEventBetting(t *testing.T) {
	tests := []struct {
		wire string
		want poker.ActionType
	}{
		{"FOLD", poker.ActionFold},
		{"CHECK", poker.ActionCheck},
		{"CALL", poker.ActionCall},
		{"BET", poker.ActionBet},
	}
	for _, tc := range tests {
		t.Run(tc.wire, func(t *testing.T) {
			a := &ClientAction{Type: tc.wire, ActionID: "act-1", Amount: 50}
			ev, err := a.toEvent("player-a")
			require.NoError(t, err)
			assert.Equal(t, poker.EventBetAction, ev.Type)
			assert.Equal(t, "act-1", ev.ID)
			assert.Equal(t, "player-a", ev.PlayerID)
			assert.Equal(t, tc.want, ev.Action.Type)
			assert.Equal(t, int64(50), ev.Action.Amount)
		})
	}
}

func TestClientActionIdentityFromConnection(t *testing.T) {
	// A frame cannot act as another player; the seat resolves from the
	// authenticated identity.
	a := &ClientAction{Type: "FOLD"}
	ev, err := a.toEvent("player-a")
	require.NoError(t, err)
	assert.Equal(t, "player-a", ev.PlayerID)
	assert.Equal(t, -1, ev.Seat)
	assert.NotEmpty(t, ev.ID, "missing action IDs are filled in")
}

func TestClientActionToEventJoin(t *testing.T) {
	a := &ClientAction{Type: "JOIN", Seat: 3, Amount: 200, Name: "Alice"}
	ev, err := a.toEvent("player-a")
	require.NoError(t, err)
	assert.Equal(t, poker.EventJoin, ev.Type)
	assert.Equal(t, 3, ev.Seat)
	assert.Equal(t, int64(200), ev.Amount)
	assert.Equal(t, "Alice", ev.Name)
}

func TestClientActionToEventShowCard(t *testing.T) {
	a := &ClientAction{Type: "SHOW_CARD", Cards: []string{"As", "Kd"}}
	ev, err := a.toEvent("player-a")
	require.NoError(t, err)
	assert.Equal(t, poker.EventShowCard, ev.Type)
	require.Len(t, ev.Cards, 2)
	assert.Equal(t, "A♠", ev.Cards[0].String())
	assert.Equal(t, "K♦", ev.Cards[1].String())

	_, err = (&ClientAction{Type: "SHOW_CARD", Cards: []string{"Zx"}}).toEvent("p")
	assert.Error(t, err)
}

func TestClientActionUnknownType(t *testing.T) {
	_, err := (&ClientAction{Type: "DANCE"}).toEvent("player-a")
	assert.Error(t, err)
}

func TestTimerEventMapping(t *testing.T) {
	ev := timerEvent(poker.TimerFired{Seq: 9, Seat: -1})
	assert.Equal(t, poker.EventTimedStep, ev.Type)
	assert.Equal(t, uint64(9), ev.Seq)

	ev = timerEvent(poker.TimerFired{Seq: 4, Seat: 2})
	assert.Equal(t, poker.EventTurnTimeout, ev.Type)
	assert.Equal(t, uint64(4), ev.Seq)
	assert.Equal(t, 2, ev.Seat)
}
