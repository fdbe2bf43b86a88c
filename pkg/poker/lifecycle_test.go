package poker

import (
	"fmt"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableHarness drives a Table synchronously: stage timers fire on the
// spot, turn timers are captured and fired on demand. Zero-grace turn
// timers fire immediately, mirroring the scheduler.
type tableHarness struct {
	t   *testing.T
	tbl *Table

	turnTimer *EffectArmTurnTimer
	records   []*HandLogRecord
	aborts    []error
	eventSeq  int
}

func lifecycleConfig() *TableConfig {
	return &TableConfig{
		ID:               "test-table",
		GameType:         GameTypeNLHE,
		MaxPlayers:       9,
		SmallBlind:       1,
		BigBlind:         2,
		MinBuyin:         40,
		MaxBuyin:         400,
		TimeToAct:        30 * time.Second,
		NumberTimeBanks:  3,
		TimeBankDuration: 30 * time.Second,
	}
}

func newHarness(t *testing.T, cfg *TableConfig, buyins ...int64) *tableHarness {
	t.Helper()
	tbl, err := NewTable(cfg, slog.Disabled, testRNG())
	require.NoError(t, err)

	h := &tableHarness{t: t, tbl: tbl}
	for i, buyin := range buyins {
		p := NewPlayer(fmt.Sprintf("player-%d", i), fmt.Sprintf("Player %d", i), buyin)
		require.NoError(t, tbl.AddPlayer(p, i))
	}
	return h
}

func (h *tableHarness) nextID() string {
	h.eventSeq++
	return fmt.Sprintf("ev-%d", h.eventSeq)
}

// process applies an event and drains its effects, failing the test on
// any rejection.
func (h *tableHarness) process(ev Event) {
	h.t.Helper()
	require.NoError(h.t, h.tryProcess(ev))
}

// tryProcess applies an event and drains its effects, returning the
// rejection if any.
func (h *tableHarness) tryProcess(ev Event) error {
	effects, err := h.tbl.ProcessEvent(ev)
	h.drain(effects)
	return err
}

func (h *tableHarness) drain(effects []Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case EffectArmStageTimer:
			h.process(Event{Type: EventTimedStep, Seat: -1, Seq: e.Seq})
		case EffectArmTurnTimer:
			cp := e
			h.turnTimer = &cp
			if e.Timeout == 0 {
				h.fireTurnTimer()
			}
		case EffectClearTimer:
			h.turnTimer = nil
		case EffectHandComplete:
			h.records = append(h.records, e.Record)
		case EffectHandAborted:
			h.aborts = append(h.aborts, e.Err)
		}
	}
}

func (h *tableHarness) fireTurnTimer() {
	h.t.Helper()
	require.NotNil(h.t, h.turnTimer, "no turn timer armed")
	timer := *h.turnTimer
	h.turnTimer = nil
	h.process(Event{Type: EventTurnTimeout, Seat: timer.Seat, Seq: timer.Seq})
}

// startHand starts dealing and immediately stops the deal flag so the
// table parks after one hand instead of dealing forever.
func (h *tableHarness) startHand() {
	h.t.Helper()
	h.process(Event{Type: EventStartGame, ID: h.nextID()})
	h.process(Event{Type: EventStopGame, ID: h.nextID()})
}

func (h *tableHarness) act(seat int, typ ActionType, amount int64) {
	h.t.Helper()
	require.Equal(h.t, StageWaitingForBetAction, h.tbl.Stage(), "not waiting for an action")
	require.Equal(h.t, seat, h.tbl.round.ToActSeat, "wrong seat to act")
	h.process(Event{
		Type:   EventBetAction,
		ID:     h.nextID(),
		Seat:   seat,
		Action: Action{Type: typ, Amount: amount},
	})
}

func (h *tableHarness) totalChips() int64 {
	var total int64
	for _, p := range h.tbl.Players() {
		if p != nil {
			total += p.Stack
		}
	}
	return total
}

func TestHandPlaysToShowdown(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	// Button seat 0, blinds 1 and 2; preflop action opens on the button.
	require.Equal(t, StageWaitingForBetAction, h.tbl.Stage())
	assert.Equal(t, 0, h.tbl.buttonSeat)
	assert.Equal(t, 1, h.tbl.sbSeat)
	assert.Equal(t, 2, h.tbl.bbSeat)

	h.act(0, ActionCall, 0)
	h.act(1, ActionCall, 0)
	h.act(2, ActionCheck, 0) // big blind option

	// Postflop action opens left of the button. Check it down.
	for _, street := range []Street{StreetFlop, StreetTurn, StreetRiver} {
		require.Equal(t, street, h.tbl.street)
		h.act(1, ActionCheck, 0)
		h.act(2, ActionCheck, 0)
		h.act(0, ActionCheck, 0)
	}

	// Hand resolved and the table parked.
	assert.Equal(t, StageNotInProgress, h.tbl.Stage())
	assert.Equal(t, int64(600), h.totalChips(), "chips must be conserved")
	assert.Len(t, h.aborts, 0)

	require.Len(t, h.records, 1)
	record := h.records[0]
	assert.Equal(t, uint64(1), record.HandNumber)
	assert.Len(t, record.Board, 5)
	assert.Len(t, record.Streets, 4)
	require.Len(t, record.Pots, 1)
	assert.Equal(t, int64(6), record.Pots[0].Amount)
	require.NotEmpty(t, record.Pots[0].Winners)

	var won int64
	for _, w := range record.Pots[0].Winners {
		won += w.Amount
	}
	assert.Equal(t, int64(6), won)

	var delta int64
	var seats []int
	for _, ps := range record.Players {
		delta += ps.ChipDelta
		seats = append(seats, ps.SeatNumber)
		assert.True(t, ps.SawFlop)
	}
	assert.Equal(t, int64(0), delta)
	assert.Equal(t, []int{1, 2, 0}, seats, "players logged in position order, small blind first")
}

func TestBetFoldsEndHandEarly(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	h.act(0, ActionBet, 10)
	h.act(1, ActionFold, 0)
	h.act(2, ActionFold, 0)

	assert.Equal(t, StageNotInProgress, h.tbl.Stage())

	players := h.tbl.Players()
	// Seat 0 wins the blinds; the uncalled part of the bet came back.
	assert.Equal(t, int64(203), players[0].Stack)
	assert.Equal(t, int64(199), players[1].Stack)
	assert.Equal(t, int64(198), players[2].Stack)
	assert.Equal(t, int64(600), h.totalChips())

	require.Len(t, h.records, 1)
	record := h.records[0]
	require.Len(t, record.Pots, 1)
	assert.Equal(t, int64(5), record.Pots[0].Amount)
	assert.Empty(t, record.Pots[0].Hands, "mucked win shows no hands")

	// Nobody saw a flop.
	for _, ps := range record.Players {
		assert.False(t, ps.SawFlop)
	}
}

func TestDuplicateEventIDAbsorbed(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	ev := Event{
		Type:   EventBetAction,
		ID:     "dup-1",
		Seat:   0,
		Action: Action{Type: ActionCall},
	}
	require.NoError(t, h.tryProcess(ev))

	// The duplicate changes nothing, even though seat 1 is now to act.
	err := h.tryProcess(ev)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, 1, h.tbl.round.ToActSeat)
}

func TestTurnTimeoutDefaults(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	// Seat 0 faces the big blind: the default is fold, and the seat
	// sits out.
	h.fireTurnTimer()
	players := h.tbl.Players()
	assert.True(t, players[0].Folded)
	assert.True(t, players[0].SittingOut)

	h.act(1, ActionCall, 0)

	// The big blind owes nothing: the default is check, no sit out.
	require.Equal(t, 2, h.tbl.round.ToActSeat)
	h.fireTurnTimer()
	assert.False(t, players[2].Folded)
	assert.False(t, players[2].SittingOut)
	assert.Equal(t, StreetFlop, h.tbl.street)

	// Timed-out actions are flagged in the hand log.
	preflop := h.tbl.handLog.record.Streets[0]
	var timedOut int
	for _, a := range preflop.Actions {
		if a.TimedOut {
			timedOut++
		}
	}
	assert.Equal(t, 2, timedOut)
}

func TestStaleTimeoutAfterActionIsAbsorbed(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	require.NotNil(t, h.turnTimer)
	stale := *h.turnTimer

	// The fold wins the race; the timeout for the same turn arrives
	// late and is dropped.
	h.act(0, ActionFold, 0)
	err := h.tryProcess(Event{Type: EventTurnTimeout, Seat: stale.Seat, Seq: stale.Seq})
	assert.ErrorIs(t, err, ErrIllegalTransition)

	// Exactly one transition happened: seat 1 is to act.
	assert.Equal(t, 1, h.tbl.round.ToActSeat)
	assert.Equal(t, StageWaitingForBetAction, h.tbl.Stage())
}

func TestAllInRunOut(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 40, 400)
	h.startHand()

	// Heads-up: the button posts the small blind and acts first.
	require.Equal(t, 0, h.tbl.buttonSeat)
	h.act(0, ActionBet, 40) // all-in
	h.act(1, ActionCall, 0)

	// No further betting: the board runs out and the hand resolves.
	assert.Equal(t, StageNotInProgress, h.tbl.Stage())
	assert.Equal(t, int64(440), h.totalChips())

	require.Len(t, h.records, 1)
	record := h.records[0]
	assert.Len(t, record.Board, 5)
	for _, ps := range record.Players {
		assert.True(t, ps.ShowedCards, "run-out reveals all live hands")
		assert.NotEmpty(t, ps.HoleCards)
	}
}

func TestUseTimeBank(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	var extended bool
	effects, err := h.tbl.ProcessEvent(Event{Type: EventUseTimeBank, ID: h.nextID(), Seat: 0})
	require.NoError(t, err)
	for _, e := range effects {
		if ext, ok := e.(EffectExtendTurnTimer); ok {
			extended = true
			assert.Equal(t, h.tbl.cfg.TimeBankDuration, ext.Extra)
		}
	}
	assert.True(t, extended)
	assert.Equal(t, int32(2), h.tbl.Players()[0].TimeBanksLeft)

	// Once per turn.
	_, err = h.tbl.ProcessEvent(Event{Type: EventUseTimeBank, ID: h.nextID(), Seat: 0})
	requireReason(t, err, ReasonWrongType)

	// Not for players out of turn.
	_, err = h.tbl.ProcessEvent(Event{Type: EventUseTimeBank, ID: h.nextID(), Seat: 1})
	requireReason(t, err, ReasonOutOfTurn)
}

func TestSitOutWhenToActForcesDefault(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	// Seat 0 sits out on their own turn: the turn collapses to zero
	// grace and the default fold applies immediately.
	h.process(Event{Type: EventSitOut, ID: h.nextID(), Seat: 0})

	assert.True(t, h.tbl.Players()[0].Folded)
	assert.Equal(t, 1, h.tbl.round.ToActSeat)
}

func TestDisconnectedPlayerGetsZeroGrace(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	h.act(0, ActionCall, 0)

	// Seat 1 disconnects before their turn comes back around.
	h.process(Event{Type: EventDisconnect, ID: h.nextID(), Seat: 1})

	// Seat 1 is to act while disconnected: zero grace, default fold.
	assert.True(t, h.tbl.Players()[1].Folded)
	assert.Equal(t, 2, h.tbl.round.ToActSeat)
}

func TestStraddlePosts(t *testing.T) {
	cfg := lifecycleConfig()
	cfg.AllowStraddle = true
	h := newHarness(t, cfg, 200, 200, 200, 200)

	h.process(Event{Type: EventToggleStraddle, ID: h.nextID(), Seat: 3})
	h.startHand()

	// Button 0, blinds 1 and 2, straddle 3 for twice the big blind.
	players := h.tbl.Players()
	assert.Equal(t, 3, h.tbl.straddleSeat)
	assert.Equal(t, int64(4), players[3].CommittedThisStreet)
	assert.Equal(t, int64(4), h.tbl.round.AmountToCall)

	// Action opens on the seat after the straddle.
	assert.Equal(t, 0, h.tbl.round.ToActSeat)

	// The straddler keeps the option, like the big blind.
	h.act(0, ActionCall, 0)
	h.act(1, ActionCall, 0)
	h.act(2, ActionCall, 0)
	require.Equal(t, 3, h.tbl.round.ToActSeat)
	h.act(3, ActionCheck, 0)
	assert.Equal(t, StreetFlop, h.tbl.street)
}

func TestConsistencyFailureAbortsHand(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	// Chips vanish behind the engine's back; the street collapse must
	// detect it and abort rather than resolve a corrupt hand.
	h.tbl.Players()[0].Stack -= 10

	h.act(0, ActionCall, 0)
	h.act(1, ActionCall, 0)
	h.act(2, ActionCheck, 0)

	require.Len(t, h.aborts, 1)
	assert.ErrorIs(t, h.aborts[0], ErrInternalConsistency)
	assert.Equal(t, StageNotInProgress, h.tbl.Stage())

	// Stacks restored to the pre-hand snapshot.
	for _, p := range h.tbl.Players() {
		if p != nil {
			assert.Equal(t, int64(200), p.Stack)
		}
	}

	require.Len(t, h.records, 1)
	assert.True(t, h.records[0].Aborted)
}

func TestBustedPlayerSitsOutAndHeadsUpContinues(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 40, 400, 400)
	h.startHand()

	// Seat 0 jams, seat 1 calls, seat 2 folds.
	h.act(0, ActionBet, 40)
	h.act(1, ActionCall, 0)
	h.act(2, ActionFold, 0)

	assert.Equal(t, StageNotInProgress, h.tbl.Stage())
	assert.Equal(t, int64(840), h.totalChips())

	players := h.tbl.Players()
	if players[0].Stack == 0 {
		assert.True(t, players[0].SittingOut, "busted players sit out")
	}
}

func TestStandUpMidHandFoldsAndRemoves(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	// Seat 2 (big blind) stands up mid-hand; not to act, so the seat
	// stays until the hand resolves.
	h.process(Event{Type: EventStandUp, ID: h.nextID(), Seat: 2})
	require.NotNil(t, h.tbl.Players()[2])

	h.act(0, ActionFold, 0)
	h.act(1, ActionFold, 0)

	// Seat 2 won the small blind and left with their stack.
	assert.Equal(t, StageNotInProgress, h.tbl.Stage())
	assert.Nil(t, h.tbl.Players()[2], "quitter removed after the hand")
	assert.Equal(t, int64(399), h.totalChips())
}

func TestJoinMidHandWaitsForNextDeal(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	// A player joins while the hand runs. The new stack sits outside the
	// hand and must not disturb its resolution.
	h.process(Event{
		Type:     EventJoin,
		ID:       h.nextID(),
		PlayerID: "late-joiner",
		Name:     "Late Joiner",
		Seat:     5,
		Amount:   100,
	})

	h.act(0, ActionCall, 0)
	h.act(1, ActionCall, 0)
	h.act(2, ActionCheck, 0)
	for range []Street{StreetFlop, StreetTurn, StreetRiver} {
		h.act(1, ActionCheck, 0)
		h.act(2, ActionCheck, 0)
		h.act(0, ActionCheck, 0)
	}

	assert.Equal(t, StageNotInProgress, h.tbl.Stage())
	assert.Len(t, h.aborts, 0, "a mid-hand join must not abort the hand")
	assert.Equal(t, int64(700), h.totalChips())

	p := h.tbl.Players()[5]
	require.NotNil(t, p)
	assert.Equal(t, int64(100), p.Stack, "the joiner's buyin survives the hand")
	assert.Empty(t, p.HoleCards, "the joiner waits for the next deal")
}

func TestRebuyDuringHandCreditedAtCleanup(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	h.act(0, ActionFold, 0)

	// The folded player rebuys while the hand is still open. The chips
	// are queued, not added to the live stack.
	h.process(Event{Type: EventBuyChips, ID: h.nextID(), Seat: 0, Amount: 50})
	p := h.tbl.Players()[0]
	assert.Equal(t, int64(200), p.Stack, "stacks in an open hand are frozen")
	assert.Equal(t, int64(50), p.PendingRebuy)

	// A queued rebuy counts against the max buyin.
	err := h.tryProcess(Event{Type: EventBuyChips, ID: h.nextID(), Seat: 0, Amount: 300})
	requireReason(t, err, ReasonOutOfBounds)

	h.act(1, ActionFold, 0)

	// Hand resolved cleanly and the rebuy landed.
	assert.Equal(t, StageNotInProgress, h.tbl.Stage())
	assert.Len(t, h.aborts, 0, "a queued rebuy must not abort the hand")
	assert.Equal(t, int64(250), p.Stack)
	assert.Equal(t, int64(0), p.PendingRebuy)
	assert.Equal(t, int64(650), h.totalChips())
}

func TestStandUpByFoldedPlayerWaitsForCleanup(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	h.act(0, ActionFold, 0)

	// Folded players still hold chips the hand started with; the seat
	// stays until the hand resolves.
	h.process(Event{Type: EventStandUp, ID: h.nextID(), Seat: 0})
	require.NotNil(t, h.tbl.Players()[0])

	h.act(1, ActionFold, 0)

	assert.Equal(t, StageNotInProgress, h.tbl.Stage())
	assert.Len(t, h.aborts, 0, "a mid-hand stand up must not abort the hand")
	assert.Nil(t, h.tbl.Players()[0], "quitter removed after the hand")

	players := h.tbl.Players()
	assert.Equal(t, int64(199), players[1].Stack)
	assert.Equal(t, int64(201), players[2].Stack)
}

func TestSnapshotRedaction(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)
	h.startHand()

	snap := h.tbl.Snapshot()
	require.Len(t, snap.Players, 3)
	for _, ps := range snap.Players {
		assert.Len(t, ps.HoleCards, 2, "unredacted snapshot carries all hole cards")
	}

	viewer := snap.RedactFor("player-1")
	for _, ps := range viewer.Players {
		if ps.PlayerID == "player-1" {
			assert.Len(t, ps.HoleCards, 2, "own cards stay visible")
		} else {
			assert.Empty(t, ps.HoleCards, "other hole cards are redacted")
		}
	}

	// The original snapshot is untouched.
	for _, ps := range snap.Players {
		assert.Len(t, ps.HoleCards, 2)
	}

	require.NotNil(t, snap.Round)
	assert.Equal(t, 0, snap.Round.ToActSeat)
	assert.True(t, snap.Round.LegalActions.Contains(ActionCall))
	assert.Equal(t, int64(2), snap.Round.LegalActions.CallAmount)
	assert.Equal(t, int64(3), snap.TotalPot, "both blinds are in")
}

func TestJoinEventSeatsPlayer(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200)

	h.process(Event{
		Type:     EventJoin,
		ID:       h.nextID(),
		PlayerID: "late-joiner",
		Name:     "Late Joiner",
		Seat:     5,
		Amount:   100,
	})
	p := h.tbl.Players()[5]
	require.NotNil(t, p)
	assert.Equal(t, int64(100), p.Stack)
	assert.Equal(t, int32(3), p.TimeBanksLeft)

	// Occupied seats and bad buyins are rejected.
	err := h.tryProcess(Event{Type: EventJoin, ID: h.nextID(), PlayerID: "p2", Name: "X", Seat: 5, Amount: 100})
	requireReason(t, err, ReasonOutOfBounds)
	err = h.tryProcess(Event{Type: EventJoin, ID: h.nextID(), PlayerID: "p3", Name: "Y", Seat: 6, Amount: 10})
	requireReason(t, err, ReasonOutOfBounds)
}

func TestSecondHandRotatesButton(t *testing.T) {
	h := newHarness(t, lifecycleConfig(), 200, 200, 200)

	h.process(Event{Type: EventStartGame, ID: h.nextID()})
	require.Equal(t, 0, h.tbl.buttonSeat)

	// Finish the first hand; shouldDeal stays set so the next hand
	// deals immediately.
	h.act(0, ActionFold, 0)
	h.act(1, ActionFold, 0)

	// Second hand: the button moved.
	require.Equal(t, StageWaitingForBetAction, h.tbl.Stage())
	assert.Equal(t, uint64(2), h.tbl.handNumber)
	assert.Equal(t, 1, h.tbl.buttonSeat)

	h.process(Event{Type: EventStopGame, ID: h.nextID()})
	h.act(1, ActionFold, 0)
	h.act(2, ActionFold, 0)
	assert.Equal(t, StageNotInProgress, h.tbl.Stage())
	assert.Len(t, h.records, 2)
}
