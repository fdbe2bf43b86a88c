package poker

import (
	"time"
)

// EventType tags an inbound event for the lifecycle machine.
type EventType string

const (
	// EventStartGame asks the table to start dealing hands.
	EventStartGame EventType = "START_GAME"
	// EventStopGame stops dealing after the current hand.
	EventStopGame EventType = "STOP_GAME"
	// EventTimedStep advances a transient stage once its delay elapsed.
	// Carries the stage sequence number of the arming.
	EventTimedStep EventType = "TIMED_STEP"
	// EventBetAction is a player's betting action.
	EventBetAction EventType = "BET_ACTION"
	// EventTurnTimeout fires when the seat to act ran out of time.
	EventTurnTimeout EventType = "TURN_TIMEOUT"
	// EventUseTimeBank spends a time-bank unit on the current turn.
	EventUseTimeBank EventType = "USE_TIME_BANK"

	// EventJoin seats a new player with their buyin.
	EventJoin EventType = "JOIN"
	// EventReplenishTimeBanks tops up every seated player's time bank,
	// driven by the orchestrator on the replenish interval.
	EventReplenishTimeBanks EventType = "REPLENISH_TIME_BANKS"

	EventSitOut         EventType = "SIT_OUT"
	EventSitIn          EventType = "SIT_IN"
	EventStandUp        EventType = "STAND_UP"
	EventBuyChips       EventType = "BUY_CHIPS"
	EventShowCard       EventType = "SHOW_CARD"
	EventToggleStraddle EventType = "TOGGLE_STRADDLE"
	EventDisconnect     EventType = "DISCONNECT"
	EventReconnect      EventType = "RECONNECT"
)

// Event is one inbound event for a table, applied strictly in order.
type Event struct {
	Type EventType

	// ID deduplicates client submissions: an already-applied ID is
	// absorbed as an illegal transition, never applied twice.
	ID string

	// Seat or PlayerID identifies the acting player for player events.
	Seat     int
	PlayerID string

	// Seq is the timer sequence for TimedStep and TurnTimeout events.
	Seq uint64

	Action Action // for EventBetAction
	Amount int64  // for EventBuyChips and EventJoin buyins
	Name   string // for EventJoin
	Cards  []Card // for EventShowCard
}

// Effect is a declarative side-effect record produced by ProcessEvent and
// executed by the orchestrator. The lifecycle machine itself does no I/O.
type Effect interface{ effect() }

// EffectBroadcast asks the orchestrator to send a state delta to all
// observers of the table.
type EffectBroadcast struct{}

// EffectArmStageTimer schedules a TimedStep event after Delay, tagged with
// the stage sequence Seq.
type EffectArmStageTimer struct {
	Seq   uint64
	Delay time.Duration
}

// EffectArmTurnTimer schedules a TurnTimeout for Seat after Timeout,
// tagged with the turn sequence Seq.
type EffectArmTurnTimer struct {
	Seq     uint64
	Seat    int
	Timeout time.Duration
}

// EffectExtendTurnTimer pushes the armed turn deadline back by Extra.
type EffectExtendTurnTimer struct {
	Extra time.Duration
}

// EffectClearTimer cancels whatever deadline is armed.
type EffectClearTimer struct{}

// EffectHandComplete reports a finished hand with its archival record.
type EffectHandComplete struct {
	Record *HandLogRecord
}

// EffectHandAborted reports a hand abandoned over an internal consistency
// failure. Stacks have been restored to the pre-hand snapshot.
type EffectHandAborted struct {
	Err error
}

func (EffectBroadcast) effect()       {}
func (EffectArmStageTimer) effect()   {}
func (EffectArmTurnTimer) effect()    {}
func (EffectExtendTurnTimer) effect() {}
func (EffectClearTimer) effect()      {}
func (EffectHandComplete) effect()    {}
func (EffectHandAborted) effect()     {}
