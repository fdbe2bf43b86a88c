package poker

import (
	"time"

	"github.com/vctt94/pokertable/pkg/statemachine"
)

// Stage is the hand lifecycle state. Every stage except NotInProgress and
// WaitingForBetAction is transient: it performs its side effects on entry
// and auto-advances after its display delay.
type Stage uint8

const (
	StageNotInProgress Stage = iota
	StageInitializeNewHand
	StageShowStartOfHand
	StageShowStartOfBettingRound
	StageSetCurrentPlayerToAct
	StageWaitingForBetAction
	StageShowBetAction
	StageShowPlaceBetsInPot
	StageShowWinner
	StagePostHandCleanup
)

func (s Stage) String() string {
	switch s {
	case StageNotInProgress:
		return "NOT_IN_PROGRESS"
	case StageInitializeNewHand:
		return "INITIALIZE_NEW_HAND"
	case StageShowStartOfHand:
		return "SHOW_START_OF_HAND"
	case StageShowStartOfBettingRound:
		return "SHOW_START_OF_BETTING_ROUND"
	case StageSetCurrentPlayerToAct:
		return "SET_CURRENT_PLAYER_TO_ACT"
	case StageWaitingForBetAction:
		return "WAITING_FOR_BET_ACTION"
	case StageShowBetAction:
		return "SHOW_BET_ACTION"
	case StageShowPlaceBetsInPot:
		return "SHOW_PLACE_BETS_IN_POT"
	case StageShowWinner:
		return "SHOW_WINNER"
	case StagePostHandCleanup:
		return "POST_HAND_CLEANUP"
	}
	return "UNKNOWN"
}

// stageDelays are the display delays before a transient stage advances,
// long enough for observers to follow the dealing and reveal animations.
var stageDelays = map[Stage]time.Duration{
	StageInitializeNewHand:       250 * time.Millisecond,
	StageShowStartOfHand:         400 * time.Millisecond,
	StageShowStartOfBettingRound: 750 * time.Millisecond,
	StageSetCurrentPlayerToAct:   50 * time.Millisecond,
	StageShowBetAction:           200 * time.Millisecond,
	StageShowPlaceBetsInPot:      1200 * time.Millisecond,
	StageShowWinner:              5800 * time.Millisecond,
	StagePostHandCleanup:         400 * time.Millisecond,
}

// buildGraph wires the lifecycle transition table. Conditions read the
// table but never mutate it; all mutation happens in stage entry.
func (t *Table) buildGraph() statemachine.Graph[Stage, EventType] {
	to := statemachine.To[Stage]
	cond := statemachine.If[Stage]

	return statemachine.Graph[Stage, EventType]{
		StageNotInProgress: {
			EventStartGame: cond(t.canDealNextHand,
				to(StageInitializeNewHand), to(StageNotInProgress)),
		},
		StageInitializeNewHand: {
			EventTimedStep: to(StageShowStartOfHand),
		},
		StageShowStartOfHand: {
			EventTimedStep: to(StageShowStartOfBettingRound),
		},
		StageShowStartOfBettingRound: {
			EventTimedStep: cond(t.isAllInRunOut,
				to(StageShowPlaceBetsInPot), to(StageSetCurrentPlayerToAct)),
		},
		StageSetCurrentPlayerToAct: {
			EventTimedStep: to(StageWaitingForBetAction),
		},
		StageWaitingForBetAction: {
			EventBetAction:   to(StageShowBetAction),
			EventTurnTimeout: to(StageShowBetAction),
		},
		StageShowBetAction: {
			EventTimedStep: cond(t.isBettingRoundOver,
				to(StageShowPlaceBetsInPot), to(StageSetCurrentPlayerToAct)),
		},
		StageShowPlaceBetsInPot: {
			EventTimedStep: cond(t.isHandOver,
				to(StageShowWinner), to(StageShowStartOfBettingRound)),
		},
		StageShowWinner: {
			EventTimedStep: cond(t.sidePotsRemaining,
				to(StageShowWinner), to(StagePostHandCleanup)),
		},
		StagePostHandCleanup: {
			EventTimedStep: cond(t.canDealNextHand,
				to(StageInitializeNewHand), to(StageNotInProgress)),
		},
	}
}
