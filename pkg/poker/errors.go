package poker

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalTransition marks an event that does not apply to the
	// current stage (stale timers, duplicate submissions, out-of-stage
	// actions). It is absorbed as a no-op and never surfaced to other
	// players.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrIllegalAction marks a betting action rejected by the round
	// engine. It carries a reason code returned only to the offending
	// client.
	ErrIllegalAction = errors.New("illegal action")

	// ErrInternalConsistency marks a chip-conservation or invariant
	// violation. Fatal for the hand: stacks are restored to the pre-hand
	// snapshot instead of resolving incorrectly.
	ErrInternalConsistency = errors.New("internal consistency violation")
)

// RejectReason distinguishes why an action was rejected.
type RejectReason string

const (
	ReasonOutOfTurn   RejectReason = "out of turn"
	ReasonWrongType   RejectReason = "action type not legal now"
	ReasonOutOfBounds RejectReason = "amount out of bounds"
)

// ActionError is an ErrIllegalAction with its reason code.
type ActionError struct {
	Reason RejectReason
	Detail string
}

func (e *ActionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("illegal action: %s", e.Reason)
	}
	return fmt.Sprintf("illegal action: %s: %s", e.Reason, e.Detail)
}

func (e *ActionError) Unwrap() error { return ErrIllegalAction }

func rejectf(reason RejectReason, format string, args ...interface{}) error {
	return &ActionError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
