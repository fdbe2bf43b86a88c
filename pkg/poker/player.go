package poker

import (
	"time"
)

// Player is a seat-scoped participant in a table. All chip fields are
// integers; a player's stack never goes negative because every debit goes
// through the betting round engine.
type Player struct {
	// Identity
	ID   string
	Name string
	Seat int

	// Chips
	Stack             int64
	CommittedThisHand int64 // total chips put in across all streets this hand
	PendingRebuy      int64 // chips bought during an open hand, credited at cleanup

	// Per-street betting state, owned by the betting round engine.
	// CommittedThisStreet is the player's total wager on the open street
	// (blinds and straddles included preflop).
	CommittedThisStreet int64
	HasActed            bool
	LastActionType      ActionType

	// Hand state
	HoleCards []Card
	Folded    bool
	AllIn     bool

	// Seat state
	SittingOut     bool
	SitOutNextHand bool
	MissedBigBlind bool // must post or wait for the blind after sitting back in
	Disconnected   bool
	LastActionAt   time.Time
	QuitAfterHand  bool

	// Time bank
	TimeBanksLeft int32

	// WillStraddle opts the player into posting a straddle when seated
	// two after the big blind, if the table allows it.
	WillStraddle bool

	// Showdown
	WillShowCards   bool
	CardsRevealed   bool
	ShownCards      []Card
	HandValue       *HandValue
	HandDescription string
}

// NewPlayer creates a player with the given starting stack, not yet seated.
func NewPlayer(id, name string, stack int64) *Player {
	return &Player{
		ID:           id,
		Name:         name,
		Seat:         -1,
		Stack:        stack,
		HoleCards:    make([]Card, 0, 4),
		LastActionAt: time.Now(),
	}
}

// DealtIn reports whether the player receives cards this hand: seated,
// sitting in, with chips behind.
func (p *Player) DealtIn() bool {
	return p.Seat >= 0 && !p.SittingOut && p.Stack > 0
}

// InHand reports whether the player was dealt cards and has not folded.
func (p *Player) InHand() bool {
	return len(p.HoleCards) > 0 && !p.Folded
}

// CanAct reports whether the player can still take a betting action this
// hand. Folded and all-in players never become "to act" again.
func (p *Player) CanAct() bool {
	return p.InHand() && !p.AllIn
}

// ChipsThisStreet is the amount the player could have wagered on the open
// street in total: chips behind plus what is already committed. Betting
// limits are computed against this, not the raw stack, because bet amounts
// are expressed as street totals.
func (p *Player) ChipsThisStreet() int64 {
	return p.Stack + p.CommittedThisStreet
}

// commitTo raises the player's street commitment to total, debiting the
// stack by the difference and flagging all-in when the stack empties.
// total must not exceed ChipsThisStreet.
func (p *Player) commitTo(total int64) {
	delta := total - p.CommittedThisStreet
	p.Stack -= delta
	p.CommittedThisStreet = total
	p.CommittedThisHand += delta
	if p.Stack == 0 {
		p.AllIn = true
	}
}

// resetForStreet clears per-street betting state when a new street opens.
func (p *Player) resetForStreet() {
	p.CommittedThisStreet = 0
	p.HasActed = false
	p.LastActionType = ActionNone
}

// resetForHand clears all hand-scoped state before the next deal.
func (p *Player) resetForHand() {
	p.resetForStreet()
	p.CommittedThisHand = 0
	p.HoleCards = p.HoleCards[:0]
	p.Folded = false
	p.AllIn = false
	p.WillShowCards = false
	p.CardsRevealed = false
	p.ShownCards = p.ShownCards[:0]
	p.HandValue = nil
	p.HandDescription = ""
	if p.SitOutNextHand {
		p.SittingOut = true
		p.SitOutNextHand = false
	}
}

// showCard reveals one hole card; revealing the whole holding flips the
// full-reveal flag used at showdown.
func (p *Player) showCard(c Card) {
	for _, sc := range p.ShownCards {
		if sc == c {
			return
		}
	}
	p.ShownCards = append(p.ShownCards, c)
	if len(p.ShownCards) == len(p.HoleCards) {
		p.CardsRevealed = true
	}
}

// HoldsCard reports whether the player was dealt the given card.
func (p *Player) HoldsCard(c Card) bool {
	for _, hc := range p.HoleCards {
		if hc == c {
			return true
		}
	}
	return false
}
