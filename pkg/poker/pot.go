package poker

import (
	"fmt"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"
)

// Pot is an amount plus the seat-aligned mask of players eligible to win
// it. Eligibility is frozen when the pot is capped by an all-in and only
// shrinks afterwards as contestors fold.
type Pot struct {
	Amount      int64  `json:"amount"`
	Eligibility []bool `json:"eligibility"`
}

// NewPot creates an empty pot over n seats.
func NewPot(n int) *Pot {
	return &Pot{Eligibility: make([]bool, n)}
}

// EligibleSeats returns the seats eligible to win this pot, ascending.
func (p *Pot) EligibleSeats() []int {
	var seats []int
	for i, e := range p.Eligibility {
		if e {
			seats = append(seats, i)
		}
	}
	return seats
}

func (p *Pot) maskKey() string {
	key := make([]byte, len(p.Eligibility))
	for i, e := range p.Eligibility {
		if e {
			key[i] = '1'
		} else {
			key[i] = '0'
		}
	}
	return string(key)
}

// PotLedger tracks every chip committed during a hand and collapses street
// commitments into main and side pots. It owns the chip-conservation
// invariant: stacks plus open commitments plus pots always equal the total
// chips at hand start.
type PotLedger struct {
	log     slog.Logger
	players []*Player
	seats   []int // seats dealt into the hand when the ledger opened
	pots    []*Pot

	startingTotal int64
	finalized     bool
}

// NewPotLedger opens a ledger for a hand. Call before any blind is posted
// so the conservation baseline covers every chip in the hand. Only seats
// dealt in at that moment are tracked; players who join, rebuy, or leave
// while the hand runs are outside the ledger and cannot disturb it.
func NewPotLedger(players []*Player, log slog.Logger) *PotLedger {
	l := &PotLedger{log: log, players: players}
	for seat, p := range players {
		if p != nil && p.DealtIn() {
			l.seats = append(l.seats, seat)
			l.startingTotal += p.Stack
		}
	}
	return l
}

// StartingTotal is the sum of all stacks when the ledger was opened.
func (l *PotLedger) StartingTotal() int64 { return l.startingTotal }

// PotTotal is the sum of all collapsed pots.
func (l *PotLedger) PotTotal() int64 {
	var total int64
	for _, p := range l.pots {
		total += p.Amount
	}
	return total
}

// StreetTotal is the sum of all open street commitments.
func (l *PotLedger) StreetTotal() int64 {
	var total int64
	for _, seat := range l.seats {
		if p := l.players[seat]; p != nil {
			total += p.CommittedThisStreet
		}
	}
	return total
}

// Pots returns the collapsed pots, main pot first.
func (l *PotLedger) Pots() []*Pot { return l.pots }

// CollapseStreet merges the open street commitments into the pot structure
// at the end of a betting round. Side pots form from ascending commitment
// levels: each distinct level caps a pot contested by everyone who reached
// it, which isolates short all-ins from later, larger wagers. A level with
// a single contributor is an uncalled bet and is returned to its owner.
// Pots with identical live contestor sets coalesce.
func (l *PotLedger) CollapseStreet() error {
	n := len(l.players)
	type seatBet struct {
		seat int
		bet  int64
	}
	var bets []seatBet
	for _, seat := range l.seats {
		if p := l.players[seat]; p != nil && p.CommittedThisStreet > 0 {
			bets = append(bets, seatBet{seat: seat, bet: p.CommittedThisStreet})
		}
	}

	var streetPots []*Pot
	for len(bets) > 0 {
		min := bets[0].bet
		for _, b := range bets {
			if b.bet < min {
				min = b.bet
			}
		}

		pot := NewPot(n)
		pot.Amount = min * int64(len(bets))
		for _, b := range bets {
			pot.Eligibility[b.seat] = true
		}
		streetPots = append(streetPots, pot)

		next := bets[:0]
		for _, b := range bets {
			b.bet -= min
			if b.bet > 0 {
				next = append(next, b)
			}
		}
		bets = next
	}

	// Return uncalled bets: a level contested by a single seat.
	var called []*Pot
	for _, pot := range streetPots {
		seats := pot.EligibleSeats()
		if len(seats) == 1 {
			p := l.players[seats[0]]
			p.Stack += pot.Amount
			p.CommittedThisHand -= pot.Amount
			continue
		}
		called = append(called, pot)
	}

	for _, seat := range l.seats {
		if p := l.players[seat]; p != nil {
			p.CommittedThisStreet = 0
		}
	}

	// Folded players drop out of every pot, then pots with identical
	// contestor sets merge.
	all := append(append([]*Pot{}, l.pots...), called...)
	for _, pot := range all {
		for i, p := range l.players {
			if pot.Eligibility[i] && (p == nil || !p.InHand()) {
				pot.Eligibility[i] = false
			}
		}
	}

	merged := make([]*Pot, 0, len(all))
	byMask := make(map[string]*Pot)
	for _, pot := range all {
		key := pot.maskKey()
		if existing, ok := byMask[key]; ok {
			existing.Amount += pot.Amount
			continue
		}
		byMask[key] = pot
		merged = append(merged, pot)
	}
	l.pots = merged

	return l.checkConservation("collapse street")
}

// Finalize collapses any remaining street commitments and freezes the pot
// list for showdown, main pot first.
func (l *PotLedger) Finalize() ([]*Pot, error) {
	if !l.finalized {
		if l.StreetTotal() > 0 {
			if err := l.CollapseStreet(); err != nil {
				return nil, err
			}
		}
		if err := l.checkConservation("finalize"); err != nil {
			return nil, err
		}
		l.finalized = true
	}
	return l.pots, nil
}

// PopPot removes and returns the front pot: the main pot first, then side
// pots in the order they were capped.
func (l *PotLedger) PopPot() (*Pot, bool) {
	if len(l.pots) == 0 {
		return nil, false
	}
	pot := l.pots[0]
	l.pots = l.pots[1:]
	return pot, true
}

// checkConservation verifies that no chip has appeared or vanished. A
// violation means money correctness cannot be guaranteed; the hand must be
// aborted, not resolved.
func (l *PotLedger) checkConservation(when string) error {
	var stacks int64
	for _, seat := range l.seats {
		if p := l.players[seat]; p != nil {
			stacks += p.Stack
		}
	}
	total := stacks + l.StreetTotal() + l.PotTotal()
	if total != l.startingTotal {
		if l.log != nil {
			l.log.Errorf("chip conservation violated at %s: have %d, want %d\nledger: %s",
				when, total, l.startingTotal, spew.Sdump(l.pots))
		}
		return fmt.Errorf("%w: %s: chips total %d, started with %d",
			ErrInternalConsistency, when, total, l.startingTotal)
	}
	return nil
}

// SplitAmount divides a pot among winners, assigning odd chips by the
// order the policy dictates.
func SplitAmount(amount int64, winners []int) map[int]int64 {
	shares := make(map[int]int64, len(winners))
	if len(winners) == 0 {
		return shares
	}
	even := amount / int64(len(winners))
	odd := amount - even*int64(len(winners))
	for _, seat := range winners {
		share := even
		if odd > 0 {
			share++
			odd--
		}
		shares[seat] = share
	}
	return shares
}

// OddChipPolicy orders pot winners for odd-chip assignment. The default
// awards odd chips by earliest position from the button.
type OddChipPolicy func(winners []int, buttonSeat, numSeats int) []int

// OddChipsByPosition sorts winners by seat order starting left of the
// button, the conventional rule for split pots.
func OddChipsByPosition(winners []int, buttonSeat, numSeats int) []int {
	sorted := append([]int{}, winners...)
	pos := func(seat int) int {
		return ((seat - buttonSeat - 1) + numSeats) % numSeats
	}
	sort.Slice(sorted, func(i, j int) bool {
		return pos(sorted[i]) < pos(sorted[j])
	})
	return sorted
}
