package poker

import (
	"time"
)

// GameType selects the betting-limit rules for a table.
type GameType string

const (
	GameTypeNLHE GameType = "NLHE"
	GameTypePLO  GameType = "PLO"
)

// HoleCardCount returns how many hole cards each player is dealt.
func (g GameType) HoleCardCount() int {
	if g == GameTypePLO {
		return 4
	}
	return 2
}

// Street identifies one betting round of a hand.
type Street uint8

const (
	StreetPreflop Street = iota
	StreetFlop
	StreetTurn
	StreetRiver
)

func (s Street) String() string {
	switch s {
	case StreetPreflop:
		return "PREFLOP"
	case StreetFlop:
		return "FLOP"
	case StreetTurn:
		return "TURN"
	case StreetRiver:
		return "RIVER"
	}
	return "UNKNOWN"
}

// ActionType identifies a betting action.
type ActionType string

const (
	ActionNone     ActionType = ""
	ActionFold     ActionType = "FOLD"
	ActionCheck    ActionType = "CHECK"
	ActionCall     ActionType = "CALL"
	ActionBet      ActionType = "BET"
	ActionAllIn    ActionType = "ALL_IN"
	ActionBlind    ActionType = "PLACE_BLIND"
	ActionStraddle ActionType = "STRADDLE"
)

// Action is one betting action by one seat. For ActionBet the Amount is the
// player's total wager on the street after the action, not the increment;
// raises are bets to a larger street total.
type Action struct {
	Type   ActionType
	Seat   int
	Amount int64
}

// ActionRecord is a logged, accepted action.
type ActionRecord struct {
	Seat    int
	Type    ActionType
	Amount  int64
	Elapsed time.Duration
}

// ActionSet is the set of legal actions and sizing bounds for the seat to
// act, as exposed in state deltas.
type ActionSet struct {
	Types      []ActionType `json:"types"`
	CallAmount int64        `json:"callAmount"`
	MinBet     int64        `json:"minBet"`
	MaxBet     int64        `json:"maxBet"`
}

// Contains reports whether t is in the legal set.
func (s ActionSet) Contains(t ActionType) bool {
	for _, lt := range s.Types {
		if lt == t {
			return true
		}
	}
	return false
}

// Round is one open betting round. AmountToCall is the street total every
// live player must match; MinRaiseDiff is the increment a raise must add;
// PartialAllInLeftover bridges the gap when a player raised all-in for less
// than a full raise, which obligates others to match it without reopening
// action for players who already acted.
type Round struct {
	Street               Street
	AmountToCall         int64
	MinRaiseDiff         int64
	PartialAllInLeftover int64
	ToActSeat            int
	Log                  []ActionRecord

	players  []*Player
	cfg      *TableConfig
	potTotal func() int64
}

// newRound opens a betting round over the table's seats. potTotal reports
// chips already collapsed into pots, used for pot-limit sizing.
func newRound(street Street, players []*Player, cfg *TableConfig, potTotal func() int64) *Round {
	r := &Round{
		Street:       street,
		MinRaiseDiff: cfg.BigBlind,
		ToActSeat:    -1,
		players:      players,
		cfg:          cfg,
		potTotal:     potTotal,
	}
	for _, p := range players {
		if p != nil && p.CanAct() {
			p.resetForStreet()
		}
	}
	return r
}

// HighestBet is the largest street total committed by any dealt-in player.
func (r *Round) HighestBet() int64 {
	var hi int64
	for _, p := range r.players {
		if p != nil && len(p.HoleCards) > 0 && p.CommittedThisStreet > hi {
			hi = p.CommittedThisStreet
		}
	}
	return hi
}

// FacingBet reports whether p still owes chips to stay in the hand.
func (r *Round) FacingBet(p *Player) bool {
	return r.AmountToCall+r.PartialAllInLeftover > p.CommittedThisStreet
}

// CallAmount is the street total p must reach to call, capped at all-in.
func (r *Round) CallAmount(p *Player) int64 {
	if !r.FacingBet(p) {
		return 0
	}
	owed := r.AmountToCall + r.PartialAllInLeftover
	if chips := p.ChipsThisStreet(); owed > chips {
		return chips
	}
	return owed
}

// MinBetFor is the smallest legal street total for a bet or raise by p,
// capped at all-in: a short stack may always move in below the minimum.
func (r *Round) MinBetFor(p *Player) int64 {
	min := r.AmountToCall + r.MinRaiseDiff + r.PartialAllInLeftover
	if chips := p.ChipsThisStreet(); min > chips {
		return chips
	}
	return min
}

// MaxBetFor is the largest legal street total for p: the full stack in
// no-limit, the pot-sized bet in pot-limit. In pot-limit the minimum bet
// is always available even when the pot is smaller than it.
func (r *Round) MaxBetFor(p *Player) int64 {
	chips := p.ChipsThisStreet()
	if r.cfg.GameType != GameTypePLO {
		return chips
	}
	potSized := r.fullPot() + 2*r.AmountToCall - p.CommittedThisStreet
	if min := r.MinBetFor(p); potSized < min {
		potSized = min
	}
	if potSized < chips {
		return potSized
	}
	return chips
}

// fullPot is all chips in play for sizing: collapsed pots plus every street
// commitment on the table.
func (r *Round) fullPot() int64 {
	total := r.potTotal()
	for _, p := range r.players {
		if p != nil {
			total += p.CommittedThisStreet
		}
	}
	return total
}

// LegalActions computes the action set for p. Equal to the amount to call
// means check or bet; short of it means fold, call, or raise, with raise
// collapsing away when the stack cannot exceed the call amount.
func (r *Round) LegalActions(p *Player) ActionSet {
	set := ActionSet{}
	if p == nil || !p.CanAct() {
		return set
	}
	if r.FacingBet(p) {
		set.CallAmount = r.CallAmount(p)
		set.Types = append(set.Types, ActionFold, ActionCall)
		if p.ChipsThisStreet() > r.AmountToCall+r.PartialAllInLeftover {
			set.Types = append(set.Types, ActionBet)
		}
	} else {
		set.Types = append(set.Types, ActionCheck, ActionBet)
	}
	if set.Contains(ActionBet) {
		set.MinBet = r.MinBetFor(p)
		set.MaxBet = r.MaxBetFor(p)
	}
	return set
}

// Apply validates and applies one action for the seat to act. Rejections
// carry a distinct reason (out of turn, wrong type, out of bounds) and do
// not mutate any state. Accepted bets and raises reopen action for every
// other live player, except an all-in below the minimum raise.
func (r *Round) Apply(action Action) error {
	if action.Seat < 0 || action.Seat >= len(r.players) || r.players[action.Seat] == nil {
		return rejectf(ReasonOutOfTurn, "seat %d is not seated", action.Seat)
	}
	if action.Seat != r.ToActSeat {
		return rejectf(ReasonOutOfTurn, "seat %d acted but seat %d is to act", action.Seat, r.ToActSeat)
	}
	p := r.players[action.Seat]

	legal := r.LegalActions(p)
	switch action.Type {
	case ActionFold:
		if !legal.Contains(ActionFold) {
			return rejectf(ReasonWrongType, "cannot fold when not facing a bet")
		}
		p.Folded = true
		p.HasActed = true
		p.LastActionType = ActionFold

	case ActionCheck:
		if !legal.Contains(ActionCheck) {
			return rejectf(ReasonWrongType, "cannot check facing a bet of %d", r.AmountToCall)
		}
		p.HasActed = true
		p.LastActionType = ActionCheck

	case ActionCall:
		if !legal.Contains(ActionCall) {
			return rejectf(ReasonWrongType, "nothing to call")
		}
		p.commitTo(r.CallAmount(p))
		p.HasActed = true
		p.LastActionType = ActionCall
		if p.AllIn {
			p.LastActionType = ActionAllIn
		}
		action.Amount = p.CommittedThisStreet

	case ActionBet:
		if !legal.Contains(ActionBet) {
			return rejectf(ReasonWrongType, "betting is not available")
		}
		if action.Amount < legal.MinBet || action.Amount > legal.MaxBet {
			return rejectf(ReasonOutOfBounds, "bet %d outside [%d, %d]", action.Amount, legal.MinBet, legal.MaxBet)
		}
		r.bet(p, action.Amount, ActionNone)

	default:
		return rejectf(ReasonWrongType, "unknown action type %q", action.Type)
	}

	r.Log = append(r.Log, ActionRecord{Seat: action.Seat, Type: action.Type, Amount: action.Amount})
	return nil
}

// bet commits p to the given street total and updates raise bookkeeping.
// blindType marks forced wagers (blinds, straddles), which never count as
// having acted. Capping at the stack happens here so blinds larger than a
// short stack simply put the player all-in.
func (r *Round) bet(p *Player, amount int64, blindType ActionType) {
	chips := p.ChipsThisStreet()
	actual := amount
	if actual > chips {
		actual = chips
	}
	p.commitTo(actual)

	switch {
	case p.AllIn:
		p.LastActionType = ActionAllIn
	case blindType != ActionNone:
		p.LastActionType = blindType
	default:
		p.LastActionType = ActionBet
	}
	if blindType == ActionNone {
		p.HasActed = true
	}

	if actual <= r.AmountToCall {
		// All-in for no more than the call amount: a call, no raise
		// bookkeeping to update.
		return
	}
	if p.AllIn && actual < r.AmountToCall+r.MinRaiseDiff {
		// All-in raise below the full minimum. Others must match it but
		// action is not reopened for players who already acted.
		r.PartialAllInLeftover = actual - r.AmountToCall
		return
	}

	diff := actual - r.AmountToCall
	if diff < r.cfg.BigBlind {
		diff = r.cfg.BigBlind
	}
	r.MinRaiseDiff = diff
	r.AmountToCall = actual
	if r.AmountToCall < r.cfg.BigBlind {
		r.AmountToCall = r.cfg.BigBlind
	}
	r.PartialAllInLeftover = 0

	// A full raise reopens action for every other live player.
	if blindType == ActionNone {
		for _, other := range r.players {
			if other != nil && other != p && other.CanAct() {
				other.HasActed = false
			}
		}
	}
}

// Over reports whether the round is closed: every dealt-in player has
// folded, gone all-in, or acted and matched the highest bet. Forced blinds
// do not count as acting, which preserves the big blind's option.
func (r *Round) Over() bool {
	hi := r.HighestBet()
	for _, p := range r.players {
		if p == nil || len(p.HoleCards) == 0 {
			continue
		}
		if p.Folded || p.AllIn {
			continue
		}
		if !p.HasActed || p.CommittedThisStreet != hi {
			return false
		}
	}
	return true
}

// nextToAct returns the next seat after from (exclusive, circular) that can
// still act, or -1 when none remains.
func (r *Round) nextToAct(from int) int {
	n := len(r.players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		p := r.players[seat]
		if p != nil && p.CanAct() && (!p.HasActed || p.CommittedThisStreet != r.HighestBet()) {
			return seat
		}
	}
	return -1
}

// Advance moves the to-act seat past the player who just acted. Returns
// false when the round is over and nobody is to act.
func (r *Round) Advance() bool {
	if r.Over() {
		r.ToActSeat = -1
		return false
	}
	r.ToActSeat = r.nextToAct(r.ToActSeat)
	return r.ToActSeat != -1
}
