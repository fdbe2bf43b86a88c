package poker

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/vctt94/pokertable/pkg/statemachine"
)

// Table is one poker table: the hand lifecycle state machine plus the
// betting round, pot ledger and per-hand state it drives. A Table is not
// safe for concurrent use; the orchestrator feeds it events from a single
// serialized worker.
type Table struct {
	cfg   *TableConfig
	log   slog.Logger
	rng   *rand.Rand
	clock func() time.Time

	graph    statemachine.Graph[Stage, EventType]
	stage    Stage
	stageSeq uint64
	turnSeq  uint64

	players []*Player // seat-indexed; nil seats are empty
	deck    *Deck
	board   []Card
	round   *Round
	street  Street
	ledger  *PotLedger

	handID            string
	handNumber        uint64
	handSeats         []int // seats dealt into the current hand
	buttonSeat        int
	sbSeat            int
	bbSeat            int
	straddleSeat      int
	prevBBSeat        int
	lastAggressorSeat int
	allInRunOut       bool
	handOver          bool
	showdownPrepared  bool
	shouldDeal        bool
	stacksAtHandStart []int64

	turnStartedAt time.Time
	timeBankUsed  bool

	appliedIDs map[string]struct{}

	handLog  *handLogBuilder
	oddChips OddChipPolicy
}

// NewTable creates an empty table running the given config.
func NewTable(cfg *TableConfig, log slog.Logger, rng *rand.Rand) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table config: %w", err)
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	t := &Table{
		cfg:          cfg,
		log:          log,
		rng:          rng,
		clock:        time.Now,
		stage:        StageNotInProgress,
		players:      make([]*Player, cfg.MaxPlayers),
		buttonSeat:   -1,
		sbSeat:       -1,
		bbSeat:       -1,
		straddleSeat: -1,
		prevBBSeat:   -1,
		appliedIDs:   make(map[string]struct{}),
		oddChips:     OddChipsByPosition,
	}
	t.graph = t.buildGraph()
	return t, nil
}

// SetClock replaces the wall clock, for tests.
func (t *Table) SetClock(clock func() time.Time) { t.clock = clock }

// SetOddChipPolicy replaces the odd-chip assignment rule.
func (t *Table) SetOddChipPolicy(p OddChipPolicy) { t.oddChips = p }

// ID returns the table identifier.
func (t *Table) ID() string { return t.cfg.ID }

// Stage returns the current lifecycle stage.
func (t *Table) Stage() Stage { return t.stage }

// Config returns the table's game parameters.
func (t *Table) Config() TableConfig { return *t.cfg }

// ProcessEvent applies one inbound event and returns the side effects for
// the orchestrator to execute. Events that do not apply to the current
// stage, carry a stale sequence number, or duplicate an already-applied ID
// return ErrIllegalTransition and change nothing.
func (t *Table) ProcessEvent(ev Event) ([]Effect, error) {
	if ev.ID != "" {
		if _, dup := t.appliedIDs[ev.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate event %q", ErrIllegalTransition, ev.ID)
		}
	}

	var effects []Effect
	var err error
	switch ev.Type {
	case EventStartGame:
		effects, err = t.handleStartGame()
	case EventStopGame:
		t.shouldDeal = false
		effects = []Effect{EffectBroadcast{}}
	case EventTimedStep:
		effects, err = t.handleTimedStep(ev)
	case EventBetAction:
		effects, err = t.handleBetAction(ev)
	case EventTurnTimeout:
		effects, err = t.handleTurnTimeout(ev)
	case EventUseTimeBank:
		effects, err = t.handleUseTimeBank(ev)
	case EventJoin:
		effects, err = t.handleJoin(ev)
	case EventReplenishTimeBanks:
		t.ReplenishTimeBanks()
		effects = []Effect{EffectBroadcast{}}
	case EventSitOut:
		effects, err = t.handleSitOut(ev)
	case EventSitIn:
		effects, err = t.handleSitIn(ev)
	case EventStandUp:
		effects, err = t.handleStandUp(ev)
	case EventBuyChips:
		effects, err = t.handleBuyChips(ev)
	case EventShowCard:
		effects, err = t.handleShowCard(ev)
	case EventToggleStraddle:
		effects, err = t.handleToggleStraddle(ev)
	case EventDisconnect:
		effects, err = t.handleConnection(ev, true)
	case EventReconnect:
		effects, err = t.handleConnection(ev, false)
	default:
		err = fmt.Errorf("%w: unknown event type %q", ErrIllegalTransition, ev.Type)
	}

	if err == nil && ev.ID != "" {
		t.appliedIDs[ev.ID] = struct{}{}
	}
	return effects, err
}

func (t *Table) handleStartGame() ([]Effect, error) {
	t.shouldDeal = true
	if t.stage != StageNotInProgress {
		// Already dealing; the flag keeps hands coming.
		return []Effect{EffectBroadcast{}}, nil
	}
	next, _ := t.graph.Next(t.stage, EventStartGame)
	if next == StageNotInProgress {
		// Not enough players yet; stay paused until the next start.
		return []Effect{EffectBroadcast{}}, nil
	}
	return t.enterStage(next)
}

func (t *Table) handleTimedStep(ev Event) ([]Effect, error) {
	if ev.Seq != t.stageSeq {
		return nil, fmt.Errorf("%w: stale stage step seq %d, at %d", ErrIllegalTransition, ev.Seq, t.stageSeq)
	}
	next, ok := t.graph.Next(t.stage, EventTimedStep)
	if !ok {
		return nil, fmt.Errorf("%w: stage %s does not auto-advance", ErrIllegalTransition, t.stage)
	}
	return t.enterStage(next)
}

func (t *Table) handleBetAction(ev Event) ([]Effect, error) {
	if !t.graph.Accepts(t.stage, EventBetAction) {
		return nil, fmt.Errorf("%w: bet action during %s", ErrIllegalTransition, t.stage)
	}
	seat, err := t.resolveSeat(ev)
	if err != nil {
		return nil, err
	}

	action := ev.Action
	action.Seat = seat
	if err := t.round.Apply(action); err != nil {
		return nil, err
	}

	applied := t.round.Log[len(t.round.Log)-1]
	t.handLog.pushAction(seat, applied.Type, applied.Amount, t.clock().Sub(t.turnStartedAt), false)
	if action.Type == ActionBet {
		t.lastAggressorSeat = seat
	}

	next, _ := t.graph.Next(t.stage, EventBetAction)
	effects, err := t.enterStage(next)
	if err != nil {
		return effects, err
	}
	return append([]Effect{EffectClearTimer{}}, effects...), nil
}

func (t *Table) handleTurnTimeout(ev Event) ([]Effect, error) {
	if !t.graph.Accepts(t.stage, EventTurnTimeout) || ev.Seq != t.turnSeq {
		return nil, fmt.Errorf("%w: stale turn timeout seq %d", ErrIllegalTransition, ev.Seq)
	}
	seat := t.round.ToActSeat
	p := t.players[seat]

	// Timed-out players check when they can, otherwise fold and sit out.
	legal := t.round.LegalActions(p)
	var action Action
	if legal.Contains(ActionCheck) {
		action = Action{Type: ActionCheck, Seat: seat}
	} else {
		action = Action{Type: ActionFold, Seat: seat}
	}
	if err := t.round.Apply(action); err != nil {
		return nil, fmt.Errorf("apply timeout default action: %w", err)
	}
	if action.Type == ActionFold {
		p.SittingOut = true
	}
	t.handLog.pushAction(seat, action.Type, 0, t.clock().Sub(t.turnStartedAt), true)
	t.log.Debugf("table %s: seat %d timed out, defaulted to %s", t.cfg.ID, seat, action.Type)

	next, _ := t.graph.Next(t.stage, EventTurnTimeout)
	return t.enterStage(next)
}

func (t *Table) handleUseTimeBank(ev Event) ([]Effect, error) {
	if t.stage != StageWaitingForBetAction {
		return nil, fmt.Errorf("%w: no turn to extend", ErrIllegalTransition)
	}
	seat, err := t.resolveSeat(ev)
	if err != nil {
		return nil, err
	}
	if seat != t.round.ToActSeat {
		return nil, rejectf(ReasonOutOfTurn, "seat %d is not to act", seat)
	}
	p := t.players[seat]
	if p.TimeBanksLeft <= 0 {
		return nil, rejectf(ReasonWrongType, "no time banks left")
	}
	if t.timeBankUsed {
		return nil, rejectf(ReasonWrongType, "time bank already used this turn")
	}
	p.TimeBanksLeft--
	t.timeBankUsed = true
	return []Effect{
		EffectExtendTurnTimer{Extra: t.cfg.TimeBankDuration},
		EffectBroadcast{},
	}, nil
}

// resolveSeat maps the event to a seated player, by seat number or player
// ID.
func (t *Table) resolveSeat(ev Event) (int, error) {
	if ev.PlayerID != "" {
		for seat, p := range t.players {
			if p != nil && p.ID == ev.PlayerID {
				return seat, nil
			}
		}
		return -1, rejectf(ReasonOutOfTurn, "player %q is not seated", ev.PlayerID)
	}
	if ev.Seat < 0 || ev.Seat >= len(t.players) || t.players[ev.Seat] == nil {
		return -1, rejectf(ReasonOutOfTurn, "seat %d is not seated", ev.Seat)
	}
	return ev.Seat, nil
}

// enterStage performs the entry side effects of next and appends the
// stage's auto-advance timer. All state mutation driven by the lifecycle
// happens here; the returned effects carry the I/O out to the
// orchestrator.
func (t *Table) enterStage(next Stage) ([]Effect, error) {
	prev := t.stage
	t.stage = next
	t.stageSeq++
	t.log.Tracef("table %s: stage %s -> %s", t.cfg.ID, prev, next)

	var effects []Effect
	var err error
	switch next {
	case StageNotInProgress:
		effects = []Effect{EffectClearTimer{}}
	case StageInitializeNewHand:
		effects, err = t.enterInitializeNewHand()
	case StageShowStartOfHand:
		// Display stage for the deal animation.
	case StageShowStartOfBettingRound:
		effects, err = t.enterShowStartOfBettingRound()
	case StageSetCurrentPlayerToAct:
		effects, err = t.enterSetCurrentPlayerToAct()
	case StageWaitingForBetAction:
		effects, err = t.enterWaitingForBetAction()
	case StageShowBetAction:
		// Display stage; the action was applied before the transition.
	case StageShowPlaceBetsInPot:
		effects, err = t.enterShowPlaceBetsInPot()
	case StageShowWinner:
		effects, err = t.enterShowWinner()
	case StagePostHandCleanup:
		effects, err = t.enterPostHandCleanup()
	}
	if err != nil {
		return t.abortHand(err)
	}

	if delay, ok := stageDelays[next]; ok {
		effects = append(effects, EffectArmStageTimer{Seq: t.stageSeq, Delay: delay})
	}
	return append(effects, EffectBroadcast{}), nil
}

func (t *Table) enterInitializeNewHand() ([]Effect, error) {
	t.handNumber++
	t.handID = uuid.NewString()
	t.board = t.board[:0]
	t.allInRunOut = false
	t.handOver = false
	t.showdownPrepared = false
	t.straddleSeat = -1
	t.appliedIDs = make(map[string]struct{})
	t.deck = NewDeck(t.rng)

	for _, p := range t.players {
		if p != nil {
			p.resetForHand()
		}
	}

	t.handSeats = t.handSeats[:0]
	for seat, p := range t.players {
		if p != nil && p.DealtIn() {
			t.handSeats = append(t.handSeats, seat)
		}
	}
	if len(t.handSeats) < 2 {
		return nil, fmt.Errorf("%w: dealing with %d players", ErrInternalConsistency, len(t.handSeats))
	}

	t.buttonSeat = t.nextHandSeat(t.buttonSeat)

	t.stacksAtHandStart = make([]int64, len(t.players))
	for seat, p := range t.players {
		if p != nil {
			t.stacksAtHandStart[seat] = p.Stack
		}
	}
	t.ledger = NewPotLedger(t.players, t.log)

	t.street = StreetPreflop
	t.round = newRound(StreetPreflop, t.players, t.cfg, t.ledger.PotTotal)
	t.handLog = newHandLogBuilder(t.cfg.ID, t.handID, t.handNumber, t.clock)
	t.placeBlinds()

	t.log.Debugf("table %s: hand #%d started, button seat %d, %d players",
		t.cfg.ID, t.handNumber, t.buttonSeat, len(t.handSeats))
	return nil, nil
}

// placeBlinds posts the small blind, big blind, any owed missed-blind
// posts, and the straddle. Heads-up, the button posts the small blind.
// Posting goes smallest first so a later, larger forced bet takes priority
// in the raise bookkeeping.
func (t *Table) placeBlinds() {
	headsUp := len(t.handSeats) == 2
	if headsUp {
		t.sbSeat = t.buttonSeat
		t.bbSeat = t.nextHandSeat(t.buttonSeat)
	} else {
		t.sbSeat = t.nextHandSeat(t.buttonSeat)
		t.bbSeat = t.nextHandSeat(t.sbSeat)
	}

	// Players who sat out past the big blind owe one when they return.
	if t.prevBBSeat >= 0 {
		for _, seat := range t.seatsBetween(t.prevBBSeat, t.bbSeat) {
			if p := t.players[seat]; p != nil && p.SittingOut {
				p.MissedBigBlind = true
			}
		}
	}

	t.round.bet(t.players[t.sbSeat], t.cfg.SmallBlind, ActionBlind)
	for _, seat := range t.handSeats {
		p := t.players[seat]
		if p.MissedBigBlind && seat != t.bbSeat {
			t.round.bet(p, t.cfg.BigBlind, ActionBlind)
		}
		p.MissedBigBlind = false
	}
	t.round.bet(t.players[t.bbSeat], t.cfg.BigBlind, ActionBlind)
	t.lastAggressorSeat = t.bbSeat

	if t.cfg.AllowStraddle && !headsUp {
		straddleSeat := t.nextHandSeat(t.bbSeat)
		if p := t.players[straddleSeat]; p.WillStraddle {
			t.round.bet(p, 2*t.cfg.BigBlind, ActionStraddle)
			t.straddleSeat = straddleSeat
			t.lastAggressorSeat = straddleSeat
		}
	}
}

func (t *Table) enterShowStartOfBettingRound() ([]Effect, error) {
	switch t.street {
	case StreetPreflop:
		count := t.cfg.GameType.HoleCardCount()
		for _, seat := range t.handSeats {
			p := t.players[seat]
			for i := 0; i < count; i++ {
				card, ok := t.deck.Draw()
				if !ok {
					return nil, fmt.Errorf("%w: deck exhausted dealing hole cards", ErrInternalConsistency)
				}
				p.HoleCards = append(p.HoleCards, card)
			}
		}
		t.handLog.openStreet(StreetPreflop, nil)

	case StreetFlop:
		cards, err := t.dealBoard(3)
		if err != nil {
			return nil, err
		}
		t.handLog.openStreet(StreetFlop, cards)
		t.handLog.markSawFlop(t.seatsInHand())

	case StreetTurn, StreetRiver:
		cards, err := t.dealBoard(1)
		if err != nil {
			return nil, err
		}
		t.handLog.openStreet(t.street, cards)
	}

	if t.round == nil {
		t.round = newRound(t.street, t.players, t.cfg, t.ledger.PotTotal)
	}
	t.updateAllInRunOut()
	return nil, nil
}

func (t *Table) dealBoard(n int) ([]Card, error) {
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := t.deck.Draw()
		if !ok {
			return nil, fmt.Errorf("%w: deck exhausted dealing board", ErrInternalConsistency)
		}
		cards = append(cards, card)
		t.board = append(t.board, card)
	}
	return cards, nil
}

func (t *Table) enterSetCurrentPlayerToAct() ([]Effect, error) {
	if t.round.ToActSeat == -1 {
		t.round.ToActSeat = t.firstToActSeat()
	} else {
		t.round.Advance()
	}
	if t.round.ToActSeat == -1 {
		return nil, fmt.Errorf("%w: no seat to act in open round", ErrInternalConsistency)
	}
	return nil, nil
}

// firstToActSeat picks who opens the street. Preflop action starts after
// the big blind (or the straddle), except heads-up where the button is the
// small blind and acts first. Postflop action starts left of the button.
func (t *Table) firstToActSeat() int {
	if t.street == StreetPreflop {
		if len(t.handSeats) == 2 {
			if t.players[t.buttonSeat].CanAct() {
				return t.buttonSeat
			}
			return t.round.nextToAct(t.buttonSeat)
		}
		anchor := t.bbSeat
		if t.straddleSeat >= 0 {
			anchor = t.straddleSeat
		}
		return t.round.nextToAct(anchor)
	}
	return t.round.nextToAct(t.buttonSeat)
}

func (t *Table) enterWaitingForBetAction() ([]Effect, error) {
	t.turnSeq++
	t.timeBankUsed = false
	t.turnStartedAt = t.clock()

	seat := t.round.ToActSeat
	p := t.players[seat]
	timeout := t.cfg.TimeToAct
	if p.Disconnected || p.SittingOut {
		// Zero grace: the turn times out immediately and the default
		// action applies.
		timeout = 0
	}
	return []Effect{EffectArmTurnTimer{Seq: t.turnSeq, Seat: seat, Timeout: timeout}}, nil
}

func (t *Table) enterShowPlaceBetsInPot() ([]Effect, error) {
	if err := t.ledger.CollapseStreet(); err != nil {
		return nil, err
	}
	t.updateAllInRunOut()

	t.handOver = len(t.seatsInHand()) <= 1 || t.street == StreetRiver
	if !t.handOver {
		t.street++
		t.round = nil
	}
	return nil, nil
}

func (t *Table) enterShowWinner() ([]Effect, error) {
	if pots, err := t.ledger.Finalize(); err != nil {
		return nil, err
	} else if len(pots) == 0 {
		return nil, fmt.Errorf("%w: showdown with no pots", ErrInternalConsistency)
	}

	t.prepareShowdown()

	pot, _ := t.ledger.PopPot()
	return nil, t.awardPot(pot)
}

// prepareShowdown evaluates every live hand once and works out which hole
// cards get revealed: starting from the last aggressor and moving left,
// a hand is shown only if it is at least as good as the best seen so far.
func (t *Table) prepareShowdown() {
	if t.showdownPrepared {
		return
	}
	t.showdownPrepared = true
	inHand := t.seatsInHand()
	if len(inHand) <= 1 {
		return
	}

	for _, seat := range inHand {
		p := t.players[seat]
		hv := EvaluateHand(t.cfg.GameType, p.HoleCards, t.board)
		p.HandValue = &hv
		p.HandDescription = hv.Description
	}

	ordered := t.sortByPosition(inHand)
	start := 0
	for i, seat := range ordered {
		if seat == t.lastAggressorSeat {
			start = i
			break
		}
	}

	bestSoFar := t.players[ordered[start]].HandValue
	t.players[ordered[start]].CardsRevealed = true
	for i := start; i < start+len(ordered); i++ {
		seat := ordered[i%len(ordered)]
		p := t.players[seat]
		if CompareHands(*p.HandValue, *bestSoFar) >= 0 {
			p.CardsRevealed = true
			bestSoFar = p.HandValue
		}
	}
}

// awardPot resolves a single pot: uncontested pots are awarded mucked,
// contested ones split among the best hands with odd chips assigned by
// the table's policy.
func (t *Table) awardPot(pot *Pot) error {
	var alive []int
	for _, seat := range pot.EligibleSeats() {
		if p := t.players[seat]; p != nil && p.InHand() {
			alive = append(alive, seat)
		}
	}
	if len(alive) == 0 {
		return fmt.Errorf("%w: pot of %d with no eligible players", ErrInternalConsistency, pot.Amount)
	}

	summary := PotSummary{Amount: pot.Amount}

	if len(alive) == 1 {
		// Mucked win: single eligible player takes it without showing.
		seat := alive[0]
		t.players[seat].Stack += pot.Amount
		summary.Winners = []PotWinner{{Seat: seat, Amount: pot.Amount}}
		t.handLog.pushPotSummary(summary)
		t.log.Debugf("table %s: pot %d to seat %d uncontested", t.cfg.ID, pot.Amount, seat)
		return nil
	}

	var winners []int
	var best *HandValue
	for _, seat := range alive {
		hv := t.players[seat].HandValue
		if hv == nil {
			return fmt.Errorf("%w: seat %d at showdown without evaluated hand", ErrInternalConsistency, seat)
		}
		switch {
		case best == nil, CompareHands(*hv, *best) > 0:
			best = hv
			winners = []int{seat}
		case CompareHands(*hv, *best) == 0:
			winners = append(winners, seat)
		}
		summary.Hands = append(summary.Hands, ShownHandLog{Seat: seat, Description: hv.Description})
	}

	ordered := t.oddChips(winners, t.buttonSeat, len(t.players))
	shares := SplitAmount(pot.Amount, ordered)
	for _, seat := range ordered {
		t.players[seat].Stack += shares[seat]
		t.players[seat].CardsRevealed = true
		summary.Winners = append(summary.Winners, PotWinner{Seat: seat, Amount: shares[seat]})
	}
	t.handLog.pushPotSummary(summary)
	return nil
}

func (t *Table) enterPostHandCleanup() ([]Effect, error) {
	// Final conservation check over the hand's seats.
	var total int64
	for _, seat := range t.handSeats {
		if p := t.players[seat]; p != nil {
			total += p.Stack
		}
	}
	if total != t.ledger.StartingTotal() {
		return nil, fmt.Errorf("%w: hand resolved to %d chips, started with %d",
			ErrInternalConsistency, total, t.ledger.StartingTotal())
	}

	record := t.handLog.finish(t, false)

	t.applyPendingRebuys()
	for _, p := range t.players {
		if p != nil && p.Stack == 0 {
			p.SittingOut = true
		}
	}
	t.removeQuitters()
	t.prevBBSeat = t.bbSeat

	return []Effect{EffectHandComplete{Record: record}}, nil
}

// abortHand restores every dealt-in stack to its pre-hand snapshot and
// parks the table. Reached only on an internal consistency failure, where
// resolving the hand could corrupt chip counts. Seats outside the hand
// keep their stacks untouched.
func (t *Table) abortHand(cause error) ([]Effect, error) {
	t.log.Errorf("table %s: aborting hand #%d: %v", t.cfg.ID, t.handNumber, cause)

	if t.stacksAtHandStart != nil {
		for _, seat := range t.handSeats {
			if p := t.players[seat]; p != nil {
				p.Stack = t.stacksAtHandStart[seat]
			}
		}
	}
	for _, p := range t.players {
		if p != nil {
			p.resetForHand()
			p.SitOutNextHand = false
		}
	}
	t.applyPendingRebuys()
	var record *HandLogRecord
	if t.handLog != nil {
		record = t.handLog.finish(t, true)
	}
	t.round = nil
	t.ledger = nil
	t.shouldDeal = false
	t.stage = StageNotInProgress
	t.stageSeq++

	effects := []Effect{EffectClearTimer{}, EffectHandAborted{Err: cause}}
	if record != nil {
		effects = append(effects, EffectHandComplete{Record: record})
	}
	return append(effects, EffectBroadcast{}), nil
}

// Graph conditions. These only read state; entries did the mutation.

func (t *Table) canDealNextHand() bool {
	if !t.shouldDeal {
		return false
	}
	ready := 0
	for _, p := range t.players {
		if p != nil && p.DealtIn() && !p.SitOutNextHand {
			ready++
		}
	}
	return ready >= 2
}

func (t *Table) isAllInRunOut() bool { return t.allInRunOut }

func (t *Table) isBettingRoundOver() bool {
	return len(t.seatsInHand()) <= 1 || t.round.Over()
}

func (t *Table) isHandOver() bool { return t.handOver }

func (t *Table) sidePotsRemaining() bool { return len(t.ledger.Pots()) > 0 }

// updateAllInRunOut latches the run-out flag once everyone in the hand,
// or everyone but one, is all-in. From then on remaining streets deal out
// with no betting rounds and live hole cards flip face up.
func (t *Table) updateAllInRunOut() {
	if t.allInRunOut {
		return
	}
	inHand := t.seatsInHand()
	allIn := 0
	for _, seat := range inHand {
		if t.players[seat].AllIn {
			allIn++
		}
	}
	if allIn >= 1 && len(inHand) >= 2 && allIn >= len(inHand)-1 {
		t.allInRunOut = true
		for _, seat := range inHand {
			t.players[seat].CardsRevealed = true
		}
	}
}

// Seat geometry helpers.

// nextHandSeat returns the next dealt-in seat after from, circularly.
func (t *Table) nextHandSeat(from int) int {
	if len(t.handSeats) == 0 {
		return -1
	}
	n := len(t.players)
	for i := 1; i <= n; i++ {
		seat := ((from + i) % n + n) % n
		for _, hs := range t.handSeats {
			if hs == seat {
				return seat
			}
		}
	}
	return -1
}

// seatsBetween returns the seats strictly between a and b, circularly.
func (t *Table) seatsBetween(a, b int) []int {
	var seats []int
	n := len(t.players)
	for seat := (a + 1) % n; seat != b; seat = (seat + 1) % n {
		if seat == a {
			break
		}
		seats = append(seats, seat)
	}
	return seats
}

// seatsInHand returns the seats dealt in and not folded, ascending.
func (t *Table) seatsInHand() []int {
	var seats []int
	for _, seat := range t.handSeats {
		if t.players[seat].InHand() {
			seats = append(seats, seat)
		}
	}
	return seats
}

// sortByPosition orders seats by position from the button, small blind
// first.
func (t *Table) sortByPosition(seats []int) []int {
	return OddChipsByPosition(seats, t.buttonSeat, len(t.players))
}

// positionOf is the seat's position relative to the button, small blind
// first.
func (t *Table) positionOf(seat int) int {
	n := len(t.players)
	return ((seat-t.buttonSeat-1)%n + n) % n
}
