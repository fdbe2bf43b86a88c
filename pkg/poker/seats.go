package poker

import (
	"fmt"
)

// AddPlayer seats a player at the given seat with their buyin as the
// starting stack. A player seated mid-hand waits for the next deal.
func (t *Table) AddPlayer(p *Player, seat int) error {
	if seat < 0 || seat >= len(t.players) {
		return fmt.Errorf("seat %d is not a valid seat", seat)
	}
	if t.players[seat] != nil {
		return fmt.Errorf("seat %d is taken", seat)
	}
	for _, other := range t.players {
		if other != nil && other.ID == p.ID {
			return fmt.Errorf("player %q is already seated", p.ID)
		}
	}
	if p.Stack < t.cfg.MinBuyin || p.Stack > t.cfg.MaxBuyin {
		return fmt.Errorf("buyin %d outside [%d, %d]", p.Stack, t.cfg.MinBuyin, t.cfg.MaxBuyin)
	}
	p.Seat = seat
	p.TimeBanksLeft = t.cfg.NumberTimeBanks
	t.players[seat] = p
	t.log.Debugf("table %s: %s seated at %d with %d chips", t.cfg.ID, p.Name, seat, p.Stack)
	return nil
}

func (t *Table) handleJoin(ev Event) ([]Effect, error) {
	p := NewPlayer(ev.PlayerID, ev.Name, ev.Amount)
	if err := t.AddPlayer(p, ev.Seat); err != nil {
		return nil, rejectf(ReasonOutOfBounds, "%v", err)
	}
	return []Effect{EffectBroadcast{}}, nil
}

// Players returns the seat-indexed players; nil entries are empty seats.
func (t *Table) Players() []*Player { return t.players }

func (t *Table) handleSitOut(ev Event) ([]Effect, error) {
	seat, err := t.resolveSeat(ev)
	if err != nil {
		return nil, err
	}
	t.players[seat].SittingOut = true
	return t.defaultNowIfToAct(seat), nil
}

func (t *Table) handleSitIn(ev Event) ([]Effect, error) {
	seat, err := t.resolveSeat(ev)
	if err != nil {
		return nil, err
	}
	p := t.players[seat]
	p.SittingOut = false
	p.SitOutNextHand = false
	return []Effect{EffectBroadcast{}}, nil
}

func (t *Table) handleStandUp(ev Event) ([]Effect, error) {
	seat, err := t.resolveSeat(ev)
	if err != nil {
		return nil, err
	}
	p := t.players[seat]
	if t.stage == StageNotInProgress || !t.inCurrentHand(seat) {
		t.players[seat] = nil
		return []Effect{EffectBroadcast{}}, nil
	}
	// The seat is part of the open hand. Folding it out now and clearing
	// the seat at cleanup keeps its chips visible to the pot ledger until
	// the hand resolves.
	p.QuitAfterHand = true
	p.SittingOut = true
	return t.defaultNowIfToAct(seat), nil
}

// defaultNowIfToAct collapses the current turn to zero grace when the
// affected seat is the one to act, forcing the default action through the
// normal timeout path.
func (t *Table) defaultNowIfToAct(seat int) []Effect {
	effects := []Effect{EffectBroadcast{}}
	if t.stage == StageWaitingForBetAction && t.round.ToActSeat == seat {
		effects = append(effects, EffectArmTurnTimer{Seq: t.turnSeq, Seat: seat, Timeout: 0})
	}
	return effects
}

func (t *Table) handleBuyChips(ev Event) ([]Effect, error) {
	seat, err := t.resolveSeat(ev)
	if err != nil {
		return nil, err
	}
	p := t.players[seat]
	if ev.Amount <= 0 || p.Stack+p.PendingRebuy+ev.Amount > t.cfg.MaxBuyin {
		return nil, rejectf(ReasonOutOfBounds, "buying %d would exceed max buyin %d", ev.Amount, t.cfg.MaxBuyin)
	}
	if t.stage != StageNotInProgress && t.inCurrentHand(seat) {
		// Stacks dealt into the open hand are frozen; the chips land
		// once the hand resolves.
		p.PendingRebuy += ev.Amount
		t.log.Debugf("table %s: seat %d queued a rebuy of %d for after the hand", t.cfg.ID, seat, ev.Amount)
		return []Effect{EffectBroadcast{}}, nil
	}
	p.Stack += ev.Amount
	t.log.Debugf("table %s: seat %d bought %d chips, stack now %d", t.cfg.ID, seat, ev.Amount, p.Stack)
	return []Effect{EffectBroadcast{}}, nil
}

func (t *Table) handleShowCard(ev Event) ([]Effect, error) {
	seat, err := t.resolveSeat(ev)
	if err != nil {
		return nil, err
	}
	p := t.players[seat]
	if len(p.HoleCards) == 0 {
		return nil, rejectf(ReasonWrongType, "no cards to show")
	}
	showable := t.allInRunOut ||
		t.stage == StageShowWinner || t.stage == StagePostHandCleanup || t.stage == StageNotInProgress
	if !showable {
		return nil, fmt.Errorf("%w: cannot show cards during %s", ErrIllegalTransition, t.stage)
	}

	cards := ev.Cards
	if len(cards) == 0 {
		cards = p.HoleCards
	}
	for _, c := range cards {
		if !p.HoldsCard(c) {
			return nil, rejectf(ReasonOutOfBounds, "player does not hold %s", c)
		}
	}
	for _, c := range cards {
		p.showCard(c)
	}
	return []Effect{EffectBroadcast{}}, nil
}

func (t *Table) handleToggleStraddle(ev Event) ([]Effect, error) {
	seat, err := t.resolveSeat(ev)
	if err != nil {
		return nil, err
	}
	if !t.cfg.AllowStraddle {
		return nil, rejectf(ReasonWrongType, "straddling is not allowed at this table")
	}
	p := t.players[seat]
	p.WillStraddle = !p.WillStraddle
	return []Effect{EffectBroadcast{}}, nil
}

func (t *Table) handleConnection(ev Event, disconnected bool) ([]Effect, error) {
	seat, err := t.resolveSeat(ev)
	if err != nil {
		return nil, err
	}
	t.players[seat].Disconnected = disconnected
	if disconnected {
		return t.defaultNowIfToAct(seat), nil
	}
	return []Effect{EffectBroadcast{}}, nil
}

// inCurrentHand reports whether the seat was dealt into the hand in
// progress. Only meaningful while a hand runs.
func (t *Table) inCurrentHand(seat int) bool {
	for _, s := range t.handSeats {
		if s == seat {
			return true
		}
	}
	return false
}

// applyPendingRebuys credits chips bought while a hand was running. Runs
// after the hand's conservation check so queued rebuys never look like
// chips appearing mid-hand.
func (t *Table) applyPendingRebuys() {
	for seat, p := range t.players {
		if p != nil && p.PendingRebuy > 0 {
			p.Stack += p.PendingRebuy
			t.log.Debugf("table %s: seat %d credited queued rebuy of %d, stack now %d",
				t.cfg.ID, seat, p.PendingRebuy, p.Stack)
			p.PendingRebuy = 0
		}
	}
}

// removeQuitters clears seats whose players left mid-hand, after the hand
// resolved.
func (t *Table) removeQuitters() {
	for seat, p := range t.players {
		if p != nil && p.QuitAfterHand {
			t.players[seat] = nil
		}
	}
}

// ReplenishTimeBanks tops every seated player back up by one time bank,
// capped at the configured count. Driven by the orchestrator on the
// replenish interval.
func (t *Table) ReplenishTimeBanks() {
	for _, p := range t.players {
		if p != nil && p.TimeBanksLeft < t.cfg.NumberTimeBanks {
			p.TimeBanksLeft++
		}
	}
}
