package poker

import (
	"time"
)

// PlayerSnapshot is one seat's public state in a state delta. HoleCards
// are populated for every dealt-in player; the gateway redacts them for
// viewers other than the owner unless Revealed.
type PlayerSnapshot struct {
	Seat                int        `json:"seat"`
	PlayerID            string     `json:"playerId"`
	Name                string     `json:"name"`
	Stack               int64      `json:"stack"`
	CommittedThisStreet int64      `json:"committedThisStreet"`
	CommittedThisHand   int64      `json:"committedThisHand"`
	Folded              bool       `json:"folded"`
	AllIn               bool       `json:"allIn"`
	SittingOut          bool       `json:"sittingOut"`
	Disconnected        bool       `json:"disconnected"`
	ToAct               bool       `json:"toAct"`
	LastAction          ActionType `json:"lastAction,omitempty"`
	TimeBanksLeft       int32      `json:"timeBanksLeft"`
	HoleCards           []Card     `json:"holeCards,omitempty"`
	Revealed            bool       `json:"revealed"`
	ShownCards          []Card     `json:"shownCards,omitempty"`
}

// RoundSnapshot is the open betting round's state, including the legal
// action set for the seat to act.
type RoundSnapshot struct {
	Street       string    `json:"street"`
	AmountToCall int64     `json:"amountToCall"`
	MinRaise     int64     `json:"minRaise"`
	MaxRaise     int64     `json:"maxRaise"`
	ToActSeat    int       `json:"toActSeat"`
	LegalActions ActionSet `json:"legalActions"`
}

// PotSnapshot is one pot with its eligible seats.
type PotSnapshot struct {
	Amount int64 `json:"amount"`
	Seats  []int `json:"seats"`
}

// TableSnapshot is the state delta broadcast after every accepted event.
type TableSnapshot struct {
	TableID    string    `json:"tableId"`
	Stage      string    `json:"stage"`
	HandID     string    `json:"handId,omitempty"`
	HandNumber uint64    `json:"handNumber"`
	GameType   GameType  `json:"gameType"`
	SmallBlind int64     `json:"smallBlind"`
	BigBlind   int64     `json:"bigBlind"`
	ButtonSeat int       `json:"buttonSeat"`
	Board      []Card    `json:"board"`
	Time       time.Time `json:"time"`

	Players []PlayerSnapshot `json:"players"`
	Round   *RoundSnapshot   `json:"round,omitempty"`
	Pots    []PotSnapshot    `json:"pots"`
	TotalPot int64           `json:"totalPot"`

	// Results accumulates resolved pots once showdown begins.
	Results []PotSummary `json:"results,omitempty"`
}

// Snapshot captures the table state for broadcast. It allocates fresh
// slices so the caller may serialize it after the table has moved on.
func (t *Table) Snapshot() *TableSnapshot {
	snap := &TableSnapshot{
		TableID:    t.cfg.ID,
		Stage:      t.stage.String(),
		HandID:     t.handID,
		HandNumber: t.handNumber,
		GameType:   t.cfg.GameType,
		SmallBlind: t.cfg.SmallBlind,
		BigBlind:   t.cfg.BigBlind,
		ButtonSeat: t.buttonSeat,
		Board:      append([]Card{}, t.board...),
		Time:       t.clock(),
	}

	toAct := -1
	if t.round != nil {
		toAct = t.round.ToActSeat
	}
	for seat, p := range t.players {
		if p == nil {
			continue
		}
		ps := PlayerSnapshot{
			Seat:                seat,
			PlayerID:            p.ID,
			Name:                p.Name,
			Stack:               p.Stack,
			CommittedThisStreet: p.CommittedThisStreet,
			CommittedThisHand:   p.CommittedThisHand,
			Folded:              p.Folded,
			AllIn:               p.AllIn,
			SittingOut:          p.SittingOut,
			Disconnected:        p.Disconnected,
			ToAct:               seat == toAct && t.stage == StageWaitingForBetAction,
			LastAction:          p.LastActionType,
			TimeBanksLeft:       p.TimeBanksLeft,
			Revealed:            p.CardsRevealed,
		}
		if len(p.HoleCards) > 0 {
			ps.HoleCards = append([]Card{}, p.HoleCards...)
			ps.ShownCards = append([]Card{}, p.ShownCards...)
		}
		snap.Players = append(snap.Players, ps)
	}

	if t.round != nil && toAct >= 0 {
		legal := t.round.LegalActions(t.players[toAct])
		snap.Round = &RoundSnapshot{
			Street:       t.round.Street.String(),
			AmountToCall: t.round.AmountToCall,
			MinRaise:     legal.MinBet,
			MaxRaise:     legal.MaxBet,
			ToActSeat:    toAct,
			LegalActions: legal,
		}
	}

	if t.ledger != nil {
		for _, pot := range t.ledger.Pots() {
			snap.Pots = append(snap.Pots, PotSnapshot{Amount: pot.Amount, Seats: pot.EligibleSeats()})
		}
		snap.TotalPot = t.ledger.PotTotal() + t.ledger.StreetTotal()
	}
	if t.handLog != nil && len(t.handLog.record.Pots) > 0 {
		snap.Results = append([]PotSummary{}, t.handLog.record.Pots...)
	}
	return snap
}

// RedactFor strips hole cards the viewer may not see: everything except
// their own hand, revealed hands, and individually shown cards.
func (s *TableSnapshot) RedactFor(playerID string) *TableSnapshot {
	out := *s
	out.Players = make([]PlayerSnapshot, len(s.Players))
	for i, ps := range s.Players {
		if ps.PlayerID != playerID && !ps.Revealed {
			ps.HoleCards = append([]Card{}, ps.ShownCards...)
		}
		out.Players[i] = ps
	}
	return &out
}
