package poker

import (
	"sort"
	"time"
)

// HandLogRecord is the archival record of one completed hand, emitted once
// when the hand resolves and persisted by the orchestrator.
type HandLogRecord struct {
	TableID    string    `json:"tableId"`
	HandID     string    `json:"handId"`
	HandNumber uint64    `json:"handNumber"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
	Aborted    bool      `json:"aborted,omitempty"`

	Board   []Card          `json:"board"`
	Players []PlayerSummary `json:"players"`
	Streets []StreetLog     `json:"streets"`
	Pots    []PotSummary    `json:"pots"`
}

// PlayerSummary is one dealt-in player's result, sorted by position.
type PlayerSummary struct {
	SeatNumber    int    `json:"seatNumber"`
	PlayerID      string `json:"playerId"`
	Name          string `json:"name"`
	Position      int    `json:"position"`
	StartingChips int64  `json:"startingChips"`
	ChipDelta     int64  `json:"chipDelta"`
	HoleCards     []Card `json:"holeCards,omitempty"`
	ShowedCards   bool   `json:"showedCards"`
	WonPot        bool   `json:"wonPot"`
	SawFlop       bool   `json:"sawFlop"`
}

// StreetLog is the ordered action log of one betting round.
type StreetLog struct {
	Street     string          `json:"street"`
	CardsDealt []Card          `json:"cardsDealt,omitempty"`
	Actions    []HandActionLog `json:"actions"`
}

// HandActionLog is one accepted action with the time the player took.
type HandActionLog struct {
	Seat     int           `json:"seat"`
	Type     ActionType    `json:"type"`
	Amount   int64         `json:"amount,omitempty"`
	TimedOut bool          `json:"timedOut,omitempty"`
	Elapsed  time.Duration `json:"elapsedMs"`
}

// PotSummary records one pot's resolution at showdown.
type PotSummary struct {
	Amount  int64          `json:"amount"`
	Winners []PotWinner    `json:"winners"`
	Hands   []ShownHandLog `json:"hands,omitempty"`
}

// PotWinner is one winning seat's share of a pot.
type PotWinner struct {
	Seat   int   `json:"seat"`
	Amount int64 `json:"amount"`
}

// ShownHandLog is a hand revealed during a pot's showdown.
type ShownHandLog struct {
	Seat        int    `json:"seat"`
	Description string `json:"description"`
}

// handLogBuilder accumulates a HandLogRecord as the hand plays out.
type handLogBuilder struct {
	record   HandLogRecord
	current  *StreetLog
	sawFlop  map[int]bool
	clock    func() time.Time
}

func newHandLogBuilder(tableID, handID string, handNumber uint64, clock func() time.Time) *handLogBuilder {
	return &handLogBuilder{
		record: HandLogRecord{
			TableID:    tableID,
			HandID:     handID,
			HandNumber: handNumber,
			StartedAt:  clock(),
		},
		sawFlop: make(map[int]bool),
		clock:   clock,
	}
}

// markSawFlop records the seats still in the hand when the flop came.
func (b *handLogBuilder) markSawFlop(seats []int) {
	for _, s := range seats {
		b.sawFlop[s] = true
	}
}

// openStreet starts the log of a new betting round.
func (b *handLogBuilder) openStreet(street Street, cardsDealt []Card) {
	b.record.Streets = append(b.record.Streets, StreetLog{
		Street:     street.String(),
		CardsDealt: append([]Card{}, cardsDealt...),
	})
	b.current = &b.record.Streets[len(b.record.Streets)-1]
}

// pushAction logs one accepted betting action.
func (b *handLogBuilder) pushAction(seat int, typ ActionType, amount int64, elapsed time.Duration, timedOut bool) {
	if b.current == nil {
		b.openStreet(StreetPreflop, nil)
	}
	b.current.Actions = append(b.current.Actions, HandActionLog{
		Seat: seat, Type: typ, Amount: amount, Elapsed: elapsed, TimedOut: timedOut,
	})
}

// pushPotSummary logs one resolved pot.
func (b *handLogBuilder) pushPotSummary(s PotSummary) {
	b.record.Pots = append(b.record.Pots, s)
}

// finish seals the record with final board, per-player deltas and results.
func (b *handLogBuilder) finish(t *Table, aborted bool) *HandLogRecord {
	b.record.EndedAt = b.clock()
	b.record.Aborted = aborted
	b.record.Board = append([]Card{}, t.board...)

	for seat, p := range t.players {
		if p == nil || len(p.HoleCards) == 0 {
			continue
		}
		ps := PlayerSummary{
			SeatNumber:    seat,
			PlayerID:      p.ID,
			Name:          p.Name,
			Position:      t.positionOf(seat),
			StartingChips: t.stacksAtHandStart[seat],
			ChipDelta:     p.Stack - t.stacksAtHandStart[seat],
			ShowedCards:   p.CardsRevealed,
			SawFlop:       b.sawFlop[seat],
			WonPot:        p.Stack > t.stacksAtHandStart[seat],
		}
		if p.CardsRevealed {
			ps.HoleCards = append([]Card{}, p.HoleCards...)
		}
		b.record.Players = append(b.record.Players, ps)
	}
	sort.Slice(b.record.Players, func(i, j int) bool {
		return b.record.Players[i].Position < b.record.Players[j].Position
	})
	return &b.record
}
