package poker

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"unicode/utf8"
)

// Suit represents a card suit
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Value represents a card value
type Value string

const (
	Ace   Value = "A"
	Two   Value = "2"
	Three Value = "3"
	Four  Value = "4"
	Five  Value = "5"
	Six   Value = "6"
	Seven Value = "7"
	Eight Value = "8"
	Nine  Value = "9"
	Ten   Value = "10"
	Jack  Value = "J"
	Queen Value = "Q"
	King  Value = "K"
)

var allSuits = []Suit{Spades, Hearts, Diamonds, Clubs}
var allValues = []Value{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// Card represents a playing card. Fields are unexported so a Card can only
// be produced by the deck or by NewCard, never forged from a wire payload
// without validation.
type Card struct {
	suit  Suit
	value Value
}

// NewCard creates a card from an explicit suit and value.
func NewCard(suit Suit, value Value) Card {
	return Card{suit: suit, value: value}
}

// ParseCard parses shorthand like "As", "Td" or "10h" into a Card. Suits
// may also be the symbols String and MarshalJSON emit, so a card echoed
// back from a snapshot parses cleanly.
func ParseCard(s string) (Card, error) {
	r, size := utf8.DecodeLastRuneInString(s)
	if r == utf8.RuneError || len(s) == size {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	valPart, suitPart := s[:len(s)-size], s[len(s)-size:]

	var value Value
	switch valPart {
	case "A", "a":
		value = Ace
	case "K", "k":
		value = King
	case "Q", "q":
		value = Queen
	case "J", "j":
		value = Jack
	case "10", "T", "t":
		value = Ten
	case "9", "8", "7", "6", "5", "4", "3", "2":
		value = Value(valPart)
	default:
		return Card{}, fmt.Errorf("invalid card value %q", valPart)
	}

	var suit Suit
	switch suitPart {
	case "s", "S", "♠":
		suit = Spades
	case "h", "H", "♥":
		suit = Hearts
	case "d", "D", "♦":
		suit = Diamonds
	case "c", "C", "♣":
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid card suit %q", suitPart)
	}

	return Card{suit: suit, value: value}, nil
}

// String returns a string representation of the card
func (c Card) String() string {
	return string(c.value) + string(c.suit)
}

// GetSuit returns the card's suit
func (c Card) GetSuit() string {
	return string(c.suit)
}

// GetValue returns the card's value
func (c Card) GetValue() string {
	return string(c.value)
}

// cardJSON is the wire shape of a Card.
type cardJSON struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

// MarshalJSON implements json.Marshaler for Card
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Suit: string(c.suit), Value: string(c.value)})
}

// UnmarshalJSON implements json.Unmarshaler for Card
func (c *Card) UnmarshalJSON(data []byte) error {
	var cj cardJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	parsed, err := ParseCard(cj.Value + cj.Suit)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Deck represents a deck of cards
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a shuffled 52-card deck using the given random number
// generator. The rng is injected so tests can deal deterministic hands.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for _, suit := range allSuits {
		for _, value := range allValues {
			d.cards = append(d.cards, Card{suit: suit, value: value})
		}
	}
	d.Shuffle()
	return d
}

// NewDeckFromCards creates a deck with a fixed card order. Used by tests to
// script exact runouts; Draw pops from the front.
func NewDeckFromCards(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	if d.rng == nil {
		return
	}
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// Size returns the number of cards remaining in the deck
func (d *Deck) Size() int {
	return len(d.cards)
}
