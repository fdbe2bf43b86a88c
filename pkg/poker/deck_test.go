package poker

import (
	"encoding/json"
	"math/rand"
	"testing"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck(testRNG())

	if deck.Size() != 52 {
		t.Errorf("Expected deck size 52, got %d", deck.Size())
	}

	// Check that all cards are unique
	seen := make(map[Card]bool)
	for _, card := range deck.cards {
		if seen[card] {
			t.Errorf("Duplicate card found: %v", card)
		}
		seen[card] = true
	}

	// Check suit and value distribution
	suitCount := make(map[Suit]int)
	valueCount := make(map[Value]int)
	for _, card := range deck.cards {
		suitCount[card.suit]++
		valueCount[card.value]++
	}
	for suit, count := range suitCount {
		if count != 13 {
			t.Errorf("Expected 13 cards of suit %v, got %d", suit, count)
		}
	}
	for value, count := range valueCount {
		if count != 4 {
			t.Errorf("Expected 4 cards of value %v, got %d", value, count)
		}
	}
}

func TestDeckShuffle(t *testing.T) {
	// Two decks with the same seed should have the same order
	deck1 := NewDeck(rand.New(rand.NewSource(42)))
	deck2 := NewDeck(rand.New(rand.NewSource(42)))
	for i := 0; i < 52; i++ {
		if deck1.cards[i] != deck2.cards[i] {
			t.Errorf("Decks with same seed should have same order at position %d", i)
		}
	}

	// A deck with a different seed should have a different order
	deck3 := NewDeck(rand.New(rand.NewSource(43)))
	sameOrder := true
	for i := 0; i < 52; i++ {
		if deck1.cards[i] != deck3.cards[i] {
			sameOrder = false
			break
		}
	}
	if sameOrder {
		t.Error("Decks with different seeds should have different orders")
	}
}

func TestDeckDraw(t *testing.T) {
	deck := NewDeck(testRNG())

	for i := 0; i < 52; i++ {
		card, ok := deck.Draw()
		if !ok {
			t.Errorf("Expected to draw card %d, but deck was empty", i)
		}
		if deck.Size() != 51-i {
			t.Errorf("Expected deck size %d after drawing, got %d", 51-i, deck.Size())
		}
		if card.suit == "" || card.value == "" {
			t.Errorf("Drawn card %d is invalid: %v", i, card)
		}
	}

	card, ok := deck.Draw()
	if ok {
		t.Error("Expected to fail drawing from empty deck")
	}
	if card != (Card{}) {
		t.Error("Expected zero value card when drawing from empty deck")
	}
}

func TestDeckFromCardsDrawOrder(t *testing.T) {
	cards := []Card{
		NewCard(Spades, Ace),
		NewCard(Hearts, King),
		NewCard(Diamonds, Ten),
	}
	deck := NewDeckFromCards(cards)

	for i, want := range cards {
		got, ok := deck.Draw()
		if !ok {
			t.Fatalf("Expected to draw card %d", i)
		}
		if got != want {
			t.Errorf("Draw %d: expected %v, got %v", i, want, got)
		}
	}
	if _, ok := deck.Draw(); ok {
		t.Error("Expected scripted deck to be exhausted")
	}
}

func TestParseCard(t *testing.T) {
	tests := []struct {
		in      string
		suit    string
		value   string
		wantErr bool
	}{
		{"As", "♠", "A", false},
		{"Kh", "♥", "K", false},
		{"10d", "♦", "10", false},
		{"Td", "♦", "10", false},
		{"2c", "♣", "2", false},
		// Symbol suits, as String and the JSON codec emit them.
		{"A♠", "♠", "A", false},
		{"10♥", "♥", "10", false},
		{"Q♣", "♣", "Q", false},
		{"", "", "", true},
		{"Ax", "", "", true},
		{"1s", "", "", true},
		{"♠", "", "", true},
	}
	for _, tc := range tests {
		card, err := ParseCard(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseCard(%q): expected error, got %v", tc.in, card)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCard(%q): %v", tc.in, err)
			continue
		}
		if card.GetSuit() != tc.suit || card.GetValue() != tc.value {
			t.Errorf("ParseCard(%q) = %s%s, want %s%s", tc.in, card.GetValue(), card.GetSuit(), tc.value, tc.suit)
		}
	}
}

func TestCardJSONRoundTrip(t *testing.T) {
	card := NewCard(Diamonds, Ten)

	raw, err := json.Marshal(card)
	if err != nil {
		t.Fatalf("Failed to marshal card: %v", err)
	}

	var got Card
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Failed to unmarshal card: %v", err)
	}
	if got != card {
		t.Errorf("Round trip mismatch: expected %v, got %v", card, got)
	}
}
