package poker

import (
	"sort"

	chp "github.com/chehsunliu/poker"
)

// HandRank represents the rank class of a poker hand
type HandRank int

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (r HandRank) String() string {
	switch r {
	case StraightFlush:
		return "Straight Flush"
	case FourOfAKind:
		return "Four of a Kind"
	case FullHouse:
		return "Full House"
	case Flush:
		return "Flush"
	case Straight:
		return "Straight"
	case ThreeOfAKind:
		return "Three of a Kind"
	case TwoPair:
		return "Two Pair"
	case Pair:
		return "Pair"
	}
	return "High Card"
}

// HandValue is the complete evaluation of a hand. RankValue is the
// chehsunliu rank where lower is better; CompareHands hides that inversion.
type HandValue struct {
	Rank        HandRank
	RankValue   int32
	BestHand    []Card
	Description string
}

var valueRanks = map[Value]int{
	Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7, Eight: 8,
	Nine: 9, Ten: 10, Jack: 11, Queen: 12, King: 13, Ace: 14,
}

// toLibCard converts a Card to the chehsunliu/poker representation.
func toLibCard(card Card) chp.Card {
	var rank byte
	switch card.value {
	case Ten:
		rank = 'T'
	default:
		rank = card.value[0]
	}

	var suit byte
	switch card.suit {
	case Spades:
		suit = 's'
	case Hearts:
		suit = 'h'
	case Diamonds:
		suit = 'd'
	case Clubs:
		suit = 'c'
	}
	return chp.NewCard(string([]byte{rank, suit}))
}

func toLibCards(cards []Card) []chp.Card {
	out := make([]chp.Card, len(cards))
	for i, c := range cards {
		out[i] = toLibCard(c)
	}
	return out
}

func rankClassToHandRank(class int32) HandRank {
	switch class {
	case 1:
		return StraightFlush
	case 2:
		return FourOfAKind
	case 3:
		return FullHouse
	case 4:
		return Flush
	case 5:
		return Straight
	case 6:
		return ThreeOfAKind
	case 7:
		return TwoPair
	case 8:
		return Pair
	default:
		return HighCard
	}
}

func handValueFor(best []Card) HandValue {
	rank := chp.Evaluate(toLibCards(best))
	return HandValue{
		Rank:        rankClassToHandRank(chp.RankClass(rank)),
		RankValue:   rank,
		BestHand:    best,
		Description: chp.RankString(rank),
	}
}

// EvaluateHand evaluates the best five-card hand a player can make under
// the game type's rules: any five of the seven cards in hold'em, exactly
// two hole cards plus three board cards in Omaha.
func EvaluateHand(gameType GameType, holeCards, board []Card) HandValue {
	if gameType == GameTypePLO {
		return evaluateOmaha(holeCards, board)
	}

	all := append(append([]Card{}, holeCards...), board...)
	if len(all) <= 5 {
		return handValueFor(all)
	}

	best := chp.Evaluate(toLibCards(all))
	for _, combo := range combinations(all, 5) {
		if chp.Evaluate(toLibCards(combo)) == best {
			return handValueFor(combo)
		}
	}
	// Unreachable: some 5-card subset always produces the overall rank.
	return handValueFor(all[:5])
}

// evaluateOmaha tries every 2-hole/3-board combination and keeps the best.
func evaluateOmaha(holeCards, board []Card) HandValue {
	var best *HandValue
	for _, hole := range combinations(holeCards, 2) {
		for _, brd := range combinations(board, 3) {
			hand := append(append([]Card{}, hole...), brd...)
			hv := handValueFor(hand)
			if best == nil || CompareHands(hv, *best) > 0 {
				best = &hv
			}
		}
	}
	if best == nil {
		return HandValue{}
	}
	return *best
}

// combinations generates all k-card subsets of cards.
func combinations(cards []Card, k int) [][]Card {
	var out [][]Card
	if k <= 0 || k > len(cards) {
		return out
	}
	var walk func(start int, cur []Card)
	walk = func(start int, cur []Card) {
		if len(cur) == k {
			combo := make([]Card, k)
			copy(combo, cur)
			out = append(out, combo)
			return
		}
		for i := start; i <= len(cards)-(k-len(cur)); i++ {
			walk(i+1, append(cur, cards[i]))
		}
	}
	walk(0, nil)
	return out
}

// CompareHands returns 1 if a beats b, -1 if b beats a, and 0 on a tie.
// Lower chehsunliu rank values are better, so the comparison is inverted.
func CompareHands(a, b HandValue) int {
	switch {
	case a.RankValue < b.RankValue:
		return 1
	case a.RankValue > b.RankValue:
		return -1
	default:
		return 0
	}
}

// SortCardsByValue sorts cards highest value first, for display.
func SortCardsByValue(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return valueRanks[cards[i].value] > valueRanks[cards[j].value]
	})
}
