// Package hand evaluates the best five-card poker hand from two to seven
// cards. The result carries the combination rank and the ordered cards that
// justify it, so callers can both compare hands and display them.
package hand

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cardroom/cardroom/internal/deck"
)

// Combination ranks poker hands from weakest to strongest
type Combination int

const (
	HighCard Combination = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the string representation of a combination
func (c Combination) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// Hand is an evaluated poker hand. Cards holds the constituent cards in
// order of significance: the combination cards first, then any kickers.
type Hand struct {
	Combination Combination
	Cards       []deck.Card
}

// String returns the display representation of a hand
func (h Hand) String() string {
	codes := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		codes[i] = c.String()
	}
	return fmt.Sprintf("%s (%s)", h.Combination, strings.Join(codes, " "))
}

// ErrInvalidCardCount is returned when evaluation is attempted on fewer
// than two or more than seven cards.
var ErrInvalidCardCount = errors.New("hand evaluation requires between 2 and 7 cards")

// Best returns the strongest hand that can be formed from the given cards.
// The input may contain between 2 (hole cards only) and 7 (hole cards plus
// full board) cards and is not modified. Evaluation is deterministic: the
// same multiset of cards always yields the same result regardless of input
// order.
func Best(cards []deck.Card) (Hand, error) {
	if len(cards) < 2 || len(cards) > 7 {
		return Hand{}, ErrInvalidCardCount
	}

	sorted := make([]deck.Card, len(cards))
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank > sorted[j].Rank
		}
		return sorted[i].Suit < sorted[j].Suit
	})

	byRank := make(map[deck.Rank][]deck.Card)
	for _, c := range sorted {
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}

	straight := findStraight(byRank)
	flush := findFlush(sorted)

	if straight != nil && sameSuit(straight) {
		if straight[0].Rank == deck.Ace {
			return Hand{Combination: RoyalFlush, Cards: straight}, nil
		}
		return Hand{Combination: StraightFlush, Cards: straight}, nil
	}

	var quads, trips, pairs [][]deck.Card
	for _, c := range sorted {
		group := byRank[c.Rank]
		if group[0] != c {
			continue // only classify each rank group once
		}
		switch len(group) {
		case 4:
			quads = append(quads, group)
		case 3:
			trips = append(trips, group)
		case 2:
			pairs = append(pairs, group)
		}
	}

	switch {
	case len(quads) > 0:
		return Hand{Combination: FourOfAKind, Cards: withKickers(sorted, quads[0], 1)}, nil

	case len(trips) >= 2:
		return Hand{Combination: FullHouse, Cards: append(append([]deck.Card{}, trips[0]...), trips[1][:2]...)}, nil

	case len(trips) == 1 && len(pairs) >= 1:
		return Hand{Combination: FullHouse, Cards: append(append([]deck.Card{}, trips[0]...), pairs[0]...)}, nil

	case flush != nil:
		return Hand{Combination: Flush, Cards: flush}, nil

	case straight != nil:
		return Hand{Combination: Straight, Cards: straight}, nil

	case len(trips) == 1:
		return Hand{Combination: ThreeOfAKind, Cards: withKickers(sorted, trips[0], 2)}, nil

	case len(pairs) >= 2:
		both := append(append([]deck.Card{}, pairs[0]...), pairs[1]...)
		return Hand{Combination: TwoPair, Cards: withKickers(sorted, both, 1)}, nil

	case len(pairs) == 1:
		return Hand{Combination: Pair, Cards: withKickers(sorted, pairs[0], 3)}, nil
	}

	n := 5
	if len(sorted) < n {
		n = len(sorted)
	}
	return Hand{Combination: HighCard, Cards: sorted[:n]}, nil
}

// Compare orders two hands: positive if a beats b, negative if b beats a,
// zero on an exact tie. Hands are compared by combination first, then by
// the ranks of their constituent cards in order of significance.
func Compare(a, b Hand) int {
	if a.Combination != b.Combination {
		return int(a.Combination) - int(b.Combination)
	}

	n := len(a.Cards)
	if len(b.Cards) < n {
		n = len(b.Cards)
	}
	for i := 0; i < n; i++ {
		if a.Cards[i].Rank != b.Cards[i].Rank {
			return int(a.Cards[i].Rank) - int(b.Cards[i].Rank)
		}
	}
	return len(a.Cards) - len(b.Cards)
}

// findStraight scans the rank sequence from Ace down to Two, with the Ace
// considered once more at the low end so the wheel (5 4 3 2 A) is found.
// When several cards share a needed rank the one matching the suit of the
// run's anchor card is preferred, which lets a straight flush surface even
// when duplicate ranks exist in off suits.
func findStraight(byRank map[deck.Rank][]deck.Card) []deck.Card {
	order := []deck.Rank{
		deck.Ace, deck.King, deck.Queen, deck.Jack, deck.Ten,
		deck.Nine, deck.Eight, deck.Seven, deck.Six, deck.Five,
		deck.Four, deck.Three, deck.Two, deck.Ace,
	}

	var run []deck.Card
	for _, r := range order {
		candidates := byRank[r]
		if len(candidates) == 0 {
			run = run[:0]
			continue
		}

		pick := candidates[0]
		if len(run) > 0 {
			for _, c := range candidates {
				if c.Suit == run[0].Suit {
					pick = c
					break
				}
			}
		}

		run = append(run, pick)
		if len(run) == 5 {
			return run
		}
	}
	return nil
}

// findFlush returns the best five cards of a suit held five or more times,
// or nil. The input must be sorted by rank descending.
func findFlush(sorted []deck.Card) []deck.Card {
	counts := make(map[deck.Suit]int)
	for _, c := range sorted {
		counts[c.Suit]++
	}

	for suit, n := range counts {
		if n < 5 {
			continue
		}
		flush := make([]deck.Card, 0, 5)
		for _, c := range sorted {
			if c.Suit == suit {
				flush = append(flush, c)
				if len(flush) == 5 {
					return flush
				}
			}
		}
	}
	return nil
}

func sameSuit(cards []deck.Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

// withKickers appends up to n of the highest remaining cards to the
// combination cards
func withKickers(sorted, combination []deck.Card, n int) []deck.Card {
	result := append([]deck.Card{}, combination...)
	for _, c := range sorted {
		if n == 0 {
			break
		}
		if containsCard(combination, c) {
			continue
		}
		result = append(result, c)
		n--
	}
	return result
}

func containsCard(cards []deck.Card, card deck.Card) bool {
	for _, c := range cards {
		if c == card {
			return true
		}
	}
	return false
}
