package deck

import (
	rand "math/rand/v2"
	"time"

	"github.com/cardroom/cardroom/internal/randutil"
)

// Deck represents a shuffled deck of playing cards. Cards are drawn from
// the top and never returned; Reshuffle restores all 52 cards.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a new shuffled 52-card deck
func NewDeck() *Deck {
	return NewSeededDeck(time.Now().UnixNano())
}

// NewSeededDeck creates a deck with a deterministic shuffle order,
// used by tests that need reproducible deals
func NewSeededDeck(seed int64) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   randutil.New(seed),
	}
	d.Reshuffle()
	return d
}

// Reshuffle restores the deck to a full 52 cards and shuffles it
func (d *Deck) Reshuffle() {
	d.cards = d.cards[:0]
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}

	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
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

// DrawN draws n cards from the deck. Returns false if the deck holds
// fewer than n cards, in which case no cards are drawn.
func (d *Deck) DrawN(n int) ([]Card, bool) {
	if n > len(d.cards) {
		return nil, false
	}

	cards := make([]Card, n)
	for i := 0; i < n; i++ {
		cards[i], _ = d.Draw()
	}
	return cards, true
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}
