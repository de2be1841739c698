package hand

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardroom/cardroom/internal/deck"
)

func TestBest(t *testing.T) {
	tests := []struct {
		name        string
		cards       string
		combination Combination
		best        string
	}{
		{
			name:        "royal flush",
			cards:       "As Ks Qs Js Ts 9h 2c",
			combination: RoyalFlush,
			best:        "As Ks Qs Js Ts",
		},
		{
			name:        "straight flush",
			cards:       "9h 8h 7h 6h 5h 2c",
			combination: StraightFlush,
			best:        "9h 8h 7h 6h 5h",
		},
		{
			name:        "straight flush hidden behind an off-suit duplicate",
			cards:       "9h 8h 7h 6s 6h 5h",
			combination: StraightFlush,
			best:        "9h 8h 7h 6h 5h",
		},
		{
			name:        "four of a kind with kicker",
			cards:       "Qs Qh Qd Qc 7s 2h",
			combination: FourOfAKind,
			best:        "Qs Qh Qd Qc 7s",
		},
		{
			name:        "full house from two trips keeps the higher trips",
			cards:       "As Ah Ad Ks Kh Kd 2c",
			combination: FullHouse,
			best:        "As Ah Ad Ks Kh",
		},
		{
			name:        "full house from trips and pair",
			cards:       "7s 7h 7d 3d 3c As",
			combination: FullHouse,
			best:        "7s 7h 7d 3d 3c",
		},
		{
			name:        "flush",
			cards:       "Ah Jh 9h 7h 3h 2c",
			combination: Flush,
			best:        "Ah Jh 9h 7h 3h",
		},
		{
			name:        "straight",
			cards:       "9s 8h 7d 6c 5s Kd",
			combination: Straight,
			best:        "9s 8h 7d 6c 5s",
		},
		{
			name:        "wheel counts the ace low",
			cards:       "5h 4d 3c 2s Ah Kd",
			combination: Straight,
			best:        "5h 4d 3c 2s Ah",
		},
		{
			name:        "wheel straight flush is not royal",
			cards:       "5h 4h 3h 2h Ah",
			combination: StraightFlush,
			best:        "5h 4h 3h 2h Ah",
		},
		{
			name:        "three of a kind with two kickers",
			cards:       "8s 8h 8d Kc 4s",
			combination: ThreeOfAKind,
			best:        "8s 8h 8d Kc 4s",
		},
		{
			name:        "two pair with kicker",
			cards:       "Js Jh 4d 4c As 9h",
			combination: TwoPair,
			best:        "Js Jh 4d 4c As",
		},
		{
			name:        "pair with three kickers",
			cards:       "Ts Th Ad 8c 5s 2h",
			combination: Pair,
			best:        "Ts Th Ad 8c 5s",
		},
		{
			name:        "high card keeps the top five",
			cards:       "Ah Jd 9s 7c 5h 3d 2s",
			combination: HighCard,
			best:        "Ah Jd 9s 7c 5h",
		},
		{
			name:        "two hole cards only",
			cards:       "As Kd",
			combination: HighCard,
			best:        "As Kd",
		},
		{
			name:        "paired hole cards",
			cards:       "As Ah",
			combination: Pair,
			best:        "As Ah",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Best(deck.MustParseCards(tt.cards))
			require.NoError(t, err)
			assert.Equal(t, tt.combination, got.Combination)
			assert.Equal(t, deck.MustParseCards(tt.best), got.Cards)
		})
	}
}

func TestBestIsOrderIndependent(t *testing.T) {
	cards := deck.MustParseCards("9h 8h 7h 6s 6h 5h Ac")
	want, err := Best(cards)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]deck.Card, len(cards))
		copy(shuffled, cards)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got, err := Best(shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestBestInvalidCardCount(t *testing.T) {
	_, err := Best(deck.MustParseCards("As"))
	assert.ErrorIs(t, err, ErrInvalidCardCount)

	_, err = Best(deck.MustParseCards("As Ks Qs Js Ts 9s 8s 7s"))
	assert.ErrorIs(t, err, ErrInvalidCardCount)
}

func TestCompare(t *testing.T) {
	eval := func(s string) Hand {
		h, err := Best(deck.MustParseCards(s))
		require.NoError(t, err)
		return h
	}

	tests := []struct {
		name string
		a, b string
		sign int
	}{
		{name: "royal beats straight flush", a: "As Ks Qs Js Ts", b: "Kh Qh Jh Th 9h", sign: 1},
		{name: "higher pair wins", a: "Ks Kh 4d 3c 2s", b: "Qs Qh Ad Kc 2h", sign: 1},
		{name: "kicker breaks the tie", a: "Ts Th Ad 8c 5s", b: "Tc Td Kd 8h 5h", sign: 1},
		{name: "suits never matter", a: "As Kh Qd Jc 9s", b: "Ac Kd Qh Js 9d", sign: 0},
		{name: "flush loses to full house", a: "Ah Jh 9h 7h 3h", b: "2s 2h 2d 3c 3d", sign: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(eval(tt.a), eval(tt.b))
			switch {
			case tt.sign > 0:
				assert.Positive(t, got)
			case tt.sign < 0:
				assert.Negative(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}
