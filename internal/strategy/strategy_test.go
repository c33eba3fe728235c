package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
)

func situation(hand, up string) Situation {
	return Situation{
		Hand:     deck.MustParseCards(hand),
		DealerUp: deck.MustParseCards(up)[0],
		Chips:    900,
		Bet:      100,
	}
}

func TestBasicDecide(t *testing.T) {
	tests := []struct {
		name string
		hand string
		up   string
		want game.Action
	}{
		{"hard 8 hits", "5s 3h", "6d", game.Hit},
		{"hard 11 doubles", "6s 5h", "10d", game.Double},
		{"hard 11 hits against ace", "6s 5h", "Ad", game.Hit},
		{"hard 10 doubles against 9", "6s 4h", "9d", game.Double},
		{"hard 9 doubles against 4", "5s 4h", "4d", game.Double},
		{"hard 12 stands against 4", "10s 2h", "4d", game.Stand},
		{"hard 12 hits against 2", "10s 2h", "2d", game.Hit},
		{"hard 16 stands against 6", "10s 6h", "6d", game.Stand},
		{"hard 16 hits against 10", "10s 6h", "Kd", game.Hit},
		{"hard 17 stands", "10s 7h", "Ad", game.Stand},
		{"soft 13 doubles against 5", "As 2h", "5d", game.Double},
		{"soft 17 hits against 7", "As 6h", "7d", game.Hit},
		{"soft 18 stands against 8", "As 7h", "8d", game.Stand},
		{"soft 18 doubles against 4", "As 7h", "4d", game.Double},
		{"soft 18 hits against 9", "As 7h", "9d", game.Hit},
		{"soft 19 stands", "As 8h", "6d", game.Stand},
		{"pair of aces hits", "As Ah", "10d", game.Hit},
		{"three card hard 11 hits", "2s 4h 5c", "6d", game.Hit},
		{"three card soft 18 stands instead of doubling", "As 3h 4c", "4d", game.Stand},
	}

	b := &Basic{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Decide(situation(tt.hand, tt.up)))
		})
	}
}

func TestBasicWithoutChipsToDouble(t *testing.T) {
	s := situation("6s 5h", "6d")
	s.Chips = 50
	assert.Equal(t, game.Hit, (&Basic{}).Decide(s))
}

func TestDealerStrategy(t *testing.T) {
	d := &Dealer{}
	assert.Equal(t, game.Hit, d.Decide(situation("10s 6h", "6d")))
	assert.Equal(t, game.Stand, d.Decide(situation("As 6h", "6d")))
	assert.Equal(t, game.Hit, d.Decide(situation("5s 6h", "6d")), "dealer strategy never doubles")
}

func TestRandomOnlyPicksLegalActions(t *testing.T) {
	r := &Random{rng: randutil.New(3)}
	seen := map[game.Action]int{}

	three := situation("2s 3h 4c", "6d")
	for range 200 {
		a := r.Decide(three)
		require.NotEqual(t, game.Double, a)
		seen[a]++
	}
	assert.Positive(t, seen[game.Hit])
	assert.Positive(t, seen[game.Stand])

	two := situation("2s 3h", "6d")
	doubled := false
	for range 200 {
		if r.Decide(two) == game.Double {
			doubled = true
			break
		}
	}
	assert.True(t, doubled)
}

func TestFlatBet(t *testing.T) {
	tests := []struct {
		amount, chips, min, want int
	}{
		{50, 1000, 10, 50},
		{5, 1000, 10, 10},
		{50, 30, 10, 30},
		{50, 5, 10, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FlatBet{Amount: tt.amount}.Bet(tt.chips, tt.min))
	}
}

func TestNew(t *testing.T) {
	assert.Equal(t, []string{"basic", "dealer", "random"}, Names())

	for _, name := range Names() {
		s, err := New(name, randutil.New(1), 25)
		require.NoError(t, err, name)
		assert.Equal(t, 25, s.Bet(1000, 10))
	}

	_, err := New("martingale", randutil.New(1), 25)
	assert.ErrorContains(t, err, "unknown strategy")
}
