package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
)

func TestSettle(t *testing.T) {
	tests := []struct {
		name    string
		dealer  string
		hand    string
		bet     int
		outcome Outcome
		payout  int
	}{
		{name: "higher total wins", dealer: "10s 9h", hand: "10h Qd", bet: 50, outcome: OutcomeWin, payout: 100},
		{name: "natural against three card 21", dealer: "7s 7h 7d", hand: "As Kh", bet: 50, outcome: OutcomeBlackjack, payout: 125},
		{name: "natural pays down on odd bets", dealer: "10s 8h", hand: "As Kh", bet: 15, outcome: OutcomeBlackjack, payout: 37},
		{name: "bust loses against dealer bust", dealer: "10s 6h 9c", hand: "10h 6d Kc", bet: 50, outcome: OutcomeLose, payout: 0},
		{name: "bust loses against dealer 17", dealer: "10s 7h", hand: "10h 2d Kc", bet: 50, outcome: OutcomeLose, payout: 0},
		{name: "dealer bust pays", dealer: "10s 6h 9c", hand: "10h 2d", bet: 50, outcome: OutcomeWin, payout: 100},
		{name: "equal totals push", dealer: "10s 8h", hand: "9h 9d", bet: 50, outcome: OutcomePush, payout: 50},
		{name: "natural against natural pushes", dealer: "Ac Qs", hand: "As Kh", bet: 50, outcome: OutcomePush, payout: 50},
		{name: "lower total loses", dealer: "10s 9h", hand: "10h 8d", bet: 50, outcome: OutcomeLose, payout: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{ID: "p1", Chips: 1000 - tt.bet, Bet: tt.bet, Hand: deck.MustParseCards(tt.hand)}

			results := Settle(deck.MustParseCards(tt.dealer), []*Player{p})
			require.Len(t, results, 1)

			assert.Equal(t, tt.outcome, p.Outcome)
			assert.Equal(t, 1000-tt.bet+tt.payout, p.Chips)
			assert.Equal(t, tt.payout, results[0].Payout)
			assert.Equal(t, tt.payout-tt.bet, results[0].Net())
			assert.Equal(t, p.Chips, results[0].ChipsAfter)
		})
	}
}

func TestSettleSkipsPlayersWithoutBet(t *testing.T) {
	watcher := &Player{ID: "w", Chips: 1000, Hand: deck.MustParseCards("10h Kd")}
	results := Settle(deck.MustParseCards("10s 7h"), []*Player{watcher})

	assert.Empty(t, results)
	assert.Equal(t, OutcomeNone, watcher.Outcome)
	assert.Equal(t, 1000, watcher.Chips)
}

func TestPayout(t *testing.T) {
	assert.Equal(t, 200, Payout(OutcomeWin, 100))
	assert.Equal(t, 250, Payout(OutcomeBlackjack, 100))
	assert.Equal(t, 100, Payout(OutcomePush, 100))
	assert.Equal(t, 0, Payout(OutcomeLose, 100))
	assert.Equal(t, 0, Payout(OutcomeBust, 100))
}
