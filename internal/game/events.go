package game

import (
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// Observer receives the table projection after every accepted mutation.
// It is called with the table lock held, so implementations must not block
// or call back into the table.
type Observer interface {
	OnTableUpdate(Snapshot)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnTableUpdate(s Snapshot) { f(s) }

// RoundRecorder receives one summary per settled round. Like Observer it is
// called under the table lock.
type RoundRecorder interface {
	RecordRound(RoundSummary)
}

// RoundSummary describes a settled round
type RoundSummary struct {
	Round       uint64         `json:"round"`
	SettledAt   time.Time      `json:"settled_at"`
	DealerHand  []deck.Card    `json:"dealer_hand"`
	DealerTotal int            `json:"dealer_total"`
	Results     []PlayerResult `json:"results"`
}

// PlayerResult is one player's settlement line
type PlayerResult struct {
	PlayerID   string      `json:"player_id"`
	Name       string      `json:"name"`
	Hand       []deck.Card `json:"hand"`
	Total      int         `json:"total"`
	Bet        int         `json:"bet"`
	Payout     int         `json:"payout"`
	Outcome    Outcome     `json:"outcome"`
	ChipsAfter int         `json:"chips_after"`
}

// Net returns the chips won or lost on the round
func (r PlayerResult) Net() int {
	return r.Payout - r.Bet
}
