// Package strategy decides bets and playing actions for automated players.
package strategy

import (
	"fmt"
	rand "math/rand/v2"
	"sort"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// Situation is what a player can see when it is their turn
type Situation struct {
	Hand     []deck.Card
	DealerUp deck.Card
	Chips    int
	Bet      int
}

// CanDouble reports whether doubling is allowed in this situation
func (s Situation) CanDouble() bool {
	return len(s.Hand) == 2 && s.Chips >= s.Bet
}

// Strategy chooses bets and actions
type Strategy interface {
	Decide(s Situation) game.Action
	Bet(chips, minBet int) int
}

// Factory builds a named strategy
type Factory func(rng *rand.Rand, bet int) Strategy

var registry = map[string]Factory{
	"basic": func(_ *rand.Rand, bet int) Strategy {
		return &Basic{Bettor: FlatBet{Amount: bet}}
	},
	"dealer": func(_ *rand.Rand, bet int) Strategy {
		return &Dealer{Bettor: FlatBet{Amount: bet}}
	},
	"random": func(rng *rand.Rand, bet int) Strategy {
		return &Random{rng: rng, Bettor: FlatBet{Amount: bet}}
	},
}

// Names lists the registered strategies
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named strategy with a flat bet
func New(name string, rng *rand.Rand, bet int) (Strategy, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, Names())
	}
	return f(rng, bet), nil
}

// Bettor sizes a bet
type Bettor interface {
	Bet(chips, minBet int) int
}

// FlatBet always stakes the same amount, clamped to the table minimum and
// the chips available. It returns 0 when the player cannot cover the
// minimum.
type FlatBet struct {
	Amount int
}

func (f FlatBet) Bet(chips, minBet int) int {
	if chips < minBet {
		return 0
	}
	return min(max(f.Amount, minBet), chips)
}

// Dealer plays the house rules: hit below 17, never double
type Dealer struct {
	Bettor
}

func (d *Dealer) Decide(s Situation) game.Action {
	if game.Evaluate(s.Hand) < game.DealerStandsOn {
		return game.Hit
	}
	return game.Stand
}

// Random picks uniformly among the legal actions
type Random struct {
	Bettor
	rng *rand.Rand
}

func (r *Random) Decide(s Situation) game.Action {
	actions := []game.Action{game.Hit, game.Stand}
	if s.CanDouble() {
		actions = append(actions, game.Double)
	}
	return actions[r.rng.IntN(len(actions))]
}
