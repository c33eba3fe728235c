package game

import "github.com/lox/blackjack/internal/deck"

// Player is a seated participant. Players live only as long as their
// connection.
type Player struct {
	ID      string
	Name    string
	Chips   int
	Hand    []deck.Card
	Bet     int
	Outcome Outcome
	Doubled bool
}

func newPlayer(id string, chips int) *Player {
	return &Player{
		ID:    id,
		Name:  DefaultPlayerName,
		Chips: chips,
	}
}

// Total returns the evaluated total of the player's hand
func (p *Player) Total() int {
	return Evaluate(p.Hand)
}

// clone returns a copy safe to hand outside the table lock
func (p *Player) clone() Player {
	c := *p
	c.Hand = append([]deck.Card(nil), p.Hand...)
	return c
}

func (p *Player) resetForRound() {
	p.Hand = nil
	p.Outcome = OutcomeNone
	p.Doubled = false
}
