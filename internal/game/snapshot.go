package game

import "github.com/lox/blackjack/internal/deck"

// CardView is a card as shown to observers. A hidden card carries no rank
// or suit.
type CardView struct {
	Rank   string `json:"rank,omitempty"`
	Suit   string `json:"suit,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

// Card converts a visible card back into a deck card
func (v CardView) Card() (deck.Card, bool) {
	if v.Hidden {
		return deck.Card{}, false
	}
	c, err := deck.ParseCard(v.Rank + v.Suit)
	if err != nil {
		return deck.Card{}, false
	}
	return c, true
}

// Cards converts the visible cards of a hand view
func Cards(views []CardView) []deck.Card {
	cards := make([]deck.Card, 0, len(views))
	for _, v := range views {
		if c, ok := v.Card(); ok {
			cards = append(cards, c)
		}
	}
	return cards
}

// PlayerView is the public projection of a seated player
type PlayerView struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Chips   int        `json:"chips"`
	Hand    []CardView `json:"hand"`
	Score   int        `json:"score"`
	Bet     int        `json:"bet"`
	Outcome Outcome    `json:"outcome,omitempty"`
	Doubled bool       `json:"doubled,omitempty"`
}

// Snapshot is the client-safe projection of the table
type Snapshot struct {
	Round       uint64                `json:"round"`
	Phase       Phase                 `json:"phase"`
	Players     map[string]PlayerView `json:"players"`
	Seats       []string              `json:"seats"`
	Dealer      []CardView            `json:"dealer"`
	DealerScore int                   `json:"dealerScore"`
	CurrentTurn string                `json:"currentTurn,omitempty"`
	Message     string                `json:"message"`
}

// Snapshot returns the current projection of the table
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Table) snapshotLocked() Snapshot {
	hideHole := t.phase == PhasePlaying

	s := Snapshot{
		Round:   t.round,
		Phase:   t.phase,
		Players: make(map[string]PlayerView, len(t.players)),
		Seats:   append([]string(nil), t.seats...),
		Dealer:  make([]CardView, len(t.dealer)),
		Message: statusMessage(t.phase),
	}

	for i, c := range t.dealer {
		if hideHole && i == 1 {
			s.Dealer[i] = CardView{Hidden: true}
			continue
		}
		s.Dealer[i] = viewCard(c)
	}

	switch {
	case len(t.dealer) == 0:
	case hideHole:
		s.DealerScore = t.dealer[0].Value()
	default:
		s.DealerScore = Evaluate(t.dealer)
	}

	for id, p := range t.players {
		s.Players[id] = PlayerView{
			ID:      p.ID,
			Name:    p.Name,
			Chips:   p.Chips,
			Hand:    viewCards(p.Hand),
			Score:   p.Total(),
			Bet:     p.Bet,
			Outcome: p.Outcome,
			Doubled: p.Doubled,
		}
	}

	if t.phase == PhasePlaying && len(t.turnOrder) > 0 {
		s.CurrentTurn = t.turnOrder[0]
	}

	return s
}

func statusMessage(p Phase) string {
	switch p {
	case PhaseBetting:
		return "Place your bets!"
	case PhasePlaying:
		return "Game in progress..."
	case PhaseFinished:
		return "Round over!"
	default:
		return "Waiting for players..."
	}
}

func viewCard(c deck.Card) CardView {
	return CardView{Rank: c.Rank.String(), Suit: c.Suit.String()}
}

func viewCards(cards []deck.Card) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		views[i] = viewCard(c)
	}
	return views
}
