package deck

import (
	"errors"
	rand "math/rand/v2"
)

// Size is the number of cards in a standard deck
const Size = len(Suits) * len(Ranks)

// ErrEmptyDeck is returned when drawing from a deck with no cards left
var ErrEmptyDeck = errors.New("deck is empty")

// Deck is an ordered stack of cards. The top of the deck is the end of the
// slice.
type Deck struct {
	cards []Card
}

// New creates a standard 52-card deck shuffled with rng
func New(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, 0, Size)}
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	d.Shuffle(rng)
	return d
}

// Stacked creates a deck that deals the given cards in order, first card
// first.
func Stacked(cards ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	for i, c := range cards {
		d.cards[len(cards)-1-i] = c
	}
	return d
}

// Shuffle randomizes the order of the remaining cards (Fisher-Yates)
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}

	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}
