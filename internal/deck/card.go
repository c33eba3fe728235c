package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in deck construction order
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists every rank in deck construction order
var Ranks = [...]Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r == Ace:
		return "A"
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	default:
		return "?"
	}
}

// Value returns the base blackjack value of the rank. Aces count 11 here;
// hand evaluation downgrades them.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Jack:
		return 10
	default:
		return int(r)
	}
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the string representation of a card (e.g., "10♥")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Value returns the base blackjack value of the card
func (c Card) Value() int {
	return c.Rank.Value()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// MarshalText encodes the card in its display form
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts any form ParseCard does
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FormatCards joins cards with spaces, the inverse of ParseCards
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// ParseRank parses a rank such as "A", "10", "T" or "k"
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return Ace, nil
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10", "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

// ParseSuit parses a suit letter (h, d, c, s) or symbol
func ParseSuit(s string) (Suit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "♥":
		return Hearts, nil
	case "d", "♦":
		return Diamonds, nil
	case "c", "♣":
		return Clubs, nil
	case "s", "♠":
		return Spades, nil
	}
	return 0, fmt.Errorf("invalid suit %q", s)
}

// ParseCard parses a single card such as "As", "10h", "Td" or "K♠"
func ParseCard(s string) (Card, error) {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	rank, err := ParseRank(string(runes[:len(runes)-1]))
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", s, err)
	}
	suit, err := ParseSuit(string(runes[len(runes)-1]))
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", s, err)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses whitespace separated cards, e.g. "As Kh 10d"
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		card, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error. Intended for tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}
