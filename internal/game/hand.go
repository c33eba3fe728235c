package game

import "github.com/lox/blackjack/internal/deck"

// BlackjackTotal is the best possible hand total
const BlackjackTotal = 21

// DealerStandsOn is the total at which the dealer stops drawing
const DealerStandsOn = 17

// Evaluate returns the best total for cards. Aces count 11 and are
// downgraded to 1, one at a time, while the total is over 21.
func Evaluate(cards []deck.Card) int {
	total, _ := evaluate(cards)
	return total
}

// IsSoft returns true when the best total still counts an ace as 11
func IsSoft(cards []deck.Card) bool {
	_, softAces := evaluate(cards)
	return softAces > 0
}

// IsBust returns true when the best total is over 21
func IsBust(cards []deck.Card) bool {
	return Evaluate(cards) > BlackjackTotal
}

// IsBlackjack returns true for a natural: exactly two cards totalling 21
func IsBlackjack(cards []deck.Card) bool {
	return len(cards) == 2 && Evaluate(cards) == BlackjackTotal
}

func evaluate(cards []deck.Card) (total, softAces int) {
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			softAces++
		}
	}
	for total > BlackjackTotal && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}
