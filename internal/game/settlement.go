package game

import "github.com/lox/blackjack/internal/deck"

// Payout returns the chips returned to a player for outcome on bet. The
// stake was taken when the bet was placed, so a win returns twice the bet,
// a natural two and a half times (rounded down) and a push the stake.
func Payout(outcome Outcome, bet int) int {
	switch outcome {
	case OutcomeWin:
		return bet * 2
	case OutcomeBlackjack:
		return bet * 5 / 2
	case OutcomePush:
		return bet
	default:
		return 0
	}
}

// Settle resolves each player's hand against the dealer's, credits chips
// and sets outcomes. Players with no bet are skipped.
func Settle(dealer []deck.Card, players []*Player) []PlayerResult {
	dealerTotal := Evaluate(dealer)
	results := make([]PlayerResult, 0, len(players))

	for _, p := range players {
		if p.Bet == 0 {
			continue
		}

		total := p.Total()
		switch {
		case total > BlackjackTotal:
			p.Outcome = OutcomeLose
		case dealerTotal > BlackjackTotal || total > dealerTotal:
			if IsBlackjack(p.Hand) {
				p.Outcome = OutcomeBlackjack
			} else {
				p.Outcome = OutcomeWin
			}
		case total == dealerTotal:
			p.Outcome = OutcomePush
		default:
			p.Outcome = OutcomeLose
		}

		payout := Payout(p.Outcome, p.Bet)
		p.Chips += payout

		results = append(results, PlayerResult{
			PlayerID:   p.ID,
			Name:       p.Name,
			Hand:       append([]deck.Card(nil), p.Hand...),
			Total:      total,
			Bet:        p.Bet,
			Payout:     payout,
			Outcome:    p.Outcome,
			ChipsAfter: p.Chips,
		})
	}

	return results
}
