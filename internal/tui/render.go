package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lox/blackjack/internal/game"
)

// formatCard renders a single card, "??" when it is face down
func formatCard(c game.CardView) string {
	if c.Hidden {
		return HiddenCardStyle.Render("??")
	}
	card, ok := c.Card()
	if !ok {
		return HiddenCardStyle.Render(c.Rank + c.Suit)
	}
	if card.IsRed() {
		return RedCardStyle.Render(card.String())
	}
	return BlackCardStyle.Render(card.String())
}

// formatCards renders a hand with colors
func formatCards(cards []game.CardView) string {
	if len(cards) == 0 {
		return "[]"
	}
	formatted := make([]string, len(cards))
	for i, c := range cards {
		formatted[i] = formatCard(c)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// seatOrder returns the ids in seat order followed by anyone missing from
// the seat list
func seatOrder(snap game.Snapshot) []string {
	ids := make([]string, 0, len(snap.Players))
	seen := make(map[string]bool, len(snap.Players))
	for _, id := range snap.Seats {
		if _, ok := snap.Players[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var rest []string
	for id := range snap.Players {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

// renderTable draws the dealer and every seat. The viewer's own seat is
// marked with "(you)".
func renderTable(snap game.Snapshot, self string) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf(" Round %d · %s ", snap.Round, snap.Phase)))
	b.WriteString("\n")
	if snap.Message != "" {
		b.WriteString(InfoStyle.Render(snap.Message))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("Dealer ")
	b.WriteString(formatCards(snap.Dealer))
	if len(snap.Dealer) > 0 {
		fmt.Fprintf(&b, " (%d)", snap.DealerScore)
	}
	b.WriteString("\n\n")

	for _, id := range seatOrder(snap) {
		p := snap.Players[id]
		name := p.Name
		if id == self {
			name += " (you)"
		}
		if id == snap.CurrentTurn {
			name = TurnStyle.Render("▶ " + name)
		}
		b.WriteString(name)
		b.WriteString("\n")

		fmt.Fprintf(&b, "  $%d", p.Chips)
		if p.Bet > 0 {
			fmt.Fprintf(&b, "  bet $%d", p.Bet)
			if p.Doubled {
				b.WriteString(" (doubled)")
			}
		}
		b.WriteString("\n")

		if len(p.Hand) > 0 {
			fmt.Fprintf(&b, "  %s (%d)", formatCards(p.Hand), p.Score)
			if p.Outcome != game.OutcomeNone {
				b.WriteString(" ")
				b.WriteString(outcomeStyle(string(p.Outcome)).Render(string(p.Outcome)))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// describeChange returns log lines for the transition between two table
// updates
func describeChange(prev, next game.Snapshot, self string) []string {
	var lines []string

	if prev.Phase != next.Phase {
		switch next.Phase {
		case game.PhaseWaiting:
			lines = append(lines, InfoStyle.Render("Waiting for players..."))
		case game.PhaseBetting:
			lines = append(lines, WarningStyle.Render("Betting is open. Type 'bet N' to join the round."))
		case game.PhasePlaying:
			lines = append(lines, fmt.Sprintf("Round %d dealt. Dealer shows %s", next.Round, formatCards(next.Dealer[:min(1, len(next.Dealer))])))
		case game.PhaseFinished:
			lines = append(lines, roundResults(next)...)
		}
	}

	if next.Phase == game.PhasePlaying && next.CurrentTurn != prev.CurrentTurn && next.CurrentTurn != "" {
		if next.CurrentTurn == self {
			me := next.Players[self]
			lines = append(lines, ActionsStyle.Render(fmt.Sprintf("Your turn with %s (%d): hit, stand or double", formatCards(me.Hand), me.Score)))
		} else if p, ok := next.Players[next.CurrentTurn]; ok {
			lines = append(lines, InfoStyle.Render(fmt.Sprintf("Waiting for %s", p.Name)))
		}
	}

	return lines
}

func roundResults(snap game.Snapshot) []string {
	lines := []string{fmt.Sprintf("Dealer %s (%d)", formatCards(snap.Dealer), snap.DealerScore)}
	for _, id := range seatOrder(snap) {
		p := snap.Players[id]
		if p.Outcome == game.OutcomeNone {
			continue
		}
		result := outcomeStyle(string(p.Outcome)).Render(string(p.Outcome))
		lines = append(lines, fmt.Sprintf("%s %s (%d): %s, now $%d", p.Name, formatCards(p.Hand), p.Score, result, p.Chips))
	}
	return lines
}
