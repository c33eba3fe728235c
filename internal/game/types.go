package game

import (
	"fmt"
	"strings"
)

// Phase is the table's stage in the round lifecycle
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseBetting  Phase = "betting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// Outcome labels a player's result for the round
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeBust      Outcome = "bust"
	OutcomeWin       Outcome = "win"
	OutcomeLose      Outcome = "lose"
	OutcomePush      Outcome = "push"
	OutcomeBlackjack Outcome = "blackjack"
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	if o == OutcomeNone {
		return "none"
	}
	return string(o)
}

// Action is a playing decision taken on the player's turn
type Action string

const (
	Hit    Action = "hit"
	Stand  Action = "stand"
	Double Action = "double"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// ParseAction parses an action name, case-insensitively
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case Hit, Stand, Double:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}
