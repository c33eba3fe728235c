package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/blackjack/internal/game"
)

// CommandKind identifies what a line of input asks for
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandBet
	CommandAction
	CommandName
	CommandSay
	CommandHelp
	CommandQuit
)

// Command is a parsed line of user input
type Command struct {
	Kind   CommandKind
	Amount int
	Action game.Action
	Text   string
}

// ErrUnknownCommand is returned for input that matches no command
var ErrUnknownCommand = errors.New("unknown command")

const helpText = "Commands: bet N, hit (h), stand (s), double (d), name NAME, say TEXT, quit"

// ParseCommand parses a line typed into the input box. The verb is
// case-insensitive, arguments to name and say keep their case.
func ParseCommand(input string) (Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{Kind: CommandNone}, nil
	}

	verb, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "bet", "b":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: bet AMOUNT")
		}
		amount, err := strconv.Atoi(rest)
		if err != nil || amount <= 0 {
			return Command{}, fmt.Errorf("invalid bet amount %q", rest)
		}
		return Command{Kind: CommandBet, Amount: amount}, nil
	case "hit", "h":
		return Command{Kind: CommandAction, Action: game.Hit}, nil
	case "stand", "s":
		return Command{Kind: CommandAction, Action: game.Stand}, nil
	case "double", "d":
		return Command{Kind: CommandAction, Action: game.Double}, nil
	case "name":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: name NAME")
		}
		return Command{Kind: CommandName, Text: rest}, nil
	case "say", "chat":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: say TEXT")
		}
		return Command{Kind: CommandSay, Text: rest}, nil
	case "help", "?":
		return Command{Kind: CommandHelp}, nil
	case "quit", "exit", "q":
		return Command{Kind: CommandQuit}, nil
	}
	return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, verb)
}
