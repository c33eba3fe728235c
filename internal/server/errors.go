package server

import (
	"errors"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

// errorCode maps a table error onto the code sent to the client
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidBet), errors.Is(err, game.ErrAlreadyBet):
		return protocol.CodeInvalidBet
	case errors.Is(err, game.ErrWrongPhase):
		return protocol.CodeWrongPhase
	case errors.Is(err, game.ErrOutOfTurn):
		return protocol.CodeOutOfTurn
	case errors.Is(err, game.ErrUnknownAction), errors.Is(err, game.ErrCannotDouble):
		return protocol.CodeInvalidAction
	case errors.Is(err, game.ErrInvalidName):
		return protocol.CodeInvalidName
	case errors.Is(err, game.ErrTableFull):
		return protocol.CodeTableFull
	case errors.Is(err, game.ErrPlayerNotFound):
		return protocol.CodeNotSeated
	default:
		return protocol.CodeInternal
	}
}
