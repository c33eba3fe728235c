package game

import "errors"

var (
	ErrInvalidBet     = errors.New("invalid bet amount")
	ErrAlreadyBet     = errors.New("bet already placed this round")
	ErrWrongPhase     = errors.New("not allowed in current phase")
	ErrOutOfTurn      = errors.New("action out of turn")
	ErrUnknownAction  = errors.New("unknown action")
	ErrCannotDouble   = errors.New("double requires two cards and chips to match the bet")
	ErrTableFull      = errors.New("table is full")
	ErrPlayerExists   = errors.New("player already seated")
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidName    = errors.New("name must not be empty")
)
