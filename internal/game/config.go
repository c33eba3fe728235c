package game

import (
	"fmt"
	"time"
)

// MaxNameLength caps display names, in runes
const MaxNameLength = 24

// DefaultPlayerName is assigned on join until the player sets one
const DefaultPlayerName = "Player"

// Config holds the per-table settings that are not house rules
type Config struct {
	StartingChips   int
	MinBet          int
	MaxPlayers      int
	MinBettors      int
	RoundStartDelay time.Duration
	ResultDwell     time.Duration
}

// DefaultConfig returns the reference table settings
func DefaultConfig() Config {
	return Config{
		StartingChips:   1000,
		MinBet:          10,
		MaxPlayers:      6,
		MinBettors:      2,
		RoundStartDelay: 3 * time.Second,
		ResultDwell:     8 * time.Second,
	}
}

// Validate checks the config for values the table cannot run with
func (c Config) Validate() error {
	if c.StartingChips <= 0 {
		return fmt.Errorf("starting chips must be positive, got %d", c.StartingChips)
	}
	if c.MinBet <= 0 {
		return fmt.Errorf("minimum bet must be positive, got %d", c.MinBet)
	}
	if c.MinBet > c.StartingChips {
		return fmt.Errorf("minimum bet %d exceeds starting chips %d", c.MinBet, c.StartingChips)
	}
	if c.MaxPlayers < 1 {
		return fmt.Errorf("max players must be at least 1, got %d", c.MaxPlayers)
	}
	if c.MinBettors < 1 || c.MinBettors > c.MaxPlayers {
		return fmt.Errorf("min bettors must be between 1 and %d, got %d", c.MaxPlayers, c.MinBettors)
	}
	if c.RoundStartDelay < 0 || c.ResultDwell < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}
