package main

import (
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/bot"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/strategy"
)

// BotCmd runs one built-in bot against a running server
type BotCmd struct {
	Server   string `kong:"default='http://localhost:8080',help='Server URL'"`
	Name     string `kong:"help='Display name (defaults to the strategy name)'"`
	Strategy string `kong:"default='basic',enum='basic,dealer,random',help='Playing strategy: basic, dealer or random'"`
	Bet      int    `kong:"default='10',help='Flat bet per round'"`
	Rounds   int    `kong:"help='Stop after N rounds (0 plays until out of chips)'"`
	Seed     *int64 `kong:"help='Seed for the random strategy (optional)'"`
	LogLevel string `kong:"short='l',default='info',help='Log level (debug|info|warn|error)'"`
}

func (c *BotCmd) Run() error {
	logger, err := shared.SetupLogger(c.LogLevel)
	if err != nil {
		return err
	}

	strat, err := strategy.New(c.Strategy, randutil.New(randutil.Seed(c.Seed)), c.Bet)
	if err != nil {
		return err
	}

	name := c.Name
	if name == "" {
		name = c.Strategy
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	logger.Info("Starting bot", "name", name, "strategy", c.Strategy, "server", c.Server, "rounds", c.Rounds)

	return bot.Run(ctx, bot.Config{
		ServerURL:      c.Server,
		Name:           name,
		Strategy:       strat,
		MaxRounds:      c.Rounds,
		ConnectTimeout: 10 * time.Second,
	}, logger)
}
