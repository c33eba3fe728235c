package main

import (
	"fmt"
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/tui"
)

// ClientCmd connects a person to the table through the terminal UI
type ClientCmd struct {
	Config   string `kong:"short='c',default='blackjack-client.hcl',help='Path to HCL configuration file'"`
	Server   string `kong:"short='s',help='Server URL to connect to (overrides config)'"`
	Name     string `kong:"short='n',help='Display name (overrides config)'"`
	LogLevel string `kong:"short='l',help='Log level (overrides config)'"`
	LogFile  string `kong:"help='Log file path (overrides config)'"`
}

func (c *ClientCmd) Run() error {
	cfg, err := client.LoadClientConfig(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if c.Server != "" {
		cfg.Server.URL = c.Server
	}
	if c.Name != "" {
		cfg.Player.Name = c.Name
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.UI.LogFile = c.LogFile
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file
	logger, closer, err := shared.SetupFileLogger(cfg.UI.LogFile, cfg.UI.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	logger.Info("Starting Blackjack client",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"config", c.Config)

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	wsClient := client.NewClient(cfg.Server.URL, logger)

	return tui.Run(ctx, wsClient, logger, tui.Options{
		Name:           cfg.Player.Name,
		AltScreen:      true,
		ConnectTimeout: time.Duration(cfg.Server.ConnectTimeout) * time.Second,
	})
}
