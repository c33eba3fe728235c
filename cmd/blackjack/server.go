package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/server"
)

// ServerCmd runs the table server
type ServerCmd struct {
	Config        string `kong:"short='c',default='blackjack-server.hcl',help='Path to HCL configuration file'"`
	Addr          string `kong:"short='a',help='Server address as host:port (overrides config)'"`
	LogLevel      string `kong:"short='l',help='Log level: debug, info, warn or error (overrides config)'"`
	Seed          *int64 `kong:"help='Deterministic shuffle seed (overrides config)'"`
	MinBettors    int    `kong:"help='Bettors needed to start a round (overrides config)'"`
	HistoryDriver string `kong:"help='Round history driver: sqlite or postgres (overrides config)'"`
	HistoryDSN    string `kong:"help='Round history DSN, e.g. a sqlite file path (overrides config)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := c.applyOverrides(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := shared.SetupLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	ts, err := newTableServer(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		_ = ts.close()
		return fmt.Errorf("failed to listen: %w", err)
	}

	logger.Info("Starting Blackjack server", "addr", ln.Addr().String(), "config", c.Config)
	return ts.serve(ctx, ln)
}

func (c *ServerCmd) applyOverrides(cfg *server.ServerConfig) error {
	if c.Addr != "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", c.Addr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port in %q", c.Addr)
		}
		cfg.Server.Address, cfg.Server.Port = host, p
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Seed != nil {
		cfg.Table.Seed = c.Seed
	}
	if c.MinBettors > 0 {
		cfg.Table.MinBettors = c.MinBettors
	}
	if c.HistoryDriver != "" || c.HistoryDSN != "" {
		if cfg.History == nil {
			cfg.History = &server.HistorySettings{Driver: "sqlite"}
		}
		if c.HistoryDriver != "" {
			cfg.History.Driver = c.HistoryDriver
		}
		if c.HistoryDSN != "" {
			cfg.History.DSN = c.HistoryDSN
		}
	}
	return nil
}
