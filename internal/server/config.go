package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/history"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server  ServerSettings   `hcl:"server,block"`
	Table   *TableSettings   `hcl:"table,block"`
	History *HistorySettings `hcl:"history,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableSettings configures the blackjack table. Durations use Go syntax,
// e.g. "3s" or "1m30s".
type TableSettings struct {
	StartingChips   int    `hcl:"starting_chips,optional"`
	MinBet          int    `hcl:"min_bet,optional"`
	MaxPlayers      int    `hcl:"max_players,optional"`
	MinBettors      int    `hcl:"min_bettors,optional"`
	RoundStartDelay string `hcl:"round_start_delay,optional"`
	ResultDwell     string `hcl:"result_dwell,optional"`
	Seed            *int64 `hcl:"seed,optional"`
}

// HistorySettings enables the settled-round ledger
type HistorySettings struct {
	Driver string `hcl:"driver"`
	DSN    string `hcl:"dsn"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	defaults := game.DefaultConfig()
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Table: &TableSettings{
			StartingChips:   defaults.StartingChips,
			MinBet:          defaults.MinBet,
			MaxPlayers:      defaults.MaxPlayers,
			MinBettors:      defaults.MinBettors,
			RoundStartDelay: defaults.RoundStartDelay.String(),
			ResultDwell:     defaults.ResultDwell.String(),
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	defaults := DefaultServerConfig()

	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
	}

	if c.Table == nil {
		c.Table = defaults.Table
		return
	}
	t, d := c.Table, defaults.Table
	if t.StartingChips == 0 {
		t.StartingChips = d.StartingChips
	}
	if t.MinBet == 0 {
		t.MinBet = d.MinBet
	}
	if t.MaxPlayers == 0 {
		t.MaxPlayers = d.MaxPlayers
	}
	if t.MinBettors == 0 {
		t.MinBettors = d.MinBettors
	}
	if t.RoundStartDelay == "" {
		t.RoundStartDelay = d.RoundStartDelay
	}
	if t.ResultDwell == "" {
		t.ResultDwell = d.ResultDwell
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	cfg, err := c.GameConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("table: %w", err)
	}

	if c.History != nil {
		if _, err := history.NormalizeDriver(c.History.Driver); err != nil {
			return err
		}
		if c.History.DSN == "" {
			return fmt.Errorf("history: dsn is required")
		}
	}

	return nil
}

// GameConfig converts the table block into table settings
func (c *ServerConfig) GameConfig() (game.Config, error) {
	t := c.Table
	if t == nil {
		t = DefaultServerConfig().Table
	}

	startDelay, err := time.ParseDuration(t.RoundStartDelay)
	if err != nil {
		return game.Config{}, fmt.Errorf("table: round_start_delay: %w", err)
	}
	dwell, err := time.ParseDuration(t.ResultDwell)
	if err != nil {
		return game.Config{}, fmt.Errorf("table: result_dwell: %w", err)
	}

	return game.Config{
		StartingChips:   t.StartingChips,
		MinBet:          t.MinBet,
		MaxPlayers:      t.MaxPlayers,
		MinBettors:      t.MinBettors,
		RoundStartDelay: startDelay,
		ResultDwell:     dwell,
	}, nil
}

// Seed returns the configured shuffle seed, if any
func (c *ServerConfig) Seed() *int64 {
	if c.Table == nil {
		return nil
	}
	return c.Table.Seed
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
