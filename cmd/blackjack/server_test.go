package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/server"
)

func TestServerOverrides(t *testing.T) {
	seed := int64(42)
	cmd := ServerCmd{
		Addr:       "0.0.0.0:9000",
		LogLevel:   "debug",
		Seed:       &seed,
		MinBettors: 1,
		HistoryDSN: "rounds.db",
	}
	cfg := server.DefaultServerConfig()
	require.NoError(t, cmd.applyOverrides(cfg))

	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, &seed, cfg.Seed())
	assert.Equal(t, 1, cfg.Table.MinBettors)
	require.NotNil(t, cfg.History)
	assert.Equal(t, "sqlite", cfg.History.Driver)
	assert.Equal(t, "rounds.db", cfg.History.DSN)
	assert.NoError(t, cfg.Validate())
}

func TestServerOverridesRejectBadAddr(t *testing.T) {
	cmd := ServerCmd{Addr: "nowhere"}
	assert.Error(t, cmd.applyOverrides(server.DefaultServerConfig()))
}
