package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientConfigMissingFile(t *testing.T) {
	cfg, err := LoadClientConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultClientConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadClientConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  url = "https://blackjack.example.com"
}

player {
  name = "Alice"
}

ui {
  log_level = "debug"
}
`), 0o600))

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://blackjack.example.com", cfg.Server.URL)
	assert.Equal(t, 10, cfg.Server.ConnectTimeout)
	assert.Equal(t, "Alice", cfg.Player.Name)
	assert.Equal(t, "debug", cfg.UI.LogLevel)
	assert.Equal(t, "blackjack-client.log", cfg.UI.LogFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadClientConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`server {`), 0o600))

	_, err := LoadClientConfig(path)
	assert.Error(t, err)
}

func TestClientConfigValidate(t *testing.T) {
	cfg := DefaultClientConfig()
	cfg.UI.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultClientConfig()
	cfg.Server.URL = "ftp://example.com"
	assert.Error(t, cfg.Validate())
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws"},
		{"https://example.com/", "wss://example.com/ws"},
		{"ws://127.0.0.1:9000/ws", "ws://127.0.0.1:9000/ws"},
	}
	for _, tt := range tests {
		got, err := WebSocketURL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
