package client

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ClientConfig represents the complete client configuration
type ClientConfig struct {
	Server ServerConnection `hcl:"server,block"`
	Player PlayerSettings   `hcl:"player,block"`
	UI     UISettings       `hcl:"ui,block"`
}

// ServerConnection contains server connection settings
type ServerConnection struct {
	URL            string `hcl:"url"`
	ConnectTimeout int    `hcl:"connect_timeout,optional"`
}

// PlayerSettings contains player-specific settings
type PlayerSettings struct {
	Name string `hcl:"name,optional"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Server: ServerConnection{
			URL:            "http://localhost:8080",
			ConnectTimeout: 10,
		},
		UI: UISettings{
			LogLevel: "warn",
			LogFile:  "blackjack-client.log",
		},
	}
}

// LoadClientConfig loads client configuration from HCL file
func LoadClientConfig(filename string) (*ClientConfig, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultClientConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ClientConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultClientConfig()
	if config.Server.URL == "" {
		config.Server.URL = defaults.Server.URL
	}
	if config.Server.ConnectTimeout == 0 {
		config.Server.ConnectTimeout = defaults.Server.ConnectTimeout
	}
	if config.UI.LogLevel == "" {
		config.UI.LogLevel = defaults.UI.LogLevel
	}
	if config.UI.LogFile == "" {
		config.UI.LogFile = defaults.UI.LogFile
	}

	return &config, nil
}

// Validate validates the client configuration
func (c *ClientConfig) Validate() error {
	if _, err := WebSocketURL(c.Server.URL); err != nil {
		return err
	}
	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if _, err := log.ParseLevel(c.UI.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}
	return nil
}
