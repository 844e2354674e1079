package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the client configuration, loaded from environment variables.
// The entrypoint seeds the environment from an optional .env file in the
// working directory before calling Load.
type Config struct {
	// BaseURL is the origin of the society-management API, including the
	// /api prefix. It is fixed for the lifetime of the process.
	BaseURL string `env:"NCONNECT_BASE_URL" envDefault:"http://127.0.0.1:8000/api"`

	// StateDir holds persisted client state (session token, username,
	// resident console tab) and the client log file.
	// Empty means ~/.nconnect.
	StateDir string `env:"NCONNECT_STATE_DIR"`

	// PollInterval is how often the active tab's lists are refetched.
	PollInterval time.Duration `env:"NCONNECT_POLL_INTERVAL" envDefault:"30s"`

	// Timeout bounds individual API requests issued by the CLI commands.
	// The TUI uses the same client; a request that outlives its view is
	// discarded by generation checks rather than canceled.
	Timeout time.Duration `env:"NCONNECT_HTTP_TIMEOUT" envDefault:"15s"`
}

// Sanitize applies guardrails to values loaded from env.
func (c *Config) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.PollInterval < 5*time.Second {
		c.PollInterval = 5 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if strings.TrimSpace(c.StateDir) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.StateDir = filepath.Join(home, ".nconnect")
	}
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	c.Sanitize()
	return c, nil
}

// LogPath is the client log file. The TUI owns the terminal, so diagnostics
// go to a file instead of stderr.
func (c Config) LogPath() string {
	return filepath.Join(c.StateDir, "nconnect.log")
}
