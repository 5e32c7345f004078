package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"

	"github.com/malexanderboyd/godr4ft/internal/game"
)

const DefaultPath = "godr4ft.toml"

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Cards   CardsConfig   `toml:"cards"`
	Scoring ScoringConfig `toml:"scoring"`
	// Session holds the options new sessions start with.
	Session game.Options `toml:"session"`
}

type ServerConfig struct {
	Address      string `toml:"address"`
	StatusKey    string `toml:"status_key"`    // Guards /getStatus/{key}
	SnapshotPath string `toml:"snapshot_path"` // Inactive sessions, empty disables
	Debug        bool   `toml:"debug"`
}

type CardsConfig struct {
	Path string `toml:"path"` // Card table JSON
}

type ScoringConfig struct {
	URL     string  `toml:"url"`     // Empty disables ratings
	Rate    float64 `toml:"rate"`    // Requests per second
	Timeout string  `toml:"timeout"` // e.g. "10s"
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			SnapshotPath: "sessions.json",
		},
		Cards: CardsConfig{
			Path: "cards.json",
		},
		Scoring: ScoringConfig{
			Rate:    2,
			Timeout: "10s",
		},
		Session: game.DefaultOptions(),
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var err error
	if c.Server.Address == "" {
		err = multierr.Append(err, fmt.Errorf("server.address is empty"))
	}
	if c.Cards.Path == "" {
		err = multierr.Append(err, fmt.Errorf("cards.path is empty"))
	}
	if c.Scoring.Rate < 0 {
		err = multierr.Append(err, fmt.Errorf("scoring.rate must not be negative, got %v", c.Scoring.Rate))
	}
	if c.Scoring.Timeout != "" {
		if _, perr := time.ParseDuration(c.Scoring.Timeout); perr != nil {
			err = multierr.Append(err, fmt.Errorf("scoring.timeout: %w", perr))
		}
	}
	if verr := c.Session.Validate(); verr != nil {
		err = multierr.Append(err, fmt.Errorf("session: %w", verr))
	}
	return err
}

// ScoringTimeout returns the parsed scoring timeout, zero when unset.
func (c *Config) ScoringTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Scoring.Timeout)
	return d
}

// SetPort replaces the port of the listen address.
func (c *Config) SetPort(port int) {
	c.Server.Address = fmt.Sprintf(":%d", port)
}
