// Package config loads the planner's TOML configuration with defaults and
// environment overrides for credentials.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Server contains the HTTP listener settings.
type Server struct {
	Bind string `toml:"bind"`
}

// Storage points at the SQLite database file.
type Storage struct {
	DBPath string `toml:"db_path"`
}

// Priority tunes the scoring engine and the digest size.
type Priority struct {
	DaysWindow int `toml:"days_window"`
	TopN       int `toml:"top_n"`
}

// Twilio holds WhatsApp delivery credentials. Credentials may also come from
// TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN / TWILIO_FROM / USER_WHATSAPP so they
// stay out of the config file.
type Twilio struct {
	AccountSID     string `toml:"account_sid"`
	AuthToken      string `toml:"auth_token"`
	From           string `toml:"from"` // e.g. whatsapp:+14155238886
	To             string `toml:"to"`   // e.g. whatsapp:+5215512345678
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging controls log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Server   Server   `toml:"server"`
	Storage  Storage  `toml:"storage"`
	Priority Priority `toml:"priority"`
	Twilio   Twilio   `toml:"twilio"`
	Logging  Logging  `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:  Server{Bind: "127.0.0.1:8080"},
		Storage: Storage{DBPath: "planner.db"},
		Priority: Priority{
			DaysWindow: 14,
			TopN:       5,
		},
		Twilio:  Twilio{BaseURL: "https://api.twilio.com", RequestTimeout: 10},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Load reads the config file at path, layering it over the defaults. A missing
// file is not an error; defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to defaults
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		c.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		c.Twilio.AuthToken = v
	}
	if v := os.Getenv("TWILIO_FROM"); v != "" {
		c.Twilio.From = v
	}
	if v := os.Getenv("USER_WHATSAPP"); v != "" {
		c.Twilio.To = v
	}
}

func (c *Config) validate() error {
	if c.Priority.DaysWindow <= 0 {
		return fmt.Errorf("priority.days_window must be positive, got %d", c.Priority.DaysWindow)
	}
	if c.Priority.TopN <= 0 {
		return fmt.Errorf("priority.top_n must be positive, got %d", c.Priority.TopN)
	}
	if c.Storage.DBPath == "" {
		return errors.New("storage.db_path must not be empty")
	}
	return nil
}
