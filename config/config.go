package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Relay
	Port       int    `env:"PORT" default:"3000"`
	MaxPlayers int    `env:"MAX_PLAYERS" default:"0"`
	SendBuffer int    `env:"SEND_BUFFER" default:"256"`
	StaticDir  string `env:"STATIC_DIR"`

	// Inbound frames per second per connection; 0 disables the limit.
	NoteRate  float64 `env:"NOTE_RATE" default:"0"`
	NoteBurst int     `env:"NOTE_BURST" default:"60"`

	// Client endpoints
	LocalURL  string `env:"RELAY_LOCAL_URL" default:"ws://localhost:3000"`
	RemoteURL string `env:"RELAY_REMOTE_URL" default:"wss://assignment-4-xv6l.onrender.com"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	c := &Config{}
	var err error
	if c.Port, err = envInt("PORT", 3000); err != nil {
		return nil, err
	}
	if c.MaxPlayers, err = envInt("MAX_PLAYERS", 0); err != nil {
		return nil, err
	}
	if c.SendBuffer, err = envInt("SEND_BUFFER", 256); err != nil {
		return nil, err
	}
	if c.NoteRate, err = envFloat("NOTE_RATE", 0); err != nil {
		return nil, err
	}
	if c.NoteBurst, err = envInt("NOTE_BURST", 60); err != nil {
		return nil, err
	}
	c.StaticDir = envString("STATIC_DIR", "")
	c.LocalURL = envString("RELAY_LOCAL_URL", "ws://localhost:3000")
	c.RemoteURL = envString("RELAY_REMOTE_URL", "wss://assignment-4-xv6l.onrender.com")
	c.LogLevel = strings.ToLower(envString("LOG_LEVEL", "info"))
	c.LogFormat = strings.ToLower(envString("LOG_FORMAT", "text"))
	return c, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number value for %s: %w", key, err)
	}
	return f, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}
	if c.MaxPlayers < 0 {
		problems = append(problems, "MAX_PLAYERS must not be negative")
	}
	if c.NoteRate < 0 {
		problems = append(problems, "NOTE_RATE must not be negative")
	}
	if c.NoteRate > 0 && c.NoteBurst < 1 {
		problems = append(problems, "NOTE_BURST must be positive when NOTE_RATE is set")
	}
	if c.SendBuffer < 1 {
		problems = append(problems, "SEND_BUFFER must be positive")
	}
	if !contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	if !contains([]string{"text", "json"}, c.LogFormat) {
		problems = append(problems, "LOG_FORMAT must be one of: text, json")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
