// Package config reads server configuration from flags with environment
// fallback. A .env file in the working directory is honored when present.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the server's entire external configuration surface.
type Config struct {
	Port       int
	MinPlayers int
	MaxPlayers int
	ServerName string
	DBPath     string
	LogLevel   string
}

// Load parses flags on top of environment defaults. Call once from main.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load() // optional; absence is fine

	cfg := &Config{}
	fs := flag.NewFlagSet("hexfront-server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", envInt("HEXFRONT_PORT", 8080), "listen port")
	fs.IntVar(&cfg.MinPlayers, "min-players", envInt("HEXFRONT_MIN_PLAYERS", 2), "minimum party size")
	fs.IntVar(&cfg.MaxPlayers, "max-players", envInt("HEXFRONT_MAX_PLAYERS", 6), "maximum party size")
	fs.StringVar(&cfg.ServerName, "name", envStr("HEXFRONT_NAME", "hexfront"), "server display name")
	fs.StringVar(&cfg.DBPath, "db", envStr("HEXFRONT_DB", "data/hexfront.db"), "match archive path")
	fs.StringVar(&cfg.LogLevel, "log-level", envStr("HEXFRONT_LOG_LEVEL", "info"), "zap log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.MinPlayers < 1 {
		return nil, fmt.Errorf("min players must be at least 1, got %d", cfg.MinPlayers)
	}
	if cfg.MaxPlayers < cfg.MinPlayers {
		return nil, fmt.Errorf("max players (%d) below min players (%d)", cfg.MaxPlayers, cfg.MinPlayers)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
