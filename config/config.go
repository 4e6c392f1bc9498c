package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// Config holds all configurable server parameters.
type Config struct {
	WSPort            int    `json:"ws_port"`
	MaxNameLength     int    `json:"max_name_length"`
	MaxPlayers        int    `json:"max_players"`
	DefaultDifficulty string `json:"default_difficulty"`
	StaticDir         string `json:"static_dir"`

	// DatabaseURL enables the optional Postgres match-history store when set.
	// Env only (DATABASE_URL); never read from config.json.
	DatabaseURL string `json:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		WSPort:            8080,
		MaxNameLength:     24,
		MaxPlayers:        2,
		DefaultDifficulty: "easy",
		StaticDir:         "static",
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	// Try to load from config.json
	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	// Environment variable overrides
	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.MaxPlayers, "MAX_PLAYERS")
	overrideString(&cfg.DefaultDifficulty, "DEFAULT_DIFFICULTY")
	overrideString(&cfg.StaticDir, "STATIC_DIR")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
