// Package config loads CLI settings from the environment and optional .env files.
package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig wraps failures to read the environment into Config.
var ErrParsingConfig = errors.New("config: failed to parse environment")

// Config holds the defaults of the constraintcheck command. Flags override them.
type Config struct {
	LogLevel    string `env:"CONSTRAINT_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"CONSTRAINT_LOG_FORMAT" envDefault:"text"`
	Lang        string `env:"CONSTRAINT_LANG" envDefault:"en"`
	UnionPolicy string `env:"CONSTRAINT_UNION_POLICY" envDefault:"unsupported"`
	Duplicates  string `env:"CONSTRAINT_DUPLICATE_KEYS" envDefault:"error"`
	MaxDepth    int    `env:"CONSTRAINT_MAX_DEPTH" envDefault:"128"`
	MaxBytes    int64  `env:"CONSTRAINT_MAX_BYTES" envDefault:"0"`
}

// Load reads the given .env files (or ./.env when none are named, ignoring its
// absence) and parses the environment into a Config.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, err
	}
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return c, nil
}
