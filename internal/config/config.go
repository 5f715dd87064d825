// Package config resolves server settings from the environment and an
// optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sportsracer/repman/internal/hub"
	"github.com/sportsracer/repman/internal/world"
	"github.com/sportsracer/repman/logging"
)

const (
	EnvAddr         = "REPMAN_ADDR"
	EnvPort         = "PORT"
	EnvTickInterval = "REPMAN_TICK_INTERVAL"
	EnvWorldSeed    = "REPMAN_WORLD_SEED"
	EnvTopFlopCount = "REPMAN_TOPFLOP_COUNT"
	EnvRespawnDelay = "REPMAN_RESPAWN_DELAY"
	EnvLogJSONPath  = "REPMAN_LOG_JSON_PATH"
	EnvLogLevel     = "REPMAN_LOG_LEVEL"
)

const DefaultAddr = ":8888"

// ErrInvalid marks every validation failure returned by Load.
var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Addr         string
	TickInterval time.Duration
	WorldSeed    string
	TopFlopCount int
	RespawnDelay time.Duration
	LogJSONPath  string
	LogLevel     logging.Severity
}

func Default() Config {
	worldCfg := world.DefaultConfig()
	return Config{
		Addr:         DefaultAddr,
		TickInterval: hub.DefaultTickInterval,
		WorldSeed:    worldCfg.Seed,
		TopFlopCount: worldCfg.TopFlopCount,
		RespawnDelay: worldCfg.RespawnDelay,
		LogLevel:     logging.SeverityInfo,
	}
}

// LookupFunc reads one variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads dotenv files (".env" when none are named) and then the process
// environment, which wins over file values. Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	fileValues := make(map[string]string)
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range values {
			if _, exists := fileValues[k]; !exists {
				fileValues[k] = v
			}
		}
	}
	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileValues[key]
		return v, ok
	})
}

// FromLookup builds a Config from defaults overridden by lookup. All invalid
// values are reported together.
func FromLookup(lookup LookupFunc) (Config, error) {
	cfg := Default()
	var errs []error

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAddr); ok {
		cfg.Addr = v
	} else if port, ok := get(EnvPort); ok {
		cfg.Addr = ":" + port
	}
	if v, ok := get(EnvTickInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, invalid(EnvTickInterval, v, "positive duration"))
		} else {
			cfg.TickInterval = d
		}
	}
	if v, ok := get(EnvWorldSeed); ok {
		cfg.WorldSeed = v
	}
	if v, ok := get(EnvTopFlopCount); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, invalid(EnvTopFlopCount, v, "non-negative integer"))
		} else {
			cfg.TopFlopCount = n
		}
	}
	if v, ok := get(EnvRespawnDelay); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			errs = append(errs, invalid(EnvRespawnDelay, v, "non-negative duration"))
		} else {
			cfg.RespawnDelay = d
		}
	}
	if v, ok := get(EnvLogJSONPath); ok {
		cfg.LogJSONPath = v
	}
	if v, ok := get(EnvLogLevel); ok {
		severity, err := logging.ParseSeverity(v)
		if err != nil {
			errs = append(errs, invalid(EnvLogLevel, v, "debug, info, warn or error"))
		} else {
			cfg.LogLevel = severity
		}
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func invalid(key, value, want string) error {
	return fmt.Errorf("%w: %s=%q, want %s", ErrInvalid, key, value, want)
}

// World returns the world construction settings. A zero respawn delay
// falls back to the world default.
func (c Config) World() world.Config {
	cfg := world.DefaultConfig()
	cfg.Seed = c.WorldSeed
	cfg.TopFlopCount = c.TopFlopCount
	cfg.RespawnDelay = c.RespawnDelay
	return cfg
}

// Logging returns the router settings for this configuration.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = c.LogLevel
	if c.LogJSONPath != "" {
		cfg.EnabledSinks = append(cfg.EnabledSinks, "json")
		cfg.JSON.FilePath = c.LogJSONPath
	}
	return cfg
}
