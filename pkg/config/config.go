package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eigerco/lmdbdown/pkg/db"
	"github.com/eigerco/lmdbdown/pkg/db/lmdb"
	"github.com/eigerco/lmdbdown/pkg/db/pebble"
	"github.com/eigerco/lmdbdown/pkg/log"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

const ErrLoadConfig = "config: load %s: %w"

// Config is the file-level configuration of a store.
type Config struct {
	Path   string     `yaml:"path"`
	Engine string     `yaml:"engine"`
	Log    Log        `yaml:"log"`
	Store  db.Options `yaml:"store"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine: "lmdb",
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf(ErrLoadConfig, path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf(ErrLoadConfig, path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidConfig)
	}
	if _, err := EngineByName(c.Engine); err != nil {
		return err
	}
	if _, err := c.LogOptions(); err != nil {
		return err
	}
	return nil
}

// LogOptions converts the log section for log.Init.
func (c Config) LogOptions() (log.Options, error) {
	level, err := log.ParseLogLevel(c.Log.Level)
	if err != nil {
		return log.Options{}, fmt.Errorf("%w: log level: %w", ErrInvalidConfig, err)
	}
	typ, err := log.ParseLoggerType(c.Log.Format)
	if err != nil {
		return log.Options{}, fmt.Errorf("%w: log format: %w", ErrInvalidConfig, err)
	}
	return log.Options{LogLevel: level, Type: typ}, nil
}

// EngineByName returns the engine binding registered under name.
func EngineByName(name string) (db.Engine, error) {
	switch name {
	case "lmdb":
		return lmdb.Engine{}, nil
	case "pebble":
		return pebble.Engine{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrInvalidConfig, name)
	}
}
