// Package workload drives randomized churn against a slot map and checks it
// against a plain reference model.
package workload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Seed          uint64        `toml:"seed" yaml:"seed"`
	Operations    int           `toml:"operations" yaml:"operations"`
	InitialLive   int           `toml:"initial_live" yaml:"initial_live"`
	ChunkSize     int           `toml:"chunk_size" yaml:"chunk_size"` // elements per chunk, 0 = default byte budget
	Mix           MixConfig     `toml:"mix" yaml:"mix"`
	GraveyardSize int           `toml:"graveyard_size" yaml:"graveyard_size"`
	VerifyEvery   int           `toml:"verify_every" yaml:"verify_every"` // full model sweep interval, 0 disables
	Scene         SceneConfig   `toml:"scene" yaml:"scene"`
	Logging       LoggingConfig `toml:"logging" yaml:"logging"`
}

// MixConfig weights the operations the runner picks from.
type MixConfig struct {
	Insert int `toml:"insert" yaml:"insert"`
	Remove int `toml:"remove" yaml:"remove"`
	Get    int `toml:"get" yaml:"get"`
	Stale  int `toml:"stale" yaml:"stale"` // lookups through removed handles
}

func (m MixConfig) total() int { return m.Insert + m.Remove + m.Get + m.Stale }

// SceneConfig sizes the ecs frame workload.
type SceneConfig struct {
	Entities    int `toml:"entities" yaml:"entities"`
	Frames      int `toml:"frames" yaml:"frames"`
	MaxLifetime int `toml:"max_lifetime" yaml:"max_lifetime"` // frames before an entity is replaced
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Seed:          1,
		Operations:    1_000_000,
		InitialLive:   10_000,
		Mix:           MixConfig{Insert: 35, Remove: 30, Get: 30, Stale: 5},
		GraveyardSize: 4096,
		VerifyEvery:   100_000,
		Scene: SceneConfig{
			Entities:    10_000,
			Frames:      600,
			MaxLifetime: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Defaults()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Operations <= 0 {
		errs = append(errs, errors.New("operations must be positive"))
	}
	if c.InitialLive < 0 {
		errs = append(errs, errors.New("initial_live must not be negative"))
	}
	if c.ChunkSize < 0 {
		errs = append(errs, errors.New("chunk_size must not be negative"))
	}
	if c.Mix.Insert < 0 || c.Mix.Remove < 0 || c.Mix.Get < 0 || c.Mix.Stale < 0 {
		errs = append(errs, errors.New("mix weights must not be negative"))
	} else if c.Mix.total() == 0 {
		errs = append(errs, errors.New("mix weights must not all be zero"))
	}
	if c.GraveyardSize < 0 {
		errs = append(errs, errors.New("graveyard_size must not be negative"))
	}
	if c.VerifyEvery < 0 {
		errs = append(errs, errors.New("verify_every must not be negative"))
	}
	if c.Scene.Entities < 0 {
		errs = append(errs, errors.New("scene.entities must not be negative"))
	}
	if c.Scene.Frames <= 0 {
		errs = append(errs, errors.New("scene.frames must be positive"))
	}
	if c.Scene.MaxLifetime <= 0 {
		errs = append(errs, errors.New("scene.max_lifetime must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid workload config: %w", err)
	}
	return nil
}
