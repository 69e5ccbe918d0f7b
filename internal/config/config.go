// Package config loads a run description from YAML with environment
// overrides layered on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/eval"
	"github.com/danielpatrickdp/paretoq/internal/fronts"
	"github.com/danielpatrickdp/paretoq/internal/gridworld"
	"github.com/danielpatrickdp/paretoq/internal/learner"
	"github.com/danielpatrickdp/paretoq/internal/logging"
	"github.com/danielpatrickdp/paretoq/internal/lp"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Environment overrides.
const (
	EnvDB       = "PARETOQ_DB"
	EnvLogLevel = "PARETOQ_LOG_LEVEL"
	EnvLP       = "PARETOQ_LP"
	EnvEpisodes = "PARETOQ_EPISODES"
	EnvSeed     = "PARETOQ_SEED"
)

// #region types
// ReferenceFront is a known optimal solution set for one world. A nil Env
// means the config's own world.
type ReferenceFront struct {
	Env   *gridworld.Config `yaml:"env,omitempty"`
	Front string            `yaml:"front" validate:"required"`
}

// Config is everything a run needs.
type Config struct {
	Env     gridworld.Config `yaml:"env"`
	Learner learner.Config   `yaml:"learner"`
	Run     driver.Config    `yaml:"run"`
	Eval    eval.EvalConfig  `yaml:"eval"`
	Log     logging.Config   `yaml:"log"`

	Seed  uint64 `yaml:"seed"`
	Seeds int    `yaml:"seeds" validate:"gte=1"` // independent runs from Seed upward

	LP          string `yaml:"lp" validate:"required"`
	DBPath      string `yaml:"db_path"`
	GlueAddr    string `yaml:"glue_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	References []ReferenceFront `yaml:"references" validate:"dive"`
}

// #endregion types

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Env:      gridworld.DefaultConfig(),
		Learner:  learner.DefaultConfig(),
		Run:      driver.DefaultConfig(),
		Eval:     eval.DefaultEvalConfig(),
		Log:      logging.DefaultConfig(),
		Seed:     1,
		Seeds:    1,
		LP:       lp.SimplexName,
		DBPath:   "paretoq.db",
		GlueAddr: "localhost:50071",
	}
}

// #region load
// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file leaves the defaults in place; an
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := Decode(data, &cfg); err != nil {
				return Config{}, err
			}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode unmarshals YAML into cfg, rejecting unknown keys.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the PARETOQ_* variables visible through
// lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDB); ok {
		c.DBPath = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLP); ok {
		c.LP = v
	}
	if v, ok := lookup(EnvEpisodes); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvEpisodes, v, err)
		}
		c.Run.Episodes = n
	}
	if v, ok := lookup(EnvSeed); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvSeed, v, err)
		}
		c.Seed = n
	}
	return nil
}

// #endregion load

// #region validate
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and the constraints that span fields.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Env.Validate(); err != nil {
		return fmt.Errorf("%w: env: %v", ErrInvalid, err)
	}
	if !slices.Contains(lp.Backends(), c.LP) {
		return fmt.Errorf("%w: lp backend %q not in %v", ErrInvalid, c.LP, lp.Backends())
	}
	if n := len(c.Learner.Weights); n > 0 && n != c.Env.Objectives() {
		return fmt.Errorf("%w: %d learner weights for %d objectives", ErrInvalid, n, c.Env.Objectives())
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// #endregion validate

// Registry builds the reference-front registry.
func (c Config) Registry() (*fronts.Registry, error) {
	reg := fronts.NewRegistry()
	for i, r := range c.References {
		env := c.Env
		if r.Env != nil {
			env = *r.Env
		}
		if err := reg.RegisterText(env, r.Front); err != nil {
			return nil, fmt.Errorf("%w: reference %d: %v", ErrInvalid, i, err)
		}
	}
	return reg, nil
}
