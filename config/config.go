// Package config holds the settings of a lifting run. Settings are read
// from a YAML file, then overridden by command-line flags.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/a1880/matrix-multiplication/direct"
	"github.com/a1880/matrix-multiplication/lift"
)

// Strategies.
const (
	StrategyLift   = "lift"
	StrategyDirect = "direct"
)

// Config is the configuration of a run.
type Config struct {
	Strategy string `yaml:"strategy" validate:"oneof=lift direct"`
	Search   Search `yaml:"search"`
	Direct   Direct `yaml:"direct"`
	// Beautify rearranges the signs of each product of the result.
	Beautify bool    `yaml:"beautify"`
	Log      Log     `yaml:"log"`
	Archive  Archive `yaml:"archive"`
	// Output is the path of the resulting Bini file. Empty means stdout.
	Output string `yaml:"output"`
	// Timeout bounds a whole lifting run. 0 means no timeout.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// Search configures the tiered null space search.
type Search struct {
	Tiers         []int `yaml:"tiers" validate:"min=1,dive,gte=1,lte=16"`
	Workers       int   `yaml:"workers" validate:"gte=0"`
	ProgressEvery int   `yaml:"progress_every" validate:"gte=0"`
}

// Direct configures the direct strategy.
type Direct struct {
	Backend string `yaml:"backend" validate:"oneof=maxsat gini pb bf"`
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level" validate:"oneof=trace debug info warn warning error"`
}

// Archive configures the solution archive. It is disabled without a path.
type Archive struct {
	Path string `yaml:"path"`
	// Force lifts schemes even when they are archived already.
	Force bool `yaml:"force"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Strategy: StrategyLift,
		Search: Search{
			Tiers:         append([]int(nil), lift.DefaultTiers...),
			ProgressEvery: 10,
		},
		Direct: Direct{Backend: direct.BackendMaxSAT},
		Log:    Log{Level: "info"},
	}
}

var validate = validator.New()

// Validate checks every field of c.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: invalid value %v (%s)", fe.Namespace(), fe.Value(), fe.Tag())
			}
			return errors.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
		}
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Load reads the YAML file at path over the default configuration and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read configuration %q", path)
	}
	return Parse(data)
}

// Parse reads YAML data over the default configuration and validates the
// result. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "could not parse configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// LiftOptions returns the search options of c.
func (c *Config) LiftOptions(log logrus.FieldLogger) lift.Options {
	return lift.Options{
		Tiers:         c.Search.Tiers,
		Workers:       c.Search.Workers,
		ProgressEvery: c.Search.ProgressEvery,
		Log:           log,
	}
}
