package batidiff

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	yaml "gopkg.in/yaml.v2"
)

const (
	UnitsMeters  = "meters"
	UnitsDegrees = "degrees"
)

var ErrInvalidConfig = errors.New("Invalid configuration")

type Config struct {
	// Below this distance two buildings are the same building.
	MinIdenticalDistance float64 `yaml:"min_identical_distance"`

	// Above this distance two buildings can't be the same building.
	MaxMatchDistance float64 `yaml:"max_match_distance"`

	// Unit of both distances above, meters or degrees.
	Units string `yaml:"units"`

	MaxZones int `yaml:"max_zones"`
	Workers  int `yaml:"workers"`
}

func NewConfig() *Config {
	return &Config{
		MinIdenticalDistance: 1.0,
		MaxMatchDistance:     10.0,
		Units:                UnitsMeters,
		MaxZones:             HardZoneLimit,
		Workers:              runtime.NumCPU(),
	}
}

func ReadConfig(filename string) (*Config, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ParseConfig(fp)
}

// ParseConfig reads a YAML configuration on top of the defaults.
func ParseConfig(in io.Reader) (*Config, error) {
	c := NewConfig()
	err := yaml.NewDecoder(in).Decode(c)
	if err != nil && err != io.EOF {
		return nil, err
	}

	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.Units {
	case UnitsMeters, UnitsDegrees:
	case "":
		c.Units = UnitsMeters
	default:
		return fmt.Errorf("%w: unknown units %q", ErrInvalidConfig, c.Units)
	}

	if c.MinIdenticalDistance <= 0 {
		return fmt.Errorf("%w: min_identical_distance must be positive", ErrInvalidConfig)
	}
	if c.MaxMatchDistance <= c.MinIdenticalDistance {
		return fmt.Errorf("%w: max_match_distance (%g) must exceed min_identical_distance (%g)", ErrInvalidConfig, c.MaxMatchDistance, c.MinIdenticalDistance)
	}
	if c.MaxZones < 0 {
		return fmt.Errorf("%w: max_zones can't be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) toMeters(d float64) float64 {
	if c.Units == UnitsDegrees {
		return DegreesToMeters(d)
	}
	return d
}

// MinDistance is MinIdenticalDistance in meters.
func (c *Config) MinDistance() float64 {
	return c.toMeters(c.MinIdenticalDistance)
}

// MaxDistance is MaxMatchDistance in meters.
func (c *Config) MaxDistance() float64 {
	return c.toMeters(c.MaxMatchDistance)
}

// provisional is the label used for tag carry-over while matching.
func (c *Config) provisional(d float64) Status {
	switch {
	case d < c.MinDistance():
		return StatusUnchanged
	case d < c.MaxDistance():
		return StatusModified
	default:
		return StatusUnknown
	}
}
