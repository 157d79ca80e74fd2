package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Environment holds the settings which can be overridden from the
// environment.
type Environment struct {
	Config   string `env:"JPETGEN_CONFIG"`
	Seed     uint64 `env:"JPETGEN_SEED"`
	Workers  int    `env:"JPETGEN_WORKERS"`
	Events   int    `env:"JPETGEN_EVENTS"`
	LogLevel string `env:"JPETGEN_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ReadEnvironment reads the JPETGEN_* variables.
func ReadEnvironment() (Environment, error) {
	var e Environment
	err := ParseEnv(&e)
	return e, err
}

// Override replaces the parameters of the [Generator] section which are set
// in e.
func (wrap *Wrapper) Override(e Environment) {
	if e.Seed != 0 {
		wrap.Generator.Seed = e.Seed
	}
	if e.Workers != 0 {
		wrap.Generator.Workers = e.Workers
	}
	if e.Events != 0 {
		wrap.Generator.Events = e.Events
	}
}
