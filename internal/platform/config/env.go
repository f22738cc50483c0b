package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv populates target from the environment variables named in its
// `env` struct tags, applying any `envDefault` values first.
func ParseEnv[T any](target *T) error {
	if target == nil {
		return errors.New("config target is required")
	}
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse environment config: %w", err)
	}
	return nil
}
