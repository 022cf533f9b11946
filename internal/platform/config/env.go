// Package config holds the small helpers every command entry point shares
// for loading settings and reporting fatal startup failures.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from the environment variables named in its struct
// tags. Flag registration runs afterwards, so flags win over the
// environment.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
