// Package config holds the process-level helpers the emergence commands share:
// environment overlays, key=value argument lists and fatal exits.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv overlays UNIVERSE_* style variables onto target, which must be a
// pointer to a struct with env tags. Nested structs are walked using their
// envPrefix. Unset variables leave the existing field values alone, so
// defaults are filled in before the call and flags are applied after it.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env for %T: %w", target, err)
	}
	return nil
}
