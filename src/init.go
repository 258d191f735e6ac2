package main

import (
	"fmt"

	"github.com/facetrace/cli/src/paths"
)

// InitCLI prepares the environment once the configuration is loaded:
// directories first, then logging.
func InitCLI(debug bool) error {
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("init directories: %w", err)
	}

	if err := InitLogging(debug); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	return nil
}
