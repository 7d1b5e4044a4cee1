package commands

import (
	utilsenv "github.com/slok/tsk/internal/utils/env"
)

// parseEnvSpecs turns repeatable --env flag values into an environment map.
// Accepts KEY=VALUE pairs and bare KEY names inherited from the current
// environment.
func parseEnvSpecs(specs []string) (map[string]string, error) {
	return utilsenv.ParseSpecs(specs)
}
