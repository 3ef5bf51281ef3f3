package env

import (
	"os"
	"strings"

	"github.com/genarabia-ai/dialect-tts/internal/envvar"
)

// Environment is the runtime environment of the process.
type Environment string

const (
	// Development is the default environment.
	Development Environment = "development"

	// Production enables JSON logging and info-level output.
	Production Environment = "production"
)

// FromEnv resolves the environment from DIALECT_TTS_ENV.
func FromEnv() Environment {
	switch strings.ToLower(os.Getenv(envvar.DialectTTSEnv)) {
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// IsProduction reports whether the environment is production.
func (e Environment) IsProduction() bool {
	return e == Production
}
