package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read into Config, e.g.
// UPLOAD_S3_BUCKET.
const EnvPrefix = "UPLOAD"

// dotEnvFiles are loaded, when present, before the environment is read.
// Variables already set in the process environment win.
var dotEnvFiles = []string{".env"}

// parseEnv overlays UPLOAD_* environment variables onto config. Unset
// variables leave the current value untouched.
func parseEnv(config *Config) error {
	for _, f := range dotEnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}
