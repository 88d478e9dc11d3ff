package config

import (
	"os"
	"strings"
)

// loadFromEnv overrides config from TASKMGR_* environment variables.
// Empty variables are ignored.
func loadFromEnv(cfg *Config) error {
	for _, f := range fields {
		v, ok := os.LookupEnv(f.env)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := f.set(cfg, strings.TrimSpace(v)); err != nil {
			return err
		}
		cfg.Sources[f.key] = SourceEnv
	}
	return nil
}
