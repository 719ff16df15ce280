package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// trailConfig is the optional trail.toml next to (or above) the code the
// tool runs on. Every field has a usable default; the file may be absent.
type trailConfig struct {
	Check checkConfig `toml:"check"`
	Fix   fixConfig   `toml:"fix"`
}

type checkConfig struct {
	// Skip lists glob patterns of files whose findings are dropped,
	// matched against the full path and the base name.
	Skip []string `toml:"skip"`
	// MaxDiagnostics caps the findings printed per run.
	MaxDiagnostics int `toml:"max-diagnostics"`
}

type fixConfig struct {
	Cache *bool `toml:"cache"`
}

func defaultConfig() trailConfig {
	yes := true
	return trailConfig{
		Check: checkConfig{MaxDiagnostics: 100},
		Fix:   fixConfig{Cache: &yes},
	}
}

// findTrailToml walks upward from startDir toward the filesystem root
// looking for trail.toml.
func findTrailToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "trail.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig merges trail.toml, when present, over the defaults.
func loadConfig(startDir string) (trailConfig, error) {
	cfg := defaultConfig()
	path, ok, err := findTrailToml(startDir)
	if err != nil || !ok {
		return cfg, err
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.Check.MaxDiagnostics < 0 {
		return cfg, fmt.Errorf("%s: [check].max-diagnostics must not be negative", path)
	}
	return cfg, nil
}

func (c trailConfig) fixCacheEnabled() bool {
	return c.Fix.Cache == nil || *c.Fix.Cache
}
