// Package config loads a `.noorc.yaml` project file (spec.md's ambient
// Configuration component): default search paths for import resolution
// and default granted effects for the REPL prompt. Grounded on the
// teacher's internal/eval_harness/spec.go, which parses its own YAML
// spec format with the same gopkg.in/yaml.v3 library.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// Config is the shape of a `.noorc.yaml` file.
type Config struct {
	SearchPaths []string `yaml:"searchPaths"`
	Effects     []string `yaml:"effects"`
}

// Load looks for `.noorc.yaml` in the current directory, then in
// $HOME, returning a zero-value Config (no error) if neither exists —
// the file is optional.
func Load() (*Config, error) {
	candidates := []string{}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, ".noorc.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".noorc.yaml"))
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		cfg := &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return &Config{}, nil
}

// EffectSet converts the configured effect names into a types.EffectSet,
// silently ignoring names outside spec.md's fixed vocabulary — an
// unrecognized effect in a hand-edited .noorc.yaml shouldn't crash the
// REPL's startup.
func (c *Config) EffectSet() types.EffectSet {
	known := map[string]types.Effect{
		"log": types.Log, "read": types.Read, "write": types.Write,
		"state": types.State, "time": types.Time, "rand": types.Rand,
		"ffi": types.FFI, "async": types.Async,
	}
	out := types.EmptyEffects()
	for _, name := range c.Effects {
		if eff, ok := known[name]; ok {
			out = out.Union(types.NewEffects(eff))
		}
	}
	return out
}
