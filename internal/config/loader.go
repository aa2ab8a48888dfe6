package config

import (
	"fmt"
	"os"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables.
// Order of precedence (low -> high):
//  1. defaults (Default())
//  2. file (YAML), from path or DOCSCORE_CONFIG
//  3. env (prefix DOCSCORE_)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("DOCSCORE_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// DOCSCORE_THRESHOLDS_PARAGRAPH_WORDS -> thresholds.paragraph_words
	envProvider := env.Provider("DOCSCORE_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "DOCSCORE_"))
		parts := strings.SplitN(s, "_", 2)
		if len(parts) == 2 {
			switch parts[0] {
			case "thresholds", "weights", "semantic", "cache":
				return parts[0] + "." + parts[1]
			}
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading env config: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch reloads the config whenever the file changes and hands a fresh
// snapshot to onChange. Only weights and thresholds take effect on
// running engines; callers re-invoke the engine with the new snapshot
// rather than mutating a shared one.
func Watch(path string, onChange func(*Config)) error {
	if path == "" {
		return fmt.Errorf("config watch requires a file path")
	}
	f := file.Provider(path)
	return f.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		cfg, loadErr := Load(path)
		if loadErr != nil {
			return
		}
		onChange(cfg)
	})
}

func (c *Config) validate() error {
	t := c.Thresholds
	if t.ParagraphWords <= 0 {
		return fmt.Errorf("thresholds.paragraph_words must be positive")
	}
	if t.IdealListRatio <= 0 || t.IdealListRatio > 1 {
		return fmt.Errorf("thresholds.ideal_list_ratio must be in (0,1]")
	}
	for id, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("weights.%s must not be negative", id)
		}
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive")
	}
	return nil
}
