package dev

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

type yamlDevConfig struct {
	Dev struct {
		Dir      string `yaml:"dir"`
		Debounce string `yaml:"debounce"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"dev"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlDevConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	var debounce time.Duration
	if cfg.Dev.Debounce != "" {
		d, err := time.ParseDuration(cfg.Dev.Debounce)
		if err != nil {
			return nil, err
		}
		debounce = d
	}

	return OptionFunc(func(o *Options) {
		if cfg.Dev.Dir != "" {
			o.Dir = cfg.Dev.Dir
		}
		if debounce > 0 {
			o.Debounce = debounce
		}
		o.DebugMode = cfg.Dev.Debug
	}), nil
}

// WithConfig parses YAML bytes following dev.yml structure and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("dev.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("dev.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
