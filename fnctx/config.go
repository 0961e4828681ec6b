package fnctx

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

type yamlContextConfig struct {
	Context struct {
		AllowEnv        []string `yaml:"allowEnv"`
		DefaultDeadline string   `yaml:"defaultDeadline"`
	} `yaml:"context"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlContextConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	var deadline time.Duration
	if cfg.Context.DefaultDeadline != "" {
		d, err := time.ParseDuration(cfg.Context.DefaultDeadline)
		if err != nil {
			return nil, err
		}
		deadline = d
	}

	return OptionFunc(func(o *Options) {
		if len(cfg.Context.AllowEnv) > 0 {
			o.AllowedEnvKeys = append([]string{}, cfg.Context.AllowEnv...)
		}
		if deadline > 0 {
			o.DefaultDeadline = deadline
		}
	}), nil
}

// WithConfig parses YAML bytes following context.yaml structure and applies
// it to Options. It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("fnctx.WithConfig: %w", err))
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
			panic(fmt.Errorf("fnctx.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
