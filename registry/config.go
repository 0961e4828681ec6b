package registry

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlRegistryConfig struct {
	Registry struct {
		Dir    string `yaml:"dir"`
		Static []struct {
			Name string `yaml:"name"`
			Path string `yaml:"path"`
		} `yaml:"static"`
		Alias []struct {
			Src string `yaml:"src"`
			Dst string `yaml:"dst"`
		} `yaml:"alias"`
	} `yaml:"registry"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlRegistryConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return OptionFunc(func(o *Options) {
		if cfg.Registry.Dir != "" {
			o.Dir = cfg.Registry.Dir
		}
		for _, s := range cfg.Registry.Static {
			if s.Name == "" || s.Path == "" {
				continue
			}
			o.StaticFunctions[s.Name] = s.Path
		}
		for _, a := range cfg.Registry.Alias {
			if a.Src == "" || a.Dst == "" {
				continue
			}
			o.AliasMap[a.Src] = a.Dst
		}
	}), nil
}

// WithConfig parses YAML bytes following registry.yaml structure and applies
// it to Options. It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("registry.WithConfig: %w", err))
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
			panic(fmt.Errorf("registry.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
