package invoke

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// yamlInvokeConfig represents the YAML configuration structure for the
// invoke module.
type yamlInvokeConfig struct {
	Mode struct {
		Debug bool `yaml:"debug"`
	} `yaml:"mode"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlInvokeConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Mode.Debug
	}), nil
}

// WithConfig parses YAML bytes following invoke.yml structure and applies it
// to Options. It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("invoke.WithConfig: %w", err))
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
			panic(fmt.Errorf("invoke.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
