package http

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

type yamlConfig struct {
	HTTP struct {
		Address        string `yaml:"address"`
		Debug          bool   `yaml:"debug"`
		Cors           bool   `yaml:"cors"`
		MaxConcurrent  int    `yaml:"maxConcurrent"`
		RequestTimeout string `yaml:"requestTimeout"`
		StaticLink     []struct {
			SrcPath string `yaml:"srcPath"`
			DstPath string `yaml:"dstPath"`
		} `yaml:"staticLink"`
		PrefixLink []struct {
			SrcPrefix string `yaml:"srcPrefix"`
			DstPrefix string `yaml:"dstPrefix"`
		} `yaml:"prefixLink"`
	} `yaml:"http"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	var timeout time.Duration
	if cfg.HTTP.RequestTimeout != "" {
		d, err := time.ParseDuration(cfg.HTTP.RequestTimeout)
		if err != nil {
			return nil, err
		}
		timeout = d
	}

	return HttpOption(func(o *Options) {
		if cfg.HTTP.Address != "" {
			o.Address = cfg.HTTP.Address
		}
		o.DebugMode = cfg.HTTP.Debug
		o.CorsMode = cfg.HTTP.Cors
		if cfg.HTTP.MaxConcurrent > 0 {
			o.MaxConcurrent = cfg.HTTP.MaxConcurrent
		}
		if timeout > 0 {
			o.RequestTimeout = timeout
		}

		for _, link := range cfg.HTTP.StaticLink {
			if link.SrcPath == "" || link.DstPath == "" {
				continue
			}
			o.StaticLinkMap[link.SrcPath] = link.DstPath
		}
		for _, link := range cfg.HTTP.PrefixLink {
			if link.SrcPrefix == "" || link.DstPrefix == "" {
				continue
			}
			o.PrefixLinkMap[link.SrcPrefix] = link.DstPrefix
		}
	}), nil
}

// WithConfig parses YAML bytes following http.yaml structure and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return HttpOption(func(*Options) {
			panic(fmt.Errorf("http.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return HttpOption(func(*Options) {
			panic(fmt.Errorf("http.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
