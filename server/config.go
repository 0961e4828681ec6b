package server

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"

	"github.com/Blauerdrache/fnserve/fnctx"
	"github.com/Blauerdrache/fnserve/http"
	"github.com/Blauerdrache/fnserve/invoke"
	"github.com/Blauerdrache/fnserve/registry"
	"github.com/Blauerdrache/fnserve/sqs"
)

type yamlServerConfig struct {
	Server   string `yaml:"server"`
	HTTP     any    `yaml:"http"`
	SQS      any    `yaml:"sqs"`
	Registry any    `yaml:"registry"`
	Context  any    `yaml:"context"`
	Invoke   any    `yaml:"invoke"`
}

type Option interface {
	Apply(*Options)
}

type Options struct {
	ServerType string
	Http       []http.Option
	Sqs        []sqs.ServeOption
	Invoke     []invoke.Option
	Registry   []registry.Option
	Fnctx      []fnctx.Option
}

// HttpServeOptions flattens the option groups into the http serve bag.
func (o *Options) HttpServeOptions() []http.ServeOption {
	var opts []http.ServeOption
	for _, opt := range o.Http {
		opts = append(opts, opt)
	}
	for _, opt := range o.Invoke {
		opts = append(opts, opt)
	}
	for _, opt := range o.Registry {
		opts = append(opts, opt)
	}
	for _, opt := range o.Fnctx {
		opts = append(opts, opt)
	}
	return opts
}

type serveOptionFunc func(*Options)

func (f serveOptionFunc) Apply(o *Options) { f(o) }

// WithServerType forces a front door regardless of config.
func WithServerType(serverType string) Option {
	return serveOptionFunc(func(o *Options) {
		o.ServerType = serverType
	})
}

// WithFunctionsDir points the registry at a handler directory.
func WithFunctionsDir(dir string) Option {
	return serveOptionFunc(func(o *Options) {
		o.Registry = append(o.Registry, registry.WithDir(dir))
	})
}

// WithHttpOption forwards an option to the HTTP front door.
func WithHttpOption(opt http.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Http = append(o.Http, opt)
	})
}

// WithInvokeOption forwards an option to the orchestrator.
func WithInvokeOption(opt invoke.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Invoke = append(o.Invoke, opt)
	})
}

type serveConfigOption struct {
	serverType  string
	httpOpt     http.Option
	sqsOpt      sqs.Option
	registryOpt registry.Option
	fnctxOpt    fnctx.Option
	invokeOpt   invoke.Option
}

func (o serveConfigOption) Apply(opts *Options) {
	if o.serverType != "" {
		opts.ServerType = o.serverType
	}
	if o.httpOpt != nil {
		opts.Http = append(opts.Http, o.httpOpt)
	}
	if o.sqsOpt != nil {
		opts.Sqs = append(opts.Sqs, o.sqsOpt)
	}
	if o.registryOpt != nil {
		opts.Registry = append(opts.Registry, o.registryOpt)
	}
	if o.fnctxOpt != nil {
		opts.Fnctx = append(opts.Fnctx, o.fnctxOpt)
	}
	if o.invokeOpt != nil {
		opts.Invoke = append(opts.Invoke, o.invokeOpt)
	}
}

// WithServeConfig parses YAML bytes following fnserve.yml structure.
func WithServeConfig(yamlBytes []byte) Option {
	var cfg yamlServerConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	}

	opt := serveConfigOption{serverType: cfg.Server}

	if cfg.HTTP != nil {
		opt.httpOpt = http.WithConfig(section("http", cfg.HTTP))
	}
	if cfg.SQS != nil {
		opt.sqsOpt = sqs.WithConfig(section("", cfg.SQS))
	}
	if cfg.Registry != nil {
		opt.registryOpt = registry.WithConfig(section("registry", cfg.Registry))
	}
	if cfg.Context != nil {
		opt.fnctxOpt = fnctx.WithConfig(section("context", cfg.Context))
	}
	if cfg.Invoke != nil {
		opt.invokeOpt = invoke.WithConfig(section("mode", cfg.Invoke))
	}

	return opt
}

// section re-marshals a nested config block, optionally re-wrapped under its
// top-level key, so each package parses its own yaml shape.
func section(key string, v any) []byte {
	if key != "" {
		v = map[string]any{key: v}
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	}
	return b
}

// WithServeConfigFile loads a YAML file and applies it as a serve Option.
func WithServeConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("server.WithServeConfigFile(%s): %w", path, err))
	}
	return WithServeConfig(b)
}

// DefaultServeConfigCandidates returns relative paths that will be checked (in order)
// when searching for a default server config.
func DefaultServeConfigCandidates() []string {
	return []string{
		"fnserve.yaml",
		"fnserve.yml",
		"server.yaml",
		"server.yml",
		"config.yaml",
		"config.yml",
	}
}

// FindDefaultServeConfigFile searches for a server config file in a small set of
// well-known locations (CWD then executable directory).
func FindDefaultServeConfigFile() (string, error) {
	candidates := DefaultServeConfigCandidates()

	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	for _, dir := range dirs {
		for _, rel := range candidates {
			p := rel
			if dir != "." {
				p = filepath.Join(dir, rel)
			}
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
	}

	return "", fmt.Errorf("server config not found (expected %v)", candidates)
}

// WithDefaultServeConfig finds and loads the default server config file.
func WithDefaultServeConfig() Option {
	p, err := FindDefaultServeConfigFile()
	if err != nil {
		panic(fmt.Errorf("server.WithDefaultServeConfig: %w", err))
	}
	return WithServeConfigFile(p)
}
