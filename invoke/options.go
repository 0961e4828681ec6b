package invoke

import (
	"github.com/mohae/deepcopy"

	"github.com/Blauerdrache/fnserve/runner"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	DebugMode bool
	// Runtime overrides per-path runtime selection. Nil selects by file
	// extension. Intended for tests and embedders.
	Runtime runner.Runtime
}

var defaultOptions = &Options{
	DebugMode: false,
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	return options
}

func (o *Options) init(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
}

func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}

func WithRuntime(rt runner.Runtime) Option {
	return OptionFunc(func(o *Options) {
		o.Runtime = rt
	})
}
