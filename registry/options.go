package registry

import (
	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	// Dir is the directory scanned for handler programs.
	Dir string
	// StaticFunctions maps names to handler paths registered without
	// discovery. They shadow discovered functions of the same name.
	StaticFunctions map[string]string
	// AliasMap rewrites request names before lookup.
	AliasMap map[string]string
}

var defaultOptions = &Options{
	Dir:             "",
	StaticFunctions: map[string]string{},
	AliasMap:        map[string]string{},
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

func WithDir(dir string) Option {
	return OptionFunc(func(o *Options) {
		o.Dir = dir
	})
}

func WithStaticFunction(name, path string) Option {
	return OptionFunc(func(o *Options) {
		o.StaticFunctions[name] = path
	})
}

func WithAlias(src, dst string) Option {
	return OptionFunc(func(o *Options) {
		o.AliasMap[src] = dst
	})
}
