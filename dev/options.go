package dev

import (
	"time"

	"github.com/mohae/deepcopy"

	"github.com/Blauerdrache/fnserve/http"
)

type Option interface {
	Apply(*Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	Dir          string
	Debounce     time.Duration
	DebugMode    bool
	ServeOptions []http.ServeOption
}

var defaultOptions = Options{
	Dir:      "functions",
	Debounce: 300 * time.Millisecond,
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(Options)
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(&options)
		}
	}
	return &options
}

// WithDir sets the handler directory watched for changes.
func WithDir(dir string) Option {
	return OptionFunc(func(o *Options) {
		o.Dir = dir
	})
}

// WithDebounce sets how long file events are batched before a reload.
func WithDebounce(d time.Duration) Option {
	return OptionFunc(func(o *Options) {
		if d > 0 {
			o.Debounce = d
		}
	})
}

func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}

// WithServeOptions forwards options to the embedded HTTP front door.
func WithServeOptions(opts ...http.ServeOption) Option {
	return OptionFunc(func(o *Options) {
		o.ServeOptions = append(o.ServeOptions, opts...)
	})
}
