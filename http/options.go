package http

import (
	"time"

	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type HttpOption func(*Options)

func (f HttpOption) Apply(o *Options) { f(o) }

type Options struct {
	// Http Options
	Address        string
	DebugMode      bool
	CorsMode       bool
	MaxConcurrent  int
	RequestTimeout time.Duration
	StaticLinkMap  map[string]string
	PrefixLinkMap  map[string]string
}

var defaultOptions = &Options{
	Address:        ":8080",
	DebugMode:      false,
	CorsMode:       false,
	MaxConcurrent:  100,
	RequestTimeout: 30 * time.Second,
	StaticLinkMap:  map[string]string{},
	PrefixLinkMap:  map[string]string{},
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

// -------------- Http Options ----------------
func WithAddress(addr string) Option {
	return HttpOption(func(o *Options) {
		o.Address = addr
	})
}

func WithDebugMode() Option {
	return HttpOption(func(o *Options) {
		o.DebugMode = true
	})
}

func WithCorsMode() Option {
	return HttpOption(func(o *Options) {
		o.CorsMode = true
	})
}

func WithMaxConcurrent(n int) Option {
	return HttpOption(func(o *Options) {
		if n > 0 {
			o.MaxConcurrent = n
		}
	})
}

func WithRequestTimeout(d time.Duration) Option {
	return HttpOption(func(o *Options) {
		if d > 0 {
			o.RequestTimeout = d
		}
	})
}

func WithStaticLink(srcPath, dstPath string) Option {
	return HttpOption(func(o *Options) {
		o.StaticLinkMap[srcPath] = dstPath
	})
}

func WithPrefixLink(srcPrefix string, dstPrefix string) Option {
	return HttpOption(func(o *Options) {
		o.PrefixLinkMap[srcPrefix] = dstPrefix
	})
}
