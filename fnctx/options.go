package fnctx

import (
	"time"

	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	// AllowedEnvKeys is the explicit allow-list of environment keys whose
	// presence is surfaced to handlers.
	AllowedEnvKeys []string
	// DefaultDeadline is stamped into every context so no invocation runs
	// unbounded.
	DefaultDeadline time.Duration
	// Clock supplies the default timestamp. Injectable for tests.
	Clock func() time.Time
}

var defaultOptions = &Options{
	AllowedEnvKeys:  []string{"X-API-Key", "Authorization", "X-Forwarded-For"},
	DefaultDeadline: 30 * time.Second,
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.Clock = time.Now
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

func WithAllowedEnvKeys(keys ...string) Option {
	return OptionFunc(func(o *Options) {
		o.AllowedEnvKeys = append([]string{}, keys...)
	})
}

func WithEnvKey(key string) Option {
	return OptionFunc(func(o *Options) {
		o.AllowedEnvKeys = append(o.AllowedEnvKeys, key)
	})
}

func WithDefaultDeadline(d time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultDeadline = d
	})
}

func WithClock(clock func() time.Time) Option {
	return OptionFunc(func(o *Options) {
		if clock != nil {
			o.Clock = clock
		}
	})
}
