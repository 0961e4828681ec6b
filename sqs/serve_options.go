package sqs

import (
	"github.com/Blauerdrache/fnserve/fnctx"
	"github.com/Blauerdrache/fnserve/invoke"
	"github.com/Blauerdrache/fnserve/registry"
)

type ServeOption any

type serveOptionBag struct {
	sqs      []Option
	invoke   []invoke.Option
	registry []registry.Option
	fnctx    []fnctx.Option
}

func (b *serveOptionBag) apply(opts ...ServeOption) {
	for _, opt := range opts {
		switch o := opt.(type) {
		case Option:
			b.sqs = append(b.sqs, o)
		case invoke.Option:
			b.invoke = append(b.invoke, o)
		case registry.Option:
			b.registry = append(b.registry, o)
		case fnctx.Option:
			b.fnctx = append(b.fnctx, o)
		}
	}
}
