package http

import (
	"github.com/gin-gonic/gin"

	"github.com/Blauerdrache/fnserve/invoke"
)

type Engine struct {
	*Options
	*gin.Engine
	invoker *invoke.Engine

	semaphore chan struct{}
	stats     Stats
}

func NewEngine(opts ...ServeOption) *Engine {
	bag := &serveOptionBag{}
	bag.apply(opts...)

	options := NewOptions(bag.http...)
	if !options.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	e := &Engine{
		Options: options,
		Engine:  gin.Default(),
		invoker: invoke.NewEngine(bag.invoke, bag.registry, bag.fnctx),
	}

	if e.CorsMode {
		e.Use(Cors())
	}

	e.semaphore = make(chan struct{}, e.MaxConcurrent)

	e.InstallHandlers()

	return e
}

// Invoker exposes the orchestrator, mainly for lifecycle control.
func (e *Engine) Invoker() *invoke.Engine {
	return e.invoker
}
