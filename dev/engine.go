package dev

import (
	"context"
	"log"
	nethttp "net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Blauerdrache/fnserve/http"
	"github.com/Blauerdrache/fnserve/registry"
)

// Engine runs the HTTP front door with a filesystem watcher on the
// handler directory. Handler files can be added, edited or removed while
// the server is running; the registry is reloaded without a restart.
type Engine struct {
	*Options
	httpEngine *http.Engine
	srv        *nethttp.Server
	watcher    *fsnotify.Watcher
	stopChan   chan struct{}
	wg         sync.WaitGroup
	running    atomic.Int32
}

func NewEngine(opts ...Option) *Engine {
	options := NewOptions(opts...)

	serveOpts := append([]http.ServeOption{registry.WithDir(options.Dir)}, options.ServeOptions...)
	if options.DebugMode {
		serveOpts = append(serveOpts, http.WithDebugMode())
	}

	return &Engine{
		Options:    options,
		httpEngine: http.NewEngine(serveOpts...),
		stopChan:   make(chan struct{}),
	}
}

func (e *Engine) Start() error {
	if !e.running.CompareAndSwap(0, 1) {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(e.Dir); err != nil {
		watcher.Close()
		return err
	}
	e.watcher = watcher

	e.wg.Add(1)
	go e.watch()

	e.srv = &nethttp.Server{
		Addr:         e.httpEngine.Address,
		Handler:      e.httpEngine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("[Dev] watching %s, serving on %s", e.Dir, e.httpEngine.Address)
	if err := e.srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
		return err
	}
	return nil
}

func (e *Engine) Stop() error {
	if !e.running.CompareAndSwap(1, 0) {
		return nil
	}

	close(e.stopChan)
	if e.watcher != nil {
		e.watcher.Close()
	}
	e.wg.Wait()

	if e.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.srv.Shutdown(ctx)
	}
	return nil
}

func (e *Engine) IsRunning() bool {
	return e.running.Load() == 1
}

// watch batches filesystem events and reloads the registry once per burst.
// Editors tend to emit several events per save.
func (e *Engine) watch() {
	defer e.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-e.stopChan:
			return
		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			if e.DebugMode {
				log.Printf("[Dev] %s %s", event.Op, event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(e.Debounce)
			} else {
				timer.Reset(e.Debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			e.reload()
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[Dev] watch error: %v", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}

func (e *Engine) reload() {
	if err := e.httpEngine.Invoker().Reload(); err != nil {
		log.Printf("[Dev] reload failed: %v", err)
		return
	}
	names := e.httpEngine.Invoker().Names()
	log.Printf("[Dev] reloaded, %d function(s) registered", len(names))
}
