package http

import (
	"context"
	"net/http"
	"time"
)

var srv *http.Server

func Serve(opts ...ServeOption) error {
	engine := NewEngine(opts...)
	srv = &http.Server{
		Addr:         engine.Address,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return nil
}
