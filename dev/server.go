package dev

var engine *Engine

// Serve runs the development server until Close is called. It blocks.
func Serve(opts ...Option) error {
	engine = NewEngine(opts...)
	return engine.Start()
}

func Close() error {
	if engine == nil {
		return nil
	}
	return engine.Stop()
}
