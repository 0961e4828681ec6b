// Package registry maps invocation names to handler programs on disk.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Function is one invocable handler program.
type Function struct {
	Name string
	Path string
}

// Registry resolves function names for the engines. The function table is
// built once at construction; discovery does not rescan per request.
type Registry struct {
	*Options

	mu        sync.RWMutex
	functions map[string]Function
}

func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		Options:   NewOptions(opts...),
		functions: map[string]Function{},
	}

	if err := r.installFunctions(); err != nil {
		return nil, err
	}

	return r, nil
}

// installFunctions discovers handler programs in Dir and registers the
// statically configured ones.
func (r *Registry) installFunctions() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Dir != "" {
		files, err := os.ReadDir(r.Dir)
		if err != nil {
			return fmt.Errorf("registry: read dir: %w", err)
		}
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
			r.functions[name] = Function{
				Name: name,
				Path: filepath.Join(r.Dir, f.Name()),
			}
		}
	}

	for name, path := range r.StaticFunctions {
		r.functions[name] = Function{Name: name, Path: path}
	}

	return nil
}

// Reload rescans the function directory. Used by dev mode after a change.
func (r *Registry) Reload() error {
	r.mu.Lock()
	r.functions = map[string]Function{}
	r.mu.Unlock()
	return r.installFunctions()
}

// Get resolves a function name, following alias links first.
func (r *Registry) Get(name string) (Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if dst, ok := r.AliasMap[name]; ok {
		name = dst
	}

	fn, ok := r.functions[name]
	if !ok {
		return Function{}, fmt.Errorf("registry: function not found: %s", name)
	}
	return fn, nil
}

// Names returns the registered function names. Order is unspecified.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	return names
}
