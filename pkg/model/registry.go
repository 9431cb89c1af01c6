package model

import (
	"fmt"
	"sort"
	"sync"

	pkgerrors "github.com/absmach/coach/pkg/errors"
)

// Config carries the architecture hyperparameters shared by builders.
// Builders ignore fields they have no use for.
type Config struct {
	Classes  int
	Features int
	Hidden   int
	Dropout  float64
	Seed     int64
}

type Builder func(cfg Config) (Model, error)

// Registry maps architecture identifiers to constructors. It replaces
// runtime introspection with an explicit table populated at startup.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
	}
}

func (r *Registry) Register(name string, b Builder) error {
	if name == "" {
		return pkgerrors.ErrEmptyKey
	}
	if b == nil {
		return fmt.Errorf("%w: nil builder for %q", pkgerrors.ErrInvalidData, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.builders[name]; ok {
		return fmt.Errorf("architecture %q already registered", name)
	}
	r.builders[name] = b

	return nil
}

func (r *Registry) Build(name string, cfg Config) (Model, error) {
	r.mu.RLock()
	b, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("architecture %q: %w", name, pkgerrors.ErrNotFound)
	}

	return b(cfg)
}

func (r *Registry) Architectures() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Builtin returns a registry with the reference architectures registered.
func Builtin() *Registry {
	r := NewRegistry()
	_ = r.Register("linear", func(cfg Config) (Model, error) {
		return NewLinear(cfg.Classes, cfg.Features)
	})
	_ = r.Register("mlp", func(cfg Config) (Model, error) {
		return NewMLP(cfg)
	})

	return r
}
