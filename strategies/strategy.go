// Package strategies defines the Strategy capability, a sequence-in
// signal-out producer, and a Registry for selecting one by name.
package strategies

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"equitycurve/types"
)

var (
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrInvalidParam    = errors.New("invalid strategy parameter")
)

// Strategy produces exactly one signal per tick. Signal i may depend only on
// ticks[0..i].
type Strategy interface {
	Name() string
	Signals(ticks []types.Tick) []types.Signal
}

// Params are the tunable knobs of a strategy, as read from configuration.
type Params map[string]float64

// Int returns the named parameter as an int, or def when it is absent.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%v is not an integer", ErrInvalidParam, key, v)
	}
	return int(v), nil
}

// PositiveInt is Int with the additional requirement that the value be > 0.
func (p Params) PositiveInt(key string, def int) (int, error) {
	v, err := p.Int(key, def)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: %s=%d must be positive", ErrInvalidParam, key, v)
	}
	return v, nil
}

// Factory builds a configured Strategy.
type Factory func(params Params) (Strategy, error)

// Registry holds named strategy factories.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New builds the named strategy with params.
func (r *Registry) New(name string, params Params) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	s, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}
	return s, nil
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
