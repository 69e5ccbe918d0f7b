// Package fronts keeps precomputed optimal fronts keyed by the world they
// belong to.
package fronts

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/paretoq/internal/gridworld"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
)

// namespace scopes every front key.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/danielpatrickdp/paretoq/fronts"))

// Canonical returns the field-wise encoding KeyOf hashes. Two configs with
// equal fields encode identically wherever they were built.
func Canonical(cfg gridworld.Config) string {
	f := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	var b strings.Builder
	fmt.Fprintf(&b, "w=%d;h=%d;start=%d,%d;goal=%d,%d;fail=%s;horizon=%s;res=",
		cfg.Width, cfg.Height, cfg.Start.X, cfg.Start.Y, cfg.Goal.X, cfg.Goal.Y, f(cfg.FailureProb), cfg.Horizon)
	for i, r := range cfg.Resources {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%d,%d,%d,%s,%s", r.X, r.Y, r.Type, f(r.MinReward), f(r.MaxReward))
	}
	return b.String()
}

// KeyOf returns the UUIDv5 of Canonical(cfg).
func KeyOf(cfg gridworld.Config) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(Canonical(cfg)))
}

// Registry maps world keys to reference fronts. It is safe for concurrent use
// so parallel seeds can share one.
type Registry struct {
	mu     sync.RWMutex
	fronts map[uuid.UUID]*pareto.Set
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fronts: make(map[uuid.UUID]*pareto.Set)}
}

// Register stores a copy of front for cfg, replacing any previous entry.
func (r *Registry) Register(cfg gridworld.Config, front *pareto.Set) error {
	if front.Dim() != cfg.Objectives() {
		return fmt.Errorf("register front: %w: front has %d objectives, world %d",
			pareto.ErrDimensionMismatch, front.Dim(), cfg.Objectives())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fronts[KeyOf(cfg)] = front.Copy()
	return nil
}

// RegisterText parses text and registers it for cfg.
func (r *Registry) RegisterText(cfg gridworld.Config, text string) error {
	front, err := pareto.ParseDim(text, cfg.Objectives())
	if err != nil {
		return fmt.Errorf("register front: %w", err)
	}
	return r.Register(cfg, front)
}

// Lookup returns a copy of the front registered for cfg.
func (r *Registry) Lookup(cfg gridworld.Config) (*pareto.Set, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fronts[KeyOf(cfg)]
	if !ok {
		return nil, false
	}
	return f.Copy(), true
}

// Len returns the number of registered fronts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fronts)
}
