// Package qtable is the sparse state-action table shared by every learner.
package qtable

import (
	"github.com/danielpatrickdp/paretoq/internal/mdp"
)

// Key addresses one table entry.
type Key struct {
	State  mdp.State
	Action mdp.Action
}

// Table maps (state, action) to V. Lookups of missing keys return a value
// produced by the default factory and never fail; they do not insert.
type Table[V any] struct {
	entries map[Key]V
	def     func() V
}

// New returns an empty table whose missing entries resolve to def().
func New[V any](def func() V) *Table[V] {
	return &Table[V]{entries: make(map[Key]V), def: def}
}

// Get returns the stored value or a fresh default.
func (t *Table[V]) Get(s mdp.State, a mdp.Action) V {
	if v, ok := t.entries[Key{s, a}]; ok {
		return v
	}
	return t.def()
}

// Set stores v.
func (t *Table[V]) Set(s mdp.State, a mdp.Action, v V) {
	t.entries[Key{s, a}] = v
}

// Len returns the number of stored entries.
func (t *Table[V]) Len() int { return len(t.entries) }
