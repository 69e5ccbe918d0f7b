package qtable

import (
	"testing"

	"github.com/danielpatrickdp/paretoq/internal/mdp"
)

func TestMissingEntriesResolveToDefault(t *testing.T) {
	calls := 0
	tab := New(func() []float64 { calls++; return []float64{-9, -9} })

	s := mdp.State{X: 1, Y: 2}
	v := tab.Get(s, 0)
	if len(v) != 2 || v[0] != -9 {
		t.Fatalf("expected default, got %v", v)
	}
	if tab.Len() != 0 {
		t.Fatalf("Get must not insert, table has %d entries", tab.Len())
	}

	// A fresh default every time, so callers cannot corrupt later lookups.
	v[0] = 100
	if w := tab.Get(s, 0); w[0] != -9 || calls != 2 {
		t.Fatalf("default value was shared: %v after %d calls", w, calls)
	}
}

func TestStatesCompareByValue(t *testing.T) {
	tab := New(func() int { return 0 })
	a := mdp.State{X: 1, Y: 1, Picked: mdp.Mask(0).With(3)}
	b := mdp.State{X: 1, Y: 1}
	b.Picked = b.Picked.With(3)

	tab.Set(a, 2, 7)
	if got := tab.Get(b, 2); got != 7 {
		t.Fatalf("equal states must share an entry, got %d", got)
	}
	if got := tab.Get(b, 1); got != 0 {
		t.Fatalf("different action must not match, got %d", got)
	}
	tab.Set(b, 2, 8)
	if tab.Len() != 1 {
		t.Fatalf("expected one entry, got %d", tab.Len())
	}
	if got := tab.Get(a, 2); got != 8 {
		t.Fatalf("overwrite through an equal state: got %d", got)
	}
}
