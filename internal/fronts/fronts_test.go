package fronts

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/paretoq/internal/gridworld"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
)

func TestKeyIsFieldWise(t *testing.T) {
	a := gridworld.DefaultConfig()
	b := gridworld.DefaultConfig()
	// Distinct backing arrays, same contents.
	b.Resources = append([]gridworld.Resource(nil), a.Resources...)
	if KeyOf(a) != KeyOf(b) {
		t.Fatalf("equal configs produced different keys")
	}

	b.Resources[1].MaxReward = 4
	if KeyOf(a) == KeyOf(b) {
		t.Fatalf("different configs produced the same key")
	}
	if KeyOf(a).Version() != 5 {
		t.Fatalf("expected a version 5 UUID, got %d", KeyOf(a).Version())
	}
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	cfg := gridworld.DefaultConfig()

	if _, ok := r.Lookup(cfg); ok {
		t.Fatal("empty registry returned a front")
	}
	if err := r.RegisterText(cfg, "(-8,1,0),(-10,1,3)"); err != nil {
		t.Fatalf("RegisterText: %v", err)
	}

	got, ok := r.Lookup(cfg)
	if !ok || got.Len() != 2 {
		t.Fatalf("Lookup: %v %v", got, ok)
	}

	// Lookups hand out copies.
	got.PruneDominated()
	got.Add(got.Vectors()[0].Scale(2))
	again, _ := r.Lookup(cfg)
	if again.Len() != 2 {
		t.Fatalf("registry was mutated through a lookup: %s", again)
	}
}

func TestRegisterRejectsWrongDimension(t *testing.T) {
	r := NewRegistry()
	front, _ := pareto.Parse("(1,1)")
	if err := r.Register(gridworld.DefaultConfig(), front); !errors.Is(err, pareto.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if err := r.RegisterText(gridworld.DefaultConfig(), "(1,1"); !errors.Is(err, pareto.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}
