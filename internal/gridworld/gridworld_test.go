package gridworld

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/taskspec"
)

// #region helpers
func lineConfig() Config {
	return Config{
		Width:  4,
		Height: 1,
		Start:  Point{0, 0},
		Goal:   Point{3, 0},
		Resources: []Resource{
			{X: 1, Y: 0, Type: 0, MinReward: 1, MaxReward: 1},
		},
		Horizon: HorizonEpisodic,
	}
}

func mustEnv(t *testing.T, cfg Config, seed uint64) *Env {
	t.Helper()
	e, err := New(cfg, seed)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func mustStep(t *testing.T, e *Env, a mdp.Action) StepResult {
	t.Helper()
	r, err := e.Step(a)
	if err != nil {
		t.Fatalf("Step(%d): %v", a, err)
	}
	return r
}

// #endregion helpers

func TestClampAtEdges(t *testing.T) {
	e := mustEnv(t, lineConfig(), 1)

	r := mustStep(t, e, Left)
	if r.State.X != 0 {
		t.Fatalf("moving left at x=0: expected x=0, got %d", r.State.X)
	}
	mustStep(t, e, Right)
	mustStep(t, e, Right)
	r = mustStep(t, e, Right)
	if r.State.X != 3 || !r.Terminal {
		t.Fatalf("expected terminal at x=3, got %+v", r)
	}
	r = mustStep(t, e, Right)
	if r.State.X != 3 {
		t.Fatalf("moving right at x=maxX: expected x=3, got %d", r.State.X)
	}
	r = mustStep(t, e, Up)
	if r.State.Y != 0 {
		t.Fatalf("moving up at y=0: expected y=0, got %d", r.State.Y)
	}
}

func TestConstantResourceReward(t *testing.T) {
	cfg := lineConfig()
	cfg.Horizon = HorizonRespawn
	e := mustEnv(t, cfg, 3)

	for i := 0; i < 5; i++ {
		r := mustStep(t, e, Right)
		if r.Reward[0] != -1 {
			t.Fatalf("step cost: expected -1, got %v", r.Reward[0])
		}
		if r.Reward[1] != 1 {
			t.Fatalf("pickup %d: expected exactly 1, got %v", i, r.Reward[1])
		}
		mustStep(t, e, Left)
	}
}

func TestEpisodicPickupIsConsumed(t *testing.T) {
	e := mustEnv(t, lineConfig(), 5)

	r := mustStep(t, e, Right)
	if r.Reward[1] != 1 || !r.State.Picked.Has(0) {
		t.Fatalf("expected pickup, got %+v", r)
	}
	mustStep(t, e, Left)
	r = mustStep(t, e, Right)
	if r.Reward[1] != 0 {
		t.Fatalf("consumed resource paid out again: %v", r.Reward)
	}

	if s := e.Reset(); s.Picked != 0 || s.X != 0 {
		t.Fatalf("Reset did not restore the start state: %v", s)
	}
}

func TestRewardWithinRange(t *testing.T) {
	cfg := lineConfig()
	cfg.Horizon = HorizonRespawn
	cfg.Resources[0].MinReward, cfg.Resources[0].MaxReward = 2, 5
	e := mustEnv(t, cfg, 9)

	for i := 0; i < 50; i++ {
		r := mustStep(t, e, Right)
		if r.Reward[1] < 2 || r.Reward[1] > 5 {
			t.Fatalf("reward %v outside [2,5]", r.Reward[1])
		}
		mustStep(t, e, Left)
	}
}

func TestFailureAlwaysPicksAnotherMove(t *testing.T) {
	cfg := Config{Width: 5, Height: 5, Start: Point{2, 2}, Goal: Point{4, 4}, FailureProb: 1, Horizon: HorizonEpisodic}
	e := mustEnv(t, cfg, 11)

	for i := 0; i < 100; i++ {
		e.Reset()
		r := mustStep(t, e, Up)
		if r.State.X == 2 && r.State.Y == 1 {
			t.Fatalf("failure probability 1 still took the chosen move")
		}
	}
}

func TestSameSeedSameTrajectory(t *testing.T) {
	cfg := DefaultConfig()
	a, b := mustEnv(t, cfg, 42), mustEnv(t, cfg, 42)
	for i := 0; i < 200; i++ {
		act := mdp.Action(i % NumActions)
		ra, rb := mustStep(t, a, act), mustStep(t, b, act)
		if ra.State != rb.State {
			t.Fatalf("step %d diverged: %v vs %v", i, ra.State, rb.State)
		}
	}
}

func TestInvalidParameters(t *testing.T) {
	cases := map[string]func(*Config){
		"negative type":   func(c *Config) { c.Resources[0].Type = -1 },
		"min above max":   func(c *Config) { c.Resources[0].MinReward = 3 },
		"zero width":      func(c *Config) { c.Width = 0 },
		"failure above 1": func(c *Config) { c.FailureProb = 1.5 },
		"goal off grid":   func(c *Config) { c.Goal = Point{9, 0} },
		"resource off":    func(c *Config) { c.Resources[0].Y = 2 },
		"unknown horizon": func(c *Config) { c.Horizon = "forever" },
	}
	for name, mutate := range cases {
		cfg := lineConfig()
		mutate(&cfg)
		if _, err := New(cfg, 1); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("%s: expected ErrInvalidParameter, got %v", name, err)
		}
	}
}

func TestInvalidAction(t *testing.T) {
	e := mustEnv(t, lineConfig(), 1)
	if _, err := e.Step(NumActions); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestObservationRoundTrip(t *testing.T) {
	e := mustEnv(t, DefaultConfig(), 1)
	s := mdp.State{X: 3, Y: 1, Picked: mdp.Mask(0).With(1)}
	obs := e.Observation(s)
	if len(obs) != 4 {
		t.Fatalf("expected 4 observation entries, got %d", len(obs))
	}
	back, err := StateFromObservation(obs)
	if err != nil {
		t.Fatalf("StateFromObservation: %v", err)
	}
	if back != s {
		t.Fatalf("round trip: got %v want %v", back, s)
	}
}

func TestTaskSpec(t *testing.T) {
	e := mustEnv(t, DefaultConfig(), 1)
	got := e.TaskSpec(0.9).Format()
	want := "VERSION RL-Glue-3.0 PROBLEMTYPE episodic DISCOUNTFACTOR 0.9 OBSERVATIONS DOUBLES (0 4) (0 4) (0 1) (0 1) ACTIONS INTS (0 3) OBJECTIVES 3"
	if got != want {
		t.Fatalf("TaskSpec:\n got %s\nwant %s", got, want)
	}
	if _, err := taskspec.Parse(got); err != nil {
		t.Fatalf("TaskSpec does not parse: %v", err)
	}
}

func TestRenderPlain(t *testing.T) {
	e := mustEnv(t, lineConfig(), 1)
	var buf bytes.Buffer
	if err := e.Render(&buf, e.State(), false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "A | 0 | . | G |" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestRenderObservations(t *testing.T) {
	e := mustEnv(t, lineConfig(), 1)
	obs := [][]float64{{0, 0, 0}, {1, 0, 1}}

	var plain bytes.Buffer
	if err := e.RenderObservations(&plain, obs, false); err != nil {
		t.Fatalf("RenderObservations: %v", err)
	}
	want := "step 0\n A | 0 | . | G |\nstep 1\n . | A | . | G |\n"
	if plain.String() != want {
		t.Fatalf("unexpected frames:\n got %q\nwant %q", plain.String(), want)
	}

	var coloured bytes.Buffer
	if err := e.RenderObservations(&coloured, obs[:1], true); err != nil {
		t.Fatalf("RenderObservations colour: %v", err)
	}
	if !strings.Contains(coloured.String(), "\x1b[") {
		t.Fatalf("expected ANSI colour codes, got %q", coloured.String())
	}

	if err := e.RenderObservations(&plain, [][]float64{{1}}, false); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("short observation: expected ErrInvalidParameter, got %v", err)
	}
}
