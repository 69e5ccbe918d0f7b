// Package gridworld is the stochastic resource-gathering world the learners
// train against. It produces vector rewards: entry 0 is a constant step cost
// and entry Type+1 collects the rewards of resources of that type.
package gridworld

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"

	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/taskspec"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first problem with c, wrapped in ErrInvalidParameter.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if !c.inside(c.Start) {
		return fmt.Errorf("%w: start %v outside %dx%d grid", ErrInvalidParameter, c.Start, c.Width, c.Height)
	}
	if !c.inside(c.Goal) {
		return fmt.Errorf("%w: goal %v outside %dx%d grid", ErrInvalidParameter, c.Goal, c.Width, c.Height)
	}
	for i, r := range c.Resources {
		if !c.inside(Point{r.X, r.Y}) {
			return fmt.Errorf("%w: resource %d at (%d,%d) outside grid", ErrInvalidParameter, i, r.X, r.Y)
		}
	}
	return nil
}

func (c Config) inside(p Point) bool {
	return p.X >= 0 && p.X < c.Width && p.Y >= 0 && p.Y < c.Height
}

// Env is one simulator instance. It is not safe for concurrent use; parallel
// runs each build their own.
type Env struct {
	cfg   Config
	rng   *rand.Rand
	cells map[Point][]int
	state mdp.State
}

// New validates cfg and returns an environment seeded with seed.
func New(cfg Config, seed uint64) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Env{
		cfg:   cfg,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		cells: make(map[Point][]int),
	}
	for i, r := range cfg.Resources {
		p := Point{r.X, r.Y}
		e.cells[p] = append(e.cells[p], i)
	}
	e.Reset()
	return e, nil
}

// Config returns the configuration the env was built with.
func (e *Env) Config() Config { return e.cfg }

// Objectives returns the reward dimension.
func (e *Env) Objectives() int { return e.cfg.Objectives() }

// NumActions returns the size of the action range.
func (e *Env) NumActions() int { return NumActions }

// Start returns the start state with nothing collected.
func (e *Env) Start() mdp.State {
	return mdp.State{X: e.cfg.Start.X, Y: e.cfg.Start.Y}
}

// Reset moves the agent back to the start and restores every resource.
func (e *Env) Reset() mdp.State {
	e.state = e.Start()
	return e.state
}

// State returns the current state.
func (e *Env) State() mdp.State { return e.state }

// Terminal reports whether s is the goal.
func (e *Env) Terminal(s mdp.State) bool {
	return s.X == e.cfg.Goal.X && s.Y == e.cfg.Goal.Y
}

// Step applies a. With probability FailureProb the move is replaced by one of
// the other three, chosen uniformly; the result is clamped to the grid.
func (e *Env) Step(a mdp.Action) (StepResult, error) {
	if a < 0 || int(a) >= NumActions {
		return StepResult{}, fmt.Errorf("step: %w: %d", ErrInvalidAction, a)
	}
	taken := a
	if e.cfg.FailureProb > 0 && e.rng.Float64() < e.cfg.FailureProb {
		// Draw from the other actions by skipping over a.
		alt := mdp.Action(e.rng.IntN(NumActions - 1))
		if alt >= a {
			alt++
		}
		taken = alt
	}
	d := displacements[taken]
	next := e.state
	next.X = clamp(next.X+d[0], 0, e.cfg.Width-1)
	next.Y = clamp(next.Y+d[1], 0, e.cfg.Height-1)

	reward := make([]float64, e.cfg.Objectives())
	reward[0] = -1
	for _, i := range e.cells[Point{next.X, next.Y}] {
		if next.Picked.Has(i) {
			continue
		}
		r := e.cfg.Resources[i]
		reward[r.Type+1] += e.draw(r)
		if e.cfg.Horizon == HorizonEpisodic {
			next.Picked = next.Picked.With(i)
		}
	}

	e.state = next
	return StepResult{State: next, Reward: reward, Terminal: e.Terminal(next)}, nil
}

func (e *Env) draw(r Resource) float64 {
	if r.MinReward == r.MaxReward {
		return r.MinReward
	}
	return r.MinReward + e.rng.Float64()*(r.MaxReward-r.MinReward)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #region observations
// Observation encodes s as [x, y, picked_0, ..., picked_{n-1}].
func (e *Env) Observation(s mdp.State) []float64 {
	obs := make([]float64, 2+len(e.cfg.Resources))
	obs[0], obs[1] = float64(s.X), float64(s.Y)
	for i := range e.cfg.Resources {
		if s.Picked.Has(i) {
			obs[2+i] = 1
		}
	}
	return obs
}

// StateFromObservation is the inverse of Observation for any world with the
// same number of resources.
func StateFromObservation(obs []float64) (mdp.State, error) {
	if len(obs) < 2 || len(obs)-2 > mdp.MaxResources {
		return mdp.State{}, fmt.Errorf("%w: observation of length %d", ErrInvalidParameter, len(obs))
	}
	s := mdp.State{X: int(obs[0]), Y: int(obs[1])}
	for i, v := range obs[2:] {
		if v != 0 {
			s.Picked = s.Picked.With(i)
		}
	}
	return s, nil
}

// TaskSpec describes this world for an agent.
func (e *Env) TaskSpec(discount float64) taskspec.Spec {
	obs := []taskspec.Range{
		{Min: 0, Max: float64(e.cfg.Width - 1)},
		{Min: 0, Max: float64(e.cfg.Height - 1)},
	}
	for range e.cfg.Resources {
		obs = append(obs, taskspec.Range{Min: 0, Max: 1})
	}
	return taskspec.Spec{
		Problem:      taskspec.Episodic,
		Discount:     discount,
		Observations: obs,
		Actions:      taskspec.IntRange{Min: 0, Max: NumActions - 1},
		Objectives:   e.Objectives(),
	}
}

// #endregion observations
