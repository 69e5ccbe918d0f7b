package driver

import (
	"github.com/danielpatrickdp/paretoq/internal/gridworld"
	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/taskspec"
)

// #region interfaces
// Agent is the lifecycle contract, whether the agent lives in-process or
// behind a gRPC connection.
type Agent interface {
	Init(taskSpec string) (string, error)
	Start(observation []float64) (mdp.Action, error)
	Step(reward, observation []float64) (mdp.Action, error)
	End(reward []float64) error
	Cleanup() error
	Message(msg string) (string, error)
}

// Env is what the driver needs from a simulator.
type Env interface {
	Reset() mdp.State
	Step(a mdp.Action) (gridworld.StepResult, error)
	Observation(s mdp.State) []float64
	TaskSpec(discount float64) taskspec.Spec
}

// #endregion interfaces

// #region config
// Config controls the episode loop.
type Config struct {
	Episodes        int     `yaml:"episodes" validate:"gt=0"`
	MaxSteps        int     `yaml:"max_steps" validate:"gt=0"`
	Discount        float64 `yaml:"discount" validate:"gte=0,lte=1"`
	EvalEvery       int     `yaml:"eval_every" validate:"gte=0"` // 0 = only after the last episode
	StopOnConverged bool    `yaml:"stop_on_converged"`
}

// DefaultConfig returns 500 episodes of at most 200 steps, γ=0.9, with a
// convergence query every 50 episodes.
func DefaultConfig() Config {
	return Config{
		Episodes:  500,
		MaxSteps:  200,
		Discount:  0.9,
		EvalEvery: 50,
	}
}

// #endregion config

// #region results
// EpisodeResult captures one episode. SolutionSet and Converged are only set
// on episodes where the agent was queried.
type EpisodeResult struct {
	Episode     int       `json:"episode"`
	Steps       int       `json:"steps"`
	Return      []float64 `json:"return"`
	Terminal    bool      `json:"terminal"`
	Queried     bool      `json:"queried"`
	Converged   bool      `json:"converged"`
	SolutionSet string    `json:"solution_set,omitempty"`
}

// Summary provides aggregate stats from a run.
type Summary struct {
	Episodes         int
	TotalSteps       int
	Terminated       int
	Truncated        int
	MeanReturn       []float64
	Converged        bool
	ConvergedAt      int // episode index, -1 if never
	FinalSolutionSet string
}

// Hook observes each finished episode. A hook error aborts the run.
type Hook func(EpisodeResult) error

// #endregion results
