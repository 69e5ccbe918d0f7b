package driver

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/paretoq/internal/agent"
	"github.com/danielpatrickdp/paretoq/internal/mdp"
)

// #region fixture-types

// Fixture is a recorded agent conversation: the task spec plus every
// observation and reward the agent saw, episode by episode.
type Fixture struct {
	Description         string           `json:"description"`
	TaskSpec            string           `json:"task_spec"`
	Episodes            []FixtureEpisode `json:"episodes"`
	ExpectedSolutionSet string           `json:"expected_solution_set,omitempty"`
}

// FixtureEpisode is one recorded episode.
type FixtureEpisode struct {
	Start       []float64     `json:"start"`
	Steps       []FixtureStep `json:"steps"`
	FinalReward []float64     `json:"final_reward"`
}

// FixtureStep is one non-terminal step.
type FixtureStep struct {
	Reward      []float64 `json:"reward"`
	Observation []float64 `json:"observation"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Save writes f as indented JSON.
func (f *Fixture) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// Observations returns what the agent saw in episode i, start observation
// first. A negative i counts from the last episode.
func (f *Fixture) Observations(i int) ([][]float64, error) {
	if i < 0 {
		i += len(f.Episodes)
	}
	if i < 0 || i >= len(f.Episodes) {
		return nil, fmt.Errorf("fixture has %d episodes, no episode %d", len(f.Episodes), i)
	}
	ep := f.Episodes[i]
	out := make([][]float64, 0, len(ep.Steps)+1)
	out = append(out, ep.Start)
	for _, st := range ep.Steps {
		out = append(out, st.Observation)
	}
	return out, nil
}

// #endregion fixture-loader

// #region recorder

// Recorder wraps an Agent and records the conversation into a Fixture.
type Recorder struct {
	Agent
	fixture Fixture
}

// NewRecorder wraps a.
func NewRecorder(a Agent, description string) *Recorder {
	return &Recorder{Agent: a, fixture: Fixture{Description: description}}
}

// Init records the task spec.
func (r *Recorder) Init(spec string) (string, error) {
	r.fixture.TaskSpec = spec
	return r.Agent.Init(spec)
}

// Start opens a recorded episode.
func (r *Recorder) Start(obs []float64) (mdp.Action, error) {
	r.fixture.Episodes = append(r.fixture.Episodes, FixtureEpisode{Start: clone(obs)})
	return r.Agent.Start(obs)
}

// Step records a step.
func (r *Recorder) Step(reward, obs []float64) (mdp.Action, error) {
	if ep := r.current(); ep != nil {
		ep.Steps = append(ep.Steps, FixtureStep{Reward: clone(reward), Observation: clone(obs)})
	}
	return r.Agent.Step(reward, obs)
}

// End records the final reward.
func (r *Recorder) End(reward []float64) error {
	if ep := r.current(); ep != nil {
		ep.FinalReward = clone(reward)
	}
	return r.Agent.End(reward)
}

// Fixture returns what has been recorded so far.
func (r *Recorder) Fixture() *Fixture {
	f := r.fixture
	return &f
}

func (r *Recorder) current() *FixtureEpisode {
	if len(r.fixture.Episodes) == 0 {
		return nil
	}
	return &r.fixture.Episodes[len(r.fixture.Episodes)-1]
}

func clone(xs []float64) []float64 { return append([]float64(nil), xs...) }

// #endregion recorder

// #region replay

// ReplayResult captures the outcome of replaying a fixture.
type ReplayResult struct {
	Episodes    int
	Steps       int
	Actions     [][]mdp.Action
	SolutionSet string
}

// Replay feeds the fixture to a, ignoring the actions it chooses, and returns
// the agent's final solution set. The agent is cleaned up afterwards.
func Replay(a Agent, f *Fixture) (ReplayResult, error) {
	if _, err := a.Init(f.TaskSpec); err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	defer a.Cleanup()

	var res ReplayResult
	for i, ep := range f.Episodes {
		var acts []mdp.Action
		act, err := a.Start(ep.Start)
		if err != nil {
			return res, fmt.Errorf("replay: episode %d start: %w", i, err)
		}
		acts = append(acts, act)
		for j, st := range ep.Steps {
			if act, err = a.Step(st.Reward, st.Observation); err != nil {
				return res, fmt.Errorf("replay: episode %d step %d: %w", i, j, err)
			}
			acts = append(acts, act)
		}
		if err := a.End(ep.FinalReward); err != nil {
			return res, fmt.Errorf("replay: episode %d end: %w", i, err)
		}
		res.Episodes++
		res.Steps += len(ep.Steps) + 1
		res.Actions = append(res.Actions, acts)
	}

	set, err := a.Message(agent.QuerySolutionSet)
	if err != nil {
		return res, fmt.Errorf("replay: %w", err)
	}
	res.SolutionSet = set
	return res, nil
}

// #endregion replay
