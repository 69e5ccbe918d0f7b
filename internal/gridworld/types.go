package gridworld

import (
	"errors"

	"github.com/danielpatrickdp/paretoq/internal/mdp"
)

// #region errors
var (
	// ErrInvalidParameter is returned for configurations rejected at construction.
	ErrInvalidParameter = errors.New("invalid gridworld parameter")
	// ErrInvalidAction is returned by Step for an action outside [0, NumActions).
	ErrInvalidAction = errors.New("invalid action")
)

// #endregion errors

// #region actions
// Actions, in index order.
const (
	Up mdp.Action = iota
	Down
	Left
	Right
	NumActions = 4
)

var displacements = [NumActions][2]int{
	Up:    {0, -1},
	Down:  {0, 1},
	Left:  {-1, 0},
	Right: {1, 0},
}

// #endregion actions

// #region config
// Horizon selects what happens to a resource once it is stepped on.
type Horizon string

const (
	// HorizonEpisodic consumes a resource for the rest of the episode.
	HorizonEpisodic Horizon = "episodic"
	// HorizonRespawn leaves resources in place after every pickup.
	HorizonRespawn Horizon = "respawn"
)

// Point is a grid cell.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Resource is a collectible cell. Type selects the reward entry (Type+1) it
// feeds; the reward drawn on pickup is uniform on [MinReward, MaxReward].
type Resource struct {
	X         int     `yaml:"x" json:"x" validate:"gte=0"`
	Y         int     `yaml:"y" json:"y" validate:"gte=0"`
	Type      int     `yaml:"type" json:"type" validate:"gte=0"`
	MinReward float64 `yaml:"min_reward" json:"min_reward"`
	MaxReward float64 `yaml:"max_reward" json:"max_reward" validate:"gtefield=MinReward"`
}

// Config describes one grid world instance.
type Config struct {
	Width       int        `yaml:"width" json:"width" validate:"gt=0"`
	Height      int        `yaml:"height" json:"height" validate:"gt=0"`
	Start       Point      `yaml:"start" json:"start"`
	Goal        Point      `yaml:"goal" json:"goal"`
	Resources   []Resource `yaml:"resources" json:"resources" validate:"max=64,dive"`
	FailureProb float64    `yaml:"failure_prob" json:"failure_prob" validate:"gte=0,lte=1"`
	Horizon     Horizon    `yaml:"horizon" json:"horizon" validate:"oneof=episodic respawn"`
}

// DefaultConfig returns a 5x5 world with two resource types: a small sure
// reward near the start and a larger noisy one off the direct path.
func DefaultConfig() Config {
	return Config{
		Width:  5,
		Height: 5,
		Start:  Point{X: 0, Y: 0},
		Goal:   Point{X: 4, Y: 4},
		Resources: []Resource{
			{X: 2, Y: 0, Type: 0, MinReward: 1, MaxReward: 1},
			{X: 0, Y: 3, Type: 1, MinReward: 1, MaxReward: 3},
		},
		FailureProb: 0.1,
		Horizon:     HorizonEpisodic,
	}
}

// Objectives returns the reward dimension: one step-cost entry plus one entry
// per resource type.
func (c Config) Objectives() int {
	types := 0
	for _, r := range c.Resources {
		if r.Type+1 > types {
			types = r.Type + 1
		}
	}
	return 1 + types
}

// #endregion config

// StepResult is what Step reports back.
type StepResult struct {
	State    mdp.State
	Reward   []float64
	Terminal bool
}
