package types

// Environment of a two player, turn based game.
// Player 0 is the learner, player 1 the opponent.
type Environment interface {
	// Reset called at the start of each episode
	Reset() State
	// Step applies the action of the player to move and returns
	// the next state, the reward from the mover's perspective and whether the episode ended
	Step(Action) (State, float64, bool, StepInfo)
	// Turn is the index of the player to move
	Turn() int
}

// StepInfo carries diagnostics of a single step
type StepInfo struct {
	Invalid bool   `json:"invalid,omitempty"`
	Error   string `json:"error,omitempty"`
}

// State of the system that RL policies observe
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Actions possible from the state
	Actions() []Action
}

// And Action that RL policy can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}
