package types

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove is returned when a policy picks an action the environment rejects.
	// Policies only ever see legal actions so this is a bug.
	ErrInvalidMove = errors.New("invalid move during episode")
	ErrNoAction    = errors.New("policy returned no action")
)

type AgentConfig struct {
	Episodes    int
	Learner     LearningPolicy
	Opponent    Policy
	Environment Environment
	// OnEpisode is invoked with every finished episode, optional
	OnEpisode func(int, *Trace)
}

// RL Agent configured with the corresponding
// learner, opponent and environment
type Agent struct {
	config      *AgentConfig
	learner     LearningPolicy
	opponent    Policy
	environment Environment
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:      config,
		learner:     config.Learner,
		opponent:    config.Opponent,
		environment: config.Environment,
	}
}

// Run the agent for the configured number of episodes
func (a *Agent) Run(ctx context.Context) error {
	for i := 0; i < a.config.Episodes; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		trace, err := a.RunEpisode(i)
		if err != nil {
			return fmt.Errorf("episode %d: %w", i, err)
		}
		if a.config.OnEpisode != nil {
			a.config.OnEpisode(i, trace)
		}
	}
	return nil
}

// RunEpisode plays a single game. The learner moves on turn 0 and is
// updated after each of its moves; the opponent moves on turn 1 without updates.
// The learner's UpdateIteration runs once the game is over.
func (a *Agent) RunEpisode(episode int) (*Trace, error) {
	state := a.environment.Reset()
	trace := NewTrace()

	for step := 0; ; step++ {
		actions := state.Actions()
		if len(actions) == 0 {
			break
		}
		player := a.environment.Turn()
		var policy Policy = a.opponent
		if player == 0 {
			policy = a.learner
		}
		action, ok := policy.NextAction(step, state, actions)
		if !ok {
			return trace, ErrNoAction
		}
		nextState, reward, done, info := a.environment.Step(action)
		transition := &Transition{
			Step:      step,
			Player:    player,
			State:     state,
			Action:    action,
			Reward:    reward,
			NextState: nextState,
			Done:      done,
			Info:      info,
		}
		if player == 0 {
			a.learner.Update(step, transition)
		}
		trace.Append(transition)
		if info.Invalid {
			return trace, fmt.Errorf("%w: %s at %s", ErrInvalidMove, action.Hash(), state.Hash())
		}
		state = nextState
		if done {
			break
		}
	}
	a.learner.UpdateIteration(episode, trace)

	return trace, nil
}
