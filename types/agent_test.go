package types_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/tictactoe-rl/tictactoe"
	"github.com/zeu5/tictactoe-rl/types"
)

// countingLearner plays randomly and records how it was driven
type countingLearner struct {
	*types.RandomPolicy
	lock       sync.Mutex
	updates    int
	iterations int
	players    []int
}

func newCountingLearner(seed uint64) *countingLearner {
	return &countingLearner{RandomPolicy: types.NewRandomPolicy(seed)}
}

func (c *countingLearner) NextAction(step int, s types.State, a []types.Action) (types.Action, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.RandomPolicy.NextAction(step, s, a)
}

func (c *countingLearner) Update(_ int, t *types.Transition) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.updates++
	c.players = append(c.players, t.Player)
}

func (c *countingLearner) UpdateIteration(_ int, _ *types.Trace) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.iterations++
}

// fixedPolicy always plays the same cell, legal or not
type fixedPolicy struct {
	move tictactoe.Move
}

func (f *fixedPolicy) Reset() {}

func (f *fixedPolicy) NextAction(_ int, _ types.State, _ []types.Action) (types.Action, bool) {
	return f.move, true
}

func TestRunEpisodeAlternatesPlayers(t *testing.T) {
	learner := newCountingLearner(3)
	agent := types.NewAgent(&types.AgentConfig{
		Learner:     learner,
		Opponent:    types.NewRandomPolicy(4),
		Environment: tictactoe.NewEnvironment(),
	})

	for episode := 0; episode < 100; episode++ {
		trace, err := agent.RunEpisode(episode)
		require.NoError(t, err)
		require.LessOrEqual(t, trace.Len(), tictactoe.Cells)
		for i := 0; i < trace.Len(); i++ {
			tr, ok := trace.Get(i)
			require.True(t, ok)
			assert.Equal(t, i%2, tr.Player)
			assert.Equal(t, i == trace.Len()-1, tr.Done)
		}
		assert.NotEqual(t, types.OutcomeUnfinished, trace.Outcome())
		assert.NotEqual(t, types.OutcomeInvalid, trace.Outcome())
	}
	assert.Equal(t, 100, learner.iterations)
	for _, p := range learner.players {
		assert.Equal(t, 0, p)
	}
}

func TestInvalidMoveIsFatal(t *testing.T) {
	learner := types.NoLearning(&fixedPolicy{move: 4})
	agent := types.NewAgent(&types.AgentConfig{
		Episodes:    1,
		Learner:     learner,
		Opponent:    types.NewRandomPolicy(5),
		Environment: tictactoe.NewEnvironment(),
	})
	err := agent.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidMove))

	trace, err := agent.RunEpisode(0)
	require.Error(t, err)
	assert.Equal(t, types.OutcomeInvalid, trace.Outcome())
	last, ok := trace.Last()
	require.True(t, ok)
	assert.Equal(t, tictactoe.InvalidReward, last.Reward)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	episodes := 0
	err := types.NewAgent(&types.AgentConfig{
		Episodes:    10,
		Learner:     newCountingLearner(1),
		Opponent:    types.NewRandomPolicy(2),
		Environment: tictactoe.NewEnvironment(),
		OnEpisode:   func(int, *types.Trace) { episodes++ },
	}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, episodes)
}

func TestParallelAgentRunsEveryEpisodeOnce(t *testing.T) {
	learner := newCountingLearner(9)
	seen := make(map[int]bool)
	err := types.NewParallelAgent(&types.ParallelAgentConfig{
		Episodes: 500,
		Workers:  4,
		Learner:  learner,
		NewEnvironment: func(int) types.Environment {
			return tictactoe.NewEnvironment()
		},
		NewOpponent: func(worker int) types.Policy {
			return types.NewRandomPolicy(uint64(worker + 1))
		},
		OnEpisode: func(episode int, trace *types.Trace) {
			assert.False(t, seen[episode])
			seen[episode] = true
		},
	}).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, seen, 500)
	assert.Equal(t, 500, learner.iterations)
}

func TestParallelAgentPropagatesErrors(t *testing.T) {
	err := types.NewParallelAgent(&types.ParallelAgentConfig{
		Episodes: 50,
		Workers:  3,
		Learner:  types.NoLearning(&fixedPolicy{move: 0}),
		NewEnvironment: func(int) types.Environment {
			return tictactoe.NewEnvironment()
		},
		NewOpponent: func(worker int) types.Policy {
			return types.NewRandomPolicy(uint64(worker + 1))
		},
	}).Run(context.Background())
	assert.ErrorIs(t, err, types.ErrInvalidMove)
}
