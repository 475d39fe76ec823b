package policies

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/tictactoe-rl/tictactoe"
	"github.com/zeu5/tictactoe-rl/types"
)

func testConfig() QLearningConfig {
	c := DefaultQLearningConfig()
	c.Seed = 11
	return c
}

func TestBellmanUpdateTowardsZero(t *testing.T) {
	c := testConfig()
	c.Alpha = 0.5
	c.Gamma = 0.9
	q := NewQLearningPolicy(c)

	state := tictactoe.Board{}
	action := tictactoe.Move(4)
	q.Table().Set(state.Hash(), action.Hash(), 0.8)

	next := state.With(4, tictactoe.PlayerX)
	q.Learn(state, action, 0, next, next.Actions(), false)
	assert.InDelta(t, 0.4, q.ValueOf(state, action), 1e-12)
}

func TestBellmanTerminalUsesReward(t *testing.T) {
	c := testConfig()
	c.Alpha = 0.1
	q := NewQLearningPolicy(c)

	state := tictactoe.Board{}
	next := state.With(0, tictactoe.PlayerX)
	// a large future value must be ignored on terminal transitions
	q.Table().Set(next.Hash(), "1", 5)
	q.Learn(state, tictactoe.Move(0), 1, next, next.Actions(), true)
	assert.InDelta(t, 0.1, q.ValueOf(state, tictactoe.Move(0)), 1e-12)
}

func TestBellmanBootstrapsFromNextState(t *testing.T) {
	c := testConfig()
	c.Alpha = 1
	c.Gamma = 0.5
	q := NewQLearningPolicy(c)

	state := tictactoe.Board{}
	next := state.With(0, tictactoe.PlayerX)
	q.Table().Set(next.Hash(), "3", 0.6)
	q.Table().Set(next.Hash(), "5", -2)
	q.Learn(state, tictactoe.Move(0), 0, next, next.Actions(), false)
	assert.InDelta(t, 0.3, q.ValueOf(state, tictactoe.Move(0)), 1e-12)

	// no next actions means no future value
	q.Learn(state, tictactoe.Move(1), 0.2, next, []types.Action{}, false)
	assert.InDelta(t, 0.2, q.ValueOf(state, tictactoe.Move(1)), 1e-12)
}

func TestValueOfUnseenIsZero(t *testing.T) {
	q := NewQLearningPolicy(testConfig())
	assert.Zero(t, q.ValueOf(tictactoe.Board{}, tictactoe.Move(3)))
	assert.Zero(t, q.Table().Len())
}

func TestGreedySelectionPicksBest(t *testing.T) {
	c := testConfig()
	c.Epsilon = 0
	c.EpsilonMin = 0
	q := NewQLearningPolicy(c)
	state := tictactoe.Board{}
	q.Table().Set(state.Hash(), "6", 0.7)
	q.Table().Set(state.Hash(), "2", 0.1)

	for i := 0; i < 50; i++ {
		a, ok := q.NextAction(0, state, state.Actions())
		require.True(t, ok)
		assert.Equal(t, tictactoe.Move(6), a)
	}
}

func TestGreedyTiesAreBrokenRandomly(t *testing.T) {
	c := testConfig()
	c.Epsilon = 0
	c.EpsilonMin = 0
	q := NewQLearningPolicy(c)
	state := tictactoe.Board{}

	seen := make(map[string]int)
	for i := 0; i < 2000; i++ {
		a, ok := q.NextAction(0, state, state.Actions())
		require.True(t, ok)
		seen[a.Hash()]++
	}
	assert.Len(t, seen, tictactoe.Cells)
}

func TestSelectionWithoutActionsPanics(t *testing.T) {
	q := NewQLearningPolicy(testConfig())
	assert.Panics(t, func() {
		q.NextAction(0, tictactoe.Board{}, []types.Action{})
	})
}

func TestSelectionOnlyReturnsLegalActions(t *testing.T) {
	q := NewQLearningPolicy(testConfig())
	state := tictactoe.Board{}.With(0, tictactoe.PlayerX).With(4, tictactoe.PlayerO)
	actions := state.Actions()
	for i := 0; i < 500; i++ {
		a, ok := q.NextAction(0, state, actions)
		require.True(t, ok)
		assert.Contains(t, actions, a)
	}
}

func TestExplorationDecayIsMonotoneAndFloored(t *testing.T) {
	c := testConfig()
	c.Epsilon = 1
	c.EpsilonDecay = 0.5
	c.EpsilonMin = 0.1
	q := NewQLearningPolicy(c)

	prev := q.Epsilon()
	for i := 0; i < 20; i++ {
		q.DecayExploration()
		cur := q.Epsilon()
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0.1)
		prev = cur
	}
	assert.Equal(t, 0.1, q.Epsilon())
}

func TestResetRestoresInitialState(t *testing.T) {
	q := NewQLearningPolicy(testConfig())
	q.Table().Set("         ", "0", 1)
	q.DecayExploration()
	q.Reset()
	assert.Zero(t, q.Table().Len())
	assert.Equal(t, testConfig().Epsilon, q.Epsilon())
}

func TestResetKeepsRandomStream(t *testing.T) {
	q := NewQLearningPolicy(testConfig())
	b := tictactoe.Board{}
	pick := func() []types.Action {
		out := make([]types.Action, 30)
		for i := range out {
			out[i], _ = q.NextAction(0, b, b.Actions())
		}
		return out
	}
	first := pick()
	q.Reset()
	assert.NotEqual(t, first, pick())
}

func TestValueOfAfterReset(t *testing.T) {
	q := NewQLearningPolicy(testConfig())
	b := tictactoe.Board{}
	q.Table().Set(b.Hash(), tictactoe.Move(2).Hash(), 0.7)
	assert.Equal(t, 0.7, q.ValueOf(b, tictactoe.Move(2)))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		q.Reset()
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			q.ValueOf(b, tictactoe.Move(2))
		}
	}()
	wg.Wait()
	assert.Zero(t, q.ValueOf(b, tictactoe.Move(2)))
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	c := testConfig()
	c.Alpha = 1
	c.EpsilonDecay = 0.5
	q := NewQLearningPolicy(c)
	state := tictactoe.Board{}
	next := state.With(0, tictactoe.PlayerX)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				q.Learn(state, tictactoe.Move(0), 1, next, nil, true)
				q.NextAction(0, state, state.Actions())
				q.DecayExploration()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1.0, q.ValueOf(state, tictactoe.Move(0)))
	assert.Equal(t, c.EpsilonMin, q.Epsilon())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultQLearningConfig().Validate())

	c := DefaultQLearningConfig()
	c.Alpha = 0
	assert.Error(t, c.Validate())

	c = DefaultQLearningConfig()
	c.EpsilonMin = 2
	assert.Error(t, c.Validate())

	c = DefaultQLearningConfig()
	c.EpsilonDecay = 1.5
	assert.Error(t, c.Validate())
}
