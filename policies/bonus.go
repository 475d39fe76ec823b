package policies

import (
	"math"

	"github.com/zeu5/tictactoe-rl/types"
)

// BonusPolicy is a Q-learner with a count based exploration bonus.
// Each of its transitions is learned with reward + bonus/sqrt(n), n being the
// number of times the pair has been taken, so rarely tried moves stay attractive.
type BonusPolicy struct {
	*QLearningPolicy
	bonus  float64
	visits *QTable
}

var _ types.LearningPolicy = &BonusPolicy{}

func NewBonusPolicy(config QLearningConfig, bonus float64) *BonusPolicy {
	return &BonusPolicy{
		QLearningPolicy: NewQLearningPolicy(config),
		bonus:           bonus,
		visits:          NewQTable(),
	}
}

func (b *BonusPolicy) Reset() {
	b.QLearningPolicy.Reset()
	b.visits = NewQTable()
}

// Visits of the pair so far
func (b *BonusPolicy) Visits(state types.State, action types.Action) int {
	return int(b.visits.Get(state.Hash(), action.Hash(), 0))
}

func (b *BonusPolicy) Update(_ int, t *types.Transition) {
	stateHash := t.State.Hash()
	actionHash := t.Action.Hash()

	b.lock.Lock()
	defer b.lock.Unlock()
	n := b.visits.Get(stateHash, actionHash, 0) + 1
	b.visits.Set(stateHash, actionHash, n)
	b.learn(t.State, t.Action, t.Reward+b.bonus/math.Sqrt(n), t.NextState, t.NextState.Actions(), t.Done)
}
