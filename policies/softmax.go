package policies

import (
	"math"

	"github.com/zeu5/tictactoe-rl/types"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SoftmaxPolicy is a Q-learner that explores with a Boltzmann distribution
// over action values instead of epsilon-greedy. Learning and epsilon
// bookkeeping are shared with QLearningPolicy.
type SoftmaxPolicy struct {
	*QLearningPolicy
	temperature float64
}

var _ types.LearningPolicy = &SoftmaxPolicy{}

func NewSoftmaxPolicy(config QLearningConfig, temperature float64) *SoftmaxPolicy {
	if temperature <= 0 {
		temperature = 1
	}
	return &SoftmaxPolicy{
		QLearningPolicy: NewQLearningPolicy(config),
		temperature:     temperature,
	}
}

func (s *SoftmaxPolicy) Temperature() float64 {
	return s.temperature
}

// NextAction samples an action with probability proportional to exp(Q/temperature)
func (s *SoftmaxPolicy) NextAction(_ int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	stateHash := state.Hash()
	weights := make([]float64, len(actions))
	maxVal := math.Inf(-1)
	for i, a := range actions {
		weights[i] = s.qTable.Get(stateHash, a.Hash(), 0) / s.temperature
		maxVal = math.Max(maxVal, weights[i])
	}
	// shifted by the max so exp never overflows
	for i, w := range weights {
		weights[i] = math.Exp(w - maxVal)
	}
	i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
	if !ok {
		return nil, false
	}
	return actions[i], true
}
