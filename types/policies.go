package types

import (
	"time"

	"golang.org/x/exp/rand"
)

// Policy picks the next action of a player
type Policy interface {
	NextAction(int, State, []Action) (Action, bool)
	Reset()
}

// LearningPolicy is a Policy that learns from its own transitions.
// Implementations shared across ParallelAgent workers must be safe for concurrent use.
type LearningPolicy interface {
	Policy
	// Update called after every step taken by the policy
	Update(int, *Transition)
	// UpdateIteration called once at the end of each completed episode
	UpdateIteration(int, *Trace)
}

// RandomPolicy picks uniformly among the available actions
type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

// NewRandomPolicy seeded with seed, 0 picks a time based seed
func NewRandomPolicy(seed uint64) *RandomPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomPolicy{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// Reset is a no-op, the random stream is not rewound between runs
func (r *RandomPolicy) Reset() {}

func (r *RandomPolicy) NextAction(step int, state State, actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	i := r.rand.Intn(len(actions))
	return actions[i], true
}

type frozenPolicy struct {
	Policy
}

// NoLearning adapts a Policy to a LearningPolicy that never updates
func NoLearning(p Policy) LearningPolicy {
	return &frozenPolicy{Policy: p}
}

func (f *frozenPolicy) Update(_ int, _ *Transition) {}

func (f *frozenPolicy) UpdateIteration(_ int, _ *Trace) {}
