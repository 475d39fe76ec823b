package policies

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/zeu5/tictactoe-rl/types"
	"golang.org/x/exp/rand"
)

type QLearningConfig struct {
	Alpha        float64
	Gamma        float64
	Epsilon      float64
	EpsilonDecay float64
	EpsilonMin   float64
	Seed         uint64
}

// DefaultQLearningConfig matches the reference trainer
func DefaultQLearningConfig() QLearningConfig {
	return QLearningConfig{
		Alpha:        0.1,
		Gamma:        0.9,
		Epsilon:      1.0,
		EpsilonDecay: 0.9999,
		EpsilonMin:   0.05,
	}
}

func (c QLearningConfig) Validate() error {
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1], got %v", c.Alpha)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1], got %v", c.Gamma)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > c.Epsilon || c.Epsilon > 1 {
		return fmt.Errorf("epsilon bounds must satisfy 0 <= min <= epsilon <= 1, got min=%v epsilon=%v", c.EpsilonMin, c.Epsilon)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay must be in (0, 1], got %v", c.EpsilonDecay)
	}
	return nil
}

// QLearningPolicy is an epsilon-greedy tabular Q-learner.
// All methods are serialized so one instance can be shared by parallel workers.
type QLearningPolicy struct {
	config  QLearningConfig
	qTable  *QTable
	epsilon float64
	seed    uint64
	rand    *rand.Rand
	lock    *sync.Mutex
}

var _ types.LearningPolicy = &QLearningPolicy{}

func NewQLearningPolicy(config QLearningConfig) *QLearningPolicy {
	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &QLearningPolicy{
		config:  config,
		qTable:  NewQTable(),
		epsilon: config.Epsilon,
		seed:    seed,
		rand:    rand.New(rand.NewSource(seed)),
		lock:    new(sync.Mutex),
	}
}

// Reset clears the table and restores epsilon. The random stream keeps
// running so consecutive runs explore differently.
func (q *QLearningPolicy) Reset() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.qTable = NewQTable()
	q.epsilon = q.config.Epsilon
}

// Table backing the policy
func (q *QLearningPolicy) Table() *QTable {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.qTable
}

func (q *QLearningPolicy) Epsilon() float64 {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.epsilon
}

// SetEpsilon overrides the exploration rate, 0 makes the policy greedy
func (q *QLearningPolicy) SetEpsilon(epsilon float64) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.epsilon = epsilon
}

// ValueOf the pair, 0 when unseen
func (q *QLearningPolicy) ValueOf(state types.State, action types.Action) float64 {
	return q.Table().Get(state.Hash(), action.Hash(), 0)
}

// NextAction is epsilon-greedy over actions. Ties between maximisers are broken uniformly at random.
// Calling it without actions means terminal detection is broken and panics.
func (q *QLearningPolicy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		panic(fmt.Sprintf("action selection on a state without legal actions: %q", state.Hash()))
	}
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.rand.Float64() < q.epsilon {
		return actions[q.rand.Intn(len(actions))], true
	}

	actionsMap := make(map[string]types.Action, len(actions))
	available := make([]string, len(actions))
	for i, a := range actions {
		aHash := a.Hash()
		actionsMap[aHash] = a
		available[i] = aHash
	}
	best, _ := q.qTable.MaxAmong(state.Hash(), available, 0)
	return actionsMap[best[q.rand.Intn(len(best))]], true
}

// Learn applies the one step Q-learning update
//
//	Q(s,a) += alpha * (target - Q(s,a))
//
// with target = reward when done, else reward + gamma * max_a' Q(s',a') over nextActions.
func (q *QLearningPolicy) Learn(state types.State, action types.Action, reward float64, nextState types.State, nextActions []types.Action, done bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.learn(state, action, reward, nextState, nextActions, done)
}

func (q *QLearningPolicy) learn(state types.State, action types.Action, reward float64, nextState types.State, nextActions []types.Action, done bool) {
	stateHash := state.Hash()
	actionHash := action.Hash()

	target := reward
	if !done {
		nextMax := 0.0
		if len(nextActions) > 0 {
			nextHash := nextState.Hash()
			nextMax = math.Inf(-1)
			for _, a := range nextActions {
				nextMax = math.Max(nextMax, q.qTable.Get(nextHash, a.Hash(), 0))
			}
		}
		target = reward + q.config.Gamma*nextMax
	}
	curVal := q.qTable.Get(stateHash, actionHash, 0)
	q.qTable.Set(stateHash, actionHash, curVal+q.config.Alpha*(target-curVal))
}

// Update learns from a transition taken by this policy
func (q *QLearningPolicy) Update(_ int, t *types.Transition) {
	q.Learn(t.State, t.Action, t.Reward, t.NextState, t.NextState.Actions(), t.Done)
}

// DecayExploration shrinks epsilon multiplicatively down to the floor
func (q *QLearningPolicy) DecayExploration() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.epsilon = math.Max(q.epsilon*q.config.EpsilonDecay, q.config.EpsilonMin)
}

func (q *QLearningPolicy) UpdateIteration(_ int, _ *types.Trace) {
	q.DecayExploration()
}

// Greedy view on the same table that never explores
func (q *QLearningPolicy) Greedy() types.Policy {
	return &greedyPolicy{
		qTable: q.Table(),
		rand:   rand.New(rand.NewSource(q.seed + 1)),
	}
}

type greedyPolicy struct {
	qTable *QTable
	rand   *rand.Rand
}

func (g *greedyPolicy) Reset() {}

func (g *greedyPolicy) NextAction(_ int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	available := make([]string, len(actions))
	for i, a := range actions {
		available[i] = a.Hash()
	}
	best, _ := g.qTable.MaxAmong(state.Hash(), available, 0)
	pick := best[g.rand.Intn(len(best))]
	for _, a := range actions {
		if a.Hash() == pick {
			return a, true
		}
	}
	return nil, false
}

// Record dumps the Q-table as json to path
func (q *QLearningPolicy) Record(path string) error {
	return q.Table().Record(path)
}
