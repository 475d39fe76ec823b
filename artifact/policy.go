// Package artifact holds the collapsed state -> value policy that the trainer
// hands to the move server, along with its on-disk and redis encodings.
package artifact

import (
	"sort"

	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

// Policy maps a board to the highest action value observed for it during training.
// It is immutable once built.
type Policy struct {
	runID    string
	episodes int
	values   map[tictactoe.Board]float64
}

// Extract collapses the Q-table: every state present in the table maps to the
// max over its recorded actions. States never visited are absent.
func Extract(table *policies.QTable) (*Policy, error) {
	values := make(map[tictactoe.Board]float64)
	for _, state := range table.States() {
		b, err := tictactoe.ParseBoard(state)
		if err != nil {
			return nil, err
		}
		_, v := table.Max(state, 0)
		values[b] = v
	}
	return &Policy{values: values}, nil
}

// New builds a policy from explicit values, the map is copied
func New(values map[tictactoe.Board]float64) *Policy {
	cp := make(map[tictactoe.Board]float64, len(values))
	for b, v := range values {
		cp[b] = v
	}
	return &Policy{values: cp}
}

// WithRun returns a copy of the policy labelled with the training run
func (p *Policy) WithRun(runID string, episodes int) *Policy {
	return &Policy{
		runID:    runID,
		episodes: episodes,
		values:   p.values,
	}
}

func (p *Policy) RunID() string {
	return p.runID
}

func (p *Policy) Episodes() int {
	return p.episodes
}

// Value of the board and whether it was visited
func (p *Policy) Value(b tictactoe.Board) (float64, bool) {
	v, ok := p.values[b]
	return v, ok
}

func (p *Policy) Len() int {
	return len(p.values)
}

// Keys of every visited board, sorted
func (p *Policy) Keys() []string {
	out := make([]string, 0, len(p.values))
	for b := range p.values {
		out = append(out, b.Key())
	}
	sort.Strings(out)
	return out
}

// Values copies the mapping keyed by board key
func (p *Policy) Values() map[string]float64 {
	out := make(map[string]float64, len(p.values))
	for b, v := range p.values {
		out[b.Key()] = v
	}
	return out
}

// Equal compares the values of two policies, metadata is ignored
func (p *Policy) Equal(other *Policy) bool {
	if len(p.values) != len(other.values) {
		return false
	}
	for b, v := range p.values {
		ov, ok := other.values[b]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
