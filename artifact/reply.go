package artifact

import (
	"errors"
	"time"

	"github.com/zeu5/tictactoe-rl/tictactoe"
	"github.com/zeu5/tictactoe-rl/types"
	"golang.org/x/exp/rand"
)

var ErrBoardFull = errors.New("board has no empty cell")

// Candidate is the value of the board after O plays Move
type Candidate struct {
	Move  tictactoe.Move
	Value float64
	Known bool
}

// Candidates evaluates every empty cell by tentatively placing O there
func Candidates(p *Policy, b tictactoe.Board) []Candidate {
	moves := b.EmptyCells()
	out := make([]Candidate, len(moves))
	for i, m := range moves {
		v, ok := p.Value(b.With(m, tictactoe.PlayerO))
		out[i] = Candidate{Move: m, Value: v, Known: ok}
	}
	return out
}

// Reply chooses O's move. The stored values are from X's perspective, so O takes
// the candidate with the lowest value, unknown candidates counting as 0 and the
// lowest index winning ties. When no candidate is known a random empty cell is
// played and fallback is true.
func Reply(p *Policy, b tictactoe.Board, rng *rand.Rand) (move tictactoe.Move, fallback bool, err error) {
	candidates := Candidates(p, b)
	if len(candidates) == 0 {
		return 0, false, ErrBoardFull
	}
	known := false
	for _, c := range candidates {
		known = known || c.Known
	}
	if !known {
		return candidates[rng.Intn(len(candidates))].Move, true, nil
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Value < best.Value {
			best = c
		}
	}
	return best.Move, false, nil
}

// ReplyPolicy plays O with Reply, for evaluating an artifact against other policies
type ReplyPolicy struct {
	policy *Policy
	rand   *rand.Rand
}

var _ types.Policy = &ReplyPolicy{}

func NewReplyPolicy(p *Policy, seed uint64) *ReplyPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &ReplyPolicy{
		policy: p,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

func (r *ReplyPolicy) Reset() {}

func (r *ReplyPolicy) NextAction(_ int, state types.State, actions []types.Action) (types.Action, bool) {
	b, ok := state.(tictactoe.Board)
	if !ok || len(actions) == 0 {
		return nil, false
	}
	m, _, err := Reply(r.policy, b, r.rand)
	if err != nil {
		return nil, false
	}
	return m, true
}
