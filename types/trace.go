package types

import "encoding/json"

// Transition observed after a single step of an episode
type Transition struct {
	Step      int
	Player    int
	State     State
	Action    Action
	Reward    float64
	NextState State
	Done      bool
	Info      StepInfo
}

// Outcome of an episode from the learner's perspective
type Outcome int

const (
	OutcomeUnfinished Outcome = iota
	OutcomeWin
	OutcomeDraw
	OutcomeLoss
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeDraw:
		return "draw"
	case OutcomeLoss:
		return "loss"
	case OutcomeInvalid:
		return "invalid"
	}
	return "unfinished"
}

// Trace of an episode as a sequence of transitions
type Trace struct {
	transitions []*Transition
}

func NewTrace() *Trace {
	return &Trace{
		transitions: make([]*Transition, 0),
	}
}

func (t *Trace) Append(tr *Transition) {
	t.transitions = append(t.transitions, tr)
}

func (t *Trace) Len() int {
	return len(t.transitions)
}

func (t *Trace) Get(i int) (*Transition, bool) {
	if i < 0 || i >= len(t.transitions) {
		return nil, false
	}
	return t.transitions[i], true
}

func (t *Trace) Last() (*Transition, bool) {
	return t.Get(len(t.transitions) - 1)
}

// Outcome reads the result of the episode off the last transition.
// Rewards are from the mover's perspective, so a terminal opponent move is mirrored.
func (t *Trace) Outcome() Outcome {
	last, ok := t.Last()
	if !ok || !last.Done {
		return OutcomeUnfinished
	}
	if last.Info.Invalid {
		return OutcomeInvalid
	}
	switch {
	case last.Reward > 0 && last.Reward < 1:
		return OutcomeDraw
	case last.Reward >= 1 && last.Player == 0, last.Reward < 0 && last.Player != 0:
		return OutcomeWin
	case last.Reward >= 1, last.Reward < 0:
		return OutcomeLoss
	}
	return OutcomeUnfinished
}

// States visited where the given player had to move
func (t *Trace) States(player int) []string {
	out := make([]string, 0, len(t.transitions))
	for _, tr := range t.transitions {
		if tr.Player == player {
			out = append(out, tr.State.Hash())
		}
	}
	return out
}

type jsonTransition struct {
	Step      int      `json:"step"`
	Player    int      `json:"player"`
	State     string   `json:"state"`
	Action    string   `json:"action"`
	Reward    float64  `json:"reward"`
	NextState string   `json:"next_state"`
	Done      bool     `json:"done"`
	Info      StepInfo `json:"info"`
}

func (t *Trace) MarshalJSON() ([]byte, error) {
	out := make([]jsonTransition, len(t.transitions))
	for i, tr := range t.transitions {
		out[i] = jsonTransition{
			Step:      tr.Step,
			Player:    tr.Player,
			State:     tr.State.Hash(),
			Action:    tr.Action.Hash(),
			Reward:    tr.Reward,
			NextState: tr.NextState.Hash(),
			Done:      tr.Done,
			Info:      tr.Info,
		}
	}
	return json.Marshal(map[string]interface{}{
		"outcome":     t.Outcome().String(),
		"transitions": out,
	})
}
