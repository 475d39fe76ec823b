package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomesWindows(t *testing.T) {
	ds := Outcomes([]Outcome{OutcomeWin, OutcomeWin, OutcomeLoss, OutcomeDraw, OutcomeWin}, 2)
	assert.Equal(t, 5, ds.Episodes)
	assert.Equal(t, []float64{1, 0, 1}, ds.WinRate)
	assert.Equal(t, []float64{0, 0.5, 0}, ds.LossRate)
	assert.Equal(t, []float64{0, 0.5, 0}, ds.DrawRate)
	assert.Equal(t, 3, ds.Counts["win"])
	assert.Equal(t, 1.0, ds.FinalWinRate())
}

func TestOutcomesEmpty(t *testing.T) {
	ds := Outcomes(nil, 10)
	assert.Empty(t, ds.WinRate)
	assert.Zero(t, ds.FinalWinRate())
}

type hashState string

func (h hashState) Hash() string      { return string(h) }
func (h hashState) Actions() []Action { return nil }

type hashAction string

func (h hashAction) Hash() string { return string(h) }

func TestTraceOutcome(t *testing.T) {
	cases := []struct {
		player int
		reward float64
		info   StepInfo
		want   Outcome
	}{
		{0, 1, StepInfo{}, OutcomeWin},
		{1, 1, StepInfo{}, OutcomeLoss},
		{0, 0.5, StepInfo{}, OutcomeDraw},
		{1, 0.5, StepInfo{}, OutcomeDraw},
		{1, -1, StepInfo{}, OutcomeWin},
		{0, -10, StepInfo{Invalid: true}, OutcomeInvalid},
	}
	for _, c := range cases {
		trace := NewTrace()
		trace.Append(&Transition{Player: c.player, Reward: c.reward, Done: true, Info: c.info,
			State: hashState("s"), Action: hashAction("a"), NextState: hashState("n")})
		assert.Equal(t, c.want, trace.Outcome())
	}
	assert.Equal(t, OutcomeUnfinished, NewTrace().Outcome())
}

func TestCoverageAnalyzerCountsLearnerStates(t *testing.T) {
	a := NewCoverageAnalyzer()
	trace := NewTrace()
	trace.Append(&Transition{Player: 0, State: hashState("a"), Action: hashAction("0"), NextState: hashState("b")})
	trace.Append(&Transition{Player: 1, State: hashState("b"), Action: hashAction("1"), NextState: hashState("c")})
	trace.Append(&Transition{Player: 0, State: hashState("c"), Action: hashAction("2"), NextState: hashState("d")})
	a.Analyze(0, trace)
	a.Analyze(1, trace)
	assert.Equal(t, []int{2, 2}, a.DataSet())

	a.Reset()
	assert.Equal(t, []int{}, a.DataSet())
}
