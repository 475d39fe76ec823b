package trainer

import (
	"context"

	"github.com/zeu5/tictactoe-rl/artifact"
	"github.com/zeu5/tictactoe-rl/tictactoe"
	"github.com/zeu5/tictactoe-rl/types"
)

// Evaluation of a fixed player over a number of games against a random opponent
type Evaluation struct {
	Games  int     `json:"games"`
	Wins   int     `json:"wins"`
	Draws  int     `json:"draws"`
	Losses int     `json:"losses"`
	Win    float64 `json:"win_rate"`
	Draw   float64 `json:"draw_rate"`
	Loss   float64 `json:"loss_rate"`
}

func newEvaluation(outcomes []types.Outcome, mirrored bool) *Evaluation {
	ds := types.Outcomes(outcomes, len(outcomes)+1)
	e := &Evaluation{
		Games:  len(outcomes),
		Wins:   ds.Counts[types.OutcomeWin.String()],
		Draws:  ds.Counts[types.OutcomeDraw.String()],
		Losses: ds.Counts[types.OutcomeLoss.String()],
	}
	if len(ds.WinRate) > 0 {
		e.Win, e.Draw, e.Loss = ds.WinRate[0], ds.DrawRate[0], ds.LossRate[0]
	}
	if mirrored {
		e.Wins, e.Losses = e.Losses, e.Wins
		e.Win, e.Loss = e.Loss, e.Win
	}
	return e
}

func play(ctx context.Context, games int, learner types.LearningPolicy, opponent types.Policy) ([]types.Outcome, error) {
	outcomes := make([]types.Outcome, 0, games)
	err := types.NewAgent(&types.AgentConfig{
		Episodes:    games,
		Learner:     learner,
		Opponent:    opponent,
		Environment: tictactoe.NewEnvironment(),
		OnEpisode: func(_ int, trace *types.Trace) {
			outcomes = append(outcomes, trace.Outcome())
		},
	}).Run(ctx)
	return outcomes, err
}

// EvaluateGreedy plays the learned table as X without exploration or updates
func EvaluateGreedy(ctx context.Context, result *Result, games int, seed uint64) (*Evaluation, error) {
	outcomes, err := play(ctx, games, types.NoLearning(result.Learner.Greedy()), types.NewRandomPolicy(seed))
	if err != nil {
		return nil, err
	}
	return newEvaluation(outcomes, false), nil
}

// EvaluateReply plays the artifact as O, the way the move server does, against a random X.
// Results are reported from O's side.
func EvaluateReply(ctx context.Context, policy *artifact.Policy, games int, seed uint64) (*Evaluation, error) {
	x := types.NewRandomPolicy(seed)
	o := artifact.NewReplyPolicy(policy, OpponentSeed(seed, 0))
	outcomes, err := play(ctx, games, types.NoLearning(x), o)
	if err != nil {
		return nil, err
	}
	return newEvaluation(outcomes, true), nil
}
