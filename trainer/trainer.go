// Package trainer runs Q-learning episodes against a uniformly random
// opponent and collapses the learned table into a policy artifact.
package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zeu5/tictactoe-rl/artifact"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/tictactoe"
	"github.com/zeu5/tictactoe-rl/types"
)

type Config struct {
	Episodes  int
	Workers   int
	QLearning policies.QLearningConfig
	// OnEpisode receives every finished episode, optional
	OnEpisode func(int, *types.Trace)
}

// Result of a training run
type Result struct {
	RunID    string
	Episodes int
	Duration time.Duration
	Epsilon  float64
	Learner  *policies.QLearningPolicy
	Policy   *artifact.Policy
	Outcomes *types.OutcomeDataSet
}

type Trainer struct {
	config Config
	logger *zerolog.Logger
}

func New(config Config, logger *zerolog.Logger) *Trainer {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Trainer{
		config: config,
		logger: logger,
	}
}

// Train runs the configured number of episodes and extracts the policy.
// An invalid move by either player aborts the run.
func (t *Trainer) Train(ctx context.Context) (*Result, error) {
	if err := t.config.QLearning.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.New().String()
	learner := policies.NewQLearningPolicy(t.config.QLearning)
	outcomes := make([]types.Outcome, 0, t.config.Episodes)
	onEpisode := func(episode int, trace *types.Trace) {
		outcomes = append(outcomes, trace.Outcome())
		if t.config.OnEpisode != nil {
			t.config.OnEpisode(episode, trace)
		}
	}

	t.logger.Info().
		Str("run_id", runID).
		Int("episodes", t.config.Episodes).
		Int("workers", t.config.Workers).
		Float64("alpha", t.config.QLearning.Alpha).
		Float64("gamma", t.config.QLearning.Gamma).
		Msg("training started")

	start := time.Now()
	var err error
	if t.config.Workers > 1 {
		err = types.NewParallelAgent(&types.ParallelAgentConfig{
			Episodes: t.config.Episodes,
			Workers:  t.config.Workers,
			Learner:  learner,
			NewEnvironment: func(_ int) types.Environment {
				return tictactoe.NewEnvironment()
			},
			NewOpponent: func(worker int) types.Policy {
				return types.NewRandomPolicy(OpponentSeed(t.config.QLearning.Seed, worker))
			},
			OnEpisode: onEpisode,
		}).Run(ctx)
	} else {
		err = types.NewAgent(&types.AgentConfig{
			Episodes:    t.config.Episodes,
			Learner:     learner,
			Opponent:    types.NewRandomPolicy(OpponentSeed(t.config.QLearning.Seed, 0)),
			Environment: tictactoe.NewEnvironment(),
			OnEpisode:   onEpisode,
		}).Run(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("training run %s: %w", runID, err)
	}

	policy, err := artifact.Extract(learner.Table())
	if err != nil {
		return nil, fmt.Errorf("extracting policy: %w", err)
	}
	result := &Result{
		RunID:    runID,
		Episodes: t.config.Episodes,
		Duration: time.Since(start),
		Epsilon:  learner.Epsilon(),
		Learner:  learner,
		Policy:   policy.WithRun(runID, t.config.Episodes),
		Outcomes: types.Outcomes(outcomes, windowFor(t.config.Episodes)),
	}

	t.logger.Info().
		Str("run_id", runID).
		Dur("duration", result.Duration).
		Int("states", policy.Len()).
		Int("entries", learner.Table().Len()).
		Float64("epsilon", result.Epsilon).
		Float64("final_win_rate", result.Outcomes.FinalWinRate()).
		Msg("training finished")
	return result, nil
}

// OpponentSeed derives an opponent's seed from the learner's so a seeded run is
// reproducible without both sides drawing from the same stream. 0 stays 0.
func OpponentSeed(seed uint64, worker int) uint64 {
	if seed == 0 {
		return 0
	}
	return seed + uint64(worker) + 1
}

func windowFor(episodes int) int {
	if episodes >= 100 {
		return episodes / 100
	}
	return 1
}
