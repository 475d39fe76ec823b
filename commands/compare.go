package commands

import (
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/config"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/tictactoe"
	"github.com/zeu5/tictactoe-rl/trainer"
	"github.com/zeu5/tictactoe-rl/types"
)

// CompareCommand trains the Q-learner next to its exploration variants and a random learner
// and plots their learning curves
func CompareCommand() *cobra.Command {
	var recordTraces bool
	var recordPolicy bool
	var temperature float64
	var bonus float64

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the Q-learning agent with its exploration variants and a random player",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			c, err := types.NewComparison(&types.ComparisonConfig{
				Runs:         cfg.Runs,
				Episodes:     cfg.Episodes,
				SavePath:     cfg.RecordPath,
				RecordTraces: recordTraces,
				RecordPolicy: recordPolicy,
			})
			if err != nil {
				return err
			}
			c.AddAnalysis("outcomes", types.NewOutcomeAnalyzer(cfg.Window), types.OutcomeComparator(path.Join(cfg.RecordPath, "outcomes")))
			c.AddAnalysis("coverage", types.NewCoverageAnalyzer(), types.CoverageComparator(path.Join(cfg.RecordPath, "coverage")))

			for _, e := range compareExperiments(cfg, temperature, bonus) {
				c.AddExperiment(e)
			}

			_, err = c.Run(ctx)
			return err
		},
	}
	cmd.Flags().BoolVar(&recordTraces, "record-traces", false, "Record every episode as jsonl")
	cmd.Flags().BoolVar(&recordPolicy, "record-policy", false, "Dump the learned Q-table after every run")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.2, "Temperature of the softmax learner")
	cmd.Flags().Float64Var(&bonus, "bonus", 0.5, "Scale of the exploration bonus learner's visit bonus")
	return cmd
}

// compareExperiments are the learners compared against a random O. Opponents
// draw from a different stream than the learners even when a seed is set.
func compareExperiments(cfg *config.Config, temperature, bonus float64) []*types.Experiment {
	opponentSeed := trainer.OpponentSeed(cfg.Seed, 0)
	return []*types.Experiment{
		types.NewExperiment(
			"QLearning",
			policies.NewQLearningPolicy(cfg.QLearning()),
			types.NewRandomPolicy(opponentSeed),
			tictactoe.NewEnvironment(),
		),
		types.NewExperiment(
			"Softmax",
			policies.NewSoftmaxPolicy(cfg.QLearning(), temperature),
			types.NewRandomPolicy(opponentSeed),
			tictactoe.NewEnvironment(),
		),
		types.NewExperiment(
			"Bonus",
			policies.NewBonusPolicy(cfg.QLearning(), bonus),
			types.NewRandomPolicy(opponentSeed),
			tictactoe.NewEnvironment(),
		),
		types.NewExperiment(
			"Random",
			types.NoLearning(types.NewRandomPolicy(cfg.Seed)),
			types.NewRandomPolicy(opponentSeed),
			tictactoe.NewEnvironment(),
		),
	}
}
