package commands

import (
	"fmt"
	"path"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/trainer"
	"github.com/zeu5/tictactoe-rl/types"
	"github.com/zeu5/tictactoe-rl/util"
)

func TrainCommand() *cobra.Command {
	var recordTraces bool
	var recordTable bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the Q-learning agent and save the policy artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)
			ctx, cancel := signalContext()
			defer cancel()

			stop, err := startProfiling(cfg.RecordPath)
			if err != nil {
				return err
			}
			defer stop()

			padding := len(strconv.Itoa(cfg.Episodes))
			tracesFile := path.Join(cfg.RecordPath, "traces", "train.jsonl")
			t := trainer.New(trainer.Config{
				Episodes:  cfg.Episodes,
				Workers:   cfg.Workers,
				QLearning: cfg.QLearning(),
				OnEpisode: func(episode int, trace *types.Trace) {
					if recordTraces {
						if bs, err := trace.MarshalJSON(); err == nil {
							util.AppendToFile(tracesFile, string(bs))
						}
					}
					if (episode+1)%1000 == 0 {
						fmt.Printf("\rEpisode: %*d/%d", padding, episode+1, cfg.Episodes)
					}
				},
			}, logger)

			result, err := t.Train(ctx)
			fmt.Println("")
			if err != nil {
				return err
			}
			if recordTable {
				if err := result.Learner.Table().Record(path.Join(cfg.RecordPath, "qtable_"+result.RunID)); err != nil {
					return err
				}
			}
			if cfg.EvalEpisodes > 0 {
				eval, err := trainer.EvaluateGreedy(ctx, result, cfg.EvalEpisodes, cfg.Seed)
				if err != nil {
					return err
				}
				logger.Info().
					Int("games", eval.Games).
					Float64("win_rate", eval.Win).
					Float64("draw_rate", eval.Draw).
					Float64("loss_rate", eval.Loss).
					Msg("greedy evaluation against random opponent")
			}
			return savePolicy(ctx, cfg, result.Policy, logger)
		},
	}
	cmd.Flags().BoolVar(&recordTraces, "record-traces", false, "Append every episode to <save>/traces/train.jsonl")
	cmd.Flags().BoolVar(&recordTable, "record-table", false, "Dump the full Q-table to <save>")
	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "write cpu profile to `file`")
	cmd.Flags().StringVar(&memprofile, "memprofile", "", "write memory profile to `file`")
	return cmd
}
