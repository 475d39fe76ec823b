package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/trainer"
)

// EvaluateCommand plays the served policy as O against a random X
func EvaluateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Play the policy artifact as O against a random X",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			policy, err := loadPolicy(ctx, cfg)
			if err != nil {
				return err
			}
			eval, err := trainer.EvaluateReply(ctx, policy, cfg.EvalEpisodes, cfg.Seed)
			if err != nil {
				return err
			}
			bs, err := json.MarshalIndent(eval, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(bs))
			return nil
		},
	}
}
