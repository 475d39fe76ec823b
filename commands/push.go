package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/artifact"
)

// PushCommand copies the policy file into redis
func PushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Copy the policy file to redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.RedisAddr == "" {
				return fmt.Errorf("--redis-addr is required")
			}
			ctx, cancel := signalContext()
			defer cancel()

			policy, err := artifact.Load(cfg.PolicyPath)
			if err != nil {
				return err
			}
			store, closer := redisStore(cfg)
			defer closer()
			if err := store.Save(ctx, policy); err != nil {
				return err
			}
			fmt.Printf("Pushed %d states from %s to %s/%s\n", policy.Len(), cfg.PolicyPath, cfg.RedisAddr, cfg.RedisKey)
			return nil
		},
	}
}
