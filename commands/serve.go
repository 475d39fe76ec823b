package commands

import (
	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/server"
)

func ServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve moves for O from a trained policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)
			ctx, cancel := signalContext()
			defer cancel()

			policy, err := loadPolicy(ctx, cfg)
			if err != nil {
				logger.Error().Err(err).Msg("could not load policy")
				return err
			}

			s := server.NewMoveServer(ctx, cfg.Port, policy, logger, cfg.Seed)
			// blocks until the listener stops, on failure or after shutdown
			if err := <-s.Start(); err != nil {
				return err
			}
			logger.Info().Msg("move server stopped")
			return nil
		},
	}
}
