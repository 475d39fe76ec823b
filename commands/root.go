package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeu5/tictactoe-rl/artifact"
	"github.com/zeu5/tictactoe-rl/config"
)

var (
	configFile string
	v          = viper.New()
)

func GetRootCommand() *cobra.Command {
	d := config.Default()
	rootCommand := &cobra.Command{
		Use:   "tictactoe-rl",
		Short: "Tabular Q-learning for tic-tac-toe",
		Long: `Trains a tic-tac-toe player with tabular Q-learning against a uniformly
random opponent, then serves the learned policy over HTTP.`,
		SilenceUsage: true,
	}
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	flags.IntP("episodes", "e", d.Episodes, "Number of training episodes")
	flags.Float64("alpha", d.Alpha, "Learning rate")
	flags.Float64("gamma", d.Gamma, "Discount factor")
	flags.Float64("epsilon", d.Epsilon, "Initial exploration rate")
	flags.Float64("epsilon-decay", d.EpsilonDecay, "Multiplicative exploration decay per episode")
	flags.Float64("epsilon-min", d.EpsilonMin, "Exploration rate floor")
	flags.Uint64("seed", d.Seed, "Random seed, 0 for a time based seed")
	flags.Int("workers", d.Workers, "Parallel training workers")
	flags.StringP("policy-path", "p", d.PolicyPath, "Policy artifact file")
	flags.String("redis-addr", d.RedisAddr, "Redis address for policy handoff, file is used when empty")
	flags.String("redis-key", d.RedisKey, "Redis key of the policy")
	flags.Int("port", d.Port, "Port of the move server")
	flags.StringP("save", "s", d.RecordPath, "Save the result data in the specified folder")
	flags.Int("eval-episodes", d.EvalEpisodes, "Games played when evaluating")
	flags.Int("runs", d.Runs, "Number of experiment runs")
	flags.Int("window", d.Window, "Episodes per point of the learning curves")
	flags.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	bindFlags(flags)

	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(ServeCommand())
	rootCommand.AddCommand(CompareCommand())
	rootCommand.AddCommand(EvaluateCommand())
	rootCommand.AddCommand(PushCommand())
	rootCommand.AddCommand(ShowCommand())
	return rootCommand
}

// flags use dashes, config keys underscores
func bindFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if f.Name == "save" {
			key = "record_path"
		}
		v.BindPFlag(key, f)
	})
}

func loadConfig() (*config.Config, error) {
	return config.Load(v, configFile)
}

func newLogger(level string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
	return &logger
}

func redisStore(cfg *config.Config) (*artifact.RedisStore, func() error) {
	cli := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	return artifact.NewRedisStore(cli, cfg.RedisKey), cli.Close
}

// loadPolicy reads the artifact from redis when configured, from the policy file otherwise
func loadPolicy(ctx context.Context, cfg *config.Config) (*artifact.Policy, error) {
	if cfg.RedisAddr != "" {
		store, closer := redisStore(cfg)
		defer closer()
		return store.Load(ctx)
	}
	return artifact.Load(cfg.PolicyPath)
}

func savePolicy(ctx context.Context, cfg *config.Config, policy *artifact.Policy, logger *zerolog.Logger) error {
	if cfg.PolicyPath != "" {
		if err := ensureParent(cfg.PolicyPath); err != nil {
			return err
		}
		if err := artifact.Save(cfg.PolicyPath, policy); err != nil {
			return fmt.Errorf("saving policy: %w", err)
		}
		logger.Info().Str("path", cfg.PolicyPath).Int("states", policy.Len()).Msg("policy saved")
	}
	if cfg.RedisAddr != "" {
		store, closer := redisStore(cfg)
		defer closer()
		if err := store.Save(ctx, policy); err != nil {
			return err
		}
		logger.Info().Str("addr", cfg.RedisAddr).Str("key", cfg.RedisKey).Int("states", policy.Len()).Msg("policy pushed to redis")
	}
	return nil
}
