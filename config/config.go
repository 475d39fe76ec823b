// Package config holds the trainer and server configuration.
// Values come from defaults, an optional config file, TTT_ prefixed
// environment variables and command line flags, in increasing priority.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/zeu5/tictactoe-rl/policies"
)

// EnvPrefix of the environment variables read by Load
const EnvPrefix = "TTT"

type Config struct {
	// Training
	Episodes     int     `mapstructure:"episodes"`
	Alpha        float64 `mapstructure:"alpha"`
	Gamma        float64 `mapstructure:"gamma"`
	Epsilon      float64 `mapstructure:"epsilon"`
	EpsilonDecay float64 `mapstructure:"epsilon_decay"`
	EpsilonMin   float64 `mapstructure:"epsilon_min"`
	Seed         uint64  `mapstructure:"seed"`
	Workers      int     `mapstructure:"workers"`

	// Policy handoff
	PolicyPath string `mapstructure:"policy_path"`
	RedisAddr  string `mapstructure:"redis_addr"`
	RedisKey   string `mapstructure:"redis_key"`

	// Serving
	Port int `mapstructure:"port"`

	// Analysis
	RecordPath   string `mapstructure:"record_path"`
	EvalEpisodes int    `mapstructure:"eval_episodes"`
	Runs         int    `mapstructure:"runs"`
	Window       int    `mapstructure:"window"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the configuration of the reference trainer
func Default() *Config {
	q := policies.DefaultQLearningConfig()
	return &Config{
		Episodes:     100000,
		Alpha:        q.Alpha,
		Gamma:        q.Gamma,
		Epsilon:      q.Epsilon,
		EpsilonDecay: q.EpsilonDecay,
		EpsilonMin:   q.EpsilonMin,
		Seed:         0,
		Workers:      1,
		PolicyPath:   "data/policy.json",
		RedisAddr:    "",
		RedisKey:     "tictactoe:policy",
		Port:         5000,
		RecordPath:   "results",
		EvalEpisodes: 1000,
		Runs:         1,
		Window:       1000,
		LogLevel:     "info",
	}
}

// SetDefaults registers the defaults with v so that unset keys unmarshal to them
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("episodes", d.Episodes)
	v.SetDefault("alpha", d.Alpha)
	v.SetDefault("gamma", d.Gamma)
	v.SetDefault("epsilon", d.Epsilon)
	v.SetDefault("epsilon_decay", d.EpsilonDecay)
	v.SetDefault("epsilon_min", d.EpsilonMin)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("policy_path", d.PolicyPath)
	v.SetDefault("redis_addr", d.RedisAddr)
	v.SetDefault("redis_key", d.RedisKey)
	v.SetDefault("port", d.Port)
	v.SetDefault("record_path", d.RecordPath)
	v.SetDefault("eval_episodes", d.EvalEpisodes)
	v.SetDefault("runs", d.Runs)
	v.SetDefault("window", d.Window)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads the configuration from v. configFile is optional.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// QLearning extracts the learner configuration
func (c *Config) QLearning() policies.QLearningConfig {
	return policies.QLearningConfig{
		Alpha:        c.Alpha,
		Gamma:        c.Gamma,
		Epsilon:      c.Epsilon,
		EpsilonDecay: c.EpsilonDecay,
		EpsilonMin:   c.EpsilonMin,
		Seed:         c.Seed,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Episodes < 0 {
		return fmt.Errorf("episodes must not be negative")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if err := c.QLearning().Validate(); err != nil {
		return err
	}
	if c.PolicyPath == "" && c.RedisAddr == "" {
		return fmt.Errorf("one of policy_path or redis_addr is required")
	}
	if c.RedisAddr != "" && c.RedisKey == "" {
		return fmt.Errorf("redis_key is required with redis_addr")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1-65535")
	}
	if c.Runs < 1 {
		return fmt.Errorf("runs must be positive")
	}
	if c.Window < 1 {
		return fmt.Errorf("window must be positive")
	}
	if c.EvalEpisodes < 0 {
		return fmt.Errorf("eval_episodes must not be negative")
	}
	return nil
}
