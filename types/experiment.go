package types

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/zeu5/tictactoe-rl/util"
)

type experimentRunConfig struct {
	CurrentRun int
	Episodes   int
	Analyzers  []Analyzer
	Context    context.Context

	RecordTraces bool
	RecordPolicy bool
	SavePath     string

	LongestExpNameLen int
}

// Recordable policies can dump their internal state
type Recordable interface {
	Record(string) error
}

// Experiment encapsulates the learner, opponent and environment of one configuration
type Experiment struct {
	Name        string
	learner     LearningPolicy
	opponent    Policy
	environment Environment
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, learner LearningPolicy, opponent Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:        name,
		learner:     learner,
		opponent:    opponent,
		environment: environment,
	}
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, trace *Trace) {
	tracesFile := path.Join(rConfig.SavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl")
	bs, err := json.Marshal(trace)
	if err != nil {
		return
	}
	util.AppendToFile(tracesFile, string(bs))
}

// Run the experiment for the specified number of episodes, feeding every trace to the analyzers
func (e *Experiment) Run(rConfig *experimentRunConfig) error {
	counts := make(map[Outcome]int)
	padding := len(strconv.Itoa(rConfig.Episodes))

	agent := NewAgent(&AgentConfig{
		Episodes:    rConfig.Episodes,
		Learner:     e.learner,
		Opponent:    e.opponent,
		Environment: e.environment,
		OnEpisode: func(episode int, trace *Trace) {
			counts[trace.Outcome()] += 1
			for _, a := range rConfig.Analyzers {
				a.Analyze(episode, trace)
			}
			if rConfig.RecordTraces {
				e.recordTrace(rConfig, trace)
			}
			if (episode+1)%100 == 0 || episode+1 == rConfig.Episodes {
				fmt.Printf("\rExp:%*s, Eps:%*d/%d, Win:%*d, Draw:%*d, Loss:%*d",
					rConfig.LongestExpNameLen, e.Name, padding, episode+1, rConfig.Episodes,
					padding, counts[OutcomeWin], padding, counts[OutcomeDraw], padding, counts[OutcomeLoss])
			}
		},
	})
	if err := agent.Run(rConfig.Context); err != nil {
		return fmt.Errorf("experiment %s: %w", e.Name, err)
	}
	fmt.Println("")

	if rConfig.RecordPolicy {
		if r, ok := e.learner.(Recordable); ok {
			r.Record(path.Join(rConfig.SavePath, "policies", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)))
		}
	}
	return nil
}

// Reset the learner and opponent between runs
func (e *Experiment) Reset() {
	e.learner.Reset()
	e.opponent.Reset()
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int    // number of runs
	Episodes int    // number of episodes
	SavePath string // path to store the results

	RecordTraces bool
	RecordPolicy bool
}

// Comparison contains the different experiments to compare
// The traces obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
}

// NewComparison creates a comparison instance and the folders it records to
func NewComparison(config *ComparisonConfig) (*Comparison, error) {
	folders := []string{""}
	if config.RecordTraces {
		folders = append(folders, "traces")
	}
	if config.RecordPolicy {
		folders = append(folders, "policies")
	}
	for _, f := range folders {
		if err := os.MkdirAll(path.Join(config.SavePath, f), 0777); err != nil {
			return nil, err
		}
	}

	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		cConfig:     config,
	}, nil
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	out := make(map[string]interface{})
	out["runs"] = c.cConfig.Runs
	out["episodes"] = c.cConfig.Episodes
	out["record_traces"] = c.cConfig.RecordTraces
	out["record_policy"] = c.cConfig.RecordPolicy

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments

	analyzers := make([]string, 0)
	for name := range c.analyzers {
		analyzers = append(analyzers, name)
	}
	out["analyzers"] = analyzers

	bs, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return util.WriteToFile(path.Join(c.cConfig.SavePath, "comparison_config.json"), string(bs))
}

// Run the comparison, returns the datasets of the last run keyed by analysis name
func (c *Comparison) Run(ctx context.Context) (map[string][]DataSet, error) {
	if err := c.recordConfig(); err != nil {
		return nil, err
	}

	longestNameLen := 0
	for _, e := range c.Experiments {
		if len(e.Name) > longestNameLen {
			longestNameLen = len(e.Name)
		}
	}

	var datasets map[string][]DataSet
	for run := 0; run < c.cConfig.Runs; run++ {
		fmt.Printf("Run %d\n", run+1)
		datasets = make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}

		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			analyzers := make([]Analyzer, 0, len(c.analyzers))
			for _, a := range c.analyzers {
				analyzers = append(analyzers, a)
			}
			err := e.Run(&experimentRunConfig{
				CurrentRun:        run,
				Episodes:          c.cConfig.Episodes,
				Analyzers:         analyzers,
				Context:           ctx,
				RecordTraces:      c.cConfig.RecordTraces,
				RecordPolicy:      c.cConfig.RecordPolicy,
				SavePath:          c.cConfig.SavePath,
				LongestExpNameLen: longestNameLen,
			})
			if err != nil {
				return nil, err
			}
			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
			e.Reset()
		}
		for name, comp := range c.comparators {
			comp(run, names, datasets[name])
		}
	}
	return datasets, nil
}
