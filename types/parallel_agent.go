package types

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

type ParallelAgentConfig struct {
	Episodes int
	Workers  int
	// Learner is shared by all workers and must be safe for concurrent use
	Learner LearningPolicy
	// each worker owns its environment and opponent
	NewEnvironment func(worker int) Environment
	NewOpponent    func(worker int) Policy
	// OnEpisode is invoked with every finished episode, calls are serialized
	OnEpisode func(int, *Trace)
}

// ParallelAgent generates episodes on independent environments.
// Only the learner is shared between workers.
type ParallelAgent struct {
	config *ParallelAgentConfig
	lock   *sync.Mutex
}

func NewParallelAgent(config *ParallelAgentConfig) *ParallelAgent {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &ParallelAgent{
		config: config,
		lock:   new(sync.Mutex),
	}
}

func (p *ParallelAgent) Run(ctx context.Context) error {
	var next atomic.Int64
	total := int64(p.config.Episodes)

	g, gCtx := errgroup.WithContext(ctx)
	for w := 0; w < p.config.Workers; w++ {
		worker := w
		agent := NewAgent(&AgentConfig{
			Learner:     p.config.Learner,
			Opponent:    p.config.NewOpponent(worker),
			Environment: p.config.NewEnvironment(worker),
		})
		g.Go(func() error {
			for {
				select {
				case <-gCtx.Done():
					return gCtx.Err()
				default:
				}
				episode := next.Add(1) - 1
				if episode >= total {
					return nil
				}
				trace, err := agent.RunEpisode(int(episode))
				if err != nil {
					return fmt.Errorf("worker %d, episode %d: %w", worker, episode, err)
				}
				if p.config.OnEpisode != nil {
					p.lock.Lock()
					p.config.OnEpisode(int(episode), trace)
					p.lock.Unlock()
				}
			}
		})
	}
	return g.Wait()
}
