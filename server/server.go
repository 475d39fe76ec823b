// Package server answers single move queries from a trained policy artifact.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/zeu5/tictactoe-rl/artifact"
	"golang.org/x/exp/rand"
)

// Banner returned on the index route
const Banner = "Tic Tac Toe RL Agent"

// MoveServer plays O's reply for a board posted by the client
type MoveServer struct {
	Port   int
	ctx    context.Context
	server *http.Server
	router *gin.Engine
	logger *zerolog.Logger

	policy  *artifact.Policy
	metrics *metrics

	// guards rand, gin handlers run concurrently
	lock *sync.Mutex
	rand *rand.Rand
}

// NewMoveServer serves the policy on localhost:port until ctx is done.
// The policy must be loaded beforehand and is never reloaded.
func NewMoveServer(ctx context.Context, port int, policy *artifact.Policy, logger *zerolog.Logger, seed uint64) *MoveServer {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	s := &MoveServer{
		Port:    port,
		ctx:     ctx,
		logger:  logger,
		policy:  policy,
		metrics: newMetrics(),
		lock:    new(sync.Mutex),
		rand:    rand.New(rand.NewSource(seed)),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), cors.Default(), CorrelationID(), RequestLogger(logger), s.metrics.instrument())
	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)
	r.POST("/move", s.handleMove)
	r.GET("/metrics", gin.WrapH(s.metrics.handler()))
	s.router = r
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}
	return s
}

// Handler exposes the router, mainly for tests
func (s *MoveServer) Handler() http.Handler {
	return s.router
}

// Start serving in the background, the server shuts down when the context is done.
// The returned channel yields the error that stopped the listener, if any.
func (s *MoveServer) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", s.Port).Int("states", s.policy.Len()).Str("run_id", s.policy.RunID()).Msg("move server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	go func() {
		<-s.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}()
	return errCh
}
