package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zeu5/tictactoe-rl/artifact"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

type moveRequest struct {
	State []string `json:"state" binding:"required"`
}

type moveResponse struct {
	State    []string `json:"state"`
	Move     int      `json:"move"`
	Fallback bool     `json:"fallback"`
}

func (s *MoveServer) handleIndex(c *gin.Context) {
	c.String(http.StatusOK, Banner)
}

func (s *MoveServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "states": s.policy.Len()})
}

func (s *MoveServer) handleMove(c *gin.Context) {
	req := moveRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}
	board, err := tictactoe.BoardFromSymbols(req.State)
	if err == nil {
		err = board.CheckValid()
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.lock.Lock()
	move, fallback, err := artifact.Reply(s.policy, board, s.rand)
	s.lock.Unlock()
	if err != nil {
		if errors.Is(err, artifact.ErrBoardFull) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.metrics.observeMove(fallback)

	board = board.With(move, tictactoe.PlayerO)
	c.JSON(http.StatusOK, moveResponse{
		State:    board.Symbols(),
		Move:     int(move),
		Fallback: fallback,
	})
}
