package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestLegalActionsAreEmptyCells(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	env := NewEnvironment()
	for game := 0; game < 200; game++ {
		env.Reset()
		done := false
		for !done {
			board := env.Board()
			legal := env.LegalActions()
			filled := 0
			for _, c := range board {
				if c != Empty {
					filled++
				}
			}
			assert.Equal(t, Cells, len(legal)+filled)
			for _, m := range legal {
				assert.Equal(t, Empty, board[m])
			}
			require.NotEmpty(t, legal)
			_, _, done, _ = env.Apply(legal[r.Intn(len(legal))])
		}
	}
}

func TestApplyFlipsActivePlayer(t *testing.T) {
	env := NewEnvironment()
	env.Reset()
	var done bool
	for i := 0; i < Cells; i++ {
		before := env.Active()
		_, _, done, _ = env.Apply(Move(i))
		assert.Equal(t, before.Opponent(), env.Active())
	}
	assert.True(t, done)
	assert.True(t, env.Board().Full())
}

func TestTopRowWin(t *testing.T) {
	env := NewEnvironment()
	env.Reset()
	moves := []Move{NewMove(0, 0), NewMove(1, 1), NewMove(0, 1), NewMove(1, 0)}
	for _, m := range moves {
		_, reward, done, info := env.Apply(m)
		require.False(t, done)
		require.Zero(t, reward)
		require.False(t, info.Invalid)
	}
	board, reward, done, info := env.Apply(NewMove(0, 2))
	assert.Equal(t, WinReward, reward)
	assert.True(t, done)
	assert.False(t, info.Invalid)
	assert.True(t, board.IsWinner(PlayerX))
	assert.False(t, board.IsWinner(PlayerO))
	assert.Equal(t, 1.0, Reward(board, PlayerX))
	assert.Equal(t, -1.0, Reward(board, PlayerO))
}

func TestDrawPattern(t *testing.T) {
	board, err := ParseBoard("XOXOXOOXO")
	require.NoError(t, err)
	assert.True(t, board.IsDraw())
	assert.False(t, board.IsWinner(PlayerX))
	assert.False(t, board.IsWinner(PlayerO))
}

func TestDrawRewardOnLastCell(t *testing.T) {
	env := NewEnvironment()
	env.Reset()
	// ends as X O X / X O O / O X X
	moves := []Move{0, 1, 2, 4, 3, 5, 7, 6}
	for _, m := range moves {
		_, _, done, _ := env.Apply(m)
		require.False(t, done)
	}
	board, reward, done, _ := env.Apply(8)
	assert.True(t, done)
	assert.Equal(t, DrawReward, reward)
	assert.True(t, board.IsDraw())
	assert.Empty(t, env.LegalActions())
}

func TestInvalidMoveLeavesBoardUntouched(t *testing.T) {
	env := NewEnvironment()
	env.Reset()
	env.Apply(NewMove(1, 1))
	before := env.Board()
	active := env.Active()

	board, reward, done, info := env.Apply(NewMove(1, 1))
	assert.Equal(t, InvalidReward, reward)
	assert.Equal(t, -10.0, reward)
	assert.True(t, done)
	assert.True(t, info.Invalid)
	assert.NotEmpty(t, info.Error)
	assert.Equal(t, before, board)
	assert.Equal(t, before, env.Board())
	assert.Equal(t, active, env.Active())
}

func TestResetClearsBoard(t *testing.T) {
	env := NewEnvironment()
	env.Reset()
	env.Apply(4)
	env.Apply(0)
	state := env.Reset()
	assert.Equal(t, Board{}, state)
	assert.Equal(t, PlayerX, env.Active())
	assert.Equal(t, 0, env.Turn())
	assert.Len(t, env.LegalActions(), Cells)
}

func TestStepMatchesApply(t *testing.T) {
	env := NewEnvironment()
	env.Reset()
	state, reward, done, info := env.Step(Move(4))
	assert.Equal(t, "    X    ", state.Hash())
	assert.Zero(t, reward)
	assert.False(t, done)
	assert.False(t, info.Invalid)
	assert.Equal(t, 1, env.Turn())
}
