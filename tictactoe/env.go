package tictactoe

import (
	"strconv"

	"github.com/zeu5/tictactoe-rl/types"
)

const (
	WinReward     = 1.0
	LossReward    = -1.0
	DrawReward    = 0.5
	InvalidReward = -10.0
)

// Move is the flat index (0-8) of the cell to mark
type Move int

var _ types.Action = Move(0)

func NewMove(row, col int) Move {
	return Move(row*Size + col)
}

func (m Move) Row() int {
	return int(m) / Size
}

func (m Move) Col() int {
	return int(m) % Size
}

func (m Move) Hash() string {
	return strconv.Itoa(int(m))
}

var _ types.State = Board{}

func (b Board) Hash() string {
	return b.Key()
}

// Actions are the empty cells, none once the game is over
func (b Board) Actions() []types.Action {
	if b.IsWinner(PlayerX) || b.IsWinner(PlayerO) {
		return []types.Action{}
	}
	moves := b.EmptyCells()
	actions := make([]types.Action, len(moves))
	for i, m := range moves {
		actions[i] = m
	}
	return actions
}

// Environment is the rules engine of a single game.
// The board only changes through Apply/Step.
type Environment struct {
	board  Board
	active Cell
}

var _ types.Environment = &Environment{}

func NewEnvironment() *Environment {
	return &Environment{
		active: PlayerX,
	}
}

func (e *Environment) Reset() types.State {
	e.board = Board{}
	e.active = PlayerX
	return e.board
}

// Board returns a copy of the current board
func (e *Environment) Board() Board {
	return e.board
}

// Active is the player to move
func (e *Environment) Active() Cell {
	return e.active
}

func (e *Environment) Turn() int {
	if e.active == PlayerX {
		return 0
	}
	return 1
}

// LegalActions of the current board, empty only when the board is full
func (e *Environment) LegalActions() []Move {
	return e.board.EmptyCells()
}

// Reward for the board from the perspective of player p
func Reward(b Board, p Cell) float64 {
	switch {
	case b.IsWinner(p):
		return WinReward
	case b.IsWinner(p.Opponent()):
		return LossReward
	case b.IsDraw():
		return DrawReward
	}
	return 0
}

// Apply marks the cell for the active player.
// An occupied cell ends the episode with InvalidReward and leaves the board untouched.
func (e *Environment) Apply(m Move) (Board, float64, bool, types.StepInfo) {
	if m < 0 || int(m) >= Cells || e.board[m] != Empty {
		return e.board, InvalidReward, true, types.StepInfo{Invalid: true, Error: "invalid action"}
	}
	e.board[m] = e.active
	reward := Reward(e.board, e.active)
	done := reward != 0
	e.active = e.active.Opponent()
	return e.board, reward, done, types.StepInfo{}
}

func (e *Environment) Step(a types.Action) (types.State, float64, bool, types.StepInfo) {
	return e.Apply(a.(Move))
}
