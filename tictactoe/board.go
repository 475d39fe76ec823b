package tictactoe

import (
	"errors"
	"fmt"
	"strings"
)

// Cell is the content of a single square of the board
type Cell int8

const (
	Empty Cell = iota
	// PlayerX moves first (player 1)
	PlayerX
	// PlayerO moves second (player 2)
	PlayerO
)

// Size of the board side
const Size = 3

// Cells on the board
const Cells = Size * Size

var (
	ErrBadSymbol  = errors.New("unknown board symbol")
	ErrBadLength  = errors.New("board must have exactly 9 cells")
	ErrImpossible = errors.New("board cannot arise from alternating play")
)

// Symbol used for the cell in board keys and on the wire
func (c Cell) Symbol() string {
	switch c {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	}
	return " "
}

// Opponent of the player, Empty stays Empty
func (c Cell) Opponent() Cell {
	switch c {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return Empty
}

func CellFromSymbol(s string) (Cell, error) {
	switch s {
	case " ":
		return Empty, nil
	case "X":
		return PlayerX, nil
	case "O":
		return PlayerO, nil
	}
	return Empty, fmt.Errorf("%w: %q", ErrBadSymbol, s)
}

// the eight winning lines: rows, columns, diagonals
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is the row-major 3x3 grid. It is comparable and can be used as a map key.
type Board [Cells]Cell

// IsWinner reports whether p occupies a full row, column or diagonal.
// It does not depend on whose turn it is.
func (b Board) IsWinner(p Cell) bool {
	if p == Empty {
		return false
	}
	for _, l := range lines {
		if b[l[0]] == p && b[l[1]] == p && b[l[2]] == p {
			return true
		}
	}
	return false
}

func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// IsDraw is a full board without a winner
func (b Board) IsDraw() bool {
	return b.Full() && !b.IsWinner(PlayerX) && !b.IsWinner(PlayerO)
}

// Terminal when either player has won or the board is a draw
func (b Board) Terminal() bool {
	return b.IsWinner(PlayerX) || b.IsWinner(PlayerO) || b.Full()
}

// EmptyCells returns the legal moves in index order
func (b Board) EmptyCells() []Move {
	moves := make([]Move, 0, Cells)
	for i, c := range b {
		if c == Empty {
			moves = append(moves, Move(i))
		}
	}
	return moves
}

func (b Board) Count(p Cell) int {
	n := 0
	for _, c := range b {
		if c == p {
			n++
		}
	}
	return n
}

// Valid checks the alternation invariant, X has at most one more mark than O
func (b Board) Valid() bool {
	diff := b.Count(PlayerX) - b.Count(PlayerO)
	return diff == 0 || diff == 1
}

// CheckValid is Valid as an error
func (b Board) CheckValid() error {
	if !b.Valid() {
		return fmt.Errorf("%w: %d X, %d O", ErrImpossible, b.Count(PlayerX), b.Count(PlayerO))
	}
	return nil
}

// With returns a copy of the board with the cell set to p
func (b Board) With(m Move, p Cell) Board {
	b[m] = p
	return b
}

// Key is the canonical 9 symbol representation used to index value tables
func (b Board) Key() string {
	var sb strings.Builder
	sb.Grow(Cells)
	for _, c := range b {
		sb.WriteString(c.Symbol())
	}
	return sb.String()
}

// Symbols is the wire form of the board
func (b Board) Symbols() []string {
	out := make([]string, Cells)
	for i, c := range b {
		out[i] = c.Symbol()
	}
	return out
}

func (b Board) String() string {
	rows := make([]string, Size)
	for r := 0; r < Size; r++ {
		row := make([]string, Size)
		for c := 0; c < Size; c++ {
			row[c] = b[r*Size+c].Symbol()
		}
		rows[r] = strings.Join(row, " | ")
	}
	return strings.Join(rows, "\n") + "\n" + strings.Repeat("-", 9)
}

// ParseBoard parses the output of Key
func ParseBoard(key string) (Board, error) {
	var b Board
	if len(key) != Cells {
		return b, fmt.Errorf("%w: got %d", ErrBadLength, len(key))
	}
	for i := 0; i < Cells; i++ {
		c, err := CellFromSymbol(key[i : i+1])
		if err != nil {
			return b, err
		}
		b[i] = c
	}
	return b, nil
}

// BoardFromSymbols parses the wire form of the board
func BoardFromSymbols(symbols []string) (Board, error) {
	var b Board
	if len(symbols) != Cells {
		return b, fmt.Errorf("%w: got %d", ErrBadLength, len(symbols))
	}
	for i, s := range symbols {
		c, err := CellFromSymbol(s)
		if err != nil {
			return b, err
		}
		b[i] = c
	}
	return b, nil
}
