package tictactoe

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinate   = errors.New("invalid coordinates")
	ErrCellOccupied        = errors.New("cell is already occupied")
	ErrBoardAlreadyDecided = errors.New("board already has a winner")
)

// Board is a single 3x3 grid. The engine uses nine of them for play and a
// tenth as the meta-board, whose cells record who won each sub-board.
type Board struct {
	cells [Size][Size]Mark // [y][x]

	columns  lineCounter
	rows     lineCounter
	diagonal lineCounter
	antiDiag lineCounter
	winner   Mark
	filled   int
}

func NewBoard() *Board {
	return &Board{
		columns:  newLineCounter(Size),
		rows:     newLineCounter(Size),
		diagonal: newLineCounter(1),
		antiDiag: newLineCounter(1),
	}
}

// MakeMove places player's mark at (x, y) and reports whether it completed a
// line. The board is left untouched when an error is returned.
func (that *Board) MakeMove(player Mark, x, y int) (bool, error) {
	if err := that.validateMove(player, x, y); err != nil {
		return false, err
	}

	that.cells[y][x] = player
	that.filled++

	won := that.columns.hit(player, x)
	won = that.rows.hit(player, y) || won

	if x == y {
		won = that.diagonal.hit(player, 0) || won
	}

	if x+y == Size-1 {
		won = that.antiDiag.hit(player, 0) || won
	}

	if won {
		that.winner = player
	}

	return won, nil
}

// validateMove - checks the move without touching the board.
func (that *Board) validateMove(player Mark, x, y int) error {
	if !player.IsPlayer() {
		return fmt.Errorf("%w: %d", ErrInvalidMark, player)
	}

	if !(Coord{X: x, Y: y}).valid() {
		return fmt.Errorf("%w: cell (%d, %d)", ErrInvalidCoordinate, x, y)
	}

	if that.cells[y][x] != Empty {
		return fmt.Errorf("%w: cell (%d, %d)", ErrCellOccupied, x, y)
	}

	if that.IsDecided() {
		return ErrBoardAlreadyDecided
	}

	return nil
}

func (that *Board) IsDecided() bool {
	return that.winner != Empty
}

// Winner returns Empty while the board is undecided.
func (that *Board) Winner() Mark {
	return that.winner
}

func (that *Board) IsFull() bool {
	return that.filled == Size*Size
}

// IsDrawn reports a full board nobody won.
func (that *Board) IsDrawn() bool {
	return that.IsFull() && !that.IsDecided()
}

// IsClosed reports whether the board can take no further moves.
func (that *Board) IsClosed() bool {
	return that.IsDecided() || that.IsFull()
}

// CellAt returns Empty for coordinates outside the board.
func (that *Board) CellAt(x, y int) Mark {
	if !(Coord{X: x, Y: y}).valid() {
		return Empty
	}

	return that.cells[y][x]
}
