package tictactoe

import (
	"errors"
	"fmt"
)

// Size is the width of both a sub-board and the meta-board.
const Size = 3

// Mark is the content of a cell. PlayerX and PlayerO double as the two players.
type Mark uint8

const (
	Empty Mark = iota
	PlayerX
	PlayerO
)

var ErrInvalidMark = errors.New("invalid mark")

// Other returns the opposing player.
func (m Mark) Other() Mark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Empty
	}
}

func (m Mark) IsPlayer() bool {
	return m == PlayerX || m == PlayerO
}

func (m Mark) String() string {
	switch m {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mark) UnmarshalText(text []byte) error {
	switch string(text) {
	case "X":
		*m = PlayerX
	case "O":
		*m = PlayerO
	case "":
		*m = Empty
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMark, text)
	}

	return nil
}

// index maps a player onto a 0-based counter lane.
func (m Mark) index() int {
	return int(m) - 1
}

// Coord addresses a cell within a board, or a sub-board within the meta-board.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coord) valid() bool {
	return c.X >= 0 && c.X < Size && c.Y >= 0 && c.Y < Size
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}
