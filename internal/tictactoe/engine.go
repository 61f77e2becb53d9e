package tictactoe

import (
	"errors"
	"fmt"
)

var (
	ErrSubBoardNotActive        = errors.New("sub-board not active")
	ErrSubBoardAlreadyCompleted = errors.New("sub-board already completed")
	ErrGameAlreadyOver          = errors.New("game is already over")
	ErrUnknownStatus            = errors.New("unknown game status")
)

type Status uint8

const (
	StatusInProgress Status = iota
	StatusWon
	StatusResigned
	StatusDrawn
)

func (s Status) String() string {
	switch s {
	case StatusWon:
		return "won"
	case StatusResigned:
		return "resigned"
	case StatusDrawn:
		return "drawn"
	default:
		return "in_progress"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in_progress":
		*s = StatusInProgress
	case "won":
		*s = StatusWon
	case "resigned":
		*s = StatusResigned
	case "drawn":
		*s = StatusDrawn
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, text)
	}

	return nil
}

// Result is the outcome of a game. Winner is the player who won the
// meta-board, or the opponent of whoever resigned.
type Result struct {
	Status Status `json:"status"`
	Winner Mark   `json:"winner,omitempty"`
}

func (r Result) IsTerminal() bool {
	return r.Status != StatusInProgress
}

// SubBoardState describes a sub-board as seen from the meta-board.
type SubBoardState uint8

const (
	SubBoardOpen SubBoardState = iota
	SubBoardWon
	SubBoardDrawn
)

// MoveOutcome reports what a successful move achieved.
type MoveOutcome struct {
	SubBoardWon bool `json:"sub_board_won"`
	GameWon     bool `json:"game_won"`
}

// Move is one accepted move, kept in order so a game can be replayed.
type Move struct {
	Player   Mark  `json:"player"`
	SubBoard Coord `json:"sub_board"`
	Cell     Coord `json:"cell"`
}

// Engine is a whole ultimate tic-tac-toe game. It is not safe for concurrent
// use; callers serialise access per game.
type Engine struct {
	boards [Size][Size]*Board // [my][mx]
	meta   *Board

	current   Mark
	active    Coord
	hasActive bool
	result    Result

	moves []Move
}

// New returns a fresh game with PlayerX to move anywhere.
func New() *Engine {
	engine := &Engine{
		meta:    NewBoard(),
		current: PlayerX,
	}

	for my := range Size {
		for mx := range Size {
			engine.boards[my][mx] = NewBoard()
		}
	}

	return engine
}

// MakeMove plays the current player's mark at cell (x, y) of sub-board
// (mx, my). On error the game is left unchanged.
func (that *Engine) MakeMove(mx, my, x, y int) (MoveOutcome, error) {
	if err := that.validateMove(mx, my, x, y); err != nil {
		return MoveOutcome{}, err
	}

	player := that.current

	subBoardWon, err := that.boards[my][mx].MakeMove(player, x, y)
	if err != nil {
		return MoveOutcome{}, fmt.Errorf("sub-board (%d, %d): %w", mx, my, err)
	}

	that.moves = append(that.moves, Move{
		Player:   player,
		SubBoard: Coord{X: mx, Y: my},
		Cell:     Coord{X: x, Y: y},
	})

	var outcome MoveOutcome
	outcome.SubBoardWon = subBoardWon

	if subBoardWon {
		// the meta cell is known to be empty, so this cannot fail
		gameWon, err := that.meta.MakeMove(player, mx, my)
		if err != nil {
			panic(fmt.Errorf("meta-board rejected (%d, %d): %w", mx, my, err))
		}

		outcome.GameWon = gameWon
	}

	switch {
	case outcome.GameWon:
		that.result = Result{Status: StatusWon, Winner: player}
	case that.allClosed():
		that.result = Result{Status: StatusDrawn}
	}

	that.updateActiveSubBoard(x, y)

	if !that.result.IsTerminal() {
		that.current = player.Other()
	}

	return outcome, nil
}

// validateMove - checks every engine-level rule before anything is mutated.
func (that *Engine) validateMove(mx, my, x, y int) error {
	if that.result.IsTerminal() {
		return ErrGameAlreadyOver
	}

	if !(Coord{X: mx, Y: my}).valid() {
		return fmt.Errorf("%w: sub-board (%d, %d)", ErrInvalidCoordinate, mx, my)
	}

	if !(Coord{X: x, Y: y}).valid() {
		return fmt.Errorf("%w: cell (%d, %d)", ErrInvalidCoordinate, x, y)
	}

	if that.hasActive && that.active != (Coord{X: mx, Y: my}) {
		return fmt.Errorf("%w: must play in (%d, %d)", ErrSubBoardNotActive, that.active.X, that.active.Y)
	}

	if that.meta.CellAt(mx, my) != Empty || that.boards[my][mx].IsDrawn() {
		return fmt.Errorf("%w: sub-board (%d, %d)", ErrSubBoardAlreadyCompleted, mx, my)
	}

	return nil
}

// updateActiveSubBoard - the next player is sent to the sub-board matching
// the cell just played, unless that sub-board is closed.
func (that *Engine) updateActiveSubBoard(x, y int) {
	if that.boards[y][x].IsClosed() {
		that.active, that.hasActive = Coord{}, false
		return
	}

	that.active, that.hasActive = Coord{X: x, Y: y}, true
}

func (that *Engine) allClosed() bool {
	for my := range Size {
		for mx := range Size {
			if !that.boards[my][mx].IsClosed() {
				return false
			}
		}
	}

	return true
}

// Resign concedes the game on behalf of the player to move.
func (that *Engine) Resign() error {
	return that.ResignAs(that.current)
}

// ResignAs concedes the game on behalf of player; the opponent wins.
func (that *Engine) ResignAs(player Mark) error {
	if that.result.IsTerminal() {
		return ErrGameAlreadyOver
	}

	if !player.IsPlayer() {
		return fmt.Errorf("%w: %d", ErrInvalidMark, player)
	}

	that.result = Result{Status: StatusResigned, Winner: player.Other()}

	return nil
}

func (that *Engine) CurrentPlayer() Mark {
	return that.current
}

// ActiveSubBoard returns the sub-board the next move must be played in.
// ok is false when the player may choose any open sub-board.
func (that *Engine) ActiveSubBoard() (Coord, bool) {
	return that.active, that.hasActive
}

func (that *Engine) CellAt(mx, my, x, y int) Mark {
	if !(Coord{X: mx, Y: my}).valid() {
		return Empty
	}

	return that.boards[my][mx].CellAt(x, y)
}

// MetaCellAt returns who won sub-board (mx, my); Empty if undecided or drawn.
func (that *Engine) MetaCellAt(mx, my int) Mark {
	return that.meta.CellAt(mx, my)
}

func (that *Engine) SubBoardState(mx, my int) SubBoardState {
	if !(Coord{X: mx, Y: my}).valid() {
		return SubBoardOpen
	}

	board := that.boards[my][mx]

	switch {
	case board.IsDecided():
		return SubBoardWon
	case board.IsFull():
		return SubBoardDrawn
	default:
		return SubBoardOpen
	}
}

func (that *Engine) Result() Result {
	return that.result
}

func (that *Engine) IsOver() bool {
	return that.result.IsTerminal()
}

// Moves returns a copy of the accepted moves in play order.
func (that *Engine) Moves() []Move {
	moves := make([]Move, len(that.moves))
	copy(moves, that.moves)

	return moves
}
