package tictactoe

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrCorruptSnapshot = errors.New("corrupt game snapshot")

// snapshot is the JSON form of an Engine. Only Moves and Resigned are read
// back; the rest is a projection for clients.
type snapshot struct {
	Moves    []Move `json:"moves"`
	Resigned Mark   `json:"resigned,omitempty"`

	Grid           [Size * Size][Size * Size]Mark `json:"grid"`
	Meta           [Size][Size]Mark               `json:"meta"`
	CurrentPlayer  Mark                           `json:"current_player"`
	ActiveSubBoard *Coord                         `json:"active_sub_board"`
	Result         Result                         `json:"result"`
}

func (that *Engine) MarshalJSON() ([]byte, error) {
	snap := snapshot{
		Moves:         that.Moves(),
		Grid:          Grid(that),
		CurrentPlayer: that.current,
		Result:        that.result,
	}

	if that.result.Status == StatusResigned {
		snap.Resigned = that.result.Winner.Other()
	}

	for my := range Size {
		for mx := range Size {
			snap.Meta[my][mx] = that.meta.CellAt(mx, my)
		}
	}

	if active, ok := that.ActiveSubBoard(); ok {
		snap.ActiveSubBoard = &active
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return data, nil
}

// UnmarshalJSON rebuilds the engine by replaying the recorded moves, so every
// counter and rule is re-derived rather than trusted.
func (that *Engine) UnmarshalJSON(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	engine, err := Replay(snap.Moves)
	if err != nil {
		return err
	}

	if snap.Resigned != Empty {
		if err = engine.ResignAs(snap.Resigned); err != nil {
			return fmt.Errorf("%w: resignation: %w", ErrCorruptSnapshot, err)
		}
	}

	*that = *engine

	return nil
}

// Replay plays moves in order on a fresh engine.
func Replay(moves []Move) (*Engine, error) {
	engine := New()

	for i, move := range moves {
		if move.Player != engine.CurrentPlayer() {
			return nil, fmt.Errorf("%w: move %d played by %q, expected %q",
				ErrCorruptSnapshot, i, move.Player, engine.CurrentPlayer())
		}

		if _, err := engine.MakeMove(move.SubBoard.X, move.SubBoard.Y, move.Cell.X, move.Cell.Y); err != nil {
			return nil, fmt.Errorf("%w: move %d: %w", ErrCorruptSnapshot, i, err)
		}
	}

	return engine, nil
}
