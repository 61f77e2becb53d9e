package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/tictactoe"
)

// Result is the archived record of a finished game.
type Result struct {
	GameID     string          `json:"game_id"`
	Outcome    string          `json:"outcome"`
	Winner     tictactoe.Mark  `json:"winner,omitempty"`
	WinnerID   string          `json:"winner_id,omitempty"`
	PlayerX    string          `json:"player_x"`
	PlayerO    string          `json:"player_o"`
	Moves      int             `json:"moves"`
	Board      json.RawMessage `json:"board,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}

func NewResult(game *Game, finishedAt time.Time) (*Result, error) {
	board, err := game.Board.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}

	result := &Result{
		GameID:     game.ID,
		Outcome:    game.Board.Result().Status.String(),
		Winner:     game.Winner,
		Moves:      len(game.Board.Moves()),
		Board:      board,
		FinishedAt: finishedAt,
	}

	if player := game.PlayerByMark(tictactoe.PlayerX); player != nil {
		result.PlayerX = player.ID
	}

	if player := game.PlayerByMark(tictactoe.PlayerO); player != nil {
		result.PlayerO = player.ID
	}

	if game.Winner != tictactoe.Empty {
		if winner := game.PlayerByMark(game.Winner); winner != nil {
			result.WinnerID = winner.ID
		}
	}

	return result, nil
}
