package entity

import "github.com/rocketscienceinc/ultimate-tictactoe/internal/tictactoe"

type Player struct {
	ID     string         `json:"id"`
	Mark   tictactoe.Mark `json:"mark,omitempty"`
	GameID string         `json:"game_id,omitempty"`
}
