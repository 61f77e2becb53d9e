package entity

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/tictactoe"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is one session: two players around an engine.
type Game struct {
	ID      string            `json:"id"`
	Status  string            `json:"status"`
	Players []*Player         `json:"players,omitempty"`
	Board   *tictactoe.Engine `json:"board"`
	Winner  tictactoe.Mark    `json:"winner,omitempty"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:     id,
		Status: StatusWaiting,
		Board:  tictactoe.New(),
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// PlayerByID returns nil when the player is not seated in this game.
func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

// PlayerByMark returns nil until a player holds mark.
func (that *Game) PlayerByMark(mark tictactoe.Mark) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

// Start seats both players with shuffled marks; X always moves first.
func (that *Game) Start() {
	first, second := GetRandomMarks()

	that.Players[0].Mark = first
	that.Players[1].Mark = second
	that.Status = StatusOngoing
}

// SyncResult copies a terminal engine result onto the session.
func (that *Game) SyncResult() {
	if !that.Board.IsOver() {
		return
	}

	that.Status = StatusFinished
	that.Winner = that.Board.Result().Winner
}

// Cancel closes a game that never started; nobody wins.
func (that *Game) Cancel() {
	that.Status = StatusFinished
	that.Winner = tictactoe.Empty
}

func GetRandomMarks() (tictactoe.Mark, tictactoe.Mark) {
	if rand.IntN(2) == 0 { //nolint: gosec // it's ok
		return tictactoe.PlayerX, tictactoe.PlayerO
	}
	return tictactoe.PlayerO, tictactoe.PlayerX
}
