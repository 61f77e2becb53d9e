package tictactoe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step is one move as (mx, my, x, y).
type step [4]int

// X takes the top row of the meta-board; the last step wins the game.
var metaRowWin = []step{
	{2, 0, 1, 0}, {1, 0, 1, 0}, {1, 0, 0, 2}, {0, 2, 2, 0}, {2, 0, 0, 0},
	{0, 0, 1, 0}, {1, 0, 2, 2}, {2, 2, 0, 0}, {0, 0, 0, 0}, {0, 0, 2, 0},
	{2, 0, 2, 0}, {1, 1, 2, 0}, {1, 0, 1, 2}, {1, 2, 2, 0}, {0, 0, 1, 1},
	{1, 1, 0, 0}, {0, 0, 2, 2},
}

// X wins the centre sub-board down its middle column, sending O back to it.
var centreWin = []step{
	{1, 1, 1, 0}, {1, 0, 1, 1}, {1, 1, 1, 2}, {1, 2, 1, 1}, {1, 1, 1, 1},
}

// Sub-board (0, 0) fills up without a winner; the last step sends X to it.
var cornerDraw = []step{
	{0, 0, 1, 0}, {1, 0, 1, 0}, {1, 0, 1, 2}, {1, 2, 1, 0}, {1, 0, 0, 0},
	{0, 0, 0, 0}, {0, 0, 2, 2}, {2, 2, 1, 2}, {1, 2, 0, 1}, {0, 1, 1, 2},
	{1, 2, 0, 0}, {0, 0, 1, 2}, {1, 2, 1, 1}, {1, 1, 0, 0}, {0, 0, 2, 0},
	{2, 0, 2, 1}, {2, 1, 1, 0}, {1, 0, 1, 1}, {1, 1, 0, 1}, {0, 1, 0, 1},
	{0, 1, 1, 1}, {1, 1, 2, 2}, {2, 2, 0, 0}, {0, 0, 2, 1}, {2, 1, 1, 1},
	{1, 1, 2, 1}, {2, 1, 0, 0}, {0, 0, 1, 1}, {1, 1, 1, 0}, {1, 0, 2, 0},
	{2, 0, 0, 2}, {0, 2, 0, 1}, {0, 1, 2, 0}, {2, 0, 0, 0}, {0, 0, 0, 1},
	{0, 1, 2, 2}, {2, 2, 0, 1}, {0, 1, 0, 0}, {0, 0, 0, 2}, {0, 2, 0, 0},
}

// Every sub-board closes with no meta-board line; O moves last.
var fullDraw = []step{
	{2, 0, 1, 0}, {1, 0, 1, 1}, {1, 1, 1, 0}, {1, 0, 0, 2}, {0, 2, 2, 0},
	{2, 0, 0, 0}, {0, 0, 0, 2}, {0, 2, 1, 2}, {1, 2, 1, 0}, {1, 0, 0, 0},
	{0, 0, 2, 0}, {2, 0, 1, 1}, {1, 1, 2, 2}, {2, 2, 1, 2}, {1, 2, 1, 2},
	{1, 2, 2, 0}, {2, 0, 0, 1}, {0, 1, 2, 1}, {2, 1, 2, 1}, {2, 1, 0, 2},
	{0, 2, 1, 1}, {1, 1, 0, 0}, {0, 0, 1, 2}, {1, 2, 0, 2}, {0, 2, 2, 1},
	{2, 1, 0, 1}, {0, 1, 1, 0}, {1, 0, 2, 0}, {2, 0, 2, 2}, {2, 2, 0, 1},
	{0, 1, 0, 0}, {0, 0, 1, 0}, {2, 0, 2, 1}, {2, 1, 0, 0}, {0, 0, 0, 1},
	{0, 1, 1, 1}, {1, 1, 1, 2}, {1, 2, 1, 1}, {1, 1, 1, 1}, {2, 2, 0, 2},
	{0, 2, 0, 1}, {0, 1, 0, 1}, {2, 2, 2, 0}, {2, 0, 2, 0}, {2, 0, 0, 2},
	{2, 0, 1, 2}, {0, 0, 2, 2}, {2, 2, 1, 0}, {2, 2, 1, 1}, {2, 2, 0, 0},
}

func play(t *testing.T, engine *Engine, steps []step) MoveOutcome {
	t.Helper()

	var outcome MoveOutcome
	for i, s := range steps {
		var err error
		outcome, err = engine.MakeMove(s[0], s[1], s[2], s[3])
		require.NoError(t, err, "step %d %v", i, s)
	}

	return outcome
}

func mustSnapshot(t *testing.T, engine *Engine) string {
	t.Helper()

	data, err := json.Marshal(engine)
	require.NoError(t, err)

	return string(data)
}

func TestNew(t *testing.T) {
	engine := New()

	active, ok := engine.ActiveSubBoard()

	assert.Equal(t, PlayerX, engine.CurrentPlayer())
	assert.False(t, ok)
	assert.Equal(t, Coord{}, active)
	assert.Equal(t, Result{Status: StatusInProgress}, engine.Result())
	assert.False(t, engine.IsOver())
	assert.Empty(t, engine.Moves())
}

func TestEngine_MakeMove(t *testing.T) {
	t.Run("First move constrains the opponent and toggles the turn", func(t *testing.T) {
		// Given: a new game
		engine := New()

		// When: X plays cell (2, 1) of sub-board (0, 0)
		outcome, err := engine.MakeMove(0, 0, 2, 1)

		// Then: O must answer in sub-board (2, 1)
		require.NoError(t, err)
		assert.Equal(t, MoveOutcome{}, outcome)
		assert.Equal(t, PlayerX, engine.CellAt(0, 0, 2, 1))
		assert.Equal(t, PlayerO, engine.CurrentPlayer())

		active, ok := engine.ActiveSubBoard()
		assert.True(t, ok)
		assert.Equal(t, Coord{X: 2, Y: 1}, active)
	})

	t.Run("Error on coordinates outside the board", func(t *testing.T) {
		engine := New()

		for _, s := range []step{{3, 0, 0, 0}, {0, -1, 0, 0}, {0, 0, 3, 0}, {0, 0, 0, 9}} {
			_, err := engine.MakeMove(s[0], s[1], s[2], s[3])
			require.ErrorIs(t, err, ErrInvalidCoordinate, "%v", s)
		}

		assert.Empty(t, engine.Moves())
	})

	t.Run("Error when playing outside the active sub-board", func(t *testing.T) {
		// Given: O has been sent to sub-board (1, 1)
		engine := New()
		play(t, engine, []step{{0, 0, 1, 1}})
		before := mustSnapshot(t, engine)

		// When: O plays in sub-board (2, 2)
		_, err := engine.MakeMove(2, 2, 0, 0)

		// Then: the move is rejected and nothing changes
		require.ErrorIs(t, err, ErrSubBoardNotActive)
		assert.Equal(t, before, mustSnapshot(t, engine))
	})

	t.Run("Error on occupied cell leaves the game unchanged", func(t *testing.T) {
		// Given: X played (0, 0, 0, 0), sending O back to (0, 0)
		engine := New()
		play(t, engine, []step{{0, 0, 0, 0}})
		before := mustSnapshot(t, engine)

		// When: O plays the same cell
		_, err := engine.MakeMove(0, 0, 0, 0)

		// Then: ErrCellOccupied propagates and the turn stays with O
		require.ErrorIs(t, err, ErrCellOccupied)
		assert.Equal(t, PlayerO, engine.CurrentPlayer())
		assert.Equal(t, before, mustSnapshot(t, engine))
	})

	t.Run("Winning a sub-board marks the meta-board", func(t *testing.T) {
		// Given: X is one move from taking the centre
		engine := New()
		play(t, engine, centreWin[:len(centreWin)-1])

		// When: X plays the centre cell of the centre sub-board
		outcome, err := engine.MakeMove(1, 1, 1, 1)

		// Then: the sub-board is won but not the game
		require.NoError(t, err)
		assert.Equal(t, MoveOutcome{SubBoardWon: true}, outcome)
		assert.Equal(t, PlayerX, engine.MetaCellAt(1, 1))
		assert.Equal(t, SubBoardWon, engine.SubBoardState(1, 1))
		assert.Equal(t, PlayerO, engine.CurrentPlayer())
	})

	t.Run("Error when playing in a completed sub-board", func(t *testing.T) {
		// Given: sub-board (1, 1) is decided for X and O may play anywhere
		engine := New()
		play(t, engine, centreWin)

		_, ok := engine.ActiveSubBoard()
		require.False(t, ok)
		before := mustSnapshot(t, engine)

		// When: O plays an empty cell of sub-board (1, 1)
		_, err := engine.MakeMove(1, 1, 0, 0)

		// Then: ErrSubBoardAlreadyCompleted is returned
		require.ErrorIs(t, err, ErrSubBoardAlreadyCompleted)
		assert.Equal(t, before, mustSnapshot(t, engine))
	})

	t.Run("Winning three sub-boards in a row wins the game", func(t *testing.T) {
		// Given: X holds (0, 0) and (1, 0) is pending on the meta-board
		engine := New()
		play(t, engine, metaRowWin[:len(metaRowWin)-1])

		// When: X completes sub-board (0, 0)
		outcome, err := engine.MakeMove(0, 0, 2, 2)

		// Then: the game is won by X and the turn does not advance
		require.NoError(t, err)
		assert.Equal(t, MoveOutcome{SubBoardWon: true, GameWon: true}, outcome)
		assert.Equal(t, Result{Status: StatusWon, Winner: PlayerX}, engine.Result())
		assert.True(t, engine.IsOver())
		assert.Equal(t, PlayerX, engine.CurrentPlayer())

		for mx := range Size {
			assert.Equal(t, PlayerX, engine.MetaCellAt(mx, 0))
		}
	})

	t.Run("Error on any move after the game is won", func(t *testing.T) {
		engine := New()
		play(t, engine, metaRowWin)

		_, err := engine.MakeMove(2, 2, 1, 1)

		require.ErrorIs(t, err, ErrGameAlreadyOver)
		assert.Len(t, engine.Moves(), len(metaRowWin))
	})

	t.Run("Error on game over wins over every other check", func(t *testing.T) {
		engine := New()
		play(t, engine, metaRowWin)

		_, err := engine.MakeMove(5, 5, 5, 5)

		require.ErrorIs(t, err, ErrGameAlreadyOver)
	})
}

func TestEngine_DrawnSubBoard(t *testing.T) {
	// Given: sub-board (0, 0) is full with no winner and X is sent there
	engine := New()
	play(t, engine, cornerDraw)

	// Then: it is drawn, stays empty on the meta-board and frees the choice
	assert.Equal(t, SubBoardDrawn, engine.SubBoardState(0, 0))
	assert.Equal(t, Empty, engine.MetaCellAt(0, 0))
	assert.Equal(t, Result{Status: StatusInProgress}, engine.Result())

	_, ok := engine.ActiveSubBoard()
	assert.False(t, ok)

	// When: X tries to play in it anyway
	_, err := engine.MakeMove(0, 0, 1, 1)

	// Then: ErrSubBoardAlreadyCompleted is returned
	require.ErrorIs(t, err, ErrSubBoardAlreadyCompleted)
}

func TestEngine_FullDraw(t *testing.T) {
	// Given: a game played until every sub-board is closed
	engine := New()

	// When: the last open sub-board is won by O without a meta line
	outcome := play(t, engine, fullDraw)

	// Then: the game is drawn and O stays the last mover
	assert.Equal(t, MoveOutcome{SubBoardWon: true}, outcome)
	assert.Equal(t, Result{Status: StatusDrawn}, engine.Result())
	assert.Equal(t, PlayerO, engine.CurrentPlayer())
	assert.Equal(t, SubBoardDrawn, engine.SubBoardState(2, 0))

	_, err := engine.MakeMove(0, 0, 0, 0)
	require.ErrorIs(t, err, ErrGameAlreadyOver)
}

func TestEngine_Invariants(t *testing.T) {
	// Walks the longest recorded game and checks the per-move properties.
	engine := New()
	seen := map[[4]int]Mark{}

	for i, s := range fullDraw {
		player := engine.CurrentPlayer()

		_, err := engine.MakeMove(s[0], s[1], s[2], s[3])
		require.NoError(t, err, "step %d", i)

		seen[s] = player

		// written cells never change
		for cell, mark := range seen {
			require.Equal(t, mark, engine.CellAt(cell[0], cell[1], cell[2], cell[3]))
		}

		// the turn toggles unless the game just ended
		if engine.IsOver() {
			assert.Equal(t, player, engine.CurrentPlayer())
		} else {
			assert.Equal(t, player.Other(), engine.CurrentPlayer())
		}

		// the next player is sent to (x, y) unless it is closed
		active, ok := engine.ActiveSubBoard()
		if engine.SubBoardState(s[2], s[3]) == SubBoardOpen {
			require.True(t, ok, "step %d", i)
			assert.Equal(t, Coord{X: s[2], Y: s[3]}, active)
		} else {
			assert.False(t, ok, "step %d", i)
		}

		// decided sub-boards refuse further moves
		if ok || engine.IsOver() {
			continue
		}

		for my := range Size {
			for mx := range Size {
				if engine.MetaCellAt(mx, my) != Empty {
					require.ErrorIs(t, engine.validateMove(mx, my, 0, 0), ErrSubBoardAlreadyCompleted)
				}
			}
		}
	}
}

func TestEngine_Resign(t *testing.T) {
	t.Run("The player to move concedes", func(t *testing.T) {
		// Given: X has moved, so O is to move
		engine := New()
		play(t, engine, []step{{1, 1, 0, 0}})

		// When: O resigns
		err := engine.Resign()

		// Then: X wins by resignation
		require.NoError(t, err)
		assert.Equal(t, Result{Status: StatusResigned, Winner: PlayerX}, engine.Result())
		assert.True(t, engine.IsOver())
	})

	t.Run("Either player can concede", func(t *testing.T) {
		engine := New()

		err := engine.ResignAs(PlayerO)

		require.NoError(t, err)
		assert.Equal(t, PlayerX, engine.Result().Winner)
	})

	t.Run("Error when resigning a finished game", func(t *testing.T) {
		engine := New()
		require.NoError(t, engine.Resign())

		err := engine.Resign()

		require.ErrorIs(t, err, ErrGameAlreadyOver)
		assert.Equal(t, PlayerO, engine.Result().Winner)
	})

	t.Run("Error on moves after resignation", func(t *testing.T) {
		engine := New()
		require.NoError(t, engine.Resign())

		_, err := engine.MakeMove(0, 0, 0, 0)

		require.ErrorIs(t, err, ErrGameAlreadyOver)
	})

	t.Run("Error on an invalid mark", func(t *testing.T) {
		engine := New()

		err := engine.ResignAs(Empty)

		require.ErrorIs(t, err, ErrInvalidMark)
		assert.False(t, engine.IsOver())
	})
}
