package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/tictactoe"
)

var ErrResultNotFound = errors.New("result not found")

type ResultRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	GetByGameID(ctx context.Context, gameID string) (*entity.Result, error)
	List(ctx context.Context, limit int) ([]*entity.Result, error)
}

type resultRepository struct {
	conn *sql.DB
}

func NewResultRepository(conn *sql.DB) ResultRepository {
	return &resultRepository{
		conn: conn,
	}
}

const resultColumns = `game_id, outcome, winner, winner_id, player_x, player_o, moves, board, finished_at`

func (that *resultRepository) Save(ctx context.Context, result *entity.Result) error {
	query := `INSERT INTO results (` + resultColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO NOTHING`

	_, err := that.conn.ExecContext(ctx, query,
		result.GameID,
		result.Outcome,
		result.Winner.String(),
		result.WinnerID,
		result.PlayerX,
		result.PlayerO,
		result.Moves,
		string(result.Board),
		result.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	return nil
}

func (that *resultRepository) GetByGameID(ctx context.Context, gameID string) (*entity.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE game_id = ?`

	result, err := scanResult(that.conn.QueryRowContext(ctx, query, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find result: %w", err)
	}

	return result, nil
}

// List returns the most recently finished games first.
func (that *resultRepository) List(ctx context.Context, limit int) ([]*entity.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results ORDER BY finished_at DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}
	defer rows.Close()

	results := make([]*entity.Result, 0, limit)
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}

	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*entity.Result, error) {
	var (
		result entity.Result
		winner string
		board  string
	)

	err := row.Scan(
		&result.GameID,
		&result.Outcome,
		&winner,
		&result.WinnerID,
		&result.PlayerX,
		&result.PlayerO,
		&result.Moves,
		&board,
		&result.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	if err = result.Winner.UnmarshalText([]byte(winner)); err != nil {
		return nil, err
	}

	result.Board = []byte(board)

	if !json.Valid(result.Board) {
		return nil, fmt.Errorf("%w: game %s", tictactoe.ErrCorruptSnapshot, result.GameID)
	}

	return &result, nil
}
