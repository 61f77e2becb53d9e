package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "modernc.org/sqlite"
)

// NewSQLite - opens the results database and creates its schema.
func NewSQLite(ctx context.Context, path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	if err = initSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

func initSchema(ctx context.Context, conn *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS results (
			game_id     TEXT PRIMARY KEY,
			outcome     TEXT NOT NULL,
			winner      TEXT NOT NULL DEFAULT '',
			winner_id   TEXT NOT NULL DEFAULT '',
			player_x    TEXT NOT NULL DEFAULT '',
			player_o    TEXT NOT NULL DEFAULT '',
			moves       INTEGER NOT NULL,
			board       TEXT NOT NULL,
			finished_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS results_finished_at ON results (finished_at DESC);
	`

	if _, err := conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	return nil
}
