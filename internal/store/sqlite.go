// internal/store/sqlite.go
//
// SQLite-backed Store implementation over database/sql.
// The UNIQUE(game_id, user_id, guess) index makes AppendGuess an atomic
// conditional insert; constraint violations are translated to
// ErrDuplicateGuess via the driver's extended error codes.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/wordchain/server/internal/game"
)

// SQLite persists games and guesses in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an opened database handle. Migrations are the caller's
// responsibility (see db.go at the module root).
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) CreateGame(ctx context.Context, g *game.Game) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, word, created_by, created_at) VALUES (?,?,?,?)`,
		g.ID, g.Word, g.CreatedBy, g.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	return nil
}

func (s *SQLite) GetGame(ctx context.Context, id string) (*game.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, word, created_by, created_at FROM games WHERE id=?`, id)

	var g game.Game
	var created string
	if err := row.Scan(&g.ID, &g.Word, &g.CreatedBy, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	g.CreatedAt = parseTime(created)
	return &g, nil
}

func (s *SQLite) AppendGuess(ctx context.Context, gu *game.Guess) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO guesses (game_id, user_id, guess, created_at) VALUES (?,?,?,?)`,
		gu.GameID, gu.UserID, gu.Text, gu.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) {
			switch sqliteErr.ExtendedCode {
			case sqlite3.ErrConstraintUnique:
				return ErrDuplicateGuess
			case sqlite3.ErrConstraintForeignKey:
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert guess: %w", err)
	}
	return nil
}

func (s *SQLite) CountGuesses(ctx context.Context, gameID, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM guesses WHERE game_id=? AND user_id=?`,
		gameID, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count guesses: %w", err)
	}
	return n, nil
}

func (s *SQLite) ListGuesses(ctx context.Context, gameID, userID string) ([]game.Guess, error) {
	// Ordered by rowid: a total order even when two rows share a timestamp.
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, user_id, guess, created_at
		 FROM guesses WHERE game_id=? AND user_id=? ORDER BY id ASC`,
		gameID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list guesses: %w", err)
	}
	defer rows.Close()

	var out []game.Guess
	for rows.Next() {
		var gu game.Guess
		var created string
		if err := rows.Scan(&gu.GameID, &gu.UserID, &gu.Text, &created); err != nil {
			return nil, err
		}
		gu.CreatedAt = parseTime(created)
		out = append(out, gu)
	}
	return out, rows.Err()
}

// parseTime parses stored RFC3339 timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
