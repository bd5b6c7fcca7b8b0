// internal/daily/daily.go
//
// Daily challenge helpers: deterministic word selection per calendar date
// and the persisted once-per-day results with a leaderboard.
//
// Word selection is HMAC(salt, YYYY-MM-DD) reduced modulo the dictionary
// size, so every player gets the same word on the same day without storing
// a schedule, and the salt keeps the sequence unguessable.

package daily

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic dictionary index for a date.
func WordIndex(date time.Time, salt string, wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// First 8 bytes as uint64 for the modulus distribution.
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(wordCount))
}

// Result is one user's finished daily challenge.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	WordIndex int    `json:"wordIndex"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// LeaderboardRow is one leaderboard entry for a date.
type LeaderboardRow struct {
	UserID    string `json:"userId"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Store persists daily results. UNIQUE(user_id, date) enforces one play per
// user per day.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a persisted result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a finished daily run. A second insert for the same
// (user, date) is ignored rather than erroring.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results (user_id, date, word_index, guesses, elapsed_ms)
		 VALUES (?,?,?,?,?)`,
		r.UserID, r.Date, r.WordIndex, r.Guesses, r.ElapsedMs,
	)
	return err
}

// Leaderboard returns the top results for a date, fastest first.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, guesses, elapsed_ms
		 FROM daily_results
		 WHERE date=?
		 ORDER BY elapsed_ms ASC, guesses ASC, created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardRow, 0, limit)
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
