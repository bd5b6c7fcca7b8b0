// internal/store/store.go
//
// Persistence interface for games and per-(game,user) guess logs.
// Implementations: SQLite (sqlite.go, the durable default) and an in-memory
// map (memory.go, used by tests).
//
// Contract notes:
//   - Guess rows are append-only; nothing here updates or deletes them.
//   - AppendGuess must be an atomic conditional insert: a second guess with
//     the same (gameID, userID, text) fails with ErrDuplicateGuess even
//     under concurrent callers.
//   - Letter statuses are never persisted; they are recomputed from the
//     guess text and the game's word every time.

package store

import (
	"context"
	"errors"

	"github.com/wordchain/server/internal/game"
)

var (
	// ErrNotFound is returned by GetGame for an unknown game id.
	ErrNotFound = errors.New("store: game not found")

	// ErrDuplicateGuess is returned by AppendGuess when the same user has
	// already submitted the same text in the same game.
	ErrDuplicateGuess = errors.New("store: duplicate guess")
)

// Store is the session store: the single owner of persisted Game and Guess
// records. The session manager is its only writer.
type Store interface {
	// CreateGame persists a new game. The secret word is assigned exactly
	// once here and never mutated afterwards.
	CreateGame(ctx context.Context, g *game.Game) error

	// GetGame retrieves a game by id. Returns ErrNotFound if missing.
	GetGame(ctx context.Context, id string) (*game.Game, error)

	// AppendGuess appends one guess to the (game,user) log.
	// Returns ErrDuplicateGuess on a literal repeat.
	AppendGuess(ctx context.Context, gu *game.Guess) error

	// CountGuesses returns the number of guesses for (gameID, userID).
	CountGuesses(ctx context.Context, gameID, userID string) (int, error)

	// ListGuesses returns the (gameID, userID) guess log in creation order.
	ListGuesses(ctx context.Context, gameID, userID string) ([]game.Guess, error)
}
