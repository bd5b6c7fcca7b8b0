// internal/game/types.go
//
// Core type definitions for the word-guessing engine.
// Defines:
//   - Status: per-letter result of a guess (correct/present/absent).
//   - Game:   a single game record; the secret word never leaves the server.
//   - Guess:  one submitted guess in a (game, user) session.

package game

import "time"

// Status represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is right and in the right position.
//   - "present": letter exists in the word but in a different position.
//   - "absent":  letter does not exist in the word (or is already used up).
type Status string

const (
	StatusCorrect Status = "correct"
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

const (
	// WordLength is the fixed length of secret words and guesses.
	WordLength = 5
	// MaxGuesses is the per-(game,user) guess cap.
	MaxGuesses = 6
)

// Game is one game record. The secret word is assigned exactly once at
// creation and is excluded from JSON so it can never leak in a projection.
type Game struct {
	ID        string    `json:"id"`
	Word      string    `json:"-"` // secret, lowercase, immutable
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Guess is one submitted guess. Rows are append-only: never updated or
// deleted, totally ordered by creation within a (game, user) session.
type Guess struct {
	GameID    string    `json:"gameId"`
	UserID    string    `json:"userId"`
	Text      string    `json:"guess"` // lowercase, length WordLength
	CreatedAt time.Time `json:"createdAt"`
}
