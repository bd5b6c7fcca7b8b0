// internal/session/errors.go
//
// Error taxonomy for the session manager. Callers branch on these kinds
// (errors.Is / errors.As), never on strings, so presentation layers can map
// each to a distinct user-facing message.
//
//   - Validation errors (length, word, duplicate) abort before any
//     persistence and are caller-correctable.
//   - Not-found signals a stale or invalid game reference.
//   - RecorderError happens strictly after the winning guess is durable and
//     must never void the win: it is returned alongside a valid Result.

package session

import "errors"

var (
	// ErrInvalidGuessLength rejects a guess that is not exactly WordLength
	// characters, before any I/O.
	ErrInvalidGuessLength = errors.New("guess must be five letters")

	// ErrInvalidWord rejects a guess that is not in the dictionary.
	ErrInvalidWord = errors.New("not a valid word")

	// ErrDuplicateGuess rejects a literal repeat of an earlier guess by the
	// same user in the same game.
	ErrDuplicateGuess = errors.New("guess already made")

	// ErrGameNotFound signals an unknown game id.
	ErrGameNotFound = errors.New("game not found")

	// ErrAnswerNotRevealable gates the secret word until the session is over.
	ErrAnswerNotRevealable = errors.New("answer not yet revealable")

	// ErrDictionaryEmpty is a fatal configuration error: no words to pick
	// from at game creation.
	ErrDictionaryEmpty = errors.New("no words available")
)

// RecorderError wraps a failed ledger write. The win it accompanies is
// already durable; the caller surfaces this as a warning, not a failure.
type RecorderError struct {
	Err error
}

func (e *RecorderError) Error() string { return "record win: " + e.Err.Error() }

func (e *RecorderError) Unwrap() error { return e.Err }
