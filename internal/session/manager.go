// internal/session/manager.go
//
// Game session manager: the orchestrator for create/guess/reveal.
// Responsibilities:
//   - Enforce the session state machine: InProgress → GameOver(Won|Lost);
//     terminal sessions accept no further scored guesses.
//   - Validate guesses (length, dictionary, duplicate) before persistence.
//   - Score via the pure engine and append to the guess log.
//   - Sequence the win-recording side effect strictly after persistence,
//     outside the session lock, bounded by a timeout.
//   - Notify the live update hub on game over (fire-and-forget).
//
// Statuses are always recomputed from (guess text, secret word); nothing
// cached is ever treated as authoritative.

package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/wordchain/server/internal/game"
	"github.com/wordchain/server/internal/store"
)

// defaultRecordTimeout bounds the ledger write on a win. A timeout is a
// recorder failure, not a game-logic failure.
const defaultRecordTimeout = 10 * time.Second

// Dictionary supplies valid words. Loaded once per process, read-only.
type Dictionary interface {
	Contains(word string) bool
	Sample() (string, error)
}

// Recorder commits a win to the external ledger and returns a transaction
// reference. Best-effort relative to the authoritative local record.
type Recorder interface {
	RecordWin(ctx context.Context, gameID, winner string, guessCount int) (string, error)
}

// Notifier receives a game id whenever a session reaches game over.
type Notifier interface {
	Publish(gameID string)
}

// Manager orchestrates game sessions over its injected collaborators.
type Manager struct {
	store         store.Store
	dict          Dictionary
	recorder      Recorder
	notifier      Notifier
	locks         *lockTable
	recordTimeout time.Duration
}

// New constructs a Manager. All collaborators are required; use
// ledger.Disabled for a recorder when no ledger is configured.
func New(st store.Store, dict Dictionary, rec Recorder, notif Notifier) *Manager {
	return &Manager{
		store:         st,
		dict:          dict,
		recorder:      rec,
		notifier:      notif,
		locks:         newLockTable(),
		recordTimeout: defaultRecordTimeout,
	}
}

// Result is the outcome of one Guess call.
type Result struct {
	IsGameOver      bool          `json:"isGameOver"`
	IsGuessCorrect  bool          `json:"isGuessCorrect"`
	NumberOfGuesses int           `json:"numberOfGuesses"`
	Statuses        []game.Status `json:"statuses"`
	TransactionRef  string        `json:"txHash,omitempty"`

	// Replayed marks a terminal snapshot returned for a guess submitted
	// after game over: nothing new was persisted or recorded.
	Replayed bool `json:"-"`
}

// ScoredGuess is one historical guess with freshly derived statuses.
type ScoredGuess struct {
	Guess    string        `json:"guess"`
	Statuses []game.Status `json:"statuses"`
}

// Create picks a uniformly random secret word and persists a new game owned
// by userID.
func (m *Manager) Create(ctx context.Context, userID string) (*game.Game, error) {
	word, err := m.dict.Sample()
	if err != nil {
		return nil, ErrDictionaryEmpty
	}
	return m.createGame(ctx, userID, word)
}

// CreateWithWord persists a new game with a fixed secret word. Used by the
// daily challenge, where the word is chosen deterministically per date.
func (m *Manager) CreateWithWord(ctx context.Context, userID, word string) (*game.Game, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if len(word) != game.WordLength {
		return nil, ErrInvalidGuessLength
	}
	return m.createGame(ctx, userID, word)
}

func (m *Manager) createGame(ctx context.Context, userID, word string) (*game.Game, error) {
	g := &game.Game{
		ID:        uuid.NewString(),
		Word:      word,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.CreateGame(ctx, g); err != nil {
		return nil, err
	}
	log.Info().Str("gameId", g.ID).Str("userId", userID).Msg("game created")
	return g, nil
}

// Game loads a game projection by id. The secret word stays server-side
// (excluded from serialization); use RevealWord for the gated reveal.
func (m *Manager) Game(ctx context.Context, gameID string) (*game.Game, error) {
	g, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return g, nil
}

// Guess validates, scores, and persists one guess for (gameID, userID).
//
// Sequencing is fixed: validate → terminal check → score → persist →
// determine isWin/isGameOver → record win → notify. The per-session lock is
// released before the recorder call so a slow ledger never blocks another
// player's turn.
//
// Calling Guess on a terminal session is an idempotent no-op: the terminal
// snapshot comes back with no new record and no error, which keeps client
// retries safe.
//
// A ledger failure is returned as *RecorderError next to a valid Result;
// the locally persisted win stands regardless.
func (m *Manager) Guess(ctx context.Context, gameID, userID, text string) (*Result, error) {
	if len(text) != game.WordLength {
		return nil, ErrInvalidGuessLength
	}

	g, err := m.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}

	res, isWin, err := m.applyGuess(ctx, g, userID, text)
	if err != nil || res.alreadyOver {
		return res.result, err
	}

	var recErr error
	if isWin {
		rctx, cancel := context.WithTimeout(ctx, m.recordTimeout)
		ref, err := m.recorder.RecordWin(rctx, gameID, userID, res.result.NumberOfGuesses)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Str("userId", userID).Msg("win recorder failed")
			recErr = &RecorderError{Err: err}
		} else {
			res.result.TransactionRef = ref
		}
	}

	if res.result.IsGameOver {
		m.notifier.Publish(gameID)
	}
	return res.result, recErr
}

// applied carries the outcome of the locked section of Guess.
type applied struct {
	result      *Result
	alreadyOver bool
}

// applyGuess runs the serialized read-check-write sequence under the
// per-(game,user) lock. Two concurrent guesses for the same session cannot
// both slip past the cap or the duplicate check.
func (m *Manager) applyGuess(ctx context.Context, g *game.Game, userID, text string) (applied, bool, error) {
	mu := m.locks.get(g.ID + "|" + userID)
	mu.Lock()
	defer mu.Unlock()

	history, err := m.store.ListGuesses(ctx, g.ID, userID)
	if err != nil {
		return applied{}, false, err
	}

	// Terminal session: return the snapshot, score nothing, persist nothing.
	if snap := terminalSnapshot(g, history); snap != nil {
		return applied{result: snap, alreadyOver: true}, false, nil
	}

	text = strings.ToLower(text)
	if !m.dict.Contains(text) {
		return applied{}, false, ErrInvalidWord
	}
	if lo.ContainsBy(history, func(prev game.Guess) bool { return prev.Text == text }) {
		return applied{}, false, ErrDuplicateGuess
	}

	statuses := game.Score(text, g.Word)

	gu := &game.Guess{
		GameID:    g.ID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.AppendGuess(ctx, gu); err != nil {
		// The UNIQUE backstop can still fire if another writer raced us in.
		if errors.Is(err, store.ErrDuplicateGuess) {
			return applied{}, false, ErrDuplicateGuess
		}
		return applied{}, false, err
	}

	count := len(history) + 1
	isWin := game.AllCorrect(statuses)
	res := &Result{
		IsGameOver:      isWin || count == game.MaxGuesses,
		IsGuessCorrect:  isWin,
		NumberOfGuesses: count,
		Statuses:        statuses,
	}
	return applied{result: res}, isWin, nil
}

// terminalSnapshot returns the frozen result for a finished session, or nil
// if the session is still in progress. A won session replays the winning
// row; a capped loss carries all-absent statuses.
func terminalSnapshot(g *game.Game, history []game.Guess) *Result {
	if len(history) == 0 {
		return nil
	}
	last := game.Score(history[len(history)-1].Text, g.Word)
	switch {
	case game.AllCorrect(last):
		return &Result{
			IsGameOver:      true,
			IsGuessCorrect:  true,
			NumberOfGuesses: len(history),
			Statuses:        last,
			Replayed:        true,
		}
	case len(history) >= game.MaxGuesses:
		return &Result{
			IsGameOver:      true,
			NumberOfGuesses: len(history),
			Statuses:        game.AllAbsent(),
			Replayed:        true,
		}
	}
	return nil
}

// Guesses returns the ordered guess history for (gameID, userID), with every
// status row re-derived from the stored text and the secret word.
func (m *Manager) Guesses(ctx context.Context, gameID, userID string) ([]ScoredGuess, error) {
	g, err := m.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	history, err := m.store.ListGuesses(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(history, func(gu game.Guess, _ int) ScoredGuess {
		return ScoredGuess{Guess: gu.Text, Statuses: game.Score(gu.Text, g.Word)}
	}), nil
}

// RevealWord returns the secret word once the session is over — either the
// guess cap was reached or the final guess was fully correct. Before that it
// fails with ErrAnswerNotRevealable. Casing is the caller's concern.
func (m *Manager) RevealWord(ctx context.Context, gameID, userID string) (string, error) {
	g, err := m.Game(ctx, gameID)
	if err != nil {
		return "", err
	}
	history, err := m.store.ListGuesses(ctx, gameID, userID)
	if err != nil {
		return "", err
	}
	if terminalSnapshot(g, history) == nil {
		return "", ErrAnswerNotRevealable
	}
	return g.Word, nil
}
