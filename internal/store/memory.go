// internal/store/memory.go
//
// In-memory implementation of Store.
// Used by tests and for durability-free local runs.
//
// Characteristics:
//   - Games keyed by id; guess logs keyed by gameID|userID.
//   - Concurrency-safe via RWMutex (reads shared, writes exclusive).
//   - AppendGuess performs the duplicate check and the append under one
//     write lock, so it has the same conditional-insert guarantee as the
//     SQLite UNIQUE constraint.
//   - State is lost when the process exits.

package store

import (
	"context"
	"sync"

	"github.com/wordchain/server/internal/game"
)

type memory struct {
	mu      sync.RWMutex
	games   map[string]game.Game
	guesses map[string][]game.Guess // keyed by gameID|userID
}

// NewMemory constructs an empty in-memory Store.
func NewMemory() Store {
	return &memory{
		games:   make(map[string]game.Game),
		guesses: make(map[string][]game.Guess),
	}
}

func logKey(gameID, userID string) string { return gameID + "|" + userID }

func (m *memory) CreateGame(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = *g
	return nil
}

func (m *memory) GetGame(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := g
	return &cp, nil
}

func (m *memory) AppendGuess(ctx context.Context, gu *game.Guess) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gu.GameID]; !ok {
		return ErrNotFound
	}
	key := logKey(gu.GameID, gu.UserID)
	for _, prev := range m.guesses[key] {
		if prev.Text == gu.Text {
			return ErrDuplicateGuess
		}
	}
	m.guesses[key] = append(m.guesses[key], *gu)
	return nil
}

func (m *memory) CountGuesses(ctx context.Context, gameID, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.guesses[logKey(gameID, userID)]), nil
}

func (m *memory) ListGuesses(ctx context.Context, gameID, userID string) ([]game.Guess, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	log := m.guesses[logKey(gameID, userID)]
	out := make([]game.Guess, len(log))
	copy(out, log)
	return out, nil
}
