// internal/httpserver/server.go
//
// HTTP server wiring for the wordchain backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", live updates stream.
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess,
//     GET /game/{gameID}/guesses, GET /game/{gameID}/answer.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints (require auth): /auth/*, /stats/me,
//     /games/mine.
//
// Notes:
//   - The session manager owns all game rules; handlers only translate its
//     error kinds into status codes and distinct user-facing messages.
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - /game/updates is a server-sent-events stream and therefore sits
//     outside the request-timeout group.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/wordchain/server/internal/config"
	"github.com/wordchain/server/internal/pubsub"
	"github.com/wordchain/server/internal/session"
	"github.com/wordchain/server/internal/words"
)

// Server bundles the router with the session manager and its collaborators.
type Server struct {
	r    *chi.Mux
	cfg  *config.Config
	db   *sql.DB
	mgr  *session.Manager
	hub  *pubsub.Hub
	dict *words.List
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, db *sql.DB, mgr *session.Manager, hub *pubsub.Hub, dict *words.List) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, db: db, mgr: mgr, hub: hub, dict: dict}

	// --- middleware ---
	s.r.Use(chimw.RequestID)   // add X-Request-ID
	s.r.Use(chimw.RealIP)      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)   // recover from panics
	s.r.Use(s.jsonContentType) // default JSON responses
	s.r.Use(s.corsFromConfig)  // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordchain","endpoints":["/health","POST /game/new","POST /game/guess","GET /game/{gameID}/guesses","GET /game/{gameID}/answer","GET /game/updates","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Bounded request handlers.
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))

		// Game endpoints — OPTIONAL AUTH (guests can play)
		r.With(s.withOptionalAuth()).Post("/game/new", s.handleNewGame)
		r.With(s.withOptionalAuth()).Post("/game/guess", s.handleGuess)
		r.With(s.withOptionalAuth()).Get("/game/{gameID}/guesses", s.handleGuesses)
		r.With(s.withOptionalAuth()).Get("/game/{gameID}/answer", s.handleAnswer)

		// Daily Challenge — OPTIONAL AUTH
		s.mountDaily(r.With(s.withOptionalAuth()))

		// Auth + profile/stats (require auth where noted)
		s.mountAuthRoutes(r)

		// Debug: dictionary size
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]int{"words": s.dict.Count()})
		})
	})

	// Live updates stream: long-lived, so no request timeout.
	s.r.Get("/game/updates", s.handleUpdates)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func (s *Server) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromConfig enables credentialed CORS for the configured client origin.
func (s *Server) corsFromConfig(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError emits a machine-readable error code plus a human message, so
// clients can differentiate "not a word" from "already guessed" without
// string matching.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}

// ------------------------------ GAME ---------------------------------------

// newGameRes is returned by POST /game/new.
type newGameRes struct {
	GameID string `json:"gameId"`
}

// handleNewGame creates a new game owned by the current (or anonymous) user.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	uid := s.userID(w, r)
	g, err := s.mgr.Create(r.Context(), uid)
	if err != nil {
		if errors.Is(err, session.ErrDictionaryEmpty) {
			log.Error().Err(err).Msg("dictionary empty")
			writeError(w, http.StatusInternalServerError, "dictionary_empty", "no words available")
			return
		}
		log.Error().Err(err).Msg("create game")
		writeError(w, http.StatusInternalServerError, "create_failed", "could not create game")
		return
	}
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: g.ID})
}

// guessReq/guessRes payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	*session.Result
	// RecorderError carries the soft warning when the ledger write failed;
	// the result itself is still valid and durable.
	RecorderError string `json:"recorderError,omitempty"`
}

// handleGuess submits one guess through the session manager and maps its
// error kinds onto HTTP statuses.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}
	uid := s.userID(w, r)

	res, err := s.mgr.Guess(r.Context(), req.GameID, uid, req.Guess)
	out := guessRes{Result: res}
	if err != nil {
		var recErr *session.RecorderError
		if !errors.As(err, &recErr) {
			s.writeGuessError(w, err)
			return
		}
		out.RecorderError = recErr.Error()
	}

	if res.IsGameOver && !res.Replayed {
		s.bumpStatsIfAuthed(r, res.IsGuessCorrect)
	}
	_ = json.NewEncoder(w).Encode(out)
}

// writeGuessError translates session error kinds for guess-shaped routes.
func (s *Server) writeGuessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrGameNotFound):
		writeError(w, http.StatusNotFound, "game_not_found", "game not found")
	case errors.Is(err, session.ErrInvalidGuessLength):
		writeError(w, http.StatusBadRequest, "invalid_guess_length", "guess must be five letters")
	case errors.Is(err, session.ErrInvalidWord):
		writeError(w, http.StatusBadRequest, "invalid_word", "not a valid word")
	case errors.Is(err, session.ErrDuplicateGuess):
		writeError(w, http.StatusBadRequest, "duplicate_guess", "guess already made")
	default:
		log.Error().Err(err).Msg("guess failed")
		writeError(w, http.StatusInternalServerError, "internal", "something went wrong")
	}
}

// handleGuesses returns the ordered guess history with freshly derived
// statuses.
func (s *Server) handleGuesses(w http.ResponseWriter, r *http.Request) {
	uid := s.userID(w, r)
	history, err := s.mgr.Guesses(r.Context(), chi.URLParam(r, "gameID"), uid)
	if err != nil {
		s.writeGuessError(w, err)
		return
	}
	if history == nil {
		history = []session.ScoredGuess{}
	}
	_ = json.NewEncoder(w).Encode(history)
}

// answerRes is returned by GET /game/{gameID}/answer.
type answerRes struct {
	Word string `json:"word"`
}

// handleAnswer reveals the secret word once the session is over.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	uid := s.userID(w, r)
	word, err := s.mgr.RevealWord(r.Context(), chi.URLParam(r, "gameID"), uid)
	if err != nil {
		if errors.Is(err, session.ErrAnswerNotRevealable) {
			writeError(w, http.StatusConflict, "answer_not_revealable", "finish the game first")
			return
		}
		s.writeGuessError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(answerRes{Word: strings.ToUpper(word)})
}

// --------------------------- live updates ----------------------------------

// handleUpdates streams game snapshots as server-sent events. Each event is
// tagged with the game id, so a client that reconnects with Last-Event-ID
// first gets that game's current snapshot and can deduplicate by id.
func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fl.Flush()

	lastID := r.Header.Get("Last-Event-ID")
	if lastID == "" {
		lastID = r.URL.Query().Get("lastEventId")
	}
	if lastID != "" {
		s.writeGameEvent(r.Context(), w, fl, lastID)
	}

	sub := s.hub.Subscribe(r.Context())
	for gameID := range sub.C() {
		s.writeGameEvent(r.Context(), w, fl, gameID)
	}
}

// writeGameEvent loads and emits one game snapshot. The snapshot never
// includes the secret word (excluded at the type level).
func (s *Server) writeGameEvent(ctx context.Context, w http.ResponseWriter, fl http.Flusher, gameID string) {
	g, err := s.mgr.Game(ctx, gameID)
	if err != nil {
		return
	}
	payload, err := json.Marshal(g)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "id: %s\nevent: game\ndata: %s\n\n", g.ID, payload)
	fl.Flush()
}
