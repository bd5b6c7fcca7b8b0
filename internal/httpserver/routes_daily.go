// internal/httpserver/routes_daily.go
//
// Daily Challenge routes: one shared word per calendar day, one scored run
// per user per day, and a per-day leaderboard.
//
// The daily word never leaves the server; the run itself is an ordinary game
// session created with the deterministic word of the day, so all guess rules
// (validation, duplicate detection, cap, reveal gating) come from the same
// session manager as free-play games.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/wordchain/server/internal/daily"
	"github.com/wordchain/server/internal/session"
)

// dailySession tracks one user's in-flight run for a date. Kept in memory:
// an interrupted run simply restarts, only finished runs persist.
type dailySession struct {
	GameID    string
	WordIndex int
	Start     time.Time
}

// dailyServer carries the daily-challenge state alongside the main server.
type dailyServer struct {
	srv   *Server
	store *daily.Store
	salt  string

	mu       sync.Mutex
	sessions map[string]*dailySession // keyed uid|date
}

// mountDaily registers the daily-challenge routes.
func (s *Server) mountDaily(r chi.Router) {
	ds := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		sessions: map[string]*dailySession{},
	}
	r.Post("/daily/new", ds.handleNew)
	r.Post("/daily/guess", ds.handleGuess)
	r.Get("/daily/leaderboard", ds.handleLeaderboard)
}

// handleNew starts (or resumes) today's run for the current user.
func (ds *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := ds.srv.userID(w, r)
	date := daily.DateKey(time.Now())

	played, err := ds.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Error().Err(err).Msg("daily lookup")
		writeError(w, http.StatusInternalServerError, "db_error", "could not check daily status")
		return
	}
	if played {
		writeError(w, http.StatusConflict, "already_played", "daily challenge already completed today")
		return
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	key := uid + "|" + date
	if sess, ok := ds.sessions[key]; ok {
		_ = json.NewEncoder(w).Encode(map[string]string{"gameId": sess.GameID, "date": date})
		return
	}

	idx := daily.WordIndex(time.Now(), ds.salt, ds.srv.dict.Count())
	words := ds.srv.dict.Words()
	if len(words) == 0 {
		writeError(w, http.StatusInternalServerError, "dictionary_empty", "no words available")
		return
	}
	g, err := ds.srv.mgr.CreateWithWord(r.Context(), uid, words[idx])
	if err != nil {
		log.Error().Err(err).Msg("create daily game")
		writeError(w, http.StatusInternalServerError, "create_failed", "could not create daily game")
		return
	}
	ds.sessions[key] = &dailySession{GameID: g.ID, WordIndex: idx, Start: time.Now()}
	_ = json.NewEncoder(w).Encode(map[string]string{"gameId": g.ID, "date": date})
}

// dailyGuessRes extends the game result with the run state.
type dailyGuessRes struct {
	*session.Result
	RecorderError string `json:"recorderError,omitempty"`
	State         string `json:"state"` // in_progress | won | lost
}

// handleGuess scores one guess against today's session.
func (ds *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Guess string `json:"guess"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}
	uid := ds.srv.userID(w, r)
	date := daily.DateKey(time.Now())

	ds.mu.Lock()
	sess := ds.sessions[uid+"|"+date]
	ds.mu.Unlock()
	if sess == nil {
		writeError(w, http.StatusNotFound, "no_daily_session", "start today's challenge first")
		return
	}

	res, err := ds.srv.mgr.Guess(r.Context(), sess.GameID, uid, req.Guess)
	out := dailyGuessRes{Result: res, State: "in_progress"}
	if err != nil {
		var recErr *session.RecorderError
		if !errors.As(err, &recErr) {
			ds.srv.writeGuessError(w, err)
			return
		}
		out.RecorderError = recErr.Error()
	}

	if res.IsGameOver {
		if res.IsGuessCorrect {
			out.State = "won"
		} else {
			out.State = "lost"
		}
	}

	// Persist the score once, on the winning guess itself.
	if res.IsGuessCorrect && !res.Replayed {
		elapsed := int(time.Since(sess.Start).Milliseconds())
		err := ds.store.InsertResult(r.Context(), daily.Result{
			UserID:    uid,
			Date:      date,
			WordIndex: sess.WordIndex,
			Guesses:   res.NumberOfGuesses,
			ElapsedMs: elapsed,
		})
		if err != nil {
			log.Warn().Err(err).Str("userId", uid).Msg("record daily result")
		}
	}
	if res.IsGameOver && !res.Replayed {
		ds.srv.bumpStatsIfAuthed(r, res.IsGuessCorrect)
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleLeaderboard returns the fastest finishers for a date (today by
// default).
func (ds *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := ds.store.Leaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error", "could not load leaderboard")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "rows": rows})
}
