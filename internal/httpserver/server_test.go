package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wordchain/server/internal/config"
	"github.com/wordchain/server/internal/game"
	"github.com/wordchain/server/internal/ledger"
	"github.com/wordchain/server/internal/pubsub"
	"github.com/wordchain/server/internal/session"
	"github.com/wordchain/server/internal/store"
	"github.com/wordchain/server/internal/words"
)

// failingRecorder simulates a ledger outage.
type failingRecorder struct{}

func (failingRecorder) RecordWin(context.Context, string, string, int) (string, error) {
	return "", errors.New("relayer unreachable")
}

// newTestServer wires the handler stack over the in-memory store. db is nil:
// the anonymous flow used by these tests never touches SQL.
func newTestServer(t *testing.T, rec session.Recorder) *Server {
	t.Helper()
	if rec == nil {
		rec = ledger.Disabled{}
	}
	dict := words.New([]string{"crane", "trace", "speed", "erase", "board", "think"})
	hub := pubsub.NewHub()
	mgr := session.New(store.NewMemory(), dict, rec, hub)
	cfg := &config.Config{
		Port:         "0",
		Environment:  "test",
		ClientOrigin: "http://localhost:5173",
		CookieName:   "wordchain_token",
		JWTSecret:    "test_secret",
	}
	return New(cfg, nil, mgr, hub, dict)
}

// doJSON performs a request with the given anon identity and decodes the
// JSON response into out (when non-nil).
func doJSON(t *testing.T, s *Server, method, path, anonID string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if anonID != "" {
		req.AddCookie(&http.Cookie{Name: anonCookieName, Value: anonID})
	}
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if out != nil && rr.Code == http.StatusOK {
		if err := json.NewDecoder(rr.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rr
}

// errCode extracts the machine-readable error code from a failed response.
func errCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return e.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rr := doJSON(t, s, http.MethodGet, "/health", "", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health = %d", rr.Code)
	}
}

func TestNewGameSetsAnonCookie(t *testing.T) {
	s := newTestServer(t, nil)

	var res newGameRes
	rr := doJSON(t, s, http.MethodPost, "/game/new", "", nil, &res)
	if rr.Code != http.StatusOK {
		t.Fatalf("new game = %d: %s", rr.Code, rr.Body.String())
	}
	if res.GameID == "" {
		t.Error("empty gameId")
	}
	if !strings.Contains(rr.Header().Get("Set-Cookie"), anonCookieName) {
		t.Errorf("no anon cookie in %q", rr.Header().Get("Set-Cookie"))
	}
}

func TestGuessFlow(t *testing.T) {
	s := newTestServer(t, nil)
	const uid = "anon-alice"

	g, err := s.mgr.CreateWithWord(context.Background(), uid, "crane")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Reveal is gated while the game is live.
	rr := doJSON(t, s, http.MethodGet, "/game/"+g.ID+"/answer", uid, nil, nil)
	if rr.Code != http.StatusConflict || errCode(t, rr) != "answer_not_revealable" {
		t.Fatalf("early answer = %d %s", rr.Code, rr.Body.String())
	}

	var res guessRes
	rr = doJSON(t, s, http.MethodPost, "/game/guess", uid, guessReq{GameID: g.ID, Guess: "trace"}, &res)
	if rr.Code != http.StatusOK {
		t.Fatalf("guess = %d: %s", rr.Code, rr.Body.String())
	}
	want := []game.Status{game.StatusAbsent, game.StatusCorrect, game.StatusCorrect, game.StatusPresent, game.StatusCorrect}
	for i, st := range res.Statuses {
		if st != want[i] {
			t.Errorf("statuses[%d] = %s, want %s", i, st, want[i])
		}
	}
	if res.IsGameOver || res.IsGuessCorrect {
		t.Errorf("trace should not end the game: %+v", res.Result)
	}

	res = guessRes{}
	rr = doJSON(t, s, http.MethodPost, "/game/guess", uid, guessReq{GameID: g.ID, Guess: "CRANE"}, &res)
	if rr.Code != http.StatusOK {
		t.Fatalf("winning guess = %d: %s", rr.Code, rr.Body.String())
	}
	if !res.IsGameOver || !res.IsGuessCorrect || res.NumberOfGuesses != 2 {
		t.Fatalf("win result = %+v", res.Result)
	}

	var ans answerRes
	rr = doJSON(t, s, http.MethodGet, "/game/"+g.ID+"/answer", uid, nil, &ans)
	if rr.Code != http.StatusOK || ans.Word != "CRANE" {
		t.Fatalf("answer = %d %q", rr.Code, ans.Word)
	}

	var history []session.ScoredGuess
	rr = doJSON(t, s, http.MethodGet, "/game/"+g.ID+"/guesses", uid, nil, &history)
	if rr.Code != http.StatusOK || len(history) != 2 {
		t.Fatalf("history = %d rows (code %d)", len(history), rr.Code)
	}
	if history[0].Guess != "trace" || history[1].Guess != "crane" {
		t.Errorf("history order wrong: %+v", history)
	}

	// Retrying the win replays the terminal snapshot without growing the log.
	res = guessRes{}
	rr = doJSON(t, s, http.MethodPost, "/game/guess", uid, guessReq{GameID: g.ID, Guess: "crane"}, &res)
	if rr.Code != http.StatusOK {
		t.Fatalf("post-win guess = %d: %s", rr.Code, rr.Body.String())
	}
	if !res.IsGameOver || !res.IsGuessCorrect || res.NumberOfGuesses != 2 {
		t.Errorf("replayed snapshot = %+v", res.Result)
	}
}

func TestGuessErrorMapping(t *testing.T) {
	s := newTestServer(t, nil)
	const uid = "anon-bob"

	g, err := s.mgr.CreateWithWord(context.Background(), uid, "crane")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		name     string
		gameID   string
		guess    string
		wantCode int
		wantErr  string
	}{
		{"unknown game", "no-such-game", "trace", http.StatusNotFound, "game_not_found"},
		{"too short", g.ID, "abc", http.StatusBadRequest, "invalid_guess_length"},
		{"not a word", g.ID, "zzzzz", http.StatusBadRequest, "invalid_word"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, s, http.MethodPost, "/game/guess", uid, guessReq{GameID: tc.gameID, Guess: tc.guess}, nil)
			if rr.Code != tc.wantCode {
				t.Fatalf("code = %d, want %d: %s", rr.Code, tc.wantCode, rr.Body.String())
			}
			if got := errCode(t, rr); got != tc.wantErr {
				t.Errorf("error = %q, want %q", got, tc.wantErr)
			}
		})
	}

	// Duplicate: same guess twice.
	if rr := doJSON(t, s, http.MethodPost, "/game/guess", uid, guessReq{GameID: g.ID, Guess: "trace"}, nil); rr.Code != http.StatusOK {
		t.Fatalf("first trace = %d", rr.Code)
	}
	rr := doJSON(t, s, http.MethodPost, "/game/guess", uid, guessReq{GameID: g.ID, Guess: "trace"}, nil)
	if rr.Code != http.StatusBadRequest || errCode(t, rr) != "duplicate_guess" {
		t.Fatalf("duplicate = %d %s", rr.Code, rr.Body.String())
	}

	// Guess history of a missing game is a 404, not an empty list.
	rr = doJSON(t, s, http.MethodGet, "/game/no-such-game/guesses", uid, nil, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing game history = %d", rr.Code)
	}
}

func TestRecorderFailureIsSoft(t *testing.T) {
	s := newTestServer(t, failingRecorder{})
	const uid = "anon-carol"

	g, err := s.mgr.CreateWithWord(context.Background(), uid, "crane")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var res guessRes
	rr := doJSON(t, s, http.MethodPost, "/game/guess", uid, guessReq{GameID: g.ID, Guess: "crane"}, &res)
	if rr.Code != http.StatusOK {
		t.Fatalf("win with broken recorder = %d: %s", rr.Code, rr.Body.String())
	}
	if !res.IsGameOver || !res.IsGuessCorrect {
		t.Fatalf("result = %+v", res.Result)
	}
	if res.RecorderError == "" {
		t.Error("expected recorderError warning in response")
	}
	if res.TransactionRef != "" {
		t.Errorf("unexpected txHash %q", res.TransactionRef)
	}

	// The win is durable locally: reveal works.
	rr = doJSON(t, s, http.MethodGet, "/game/"+g.ID+"/answer", uid, nil, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("answer after soft failure = %d", rr.Code)
	}
}

func TestUpdatesStreamReplaysLastEvent(t *testing.T) {
	s := newTestServer(t, nil)

	g, err := s.mgr.CreateWithWord(context.Background(), "anon-dave", "crane")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/game/updates", nil).WithContext(ctx)
	req.Header.Set("Last-Event-ID", g.ID)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	body := rr.Body.String()
	if !strings.Contains(body, "id: "+g.ID) || !strings.Contains(body, "event: game") {
		t.Fatalf("replay frame missing from stream: %q", body)
	}
	// The snapshot must never leak the secret word.
	if strings.Contains(body, "crane") {
		t.Error("secret word leaked in update stream")
	}
}
