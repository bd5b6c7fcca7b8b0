// internal/words/words.go
//
// Word dictionary for the game engine.
//
// Responsibilities:
//   - Load the valid-word list from an environment-provided file or fall
//     back to the embedded default list.
//   - Maintain a set for O(1) membership checks.
//   - Supply Sample (uniform random secret word) and Contains.
//
// Constraints:
//   • Words must be exactly game.WordLength lowercase ASCII letters.
//   • The list is normalized to lowercase and deduplicated at load time.
//   • A List is immutable after construction; it is loaded once per process
//     and shared read-only.

package words

import (
	"bufio"
	"crypto/rand"
	_ "embed"
	"errors"
	"math/big"
	"os"
	"strings"

	"github.com/wordchain/server/internal/game"
)

//go:embed default_words.txt
var embedded string

// ErrEmpty is returned by Sample when the dictionary holds no words.
// Reaching it at runtime is an operator configuration error.
var ErrEmpty = errors.New("words: dictionary is empty")

// List is an immutable set of valid lowercase words.
type List struct {
	words []string
	set   map[string]struct{}
}

// New builds a List from raw candidate words. Entries are lowercased and
// anything that is not exactly WordLength ASCII letters is dropped.
func New(candidates []string) *List {
	l := &List{set: make(map[string]struct{}, len(candidates))}
	for _, c := range candidates {
		w := strings.TrimSpace(strings.ToLower(c))
		if len(w) != game.WordLength || !game.IsLowerAlpha(w) {
			continue
		}
		if _, ok := l.set[w]; ok {
			continue
		}
		l.set[w] = struct{}{}
		l.words = append(l.words, w)
	}
	return l
}

// Load reads the dictionary from path (one word per line; blank lines and
// "#" comments ignored). An empty path falls back to the embedded default
// list so the server runs without any configuration.
func Load(path string) (*List, error) {
	if path == "" {
		return New(splitLines(embedded)), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return New(out), nil
}

// Contains reports whether w is a valid word. Lookup is case-insensitive.
func (l *List) Contains(w string) bool {
	_, ok := l.set[strings.ToLower(w)]
	return ok
}

// Sample returns a cryptographically random word from the list.
func (l *List) Sample() (string, error) {
	if len(l.words) == 0 {
		return "", ErrEmpty
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.words))))
	if err != nil {
		return "", err
	}
	return l.words[nBig.Int64()], nil
}

// Count returns the number of words in the list.
func (l *List) Count() int { return len(l.words) }

// Words returns the full list in load order. The daily challenge indexes
// into it deterministically; callers must not mutate the slice.
func (l *List) Words() []string { return l.words }

// splitLines processes an embedded multiline string into raw candidates.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if w := strings.TrimSpace(line); w != "" {
			out = append(out, w)
		}
	}
	return out
}
