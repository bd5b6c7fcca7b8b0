// internal/game/score.go
//
// Pure guess-scoring engine.
// Responsibilities:
//   - Score a guess against a secret word with the classic two-pass
//     letter-frequency algorithm.
//   - Report whether a status row is a winning row.
//
// Notes:
//   - Score is deterministic and side-effect free; callers are expected to
//     normalize inputs to lowercase and validate length beforehand.
//   - Statuses are always derivable from (guess, word); nothing here is ever
//     persisted as authoritative.

package game

import "github.com/samber/lo"

// Score evaluates guess against word and returns one Status per position.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count remaining (non-matched) word letters by letter index.
//
// Pass 2:
//   - For each non-correct guess letter: if there is remaining count for that
//     letter, mark present and decrement the count; otherwise mark absent.
//
// Consuming matched letters this way guarantees that each word letter can
// justify at most one correct/present in the guess, which is what makes
// repeated letters score correctly. A single left-to-right pass would
// double-count a letter that appears once in the word but twice in the guess.
func Score(guess, word string) []Status {
	n := len(word)
	res := make([]Status, n)
	guessRunes := []rune(guess)
	wordRunes := []rune(word)

	// Letter frequency for the non-correct positions (a–z).
	var counts [26]int

	// First pass: exact matches, and counts for the remaining word letters.
	for i := 0; i < n; i++ {
		if guessRunes[i] == wordRunes[i] {
			res[i] = StatusCorrect
		} else {
			counts[idx(wordRunes[i])]++
		}
	}

	// Second pass: resolve present/absent for the remaining tiles.
	for i := 0; i < n; i++ {
		if res[i] == StatusCorrect {
			continue
		}
		j := idx(guessRunes[i])
		if j >= 0 && j < 26 && counts[j] > 0 {
			res[i] = StatusPresent
			counts[j]--
		} else {
			res[i] = StatusAbsent
		}
	}
	return res
}

// AllCorrect reports whether every status in the row is correct.
func AllCorrect(statuses []Status) bool {
	return len(statuses) > 0 && lo.EveryBy(statuses, func(s Status) bool {
		return s == StatusCorrect
	})
}

// AllAbsent returns a row of WordLength absent statuses. Used for the
// terminal snapshot of a capped, unwon session.
func AllAbsent() []Status {
	res := make([]Status, WordLength)
	for i := range res {
		res[i] = StatusAbsent
	}
	return res
}

// idx maps a lowercase ASCII letter rune to 0..25.
// Assumes inputs are validated to a–z elsewhere.
func idx(r rune) int { return int(r - 'a') }

// IsLowerAlpha checks that a string consists only of lowercase a–z.
func IsLowerAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
