package game

import (
	"strings"
	"testing"
)

func TestScoreExactAndRepeatedLetters(t *testing.T) {
	tests := []struct {
		name  string
		word  string
		guess string
		want  []Status
	}{
		{
			name:  "all correct",
			word:  "crane",
			guess: "crane",
			want:  []Status{StatusCorrect, StatusCorrect, StatusCorrect, StatusCorrect, StatusCorrect},
		},
		{
			name:  "repeated guess letter consumed by exact match",
			word:  "crane",
			guess: "trace",
			want:  []Status{StatusAbsent, StatusCorrect, StatusCorrect, StatusPresent, StatusCorrect},
		},
		{
			name:  "no letters shared",
			word:  "crane",
			guess: "boils",
			want:  []Status{StatusAbsent, StatusAbsent, StatusAbsent, StatusAbsent, StatusAbsent},
		},
		{
			name:  "extra guess letters absent once word letter is consumed",
			word:  "frame",
			guess: "melee",
			want:  []Status{StatusPresent, StatusAbsent, StatusAbsent, StatusAbsent, StatusCorrect},
		},
		{
			name:  "repeated letters split across correct, present and absent",
			word:  "alley",
			guess: "llama",
			want:  []Status{StatusPresent, StatusCorrect, StatusPresent, StatusAbsent, StatusAbsent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.guess, tt.word)
			if len(got) != len(tt.want) {
				t.Fatalf("Score(%q, %q) length = %d, want %d", tt.guess, tt.word, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Score(%q, %q)[%d] = %s, want %s", tt.guess, tt.word, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// The word "speed" has two e's; the guess "erase" has e at positions 0 and 4.
// Both must come back present, and only those two.
func TestScoreRepeatedLettersBothPresent(t *testing.T) {
	got := Score("erase", "speed")

	presentEs := 0
	for i, s := range got {
		if "erase"[i] == 'e' && s == StatusPresent {
			presentEs++
		}
	}
	if presentEs != 2 {
		t.Fatalf("Score(erase, speed) = %v, want exactly two present e's, got %d", got, presentEs)
	}
}

// Each word letter can justify at most one correct/present in the guess.
func TestScoreNeverOvercountsLetters(t *testing.T) {
	words := []string{"speed", "crane", "alley", "loops", "added"}
	guesses := []string{"eerie", "added", "lulls", "spool", "dared"}

	for _, word := range words {
		for _, guess := range guesses {
			got := Score(guess, word)

			// Count correct at exact-match positions.
			exact := 0
			for i := range word {
				if word[i] == guess[i] {
					exact++
					if got[i] != StatusCorrect {
						t.Errorf("Score(%q, %q)[%d] = %s, want correct", guess, word, i, got[i])
					}
				}
			}
			correct := 0
			for _, s := range got {
				if s == StatusCorrect {
					correct++
				}
			}
			if correct != exact {
				t.Errorf("Score(%q, %q) has %d correct, want %d", guess, word, correct, exact)
			}

			// correct+present per letter never exceeds occurrences in word.
			for c := byte('a'); c <= 'z'; c++ {
				matched := 0
				for i := range guess {
					if guess[i] == c && got[i] != StatusAbsent {
						matched++
					}
				}
				if avail := strings.Count(word, string(c)); matched > avail {
					t.Errorf("Score(%q, %q): letter %c matched %d times, word has %d", guess, word, c, matched, avail)
				}
			}
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	first := Score("trace", "crane")
	for i := 0; i < 100; i++ {
		again := Score("trace", "crane")
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("Score is not deterministic: run %d position %d = %s, want %s", i, j, again[j], first[j])
			}
		}
	}
}

func TestAllCorrect(t *testing.T) {
	if !AllCorrect(Score("crane", "crane")) {
		t.Error("AllCorrect(winning row) = false, want true")
	}
	if AllCorrect(Score("trace", "crane")) {
		t.Error("AllCorrect(partial row) = true, want false")
	}
	if AllCorrect(nil) {
		t.Error("AllCorrect(nil) = true, want false")
	}
}

func TestAllAbsent(t *testing.T) {
	row := AllAbsent()
	if len(row) != WordLength {
		t.Fatalf("AllAbsent length = %d, want %d", len(row), WordLength)
	}
	for i, s := range row {
		if s != StatusAbsent {
			t.Errorf("AllAbsent[%d] = %s, want absent", i, s)
		}
	}
}

func TestIsLowerAlpha(t *testing.T) {
	if !IsLowerAlpha("crane") {
		t.Error("IsLowerAlpha(crane) = false")
	}
	for _, bad := range []string{"Crane", "cran3", "cra-e", "crané"} {
		if IsLowerAlpha(bad) {
			t.Errorf("IsLowerAlpha(%q) = true, want false", bad)
		}
	}
}
