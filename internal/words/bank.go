package words

import (
	_ "embed"
	"errors"
	"math/rand"
	"os"
	"strings"
)

// Small embedded default so the server can run without a configured word
// file.
//
//go:embed default_words.txt
var embeddedWords string

var ErrEmptyWordList = errors.New("word list is empty")

// Bank hands out random secret words from a fixed list. Repeats across
// rounds are possible.
type Bank struct {
	words []string
}

// NewBank builds a bank from an in-memory list, dropping blanks.
func NewBank(list []string) (*Bank, error) {
	cleaned := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.TrimSpace(w)
		if w != "" {
			cleaned = append(cleaned, w)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrEmptyWordList
	}
	return &Bank{words: cleaned}, nil
}

// LoadBank reads one word per line from path. An empty path falls back to
// the embedded default list. Startup should fail on error: a game without
// words cannot run.
func LoadBank(path string) (*Bank, error) {
	if path == "" {
		return NewBank(strings.Split(embeddedWords, "\n"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewBank(strings.Split(string(data), "\n"))
}

// Random returns a uniformly chosen word.
func (b *Bank) Random() string {
	return b.words[rand.Intn(len(b.words))]
}

// Len reports how many words the bank holds.
func (b *Bank) Len() int {
	return len(b.words)
}
