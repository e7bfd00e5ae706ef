package game

import "math/rand"

// defaultWords is the built-in pool used to pad word choices when a room has
// no (or too few) custom words.
var defaultWords = []string{
	"tree", "house", "react", "banana", "computer", "cloud", "ocean", "sun",
}

// WordBank supplies candidate words for a turn. It has no state beyond its
// default pool, so a single instance is shared by every room.
type WordBank struct {
	defaults []string
}

func NewWordBank(defaults []string) *WordBank {
	if len(defaults) == 0 {
		defaults = defaultWords
	}
	return &WordBank{defaults: defaults}
}

// Choices picks n distinct words, drawing from custom first and padding with
// the default pool. Both draws are random without replacement.
func (w *WordBank) Choices(custom []string, n int) []string {
	choices := make([]string, 0, n)
	seen := make(map[string]bool, n)

	pool := append([]string(nil), custom...)
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for _, word := range pool {
		if len(choices) == n {
			return choices
		}
		if seen[word] {
			continue
		}
		seen[word] = true
		choices = append(choices, word)
	}

	pad := append([]string(nil), w.defaults...)
	rand.Shuffle(len(pad), func(i, j int) { pad[i], pad[j] = pad[j], pad[i] })
	for _, word := range pad {
		if len(choices) == n {
			break
		}
		if seen[word] {
			continue
		}
		seen[word] = true
		choices = append(choices, word)
	}

	return choices
}
