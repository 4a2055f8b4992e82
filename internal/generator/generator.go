// Package generator builds typing text sequences.
package generator

import (
	"math/rand"
	"time"
	"unicode"
)

// Fallback is used when no word list is installed for a language.
var Fallback = []string{
	"horizon", "velocity", "syntax", "momentum",
	"canvas", "quantum", "glyph", "cascade",
	"echo", "neuron", "catalyst", "lattice",
	"orbit", "phoenix", "vector", "zenith",
}

// Options shapes generated text.
type Options struct {
	Count    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate selects words uniformly and applies caps/punctuation rules.
// An empty pool falls back to the built-in words.
func (g *Generator) Generate(words []string, opts Options) []string {
	if len(words) == 0 {
		words = Fallback
	}
	result := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		result = append(result, g.decorate(words[g.rnd.Intn(len(words))], opts))
	}
	return result
}

// GenerateWeighted selects words with a bias toward weak characters. Each
// word weighs 1 + factor*(number of weak runes it contains).
func (g *Generator) GenerateWeighted(words []string, opts Options, weakSet map[rune]struct{}, factor float64) []string {
	if len(weakSet) == 0 || factor <= 0 {
		return g.Generate(words, opts)
	}
	if len(words) == 0 {
		words = Fallback
	}
	cumulative := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		weak := 0
		for _, r := range word {
			if _, ok := weakSet[r]; ok {
				weak++
			}
		}
		total += 1.0 + float64(weak)*factor
		cumulative[i] = total
	}

	result := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		r := g.rnd.Float64() * total
		idx := len(words) - 1
		for j, c := range cumulative {
			if r <= c {
				idx = j
				break
			}
		}
		result = append(result, g.decorate(words[idx], opts))
	}
	return result
}

func (g *Generator) decorate(word string, opts Options) string {
	word = applyCaps(g.rnd, word, opts.CapsPct)
	return applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}
