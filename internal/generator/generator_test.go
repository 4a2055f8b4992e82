package generator

import (
	"slices"
	"strings"
	"testing"
	"unicode"
)

func TestGenerateFallback(t *testing.T) {
	g := NewSeeded(1)
	words := g.Generate(nil, Options{Count: 20})
	if len(words) != 20 {
		t.Fatalf("expected 20 words, got %d", len(words))
	}
	for _, w := range words {
		if !slices.Contains(Fallback, w) {
			t.Fatalf("unexpected word %q", w)
		}
	}
}

func TestGenerateCapsAndPunct(t *testing.T) {
	g := NewSeeded(2)
	words := g.Generate([]string{"alpha", "beta"}, Options{Count: 10, CapsPct: 1, PunctPct: 1, PunctSet: []rune{'.'}})
	for _, w := range words {
		if !unicode.IsUpper([]rune(w)[0]) {
			t.Fatalf("expected capitalized word, got %q", w)
		}
		if !strings.HasSuffix(w, ".") {
			t.Fatalf("expected punctuation, got %q", w)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	pool := []string{"one", "two", "three", "four"}
	a := NewSeeded(42).Generate(pool, Options{Count: 15})
	b := NewSeeded(42).Generate(pool, Options{Count: 15})
	if !slices.Equal(a, b) {
		t.Fatalf("expected equal sequences, got %v and %v", a, b)
	}
}

func TestGenerateWeightedBias(t *testing.T) {
	g := NewSeeded(3)
	pool := []string{"zzz", "aaa"}
	words := g.GenerateWeighted(pool, Options{Count: 2000}, map[rune]struct{}{'z': {}}, 10)
	z := 0
	for _, w := range words {
		if w == "zzz" {
			z++
		}
	}
	// zzz weighs 31 against 1, so it should dominate.
	if z < 1800 {
		t.Fatalf("expected weak word bias, got %d of %d", z, len(words))
	}
}

func TestGenerateWeightedWithoutWeakSet(t *testing.T) {
	pool := []string{"one", "two"}
	a := NewSeeded(5).GenerateWeighted(pool, Options{Count: 8}, nil, 2)
	b := NewSeeded(5).Generate(pool, Options{Count: 8})
	if !slices.Equal(a, b) {
		t.Fatalf("expected uniform generation without weak chars")
	}
}
