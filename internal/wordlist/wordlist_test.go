package wordlist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilterEnglishASCII(t *testing.T) {
	filter := FilterForLang("en")
	if !filter("hello") {
		t.Fatalf("expected hello to pass english filter")
	}
	for _, word := range []string{"résumé", "naïve", "don’t", "co-op"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestFilterOtherLangKeepsLetters(t *testing.T) {
	filter := FilterForLang("de")
	for _, word := range []string{"straße", "Über"} {
		if !filter(word) {
			t.Fatalf("expected %q to pass", word)
		}
	}
	for _, word := range []string{"", "a1", "zwei wörter", "ja!"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestLoadWordsFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.txt")
	if err := os.WriteFile(path, []byte("hello\n\n  world  \nnaïve\nCaps\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	words, err := LoadWords(path, "en")
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	if len(words) != 2 || words[0] != "hello" || words[1] != "world" {
		t.Fatalf("unexpected words: %v", words)
	}
	words, err = LoadWords(path, "fr")
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	if len(words) != 4 {
		t.Fatalf("expected unfiltered list, got %v", words)
	}
}

func TestLoadWordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.txt")
	if err := os.WriteFile(path, []byte("Ünïcode\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	if _, err := LoadWords(path, "en"); err == nil {
		t.Fatalf("expected empty list error")
	}
	if _, err := LoadWords(filepath.Join(t.TempDir(), "missing.txt"), "en"); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestSaveReplacesList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists", "de.txt")
	if err := Save(path, []string{"alt"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Save(path, []string{"straße", "über"}); err != nil {
		t.Fatalf("save again: %v", err)
	}
	words, err := LoadWords(path, "de")
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	if len(words) != 2 || words[0] != "straße" || words[1] != "über" {
		t.Fatalf("unexpected words: %v", words)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}
