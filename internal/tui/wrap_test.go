package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/wpmhero/internal/session"
)

func slotsFor(input string) []session.Slot {
	slots := []session.Slot{}
	for _, r := range input {
		slots = append(slots, session.Slot{Typed: r, Attempted: true})
	}
	return slots
}

func TestBuildStyledRunesCursor(t *testing.T) {
	target := []rune("ab")
	input := slotsFor("a")
	cursorIndex := len(input)

	runes := buildStyledRunes(target, input, cursorIndex)
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != cursorStyle.Render("b") {
		t.Fatalf("expected cursor style for second rune")
	}
}

func TestBuildStyledRunesNoCursorWhenComplete(t *testing.T) {
	target := []rune("a")
	input := slotsFor("a")
	cursorIndex := -1

	runes := buildStyledRunes(target, input, cursorIndex)
	if len(runes) != 1 {
		t.Fatalf("expected 1 rune, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for completed rune")
	}
}

func TestBuildStyledRunesKeepsTargetOnMistype(t *testing.T) {
	target := []rune("ab")
	input := slotsFor("ax")
	cursorIndex := len(input)

	runes := buildStyledRunes(target, input, cursorIndex)
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style for second rune")
	}
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	target := []rune("one two")
	input := slotsFor("o")
	cursorIndex := len(input)

	runes := buildStyledRunes(target, input, cursorIndex)
	if runes[0].s != correctStyle.Render("o") {
		t.Fatalf("expected correct style for typed rune")
	}
	if runes[1].s != currentWordStyle.Render("n") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
	if runes[6].s != pendingStyle.Render("o") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesWrongSpaceDot(t *testing.T) {
	target := []rune("a b")
	input := slotsFor("ax")
	cursorIndex := len(input)

	runes := buildStyledRunes(target, input, cursorIndex)
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[1].s != incorrectStyle.Render("\u2022") {
		t.Fatalf("expected red dot for wrong space")
	}
}

func TestBuildStyledRunesAfterBackspace(t *testing.T) {
	target := []rune("ab")
	slots := []session.Slot{{Typed: 'a', Attempted: true}, {}}

	runes := buildStyledRunes(target, slots, 1)
	if runes[1].s != cursorStyle.Render("b") {
		t.Fatalf("expected cleared slot to render as pending with cursor")
	}
}

func TestWrapStyledRunesBreaksAtSpaces(t *testing.T) {
	target := []rune("aaa bbb ccc")
	runes := buildStyledRunes(target, nil, -1)
	out := wrapStyledRunes(runes, 7)
	if got := strings.Count(out, "\n"); got != 1 {
		t.Fatalf("expected one line break, got %d in %q", got, out)
	}
}

func TestWrapStyledRunesSplitsLongWords(t *testing.T) {
	runes := buildStyledRunes([]rune("abcdefgh"), nil, -1)
	out := wrapStyledRunes(runes, 3)
	if got := strings.Count(out, "\n"); got != 2 {
		t.Fatalf("expected two line breaks, got %d in %q", got, out)
	}
}

func TestCurrentWordBounds(t *testing.T) {
	target := []rune("ab cd")
	cases := []struct {
		cursor     int
		start, end int
	}{
		{-1, 0, 2},
		{1, 0, 2},
		{2, 3, 5},
		{4, 3, 5},
		{9, 3, 5},
	}
	for _, tc := range cases {
		start, end := currentWordBounds(target, tc.cursor)
		if start != tc.start || end != tc.end {
			t.Fatalf("cursor %d: got [%d,%d), want [%d,%d)", tc.cursor, start, end, tc.start, tc.end)
		}
	}
}
