package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/wpmhero/internal/session"
)

const wrongSpaceGlyph = '•'

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes styles every target rune from the session's input record.
// A mistyped space is shown as a dot so the error stays visible. The word
// under the cursor (the first word when cursorIndex < 0) is highlighted.
func buildStyledRunes(targetRunes []rune, slots []session.Slot, cursorIndex int) []styledRune {
	wordStart, wordEnd := currentWordBounds(targetRunes, cursorIndex)

	out := make([]styledRune, len(targetRunes))
	for i, target := range targetRunes {
		var slot session.Slot
		if i < len(slots) {
			slot = slots[i]
		}
		glyph, style := target, pendingStyle
		switch {
		case !slot.Attempted:
			if target != ' ' && i >= wordStart && i < wordEnd {
				style = currentWordStyle
			}
			if i == cursorIndex {
				style = style.Underline(true)
			}
		case slot.Typed == target:
			style = correctStyle
		case target == ' ':
			glyph, style = wrongSpaceGlyph, incorrectStyle
		default:
			style = incorrectStyle
		}
		out[i] = styledRune{
			s:       style.Render(string(glyph)),
			width:   runewidth.RuneWidth(glyph),
			isSpace: target == ' ',
		}
	}
	return out
}

// currentWordBounds returns the [start, end) range of the word containing
// cursor. A cursor resting on a space belongs to the following word.
func currentWordBounds(target []rune, cursor int) (int, int) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(target) {
		cursor = len(target) - 1
	}
	for cursor < len(target)-1 && target[cursor] == ' ' {
		cursor++
	}
	if cursor < 0 || target[cursor] == ' ' {
		return 0, 0
	}
	start, end := cursor, cursor
	for start > 0 && target[start-1] != ' ' {
		start--
	}
	for end < len(target) && target[end] != ' ' {
		end++
	}
	return start, end
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes packs whole words into lines of at most width cells. The
// space at a line break is dropped; words wider than a line are split.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	lineWidth := 0
	newline := func() {
		out.WriteByte('\n')
		lineWidth = 0
	}
	for _, word := range splitWords(runes) {
		text, space := word, []styledRune(nil)
		if n := len(word); n > 0 && word[n-1].isSpace {
			text, space = word[:n-1], word[n-1:]
		}
		textWidth := cellWidth(text)
		if lineWidth > 0 && lineWidth+textWidth > width {
			newline()
		}
		for _, item := range text {
			if lineWidth > 0 && lineWidth+item.width > width {
				newline()
			}
			out.WriteString(item.s)
			lineWidth += item.width
		}
		if len(space) == 0 {
			continue
		}
		if lineWidth+space[0].width > width {
			newline()
			continue
		}
		out.WriteString(space[0].s)
		lineWidth += space[0].width
	}
	return out.String()
}

// splitWords cuts runes after every space so each chunk is a word plus its
// trailing separator.
func splitWords(runes []styledRune) [][]styledRune {
	var words [][]styledRune
	start := 0
	for i, item := range runes {
		if item.isSpace {
			words = append(words, runes[start:i+1])
			start = i + 1
		}
	}
	if start < len(runes) {
		words = append(words, runes[start:])
	}
	return words
}

func cellWidth(runes []styledRune) int {
	total := 0
	for _, item := range runes {
		total += item.width
	}
	return total
}
