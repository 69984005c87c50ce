// Package chunker splits long text into ordered, non-overlapping chunks that
// break only at spaces.
package chunker

import "iter"

// DefaultChunkSize is the character budget used when none is configured.
const DefaultChunkSize = 4000

// Span is one chunk plus its rune offsets in the source text.
type Span struct {
	Text  string
	Start int // Rune offset of the first character.
	End   int // Rune offset one past the last character.
}

// Spans walks text left to right. Each window holds up to size runes; the
// chunk ends just before the window's last space and the cursor skips that
// space. A window without a space becomes a chunk of its own and the cursor
// moves by exactly size.
//
// The final window is cut at its last space even when the remainder would
// fit whole, so "hello world" with a large size yields "hello" and "world".
// Cuts that would be empty (a space at the start of a window) are dropped.
func Spans(text string, size int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if size <= 0 || text == "" {
			return
		}
		runes := []rune(text)
		cursor := 0
		for cursor < len(runes) {
			end := min(cursor+size, len(runes))
			window := runes[cursor:end]

			start := cursor
			cut := lastSpace(window)
			if cut < 0 {
				cut = len(window)
				cursor += size
			} else {
				cursor += cut + 1
			}
			if cut == 0 {
				continue
			}
			if !yield(Span{Text: string(window[:cut]), Start: start, End: start + cut}) {
				return
			}
		}
	}
}

// Chunks is Spans without offsets. The sequence is lazy and can be ranged
// over any number of times.
func Chunks(text string, size int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for span := range Spans(text, size) {
			if !yield(span.Text) {
				return
			}
		}
	}
}

// Split collects Chunks into a slice.
func Split(text string, size int) []string {
	var out []string
	for c := range Chunks(text, size) {
		out = append(out, c)
	}
	return out
}

func lastSpace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == ' ' {
			return i
		}
	}
	return -1
}
