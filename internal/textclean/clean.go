// Package textclean repairs common PDF-extraction artifacts before chunking.
package textclean

import (
	"regexp"
	"strings"
)

var (
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe  = regexp.MustCompile(`[\s\v\p{Z}\x{85}\x{1c}-\x{1f}]+`)
	camelRe       = regexp.MustCompile(`([a-z])([A-Z])`)
	digitLetterRe = regexp.MustCompile(`(\d+)([A-Za-z])`)
	spaceBeforeRe = regexp.MustCompile(`\s+([,.!?;:])`)
	doublePunctRe = regexp.MustCompile(`([,.!?;:])\s*([,.!?;:])`)
)

// Structurer is a second, domain-specific pass run over already cleaned text.
type Structurer interface {
	Structure(text string) string
}

// NopStructurer leaves text unchanged.
type NopStructurer struct{}

func (NopStructurer) Structure(text string) string { return text }

// Cleaner normalizes raw extracted text. It is safe for concurrent use.
type Cleaner struct {
	structurer Structurer
}

// New returns a Cleaner that runs s after the generic repairs.
// A nil structurer disables the second pass.
func New(s Structurer) *Cleaner {
	if s == nil {
		s = NopStructurer{}
	}
	return &Cleaner{structurer: s}
}

// Default returns a Cleaner with the academic structuring pass enabled.
func Default() *Cleaner {
	return New(AcademicStructurer{})
}

// Clean strips markup, collapses whitespace, restores lost word boundaries,
// tidies punctuation and runs the structuring pass.
func (c *Cleaner) Clean(raw string) string {
	text := tagRe.ReplaceAllString(raw, "")
	text = whitespaceRe.ReplaceAllString(text, " ")

	text = camelRe.ReplaceAllString(text, "${1} ${2}")
	text = digitLetterRe.ReplaceAllString(text, "${1} ${2}")

	text = spaceBeforeRe.ReplaceAllString(text, "${1}")
	text = doublePunctRe.ReplaceAllString(text, "${1} ${2}")

	text = c.structurer.Structure(text)
	return strings.TrimSpace(text)
}
