package textclean

import (
	"regexp"
	"strings"
)

// AcademicStructurer adds markdown-like section breaks around syllabus
// patterns (course codes, scheme headers, hour and credit markers, book
// references, numbered tutorial lines) and then moves every sentence that
// mentions an academic keyword ahead of the rest.
//
// The reordering is lossy: sentence order changes and cannot be undone.
// It suits course syllabi and little else.
type AcademicStructurer struct{}

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

var academicRewrites = []rewrite{
	{regexp.MustCompile(`(?i)(\d+[A-Z]{2}\d+)\s+([A-Z\s]+)`), "\n\n**${1} ${2}**\n"},
	{regexp.MustCompile(`(?i)(Teaching Scheme|Examination Scheme|Prerequisites|Course Objectives)`), "\n\n### ${1}\n"},
	{regexp.MustCompile(`(?i)(Lectures|Tutorial|Credit|In Semester|End Semester)`), "\n- **${1}:**"},
	{regexp.MustCompile(`(?i)(\d+)\s+(Hrs/Week|Marks)`), " ${1} ${2}"},
	{regexp.MustCompile(`([A-Z]\.[A-Z]\.\s+[A-Z][a-z]+,\s+[^,]+,\s*"[^"]+",\s*\d+)`), "\n\n**Reference:** ${1}\n"},
	{regexp.MustCompile(`(\d+\.\s+[A-Z][^.]*\.)`), "\n- ${1}"},
}

var academicKeywords = []string{
	"course", "teaching", "examination", "prerequisites", "objectives",
	"lectures", "tutorial", "credit", "marks", "scheme", "theory",
	"computation", "mathematical", "formal", "language", "machine",
}

var blankRunRe = regexp.MustCompile(`\n\s*\n\s*\n`)

// AdditionalContentSeparator sits between academic and other sentences.
const AdditionalContentSeparator = "\n\n---\n\n**Additional Content:**\n"

func (AcademicStructurer) Structure(text string) string {
	for _, rw := range academicRewrites {
		text = rw.re.ReplaceAllString(text, rw.repl)
	}

	var academic, other []string
	for _, sentence := range strings.Split(text, ". ") {
		if IsAcademic(sentence) {
			academic = append(academic, sentence)
		} else {
			other = append(other, sentence)
		}
	}
	if len(academic) > 0 && len(other) > 0 {
		text = strings.Join(academic, ". ") + AdditionalContentSeparator + strings.Join(other, ". ")
	}

	return blankRunRe.ReplaceAllString(text, "\n\n")
}

// IsAcademic reports whether sentence contains any academic keyword.
func IsAcademic(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, kw := range academicKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
