package llm

import (
	"fmt"
	"strings"
)

const SystemPrompt = `You summarize sections of longer documents. Write plain prose that keeps the
section's key facts, names and figures. Do not add information that is not in the text,
do not mention that you are summarizing, and do not use headings or lists.`

// BuildPrompt wraps a chunk with its length bounds. Lengths are in tokens.
func BuildPrompt(text string, maxLength, minLength int) string {
	var sb strings.Builder
	if minLength > 0 {
		fmt.Fprintf(&sb, "Summarize the following text in %d to %d tokens.\n", minLength, maxLength)
	} else {
		fmt.Fprintf(&sb, "Summarize the following text in at most %d tokens.\n", maxLength)
	}
	sb.WriteString("\n---\n")
	sb.WriteString(text)
	return sb.String()
}
