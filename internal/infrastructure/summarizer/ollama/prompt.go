package ollama

import (
	"fmt"
	"strings"
)

func buildSummaryPrompt(text string, minTokens int) string {
	var b strings.Builder
	b.WriteString("Summarize the following document in plain prose.\n")
	fmt.Fprintf(&b, "Write at least %d words and no headings or bullet points.\n", minTokens)
	b.WriteString("Document:\n")
	b.WriteString(text)
	b.WriteString("\n\nSummary:")
	return b.String()
}
