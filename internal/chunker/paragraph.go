package chunker

import (
	"regexp"
	"strings"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/document"
)

// blank line boundary: two or more LF or CRLF line breaks, blank lines may hold spaces or tabs
var paragraphBoundary = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)

// Split breaks text into trimmed, non-empty paragraphs in document order.
// Line endings inside a paragraph are kept as written.
func Split(text string) []string {
	var chunks []string
	for _, part := range paragraphBoundary.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		chunks = append(chunks, part)
	}

	return chunks
}

// ForFormat returns the splitter suited to a document format.
func ForFormat(format document.Format) func(string) []string {
	if format == document.FormatMarkdown {
		return Markdown
	}
	return Split
}
