package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown groups a markdown document into one chunk per heading section.
// Text before the first heading becomes its own chunk. Documents without
// headings are split by paragraph.
func Markdown(content string) []string {
	src := []byte(strings.ReplaceAll(content, "\r\n", "\n"))
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var (
		sections   []string
		current    []string
		sawHeading bool
	)

	flush := func() {
		section := strings.TrimSpace(strings.Join(current, "\n\n"))
		if section != "" {
			sections = append(sections, section)
		}
		current = current[:0]
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok {
			flush()
			sawHeading = true
			current = append(current, strings.Repeat("#", heading.Level)+" "+blockText(heading, src))
			continue
		}

		if body := blockText(node, src); body != "" {
			current = append(current, body)
		}
	}
	flush()

	if !sawHeading {
		return Split(content)
	}

	return sections
}

// blockText returns the raw source lines of every leaf block under n.
func blockText(n ast.Node, src []byte) string {
	var parts []string

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}

		lines := node.Lines()
		if lines == nil || lines.Len() == 0 {
			return ast.WalkContinue, nil
		}

		var b strings.Builder
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			b.Write(segment.Value(src))
		}

		if part := strings.TrimSpace(b.String()); part != "" {
			parts = append(parts, part)
		}
		return ast.WalkSkipChildren, nil
	})

	return strings.Join(parts, "\n")
}
