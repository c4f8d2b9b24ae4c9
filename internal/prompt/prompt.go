package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

const (
	StoryTemplateName    = "story"
	DocumentTemplateName = "document"

	// DefaultMaxContextChars bounds the retrieved context sent to the model, in runes.
	DefaultMaxContextChars = 12000
)

const storyTemplate = `You are an AI assistant.

Here is an excerpt from a story:

{{.Context}}

Now answer this question about the story:
{{.Question}}
`

const documentTemplate = `You are a helpful assistant. Here is a document:

{{.Context}}

Now answer this question: {{.Question}}
`

// Builtin returns the bundled templates keyed by name.
func Builtin() map[string]string {
	return map[string]string{
		StoryTemplateName:    storyTemplate,
		DocumentTemplateName: documentTemplate,
	}
}

type templateData struct {
	Context  string
	Question string
}

// Builder renders the instruction prompt for one template.
type Builder struct {
	name string
	tmpl *template.Template
}

func NewBuilder(name string, text string) (*Builder, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template %s: %w", name, err)
	}

	return &Builder{
		name: name,
		tmpl: tmpl,
	}, nil
}

func (b *Builder) Name() string {
	return b.name
}

// Assemble joins chunks with newlines in the given order and fills the template.
// Question and context are inserted verbatim.
func (b *Builder) Assemble(chunks []string, question string) (string, error) {
	var buf bytes.Buffer
	data := templateData{
		Context:  strings.Join(chunks, "\n"),
		Question: question,
	}
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}

// Fit keeps whole chunks, in order, while the joined context stays within budget runes.
// If the first chunk alone is too long it is cut at the budget. budget <= 0 disables the limit.
// The second result reports whether anything was dropped or cut.
func Fit(chunks []string, budget int) ([]string, bool) {
	if budget <= 0 {
		return chunks, false
	}

	var (
		kept []string
		used int
	)
	for i, chunk := range chunks {
		size := utf8.RuneCountInString(chunk)
		if i > 0 {
			size++ // newline separator
		}

		if used+size <= budget {
			kept = append(kept, chunk)
			used += size
			continue
		}

		if i == 0 {
			kept = append(kept, truncateRunes(chunk, budget))
		}
		return kept, true
	}

	return kept, false
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
