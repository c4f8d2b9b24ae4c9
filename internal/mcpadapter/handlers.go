package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
	"github.com/rs/zerolog"
)

const (
	AskToolName  = "ask_document"
	InfoToolName = "document_info"
)

// Asker is the subset of the QA service the tools need.
type Asker interface {
	AskK(ctx context.Context, c *corpus.Corpus, question string, k int) (*qa.Answer, error)
}

// AskInput is the MCP tool input schema (matches HTTP API semantics).
type AskInput struct {
	Question string `json:"question" jsonschema:"question about the loaded document"`
	K        int    `json:"k,omitempty" jsonschema:"number of chunks to retrieve (default: server setting)"`
}

type Source struct {
	Position int     `json:"position"`
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

type AskOutput struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type InfoInput struct{}

type InfoOutput struct {
	Document string `json:"document"`
	Checksum string `json:"checksum"`
	Embedder string `json:"embedder"`
	Chunks   int    `json:"chunks"`
}

// NewAskHandler returns a tool handler that answers questions against c.
// Pass the returned function to mcp.AddTool.
func NewAskHandler(asker Asker, c *corpus.Corpus, logger *zerolog.Logger) func(context.Context, *mcp.CallToolRequest, AskInput) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
		return AskDocument(ctx, asker, c, logger, input)
	}
}

// AskDocument runs the question answering pipeline and returns the answer with its sources.
func AskDocument(
	ctx context.Context,
	asker Asker,
	c *corpus.Corpus,
	logger *zerolog.Logger,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := asker.AskK(ctx, c, input.Question, input.K)
	if err != nil {
		logger.Error().Err(err).Str("question", input.Question).Msg("ask_document failed")
		return nil, AskOutput{}, err
	}

	sources := make([]Source, len(answer.Sources))
	for i, m := range answer.Sources {
		sources[i] = Source{Position: m.Position, Distance: m.Distance, Text: m.Text}
	}

	return nil, AskOutput{Answer: answer.Text, Sources: sources}, nil
}

// NewInfoHandler returns a tool handler describing the loaded corpus.
func NewInfoHandler(c *corpus.Corpus) func(context.Context, *mcp.CallToolRequest, InfoInput) (*mcp.CallToolResult, InfoOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input InfoInput) (*mcp.CallToolResult, InfoOutput, error) {
		source := c.Source()
		return nil, InfoOutput{
			Document: source.Document,
			Checksum: source.Checksum,
			Embedder: c.Embedder(),
			Chunks:   c.Len(),
		}, nil
	}
}

// NewServer registers the document tools on a new MCP server.
func NewServer(asker Asker, c *corpus.Corpus, version string, logger *zerolog.Logger) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "doc-qa",
			Version: version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        AskToolName,
		Description: "Answer a question about the loaded document using the most relevant paragraphs as context",
	}, NewAskHandler(asker, c, logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        InfoToolName,
		Description: "Describe the loaded document: name, checksum, embedder and chunk count",
	}, NewInfoHandler(c))

	return server
}
