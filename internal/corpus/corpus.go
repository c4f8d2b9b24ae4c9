package corpus

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/embedding"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/index"
)

// Source identifies the document a corpus was built from. Format names the
// splitter that produced the chunks, so equal bytes read as different formats
// are different corpora.
type Source struct {
	Document string
	Checksum string
	Format   string
}

// Corpus pairs the chunks of one document with their vector index.
// Position i in Chunks corresponds to position i in the index.
type Corpus struct {
	source   Source
	embedder string
	chunks   []string
	index    *index.Flat
}

// Snapshot is the plain-data form of a corpus used for persistence.
type Snapshot struct {
	Document string      `json:"document"`
	Checksum string      `json:"checksum"`
	Format   string      `json:"format"`
	Embedder string      `json:"embedder"`
	Chunks   []string    `json:"chunks"`
	Vectors  [][]float32 `json:"vectors"`
}

// Build embeds every chunk in order and indexes the vectors.
func Build(ctx context.Context, source Source, chunks []string, embedder embedding.Embedder) (*Corpus, error) {
	if len(chunks) == 0 {
		return nil, index.ErrEmptyCorpus
	}

	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vector, err := embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		// Fail fast instead of embedding the rest of the document.
		if i > 0 && len(vector) != len(vectors[0]) {
			return nil, fmt.Errorf("%w: position %d has %d values, expected %d", index.ErrDimensionMismatch, i, len(vector), len(vectors[0]))
		}
		vectors[i] = vector
	}

	flat, err := index.NewFlat(vectors)
	if err != nil {
		return nil, err
	}

	return &Corpus{
		source:   source,
		embedder: embedder.Name(),
		chunks:   append([]string(nil), chunks...),
		index:    flat,
	}, nil
}

// Restore rebuilds a corpus from a snapshot, validating it like Build does.
func Restore(snapshot Snapshot) (*Corpus, error) {
	if len(snapshot.Chunks) != len(snapshot.Vectors) {
		return nil, fmt.Errorf("snapshot has %d chunks but %d vectors", len(snapshot.Chunks), len(snapshot.Vectors))
	}

	flat, err := index.NewFlat(snapshot.Vectors)
	if err != nil {
		return nil, err
	}

	return &Corpus{
		source:   Source{Document: snapshot.Document, Checksum: snapshot.Checksum, Format: snapshot.Format},
		embedder: snapshot.Embedder,
		chunks:   append([]string(nil), snapshot.Chunks...),
		index:    flat,
	}, nil
}

func (c *Corpus) Snapshot() Snapshot {
	vectors := make([][]float32, c.index.Len())
	for i := range vectors {
		vectors[i] = c.index.Vector(i)
	}

	return Snapshot{
		Document: c.source.Document,
		Checksum: c.source.Checksum,
		Format:   c.source.Format,
		Embedder: c.embedder,
		Chunks:   c.Chunks(),
		Vectors:  vectors,
	}
}

func (c *Corpus) Source() Source {
	return c.source
}

// Embedder is the name of the embedder that produced the index.
func (c *Corpus) Embedder() string {
	return c.embedder
}

func (c *Corpus) Len() int {
	return len(c.chunks)
}

func (c *Corpus) Chunk(position int) string {
	return c.chunks[position]
}

func (c *Corpus) Chunks() []string {
	return append([]string(nil), c.chunks...)
}

func (c *Corpus) Search(query []float32, k int) ([]index.Neighbor, error) {
	return c.index.Search(query, k)
}
