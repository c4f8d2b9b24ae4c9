package database

import (
	"fmt"
	"time"
)

// CorpusRecord is one row of the corpora table.
type CorpusRecord struct {
	ID        string
	Document  string
	Checksum  string
	Format    string
	Embedder  string
	Dim       int
	Chunks    int
	CreatedAt time.Time
}

func (r *CorpusRecord) Print() string {
	return fmt.Sprintf("Corpus_id: %s - Document: %s (%s) - Embedder: %s - Chunks: %d", r.ID, r.Document, r.Format, r.Embedder, r.Chunks)
}
