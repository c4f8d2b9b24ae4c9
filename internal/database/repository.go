package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/rs/zerolog/log"
)

var ErrCorpusNotFound = errors.New("corpus not cached")

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS corpora (
	id         UUID PRIMARY KEY,
	document   TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	format     TEXT NOT NULL,
	embedder   TEXT NOT NULL,
	dim        INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (checksum, format, embedder)
);

CREATE TABLE IF NOT EXISTS corpus_chunks (
	corpus_id UUID NOT NULL REFERENCES corpora(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	content   TEXT NOT NULL,
	embedding vector NOT NULL,
	PRIMARY KEY (corpus_id, position)
);`

func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveCorpus stores a snapshot, replacing any cached corpus for the same
// document checksum, format and embedder.
func (db *DB) SaveCorpus(ctx context.Context, c *corpus.Corpus) (string, error) {
	snapshot := c.Snapshot()
	if len(snapshot.Vectors) == 0 {
		return "", fmt.Errorf("refusing to cache empty corpus for %s", snapshot.Document)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM corpora WHERE checksum = $1 AND format = $2 AND embedder = $3`,
		snapshot.Checksum, snapshot.Format, snapshot.Embedder,
	)
	if err != nil {
		return "", fmt.Errorf("failed to clear previous corpus: %w", err)
	}

	id := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO corpora (id, document, checksum, format, embedder, dim, created_at) VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		id, snapshot.Document, snapshot.Checksum, snapshot.Format, snapshot.Embedder, len(snapshot.Vectors[0]),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert corpus: %w", err)
	}

	batch := &pgx.Batch{}
	for i, chunk := range snapshot.Chunks {
		batch.Queue(
			`INSERT INTO corpus_chunks (corpus_id, position, content, embedding) VALUES ($1, $2, $3, $4)`,
			id, i, chunk, pgvector.NewVector(snapshot.Vectors[i]),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return "", fmt.Errorf("failed to insert chunks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Str("corpus_id", id).
		Str("document", snapshot.Document).
		Int("chunks", len(snapshot.Chunks)).
		Msg("Corpus cached")

	return id, nil
}

// LoadCorpus restores the cached corpus for checksum, format and embedder, or
// returns ErrCorpusNotFound.
func (db *DB) LoadCorpus(ctx context.Context, checksum, format, embedder string) (*corpus.Corpus, error) {
	var record CorpusRecord
	err := db.Pool.QueryRow(ctx,
		`SELECT id, document, checksum, format, embedder, dim, created_at FROM corpora
		WHERE checksum = $1 AND format = $2 AND embedder = $3`,
		checksum, format, embedder,
	).Scan(&record.ID, &record.Document, &record.Checksum, &record.Format, &record.Embedder, &record.Dim, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCorpusNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT content, embedding FROM corpus_chunks WHERE corpus_id = $1 ORDER BY position ASC`,
		record.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	snapshot := corpus.Snapshot{
		Document: record.Document,
		Checksum: record.Checksum,
		Format:   record.Format,
		Embedder: record.Embedder,
	}
	for rows.Next() {
		var (
			content string
			vector  pgvector.Vector
		)
		if err := rows.Scan(&content, &vector); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}

		snapshot.Chunks = append(snapshot.Chunks, content)
		snapshot.Vectors = append(snapshot.Vectors, vector.Slice())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return corpus.Restore(snapshot)
}

func (db *DB) ListCorpora(ctx context.Context) ([]CorpusRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT c.id, c.document, c.checksum, c.format, c.embedder, c.dim, c.created_at, COUNT(k.position)
		FROM corpora c
		LEFT JOIN corpus_chunks k ON k.corpus_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list corpora: %w", err)
	}
	defer rows.Close()

	var records []CorpusRecord
	for rows.Next() {
		var r CorpusRecord
		if err := rows.Scan(&r.ID, &r.Document, &r.Checksum, &r.Format, &r.Embedder, &r.Dim, &r.CreatedAt, &r.Chunks); err != nil {
			return nil, fmt.Errorf("failed to scan corpus: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

func (db *DB) DeleteCorpus(ctx context.Context, id string) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM corpora WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete corpus %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		log.Warn().Str("corpus_id", id).Msg("Corpus not found")
	} else {
		log.Info().Str("corpus_id", id).Msg("Corpus deleted")
	}

	return nil
}
