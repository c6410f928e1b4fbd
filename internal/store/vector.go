package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// EmbeddingDimensions matches text-embedding-3-small and the vector
// column type; changing it requires dropping and re-creating the column.
const EmbeddingDimensions = 1536

// HasEmbeddingColumn reports whether the links table carries the
// embedding column. Vector init is optional, so every embedding-aware
// path probes for the column instead of assuming it.
func (s *Store) HasEmbeddingColumn(ctx context.Context) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_name = 'links' AND column_name = 'embedding'
		)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check embedding column: %w", err)
	}
	return exists, nil
}

// InitVector creates the pgvector extension, the embedding column and
// the HNSW cosine index. Safe to call repeatedly.
func (s *Store) InitVector(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	hasCol, err := s.HasEmbeddingColumn(ctx)
	if err != nil {
		return err
	}
	if !hasCol {
		if _, err := s.DB.ExecContext(ctx, fmt.Sprintf(
			`ALTER TABLE links ADD COLUMN embedding vector(%d)`, EmbeddingDimensions,
		)); err != nil {
			return fmt.Errorf("add embedding column: %w", err)
		}
	}

	if _, err := s.DB.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS links_embedding_hnsw_idx
		ON links USING hnsw (embedding vector_cosine_ops)`); err != nil {
		return fmt.Errorf("create hnsw index: %w", err)
	}
	return nil
}

// VectorStatus reports embedding coverage for `db vector status`.
type VectorStatus struct {
	Initialized bool `json:"initialized"`
	Total       int  `json:"total"`
	Embedded    int  `json:"embedded"`
	Pending     int  `json:"pending"`
}

// VectorStatusInfo returns whether vector search is initialized and
// how many links have embeddings.
func (s *Store) VectorStatusInfo(ctx context.Context) (*VectorStatus, error) {
	hasCol, err := s.HasEmbeddingColumn(ctx)
	if err != nil {
		return nil, err
	}
	st := &VectorStatus{Initialized: hasCol}
	if !hasCol {
		return st, nil
	}
	err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(embedding) FROM links`,
	).Scan(&st.Total, &st.Embedded)
	if err != nil {
		return nil, fmt.Errorf("vector status: %w", err)
	}
	st.Pending = st.Total - st.Embedded
	return st, nil
}

// PendingEmbedding is one document awaiting an embedding. SearchText
// is the derived projection the embedding is computed over.
type PendingEmbedding struct {
	ID         uuid.UUID
	URL        string
	SearchText string
}

// ListPendingEmbeddings returns links with a non-empty search_text and
// no embedding yet. limit <= 0 means no limit.
func (s *Store) ListPendingEmbeddings(ctx context.Context, limit int) ([]PendingEmbedding, error) {
	hasCol, err := s.HasEmbeddingColumn(ctx)
	if err != nil {
		return nil, err
	}
	if !hasCol {
		return nil, ErrVectorNotInitialized
	}

	q := `SELECT id, url, search_text
	      FROM links
	      WHERE embedding IS NULL
	      AND search_text IS NOT NULL
	      AND search_text != ''`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = s.DB.QueryContext(ctx, q+` LIMIT $1`, limit)
	} else {
		rows, err = s.DB.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("list pending embeddings: %w", err)
	}
	defer rows.Close()

	var out []PendingEmbedding
	for rows.Next() {
		var p PendingEmbedding
		if err := rows.Scan(&p.ID, &p.URL, &p.SearchText); err != nil {
			return nil, fmt.Errorf("scan pending embedding: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending embeddings: %w", err)
	}
	return out, nil
}

// SetEmbedding stores a vector for one link.
func (s *Store) SetEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error {
	if len(vec) != EmbeddingDimensions {
		return fmt.Errorf("%w: embedding has %d dimensions, want %d",
			ErrInvalid, len(vec), EmbeddingDimensions)
	}
	_, err := s.DB.ExecContext(ctx,
		`UPDATE links SET embedding = $1::vector WHERE id = $2`,
		VectorLiteral(vec), id)
	if err != nil {
		return fmt.Errorf("set embedding: %w", err)
	}
	return nil
}

// VectorLiteral renders a vector in pgvector's text format: "[x,y,z]".
func VectorLiteral(vec []float32) string {
	var b strings.Builder
	b.Grow(len(vec)*10 + 2)
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
