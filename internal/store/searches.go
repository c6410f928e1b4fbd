package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"linkdex/internal/model"
)

// Search filters shared by every ranked query: hidden links and error
// pages (4xx/5xx) never appear in results.
const visibleFilter = `(http_status IS NULL OR http_status < 400) AND hidden = FALSE`

// TextSearch runs a BM25 lexical search over search_text. The index
// scores negative where more negative is better; only rows with score
// strictly below zero match. Scores are returned as absolute values so
// callers see larger-is-better.
func (s *Store) TextSearch(ctx context.Context, query string, limit, offset int) ([]model.TextResult, int, error) {
	var total int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM links
		WHERE search_text <@> to_bm25query($1, 'links_search_bm25_idx') < 0
		AND `+visibleFilter,
		query).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count text search: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT url, title, description, added_at,
		       search_text <@> to_bm25query($1, 'links_search_bm25_idx') AS score
		FROM links
		WHERE search_text <@> to_bm25query($1, 'links_search_bm25_idx') < 0
		AND `+visibleFilter+`
		ORDER BY score
		LIMIT $2 OFFSET $3`,
		query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("text search: %w", err)
	}
	defer rows.Close()

	var out []model.TextResult
	for rows.Next() {
		var r model.TextResult
		var title, description sql.NullString
		if err := rows.Scan(&r.URL, &title, &description, &r.AddedAt, &r.Score); err != nil {
			return nil, 0, fmt.Errorf("scan text result: %w", err)
		}
		r.Title = nullableString(title)
		r.Description = nullableString(description)
		if r.Score < 0 {
			r.Score = -r.Score
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("text search: %w", err)
	}
	return out, total, nil
}

// VectorSearch ranks by cosine distance against a pre-computed query
// vector, keeping only rows within maxDistance.
func (s *Store) VectorSearch(ctx context.Context, queryVec []float32, limit, offset int, maxDistance float64) ([]model.VectorResult, int, error) {
	hasCol, err := s.HasEmbeddingColumn(ctx)
	if err != nil {
		return nil, 0, err
	}
	if !hasCol {
		return nil, 0, ErrVectorNotInitialized
	}

	lit := VectorLiteral(queryVec)

	var total int
	err = s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM links
		WHERE embedding IS NOT NULL
		AND embedding <=> $1::vector <= $2
		AND `+visibleFilter,
		lit, maxDistance).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count vector search: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT url, title, description, added_at,
		       embedding <=> $1::vector AS distance
		FROM links
		WHERE embedding IS NOT NULL
		AND embedding <=> $1::vector <= $2
		AND `+visibleFilter+`
		ORDER BY distance
		LIMIT $3 OFFSET $4`,
		lit, maxDistance, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var out []model.VectorResult
	for rows.Next() {
		var r model.VectorResult
		var title, description sql.NullString
		if err := rows.Scan(&r.URL, &title, &description, &r.AddedAt, &r.Distance); err != nil {
			return nil, 0, fmt.Errorf("scan vector result: %w", err)
		}
		r.Title = nullableString(title)
		r.Description = nullableString(description)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("vector search: %w", err)
	}
	return out, total, nil
}

// Candidate is one row of a ranked candidate list feeding rank fusion.
// Rank is 1-based within its list.
type Candidate struct {
	ID          uuid.UUID
	URL         string
	Title       *string
	Description *string
	AddedAt     time.Time
	Rank        int
}

// KeywordCandidates returns the top n BM25 matches in rank order.
func (s *Store) KeywordCandidates(ctx context.Context, query string, n int) ([]Candidate, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, url, title, description, added_at
		FROM links
		WHERE search_text <@> to_bm25query($1, 'links_search_bm25_idx') < 0
		AND `+visibleFilter+`
		ORDER BY search_text <@> to_bm25query($1, 'links_search_bm25_idx')
		LIMIT $2`,
		query, n)
	if err != nil {
		return nil, fmt.Errorf("keyword candidates: %w", err)
	}
	return scanCandidates(rows)
}

// VectorCandidates returns the top n nearest neighbours of queryVec in
// rank order. No distance cutoff applies here; fusion scoring decides
// what survives.
func (s *Store) VectorCandidates(ctx context.Context, queryVec []float32, n int) ([]Candidate, error) {
	hasCol, err := s.HasEmbeddingColumn(ctx)
	if err != nil {
		return nil, err
	}
	if !hasCol {
		return nil, ErrVectorNotInitialized
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, url, title, description, added_at
		FROM links
		WHERE embedding IS NOT NULL
		AND `+visibleFilter+`
		ORDER BY embedding <=> $1::vector
		LIMIT $2`,
		VectorLiteral(queryVec), n)
	if err != nil {
		return nil, fmt.Errorf("vector candidates: %w", err)
	}
	return scanCandidates(rows)
}

func scanCandidates(rows *sql.Rows) ([]Candidate, error) {
	defer rows.Close()
	var out []Candidate
	for rows.Next() {
		var c Candidate
		var title, description sql.NullString
		if err := rows.Scan(&c.ID, &c.URL, &title, &description, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.Title = nullableString(title)
		c.Description = nullableString(description)
		c.Rank = len(out) + 1
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan candidates: %w", err)
	}
	return out, nil
}
