// Package search exposes the three query modes over the links store:
// BM25 lexical, vector cosine, and weighted RRF hybrid with caching.
package search

import (
	"context"
	"fmt"
	"strings"

	"linkdex/internal/embed"
	"linkdex/internal/metrics"
	"linkdex/internal/model"
	"linkdex/internal/store"
)

// Defaults applied when a caller passes zero values, and the hard cap
// on one result page.
const (
	DefaultLimit       = 10
	MaxLimit           = 100
	DefaultMaxDistance = 0.8
	DefaultWeight      = 0.5
)

// ErrNoEmbedder means vector or hybrid search was requested without a
// configured embedding provider.
var ErrNoEmbedder = fmt.Errorf("%w: no embedding provider", store.ErrNotConfigured)

// Service runs searches against the store, computing query embeddings
// through the configured embedder.
type Service struct {
	Store    *store.Store
	Embedder embed.Embedder

	// CacheTTLSeconds bounds how long hybrid results stay cached.
	CacheTTLSeconds int
}

// HybridOptions tunes one hybrid query. Zero values select defaults;
// UseCache must be set explicitly since false is meaningful.
type HybridOptions struct {
	Limit         int
	Offset        int
	KeywordWeight float64
	VectorWeight  float64
	UseCache      bool
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Text runs a lexical BM25 search. A blank query matches nothing and
// is not an error.
func (s *Service) Text(ctx context.Context, query string, limit, offset int) ([]model.TextResult, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, nil
	}
	return s.Store.TextSearch(ctx, query, clampLimit(limit), offset)
}

// Vector runs a semantic search. maxDistance <= 0 selects the default
// cutoff; a blank query matches nothing.
func (s *Service) Vector(ctx context.Context, query string, limit, offset int, maxDistance float64) ([]model.VectorResult, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, nil
	}
	limit = clampLimit(limit)
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	if s.Embedder == nil {
		return nil, 0, ErrNoEmbedder
	}

	vec, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("embed query: %w", err)
	}
	return s.Store.VectorSearch(ctx, vec, limit, offset, maxDistance)
}

// Hybrid fuses the top keyword and vector candidates with weighted
// RRF. Only the first page is cached; any offset bypasses the cache so
// pagination always reflects a single fused computation. A blank query
// matches nothing.
func (s *Service) Hybrid(ctx context.Context, query string, opts HybridOptions) ([]model.HybridResult, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, nil
	}
	opts.Limit = clampLimit(opts.Limit)
	if opts.KeywordWeight == 0 && opts.VectorWeight == 0 {
		opts.KeywordWeight = DefaultWeight
		opts.VectorWeight = DefaultWeight
	}
	if opts.KeywordWeight < 0 || opts.KeywordWeight > 1 ||
		opts.VectorWeight < 0 || opts.VectorWeight > 1 {
		return nil, 0, fmt.Errorf("%w: weights must be within [0, 1]", store.ErrInvalid)
	}

	if opts.UseCache && opts.Offset == 0 {
		results, total, hit, err := s.Store.CachedSearch(ctx, query, opts.KeywordWeight, opts.VectorWeight)
		if err != nil {
			return nil, 0, err
		}
		metrics.RecordCacheHit(hit)
		if hit {
			if len(results) > opts.Limit {
				results = results[:opts.Limit]
			}
			return results, total, nil
		}
	}

	if s.Embedder == nil {
		return nil, 0, ErrNoEmbedder
	}
	vec, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("embed query: %w", err)
	}

	vectorList, err := s.Store.VectorCandidates(ctx, vec, CandidateSize)
	if err != nil {
		return nil, 0, err
	}
	keywordList, err := s.Store.KeywordCandidates(ctx, query, CandidateSize)
	if err != nil {
		return nil, 0, err
	}

	fused := Fuse(keywordList, vectorList, opts.KeywordWeight, opts.VectorWeight, MinScore)
	total := len(fused)

	if opts.UseCache && opts.Offset == 0 {
		ttl := s.CacheTTLSeconds
		if ttl <= 0 {
			ttl = 3600
		}
		if err := s.Store.CacheSearch(ctx, query, opts.KeywordWeight, opts.VectorWeight, fused, total, ttl); err != nil {
			return nil, 0, err
		}
	}

	if opts.Offset >= len(fused) {
		return nil, total, nil
	}
	fused = fused[opts.Offset:]
	if len(fused) > opts.Limit {
		fused = fused[:opts.Limit]
	}
	return fused, total, nil
}
