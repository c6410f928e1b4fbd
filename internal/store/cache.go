package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"linkdex/internal/model"
)

// CacheKey hashes the normalized query plus the fusion weights. The
// weights are rendered with minimal digits so 0.5 and 0.50 collide,
// which is what callers expect.
func CacheKey(query string, keywordWeight, vectorWeight float64) string {
	normalized := strings.ToLower(strings.TrimSpace(query)) + ":" +
		strconv.FormatFloat(keywordWeight, 'g', -1, 64) + ":" +
		strconv.FormatFloat(vectorWeight, 'g', -1, 64)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// CachedSearch probes the search cache. It returns (nil, 0, false, nil)
// on a miss or an expired entry.
func (s *Store) CachedSearch(ctx context.Context, query string, keywordWeight, vectorWeight float64) ([]model.HybridResult, int, bool, error) {
	var raw []byte
	var total int
	err := s.DB.QueryRowContext(ctx, `
		SELECT results, total_count
		FROM search_cache
		WHERE query_hash = $1
		AND keyword_weight = $2
		AND vector_weight = $3
		AND expires_at > NOW()`,
		CacheKey(query, keywordWeight, vectorWeight), keywordWeight, vectorWeight,
	).Scan(&raw, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("read search cache: %w", err)
	}

	var results []model.HybridResult
	if err := json.Unmarshal(raw, &results); err != nil {
		// A corrupt entry behaves like a miss; the caller recomputes
		// and overwrites it.
		return nil, 0, false, nil
	}
	return results, total, true, nil
}

// CacheSearch upserts the fused results for a (query, weights) key
// with a fresh TTL.
func (s *Store) CacheSearch(ctx context.Context, query string, keywordWeight, vectorWeight float64, results []model.HybridResult, total, ttlSeconds int) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode search cache: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO search_cache
			(query_hash, query_text, keyword_weight, vector_weight, results, total_count, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW() + make_interval(secs => $7))
		ON CONFLICT (query_hash, keyword_weight, vector_weight)
		DO UPDATE SET
			results = EXCLUDED.results,
			total_count = EXCLUDED.total_count,
			created_at = NOW(),
			expires_at = NOW() + make_interval(secs => $7)`,
		CacheKey(query, keywordWeight, vectorWeight), query,
		keywordWeight, vectorWeight, raw, total, ttlSeconds)
	if err != nil {
		return fmt.Errorf("write search cache: %w", err)
	}
	return nil
}

// InvalidateSearchCache drops every cache entry and returns how many
// were removed. Called by every mutation that can change results.
func (s *Store) InvalidateSearchCache(ctx context.Context) (int, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM search_cache`)
	if err != nil {
		return 0, fmt.Errorf("invalidate search cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// PurgeExpiredCache removes only entries past their TTL.
func (s *Store) PurgeExpiredCache(ctx context.Context) (int, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM search_cache WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge search cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
