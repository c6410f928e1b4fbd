package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"linkdex/internal/model"
)

func TestCacheKeyNormalizesQuery(t *testing.T) {
	a := CacheKey("  Golang Concurrency  ", 0.5, 0.5)
	b := CacheKey("golang concurrency", 0.5, 0.5)
	if a != b {
		t.Fatalf("case and whitespace should not change the key: %s vs %s", a, b)
	}
}

func TestCacheKeyVariesWithWeights(t *testing.T) {
	a := CacheKey("query", 0.5, 0.5)
	b := CacheKey("query", 0.7, 0.3)
	if a == b {
		t.Fatal("different weights must produce different keys")
	}
}

func TestCachedSearchMiss(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT results, total_count").
		WillReturnRows(sqlmock.NewRows([]string{"results", "total_count"}))

	_, _, hit, err := st.CachedSearch(context.Background(), "query", 0.5, 0.5)
	if err != nil {
		t.Fatalf("CachedSearch: %v", err)
	}
	if hit {
		t.Fatal("expected a cache miss")
	}
}

func TestCachedSearchHit(t *testing.T) {
	st, mock := newMockStore(t)

	results := []model.HybridResult{{URL: "https://a.example", RRFScore: 0.01}}
	raw, _ := json.Marshal(results)

	mock.ExpectQuery("SELECT results, total_count").
		WillReturnRows(sqlmock.NewRows([]string{"results", "total_count"}).AddRow(raw, 1))

	got, total, hit, err := st.CachedSearch(context.Background(), "query", 0.5, 0.5)
	if err != nil {
		t.Fatalf("CachedSearch: %v", err)
	}
	if !hit || total != 1 || len(got) != 1 || got[0].URL != "https://a.example" {
		t.Fatalf("hit=%v total=%d got=%v", hit, total, got)
	}
}

func TestInvalidateSearchCacheCountsRows(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM search_cache").
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := st.InvalidateSearchCache(context.Background())
	if err != nil {
		t.Fatalf("InvalidateSearchCache: %v", err)
	}
	if n != 7 {
		t.Fatalf("deleted = %d, want 7", n)
	}
}
