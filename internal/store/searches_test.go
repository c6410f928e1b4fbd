package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestTextSearchReturnsAbsoluteScores(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("golang").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("to_bm25query").
		WithArgs("golang", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"url", "title", "description", "added_at", "score"}).
			AddRow("https://a.example", "A", nil, time.Now(), -2.5).
			AddRow("https://b.example", nil, "desc", time.Now(), -1.25))

	results, total, err := st.TextSearch(context.Background(), "golang", 10, 0)
	if err != nil {
		t.Fatalf("TextSearch: %v", err)
	}
	if total != 2 || len(results) != 2 {
		t.Fatalf("total=%d len=%d", total, len(results))
	}
	if results[0].Score != 2.5 || results[1].Score != 1.25 {
		t.Fatalf("scores = %v, %v; want positive values", results[0].Score, results[1].Score)
	}
	if results[1].Title != nil {
		t.Fatalf("nil title should stay nil, got %v", *results[1].Title)
	}
}

func TestVectorSearchRequiresColumn(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	vec := make([]float32, EmbeddingDimensions)
	_, _, err := st.VectorSearch(context.Background(), vec, 10, 0, 0.8)
	if !errors.Is(err, ErrVectorNotInitialized) {
		t.Fatalf("error = %v, want ErrVectorNotInitialized", err)
	}
}

func TestKeywordCandidatesAssignsRanks(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("to_bm25query").
		WithArgs("query", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "description", "added_at"}).
			AddRow(uuid.New().String(), "https://a.example", nil, nil, time.Now()).
			AddRow(uuid.New().String(), "https://b.example", nil, nil, time.Now()).
			AddRow(uuid.New().String(), "https://c.example", nil, nil, time.Now()))

	cands, err := st.KeywordCandidates(context.Background(), "query", 20)
	if err != nil {
		t.Fatalf("KeywordCandidates: %v", err)
	}
	for i, c := range cands {
		if c.Rank != i+1 {
			t.Fatalf("rank[%d] = %d, want %d", i, c.Rank, i+1)
		}
	}
}

func TestVectorLiteral(t *testing.T) {
	got := VectorLiteral([]float32{0.5, -1, 0.25})
	if got != "[0.5,-1,0.25]" {
		t.Fatalf("VectorLiteral = %q", got)
	}
}

func TestSetEmbeddingRejectsWrongDimensions(t *testing.T) {
	st, _ := newMockStore(t)
	err := st.SetEmbedding(context.Background(), uuid.New(), []float32{1, 2, 3})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
}
