package search

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"linkdex/internal/store"
)

func TestTextEmptyQueryReturnsNoResults(t *testing.T) {
	// Store stays nil: a blank query must return before any database
	// work, otherwise this test panics.
	svc := &Service{}
	results, total, err := svc.Text(context.Background(), "   ", 10, 0)
	if err != nil {
		t.Fatalf("Text: %v, want no error for blank query", err)
	}
	if len(results) != 0 || total != 0 {
		t.Fatalf("results = %v total = %d, want empty", results, total)
	}
}

func TestVectorEmptyQueryReturnsNoResults(t *testing.T) {
	svc := &Service{}
	results, total, err := svc.Vector(context.Background(), "", 10, 0, 0)
	if err != nil {
		t.Fatalf("Vector: %v, want no error for blank query", err)
	}
	if len(results) != 0 || total != 0 {
		t.Fatalf("results = %v total = %d, want empty", results, total)
	}
}

func TestHybridEmptyQueryReturnsNoResults(t *testing.T) {
	svc := &Service{}
	results, total, err := svc.Hybrid(context.Background(), " \t ", HybridOptions{UseCache: true})
	if err != nil {
		t.Fatalf("Hybrid: %v, want no error for blank query", err)
	}
	if len(results) != 0 || total != 0 {
		t.Fatalf("results = %v total = %d, want empty", results, total)
	}
}

func TestTextClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("golang").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY score").
		WithArgs("golang", MaxLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"url", "title", "description", "added_at", "score"}))

	svc := &Service{Store: store.New(db)}
	if _, _, err := svc.Text(context.Background(), "golang", 5000, 0); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestHybridRejectsOutOfRangeWeights(t *testing.T) {
	svc := &Service{}
	_, _, err := svc.Hybrid(context.Background(), "query", HybridOptions{
		KeywordWeight: 1.5,
		VectorWeight:  0.5,
	})
	if !errors.Is(err, store.ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
}

func TestHybridWithoutEmbedder(t *testing.T) {
	svc := &Service{}
	_, _, err := svc.Hybrid(context.Background(), "query", HybridOptions{})
	if !errors.Is(err, ErrNoEmbedder) {
		t.Fatalf("error = %v, want ErrNoEmbedder", err)
	}
}

func TestVectorWithoutEmbedder(t *testing.T) {
	svc := &Service{}
	_, _, err := svc.Vector(context.Background(), "query", 10, 0, 0)
	if !errors.Is(err, ErrNoEmbedder) {
		t.Fatalf("error = %v, want ErrNoEmbedder", err)
	}
}
