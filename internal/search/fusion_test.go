package search

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"linkdex/internal/model"
	"linkdex/internal/store"
)

func cand(url string, rank int) store.Candidate {
	return store.Candidate{
		ID:      uuid.New(),
		URL:     url,
		AddedAt: time.Now(),
		Rank:    rank,
	}
}

func TestFuseBothLists(t *testing.T) {
	keyword := []store.Candidate{cand("https://a.example", 1), cand("https://b.example", 2)}
	vector := []store.Candidate{cand("https://b.example", 1), cand("https://c.example", 2)}

	got := Fuse(keyword, vector, 0.5, 0.5, 0)

	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}

	// b appears in both lists and must fuse to the top.
	if got[0].URL != "https://b.example" {
		t.Fatalf("top result = %s, want https://b.example", got[0].URL)
	}
	wantB := 0.5/float64(RRFK+2) + 0.5/float64(RRFK+1)
	if math.Abs(got[0].RRFScore-wantB) > 1e-12 {
		t.Fatalf("b score = %v, want %v", got[0].RRFScore, wantB)
	}
	if got[0].KeywordRank != 2 || got[0].VectorRank != 1 {
		t.Fatalf("b ranks = kw %d vec %d", got[0].KeywordRank, got[0].VectorRank)
	}
}

func TestFuseMissingListReportsSentinelRank(t *testing.T) {
	keyword := []store.Candidate{cand("https://a.example", 1)}

	got := Fuse(keyword, nil, 1.0, 0.0, 0)

	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].VectorRank != model.MissingRank {
		t.Fatalf("vector rank = %d, want %d", got[0].VectorRank, model.MissingRank)
	}
	want := 1.0 / float64(RRFK+1)
	if math.Abs(got[0].RRFScore-want) > 1e-12 {
		t.Fatalf("score = %v, want %v", got[0].RRFScore, want)
	}
}

func TestFuseMinScoreFilters(t *testing.T) {
	keyword := []store.Candidate{cand("https://a.example", 1)}
	vector := []store.Candidate{cand("https://b.example", 20)}

	// b's score is 0.5/80 = 0.00625; a's is 0.5/61. A threshold
	// between them must keep only a.
	got := Fuse(keyword, vector, 0.5, 0.5, 0.007)
	if len(got) != 1 || got[0].URL != "https://a.example" {
		t.Fatalf("got %v, want only https://a.example", got)
	}
}

func TestFuseZeroWeightSilencesList(t *testing.T) {
	keyword := []store.Candidate{cand("https://a.example", 1)}
	vector := []store.Candidate{cand("https://b.example", 1)}

	got := Fuse(keyword, vector, 0.0, 1.0, MinScore)
	if len(got) != 1 || got[0].URL != "https://b.example" {
		t.Fatalf("got %v, want only https://b.example", got)
	}
}

func TestFuseOrderedByScoreDescending(t *testing.T) {
	keyword := []store.Candidate{
		cand("https://a.example", 1),
		cand("https://b.example", 2),
		cand("https://c.example", 3),
	}
	got := Fuse(keyword, nil, 1.0, 0.0, 0)
	for i := 1; i < len(got); i++ {
		if got[i].RRFScore > got[i-1].RRFScore {
			t.Fatalf("results not sorted at %d: %v > %v", i, got[i].RRFScore, got[i-1].RRFScore)
		}
	}
}
