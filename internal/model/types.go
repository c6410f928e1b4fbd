package model

import (
	"time"

	"github.com/google/uuid"
)

// Link is the canonical document record: one row per URL.
type Link struct {
	ID           uuid.UUID  `json:"id"`
	URL          string     `json:"url"`
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Content      *string    `json:"content,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Hidden       bool       `json:"hidden"`
	AddedAt      time.Time  `json:"added_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CrawledAt    *time.Time `json:"crawled_at"`
	HTTPStatus   *int       `json:"http_status"`
	CrawlError   *string    `json:"crawl_error"`
	HasEmbedding bool       `json:"has_embedding"`
}

// LinkSummary is the trimmed row shape used by list views.
type LinkSummary struct {
	URL       string    `json:"url"`
	Title     *string   `json:"title"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Hidden    bool      `json:"hidden"`
}

// TextResult is one BM25 hit. Score is the absolute value of the index
// score, so larger is better.
type TextResult struct {
	URL         string    `json:"url"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	AddedAt     time.Time `json:"added_at"`
	Score       float64   `json:"score"`
}

// VectorResult is one cosine-distance hit, ordered by ascending distance.
type VectorResult struct {
	URL         string    `json:"url"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	AddedAt     time.Time `json:"added_at"`
	Distance    float64   `json:"distance"`
}

// MissingRank marks a document absent from one of the two fused lists.
const MissingRank = 999

// HybridResult is one RRF-fused hit. KeywordRank and VectorRank are
// 1-based positions in the respective candidate lists, or MissingRank
// when the document did not appear in that list.
type HybridResult struct {
	URL         string    `json:"url"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	AddedAt     time.Time `json:"added_at"`
	VectorRank  int       `json:"vector_rank"`
	KeywordRank int       `json:"keyword_rank"`
	RRFScore    float64   `json:"rrf_score"`
}
