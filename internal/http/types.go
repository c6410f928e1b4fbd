package http

import "linkdex/internal/model"

// ErrorResponse is the error envelope for every non-2xx response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
}

// AddLinkRequest is the body of POST /v1/links.
type AddLinkRequest struct {
	URL string `json:"url"`
}

// ListLinksResponse is the body of GET /v1/links.
type ListLinksResponse struct {
	Success           bool                `json:"success"`
	Links             []model.LinkSummary `json:"links"`
	Total             int                 `json:"total"`
	PendingEmbeddings int                 `json:"pending_embeddings"`
}

// SearchRequest is shared by the three search endpoints. Weights and
// UseCache only apply to hybrid; MaxDistance only to vector.
type SearchRequest struct {
	Query         string   `json:"query"`
	Limit         int      `json:"limit,omitempty"`
	Offset        int      `json:"offset,omitempty"`
	KeywordWeight *float64 `json:"keyword_weight,omitempty"`
	VectorWeight  *float64 `json:"vector_weight,omitempty"`
	MaxDistance   *float64 `json:"max_distance,omitempty"`
	NoCache       bool     `json:"no_cache,omitempty"`
}

// SearchResponse wraps one result page. Results is one of the three
// result shapes depending on the endpoint.
type SearchResponse struct {
	Success bool `json:"success"`
	Query   string `json:"query"`
	Total   int    `json:"total"`
	Results any    `json:"results"`
}

// CrawlRequest selects which links POST /v1/crawl should visit.
// Exactly one of Missing, All, Days or URL applies; Missing is the
// default.
type CrawlRequest struct {
	All  bool   `json:"all,omitempty"`
	Days int    `json:"days,omitempty"`
	URL  string `json:"url,omitempty"`
}

// EmbedRequest bounds how many pending documents POST /v1/embed
// processes. Zero means all.
type EmbedRequest struct {
	Limit int `json:"limit,omitempty"`
}

// JobAcceptedResponse acknowledges a started background job.
type JobAcceptedResponse struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind"`
	Total   int    `json:"total"`
}

// TouchRequest is the body of POST /v1/links/touch.
type TouchRequest struct {
	URL string `json:"url"`
}

// FetchRequest is the body of POST /v1/fetch.
type FetchRequest struct {
	URL string `json:"url"`
}
