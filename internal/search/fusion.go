package search

import (
	"sort"

	"linkdex/internal/model"
	"linkdex/internal/store"
)

// RRF tuning constants. K smooths rank differences; MinScore drops
// documents whose weighted reciprocal ranks are negligible.
const (
	RRFK          = 60
	MinScore      = 0.005
	CandidateSize = 20
)

// Fuse merges a keyword candidate list and a vector candidate list
// with weighted Reciprocal Rank Fusion. A document absent from one
// list contributes zero from that list and reports MissingRank for it.
// Results are ordered by descending fused score; entries below
// minScore are dropped.
func Fuse(keyword, vector []store.Candidate, keywordWeight, vectorWeight, minScore float64) []model.HybridResult {
	type entry struct {
		model.HybridResult
		order int
	}

	byURL := make(map[string]*entry, len(keyword)+len(vector))

	add := func(c store.Candidate) *entry {
		if e, ok := byURL[c.URL]; ok {
			return e
		}
		e := &entry{
			HybridResult: model.HybridResult{
				URL:         c.URL,
				Title:       c.Title,
				Description: c.Description,
				AddedAt:     c.AddedAt,
				KeywordRank: model.MissingRank,
				VectorRank:  model.MissingRank,
			},
			order: len(byURL),
		}
		byURL[c.URL] = e
		return e
	}

	for _, c := range keyword {
		e := add(c)
		e.KeywordRank = c.Rank
		e.RRFScore += keywordWeight / float64(RRFK+c.Rank)
	}
	for _, c := range vector {
		e := add(c)
		e.VectorRank = c.Rank
		e.RRFScore += vectorWeight / float64(RRFK+c.Rank)
	}

	entries := make([]*entry, 0, len(byURL))
	for _, e := range byURL {
		if e.RRFScore >= minScore {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RRFScore != entries[j].RRFScore {
			return entries[i].RRFScore > entries[j].RRFScore
		}
		return entries[i].order < entries[j].order
	})

	out := make([]model.HybridResult, len(entries))
	for i, e := range entries {
		out[i] = e.HybridResult
	}
	return out
}
