package http

import (
	"github.com/gofiber/fiber/v2"

	"linkdex/internal/metrics"
	"linkdex/internal/search"
)

func parseSearchRequest(c *fiber.Ctx) (*SearchRequest, error) {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func hybridSearchHandler(c *fiber.Ctx) error {
	req, err := parseSearchRequest(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}

	opts := search.HybridOptions{
		Limit:    req.Limit,
		Offset:   req.Offset,
		UseCache: !req.NoCache,
	}
	if req.KeywordWeight != nil {
		opts.KeywordWeight = *req.KeywordWeight
	}
	if req.VectorWeight != nil {
		opts.VectorWeight = *req.VectorWeight
	}

	results, total, err := searchFrom(c).Hybrid(c.Context(), req.Query, opts)
	if err != nil {
		return fail(c, err)
	}
	metrics.RecordSearch("hybrid")
	return c.JSON(SearchResponse{Success: true, Query: req.Query, Total: total, Results: results})
}

func textSearchHandler(c *fiber.Ctx) error {
	req, err := parseSearchRequest(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}

	results, total, err := searchFrom(c).Text(c.Context(), req.Query, req.Limit, req.Offset)
	if err != nil {
		return fail(c, err)
	}
	metrics.RecordSearch("text")
	return c.JSON(SearchResponse{Success: true, Query: req.Query, Total: total, Results: results})
}

func vectorSearchHandler(c *fiber.Ctx) error {
	req, err := parseSearchRequest(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}

	maxDistance := 0.0
	if req.MaxDistance != nil {
		maxDistance = *req.MaxDistance
	}

	results, total, err := searchFrom(c).Vector(c.Context(), req.Query, req.Limit, req.Offset, maxDistance)
	if err != nil {
		return fail(c, err)
	}
	metrics.RecordSearch("vector")
	return c.JSON(SearchResponse{Success: true, Query: req.Query, Total: total, Results: results})
}
