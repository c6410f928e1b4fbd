package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"linkdex/internal/crawler"
	"linkdex/internal/embed"
	"linkdex/internal/jobs"
	"linkdex/internal/store"
)

func runnerFrom(c *fiber.Ctx) *jobs.Runner {
	r, _ := c.Locals("runner").(*jobs.Runner)
	return r
}

func fetcherFrom(c *fiber.Ctx) *crawler.Fetcher {
	f, _ := c.Locals("fetcher").(*crawler.Fetcher)
	return f
}

func embedderFrom(c *fiber.Ctx) embed.Embedder {
	e, _ := c.Locals("embedder").(embed.Embedder)
	return e
}

func crawlSelectorFromRequest(req CrawlRequest) store.CrawlSelector {
	switch {
	case req.URL != "":
		return store.SelectURL(req.URL)
	case req.All:
		return store.SelectAll()
	case req.Days > 0:
		return store.SelectOld(req.Days)
	default:
		return store.SelectMissing()
	}
}

func startCrawlHandler(c *fiber.Ctx) error {
	var req CrawlRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid JSON body")
		}
	}

	st := storeFrom(c)
	urls, err := st.ListToCrawl(c.Context(), crawlSelectorFromRequest(req))
	if err != nil {
		return fail(c, err)
	}
	if len(urls) == 0 {
		return c.JSON(JobAcceptedResponse{Success: true, Kind: string(jobs.KindCrawl), Total: 0})
	}

	// Jobs outlive the request, so they run on the background context.
	err = runnerFrom(c).Start(context.Background(), jobs.KindCrawl, urls,
		crawlItemFunc(st, fetcherFrom(c)))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(JobAcceptedResponse{
		Success: true,
		Kind:    string(jobs.KindCrawl),
		Total:   len(urls),
	})
}

func startEmbedHandler(c *fiber.Ctx) error {
	var req EmbedRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid JSON body")
		}
	}

	embedder := embedderFrom(c)
	if embedder == nil {
		return fail(c, store.ErrNotConfigured)
	}

	st := storeFrom(c)
	pendingList, err := st.ListPendingEmbeddings(c.Context(), req.Limit)
	if err != nil {
		return fail(c, err)
	}
	if len(pendingList) == 0 {
		return c.JSON(JobAcceptedResponse{Success: true, Kind: string(jobs.KindEmbed), Total: 0})
	}

	pending := make(map[string]store.PendingEmbedding, len(pendingList))
	urls := make([]string, 0, len(pendingList))
	for _, p := range pendingList {
		pending[p.URL] = p
		urls = append(urls, p.URL)
	}

	err = runnerFrom(c).Start(context.Background(), jobs.KindEmbed, urls,
		embedItemFunc(st, embedder, pending))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(JobAcceptedResponse{
		Success: true,
		Kind:    string(jobs.KindEmbed),
		Total:   len(urls),
	})
}

func jobStatusHandler(kind jobs.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"job":     runnerFrom(c).Status(kind),
		})
	}
}

func cancelJobHandler(kind jobs.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		canceled := runnerFrom(c).Cancel(kind)
		return c.JSON(fiber.Map{"success": true, "canceled": canceled})
	}
}
