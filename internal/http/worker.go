package http

import (
	"context"

	"github.com/google/uuid"

	"linkdex/internal/crawler"
	"linkdex/internal/jobs"
	"linkdex/internal/metrics"
	"linkdex/internal/store"
)

// Narrow interfaces so the batch workers can be tested with fakes.

type pageFetcher interface {
	Fetch(ctx context.Context, url string) *crawler.Result
}

type crawlStore interface {
	CrawlUpdate(ctx context.Context, url string, p store.CrawlUpdateParams) (bool, bool, error)
}

type embedStore interface {
	SetEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error
}

type textEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// crawlItemFunc fetches one URL and persists the result. A page that
// failed to load is still recorded (with crawl_error set) so the crawl
// does not retry it forever; only a storage error fails the item.
func crawlItemFunc(st crawlStore, f pageFetcher) jobs.ItemFunc {
	return func(ctx context.Context, url string) error {
		result := f.Fetch(ctx, url)

		_, _, err := st.CrawlUpdate(ctx, url, store.CrawlUpdateParams{
			Title:       result.Title,
			Description: result.Description,
			Content:     result.Content,
			HTTPStatus:  result.HTTPStatus,
			CrawlError:  result.Error,
		})
		if err != nil {
			metrics.RecordCrawl("error")
			return err
		}
		if result.Error != nil {
			metrics.RecordCrawl("error")
		} else {
			metrics.RecordCrawl("ok")
		}
		return nil
	}
}

// embedItemFunc embeds one pending document's search text and stores
// the vector. Items are keyed by URL for readable progress; the
// pending map carries the id and text.
func embedItemFunc(st embedStore, e textEmbedder, pending map[string]store.PendingEmbedding) jobs.ItemFunc {
	return func(ctx context.Context, url string) error {
		p, ok := pending[url]
		if !ok {
			metrics.RecordEmbed("error")
			return store.ErrNotFound
		}
		vec, err := e.Embed(ctx, p.SearchText)
		if err != nil {
			metrics.RecordEmbed("error")
			return err
		}
		if err := st.SetEmbedding(ctx, p.ID, vec); err != nil {
			metrics.RecordEmbed("error")
			return err
		}
		metrics.RecordEmbed("ok")
		return nil
	}
}
