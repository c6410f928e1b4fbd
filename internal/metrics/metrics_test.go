package metrics

import (
	"strings"
	"testing"
)

func TestExportRequestCounters(t *testing.T) {
	Reset()
	RecordRequest("GET", "/v1/links", 200, 12)
	RecordRequest("GET", "/v1/links", 200, 8)
	RecordRequest("POST", "/v1/search", 400, 3)

	out := Export()

	if !strings.Contains(out, `linkdex_http_requests_total{method="GET",path="/v1/links",status="200"} 2`) {
		t.Fatalf("missing GET counter:\n%s", out)
	}
	if !strings.Contains(out, `linkdex_http_requests_total{method="POST",path="/v1/search",status="400"} 1`) {
		t.Fatalf("missing POST counter:\n%s", out)
	}
	if !strings.Contains(out, `linkdex_http_request_duration_ms_sum{method="GET",path="/v1/links"} 20`) {
		t.Fatalf("missing latency sum:\n%s", out)
	}
}

func TestExportSearchAndCacheCounters(t *testing.T) {
	Reset()
	RecordSearch("hybrid")
	RecordSearch("hybrid")
	RecordSearch("text")
	RecordCacheHit(true)
	RecordCacheHit(false)
	RecordCacheHit(false)

	out := Export()

	if !strings.Contains(out, `linkdex_searches_total{mode="hybrid"} 2`) {
		t.Fatalf("missing hybrid counter:\n%s", out)
	}
	if !strings.Contains(out, `linkdex_search_cache_total{result="hit"} 1`) {
		t.Fatalf("missing cache hit counter:\n%s", out)
	}
	if !strings.Contains(out, `linkdex_search_cache_total{result="miss"} 2`) {
		t.Fatalf("missing cache miss counter:\n%s", out)
	}
}

func TestExportCrawlEmbedCounters(t *testing.T) {
	Reset()
	RecordCrawl("ok")
	RecordCrawl("error")
	RecordEmbed("ok")

	out := Export()

	if !strings.Contains(out, `linkdex_crawled_pages_total{outcome="error"} 1`) {
		t.Fatalf("missing crawl counter:\n%s", out)
	}
	if !strings.Contains(out, `linkdex_embedded_documents_total{outcome="ok"} 1`) {
		t.Fatalf("missing embed counter:\n%s", out)
	}
}
