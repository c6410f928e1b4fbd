package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests, searches and
// crawls. This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)

	searchesTotal     = make(map[searchKey]int64)
	searchCacheHits   int64
	searchCacheMisses int64

	crawlsTotal = make(map[string]int64)
	embedsTotal = make(map[string]int64)
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type searchKey struct {
	Mode string // text | vector | hybrid
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordSearch counts one search by mode.
func RecordSearch(mode string) {
	mu.Lock()
	defer mu.Unlock()
	searchesTotal[searchKey{Mode: mode}]++
}

// RecordCacheHit counts a search-cache probe outcome.
func RecordCacheHit(hit bool) {
	mu.Lock()
	defer mu.Unlock()
	if hit {
		searchCacheHits++
	} else {
		searchCacheMisses++
	}
}

// RecordCrawl counts one crawled page by outcome ("ok" or "error").
func RecordCrawl(outcome string) {
	mu.Lock()
	defer mu.Unlock()
	crawlsTotal[outcome]++
}

// RecordEmbed counts one embedded document by outcome.
func RecordEmbed(outcome string) {
	mu.Lock()
	defer mu.Unlock()
	embedsTotal[outcome]++
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP linkdex_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE linkdex_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		fmt.Fprintf(&b, "linkdex_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, requestsTotal[k])
	}

	b.WriteString("# HELP linkdex_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE linkdex_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP linkdex_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE linkdex_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		fmt.Fprintf(&b, "linkdex_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, latencyMsSum[k])
		fmt.Fprintf(&b, "linkdex_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, latencyMsCount[k])
	}

	b.WriteString("# HELP linkdex_searches_total Total searches by mode\n")
	b.WriteString("# TYPE linkdex_searches_total counter\n")

	var sKeys []searchKey
	for k := range searchesTotal {
		sKeys = append(sKeys, k)
	}
	sort.Slice(sKeys, func(i, j int) bool { return sKeys[i].Mode < sKeys[j].Mode })
	for _, k := range sKeys {
		fmt.Fprintf(&b, "linkdex_searches_total{mode=\"%s\"} %d\n", k.Mode, searchesTotal[k])
	}

	b.WriteString("# HELP linkdex_search_cache_total Search cache probe outcomes\n")
	b.WriteString("# TYPE linkdex_search_cache_total counter\n")
	fmt.Fprintf(&b, "linkdex_search_cache_total{result=\"hit\"} %d\n", searchCacheHits)
	fmt.Fprintf(&b, "linkdex_search_cache_total{result=\"miss\"} %d\n", searchCacheMisses)

	b.WriteString("# HELP linkdex_crawled_pages_total Crawled pages by outcome\n")
	b.WriteString("# TYPE linkdex_crawled_pages_total counter\n")
	writeOutcomeMap(&b, "linkdex_crawled_pages_total", crawlsTotal)

	b.WriteString("# HELP linkdex_embedded_documents_total Embedded documents by outcome\n")
	b.WriteString("# TYPE linkdex_embedded_documents_total counter\n")
	writeOutcomeMap(&b, "linkdex_embedded_documents_total", embedsTotal)

	return b.String()
}

func writeOutcomeMap(b *strings.Builder, name string, m map[string]int64) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s{outcome=\"%s\"} %d\n", name, k, m[k])
	}
}

// Reset clears all counters. Test helper.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	requestsTotal = make(map[reqKey]int64)
	latencyMsSum = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)
	searchesTotal = make(map[searchKey]int64)
	searchCacheHits = 0
	searchCacheMisses = 0
	crawlsTotal = make(map[string]int64)
	embedsTotal = make(map[string]int64)
}
