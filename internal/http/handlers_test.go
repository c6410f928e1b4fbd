package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	neturl "net/url"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"linkdex/internal/config"
	"linkdex/internal/jobs"
	"linkdex/internal/search"
	"linkdex/internal/store"
)

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	cfg := &config.Config{}
	srv := NewServer(Deps{
		Config: cfg,
		Store:  st,
		Search: &search.Service{Store: st},
		Runner: jobs.NewRunner(),
	})
	return srv, mock
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*nethttp.Response, map[string]any) {
	t.Helper()
	var req *nethttp.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var parsed map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp, parsed
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := doJSON(t, srv, "GET", "/healthz", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestAddLinkRejectsEmptyURL(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := doJSON(t, srv, "POST", "/v1/links", `{"url":"  "}`)
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["code"] != "INVALID_ARGUMENT" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestAddLinkNormalizesSchemelessURL(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("INSERT INTO links").
		WithArgs("https://example.com/page").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow("3e3c7f5e-9a5b-4b8e-9f1e-000000000002"))
	mock.ExpectExec("DELETE FROM search_cache").
		WillReturnResult(sqlmock.NewResult(0, 0))

	resp, body := doJSON(t, srv, "POST", "/v1/links", `{"url":"example.com/page"}`)
	if resp.StatusCode != 201 {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if body["url"] != "https://example.com/page" {
		t.Fatalf("url = %v, want https prefix added", body["url"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAddLinkDuplicateConflict(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("INSERT INTO links").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	resp, body := doJSON(t, srv, "POST", "/v1/links", `{"url":"https://example.com"}`)
	if resp.StatusCode != 409 {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if body["code"] != "ALREADY_EXISTS" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestAddLinkCreated(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("INSERT INTO links").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow("3e3c7f5e-9a5b-4b8e-9f1e-000000000001"))
	mock.ExpectExec("DELETE FROM search_cache").
		WillReturnResult(sqlmock.NewResult(0, 0))

	resp, body := doJSON(t, srv, "POST", "/v1/links", `{"url":"https://example.com"}`)
	if resp.StatusCode != 201 {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if body["success"] != true || body["url"] != "https://example.com" {
		t.Fatalf("body = %v", body)
	}
}

func TestSearchEmptyQueryReturnsNoResults(t *testing.T) {
	srv, _ := newTestServer(t)
	// No sqlmock expectations: a blank query must not touch the store.
	resp, body := doJSON(t, srv, "POST", "/v1/search/text", `{"query":"  "}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["success"] != true || body["total"] != float64(0) {
		t.Fatalf("body = %v, want success with zero total", body)
	}
}

func TestHybridSearchWithoutEmbedder(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := doJSON(t, srv, "POST", "/v1/search", `{"query":"golang","no_cache":true}`)
	if resp.StatusCode != 503 {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if body["code"] != "NOT_CONFIGURED" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestJobStatusIdlePerKind(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/v1/crawl/status", "/v1/embed/status"} {
		resp, body := doJSON(t, srv, "GET", path, "")
		if resp.StatusCode != 200 {
			t.Fatalf("%s status = %d", path, resp.StatusCode)
		}
		job, ok := body["job"].(map[string]any)
		if !ok || job["state"] != "idle" {
			t.Fatalf("%s body = %v", path, body)
		}
	}
}

func TestListLinksClampsLimit(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM links WHERE hidden = FALSE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("information_schema.columns").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("ORDER BY updated_at").
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"url", "title", "added_at", "updated_at", "hidden"}))

	resp, _ := doJSON(t, srv, "GET", "/v1/links?limit=500", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTouchLink(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectExec("UPDATE links SET updated_at").
		WithArgs("https://example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp, body := doJSON(t, srv, "POST", "/v1/links/touch", `{"url":"example.com"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["success"] != true || body["url"] != "https://example.com" {
		t.Fatalf("body = %v", body)
	}
}

func TestTouchUnknownLinkNotFound(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectExec("UPDATE links SET updated_at").
		WillReturnResult(sqlmock.NewResult(0, 0))

	resp, body := doJSON(t, srv, "POST", "/v1/links/touch", `{"url":"https://gone.example"}`)
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["code"] != "NOT_FOUND" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestRemoveLinksByGlob(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("SELECT url FROM links WHERE url LIKE").
		WithArgs(`https://old.example/%`).
		WillReturnRows(sqlmock.NewRows([]string{"url"}).
			AddRow("https://old.example/a").
			AddRow("https://old.example/b"))
	mock.ExpectExec("DELETE FROM links WHERE url LIKE").
		WithArgs(`https://old.example/%`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM search_cache").
		WillReturnResult(sqlmock.NewResult(0, 0))

	resp, body := doJSON(t, srv, "DELETE", "/v1/links?glob="+neturl.QueryEscape("https://old.example/*"), "")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["count"] != float64(2) {
		t.Fatalf("count = %v, want 2", body["count"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRemoveLinksWithoutParamsRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := doJSON(t, srv, "DELETE", "/v1/links", "")
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["code"] != "INVALID_ARGUMENT" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestEmbedWithoutProvider(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := doJSON(t, srv, "POST", "/v1/embed", `{}`)
	if resp.StatusCode != 503 {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if body["code"] != "NOT_CONFIGURED" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(raw), "linkdex_http_requests_total") {
		t.Fatalf("metrics output missing counters: %q", raw)
	}
}
