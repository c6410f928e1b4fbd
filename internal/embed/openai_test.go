package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"linkdex/internal/config"
)

func TestOpenAIEmbedderRequestShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody embeddingsRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		vec := make([]float32, Dimensions)
		vec[0] = 1
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": vec}},
		})
	}))
	defer ts.Close()

	e := newOpenAIEmbedder(config.EmbeddingConfig{
		APIKey:  "sk-test",
		BaseURL: ts.URL,
	})

	vec, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != Dimensions || vec[0] != 1 {
		t.Fatalf("vector = len %d first %v", len(vec), vec[0])
	}
	if gotPath != "/embeddings" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if gotBody.Model != "text-embedding-3-small" || gotBody.Input != "hello world" {
		t.Fatalf("body = %+v", gotBody)
	}
}

func TestOpenAIEmbedderTruncatesInput(t *testing.T) {
	var gotLen int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotLen = len(req.Input)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": make([]float32, Dimensions)}},
		})
	}))
	defer ts.Close()

	e := newOpenAIEmbedder(config.EmbeddingConfig{APIKey: "k", BaseURL: ts.URL})
	if _, err := e.Embed(context.Background(), strings.Repeat("x", MaxInputChars+500)); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if gotLen != MaxInputChars {
		t.Fatalf("input len = %d, want %d", gotLen, MaxInputChars)
	}
}

func TestOpenAIEmbedderAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	}))
	defer ts.Close()

	e := newOpenAIEmbedder(config.EmbeddingConfig{APIKey: "bad", BaseURL: ts.URL})
	_, err := e.Embed(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("error = %v, want api message", err)
	}
}

func TestOpenAIEmbedderDimensionMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{1, 2, 3}}},
		})
	}))
	defer ts.Close()

	e := newOpenAIEmbedder(config.EmbeddingConfig{APIKey: "k", BaseURL: ts.URL})
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestNewFromConfigStatic(t *testing.T) {
	cfg := &config.Config{Embedding: config.EmbeddingConfig{Provider: "static"}}
	e, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if e.Model() != "static-hash-v1" {
		t.Fatalf("model = %q", e.Model())
	}
}

func TestNewFromConfigOpenAIMissingKey(t *testing.T) {
	cfg := &config.Config{Embedding: config.EmbeddingConfig{Provider: "openai"}}
	if _, err := NewFromConfig(cfg); err == nil {
		t.Fatal("expected error without api key")
	}
}
