// Package embed turns text into fixed-size vectors for semantic
// search. The openai provider calls an OpenAI-compatible embeddings
// endpoint; the static provider computes deterministic local vectors
// and exists for offline use and tests.
package embed

import (
	"context"
	"errors"
	"unicode/utf8"

	"linkdex/internal/config"
)

// Dimensions of every produced vector, matching the embedding column.
const Dimensions = 1536

// MaxInputChars caps the text sent to the provider. Longer search
// texts are truncated, not chunked.
const MaxInputChars = 30000

// Embedder produces one vector per input text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// NewFromConfig selects a provider from config.
func NewFromConfig(cfg *config.Config) (Embedder, error) {
	switch cfg.Embedding.Provider {
	case "", "openai":
		if cfg.Embedding.APIKey == "" {
			return nil, errors.New("embedding provider is not configured: set LINKDEX_EMBEDDING_API_KEY")
		}
		return newOpenAIEmbedder(cfg.Embedding), nil
	case "static":
		return NewStatic(), nil
	default:
		return nil, errors.New("unknown embedding provider: " + cfg.Embedding.Provider)
	}
}

// Truncate applies the provider input cap, cutting on a rune boundary
// so truncated input stays valid UTF-8.
func Truncate(text string) string {
	if len(text) <= MaxInputChars {
		return text
	}
	cut := MaxInputChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
