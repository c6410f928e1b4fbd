package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Static is a deterministic local embedder. It hashes each token into
// a fixed bucket and L2-normalizes the resulting bag-of-words vector,
// so identical texts always embed identically and token overlap maps
// to cosine similarity. Useful offline and in tests; not a substitute
// for a learned model.
type Static struct{}

func NewStatic() *Static { return &Static{} }

func (*Static) Model() string { return "static-hash-v1" }

func (*Static) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, Dimensions)

	for _, tok := range strings.Fields(strings.ToLower(Truncate(text))) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%Dimensions]++
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		norm := float32(math.Sqrt(sum))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
