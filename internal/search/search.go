// Package search performs k-nearest-neighbor retrieval over a loaded
// search index.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"pdfsearch/internal/embedding"
	"pdfsearch/internal/index"
	"pdfsearch/internal/segment"
)

// ErrEmptyIndex indicates the restricted candidate set contains no units.
// Callers render this as zero results, not a failure.
var ErrEmptyIndex = errors.New("no indexed units to search")

// Result is one retrieved unit with its distance from the query.
// Smaller distances mean closer matches.
type Result struct {
	segment.TextUnit
	Distance float32 `json:"distance"`
}

// SquaredEuclidean computes the squared L2 distance between two vectors.
// Ordering under squared distance matches ordering under true Euclidean
// distance, so the square root is skipped.
func SquaredEuclidean(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Search embeds the query and returns the k nearest stored units,
// ascending by distance. A nil or empty candidateIDs set searches every
// document; otherwise only units from the named documents are
// considered. Distance ties resolve in index insertion order.
func Search(ctx context.Context, provider embedding.Provider, idx *index.SearchIndex, query string, candidateIDs map[string]struct{}, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	candidates := restrict(idx, candidateIDs)
	if len(candidates) == 0 {
		return nil, ErrEmptyIndex
	}

	vectors, err := provider.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, &embedding.EncodingError{
			BatchSize: 1,
			Err:       fmt.Errorf("got %d vectors for 1 query", len(vectors)),
		}
	}
	queryVec := vectors[0]

	results := make([]Result, 0, len(candidates))
	for _, u := range candidates {
		results = append(results, Result{
			TextUnit: u.TextUnit,
			Distance: SquaredEuclidean(queryVec, u.Embedding),
		})
	}

	// Stable sort keeps insertion order for equal distances.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// restrict filters the index to units from the candidate documents,
// preserving insertion order.
func restrict(idx *index.SearchIndex, candidateIDs map[string]struct{}) []index.EmbeddedUnit {
	units := idx.Units()
	if len(candidateIDs) == 0 {
		return units
	}

	filtered := make([]index.EmbeddedUnit, 0, len(units))
	for _, u := range units {
		if _, ok := candidateIDs[u.DocumentID]; ok {
			filtered = append(filtered, u)
		}
	}
	return filtered
}
