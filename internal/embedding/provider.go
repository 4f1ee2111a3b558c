package embedding

import "context"

// Provider generates embeddings from text. Implementations wrap an
// external pretrained encoder; this package never computes vectors itself.
type Provider interface {
	// EmbedBatch generates one embedding per input text, in order.
	// The returned slice always has the same length as texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}
