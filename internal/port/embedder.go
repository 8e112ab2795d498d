package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension. It is fixed per
	// (provider, model) and must be known before the vector store's
	// collection is created.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
