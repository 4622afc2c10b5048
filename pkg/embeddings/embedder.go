// Package embeddings
package embeddings

import "context"

// Embedder provides image and text embedding capabilities. Both inputs map
// into the same D-dimensional space so their vectors can be fused into one
// query vector.
type Embedder interface {
	// EmbedText converts a text description into a vector embedding.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedImage converts raw image bytes into a vector embedding.
	EmbedImage(ctx context.Context, image []byte) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
