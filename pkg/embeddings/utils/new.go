// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/echoguardhq/echoguard/pkg/embeddings"
	"github.com/echoguardhq/echoguard/pkg/embeddings/clip"
	"github.com/echoguardhq/echoguard/pkg/embeddings/fallback"
	"github.com/echoguardhq/echoguard/pkg/embeddings/ollama"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	Dimensions   uint
}

// NewEmbedder constructs the configured embedding provider.
func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "clip":
		return clip.NewEmbedder(clip.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "ollama":
		return ollama.NewEmbedder(ollama.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "fallback":
		return fallback.NewEmbedder(o.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
