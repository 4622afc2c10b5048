// Package clip implements pkg/embeddings' Embedder against a CLIP sidecar
// service that exposes /embed/text and /embed/image endpoints. CLIP maps
// images and text into the same vector space, which is what makes the
// fused-query search multimodal.
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/echoguardhq/echoguard/pkg/embeddings"
	"github.com/echoguardhq/echoguard/pkg/vector"
)

const (
	// DefaultBaseURL is the default CLIP sidecar URL.
	DefaultBaseURL = "http://localhost:8090"

	// DefaultModel is the default CLIP variant.
	DefaultModel = "ViT-B-32"
)

// Embedder wraps the CLIP sidecar's embedding API.
type Embedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Config holds configuration for the CLIP embedder.
type Config struct {
	// BaseURL is the sidecar URL (e.g. "http://localhost:8090").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the CLIP variant to request. Defaults to DefaultModel.
	Model string
}

type embedTextRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

type embedImageRequest struct {
	Model string `json:"model"`
	// Image is the base64-encoded image bytes.
	Image string `json:"image"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewEmbedder creates an embedder backed by the CLIP sidecar.
func NewEmbedder(cfg Config) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Embedder{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// EmbedText converts a text description into a vector embedding.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, "/embed/text", embedTextRequest{Model: e.model, Text: text})
}

// EmbedImage converts raw image bytes into a vector embedding.
func (e *Embedder) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	return e.embed(ctx, "/embed/image", embedImageRequest{
		Model: e.model,
		Image: base64.StdEncoding.EncodeToString(image),
	})
}

func (e *Embedder) embed(ctx context.Context, path string, reqBody any) ([]float32, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", vector.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", vector.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", vector.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: clip sidecar returned status %d: %s", vector.ErrEmbedding, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", vector.ErrEmbedding, err)
	}

	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", vector.ErrEmbedding)
	}

	return embedResp.Embedding, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// Ensure Embedder implements embeddings.Embedder.
var _ embeddings.Embedder = (*Embedder)(nil)
