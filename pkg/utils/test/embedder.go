package testutils

import (
	"context"
	"fmt"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	TextEmbeddings  map[string][]float32
	ImageEmbeddings map[string][]float32

	// Default is returned for inputs with no configured embedding.
	Default []float32

	// FailOnText causes EmbedText to return an error when the input matches
	FailOnText string

	// FailImages causes EmbedImage to always return an error
	FailImages bool
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		TextEmbeddings:  make(map[string][]float32),
		ImageEmbeddings: make(map[string][]float32),
		Default:         []float32{0.1, 0.2, 0.3},
	}
}

func (m *MockEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if m.FailOnText != "" && text == m.FailOnText {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.TextEmbeddings[text]; ok {
		return emb, nil
	}

	return m.Default, nil
}

func (m *MockEmbedder) EmbedImage(_ context.Context, image []byte) ([]float32, error) {
	if m.FailImages {
		return nil, fmt.Errorf("mock image embedding failure")
	}

	if emb, ok := m.ImageEmbeddings[string(image)]; ok {
		return emb, nil
	}

	return m.Default, nil
}

func (m *MockEmbedder) Close() error {
	return nil
}
