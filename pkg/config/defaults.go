package config

const (
	defaultAPIListen       = ":8081"
	defaultClientAPITarget = "http://localhost:8081"

	defaultVectorProvider   = "sqlite"
	defaultVectorCollection = "crisis_incidents"

	defaultEmbeddingProvider   = "clip"
	defaultEmbeddingTarget     = "http://localhost:8090"
	defaultEmbeddingModel      = "ViT-B-32"
	defaultEmbeddingDimensions = 512

	defaultTopK           = 3
	defaultMinScore       = 0.0
	defaultImageWeight    = 0.6
	defaultWindowHours    = 24.0
	defaultSpanMultiplier = 3.0
	defaultDecayFloor     = 0.3

	defaultEventsTopic = "echoguard.decisions"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Collection: defaultVectorCollection,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Matching: MatchingConfig{
			TopK:           defaultTopK,
			MinScore:       defaultMinScore,
			ImageWeight:    defaultImageWeight,
			WindowHours:    defaultWindowHours,
			SpanMultiplier: defaultSpanMultiplier,
			DecayFloor:     defaultDecayFloor,
		},
		Events: EventsConfig{
			Enabled: false,
			Topic:   defaultEventsTopic,
		},
	}
}
