package config

const (
	defaultStorageProvider = "sqlite"
	defaultAPIListen       = ":8787"

	defaultClientAPITarget = "http://localhost:8787"

	defaultVectorProvider   = "sqlite"
	defaultVectorCollection = "notes"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingDimensions = 768

	defaultChatProvider = "ollama"

	defaultSimilarityCutoff = 0.75
	defaultPartialFailure   = "surface"

	defaultEventsProvider = "none"
	defaultEventsTopic    = "ragnotes.notes"

	defaultImportWorkers   = 3
	defaultImportQueueSize = 256
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. Model and target
// are left empty so each provider applies its own default.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
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
			Dimensions: defaultEmbeddingDimensions,
		},
		Chat: ChatConfig{
			Provider: defaultChatProvider,
		},
		RAG: RAGConfig{
			SimilarityCutoff: defaultSimilarityCutoff,
			OnPartialFailure: defaultPartialFailure,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Import: ImportConfig{
			Workers:   defaultImportWorkers,
			QueueSize: defaultImportQueueSize,
		},
	}
}
