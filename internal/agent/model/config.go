package model

// ================ Config ================
type ResolverModelConfig struct {
	Model       string  `envconfig:"RESOLVER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"RESOLVER_MAX_TOKENS" default:"512"`
	Temperature float32 `envconfig:"RESOLVER_TEMPERATURE" default:"0.0"`
}

type ComposerModelConfig struct {
	Model       string  `envconfig:"COMPOSER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"COMPOSER_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"COMPOSER_TEMPERATURE" default:"0.2"`
}

type EmbeddingModelConfig struct {
	Model      string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	Dimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`
}

type PipelineConfig struct {
	RetrievalK int `envconfig:"PIPELINE_RETRIEVAL_K" default:"5"`
}

type CacheConfig struct {
	TTL     string `envconfig:"ANSWER_CACHE_TTL" default:"10m"`
	Enabled bool   `envconfig:"ANSWER_CACHE_ENABLED" default:"true"`
}

type StorageConfig struct {
	Path string `envconfig:"SQLITE_PATH" default:"data/budget.db"`
}
