package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "/usr/local/var/harmonia/data/songs_dataset.csv"
	}
	if cfg.Storage.FavoritesDBPath == "" {
		cfg.Storage.FavoritesDBPath = "/usr/local/var/harmonia/data/db/favorites.db"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "hash"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/harmonia/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.OllamaModel == "" {
		cfg.Embedding.OllamaModel = "nomic-embed-text"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.SimilarityThreshold == 0 {
		cfg.Retrieval.SimilarityThreshold = 0.3
	}
	if cfg.Recommend.Limit == 0 {
		cfg.Recommend.Limit = 5
	}
}
