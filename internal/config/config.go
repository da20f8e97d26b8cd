// Package config provides configuration loading and structs for the Harmonia server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Recommend RecommendConfig `yaml:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CatalogConfig holds the song catalog source settings.
// Path may point at a .csv or .xlsx file; Sheet selects the worksheet for
// spreadsheet catalogs (first sheet when empty).
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
}

// StorageConfig holds the favorites database path.
type StorageConfig struct {
	FavoritesDBPath string `yaml:"favorites_db_path"`
}

// EmbeddingConfig holds embedder settings. Provider selects the backend:
// "hash" (deterministic, no external dependencies), "onnx" (local ONNX model,
// requires CGO), or "ollama" (Ollama server).
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	ModelPath   string `yaml:"model_path"`
	Dimensions  int    `yaml:"dimensions"`
	MaxTokens   int    `yaml:"max_tokens"`
	CacheSize   int    `yaml:"cache_size"`
	OllamaHost  string `yaml:"ollama_host"`
	OllamaModel string `yaml:"ollama_model"`
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	TopK                int     `yaml:"top_k"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// RecommendConfig holds recommendation settings.
type RecommendConfig struct {
	Limit int `yaml:"limit"`
}

// Load reads and parses the config file at path, applies defaults, and expands
// relative paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)
	cfg.Storage.FavoritesDBPath = expandPath(cfg.Storage.FavoritesDBPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
