// Package main is the Harmonia CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/harmonia-chat/harmonia/internal/catalog"
	"github.com/harmonia-chat/harmonia/internal/chat"
	"github.com/harmonia-chat/harmonia/internal/cli"
	"github.com/harmonia-chat/harmonia/internal/config"
	"github.com/harmonia-chat/harmonia/internal/embedding"
	"github.com/harmonia-chat/harmonia/internal/eval"
	"github.com/harmonia-chat/harmonia/internal/favorites"
	"github.com/harmonia-chat/harmonia/internal/models"
	"github.com/harmonia-chat/harmonia/internal/recommend"
	"github.com/harmonia-chat/harmonia/internal/retrieval"
	"github.com/harmonia-chat/harmonia/internal/server"
	"github.com/harmonia-chat/harmonia/internal/trace"
	"github.com/harmonia-chat/harmonia/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/harmonia/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "harmonia server" from the project dir uses the
// project's config (including debug).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Environment overrides (OLLAMA_HOST etc.) may live in a local .env.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "songs":
		runSongs()
	case "recommend":
		runRecommend()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("harmonia version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds everything a running instance needs.
type Components struct {
	Catalog     *catalog.Catalog
	Embedder    embedding.Embedder
	Retriever   *retrieval.Retriever
	Store       *favorites.Store
	Recommender *recommend.Recommender
	Pipeline    *chat.Pipeline
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("catalog loaded", zap.Int("songs", cat.Len()))

	embedder, err := embedding.NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	idx, err := retrieval.BuildIndex(context.Background(), cat, embedder)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to build index: %w", err)
	}
	retriever := retrieval.NewRetriever(idx, embedder, logger)

	store, err := favorites.Open(cfg.Storage.FavoritesDBPath)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to open favorites store: %w", err)
	}

	recommender := recommend.New(cat, store, rand.NewSource(time.Now().UnixNano()))

	pipeline := chat.New(cat, retriever, store, recommender, eval.New(), trace.NewTracer(),
		chat.Options{
			TopK:                cfg.Retrieval.TopK,
			SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
			RecommendLimit:      cfg.Recommend.Limit,
		}, logger)

	return &Components{
		Catalog:     cat,
		Embedder:    embedder,
		Retriever:   retriever,
		Store:       store,
		Recommender: recommender,
		Pipeline:    pipeline,
	}, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Sheet != "" && strings.EqualFold(filepath.Ext(cfg.Catalog.Path), ".xlsx") {
		return catalog.LoadSheet(cfg.Catalog.Path, cfg.Catalog.Sheet)
	}
	return catalog.Load(cfg.Catalog.Path)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Pipeline,
		components.Catalog,
		components.Store,
		components.Recommender,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = run the pipeline in-process)")
	userID := fs.String("user", "", "user ID for favorites and personalized answers")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: harmonia ask [flags] <query>")
		os.Exit(1)
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: harmonia ask [flags] <query>")
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	if *serverURL != "" {
		result, err := askViaHTTP(*serverURL, query, *userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Chat failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteChatResult(os.Stdout, result, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	result := components.Pipeline.Process(context.Background(), query, *userID)
	if err := cli.WriteChatResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL, query, userID string) (*models.ChatResult, error) {
	payload, err := json.Marshal(map[string]string{"query": query, "user_id": userID})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/chat", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var result models.ChatResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func runSongs() {
	fs := flag.NewFlagSet("songs", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	genre := fs.String("genre", "", "filter by genre substring")
	mood := fs.String("mood", "", "filter by mood substring")
	author := fs.String("author", "", "filter by author substring")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		os.Exit(1)
	}

	songs := cat.All()
	switch {
	case *genre != "":
		songs = cat.SearchByGenre(*genre)
	case *mood != "":
		songs = cat.SearchByMood(*mood)
	case *author != "":
		songs = cat.SearchByAuthor(*author)
	}

	format := cli.OutputText
	if *outputFormat == "json" {
		format = cli.OutputJSON
	}
	if err := cli.WriteSongs(os.Stdout, songs, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	mood := fs.String("mood", "", "recommend by mood")
	userID := fs.String("user", "", "recommend from this user's favorites")
	limit := fs.Int("limit", 0, "number of recommendations (default from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	n := cfg.Recommend.Limit
	if *limit > 0 {
		n = *limit
	}

	ctx := context.Background()
	var recs []models.Song
	switch {
	case *mood != "":
		recs, err = components.Recommender.ByMood(ctx, *mood, *userID, n)
	case *userID != "":
		recs, err = components.Recommender.ByUserPreference(ctx, *userID, n)
	default:
		recs = components.Recommender.Diverse(n)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recommendation failed: %v\n", err)
		os.Exit(1)
	}

	format := cli.OutputText
	if *outputFormat == "json" {
		format = cli.OutputJSON
	}
	if err := cli.WriteSongs(os.Stdout, recs, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read response: %v\n", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}

func printUsage() {
	fmt.Println(`harmonia - song catalog chatbot with retrieval, evaluation, and recommendations

Usage:
  harmonia server [flags]             Start the HTTP server
  harmonia ask [flags] <query>        Ask the chatbot a question
  harmonia songs [flags]              List catalog songs
  harmonia recommend [flags]          Get song recommendations
  harmonia status [flags]             Show server status
  harmonia version                    Show version
  harmonia help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/harmonia/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --config string    Config file path (for in-process mode)
  --server string    Server URL (empty = run the pipeline in-process)
  --user string      User ID for favorites and personalized answers
  --output string    Output format: text or json (default: text)

Songs Flags:
  --genre string     Filter by genre substring
  --mood string      Filter by mood substring
  --author string    Filter by author substring
  --output string    Output format: text or json (default: text)

Recommend Flags:
  --mood string      Recommend by mood
  --user string      Recommend from this user's favorites
  --limit int        Number of recommendations (default from config)
  --output string    Output format: text or json (default: text)

Examples:
  harmonia server
  harmonia ask "who wrote Imagine?"
  harmonia ask --user alice "add Imagine to my favorites"
  harmonia songs --genre rock
  harmonia recommend --mood happy
  harmonia status`)
}
