package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/harmonia-chat/harmonia/internal/catalog"
	"github.com/harmonia-chat/harmonia/internal/chat"
	"github.com/harmonia-chat/harmonia/internal/config"
	"github.com/harmonia-chat/harmonia/internal/embedding"
	"github.com/harmonia-chat/harmonia/internal/eval"
	"github.com/harmonia-chat/harmonia/internal/favorites"
	"github.com/harmonia-chat/harmonia/internal/models"
	"github.com/harmonia-chat/harmonia/internal/recommend"
	"github.com/harmonia-chat/harmonia/internal/retrieval"
	"github.com/harmonia-chat/harmonia/internal/trace"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cat, err := catalog.New([]models.Song{
		{Title: "Imagine", Author: "John Lennon", Genre: "Rock", Mood: "peaceful", Year: 1971},
		{Title: "Billie Jean", Author: "Michael Jackson", Genre: "Pop", Mood: "energetic", Year: 1982},
		{Title: "Happy", Author: "Pharrell Williams", Genre: "Pop", Mood: "happy", Year: 2013},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	embedder := embedding.NewHashEmbedder(64, 64)
	idx, err := retrieval.BuildIndex(context.Background(), cat, embedder)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	retriever := retrieval.NewRetriever(idx, embedder, nil)

	store, err := favorites.Open(filepath.Join(t.TempDir(), "favorites.db"))
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	recommender := recommend.New(cat, store, rand.NewSource(1))
	pipeline := chat.New(cat, retriever, store, recommender, eval.New(), trace.NewTracer(),
		chat.Options{TopK: 3, SimilarityThreshold: 0.3, RecommendLimit: 5}, nil)

	return NewServer(pipeline, cat, store, recommender, &config.ServerConfig{Port: 8080}, zap.NewNop())
}

func TestHandleChat(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	body := bytes.NewBufferString(`{"query": "who wrote Imagine?"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/chat", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out models.ChatResult
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Response != "'Imagine' was written/performed by John Lennon." {
		t.Errorf("response: got %q", out.Response)
	}
	if out.Intent != models.IntentSearchSong {
		t.Errorf("intent: got %v", out.Intent)
	}
	if out.TraceID == "" {
		t.Error("missing trace id")
	}
}

func TestHandleChatBadRequest(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(`not json`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(`{}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty query status: got %d", w.Code)
	}
}

func TestHandleListSongs(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/songs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Songs []models.Song `json:"songs"`
		Count int           `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 3 {
		t.Errorf("count: got %d, want 3", out.Count)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/songs?genre=pop", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 {
		t.Errorf("pop count: got %d, want 2", out.Count)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/songs?title=billie", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Songs[0].Title != "Billie Jean" {
		t.Errorf("title filter: got count %d", out.Count)
	}
}

func TestHandleGetSong(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/songs/Imagine", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var song models.Song
	if err := json.NewDecoder(w.Body).Decode(&song); err != nil {
		t.Fatal(err)
	}
	if song.Author != "John Lennon" {
		t.Errorf("author: got %q", song.Author)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/songs/Unknown", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown song status: got %d", w.Code)
	}
}

func TestFavoritesEndpoints(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	// Add.
	body := bytes.NewBufferString(`{"title": "Imagine"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/favorites/user1", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("add status: got %d", w.Code)
	}

	// Duplicate add returns 200.
	body = bytes.NewBufferString(`{"title": "Imagine"}`)
	r = httptest.NewRequest(http.MethodPost, "/api/v1/favorites/user1", body)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("duplicate add status: got %d", w.Code)
	}

	// List.
	r = httptest.NewRequest(http.MethodGet, "/api/v1/favorites/user1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	var out struct {
		Favorites []models.Song `json:"favorites"`
		Count     int           `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 {
		t.Fatalf("favorites count: got %d, want 1", out.Count)
	}

	// Count.
	r = httptest.NewRequest(http.MethodGet, "/api/v1/favorites/user1/count", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	var countOut struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&countOut); err != nil {
		t.Fatal(err)
	}
	if countOut.Count != 1 {
		t.Errorf("count endpoint: got %d, want 1", countOut.Count)
	}

	// Remove.
	r = httptest.NewRequest(http.MethodDelete, "/api/v1/favorites/user1/Imagine", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("remove status: got %d", w.Code)
	}

	// Remove again is a 404.
	r = httptest.NewRequest(http.MethodDelete, "/api/v1/favorites/user1/Imagine", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("second remove status: got %d", w.Code)
	}
}

func TestHandleAddFavoriteUnknownSong(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	body := bytes.NewBufferString(`{"title": "Nope"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/favorites/user1", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestHandleMoodRecommendations(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/mood/energetic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Recommendations []models.Song `json:"recommendations"`
		Count           int           `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Recommendations[0].Title != "Billie Jean" {
		t.Errorf("recommendations: got %v", out.Recommendations)
	}
}

func TestHandleSessionAnalytics(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	// Run one chat so the session has activity.
	body := bytes.NewBufferString(`{"query": "who wrote Imagine?"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/chat", body)
	router.ServeHTTP(httptest.NewRecorder(), r)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/analytics/session", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var summary trace.Summary
	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatal(err)
	}
	if summary.TotalEvents == 0 {
		t.Error("no trace events recorded")
	}
}

func TestHandleEvaluationReport(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	body := bytes.NewBufferString(`{"query": "who wrote Imagine?"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/chat", body)
	router.ServeHTTP(httptest.NewRecorder(), r)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/analytics/evaluations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	var report eval.Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.TotalEvaluations != 1 {
		t.Errorf("total evaluations: got %d, want 1", report.TotalEvaluations)
	}
}

func TestHandleStatusAndHealth(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Songs     int    `json:"songs"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Songs != 3 {
		t.Errorf("songs: got %d, want 3", out.Songs)
	}

	r = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("health status: got %d", w.Code)
	}
}

func TestHandleExportTraces(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	path := filepath.Join(t.TempDir(), "traces.json")
	body, _ := json.Marshal(map[string]string{"path": path})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/traces/export", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Path != path {
		t.Errorf("path: got %q, want %q", out.Path, path)
	}
}
