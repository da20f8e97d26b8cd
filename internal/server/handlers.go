package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/harmonia-chat/harmonia/internal/eval"
)

type chatRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.logger.Debug("chat request", zap.String("query", req.Query), zap.String("user_id", req.UserID))
	result := s.pipeline.Process(r.Context(), req.Query, req.UserID)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs := s.catalog.All()
	// Optional field filters, e.g. ?genre=rock or ?mood=happy.
	if title := r.URL.Query().Get("title"); title != "" {
		songs = s.catalog.SearchByTitle(title)
	} else if genre := r.URL.Query().Get("genre"); genre != "" {
		songs = s.catalog.SearchByGenre(genre)
	} else if mood := r.URL.Query().Get("mood"); mood != "" {
		songs = s.catalog.SearchByMood(mood)
	} else if author := r.URL.Query().Get("author"); author != "" {
		songs = s.catalog.SearchByAuthor(author)
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"songs": songs,
		"count": len(songs),
	})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	song, ok := s.catalog.GetByExactTitle(title)
	if !ok {
		if partial := s.catalog.SearchByTitle(title); len(partial) > 0 {
			song, ok = partial[0], true
		}
	}
	if !ok {
		s.respondError(w, http.StatusNotFound, "song not found")
		return
	}
	s.respondJSON(w, http.StatusOK, song)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	songs, err := s.store.List(r.Context(), userID)
	if err != nil {
		s.logger.Error("list favorites failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   userID,
		"favorites": songs,
		"count":     len(songs),
	})
}

type addFavoriteRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	song, ok := s.catalog.GetByExactTitle(req.Title)
	if !ok {
		s.respondError(w, http.StatusNotFound, "song not found")
		return
	}

	added, err := s.store.Add(r.Context(), userID, song)
	if err != nil {
		s.logger.Error("add favorite failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusCreated
	if !added {
		status = http.StatusOK
	}
	s.respondJSON(w, status, map[string]interface{}{
		"song":  song,
		"added": added,
	})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	title := chi.URLParam(r, "title")

	removed, err := s.store.Remove(r.Context(), userID, title)
	if err != nil {
		s.logger.Error("remove favorite failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		s.respondError(w, http.StatusNotFound, "favorite not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleClearFavorites(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	n, err := s.store.Clear(r.Context(), userID)
	if err != nil {
		s.logger.Error("clear favorites failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "cleared", "removed": n})
}

func (s *Server) handleCountFavorites(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	n, err := s.store.Count(r.Context(), userID)
	if err != nil {
		s.logger.Error("count favorites failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"user_id": userID, "count": n})
}

func (s *Server) handleMoodRecommendations(w http.ResponseWriter, r *http.Request) {
	mood := chi.URLParam(r, "mood")
	userID := r.URL.Query().Get("user_id")
	limit := queryLimit(r, 5)

	recs, err := s.recommender.ByMood(r.Context(), mood, userID, limit)
	if err != nil {
		s.logger.Error("mood recommendations failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"mood":            mood,
		"recommendations": recs,
		"count":           len(recs),
	})
}

func (s *Server) handleUserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit := queryLimit(r, 5)

	recs, err := s.recommender.ByUserPreference(r.Context(), userID, limit)
	if err != nil {
		s.logger.Error("user recommendations failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":         userID,
		"recommendations": recs,
		"count":           len(recs),
	})
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	prefs, err := s.recommender.AnalyzePreferences(r.Context(), userID)
	if err != nil {
		s.logger.Error("preference analysis failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if prefs == nil {
		s.respondError(w, http.StatusNotFound, "no favorites found for analysis")
		return
	}
	s.respondJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleSessionAnalytics(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.pipeline.Tracer().Summarize())
}

func (s *Server) handleEvaluationReport(w http.ResponseWriter, r *http.Request) {
	report := eval.BuildReport(s.pipeline.Tracer().Evaluations())
	s.respondJSON(w, http.StatusOK, report)
}

type exportRequest struct {
	Path string `json:"path,omitempty"`
}

func (s *Server) handleExportTraces(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	// Body is optional; an empty path gets a generated file name.
	_ = json.NewDecoder(r.Body).Decode(&req)

	path, err := s.pipeline.Tracer().Export(req.Path)
	if err != nil {
		s.logger.Error("trace export failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"path": path, "status": "exported"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.AllUsers(r.Context())
	if err != nil {
		s.logger.Error("status: list users failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"songs":      s.catalog.Len(),
		"genres":     s.catalog.Genres(),
		"moods":      s.catalog.Moods(),
		"users":      len(users),
		"session_id": s.pipeline.Tracer().SessionID(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryLimit(r *http.Request, fallback int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
