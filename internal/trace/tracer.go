// Package trace records the pipeline steps of every chat query for session
// analytics and export.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-chat/harmonia/internal/models"
)

// Event types.
const (
	TypeQuery          = "query"
	TypeRetrieval      = "retrieval"
	TypeResponse       = "response"
	TypeEvaluation     = "evaluation"
	TypeRecommendation = "recommendation"
	TypeFavorites      = "favorites"
)

// Event is one recorded pipeline step.
type Event struct {
	TraceID   string         `json:"trace_id"`
	SessionID string         `json:"session_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Tracer collects events for one session. It is safe for concurrent use; the
// event log is append-only.
type Tracer struct {
	sessionID string

	mu     sync.Mutex
	events []Event
	evals  []models.Evaluation
}

// NewTracer starts a session.
func NewTracer() *Tracer {
	return &Tracer{sessionID: "session_" + uuid.NewString()}
}

// SessionID returns the session identifier.
func (t *Tracer) SessionID() string {
	return t.sessionID
}

// LogQuery records a user query and returns a fresh trace ID for the
// pipeline steps that follow.
func (t *Tracer) LogQuery(query, userID string) string {
	traceID := "trace_" + uuid.NewString()
	t.append(traceID, TypeQuery, map[string]any{
		"query":   query,
		"user_id": userID,
	})
	return traceID
}

// LogRetrieval records the songs retrieved for a query.
func (t *Tracer) LogRetrieval(traceID, query string, retrieved []models.RetrievedSong) {
	t.append(traceID, TypeRetrieval, map[string]any{
		"query":          query,
		"retrieved_docs": retrieved,
		"num_docs":       len(retrieved),
	})
}

// LogResponse records the composed response.
func (t *Tracer) LogResponse(traceID, response string) {
	t.append(traceID, TypeResponse, map[string]any{
		"response":        response,
		"response_length": len(response),
	})
}

// LogEvaluation records the evaluation of a response and retains it for
// session reporting.
func (t *Tracer) LogEvaluation(traceID string, evaluation models.Evaluation) {
	t.mu.Lock()
	t.evals = append(t.evals, evaluation)
	t.mu.Unlock()
	t.append(traceID, TypeEvaluation, map[string]any{
		"evaluation": evaluation,
	})
}

// LogRecommendation records generated recommendations. kind is "mood" or
// "preference".
func (t *Tracer) LogRecommendation(traceID, userID, kind string, recommendations []models.Song) {
	t.append(traceID, TypeRecommendation, map[string]any{
		"user_id":             userID,
		"recommendation_type": kind,
		"recommendations":     recommendations,
		"num_recommendations": len(recommendations),
	})
}

// LogFavoritesAction records a favorites change or read. action is "add",
// "get", "remove", or "clear".
func (t *Tracer) LogFavoritesAction(traceID, userID, action string, song *models.Song) {
	payload := map[string]any{
		"user_id": userID,
		"action":  action,
	}
	if song != nil {
		payload["song"] = song
	}
	t.append(traceID, TypeFavorites, payload)
}

func (t *Tracer) append(traceID, eventType string, payload map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, Event{
		TraceID:   traceID,
		SessionID: t.sessionID,
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

// Events returns a copy of all recorded events in order.
func (t *Tracer) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Event(nil), t.events...)
}

// EventsByTrace returns the events recorded under traceID.
func (t *Tracer) EventsByTrace(traceID string) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Event
	for _, e := range t.events {
		if e.TraceID == traceID {
			out = append(out, e)
		}
	}
	return out
}

// Evaluations returns a copy of every evaluation logged this session.
func (t *Tracer) Evaluations() []models.Evaluation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Evaluation(nil), t.evals...)
}

// Export writes all recorded events to path as indented JSON. An empty path
// picks a timestamped file name in the working directory. It returns the
// path written.
func (t *Tracer) Export(path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("traces_%s.json", time.Now().Format("20060102_150405"))
	}

	data, err := json.MarshalIndent(t.Events(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal traces: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write traces: %w", err)
	}
	return path, nil
}

// Summary aggregates session activity.
type Summary struct {
	SessionID      string         `json:"session_id"`
	TotalEvents    int            `json:"total_events"`
	ActivityCounts map[string]int `json:"activity_counts"`
	UniqueUsers    []string       `json:"unique_users"`
	StartTime      *time.Time     `json:"start_time,omitempty"`
	EndTime        *time.Time     `json:"end_time,omitempty"`
}

// Summarize returns activity counts, users, and the session time range.
func (t *Tracer) Summarize() Summary {
	events := t.Events()
	s := Summary{
		SessionID:      t.sessionID,
		TotalEvents:    len(events),
		ActivityCounts: make(map[string]int),
	}
	seen := make(map[string]bool)
	for _, e := range events {
		s.ActivityCounts[e.Type]++
		if id, ok := e.Payload["user_id"].(string); ok && id != "" && !seen[id] {
			seen[id] = true
			s.UniqueUsers = append(s.UniqueUsers, id)
		}
	}
	if len(events) > 0 {
		start := events[0].Timestamp
		end := events[len(events)-1].Timestamp
		s.StartTime = &start
		s.EndTime = &end
	}
	return s
}
