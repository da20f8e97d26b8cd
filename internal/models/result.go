package models

import "time"

// ChatResult is the response for one processed query.
type ChatResult struct {
	Query      string          `json:"query"`
	Response   string          `json:"response"`
	Intent     Intent          `json:"intent"`
	Citation   string          `json:"citation,omitempty"`
	Retrieved  []RetrievedSong `json:"retrieved_docs"`
	Evaluation Evaluation      `json:"evaluation"`
	TraceID    string          `json:"trace_id"`
	SessionID  string          `json:"session_id"`
	Timestamp  time.Time       `json:"timestamp"`
}
