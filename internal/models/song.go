// Package models defines core data structures for songs, chat results, and evaluations.
package models

import (
	"fmt"
	"strconv"
)

// Song is one catalog row. Rows are built once at startup and never mutated.
type Song struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	Mood   string `json:"mood"`
	Year   int    `json:"year"`
}

// Rendering returns the canonical text form of the song used for embedding.
// Retrieval quality depends on this exact template; do not reorder or reformat.
func (s Song) Rendering() string {
	return fmt.Sprintf("Song: %s by %s - Genre: %s - Mood: %s - Year: %d",
		s.Title, s.Author, s.Genre, s.Mood, s.Year)
}

// FieldText returns all field values joined by single spaces, in column order.
// Used by the substring fallback search and the evaluator.
func (s Song) FieldText() string {
	return fmt.Sprintf("%s %s %s %s %d", s.Title, s.Author, s.Genre, s.Mood, s.Year)
}

// Fields returns the individual field values as strings, in column order.
func (s Song) Fields() []string {
	return []string{s.Title, s.Author, s.Genre, s.Mood, strconv.Itoa(s.Year)}
}

// RetrievedSong is a catalog row returned by the retriever, annotated with the
// similarity score that admitted it. Fallback substring matches carry a fixed
// sentinel score and the name of the field that matched.
type RetrievedSong struct {
	Song
	SimilarityScore float64 `json:"similarity_score"`
	MatchedField    string  `json:"matched_field,omitempty"`
}
