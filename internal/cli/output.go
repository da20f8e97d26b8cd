// Package cli provides output helpers for the harmonia command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/harmonia-chat/harmonia/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteChatResult writes a chat result to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteChatResult(w io.Writer, result *models.ChatResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeChatResultText(w, result)
		return nil
	}
}

func writeChatResultText(w io.Writer, result *models.ChatResult) {
	fmt.Fprintf(w, "\n%s\n", result.Response)
	if result.Citation != "" {
		fmt.Fprintf(w, "\n%s\n", result.Citation)
	}
	fmt.Fprintf(w, "\n[intent: %s | quality: %s | factuality: %.2f | trace: %s]\n",
		result.Intent, result.Evaluation.ResponseQuality, result.Evaluation.FactualityScore, result.TraceID)
}

// WriteSongs writes a song list to w in the given format.
func WriteSongs(w io.Writer, songs []models.Song, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(songs)
	default:
		if len(songs) == 0 {
			fmt.Fprintln(w, "No songs found.")
			return nil
		}
		for i, s := range songs {
			fmt.Fprintf(w, "%d. %s by %s (%s, %s, %d)\n", i+1, s.Title, s.Author, s.Genre, s.Mood, s.Year)
		}
		return nil
	}
}
