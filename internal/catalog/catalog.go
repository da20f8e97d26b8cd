// Package catalog loads the song dataset and provides field-level lookups.
package catalog

import (
	"fmt"
	"strings"

	"github.com/harmonia-chat/harmonia/internal/models"
)

// Catalog is the immutable set of songs the system answers about. It is built
// once at startup; concurrent readers need no locking.
type Catalog struct {
	rows    []models.Song
	byTitle map[string]int
}

// New builds a catalog from rows. An empty dataset is a fatal startup
// condition and returns an error.
func New(rows []models.Song) (*Catalog, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	byTitle := make(map[string]int, len(rows))
	for i, row := range rows {
		key := strings.ToLower(row.Title)
		if _, exists := byTitle[key]; !exists {
			byTitle[key] = i
		}
	}
	return &Catalog{rows: rows, byTitle: byTitle}, nil
}

// All returns all songs in dataset order. The returned slice must not be modified.
func (c *Catalog) All() []models.Song {
	return c.rows
}

// Len returns the number of songs.
func (c *Catalog) Len() int {
	return len(c.rows)
}

// GetByExactTitle returns the song whose title equals title, case-insensitively.
// The first matching dataset row wins when titles collide.
func (c *Catalog) GetByExactTitle(title string) (models.Song, bool) {
	idx, ok := c.byTitle[strings.ToLower(title)]
	if !ok {
		return models.Song{}, false
	}
	return c.rows[idx], true
}

// SearchByTitle returns all songs whose title contains q, case-insensitively.
func (c *Catalog) SearchByTitle(q string) []models.Song {
	return c.filter(q, func(s models.Song) string { return s.Title })
}

// SearchByAuthor returns all songs whose author contains q, case-insensitively.
func (c *Catalog) SearchByAuthor(q string) []models.Song {
	return c.filter(q, func(s models.Song) string { return s.Author })
}

// SearchByGenre returns all songs whose genre contains q, case-insensitively.
func (c *Catalog) SearchByGenre(q string) []models.Song {
	return c.filter(q, func(s models.Song) string { return s.Genre })
}

// SearchByMood returns all songs whose mood contains q, case-insensitively.
func (c *Catalog) SearchByMood(q string) []models.Song {
	return c.filter(q, func(s models.Song) string { return s.Mood })
}

func (c *Catalog) filter(q string, field func(models.Song) string) []models.Song {
	qLower := strings.ToLower(strings.TrimSpace(q))
	if qLower == "" {
		return nil
	}
	var out []models.Song
	for _, row := range c.rows {
		if strings.Contains(strings.ToLower(field(row)), qLower) {
			out = append(out, row)
		}
	}
	return out
}

// Genres returns the distinct genres in first-seen dataset order.
func (c *Catalog) Genres() []string {
	return c.distinct(func(s models.Song) string { return s.Genre })
}

// Moods returns the distinct moods in first-seen dataset order.
func (c *Catalog) Moods() []string {
	return c.distinct(func(s models.Song) string { return s.Mood })
}

func (c *Catalog) distinct(field func(models.Song) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range c.rows {
		v := field(row)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
