// Package compose renders chat responses and citations from retrieved songs.
// Every response is assembled from catalog facts; nothing is generated
// free-form, which keeps responses verifiable against the dataset.
package compose

import (
	"fmt"
	"strings"

	"github.com/harmonia-chat/harmonia/internal/models"
)

// Clarification and fallback messages.
const (
	MsgNeedSongTitle    = "I need to know which song you're asking about. Please specify the song title."
	MsgNeedFavoriteSong = "I need to know which song to add to your favorites. Please specify the song title."
	MsgNeedUserIDSave   = "I need your user ID to save favorites. Please provide a user ID."
	MsgNeedUserIDShow   = "I need your user ID to show your favorites. Please provide a user ID."
	MsgNoFavorites      = "You don't have any favorite songs yet. Try asking me to add some songs to your favorites!"
	MsgNoRecommendation = "I don't have any recommendations for you right now. Try adding some songs to your favorites first!"
)

// NotFound is the response when a named song is not in the catalog.
func NotFound(title string) string {
	return fmt.Sprintf("Sorry, I don't have information about '%s' in my dataset.", title)
}

// GeneralNotFound is the response when a general query retrieves nothing.
func GeneralNotFound(query string) string {
	return fmt.Sprintf("Sorry, I don't have information about '%s' in my dataset. Please try asking about a specific song, artist, genre, or mood.", query)
}

// CannotAddUnknown is the response when the song to favorite is not in the catalog.
func CannotAddUnknown(title string) string {
	return fmt.Sprintf("Sorry, I don't have '%s' in my dataset, so I can't add it to your favorites.", title)
}

// SongInfo answers a song search. The answer covers only the fact the query
// asked for; a query naming no particular fact gets the full profile.
func SongInfo(query string, song models.Song) string {
	queryLower := strings.ToLower(query)
	switch {
	case strings.Contains(queryLower, "who wrote") ||
		strings.Contains(queryLower, "who sang") ||
		strings.Contains(queryLower, "author"):
		return fmt.Sprintf("'%s' was written/performed by %s.", song.Title, song.Author)
	case strings.Contains(queryLower, "genre"):
		return fmt.Sprintf("'%s' is a %s song.", song.Title, song.Genre)
	case strings.Contains(queryLower, "mood"):
		return fmt.Sprintf("'%s' has a %s mood.", song.Title, song.Mood)
	case strings.Contains(queryLower, "year"):
		return fmt.Sprintf("'%s' was released in %d.", song.Title, song.Year)
	default:
		return fmt.Sprintf("'%s' by %s is a %s song with a %s mood, released in %d.",
			song.Title, song.Author, song.Genre, song.Mood, song.Year)
	}
}

// SongCitation cites a single song.
func SongCitation(song models.Song) string {
	return fmt.Sprintf("Source: %s by %s", song.Title, song.Author)
}

// GeneralAnswer summarizes the retrieved songs for a general query.
func GeneralAnswer(songs []models.RetrievedSong) string {
	if len(songs) == 1 {
		s := songs[0]
		return fmt.Sprintf("Based on your query, I found '%s' by %s - a %s song with a %s mood from %d.",
			s.Title, s.Author, s.Genre, s.Mood, s.Year)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d songs that might be relevant:\n", len(songs))
	for i, s := range songs {
		fmt.Fprintf(&b, "%d. '%s' by %s (%s, %s)\n", i+1, s.Title, s.Author, s.Genre, s.Mood)
	}
	return strings.TrimSpace(b.String())
}

// GeneralCitation cites the retrieved set for a general query.
func GeneralCitation(count int) string {
	return fmt.Sprintf("Source: %d relevant songs from dataset", count)
}

// FavoritesList renders a user's favorites as a bulleted list.
func FavoritesList(songs []models.Song) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are your %d favorite songs:\n", len(songs))
	lines := make([]string, len(songs))
	for i, s := range songs {
		lines[i] = fmt.Sprintf("• %s by %s (%s, %s)", s.Title, s.Author, s.Genre, s.Mood)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// FavoritesCitation cites the favorites list.
func FavoritesCitation(count int) string {
	return fmt.Sprintf("Source: Your favorites list (%d songs)", count)
}

// Recommendations renders a numbered recommendation list. When mood is empty
// the header refers to the user's preferences instead.
func Recommendations(mood string, songs []models.Song) string {
	var b strings.Builder
	if mood != "" {
		fmt.Fprintf(&b, "Here are some %s songs you might like:\n", mood)
	} else {
		b.WriteString("Here are some songs you might like based on your preferences:\n")
	}
	lines := make([]string, len(songs))
	for i, s := range songs {
		lines[i] = fmt.Sprintf("%d. %s by %s (%s, %s)", i+1, s.Title, s.Author, s.Genre, s.Mood)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// RecommendationCitation cites the recommendation set.
func RecommendationCitation(count int) string {
	return fmt.Sprintf("Source: Recommendation system (%d songs)", count)
}

// AddedFavorite confirms a favorite was stored.
func AddedFavorite(song models.Song) string {
	return fmt.Sprintf("Added '%s' by %s to your favorites!", song.Title, song.Author)
}

// AlreadyFavorite reports a duplicate favorite.
func AlreadyFavorite(song models.Song) string {
	return fmt.Sprintf("'%s' is already in your favorites.", song.Title)
}
