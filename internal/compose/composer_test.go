package compose

import (
	"strings"
	"testing"

	"github.com/harmonia-chat/harmonia/internal/models"
)

var imagine = models.Song{Title: "Imagine", Author: "John Lennon", Genre: "Rock", Mood: "peaceful", Year: 1971}

func TestSongInfo(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"author", "who wrote Imagine?", "'Imagine' was written/performed by John Lennon."},
		{"author via sang", "who sang this", "'Imagine' was written/performed by John Lennon."},
		{"genre", "what genre is Imagine", "'Imagine' is a Rock song."},
		{"mood", "what mood is Imagine?", "'Imagine' has a peaceful mood."},
		{"year", "what year was Imagine released", "'Imagine' was released in 1971."},
		{"full profile", "Imagine", "'Imagine' by John Lennon is a Rock song with a peaceful mood, released in 1971."},
	}
	for _, tt := range tests {
		if got := SongInfo(tt.query, imagine); got != tt.want {
			t.Errorf("%s: SongInfo = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSongCitation(t *testing.T) {
	want := "Source: Imagine by John Lennon"
	if got := SongCitation(imagine); got != want {
		t.Errorf("SongCitation = %q, want %q", got, want)
	}
}

func TestGeneralAnswerSingle(t *testing.T) {
	got := GeneralAnswer([]models.RetrievedSong{{Song: imagine, SimilarityScore: 0.9}})
	want := "Based on your query, I found 'Imagine' by John Lennon - a Rock song with a peaceful mood from 1971."
	if got != want {
		t.Errorf("GeneralAnswer = %q, want %q", got, want)
	}
}

func TestGeneralAnswerMultiple(t *testing.T) {
	songs := []models.RetrievedSong{
		{Song: imagine},
		{Song: models.Song{Title: "Billie Jean", Author: "Michael Jackson", Genre: "Pop", Mood: "energetic", Year: 1982}},
	}
	got := GeneralAnswer(songs)
	if !strings.HasPrefix(got, "I found 2 songs that might be relevant:\n") {
		t.Errorf("unexpected header: %q", got)
	}
	if !strings.Contains(got, "1. 'Imagine' by John Lennon (Rock, peaceful)") {
		t.Errorf("missing first entry: %q", got)
	}
	if !strings.Contains(got, "2. 'Billie Jean' by Michael Jackson (Pop, energetic)") {
		t.Errorf("missing second entry: %q", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("trailing newline not trimmed")
	}
}

func TestFavoritesList(t *testing.T) {
	got := FavoritesList([]models.Song{imagine})
	want := "Here are your 1 favorite songs:\n• Imagine by John Lennon (Rock, peaceful)"
	if got != want {
		t.Errorf("FavoritesList = %q, want %q", got, want)
	}
}

func TestRecommendations(t *testing.T) {
	songs := []models.Song{imagine}

	got := Recommendations("happy", songs)
	if !strings.HasPrefix(got, "Here are some happy songs you might like:\n") {
		t.Errorf("mood header missing: %q", got)
	}
	if !strings.Contains(got, "1. Imagine by John Lennon (Rock, peaceful)") {
		t.Errorf("entry missing: %q", got)
	}

	got = Recommendations("", songs)
	if !strings.HasPrefix(got, "Here are some songs you might like based on your preferences:\n") {
		t.Errorf("preference header missing: %q", got)
	}
}

func TestNotFoundMessages(t *testing.T) {
	if got := NotFound("Unknown"); got != "Sorry, I don't have information about 'Unknown' in my dataset." {
		t.Errorf("NotFound = %q", got)
	}
	got := GeneralNotFound("asdkjasd")
	if !strings.Contains(got, "'asdkjasd'") || !strings.Contains(got, "specific song, artist, genre, or mood") {
		t.Errorf("GeneralNotFound = %q", got)
	}
	if got := CannotAddUnknown("Nope"); !strings.Contains(got, "can't add it to your favorites") {
		t.Errorf("CannotAddUnknown = %q", got)
	}
}

func TestFavoriteConfirmations(t *testing.T) {
	if got := AddedFavorite(imagine); got != "Added 'Imagine' by John Lennon to your favorites!" {
		t.Errorf("AddedFavorite = %q", got)
	}
	if got := AlreadyFavorite(imagine); got != "'Imagine' is already in your favorites." {
		t.Errorf("AlreadyFavorite = %q", got)
	}
}
