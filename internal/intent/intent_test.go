package intent

import (
	"testing"

	"github.com/harmonia-chat/harmonia/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  models.Intent
	}{
		{"Who wrote Imagine?", models.IntentSearchSong},
		{"what genre is Billie Jean", models.IntentSearchSong},
		{"What year was Hotel California?", models.IntentSearchSong},
		{"add Imagine to my favorites", models.IntentAddFavorite},
		{"please save this to favorites", models.IntentAddFavorite},
		{"show favorites", models.IntentGetFavorites},
		{"what are my favorites?", models.IntentGetFavorites},
		{"recommend me something", models.IntentRecommendation},
		{"I want happy music", models.IntentRecommendation},
		{"what should i listen to today", models.IntentRecommendation},
		{"tell me about the Eagles", models.IntentGeneralQuestion},
		{"how old is this song", models.IntentGeneralQuestion},
		{"asdkjasd", models.IntentGeneralQuestion},
		{"", models.IntentGeneralQuestion},
	}
	for _, tt := range tests {
		if got := Classify(tt.query); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestClassifyOrderedRules(t *testing.T) {
	// "who wrote" also matches the general-question "who", but the more
	// specific rule must win.
	if got := Classify("who wrote Yesterday"); got != models.IntentSearchSong {
		t.Errorf("Classify = %v, want %v", got, models.IntentSearchSong)
	}
	// "what are my favorites" also contains "what"; favorites wins because
	// its rule is checked first.
	if got := Classify("what are my favorites"); got != models.IntentGetFavorites {
		t.Errorf("Classify = %v, want %v", got, models.IntentGetFavorites)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	query := "recommend what should i listen to, show favorites"
	first := Classify(query)
	for i := 0; i < 10; i++ {
		if got := Classify(query); got != first {
			t.Fatalf("Classify changed from %v to %v on repeat", first, got)
		}
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{`who wrote "Imagine"?`, "imagine", true},
		{`tell me about 'Hotel California'`, "hotel california", true},
		{"who wrote Imagine?", "imagine", true},
		{"what genre is Billie Jean", "billie jean", true},
		{"what mood is Happy?", "happy", true},
		{"tell me about Bohemian Rhapsody", "bohemian rhapsody", true},
		{"add Imagine to my favorites", "imagine", true},
		{"who wrote The Wall?", "wall", true},
		{"tell me about a thriller", "thriller", true},
		{"who wrote the?", "", false},
		{"play some music", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Title(tt.query)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Title(%q) = %q, %v; want %q, %v", tt.query, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMood(t *testing.T) {
	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"recommend some happy music", "happy", true},
		{"I feel upbeat today", "happy", true},
		{"something gloomy please", "sad", true},
		{"high-energy workout songs", "energetic", true},
		{"relaxed evening playlist", "chill", true},
		{"songs about love", "romantic", true},
		{"aggressive metal", "angry", true},
		{"recommend something", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Mood(tt.query)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Mood(%q) = %q, %v; want %q, %v", tt.query, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMoodFirstCategoryWins(t *testing.T) {
	// "happy" and "sad" both appear; categories are ordered so happy wins.
	got, ok := Mood("happy or sad music")
	if !ok || got != "happy" {
		t.Errorf("Mood = %q, %v; want happy, true", got, ok)
	}
}
