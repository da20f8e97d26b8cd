package intent

import (
	"regexp"
	"strings"
)

// titlePatterns are tried in order; the first capture wins. Quoted titles take
// precedence over positional phrases.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]+)"`),
	regexp.MustCompile(`'([^']+)'`),
	regexp.MustCompile(`about (.+?)(?:\?|$)`),
	regexp.MustCompile(`who wrote (.+?)(?:\?|$)`),
	regexp.MustCompile(`what genre is (.+?)(?:\?|$)`),
	regexp.MustCompile(`what mood is (.+?)(?:\?|$)`),
	regexp.MustCompile(`tell me about (.+?)(?:\?|$)`),
	regexp.MustCompile(`add (.+?) to my favorites`),
}

// Title extracts a song title from query. Leading and trailing articles are
// stripped from the capture; an empty remainder counts as no title.
func Title(query string) (string, bool) {
	queryLower := strings.ToLower(query)
	for _, p := range titlePatterns {
		m := p.FindStringSubmatch(queryLower)
		if m == nil {
			continue
		}
		title := stripArticles(strings.TrimSpace(m[1]))
		if title == "" {
			return "", false
		}
		return title, true
	}
	return "", false
}

var articles = map[string]bool{"the": true, "a": true, "an": true}

func stripArticles(title string) string {
	words := strings.Fields(title)
	for len(words) > 0 && articles[words[0]] {
		words = words[1:]
	}
	for len(words) > 0 && articles[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// moodCategory pairs a canonical mood with the keywords that imply it.
type moodCategory struct {
	mood     string
	keywords []string
}

var moodCategories = []moodCategory{
	{"happy", []string{"happy", "joyful", "cheerful", "upbeat"}},
	{"sad", []string{"sad", "melancholic", "depressed", "gloomy"}},
	{"energetic", []string{"energetic", "exciting", "pumping", "high-energy"}},
	{"chill", []string{"chill", "relaxed", "calm", "peaceful"}},
	{"romantic", []string{"romantic", "love", "intimate", "passionate"}},
	{"angry", []string{"angry", "aggressive", "intense", "fierce"}},
}

// Mood extracts a canonical mood from query by keyword lookup. Categories are
// checked in a fixed order so repeated calls agree when a query mentions
// several moods.
func Mood(query string) (string, bool) {
	queryLower := strings.ToLower(query)
	for _, cat := range moodCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(queryLower, kw) {
				return cat.mood, true
			}
		}
	}
	return "", false
}
