// Package intent classifies chat queries and extracts song titles and moods
// from them.
package intent

import (
	"regexp"
	"strings"

	"github.com/harmonia-chat/harmonia/internal/models"
)

type rule struct {
	intent   models.Intent
	patterns []*regexp.Regexp
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

// rules are checked in order; the first matching pattern decides the intent.
// Specific intents come before the catch-all question words, so "who wrote X"
// is a song search even though "who" alone would classify as a general
// question.
var rules = []rule{
	{models.IntentSearchSong, compile(
		`who wrote`, `who sang`, `who performed`, `author of`,
		`what is the genre of`, `what genre is`, `genre of`,
		`what mood is`, `mood of`, `what year was`, `year of`,
	)},
	{models.IntentAddFavorite, compile(
		`add to favorites`, `save to favorites`, `favorite this`,
		`add.*favorite`, `save.*favorite`,
	)},
	{models.IntentGetFavorites, compile(
		`my favorites`, `show favorites`, `list favorites`,
		`what are my favorites`, `favorites list`,
	)},
	{models.IntentRecommendation, compile(
		`recommend`, `suggest`, `recommendation`, `what should i listen`,
		`mood.*music`, `songs for.*mood`, `happy music`, `sad music`,
	)},
	{models.IntentGeneralQuestion, compile(
		`what`, `who`, `when`, `where`, `how`, `tell me about`,
	)},
}

// Classify returns the intent of query. Queries matching no rule default to
// a general question.
func Classify(query string) models.Intent {
	queryLower := strings.ToLower(query)
	for _, r := range rules {
		for _, p := range r.patterns {
			if p.MatchString(queryLower) {
				return r.intent
			}
		}
	}
	return models.IntentGeneralQuestion
}
