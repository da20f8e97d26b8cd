package models

// Intent is the classified purpose of a user query. Exactly one intent is
// assigned per query; IntentGeneralQuestion is the catch-all.
type Intent string

const (
	IntentSearchSong      Intent = "search_song"
	IntentAddFavorite     Intent = "add_favorite"
	IntentGetFavorites    Intent = "get_favorites"
	IntentRecommendation  Intent = "recommendation"
	IntentGeneralQuestion Intent = "general_question"
)

// String returns the wire form of the intent.
func (i Intent) String() string {
	return string(i)
}
