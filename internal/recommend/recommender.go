// Package recommend suggests catalog songs from a mood or a user's favorite
// history.
package recommend

import (
	"context"
	"math/rand"
	"strings"

	"github.com/harmonia-chat/harmonia/internal/catalog"
	"github.com/harmonia-chat/harmonia/internal/favorites"
	"github.com/harmonia-chat/harmonia/internal/models"
)

// similarMoods maps a mood with no catalog matches to related moods worth
// trying instead.
var similarMoods = map[string][]string{
	"happy":     {"energetic", "upbeat", "joyful"},
	"sad":       {"melancholic", "emotional", "depressed"},
	"energetic": {"happy", "upbeat", "exciting"},
	"chill":     {"peaceful", "calm", "relaxed"},
	"romantic":  {"emotional", "love", "intimate"},
	"angry":     {"aggressive", "intense", "fierce"},
	"peaceful":  {"chill", "calm", "serene"},
}

// Recommender suggests songs. The random source is injected so tests can fix
// the shuffle order.
type Recommender struct {
	catalog *catalog.Catalog
	store   *favorites.Store
	rng     *rand.Rand
}

// New creates a recommender. A nil store disables preference-based paths that
// need favorite history; a nil source gets a time-seeded one.
func New(cat *catalog.Catalog, store *favorites.Store, src rand.Source) *Recommender {
	if src == nil {
		src = rand.NewSource(rand.Int63())
	}
	return &Recommender{catalog: cat, store: store, rng: rand.New(src)}
}

// ByMood recommends up to limit songs matching mood. When the mood matches
// nothing, related moods are tried. The user's favorites are excluded when
// userID is set.
func (r *Recommender) ByMood(ctx context.Context, mood, userID string, limit int) ([]models.Song, error) {
	matches := r.catalog.SearchByMood(mood)
	if len(matches) == 0 {
		for _, similar := range similarMoods[strings.ToLower(mood)] {
			matches = append(matches, r.exactMood(similar)...)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	if userID != "" && r.store != nil {
		favs, err := r.store.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		matches = excludeTitles(matches, favs)
	}

	r.shuffle(matches)
	return truncate(matches, limit), nil
}

func (r *Recommender) exactMood(mood string) []models.Song {
	var out []models.Song
	for _, song := range r.catalog.All() {
		if strings.EqualFold(song.Mood, mood) {
			out = append(out, song)
		}
	}
	return out
}

// ByUserPreference recommends songs sharing the user's top genre, mood, or
// author, excluding songs already favorited. A user with no favorites gets
// popular songs instead.
func (r *Recommender) ByUserPreference(ctx context.Context, userID string, limit int) ([]models.Song, error) {
	if r.store == nil {
		return r.Popular(limit), nil
	}
	favs, err := r.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(favs) == 0 {
		return r.Popular(limit), nil
	}

	topGenre := topCount(favs, func(s models.Song) string { return s.Genre })
	topMood := topCount(favs, func(s models.Song) string { return s.Mood })
	topAuthor := topCount(favs, func(s models.Song) string { return s.Author })

	favTitles := make(map[string]bool, len(favs))
	for _, f := range favs {
		favTitles[f.Title] = true
	}

	var recs []models.Song
	for _, song := range r.catalog.All() {
		if favTitles[song.Title] {
			continue
		}
		if song.Genre == topGenre || song.Mood == topMood || song.Author == topAuthor {
			recs = append(recs, song)
		}
	}

	recs = dedupe(recs)
	r.shuffle(recs)
	return truncate(recs, limit), nil
}

// Similar recommends songs sharing the genre or mood of the named song.
func (r *Recommender) Similar(title string, limit int) []models.Song {
	ref, ok := r.catalog.GetByExactTitle(title)
	if !ok {
		return nil
	}

	var recs []models.Song
	for _, song := range r.catalog.All() {
		if song.Title == ref.Title {
			continue
		}
		if song.Genre == ref.Genre || song.Mood == ref.Mood {
			recs = append(recs, song)
		}
	}
	r.shuffle(recs)
	return truncate(recs, limit)
}

// Diverse recommends one song per genre, then one per not-yet-covered mood.
func (r *Recommender) Diverse(limit int) []models.Song {
	var recs []models.Song
	seenMoods := make(map[string]bool)

	for _, genre := range r.catalog.Genres() {
		if len(recs) >= limit {
			break
		}
		songs := r.catalog.SearchByGenre(genre)
		// An empty genre cell yields no matches to pick from.
		if len(songs) == 0 {
			continue
		}
		pick := songs[r.rng.Intn(len(songs))]
		recs = append(recs, pick)
		seenMoods[pick.Mood] = true
	}

	for _, mood := range r.catalog.Moods() {
		if len(recs) >= limit {
			break
		}
		if seenMoods[mood] {
			continue
		}
		songs := r.catalog.SearchByMood(mood)
		if len(songs) == 0 {
			continue
		}
		recs = append(recs, songs[r.rng.Intn(len(songs))])
		seenMoods[mood] = true
	}
	return truncate(recs, limit)
}

// Popular returns a random sample of the catalog. Play counts are not
// tracked, so popularity is uniform.
func (r *Recommender) Popular(limit int) []models.Song {
	all := append([]models.Song(nil), r.catalog.All()...)
	r.shuffle(all)
	return truncate(all, limit)
}

// Preferences summarizes a user's favorite history.
type Preferences struct {
	TotalFavorites  int            `json:"total_favorites"`
	FavoriteGenres  map[string]int `json:"favorite_genres"`
	FavoriteMoods   map[string]int `json:"favorite_moods"`
	FavoriteAuthors map[string]int `json:"favorite_authors"`
	EarliestYear    int            `json:"earliest_year"`
	LatestYear      int            `json:"latest_year"`
	DiversityScore  float64        `json:"diversity_score"`
}

// AnalyzePreferences summarizes the user's favorites. It returns nil when the
// user has none.
func (r *Recommender) AnalyzePreferences(ctx context.Context, userID string) (*Preferences, error) {
	if r.store == nil {
		return nil, nil
	}
	favs, err := r.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(favs) == 0 {
		return nil, nil
	}

	p := &Preferences{
		TotalFavorites:  len(favs),
		FavoriteGenres:  make(map[string]int),
		FavoriteMoods:   make(map[string]int),
		FavoriteAuthors: make(map[string]int),
		EarliestYear:    favs[0].Year,
		LatestYear:      favs[0].Year,
	}
	genres := make(map[string]bool)
	moods := make(map[string]bool)
	for _, f := range favs {
		p.FavoriteGenres[f.Genre]++
		p.FavoriteMoods[f.Mood]++
		p.FavoriteAuthors[f.Author]++
		genres[f.Genre] = true
		moods[f.Mood] = true
		if f.Year < p.EarliestYear {
			p.EarliestYear = f.Year
		}
		if f.Year > p.LatestYear {
			p.LatestYear = f.Year
		}
	}

	maxPossible := len(r.catalog.Genres()) + len(r.catalog.Moods())
	if maxPossible > 0 {
		p.DiversityScore = float64(len(genres)+len(moods)) / float64(maxPossible)
	}
	return p, nil
}

func (r *Recommender) shuffle(songs []models.Song) {
	r.rng.Shuffle(len(songs), func(i, j int) {
		songs[i], songs[j] = songs[j], songs[i]
	})
}

func topCount(songs []models.Song, field func(models.Song) string) string {
	counts := make(map[string]int)
	var top string
	for _, s := range songs {
		v := field(s)
		counts[v]++
		if top == "" || counts[v] > counts[top] {
			top = v
		}
	}
	return top
}

func excludeTitles(songs, exclude []models.Song) []models.Song {
	titles := make(map[string]bool, len(exclude))
	for _, s := range exclude {
		titles[s.Title] = true
	}
	var out []models.Song
	for _, s := range songs {
		if !titles[s.Title] {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(songs []models.Song) []models.Song {
	type key struct{ title, author string }
	seen := make(map[key]bool, len(songs))
	var out []models.Song
	for _, s := range songs {
		k := key{s.Title, s.Author}
		if !seen[k] {
			seen[k] = true
			out = append(out, s)
		}
	}
	return out
}

func truncate(songs []models.Song, limit int) []models.Song {
	if limit > 0 && len(songs) > limit {
		return songs[:limit]
	}
	return songs
}
