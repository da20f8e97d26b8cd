// Package chat runs the query pipeline: classify the intent, gather songs,
// compose a response, evaluate it, and trace every step.
package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harmonia-chat/harmonia/internal/catalog"
	"github.com/harmonia-chat/harmonia/internal/compose"
	"github.com/harmonia-chat/harmonia/internal/eval"
	"github.com/harmonia-chat/harmonia/internal/favorites"
	"github.com/harmonia-chat/harmonia/internal/intent"
	"github.com/harmonia-chat/harmonia/internal/models"
	"github.com/harmonia-chat/harmonia/internal/recommend"
	"github.com/harmonia-chat/harmonia/internal/retrieval"
	"github.com/harmonia-chat/harmonia/internal/trace"
	"github.com/harmonia-chat/harmonia/pkg/utils"
)

// Options bound the retrieval and recommendation steps.
type Options struct {
	TopK                int
	SimilarityThreshold float64
	RecommendLimit      int
}

// Pipeline processes chat queries end to end.
type Pipeline struct {
	catalog     *catalog.Catalog
	retriever   *retrieval.Retriever
	store       *favorites.Store
	recommender *recommend.Recommender
	evaluator   *eval.Evaluator
	tracer      *trace.Tracer
	opts        Options
	logger      *zap.Logger
}

// New creates a pipeline. A nil logger disables logging.
func New(
	cat *catalog.Catalog,
	retriever *retrieval.Retriever,
	store *favorites.Store,
	recommender *recommend.Recommender,
	evaluator *eval.Evaluator,
	tracer *trace.Tracer,
	opts Options,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.RecommendLimit <= 0 {
		opts.RecommendLimit = 5
	}
	return &Pipeline{
		catalog:     cat,
		retriever:   retriever,
		store:       store,
		recommender: recommender,
		evaluator:   evaluator,
		tracer:      tracer,
		opts:        opts,
		logger:      logger,
	}
}

// Tracer exposes the session tracer for analytics endpoints.
func (p *Pipeline) Tracer() *trace.Tracer {
	return p.tracer
}

// outcome carries a handler's response before evaluation.
type outcome struct {
	response  string
	citation  string
	retrieved []models.RetrievedSong
}

// Process answers query. Handler errors degrade to an apologetic response
// rather than failing the whole request; the evaluation still runs so every
// answer is scored.
func (p *Pipeline) Process(ctx context.Context, query, userID string) *models.ChatResult {
	traceID := p.tracer.LogQuery(query, userID)
	queryIntent := intent.Classify(query)

	var out outcome
	switch queryIntent {
	case models.IntentSearchSong:
		out = p.handleSongSearch(query, traceID)
	case models.IntentAddFavorite:
		out = p.handleAddFavorite(ctx, query, userID, traceID)
	case models.IntentGetFavorites:
		out = p.handleGetFavorites(ctx, userID, traceID)
	case models.IntentRecommendation:
		out = p.handleRecommendation(ctx, query, userID, traceID)
	default:
		out = p.handleGeneral(ctx, query, traceID)
	}

	// Empty retrieval is an empty array on the wire, not null.
	if out.retrieved == nil {
		out.retrieved = []models.RetrievedSong{}
	}

	evaluation := p.evaluator.Evaluate(query, out.response, out.retrieved)
	p.tracer.LogResponse(traceID, out.response)
	p.tracer.LogEvaluation(traceID, evaluation)

	p.logger.Debug("query processed",
		zap.String("trace_id", traceID),
		zap.String("query", utils.Truncate(query, 120)),
		zap.String("intent", queryIntent.String()),
		zap.String("quality", evaluation.ResponseQuality))

	return &models.ChatResult{
		Query:      query,
		Response:   out.response,
		Intent:     queryIntent,
		Citation:   out.citation,
		Retrieved:  out.retrieved,
		Evaluation: evaluation,
		TraceID:    traceID,
		SessionID:  p.tracer.SessionID(),
		Timestamp:  time.Now(),
	}
}

func (p *Pipeline) handleSongSearch(query, traceID string) outcome {
	title, ok := intent.Title(query)
	if !ok {
		return outcome{response: compose.MsgNeedSongTitle}
	}

	song, found := p.catalog.GetByExactTitle(title)
	if !found {
		if partial := p.catalog.SearchByTitle(title); len(partial) > 0 {
			song, found = partial[0], true
		}
	}
	if !found {
		return outcome{response: compose.NotFound(title)}
	}

	retrieved := []models.RetrievedSong{{Song: song, SimilarityScore: 1.0, MatchedField: "title"}}
	p.tracer.LogRetrieval(traceID, query, retrieved)

	return outcome{
		response:  compose.SongInfo(query, song),
		citation:  compose.SongCitation(song),
		retrieved: retrieved,
	}
}

func (p *Pipeline) handleAddFavorite(ctx context.Context, query, userID, traceID string) outcome {
	if userID == "" {
		return outcome{response: compose.MsgNeedUserIDSave}
	}
	title, ok := intent.Title(query)
	if !ok {
		return outcome{response: compose.MsgNeedFavoriteSong}
	}

	song, found := p.catalog.GetByExactTitle(title)
	if !found {
		return outcome{response: compose.CannotAddUnknown(title)}
	}

	added, err := p.store.Add(ctx, userID, song)
	if err != nil {
		p.logger.Error("failed to add favorite", zap.String("user_id", userID), zap.Error(err))
		return outcome{response: compose.CannotAddUnknown(title)}
	}

	response := compose.AlreadyFavorite(song)
	if added {
		response = compose.AddedFavorite(song)
		p.tracer.LogFavoritesAction(traceID, userID, "add", &song)
	}
	return outcome{
		response:  response,
		citation:  compose.SongCitation(song),
		retrieved: []models.RetrievedSong{{Song: song, SimilarityScore: 1.0, MatchedField: "title"}},
	}
}

func (p *Pipeline) handleGetFavorites(ctx context.Context, userID, traceID string) outcome {
	if userID == "" {
		return outcome{response: compose.MsgNeedUserIDShow}
	}

	favs, err := p.store.List(ctx, userID)
	if err != nil {
		p.logger.Error("failed to list favorites", zap.String("user_id", userID), zap.Error(err))
		return outcome{response: compose.MsgNoFavorites}
	}
	if len(favs) == 0 {
		return outcome{response: compose.MsgNoFavorites}
	}

	p.tracer.LogFavoritesAction(traceID, userID, "get", nil)

	return outcome{
		response:  compose.FavoritesList(favs),
		citation:  compose.FavoritesCitation(len(favs)),
		retrieved: asRetrieved(favs),
	}
}

func (p *Pipeline) handleRecommendation(ctx context.Context, query, userID, traceID string) outcome {
	mood, hasMood := intent.Mood(query)

	var (
		recs []models.Song
		err  error
		kind string
	)
	if hasMood {
		kind = "mood"
		recs, err = p.recommender.ByMood(ctx, mood, userID, p.opts.RecommendLimit)
	} else {
		kind = "preference"
		recs, err = p.recommender.ByUserPreference(ctx, userID, p.opts.RecommendLimit)
	}
	if err != nil {
		p.logger.Error("recommendation failed", zap.String("kind", kind), zap.Error(err))
		return outcome{response: compose.MsgNoRecommendation}
	}
	if len(recs) == 0 {
		return outcome{response: compose.MsgNoRecommendation}
	}

	p.tracer.LogRecommendation(traceID, userID, kind, recs)

	header := ""
	if hasMood {
		header = mood
	}
	return outcome{
		response:  compose.Recommendations(header, recs),
		citation:  compose.RecommendationCitation(len(recs)),
		retrieved: asRetrieved(recs),
	}
}

func (p *Pipeline) handleGeneral(ctx context.Context, query, traceID string) outcome {
	if !retrieval.ValidQuery(query) {
		return outcome{response: compose.GeneralNotFound(query)}
	}

	retrieved, err := p.retriever.Retrieve(ctx, query, p.opts.TopK, p.opts.SimilarityThreshold)
	if err != nil {
		p.logger.Error("retrieval failed", zap.String("query", query), zap.Error(err))
		return outcome{response: compose.GeneralNotFound(query)}
	}
	if len(retrieved) == 0 {
		return outcome{response: compose.GeneralNotFound(query)}
	}

	p.tracer.LogRetrieval(traceID, query, retrieved)

	return outcome{
		response:  compose.GeneralAnswer(retrieved),
		citation:  compose.GeneralCitation(len(retrieved)),
		retrieved: retrieved,
	}
}

func asRetrieved(songs []models.Song) []models.RetrievedSong {
	out := make([]models.RetrievedSong, len(songs))
	for i, s := range songs {
		out[i] = models.RetrievedSong{Song: s, SimilarityScore: 1.0}
	}
	return out
}
