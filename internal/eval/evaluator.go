// Package eval scores chat responses for tone, factuality, hallucination,
// retrieval quality, and citation coverage. All scoring is heuristic and
// deterministic; identical inputs always produce identical scores.
package eval

import (
	"regexp"
	"strings"

	"github.com/harmonia-chat/harmonia/internal/models"
)

var hedgingPhrases = []string{
	"i think", "probably", "might be", "could be", "possibly",
	"i believe", "i assume", "i guess", "i'm not sure",
}

var friendlyWords = []string{"great", "wonderful", "amazing", "awesome", "love", "enjoy"}

var apologeticWords = []string{"sorry", "unfortunately", "i don't have", "can't find", "not available"}

// commonWords are allowed in any response without counting as unsupported.
var commonWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "was": true, "are": true,
	"were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "can": true, "this": true, "that": true, "these": true,
	"those": true, "song": true, "music": true, "artist": true, "band": true,
	"album": true, "released": true, "written": true, "performed": true,
	"created": true,
}

var stopWords = map[string]bool{
	"who": true, "what": true, "when": true, "where": true, "why": true,
	"how": true, "is": true, "are": true, "was": true, "were": true,
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true,
}

var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)according to`),
	regexp.MustCompile(`(?i)from the dataset`),
	regexp.MustCompile(`(?i)based on`),
	regexp.MustCompile(`(?i)as mentioned in`),
	regexp.MustCompile(`(?i)cited in`),
	regexp.MustCompile(`(?i)source:`),
	regexp.MustCompile(`(?i)by\s+\w+`),
	regexp.MustCompile(`\([^)]+\)`),
	regexp.MustCompile(`\[[^\]]+\]`),
}

// Evaluator scores responses against the songs they were composed from.
type Evaluator struct{}

// New returns an Evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// Evaluate scores a response given the query that produced it and the songs
// retrieved for it.
func (e *Evaluator) Evaluate(query, response string, retrieved []models.RetrievedSong) models.Evaluation {
	factuality := Factuality(response, retrieved)
	hallucination := DetectHallucination(response, retrieved)
	precision, recall := RAGMetrics(query, retrieved)
	citation := CitationPresent(response)

	return models.Evaluation{
		Tone:                  Tone(response),
		FactualityScore:       factuality,
		HallucinationDetected: hallucination,
		RAGPrecision:          precision,
		RAGRecall:             recall,
		CitationPresent:       citation,
		ResponseQuality:       Quality(factuality, hallucination, citation),
	}
}

// Tone classifies the response as apologetic, friendly, or neutral by
// counting indicator words. Apologetic wins only when it strictly outscores
// friendly.
func Tone(response string) string {
	responseLower := strings.ToLower(response)

	friendly := 0
	for _, w := range friendlyWords {
		if strings.Contains(responseLower, w) {
			friendly++
		}
	}
	apologetic := 0
	for _, w := range apologeticWords {
		if strings.Contains(responseLower, w) {
			apologetic++
		}
	}

	switch {
	case apologetic > friendly:
		return "apologetic"
	case friendly > 0:
		return "friendly"
	default:
		return "neutral"
	}
}

// Factuality scores how well the response is grounded in the retrieved
// songs. A fact matched verbatim counts 1; a fact with any meaningful word
// present counts 0.5 more. The score is the match total over the number of
// facts, capped at 1. With no retrieved songs the score is a neutral 0.5.
func Factuality(response string, retrieved []models.RetrievedSong) float64 {
	if len(retrieved) == 0 {
		return 0.5
	}

	var facts []string
	for _, doc := range retrieved {
		for _, f := range doc.Fields() {
			facts = append(facts, strings.ToLower(f))
		}
	}

	responseLower := strings.ToLower(response)
	responseTokens := cleanTokens(responseLower)

	var matches float64
	total := 0
	for _, fact := range facts {
		if fact == "" {
			continue
		}
		total++
		if strings.Contains(responseLower, fact) {
			matches++
		}
		if len(fact) > 2 {
			for _, word := range strings.Fields(fact) {
				if len(word) > 2 && responseTokens[word] {
					matches += 0.5
					break
				}
			}
		}
	}
	if total == 0 {
		return 0.5
	}

	score := matches / float64(total)
	if score > 1 {
		return 1
	}
	return score
}

// cleanTokens lowercase-tokenizes s and strips punctuation from token edges.
func cleanTokens(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		tok = strings.Trim(tok, `"'.,!?:;()[]`)
		if tok != "" {
			tokens[tok] = true
		}
	}
	return tokens
}

// DetectHallucination reports whether the response hedges or makes claims the
// retrieved songs do not support. Hedging phrases always flag. Otherwise the
// response is flagged when more than half of its words are unsupported:
// absent from the retrieved songs, not common vocabulary, and longer than
// four characters. With no retrieved songs only hedging flags.
func DetectHallucination(response string, retrieved []models.RetrievedSong) bool {
	responseLower := strings.ToLower(response)
	for _, phrase := range hedgingPhrases {
		if strings.Contains(responseLower, phrase) {
			return true
		}
	}

	if len(retrieved) == 0 {
		return false
	}

	docWords := make(map[string]bool)
	for _, doc := range retrieved {
		for _, word := range strings.Fields(strings.ToLower(doc.FieldText())) {
			docWords[word] = true
		}
	}

	responseWords := strings.Fields(responseLower)
	unknown := 0
	for _, word := range responseWords {
		if !docWords[word] && !commonWords[word] && len(word) > 4 {
			unknown++
		}
	}
	return float64(unknown) > float64(len(responseWords))*0.5
}

// RAGMetrics returns retrieval precision and recall. Precision is the share
// of retrieved songs matching at least one meaningful query term. Recall has
// no labeled relevance set to compare against, so it is approximated by the
// precision value.
func RAGMetrics(query string, retrieved []models.RetrievedSong) (precision, recall float64) {
	if len(retrieved) == 0 {
		return 0, 0
	}

	terms := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if !stopWords[t] {
			terms[t] = true
		}
	}
	if len(terms) == 0 {
		for _, t := range strings.Fields(strings.ToLower(query)) {
			terms[t] = true
		}
	}

	relevant := 0
	for _, doc := range retrieved {
		docText := strings.ToLower(doc.FieldText())
		docTextWords := strings.Fields(docText)

		matched := false
		for term := range terms {
			if strings.Contains(docText, term) {
				matched = true
				break
			}
			if len(term) > 3 {
				for _, dw := range docTextWords {
					if strings.Contains(dw, term) || strings.Contains(term, dw) {
						matched = true
						break
					}
				}
			}
			if matched {
				break
			}
		}
		if matched {
			relevant++
		}
	}

	precision = float64(relevant) / float64(len(retrieved))
	recall = precision
	if recall > 1 {
		recall = 1
	}
	return precision, recall
}

// CitationPresent reports whether the response carries a citation cue, either
// an explicit marker ("Source:", "based on", parenthetical) or the informal
// "by <author>" form alongside music vocabulary.
func CitationPresent(response string) bool {
	for _, p := range citationPatterns {
		if p.MatchString(response) {
			return true
		}
	}

	responseLower := strings.ToLower(response)
	if strings.Contains(responseLower, "by ") {
		for _, w := range []string{"song", "music", "track", "artist"} {
			if strings.Contains(responseLower, w) {
				return true
			}
		}
	}
	return false
}

// Quality maps the component scores to an overall label.
func Quality(factuality float64, hallucination, citation bool) string {
	switch {
	case hallucination && factuality < 0.3:
		return "poor"
	case factuality >= 0.8 && citation:
		return "excellent"
	case factuality >= 0.7:
		return "good"
	case factuality >= 0.5:
		return "fair"
	default:
		return "poor"
	}
}
