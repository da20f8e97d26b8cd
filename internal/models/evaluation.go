package models

// Evaluation scores one (query, response, retrieved songs) triple. It is
// derived solely from that triple, never from aggregate state, so repeated
// evaluation of the same inputs always yields the same result.
type Evaluation struct {
	Tone                  string  `json:"tone"`
	FactualityScore       float64 `json:"factuality_score"`
	HallucinationDetected bool    `json:"hallucination_detected"`
	RAGPrecision          float64 `json:"rag_precision"`
	RAGRecall             float64 `json:"rag_recall"`
	CitationPresent       bool    `json:"citation_present"`
	ResponseQuality       string  `json:"response_quality"`
}
