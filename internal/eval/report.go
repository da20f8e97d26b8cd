package eval

import (
	"math"

	"github.com/harmonia-chat/harmonia/internal/models"
)

// Report aggregates evaluations across a session.
type Report struct {
	TotalEvaluations       int            `json:"total_evaluations"`
	AverageFactualityScore float64        `json:"average_factuality_score"`
	AverageRAGPrecision    float64        `json:"average_rag_precision"`
	AverageRAGRecall       float64        `json:"average_rag_recall"`
	HallucinationRate      float64        `json:"hallucination_rate"`
	CitationRate           float64        `json:"citation_rate"`
	ToneDistribution       map[string]int `json:"tone_distribution"`
	QualityDistribution    map[string]int `json:"quality_distribution"`
}

// BuildReport computes session aggregates. Rates and averages are rounded to
// three decimals. An empty input yields a zero report.
func BuildReport(evaluations []models.Evaluation) Report {
	report := Report{
		ToneDistribution:    make(map[string]int),
		QualityDistribution: make(map[string]int),
	}
	if len(evaluations) == 0 {
		return report
	}

	var sumFactuality, sumPrecision, sumRecall float64
	hallucinated, cited := 0, 0
	for _, e := range evaluations {
		sumFactuality += e.FactualityScore
		sumPrecision += e.RAGPrecision
		sumRecall += e.RAGRecall
		if e.HallucinationDetected {
			hallucinated++
		}
		if e.CitationPresent {
			cited++
		}
		report.ToneDistribution[e.Tone]++
		report.QualityDistribution[e.ResponseQuality]++
	}

	n := float64(len(evaluations))
	report.TotalEvaluations = len(evaluations)
	report.AverageFactualityScore = round3(sumFactuality / n)
	report.AverageRAGPrecision = round3(sumPrecision / n)
	report.AverageRAGRecall = round3(sumRecall / n)
	report.HallucinationRate = round3(float64(hallucinated) / n)
	report.CitationRate = round3(float64(cited) / n)
	return report
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
