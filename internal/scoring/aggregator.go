// Package scoring combines up to three partial upstream results into one
// bounded composite sustainability score. Missing inputs degrade precision,
// not availability: aggregation never fails for a single product.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/greenshelf/scorer/internal/adapters/config"
	"github.com/greenshelf/scorer/pkg/logger"
	"github.com/greenshelf/scorer/pkg/models"
)

// article count at which news coverage carries full weight
const fullCoverageArticles = 5.0

// Aggregator merges adapter results under a configured weighting policy
type Aggregator struct {
	cfg config.ScoringConfig
}

func NewAggregator(cfg config.ScoringConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate produces a composite score from whatever inputs are present.
// A nil profile or signal marks the input missing and substitutes the
// neutral default. priceMissing is reported but does not move the score.
func (a *Aggregator) Aggregate(productName string, profile *models.NutritionProfile, signal *models.SentimentSignal, priceMissing bool) models.SustainabilityScore {
	missing := models.MissingSet{}
	if priceMissing {
		missing.Add(models.InputPrice)
	}

	nutrition := a.cfg.NeutralScore
	if profile != nil {
		nutrition = clamp(10*profile.SourceConfidence*nutritionHeuristic(profile), 0, 10)
	} else {
		missing.Add(models.InputNutrition)
	}

	social := a.cfg.NeutralScore
	if signal != nil {
		social = a.socialComponent(signal)
	} else {
		missing.Add(models.InputSentiment)
	}

	carbon := a.cfg.NeutralScore
	if profile != nil {
		carbon = carbonHeuristic(productName, profile)
	}

	overall := round1(a.cfg.NutritionWeight*nutrition + a.cfg.CarbonWeight*carbon + a.cfg.SocialWeight*social)

	score := models.SustainabilityScore{
		ProductName:        productName,
		Overall:            overall,
		NutritionComponent: round1(nutrition),
		CarbonComponent:    round1(carbon),
		SocialComponent:    round1(social),
		MissingInputs:      missing.List(),
	}
	score.Justification = justification(score, signal)

	logger.Debug("score aggregated",
		zap.String("product", productName),
		zap.Float64("overall", score.Overall),
		zap.Int("missing_inputs", len(score.MissingInputs)),
	)
	return score
}

// socialComponent maps polarity to 0-10 and pulls it back toward neutral
// when coverage is thin. Full weight at fullCoverageArticles and above.
func (a *Aggregator) socialComponent(signal *models.SentimentSignal) float64 {
	raw := clamp(5+5*signal.Polarity, 0, 10)
	weight := math.Min(float64(signal.ArticleCount)/fullCoverageArticles, 1.0)
	return a.cfg.NeutralScore + weight*(raw-a.cfg.NeutralScore)
}

// nutritionHeuristic rates a profile 0..1. Sugar, saturated fat, sodium
// and heavy processing pull it down; protein, fiber and micronutrients
// push it up.
func nutritionHeuristic(p *models.NutritionProfile) float64 {
	h := 0.5

	switch {
	case p.SugarG > 20:
		h -= 0.20
	case p.SugarG > 10:
		h -= 0.10
	case p.SugarG < 5:
		h += 0.10
	}

	switch {
	case p.SaturatedFatG > 10:
		h -= 0.15
	case p.SaturatedFatG > 5:
		h -= 0.08
	}

	if p.SodiumMg > 600 {
		h -= 0.10
	}

	if p.ProteinG > 10 {
		h += 0.10
	}
	if p.FiberG > 5 {
		h += 0.10
	} else if p.FiberG > 2 {
		h += 0.05
	}

	if p.HasVitamins {
		h += 0.05
	}
	if p.HasMinerals {
		h += 0.05
	}

	switch p.ProcessedLevel {
	case models.ProcessedLow:
		h += 0.15
	case models.ProcessedHigh:
		h -= 0.15
	}

	return clamp(h, 0, 1)
}

// carbonHeuristic estimates footprint from product name cues and the
// nutrition profile. Starts neutral and moves by category signals.
func carbonHeuristic(productName string, p *models.NutritionProfile) float64 {
	score := 5.0
	name := strings.ToLower(productName)

	if containsAny(name, "organic", "local", "fresh", "natural") {
		score += 1.5
	} else if containsAny(name, "processed", "canned", "frozen", "packaged") {
		score -= 1.0
	}

	if containsAny(name, "bulk", "unpackaged", "loose") {
		score += 1.0
	} else if containsAny(name, "single serve", "individual", "snack pack") {
		score -= 1.5
	}

	if containsAny(name, "imported", "tropical", "exotic") {
		score -= 1.0
	} else if containsAny(name, "regional", "domestic") {
		score += 0.5
	}

	// sugary products imply more processing energy; very high protein
	// usually means resource-intensive animal products
	if p.SugarG > 15 {
		score -= 0.5
	} else if p.SugarG < 5 {
		score += 0.5
	}
	if p.ProteinG > 20 {
		score -= 1.0
	} else if p.ProteinG > 10 {
		score -= 0.5
	}

	if p.ProcessedLevel == models.ProcessedHigh {
		score -= 0.5
	}

	if containsAny(name, "sustainable", "eco", "green", "earth") {
		score += 1.0
	}

	return clamp(score, 0, 10)
}

// justification is one or two short clauses: the overall tier, the news
// coverage read, and a limited-data qualifier when inputs were missing.
func justification(score models.SustainabilityScore, signal *models.SentimentSignal) string {
	var tier string
	switch {
	case score.Overall >= 8:
		tier = "excellent sustainability metrics"
	case score.Overall >= 6:
		tier = "good sustainability metrics"
	case score.Overall >= 4:
		tier = "moderate sustainability metrics"
	default:
		tier = "poor sustainability metrics"
	}

	var coverage string
	if signal != nil && signal.ArticleCount > 0 {
		switch {
		case signal.Polarity > 0.05:
			coverage = fmt.Sprintf("positive recent news coverage (%d articles)", signal.ArticleCount)
		case signal.Polarity < -0.05:
			coverage = fmt.Sprintf("concerning recent news coverage (%d articles)", signal.ArticleCount)
		default:
			coverage = fmt.Sprintf("mixed recent news coverage (%d articles)", signal.ArticleCount)
		}
	} else {
		coverage = "no recent sustainability news found"
	}

	text := fmt.Sprintf("%s shows %s and %s.", score.ProductName, tier, coverage)
	if score.LimitedData() {
		text += " Score based on limited data."
	}
	return text
}

func containsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
