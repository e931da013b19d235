package sentiment

import (
	"strings"
)

// Analyzer performs simple keyword-based sentiment analysis over news text
type Analyzer struct {
	positiveTerms map[string]float64
	negativeTerms map[string]float64
}

// NewAnalyzer creates new sentiment analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		positiveTerms: buildPositiveTerms(),
		negativeTerms: buildNegativeTerms(),
	}
}

// AnalyzeSentiment analyzes text and returns sentiment score (-1.0 to 1.0)
func (a *Analyzer) AnalyzeSentiment(text string) float64 {
	if text == "" {
		return 0.0
	}

	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	if len(words) == 0 {
		return 0.0
	}

	var score float64
	matchCount := 0

	// Multi-word terms are matched by containment, single words by token
	for term, weight := range a.positiveTerms {
		n := countTerm(lower, words, term)
		if n > 0 {
			score += weight * float64(n)
			matchCount += n
		}
	}
	for term, weight := range a.negativeTerms {
		n := countTerm(lower, words, term)
		if n > 0 {
			score -= weight * float64(n)
			matchCount += n
		}
	}

	if matchCount == 0 {
		return 0.0
	}

	// Normalize by text length
	normalized := score / float64(len(words))

	if normalized > 1.0 {
		normalized = 1.0
	} else if normalized < -1.0 {
		normalized = -1.0
	}

	return normalized
}

func countTerm(lower string, words []string, term string) int {
	if strings.Contains(term, " ") {
		return strings.Count(lower, term)
	}

	count := 0
	for _, word := range words {
		if strings.Trim(word, ".,!?;:\"'()") == term {
			count++
		}
	}
	return count
}

// buildPositiveTerms returns positive keywords for sustainability coverage
func buildPositiveTerms() map[string]float64 {
	return map[string]float64{
		"sustainable":           1.0,
		"sustainability":        0.9,
		"fair trade":            1.0,
		"organic":               0.8,
		"renewable":             0.8,
		"carbon neutral":        0.9,
		"zero waste":            0.8,
		"ethical":               0.7,
		"certified":             0.6,
		"eco-friendly":          0.8,
		"recyclable":            0.6,
		"local sourcing":        0.7,
		"community":             0.5,
		"charity":               0.5,
		"donation":              0.5,
		"initiative":            0.4,
		"transparency":          0.5,
		"conservation":          0.6,
		"regenerative":          0.7,
		"biodegradable":         0.6,
		"green":                 0.4,
		"improvement":           0.4,
		"support":               0.3,
	}
}

// buildNegativeTerms returns negative keywords for sustainability coverage
func buildNegativeTerms() map[string]float64 {
	return map[string]float64{
		"exploitation":      1.0,
		"violation":         0.9,
		"abuse":             0.9,
		"child labor":       1.0,
		"forced labor":      1.0,
		"sweatshop":         1.0,
		"discrimination":    0.8,
		"unsafe":            0.7,
		"toxic":             0.8,
		"contamination":     0.9,
		"recall":            0.7,
		"lawsuit":           0.7,
		"fine":              0.5,
		"penalty":           0.5,
		"pollution":         0.8,
		"deforestation":     0.9,
		"greenwashing":      0.8,
		"crackdown":         0.6,
		"unfair":            0.6,
		"criticism":         0.4,
		"concern":           0.3,
		"harmful":           0.6,
		"damage":            0.5,
	}
}
