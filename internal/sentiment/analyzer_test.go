package sentiment

import (
	"testing"
)

func TestAnalyzer_AnalyzeSentiment(t *testing.T) {
	analyzer := NewAnalyzer()

	tests := []struct {
		name     string
		text     string
		expected string // positive, negative, or neutral
	}{
		{
			name:     "positive coverage",
			text:     "Brand receives fair trade certification, launches renewable packaging initiative",
			expected: "positive",
		},
		{
			name:     "negative coverage",
			text:     "Lawsuit alleges labor violation and exploitation at supplier, toxic contamination found",
			expected: "negative",
		},
		{
			name:     "neutral coverage",
			text:     "Quarterly revenue matched analyst expectations for the grocery chain",
			expected: "neutral",
		},
		{
			name:     "mixed but positive",
			text:     "Despite earlier criticism, the organic sustainable farming initiative won certification",
			expected: "positive",
		},
		{
			name:     "empty text",
			text:     "",
			expected: "neutral",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := analyzer.AnalyzeSentiment(tt.text)

			var got string
			if score > 0.05 {
				got = "positive"
			} else if score < -0.05 {
				got = "negative"
			} else {
				got = "neutral"
			}

			if got != tt.expected {
				t.Errorf("Expected %s sentiment, got %s (score: %.3f)",
					tt.expected, got, score)
			}
		})
	}
}

func TestAnalyzer_ScoreRange(t *testing.T) {
	analyzer := NewAnalyzer()

	texts := []string{
		"sustainable organic renewable ethical certified",
		"exploitation violation abuse toxic lawsuit",
		"plain unremarkable grocery announcement",
		"fair trade fair trade fair trade",
	}

	for _, text := range texts {
		score := analyzer.AnalyzeSentiment(text)

		if score < -1.0 || score > 1.0 {
			t.Errorf("Score should be between -1.0 and 1.0, got %.3f for: %s",
				score, text)
		}
	}
}

func TestAnalyzer_PhraseMatching(t *testing.T) {
	analyzer := NewAnalyzer()

	// "fair trade" only counts as the phrase, not the bare word "fair"
	phrase := analyzer.AnalyzeSentiment("supplier awarded fair trade status")
	bare := analyzer.AnalyzeSentiment("supplier awarded fair prices")

	if phrase <= 0 {
		t.Errorf("Expected positive score for phrase match, got %.3f", phrase)
	}
	if bare != 0 {
		t.Errorf("Expected no match for partial phrase, got %.3f", bare)
	}
}
