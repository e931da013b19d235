package nutrition

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/pkg/models"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *USDAProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewUSDAProvider("test-key")
	p.baseURL = srv.URL
	return p
}

func fakeUSDA(searchBody, detailBody string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/foods/search") {
			fmt.Fprint(w, searchBody)
			return
		}
		fmt.Fprint(w, detailBody)
	}
}

func TestUSDAProvider_Fetch_LabelNutrients(t *testing.T) {
	provider := newTestProvider(t, fakeUSDA(
		`{"foods": [{"fdcId": 12345}]}`,
		`{
			"description": "GREEK YOGURT, PLAIN",
			"servingSize": 150,
			"servingSizeUnit": "g",
			"labelNutrients": {
				"calories": {"value": 100},
				"protein": {"value": 15},
				"sugars": {"value": 6},
				"sodium": {"value": 60},
				"saturatedFat": {"value": 0},
				"fiber": {"value": 0}
			},
			"foodNutrients": []
		}`,
	))

	profile, failure := provider.Fetch(context.Background(), "greek yogurt")
	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if profile == nil {
		t.Fatal("expected a profile")
	}

	if profile.SourceConfidence != labelConfidence {
		t.Errorf("label path should carry confidence %.1f, got %.1f", labelConfidence, profile.SourceConfidence)
	}

	// 150g serving scaled to per-100g
	if math.Abs(profile.ProteinG-10.0) > 0.01 {
		t.Errorf("expected 10g protein per 100g, got %.2f", profile.ProteinG)
	}
	if math.Abs(profile.SugarG-4.0) > 0.01 {
		t.Errorf("expected 4g sugar per 100g, got %.2f", profile.SugarG)
	}
}

func TestUSDAProvider_Fetch_FoodNutrientsFallback(t *testing.T) {
	provider := newTestProvider(t, fakeUSDA(
		`{"foods": [{"fdcId": 99}]}`,
		`{
			"description": "Apples, raw, with skin",
			"servingSize": 100,
			"servingSizeUnit": "g",
			"foodNutrients": [
				{"nutrient": {"id": 1008}, "amount": 52},
				{"nutrient": {"id": 2000}, "amount": 10.4},
				{"nutrient": {"id": 1079}, "amount": 2.4},
				{"nutrient": {"id": 1092}, "amount": 107}
			]
		}`,
	))

	profile, failure := provider.Fetch(context.Background(), "apple")
	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}

	if profile.SourceConfidence != fallbackConfidence {
		t.Errorf("fallback path should carry confidence %.1f, got %.1f", fallbackConfidence, profile.SourceConfidence)
	}
	if profile.CaloriesPer100g != 52 {
		t.Errorf("expected 52 calories, got %.1f", profile.CaloriesPer100g)
	}
	if !profile.HasMinerals {
		t.Error("potassium nutrient should mark HasMinerals")
	}
}

func TestUSDAProvider_Fetch_NoMatch(t *testing.T) {
	provider := newTestProvider(t, fakeUSDA(`{"foods": []}`, `{}`))

	profile, failure := provider.Fetch(context.Background(), "nonexistent product xyz")
	if failure != nil {
		t.Fatalf("no match should not be a failure, got %v", failure)
	}
	if profile != nil {
		t.Errorf("expected nil profile on no match, got %+v", profile)
	}
}

func TestUSDAProvider_Fetch_ServerError(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, failure := provider.Fetch(context.Background(), "apple")
	if failure == nil {
		t.Fatal("expected a failure")
	}
	if failure.Kind != upstream.KindTransient {
		t.Errorf("expected transient failure, got %s", failure.Kind)
	}
}

func TestUSDAProvider_NoKeySkipsLookup(t *testing.T) {
	p := NewUSDAProvider("")

	profile, failure := p.Fetch(context.Background(), "milk")
	if failure != nil || profile != nil {
		t.Errorf("expected (nil, nil) without an API key, got (%+v, %v)", profile, failure)
	}
}

func TestProcessedLevel(t *testing.T) {
	tests := []struct {
		name        string
		description string
		ingredients string
		expected    models.ProcessedLevel
	}{
		{
			name:        "fresh produce",
			description: "Organic Spinach, fresh",
			ingredients: "organic spinach",
			expected:    models.ProcessedLow,
		},
		{
			name:        "frozen dinner",
			description: "Frozen prepared meal",
			ingredients: "chicken, preservatives, artificial flavors",
			expected:    models.ProcessedHigh,
		},
		{
			name:        "plain staple",
			description: "Wheat flour",
			ingredients: "wheat flour",
			expected:    models.ProcessedMedium,
		},
		{
			name:        "single cue stays medium",
			description: "Canned tomatoes",
			ingredients: "tomatoes",
			expected:    models.ProcessedMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := processedLevel(tt.description, tt.ingredients)
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestScaleToPer100g_MilliliterServing(t *testing.T) {
	detail := &foodDetail{ServingSize: 240, ServingSizeUnit: "ml"}
	profile := &models.NutritionProfile{SugarG: 24}

	scaleToPer100g(detail, profile)

	if math.Abs(profile.SugarG-10.0) > 0.01 {
		t.Errorf("240ml serving with 24g sugar should scale to 10g per 100g, got %.2f", profile.SugarG)
	}
}
