package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenshelf/scorer/internal/adapters/config"
	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/internal/scoring"
	"github.com/greenshelf/scorer/pkg/models"
)

type stubPrice struct {
	quotes  []models.PriceQuote
	failure *upstream.Failure
	delay   time.Duration
}

func (s *stubPrice) Fetch(ctx context.Context, query models.ProductQuery) ([]models.PriceQuote, *upstream.Failure) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, upstream.ClassifyError("stub_price", ctx.Err())
		}
	}
	return s.quotes, s.failure
}

func (s *stubPrice) GetName() string { return "stub_price" }

type stubNutrition struct {
	profile *models.NutritionProfile
	failure *upstream.Failure
}

func (s *stubNutrition) Fetch(ctx context.Context, name string) (*models.NutritionProfile, *upstream.Failure) {
	return s.profile, s.failure
}

func (s *stubNutrition) GetName() string { return "stub_nutrition" }

type stubNews struct {
	signal  *models.SentimentSignal
	failure *upstream.Failure
}

func (s *stubNews) Fetch(ctx context.Context, name string) (*models.SentimentSignal, *upstream.Failure) {
	return s.signal, s.failure
}

func (s *stubNews) GetName() string { return "stub_news" }

func testBudgets() Budgets {
	return Budgets{Price: time.Second, Nutrition: time.Second, News: time.Second}
}

func testAggregator() *scoring.Aggregator {
	return scoring.NewAggregator(config.ScoringConfig{
		NutritionWeight: 0.4,
		CarbonWeight:    0.3,
		SocialWeight:    0.3,
		NeutralScore:    5.0,
	})
}

func TestAnalyze_FullPipeline(t *testing.T) {
	store := decimal.NewFromFloat(4.99)
	online := decimal.NewFromFloat(4.49)

	analyzer := NewAnalyzer(
		&stubPrice{quotes: []models.PriceQuote{
			{Source: models.SourceStore, Amount: store, Currency: "USD"},
			{Source: models.SourceOnline, Amount: online, Currency: "USD"},
		}},
		&stubNutrition{profile: &models.NutritionProfile{
			SugarG:           10.4,
			FiberG:           2.4,
			ProcessedLevel:   models.ProcessedLow,
			SourceConfidence: 0.9,
		}},
		&stubNews{signal: &models.SentimentSignal{Polarity: 0.4, ArticleCount: 5}},
		testAggregator(),
		testBudgets(),
	)

	result := analyzer.Analyze(context.Background(), models.ProductQuery{
		Name:               "Organic Apples",
		DeclaredStorePrice: &store,
	})

	if result.PriceComparison == nil {
		t.Fatal("expected a price comparison")
	}
	if !result.PriceComparison.IsCheaperOnline {
		t.Error("online 4.49 vs store 4.99 should be cheaper online")
	}
	if !result.PriceComparison.Difference.Equal(decimal.NewFromFloat(0.50)) {
		t.Errorf("expected difference 0.50, got %s", result.PriceComparison.Difference)
	}

	if len(result.Score.MissingInputs) != 0 {
		t.Errorf("no inputs should be missing, got %v", result.Score.MissingInputs)
	}
	if result.Failures != nil {
		t.Errorf("no failures expected, got %v", result.Failures)
	}
}

func TestAnalyze_AllAdaptersFail(t *testing.T) {
	boom := errors.New("boom")

	analyzer := NewAnalyzer(
		&stubPrice{failure: &upstream.Failure{Kind: upstream.KindBadQuery, Source: "stub_price", Err: boom}},
		&stubNutrition{failure: &upstream.Failure{Kind: upstream.KindTimeout, Source: "stub_nutrition", Err: boom}},
		&stubNews{failure: &upstream.Failure{Kind: upstream.KindBadQuery, Source: "stub_news", Err: boom}},
		testAggregator(),
		testBudgets(),
	)

	result := analyzer.Analyze(context.Background(), models.ProductQuery{Name: "Mystery Item"})

	if result.Score.Overall != 5.0 {
		t.Errorf("all failures should yield neutral 5.0, got %.1f", result.Score.Overall)
	}
	if len(result.Score.MissingInputs) != 3 {
		t.Errorf("expected all three inputs missing, got %v", result.Score.MissingInputs)
	}
	if len(result.Failures) != 3 {
		t.Errorf("expected three recorded failures, got %v", result.Failures)
	}
}

func TestAnalyze_PartialFailureDegrades(t *testing.T) {
	analyzer := NewAnalyzer(
		&stubPrice{},
		&stubNutrition{failure: &upstream.Failure{Kind: upstream.KindTimeout, Source: "stub_nutrition", Err: context.DeadlineExceeded}},
		&stubNews{signal: &models.SentimentSignal{Polarity: 0.6, ArticleCount: 10}},
		testAggregator(),
		testBudgets(),
	)

	result := analyzer.Analyze(context.Background(), models.ProductQuery{Name: "Organic Apples"})

	if result.Score.SocialComponent != 8.0 {
		t.Errorf("expected social 8.0, got %.1f", result.Score.SocialComponent)
	}
	if result.Score.NutritionComponent != 5.0 {
		t.Errorf("expected neutral nutrition, got %.1f", result.Score.NutritionComponent)
	}

	missing := models.MissingSet{}
	for _, in := range result.Score.MissingInputs {
		missing.Add(in)
	}
	if !missing.Has(models.InputNutrition) {
		t.Errorf("nutrition should be flagged missing, got %v", result.Score.MissingInputs)
	}
}

func TestAnalyze_SlowAdapterHitsOwnBudgetOnly(t *testing.T) {
	budgets := Budgets{Price: 30 * time.Millisecond, Nutrition: time.Second, News: time.Second}

	analyzer := NewAnalyzer(
		&stubPrice{delay: 500 * time.Millisecond},
		&stubNutrition{profile: &models.NutritionProfile{SourceConfidence: 0.9}},
		&stubNews{signal: &models.SentimentSignal{Polarity: 0.2, ArticleCount: 5}},
		testAggregator(),
		budgets,
	)

	start := time.Now()
	result := analyzer.Analyze(context.Background(), models.ProductQuery{Name: "Milk"})
	elapsed := time.Since(start)

	if elapsed > 400*time.Millisecond {
		t.Errorf("slow price adapter should be cut off by its budget, took %s", elapsed)
	}

	if result.Failures["stub_price"] != string(upstream.KindTimeout) {
		t.Errorf("expected a price timeout, got %v", result.Failures)
	}
	// the other two inputs still land
	if result.Nutrition == nil || result.Sentiment == nil {
		t.Error("fast adapters should still produce results")
	}
}
