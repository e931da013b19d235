// Package analysis runs the three-source fan-out for one product and
// merges whatever came back into a sustainability score. It never fails:
// every adapter problem degrades to a missing input.
package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/greenshelf/scorer/internal/adapters/config"
	"github.com/greenshelf/scorer/internal/adapters/news"
	"github.com/greenshelf/scorer/internal/adapters/nutrition"
	"github.com/greenshelf/scorer/internal/adapters/price"
	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/internal/scoring"
	"github.com/greenshelf/scorer/pkg/logger"
	"github.com/greenshelf/scorer/pkg/models"
)

// ProductAnalysis is the complete result for one analyzed product
type ProductAnalysis struct {
	Query           models.ProductQuery        `json:"query"`
	Quotes          []models.PriceQuote        `json:"quotes,omitempty"`
	PriceComparison *models.PriceComparison    `json:"price_comparison,omitempty"`
	Nutrition       *models.NutritionProfile   `json:"nutrition,omitempty"`
	Sentiment       *models.SentimentSignal    `json:"sentiment,omitempty"`
	Score           models.SustainabilityScore `json:"sustainability"`
	Failures        map[string]string          `json:"adapter_failures,omitempty"`
	Timestamp       time.Time                  `json:"timestamp"`
}

// Budgets carries the per-adapter time budgets; each source call runs
// under its own deadline so a slow lookup cannot starve a fast one.
type Budgets struct {
	Price     time.Duration
	Nutrition time.Duration
	News      time.Duration
}

func BudgetsFromConfig(cfg *config.Config) Budgets {
	return Budgets{
		Price:     cfg.Price.Budget,
		Nutrition: cfg.Nutrition.Budget,
		News:      cfg.News.Budget,
	}
}

// Analyzer fans out to the three source adapters and aggregates
type Analyzer struct {
	price      price.Provider
	nutrition  nutrition.Provider
	news       news.Provider
	aggregator *scoring.Aggregator
	budgets    Budgets
}

func NewAnalyzer(p price.Provider, n nutrition.Provider, s news.Provider, agg *scoring.Aggregator, budgets Budgets) *Analyzer {
	return &Analyzer{
		price:      p,
		nutrition:  n,
		news:       s,
		aggregator: agg,
		budgets:    budgets,
	}
}

// Analyze runs the full pipeline for one product. All three adapter calls
// run concurrently under individual budgets; aggregation waits for every
// call to settle before combining the present inputs.
func (a *Analyzer) Analyze(ctx context.Context, query models.ProductQuery) *ProductAnalysis {
	var (
		quotes  []models.PriceQuote
		profile *models.NutritionProfile
		signal  *models.SentimentSignal

		priceFailure     *upstream.Failure
		nutritionFailure *upstream.Failure
		newsFailure      *upstream.Failure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		quotes, priceFailure = upstream.Fetch(gctx, a.budgets.Price, func(c context.Context) ([]models.PriceQuote, *upstream.Failure) {
			return a.price.Fetch(c, query)
		})
		return nil
	})
	g.Go(func() error {
		profile, nutritionFailure = upstream.Fetch(gctx, a.budgets.Nutrition, func(c context.Context) (*models.NutritionProfile, *upstream.Failure) {
			return a.nutrition.Fetch(c, query.Name)
		})
		return nil
	})
	g.Go(func() error {
		signal, newsFailure = upstream.Fetch(gctx, a.budgets.News, func(c context.Context) (*models.SentimentSignal, *upstream.Failure) {
			return a.news.Fetch(c, query.Name)
		})
		return nil
	})
	g.Wait()

	failures := make(map[string]string)
	for _, f := range []*upstream.Failure{priceFailure, nutritionFailure, newsFailure} {
		if f != nil {
			failures[f.Source] = string(f.Kind)
			logger.Warn("adapter failed, input treated as missing",
				zap.String("source", f.Source),
				zap.String("kind", string(f.Kind)),
				zap.Error(f.Err),
			)
		}
	}
	if len(failures) == 0 {
		failures = nil
	}

	best := models.BestQuote(quotes)
	priceMissing := best == nil

	result := &ProductAnalysis{
		Query:     query,
		Quotes:    quotes,
		Nutrition: profile,
		Sentiment: signal,
		Score:     a.aggregator.Aggregate(query.Name, profile, signal, priceMissing),
		Failures:  failures,
		Timestamp: time.Now(),
	}

	if best != nil && query.DeclaredStorePrice != nil {
		cmp := models.ComparePrices(*query.DeclaredStorePrice, best.Amount)
		result.PriceComparison = &cmp
	}

	logger.Info("product analyzed",
		zap.String("product", query.Name),
		zap.Float64("score", result.Score.Overall),
		zap.Int("quotes", len(quotes)),
		zap.Bool("has_comparison", result.PriceComparison != nil),
	)
	return result
}
