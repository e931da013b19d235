// Package grocery provides batch and report variants of the scoring
// pipeline over whole product categories.
package grocery

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/greenshelf/scorer/internal/adapters/price"
	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/internal/analysis"
	"github.com/greenshelf/scorer/pkg/logger"
	"github.com/greenshelf/scorer/pkg/models"
)

// analyses within one category run concurrently up to this bound
const maxConcurrentAnalyses = 3

// Analyzer runs the scoring pipeline for one product
type Analyzer interface {
	Analyze(ctx context.Context, query models.ProductQuery) *analysis.ProductAnalysis
}

// Performer is one product called out in a category summary
type Performer struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// CategoryInsights summarizes the analyses of one product category
type CategoryInsights struct {
	Category         string                      `json:"category"`
	ProductsFound    int                         `json:"products_found"`
	ProductsAnalyzed int                         `json:"products_analyzed"`
	AverageScore     float64                     `json:"average_sustainability_score"`
	BestPerformer    *Performer                  `json:"best_performer,omitempty"`
	WorstPerformer   *Performer                  `json:"worst_performer,omitempty"`
	Products         []*analysis.ProductAnalysis `json:"products"`
	Timestamp        time.Time                   `json:"analysis_timestamp"`
}

// CategorySummary ranks one category inside a report
type CategorySummary struct {
	Category         string  `json:"category"`
	AverageScore     float64 `json:"average_score"`
	ProductsAnalyzed int     `json:"products_analyzed"`
}

// Report aggregates several category analyses
type Report struct {
	GeneratedAt           time.Time                    `json:"generated_at"`
	Categories            []string                     `json:"categories_analyzed"`
	ProductsPerCategory   int                          `json:"products_per_category"`
	CategoryAnalyses      map[string]*CategoryInsights `json:"category_analyses"`
	OverallAverageScore   float64                      `json:"overall_average_score"`
	BestCategory          *CategorySummary             `json:"best_category,omitempty"`
	WorstCategory         *CategorySummary             `json:"worst_category,omitempty"`
	TotalProductsAnalyzed int                          `json:"total_products_analyzed"`
	CategoryRankings      []CategorySummary            `json:"category_rankings"`
}

// Service runs batch analyses. Product discovery goes through the price
// provider's search; each discovered product then takes the full pipeline.
type Service struct {
	prices   price.Provider
	analyzer Analyzer
}

func NewService(prices price.Provider, analyzer Analyzer) *Service {
	return &Service{prices: prices, analyzer: analyzer}
}

// Search discovers products for a query without scoring them
func (s *Service) Search(ctx context.Context, query string) ([]models.PriceQuote, *upstream.Failure) {
	return s.prices.Fetch(ctx, models.ProductQuery{Name: query})
}

// Analyze scores a single product
func (s *Service) Analyze(ctx context.Context, query models.ProductQuery) *analysis.ProductAnalysis {
	return s.analyzer.Analyze(ctx, query)
}

// Category discovers products in a category and scores up to numProducts
// of them, summarizing averages and best/worst performers.
func (s *Service) Category(ctx context.Context, category string, numProducts int) *CategoryInsights {
	insights := &CategoryInsights{Category: category, Timestamp: time.Now()}

	quotes, failure := s.prices.Fetch(ctx, models.ProductQuery{Name: category})
	if failure != nil {
		logger.Warn("category product discovery failed",
			zap.String("category", category),
			zap.Error(failure),
		)
		return insights
	}

	titles := uniqueTitles(quotes, numProducts)
	insights.ProductsFound = len(titles)
	if len(titles) == 0 {
		return insights
	}

	results := make([]*analysis.ProductAnalysis, len(titles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAnalyses)
	for i, title := range titles {
		g.Go(func() error {
			results[i] = s.analyzer.Analyze(gctx, models.ProductQuery{Name: title})
			return nil
		})
	}
	g.Wait()

	var total float64
	for _, r := range results {
		insights.Products = append(insights.Products, r)
		total += r.Score.Overall
	}
	insights.ProductsAnalyzed = len(insights.Products)
	insights.AverageScore = round2(total / float64(insights.ProductsAnalyzed))

	best, worst := performers(insights.Products)
	insights.BestPerformer = best
	insights.WorstPerformer = worst
	return insights
}

// GenerateReport analyzes each category in turn and ranks them
func (s *Service) GenerateReport(ctx context.Context, categories []string, productsPerCategory int) *Report {
	report := &Report{
		GeneratedAt:         time.Now(),
		Categories:          categories,
		ProductsPerCategory: productsPerCategory,
		CategoryAnalyses:    make(map[string]*CategoryInsights),
	}

	var summaries []CategorySummary
	var totalScore float64
	for _, category := range categories {
		insights := s.Category(ctx, category, productsPerCategory)
		report.CategoryAnalyses[category] = insights

		if insights.ProductsAnalyzed == 0 {
			continue
		}
		summaries = append(summaries, CategorySummary{
			Category:         category,
			AverageScore:     insights.AverageScore,
			ProductsAnalyzed: insights.ProductsAnalyzed,
		})
		totalScore += insights.AverageScore
		report.TotalProductsAnalyzed += insights.ProductsAnalyzed
	}

	if len(summaries) == 0 {
		return report
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].AverageScore > summaries[j].AverageScore
	})
	report.CategoryRankings = summaries
	report.OverallAverageScore = round2(totalScore / float64(len(summaries)))
	report.BestCategory = &summaries[0]
	report.WorstCategory = &summaries[len(summaries)-1]
	return report
}

func uniqueTitles(quotes []models.PriceQuote, limit int) []string {
	seen := make(map[string]struct{})
	var titles []string
	for _, q := range quotes {
		if q.Title == "" {
			continue
		}
		key := models.NormalizeName(q.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		titles = append(titles, q.Title)
		if len(titles) >= limit {
			break
		}
	}
	return titles
}

func performers(results []*analysis.ProductAnalysis) (best, worst *Performer) {
	if len(results) == 0 {
		return nil, nil
	}

	bi, wi := 0, 0
	for i, r := range results {
		if r.Score.Overall > results[bi].Score.Overall {
			bi = i
		}
		if r.Score.Overall < results[wi].Score.Overall {
			wi = i
		}
	}
	return &Performer{Title: results[bi].Query.Name, Score: results[bi].Score.Overall},
		&Performer{Title: results[wi].Query.Name, Score: results[wi].Score.Overall}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
