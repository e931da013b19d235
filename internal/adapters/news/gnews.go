package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/internal/sentiment"
	"github.com/greenshelf/scorer/pkg/logger"
	"github.com/greenshelf/scorer/pkg/models"
)

const (
	gnewsBaseURL  = "https://gnews.io/api/v4/search"
	gnewsPageSize = 25
)

var sustainabilityKeywords = []string{
	"sustainability", "environmental", "carbon", "emissions", "climate",
	"renewable", "organic", "fair trade", "ethical", "labor", "workers",
	"safety", "health", "pollution", "waste", "recycling", "green",
	"eco-friendly", "sustainable", "social responsibility", "csr",
	"human rights", "working conditions", "supply chain", "transparency",
}

// brand extraction strips generic descriptors and product types so the
// news query targets the brand, not the item
var brandDescriptors = []string{
	"organic", "premium", "fresh", "frozen", "dried", "canned", "bottled", "classic",
}

var brandProductTypes = []string{
	"apples", "bananas", "pizza", "cereal", "milk", "bread", "juice", "burger",
}

// GNewsProvider searches GNews for sustainability coverage of a brand and
// scores each relevant article with the keyword sentiment analyzer.
type GNewsProvider struct {
	apiKey       string
	baseURL      string
	lookbackDays int
	maxArticles  int
	client       *http.Client
	analyzer     *sentiment.Analyzer
}

func NewGNewsProvider(apiKey string, lookbackDays, maxArticles int) *GNewsProvider {
	return &GNewsProvider{
		apiKey:       apiKey,
		baseURL:      gnewsBaseURL,
		lookbackDays: lookbackDays,
		maxArticles:  maxArticles,
		client:       &http.Client{Timeout: 15 * time.Second},
		analyzer:     sentiment.NewAnalyzer(),
	}
}

func (p *GNewsProvider) GetName() string {
	return "gnews"
}

// Fetch searches coverage for the product's brand and aggregates it into a
// sentiment signal. No relevant coverage returns (nil, nil).
func (p *GNewsProvider) Fetch(ctx context.Context, productName string) (*models.SentimentSignal, *upstream.Failure) {
	if p.apiKey == "" {
		logger.Debug("news lookup skipped, no API key configured")
		return nil, nil
	}

	brand := ExtractBrand(productName)
	logger.Debug("searching news coverage", zap.String("brand", brand))

	articles, failure := p.search(ctx, brand)
	if failure != nil {
		return nil, failure
	}
	if len(articles) == 0 {
		return nil, nil
	}

	return p.buildSignal(articles), nil
}

func (p *GNewsProvider) search(ctx context.Context, brand string) ([]models.NewsArticle, *upstream.Failure) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -p.lookbackDays)

	query := fmt.Sprintf(`"%s" AND (sustainability OR environmental OR "social responsibility" OR ethical OR labor OR "fair trade" OR organic OR "carbon footprint")`, brand)

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", from.Format("2006-01-02T15:04:05Z"))
	params.Set("to", now.Format("2006-01-02T15:04:05Z"))
	params.Set("sortby", "publishedAt")
	params.Set("lang", "en")
	params.Set("max", fmt.Sprintf("%d", gnewsPageSize))
	params.Set("token", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, upstream.ClassifyError(p.GetName(), fmt.Errorf("build search request: %w", err))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, upstream.ClassifyError(p.GetName(), fmt.Errorf("search request: %w", err))
	}
	defer resp.Body.Close()

	if !upstream.IsSuccess(resp.StatusCode) {
		return nil, upstream.ClassifyStatus(p.GetName(), resp.StatusCode)
	}

	var result struct {
		Articles []struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			URL         string    `json:"url"`
			PublishedAt time.Time `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, upstream.ClassifyError(p.GetName(), fmt.Errorf("decode search response: %w", err))
	}

	articles := make([]models.NewsArticle, 0, len(result.Articles))
	for _, a := range result.Articles {
		relevance := relevanceScore(a.Title, a.Description)
		if relevance <= 0 {
			continue
		}

		text := a.Title + " " + a.Description
		articles = append(articles, models.NewsArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			Relevance:   relevance,
			Sentiment:   p.analyzer.AnalyzeSentiment(text),
		})
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Relevance > articles[j].Relevance
	})
	if len(articles) > p.maxArticles {
		articles = articles[:p.maxArticles]
	}

	logger.Debug("relevant articles selected", zap.Int("count", len(articles)))
	return articles, nil
}

// buildSignal averages per-article sentiment into one polarity value
func (p *GNewsProvider) buildSignal(articles []models.NewsArticle) *models.SentimentSignal {
	var total float64
	oldest := time.Now()
	for _, a := range articles {
		total += a.Sentiment
		if !a.PublishedAt.IsZero() && a.PublishedAt.Before(oldest) {
			oldest = a.PublishedAt
		}
	}

	return &models.SentimentSignal{
		Polarity:     total / float64(len(articles)),
		ArticleCount: len(articles),
		RecencyDays:  int(time.Since(oldest).Hours() / 24),
		Articles:     articles,
	}
}

// relevanceScore is the share of sustainability keywords present in the
// article text. Zero means the article is off-topic and gets dropped.
func relevanceScore(title, description string) float64 {
	text := strings.ToLower(title + " " + description)

	matches := 0
	for _, kw := range sustainabilityKeywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}

	score := float64(matches) / float64(len(sustainabilityKeywords))
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// ExtractBrand strips generic descriptors and product types from a product
// name. Falls back to the full name when stripping leaves too little.
func ExtractBrand(productName string) string {
	brand := strings.ToLower(productName)

	for _, d := range brandDescriptors {
		brand = strings.ReplaceAll(brand, d, "")
	}
	for _, t := range brandProductTypes {
		brand = strings.ReplaceAll(brand, t, "")
	}

	brand = strings.Join(strings.Fields(brand), " ")
	if len(brand) < 3 {
		return productName
	}
	return brand
}
