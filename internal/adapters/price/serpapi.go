package price

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/pkg/logger"
	"github.com/greenshelf/scorer/pkg/models"
)

const serpAPIURL = "https://serpapi.com/search"

var (
	priceCleanRe = regexp.MustCompile(`[^\d.]`)
	domainTailRe = regexp.MustCompile(`\.(com|org|net|edu|gov|co\.uk|ca|de|fr|jp)$`)
)

// SerpAPIProvider fetches online quotes from Google Shopping via SerpAPI
type SerpAPIProvider struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
	cache      *quoteCache
}

// NewSerpAPIProvider creates new Google Shopping price provider
func NewSerpAPIProvider(apiKey string, maxResults int, cacheTTL time.Duration) *SerpAPIProvider {
	return &SerpAPIProvider{
		apiKey:     apiKey,
		baseURL:    serpAPIURL,
		maxResults: maxResults,
		client:     &http.Client{Timeout: 10 * time.Second},
		cache:      newQuoteCache(cacheTTL),
	}
}

func (p *SerpAPIProvider) GetName() string {
	return "serpapi"
}

func (p *SerpAPIProvider) Fetch(ctx context.Context, query models.ProductQuery) ([]models.PriceQuote, *upstream.Failure) {
	quotes := make([]models.PriceQuote, 0, p.maxResults+1)

	if query.DeclaredStorePrice != nil {
		quotes = append(quotes, models.PriceQuote{
			Source:    models.SourceStore,
			Amount:    *query.DeclaredStorePrice,
			Currency:  "USD",
			FetchedAt: time.Now(),
		})
	}

	if p.apiKey == "" {
		// No key configured: store quote only, never an error
		return quotes, nil
	}

	identity := query.Identity()
	if cached, ok := p.cache.get(identity); ok {
		return append(quotes, cached...), nil
	}

	online, failure := p.search(ctx, query.Name)
	if failure != nil {
		return nil, failure
	}

	p.cache.put(identity, online)

	return append(quotes, online...), nil
}

func (p *SerpAPIProvider) search(ctx context.Context, productName string) ([]models.PriceQuote, *upstream.Failure) {
	params := url.Values{}
	params.Set("engine", "google_shopping_light")
	params.Set("q", productName)
	params.Set("api_key", p.apiKey)
	params.Set("google_domain", "google.com")
	params.Set("hl", "en")
	params.Set("gl", "us")

	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, upstream.ClassifyError(p.GetName(), err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, upstream.ClassifyError(p.GetName(), err)
	}
	defer resp.Body.Close()

	if !upstream.IsSuccess(resp.StatusCode) {
		return nil, upstream.ClassifyStatus(p.GetName(), resp.StatusCode)
	}

	var result struct {
		ShoppingResults []struct {
			Title  string `json:"title"`
			Price  string `json:"price"`
			Source string `json:"source"`
		} `json:"shopping_results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, upstream.ClassifyError(p.GetName(), err)
	}

	quotes := make([]models.PriceQuote, 0, p.maxResults)
	for _, item := range result.ShoppingResults {
		if len(quotes) >= p.maxResults {
			break
		}
		if item.Title == "" || item.Price == "" {
			continue
		}

		amount, ok := parsePrice(item.Price)
		if !ok {
			continue
		}

		quotes = append(quotes, models.PriceQuote{
			Source:    models.SourceOnline,
			Title:     item.Title,
			Seller:    cleanSeller(item.Source),
			Amount:    amount,
			Currency:  "USD",
			FetchedAt: time.Now(),
		})
	}

	logger.Debug("fetched shopping quotes",
		zap.String("product", productName),
		zap.Int("count", len(quotes)),
	)

	// No match is a valid outcome distinct from an error
	return quotes, nil
}

// parsePrice strips currency formatting from strings like "$4.49" or "1,299.00"
func parsePrice(raw string) (decimal.Decimal, bool) {
	cleaned := priceCleanRe.ReplaceAllString(strings.ReplaceAll(raw, ",", ""), "")
	if cleaned == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.IsNegative() {
		return decimal.Zero, false
	}

	return amount, true
}

// cleanSeller strips domain suffixes from store names ("target.com" -> "Target")
func cleanSeller(seller string) string {
	if seller == "" {
		return seller
	}

	seller = domainTailRe.ReplaceAllString(seller, "")
	seller = strings.ReplaceAll(seller, ".", " ")

	words := strings.Fields(seller)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
