package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/pkg/models"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *SerpAPIProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewSerpAPIProvider("test-key", 5, 0)
	p.baseURL = srv.URL
	return p
}

func TestSerpAPIProvider_Fetch(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"shopping_results": [
				{"title": "Organic Apples 3lb", "price": "$4.49", "source": "walmart.com"},
				{"title": "Organic Apples Bag", "price": "$5.99", "source": "target.com"},
				{"title": "No price item", "price": "", "source": "kroger.com"}
			]
		}`))
	})

	store := decimal.NewFromFloat(4.99)
	quotes, failure := provider.Fetch(context.Background(), models.ProductQuery{
		Name:               "Organic Apples",
		DeclaredStorePrice: &store,
	})

	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}

	if len(quotes) != 3 {
		t.Fatalf("expected 3 quotes (store + 2 online), got %d", len(quotes))
	}

	if quotes[0].Source != models.SourceStore || !quotes[0].Amount.Equal(store) {
		t.Errorf("first quote should be the declared store price, got %+v", quotes[0])
	}

	if quotes[1].Seller != "Walmart" {
		t.Errorf("expected cleaned seller Walmart, got %q", quotes[1].Seller)
	}

	best := models.BestQuote(quotes)
	if best == nil || !best.Amount.Equal(decimal.NewFromFloat(4.49)) {
		t.Errorf("expected best online quote 4.49, got %+v", best)
	}
}

func TestSerpAPIProvider_NoMatchIsNotAnError(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"shopping_results": []}`))
	})

	quotes, failure := provider.Fetch(context.Background(), models.ProductQuery{Name: "Unheard Of Product"})

	if failure != nil {
		t.Fatalf("no match should not be a failure, got %v", failure)
	}
	if len(quotes) != 0 {
		t.Errorf("expected empty quote list, got %d", len(quotes))
	}
}

func TestSerpAPIProvider_FailureClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected upstream.FailureKind
	}{
		{"4xx is bad query", http.StatusBadRequest, upstream.KindBadQuery},
		{"5xx is transient", http.StatusBadGateway, upstream.KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, failure := provider.Fetch(context.Background(), models.ProductQuery{Name: "apples"})
			if failure == nil {
				t.Fatal("expected a classified failure")
			}
			if failure.Kind != tt.expected {
				t.Errorf("expected kind %s, got %s", tt.expected, failure.Kind)
			}
		})
	}
}

func TestSerpAPIProvider_NoKeyReturnsStoreQuoteOnly(t *testing.T) {
	p := NewSerpAPIProvider("", 5, 0)

	store := decimal.NewFromFloat(2.50)
	quotes, failure := p.Fetch(context.Background(), models.ProductQuery{
		Name:               "Milk",
		DeclaredStorePrice: &store,
	})

	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if len(quotes) != 1 || quotes[0].Source != models.SourceStore {
		t.Errorf("expected only the store quote, got %+v", quotes)
	}
}

func TestQuoteCache_TTL(t *testing.T) {
	cache := newQuoteCache(50 * time.Millisecond)

	quotes := []models.PriceQuote{{Source: models.SourceOnline, Amount: decimal.NewFromInt(1)}}
	cache.put("milk", quotes)

	if _, ok := cache.get("milk"); !ok {
		t.Error("expected cache hit before TTL expiry")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := cache.get("milk"); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestQuoteCache_HitPreservesFetchedAt(t *testing.T) {
	cache := newQuoteCache(time.Minute)

	fetchedAt := time.Now().Add(-30 * time.Second)
	cache.put("milk", []models.PriceQuote{
		{Source: models.SourceOnline, Amount: decimal.NewFromInt(1), FetchedAt: fetchedAt},
	})

	cached, ok := cache.get("milk")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !cached[0].FetchedAt.Equal(fetchedAt) {
		t.Errorf("cached quote should keep its original fetch time, got %v", cached[0].FetchedAt)
	}
}
