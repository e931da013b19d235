package price

import (
	"context"

	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/pkg/models"
)

// Provider fetches price quotes for a product query
type Provider interface {
	// Fetch returns quotes for the product. The store-declared price (when
	// supplied on the query) is included as a quote alongside online
	// results. An empty slice with a nil failure means "no online match",
	// which is a valid outcome, not an error.
	Fetch(ctx context.Context, query models.ProductQuery) ([]models.PriceQuote, *upstream.Failure)

	// GetName returns provider name
	GetName() string
}
