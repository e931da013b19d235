// Package nutrition fetches per-product nutrition profiles from the USDA
// FoodData Central API.
package nutrition

import (
	"context"

	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/pkg/models"
)

// Provider fetches a nutrition profile for a product name. A nil profile
// with a nil failure means the source had no match, which is a valid
// outcome and not an error.
type Provider interface {
	Fetch(ctx context.Context, productName string) (*models.NutritionProfile, *upstream.Failure)
	GetName() string
}
