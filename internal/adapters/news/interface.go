// Package news fetches recent sustainability coverage for a brand and
// condenses it into a sentiment signal.
package news

import (
	"context"

	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/pkg/models"
)

// Provider fetches a sentiment signal for a product. A nil signal with a
// nil failure means no relevant coverage was found, which is a valid
// outcome and not an error.
type Provider interface {
	Fetch(ctx context.Context, productName string) (*models.SentimentSignal, *upstream.Failure)
	GetName() string
}
