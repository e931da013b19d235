// Package announce turns analysis results into short spoken scripts and,
// when synthesis is configured, audio assets. Every announcement carries
// a script; audio is best-effort.
package announce

import (
	"fmt"
	"strings"

	"github.com/greenshelf/scorer/pkg/models"
)

// Composer renders announcement scripts deterministically from analysis
// results. No randomness: the same inputs always produce the same script.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// PriceComparison renders the full price call-out with the sustainability
// qualifier appended.
func (c *Composer) PriceComparison(productName string, cmp models.PriceComparison, score models.SustainabilityScore) string {
	var priceLine string
	switch {
	case cmp.Difference.IsPositive():
		priceLine = fmt.Sprintf("Online price is %.1f percent cheaper", absPct(cmp.DeltaPct))
	case cmp.Difference.IsNegative():
		priceLine = fmt.Sprintf("Store price is %.1f percent cheaper", absPct(cmp.DeltaPct))
	default:
		priceLine = "Prices are the same"
	}

	parts := []string{
		fmt.Sprintf("%s detected.", productName),
		fmt.Sprintf("Online price: $%s.", cmp.OnlinePrice.StringFixed(2)),
		fmt.Sprintf("Store price: $%s.", cmp.StorePrice.StringFixed(2)),
		priceLine + ".",
		fmt.Sprintf("Sustainability score: %.1f out of 10.", score.Overall),
		scoreQualifier(score.Overall) + ".",
	}
	if score.LimitedData() {
		parts = append(parts, "Score based on limited data.")
	}
	return strings.Join(parts, " ")
}

// SustainabilityBreakdown renders the three component scores by name
func (c *Composer) SustainabilityBreakdown(productName string, score models.SustainabilityScore) string {
	parts := []string{
		fmt.Sprintf("Sustainability analysis for %s:", productName),
		fmt.Sprintf("Overall score: %.1f out of 10.", score.Overall),
		fmt.Sprintf("Nutrition score: %.1f out of 10.", score.NutritionComponent),
		fmt.Sprintf("Carbon footprint score: %.1f out of 10.", score.CarbonComponent),
		fmt.Sprintf("Social ethics score: %.1f out of 10.", score.SocialComponent),
	}
	if score.LimitedData() {
		parts = append(parts, "Score based on limited data.")
	}
	return strings.Join(parts, " ")
}

// QuickPriceAlert is the abbreviated cheaper-source call-out
func (c *Composer) QuickPriceAlert(productName string, cmp models.PriceComparison) string {
	amount := cmp.Difference.Abs().StringFixed(2)
	if cmp.IsCheaperOnline {
		return fmt.Sprintf("%s is %s dollars cheaper online", productName, amount)
	}
	return fmt.Sprintf("%s is %s dollars cheaper in store", productName, amount)
}

// QuickSustainabilityAlert is the abbreviated score call-out
func (c *Composer) QuickSustainabilityAlert(productName string, overall float64) string {
	switch {
	case overall >= 7:
		return fmt.Sprintf("%s has excellent sustainability rating", productName)
	case overall >= 5:
		return fmt.Sprintf("%s has moderate sustainability rating", productName)
	default:
		return fmt.Sprintf("%s has poor sustainability rating", productName)
	}
}

// Welcome greets the shopper when a live session starts
func (c *Composer) Welcome(storeLocation string) string {
	return fmt.Sprintf("Live sustainability shopping session started at %s. I'll help you compare prices and analyze product sustainability in real-time.", storeLocation)
}

// Closing thanks the shopper when a live session ends
func (c *Composer) Closing() string {
	return "Live sustainability shopping session ended. Thank you for using our real-time price and sustainability analysis."
}

func scoreQualifier(overall float64) string {
	switch {
	case overall >= 8:
		return "This product has excellent sustainability credentials"
	case overall >= 6:
		return "This product has good sustainability ratings"
	case overall >= 4:
		return "This product has moderate sustainability impact"
	default:
		return "This product has poor sustainability ratings"
	}
}

func absPct(deltaPct float64) float64 {
	pct := deltaPct * 100
	if pct < 0 {
		return -pct
	}
	return pct
}
