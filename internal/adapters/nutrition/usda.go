package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/greenshelf/scorer/internal/adapters/upstream"
	"github.com/greenshelf/scorer/pkg/logger"
	"github.com/greenshelf/scorer/pkg/models"
)

const (
	usdaBaseURL  = "https://api.nal.usda.gov/fdc/v1"
	usdaDataType = "Branded"
	usdaPageSize = 10

	// confidence assigned by data path: label nutrients read straight off
	// the packaging, foodNutrients are lab aggregates that match less well
	labelConfidence    = 0.9
	fallbackConfidence = 0.6
)

// FDC nutrient numbers used in the foodNutrients fallback path
const (
	nutrientProtein  = 1003
	nutrientFat      = 1004
	nutrientCarb     = 1005
	nutrientCalories = 1008
	nutrientFiber    = 1079
	nutrientSodium   = 1093
	nutrientSatFat   = 1258
	nutrientSugar    = 2000
)

var vitaminNutrients = map[int]bool{1106: true, 1107: true, 1108: true, 1109: true, 1110: true}
var mineralNutrients = map[int]bool{1087: true, 1089: true, 1090: true, 1091: true, 1092: true}

var highProcessingTerms = []string{
	"processed", "canned", "frozen", "dried", "dehydrated", "powdered",
	"instant", "ready-to-eat", "pre-cooked", "prepared", "convenience",
	"artificial", "synthetic", "preservatives", "additives",
}

var lowProcessingTerms = []string{
	"fresh", "raw", "organic", "natural", "whole", "unprocessed",
	"farm-fresh", "local", "seasonal",
}

// USDAProvider fetches nutrition profiles from USDA FoodData Central.
// One Fetch is two calls: a text search for the product, then a detail
// lookup on the best match.
type USDAProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewUSDAProvider(apiKey string) *USDAProvider {
	return &USDAProvider{
		apiKey:  apiKey,
		baseURL: usdaBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *USDAProvider) GetName() string {
	return "usda_fdc"
}

// Fetch looks up the product and returns its nutrition profile normalized
// to per-100g values. No match returns (nil, nil).
func (p *USDAProvider) Fetch(ctx context.Context, productName string) (*models.NutritionProfile, *upstream.Failure) {
	if p.apiKey == "" {
		logger.Debug("nutrition lookup skipped, no API key configured")
		return nil, nil
	}

	fdcID, failure := p.search(ctx, productName)
	if failure != nil {
		return nil, failure
	}
	if fdcID == 0 {
		logger.Debug("no nutrition match", zap.String("product", productName))
		return nil, nil
	}

	return p.detail(ctx, fdcID)
}

func (p *USDAProvider) search(ctx context.Context, productName string) (int64, *upstream.Failure) {
	params := url.Values{}
	params.Set("api_key", p.apiKey)
	params.Set("query", productName)
	params.Set("dataType", usdaDataType)
	params.Set("pageSize", fmt.Sprintf("%d", usdaPageSize))
	params.Set("sortBy", "dataType.keyword")
	params.Set("sortOrder", "asc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/foods/search?"+params.Encode(), nil)
	if err != nil {
		return 0, upstream.ClassifyError(p.GetName(), fmt.Errorf("build search request: %w", err))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, upstream.ClassifyError(p.GetName(), fmt.Errorf("search request: %w", err))
	}
	defer resp.Body.Close()

	if !upstream.IsSuccess(resp.StatusCode) {
		return 0, upstream.ClassifyStatus(p.GetName(), resp.StatusCode)
	}

	var result struct {
		Foods []struct {
			FdcID int64 `json:"fdcId"`
		} `json:"foods"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, upstream.ClassifyError(p.GetName(), fmt.Errorf("decode search response: %w", err))
	}

	if len(result.Foods) == 0 {
		return 0, nil
	}
	return result.Foods[0].FdcID, nil
}

// foodDetail is the subset of the FDC detail payload the profile needs
type foodDetail struct {
	Description     string  `json:"description"`
	Ingredients     string  `json:"ingredients"`
	ServingSize     float64 `json:"servingSize"`
	ServingSizeUnit string  `json:"servingSizeUnit"`
	LabelNutrients  map[string]struct {
		Value float64 `json:"value"`
	} `json:"labelNutrients"`
	FoodNutrients []struct {
		Nutrient struct {
			ID int `json:"id"`
		} `json:"nutrient"`
		Amount float64 `json:"amount"`
	} `json:"foodNutrients"`
}

func (p *USDAProvider) detail(ctx context.Context, fdcID int64) (*models.NutritionProfile, *upstream.Failure) {
	reqURL := fmt.Sprintf("%s/food/%d?api_key=%s", p.baseURL, fdcID, url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, upstream.ClassifyError(p.GetName(), fmt.Errorf("build detail request: %w", err))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, upstream.ClassifyError(p.GetName(), fmt.Errorf("detail request: %w", err))
	}
	defer resp.Body.Close()

	if !upstream.IsSuccess(resp.StatusCode) {
		return nil, upstream.ClassifyStatus(p.GetName(), resp.StatusCode)
	}

	var detail foodDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, upstream.ClassifyError(p.GetName(), fmt.Errorf("decode detail response: %w", err))
	}

	profile := buildProfile(&detail)
	logger.Debug("nutrition profile built",
		zap.String("description", profile.Description),
		zap.String("processed_level", string(profile.ProcessedLevel)),
		zap.Float64("confidence", profile.SourceConfidence),
	)
	return profile, nil
}

// buildProfile converts a detail payload to a per-100g profile. Label
// nutrients are preferred over the lab aggregates when present.
func buildProfile(detail *foodDetail) *models.NutritionProfile {
	profile := &models.NutritionProfile{
		Description:    detail.Description,
		ProcessedLevel: processedLevel(detail.Description, detail.Ingredients),
		FetchedAt:      time.Now(),
	}

	fromLabel := readLabelNutrients(detail, profile)
	if fromLabel {
		profile.SourceConfidence = labelConfidence
	} else {
		readFoodNutrients(detail, profile)
		profile.SourceConfidence = fallbackConfidence
	}

	for _, n := range detail.FoodNutrients {
		if vitaminNutrients[n.Nutrient.ID] && n.Amount > 0 {
			profile.HasVitamins = true
		}
		if mineralNutrients[n.Nutrient.ID] && n.Amount > 0 {
			profile.HasMinerals = true
		}
	}

	scaleToPer100g(detail, profile)
	return profile
}

func readLabelNutrients(detail *foodDetail, profile *models.NutritionProfile) bool {
	if len(detail.LabelNutrients) == 0 {
		return false
	}

	pick := func(keys ...string) float64 {
		for _, k := range keys {
			if v, ok := detail.LabelNutrients[k]; ok {
				return v.Value
			}
		}
		return 0
	}

	profile.CaloriesPer100g = pick("calories")
	profile.ProteinG = pick("protein")
	profile.FatG = pick("fat", "totalFat")
	profile.CarbG = pick("carbohydrates", "totalCarbohydrate")
	profile.SugarG = pick("sugars", "sugar")
	profile.SaturatedFatG = pick("saturatedFat", "saturated_fat")
	profile.SodiumMg = pick("sodium")
	profile.FiberG = pick("fiber", "dietaryFiber")
	return true
}

func readFoodNutrients(detail *foodDetail, profile *models.NutritionProfile) {
	for _, n := range detail.FoodNutrients {
		switch n.Nutrient.ID {
		case nutrientCalories:
			profile.CaloriesPer100g = n.Amount
		case nutrientProtein:
			profile.ProteinG = n.Amount
		case nutrientFat:
			profile.FatG = n.Amount
		case nutrientCarb:
			profile.CarbG = n.Amount
		case nutrientSugar:
			profile.SugarG = n.Amount
		case nutrientSatFat:
			profile.SaturatedFatG = n.Amount
		case nutrientSodium:
			profile.SodiumMg = n.Amount
		case nutrientFiber:
			profile.FiberG = n.Amount
		}
	}
}

// scaleToPer100g converts per-serving label values to per-100g. Milliliter
// servings assume water-like density. Unknown units are left as reported.
func scaleToPer100g(detail *foodDetail, profile *models.NutritionProfile) {
	grams := detail.ServingSize
	switch detail.ServingSizeUnit {
	case "g", "GRM":
	case "ml", "mL", "MLT":
		// density ~1.0 g/ml for beverages
	default:
		grams = 100
	}
	if grams <= 0 || grams == 100 {
		return
	}

	factor := 100 / grams
	profile.CaloriesPer100g *= factor
	profile.ProteinG *= factor
	profile.FatG *= factor
	profile.CarbG *= factor
	profile.SugarG *= factor
	profile.SaturatedFatG *= factor
	profile.SodiumMg *= factor
	profile.FiberG *= factor
}

// processedLevel classifies how processed a food is from its description
// and ingredient list. Needs at least two matching terms to move off medium.
func processedLevel(description, ingredients string) models.ProcessedLevel {
	text := strings.ToLower(description + " " + ingredients)

	var high, low int
	for _, term := range highProcessingTerms {
		if strings.Contains(text, term) {
			high++
		}
	}
	for _, term := range lowProcessingTerms {
		if strings.Contains(text, term) {
			low++
		}
	}

	switch {
	case high > low && high >= 2:
		return models.ProcessedHigh
	case low > high && low >= 2:
		return models.ProcessedLow
	default:
		return models.ProcessedMedium
	}
}
