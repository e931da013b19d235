package models

// Input identifies one of the three upstream data sources
type Input string

const (
	InputPrice     Input = "price"
	InputNutrition Input = "nutrition"
	InputSentiment Input = "sentiment"
)

// MissingSet tracks which inputs were unavailable during aggregation
type MissingSet map[Input]struct{}

// Add marks an input as missing
func (m MissingSet) Add(in Input) {
	m[in] = struct{}{}
}

// Has reports whether an input is missing
func (m MissingSet) Has(in Input) bool {
	_, ok := m[in]
	return ok
}

// List returns missing inputs in a stable order for serialization
func (m MissingSet) List() []Input {
	out := make([]Input, 0, len(m))
	for _, in := range []Input{InputPrice, InputNutrition, InputSentiment} {
		if m.Has(in) {
			out = append(out, in)
		}
	}
	return out
}

// SustainabilityScore is the composite 0-10 score for one product.
// Overall is always defined: missing inputs degrade to neutral defaults
// instead of failing the computation.
type SustainabilityScore struct {
	ProductName        string  `json:"product_name"`
	Overall            float64 `json:"sustainability_score"`
	NutritionComponent float64 `json:"nutrition_score"`
	CarbonComponent    float64 `json:"carbon_footprint_score"`
	SocialComponent    float64 `json:"social_ethics_score"`
	MissingInputs      []Input `json:"missing_inputs,omitempty"`
	Justification      string  `json:"justification"`
}

// LimitedData reports whether any input was missing during aggregation
func (s SustainabilityScore) LimitedData() bool {
	return len(s.MissingInputs) > 0
}
