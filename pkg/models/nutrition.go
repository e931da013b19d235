package models

import "time"

// ProcessedLevel describes how heavily processed a food item is
type ProcessedLevel string

const (
	ProcessedLow    ProcessedLevel = "low"
	ProcessedMedium ProcessedLevel = "medium"
	ProcessedHigh   ProcessedLevel = "high"
)

// NutritionProfile holds per-100g nutrition data for a product
type NutritionProfile struct {
	Description      string         `json:"description,omitempty"`
	CaloriesPer100g  float64        `json:"calories_per_100g"`
	ProteinG         float64        `json:"protein_g"`
	FatG             float64        `json:"fat_g"`
	CarbG            float64        `json:"carb_g"`
	SugarG           float64        `json:"sugar_g"`
	SaturatedFatG    float64        `json:"saturated_fat_g"`
	SodiumMg         float64        `json:"sodium_mg"`
	FiberG           float64        `json:"fiber_g"`
	HasVitamins      bool           `json:"has_vitamins"`
	HasMinerals      bool           `json:"has_minerals"`
	ProcessedLevel   ProcessedLevel `json:"processed_level"`
	SourceConfidence float64        `json:"source_confidence"` // 0..1
	FetchedAt        time.Time      `json:"fetched_at"`
}

// NewsArticle is one article returned by a news provider
type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Relevance   float64   `json:"relevance"`
	Sentiment   float64   `json:"sentiment"`
}

// SentimentSignal summarizes news coverage for a brand into one number
type SentimentSignal struct {
	Polarity     float64       `json:"polarity"` // -1..1
	ArticleCount int           `json:"article_count"`
	RecencyDays  int           `json:"recency_days"`
	Articles     []NewsArticle `json:"articles,omitempty"`
}
