package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/greenshelf/scorer/internal/session"
	"github.com/greenshelf/scorer/pkg/models"
)

type startStreamRequest struct {
	StoreLocation string `json:"store_location"`
}

type analyzeProductRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	StorePrice  string `json:"store_price"`
}

type quickAlertRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	AlertType   string `json:"alert_type"`
}

type categoryRequest struct {
	Category    string `json:"category" binding:"required"`
	NumProducts int    `json:"num_products"`
}

type reportRequest struct {
	Categories          []string `json:"categories" binding:"required"`
	ProductsPerCategory int      `json:"products_per_category"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"uptime":    time.Since(s.started).String(),
		"timestamp": time.Now(),
	})
}

func (s *Server) handleStartStream(c *gin.Context) {
	// an empty or absent body is fine, the location just defaults
	var req startStreamRequest
	_ = c.ShouldBindJSON(&req)
	if req.StoreLocation == "" {
		req.StoreLocation = "Unknown Store"
	}

	live, welcome := s.manager.Start(c.Request.Context(), req.StoreLocation)

	resp := gin.H{
		"session_id":     live.ID,
		"started_at":     live.StartedAt,
		"store_location": live.StoreLocation,
	}
	if welcome != nil {
		resp["welcome"] = welcome
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStopStream(c *gin.Context) {
	summary, closing := s.manager.Stop(c.Request.Context())

	resp := gin.H{"stopped_at": time.Now()}
	if summary != nil {
		resp["summary"] = summary
	}
	if closing != nil {
		resp["closing"] = closing
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAnalyzeProduct(c *gin.Context) {
	var req analyzeProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_name is required"})
		return
	}

	query := models.ProductQuery{Name: req.ProductName}
	if price, ok := parsePrice(req.StorePrice); ok {
		query.DeclaredStorePrice = &price
	}

	result, announcements, err := s.manager.Analyze(c.Request.Context(), query)
	if err != nil {
		s.sessionError(c, err)
		return
	}

	audioFiles := make(map[string]string)
	for _, ann := range announcements {
		if ann.AudioHandle != nil {
			audioFiles[string(ann.Kind)] = ann.AudioHandle.FileName
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"price_comparison":     result.PriceComparison,
		"sustainability_score": result.Score,
		"announcements":        announcements,
		"audio_files":          audioFiles,
		"adapter_failures":     result.Failures,
		"timestamp":            result.Timestamp,
	})
}

func (s *Server) handleQuickAlert(c *gin.Context) {
	var req quickAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_name is required"})
		return
	}
	if req.AlertType == "" {
		req.AlertType = "price"
	}

	alert, err := s.manager.QuickAlert(c.Request.Context(), req.ProductName, req.AlertType)
	if err != nil {
		s.sessionError(c, err)
		return
	}

	resp := gin.H{"script": alert.Script, "alert_type": req.AlertType}
	if alert.AudioHandle != nil {
		resp["audio_file"] = alert.AudioHandle.FileName
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.manager.Status())
}

func (s *Server) handleGrocerySearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	quotes, failure := s.grocery.Search(c.Request.Context(), query)
	if failure != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": failure.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"products": quotes,
		"count":    len(quotes),
	})
}

func (s *Server) handleGroceryAnalyze(c *gin.Context) {
	var req analyzeProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_name is required"})
		return
	}

	query := models.ProductQuery{Name: req.ProductName}
	if price, ok := parsePrice(req.StorePrice); ok {
		query.DeclaredStorePrice = &price
	}

	c.JSON(http.StatusOK, s.grocery.Analyze(c.Request.Context(), query))
}

func (s *Server) handleGroceryCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}
	if req.NumProducts <= 0 {
		req.NumProducts = 10
	}

	c.JSON(http.StatusOK, s.grocery.Category(c.Request.Context(), req.Category, req.NumProducts))
}

func (s *Server) handleGroceryReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Categories) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "categories is required"})
		return
	}
	if req.ProductsPerCategory <= 0 {
		req.ProductsPerCategory = 5
	}

	c.JSON(http.StatusOK, s.grocery.GenerateReport(c.Request.Context(), req.Categories, req.ProductsPerCategory))
}

func (s *Server) handleAudio(c *gin.Context) {
	path, err := s.assets.Open(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audio asset not found"})
		return
	}

	c.Header("Content-Type", "audio/mpeg")
	c.File(path)
}

// sessionError maps the session error taxonomy to HTTP statuses. State
// conflicts are 409; a missing quick-alert baseline is 404; a bad alert
// type is the caller's mistake, 400.
func (s *Server) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownAlertType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNotActive), errors.Is(err, session.ErrAlreadyInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNoAnalysis):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// parsePrice accepts "$4.99", "4.99" or "1,299.00"
func parsePrice(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(raw), "$"), ",", ""))
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return price, true
}
