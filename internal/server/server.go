// Package server exposes the HTTP surface around the scoring pipeline
// and the live session core.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/greenshelf/scorer/internal/adapters/config"
	"github.com/greenshelf/scorer/internal/adapters/tts"
	"github.com/greenshelf/scorer/internal/grocery"
	"github.com/greenshelf/scorer/internal/session"
	"github.com/greenshelf/scorer/pkg/logger"
)

// Server wires the session manager, grocery service and event bus into
// a gin HTTP server.
type Server struct {
	cfg     *config.ServerConfig
	manager *session.Manager
	grocery *grocery.Service
	bus     *session.Bus
	assets  *tts.Store
	engine  *gin.Engine
	http    *http.Server
	started time.Time
}

func New(cfg *config.ServerConfig, manager *session.Manager, groceryService *grocery.Service, bus *session.Bus, assets *tts.Store) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		cfg:     cfg,
		manager: manager,
		grocery: groceryService,
		bus:     bus,
		assets:  assets,
		engine:  engine,
		started: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/ws", s.handleWebSocket)
	s.engine.GET("/audio/:name", s.handleAudio)

	rayBan := s.engine.Group("/ray-ban")
	{
		rayBan.POST("/start-stream", s.handleStartStream)
		rayBan.POST("/stop-stream", s.handleStopStream)
		rayBan.POST("/analyze-product", s.handleAnalyzeProduct)
		rayBan.POST("/quick-alert", s.handleQuickAlert)
		rayBan.GET("/status", s.handleStatus)
	}

	groceryGroup := s.engine.Group("/grocery")
	{
		groceryGroup.GET("/search", s.handleGrocerySearch)
		groceryGroup.POST("/analyze", s.handleGroceryAnalyze)
		groceryGroup.POST("/category", s.handleGroceryCategory)
		groceryGroup.POST("/report", s.handleGroceryReport)
	}
}

// Run serves until the context is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("port", s.cfg.Port))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down HTTP server")
	return s.http.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
