package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/greenshelf/scorer/internal/adapters/config"
	"github.com/greenshelf/scorer/internal/adapters/news"
	"github.com/greenshelf/scorer/internal/adapters/nutrition"
	"github.com/greenshelf/scorer/internal/adapters/price"
	"github.com/greenshelf/scorer/internal/adapters/telegram"
	"github.com/greenshelf/scorer/internal/adapters/tts"
	"github.com/greenshelf/scorer/internal/analysis"
	"github.com/greenshelf/scorer/internal/announce"
	"github.com/greenshelf/scorer/internal/grocery"
	"github.com/greenshelf/scorer/internal/scoring"
	"github.com/greenshelf/scorer/internal/server"
	"github.com/greenshelf/scorer/internal/session"
	"github.com/greenshelf/scorer/pkg/logger"
)

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Sustainability Scorer starting...",
		zap.String("port", cfg.Server.Port),
	)

	// Initialize upstream adapters. Every adapter tolerates a missing
	// key and degrades to no data, so the service boots with any subset
	// of credentials configured.
	priceProvider := price.NewSerpAPIProvider(cfg.Price.SerpAPIKey, cfg.Price.MaxResults, cfg.Price.CacheTTL)
	nutritionProvider := nutrition.NewUSDAProvider(cfg.Nutrition.APIKey)
	newsProvider := news.NewGNewsProvider(cfg.News.GNewsAPIKey, cfg.News.LookbackDays, cfg.News.MaxArticles)

	logger.Info("upstream adapters initialized",
		zap.Bool("price", cfg.Price.SerpAPIKey != ""),
		zap.Bool("nutrition", cfg.Nutrition.APIKey != ""),
		zap.Bool("news", cfg.News.GNewsAPIKey != ""),
	)

	// Initialize the scoring pipeline
	aggregator := scoring.NewAggregator(cfg.Scoring)
	analyzer := analysis.NewAnalyzer(priceProvider, nutritionProvider, newsProvider, aggregator, analysis.BudgetsFromConfig(cfg))

	// Initialize announcements and audio assets
	assets, err := tts.NewStore(cfg.TTS.AssetDir)
	if err != nil {
		return fmt.Errorf("failed to initialize asset store: %w", err)
	}

	var synthesizer tts.Synthesizer
	if cfg.HasTTS() {
		synthesizer = tts.NewElevenLabs(cfg.TTS.APIKey, cfg.TTS.VoiceID, cfg.TTS.Budget)
		logger.Info("speech synthesis enabled", zap.String("voice_id", cfg.TTS.VoiceID))
	} else {
		logger.Info("speech synthesis disabled, announcements are text only")
	}

	speaker := announce.NewSpeaker(synthesizer, assets, announce.NewNamer(), cfg.TTS.Budget)

	// Initialize the live session and event bus
	bus := session.NewBus(cfg.Session.EventBuffer, cfg.Session.MaxSubscriber)
	manager := session.NewManager(analyzer, announce.NewComposer(), speaker, bus, cfg.Session.GreetOnStart)

	groceryService := grocery.NewService(priceProvider, analyzer)

	// Initialize the optional Telegram notifier
	if cfg.HasTelegram() {
		notifier, err := telegram.NewNotifier(&cfg.Telegram)
		if err != nil {
			logger.Error("failed to create telegram notifier", zap.Error(err))
		} else {
			go notifier.Run(ctx, bus)
			logger.Info("telegram notifier started")
		}
	}

	srv := server.New(&cfg.Server, manager, groceryService, bus, assets)
	return srv.Run(ctx)
}
