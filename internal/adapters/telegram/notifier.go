// Package telegram pushes session events to a Telegram chat. It is one
// transport over the session event bus; the core never knows about it.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/greenshelf/scorer/internal/adapters/config"
	"github.com/greenshelf/scorer/internal/analysis"
	"github.com/greenshelf/scorer/internal/session"
	"github.com/greenshelf/scorer/pkg/logger"
)

// Notifier forwards analysis results and session transitions to Telegram
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates the notifier and authorizes the bot
func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
		zap.Int64("chat_id", cfg.ChatID),
	)

	return &Notifier{api: bot, chatID: cfg.ChatID}, nil
}

// Run consumes bus events until the context is canceled. Delivery is
// best-effort; a failed send is logged and skipped.
func (n *Notifier) Run(ctx context.Context, bus *session.Bus) {
	events, unsubscribe := bus.Subscribe()
	if events == nil {
		logger.Warn("telegram notifier could not subscribe to event bus")
		return
	}
	defer unsubscribe()

	logger.Info("telegram notifier listening for session events")

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if msg := n.format(event); msg != "" {
				n.send(msg)
			}
		}
	}
}

func (n *Notifier) format(event session.Event) string {
	switch event.Type {
	case session.EventAnalysisCompleted:
		result, ok := event.Payload.(*analysis.ProductAnalysis)
		if !ok {
			return ""
		}
		return formatAnalysis(result)

	case session.EventSessionStateChanged:
		status, ok := event.Payload.(session.Status)
		if !ok {
			return ""
		}
		if status.State == session.StateActive {
			return fmt.Sprintf("🛒 Shopping session started at *%s*", escapeMarkdown(status.StoreLocation))
		}
		return "🏁 Shopping session ended"

	default:
		return ""
	}
}

func formatAnalysis(result *analysis.ProductAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🌱 *%s*\n", escapeMarkdown(result.Query.Name))
	fmt.Fprintf(&b, "Sustainability: *%.1f/10*\n", result.Score.Overall)
	fmt.Fprintf(&b, "Nutrition %.1f · Carbon %.1f · Social %.1f\n",
		result.Score.NutritionComponent,
		result.Score.CarbonComponent,
		result.Score.SocialComponent,
	)

	if cmp := result.PriceComparison; cmp != nil {
		if cmp.IsCheaperOnline {
			fmt.Fprintf(&b, "💰 $%s cheaper online ($%s vs $%s)\n",
				cmp.Difference.Abs().StringFixed(2),
				cmp.OnlinePrice.StringFixed(2),
				cmp.StorePrice.StringFixed(2),
			)
		} else {
			fmt.Fprintf(&b, "💰 $%s cheaper in store ($%s vs $%s)\n",
				cmp.Difference.Abs().StringFixed(2),
				cmp.StorePrice.StringFixed(2),
				cmp.OnlinePrice.StringFixed(2),
			)
		}
	}

	if len(result.Score.MissingInputs) > 0 {
		b.WriteString("_Score based on limited data_\n")
	}
	return b.String()
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.api.Send(msg); err != nil {
		logger.Warn("failed to send telegram notification", zap.Error(err))
	}
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return replacer.Replace(s)
}
