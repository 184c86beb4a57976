package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/config"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
)

// TelegramNotifier pushes risk event alerts to the on-call doctor channel.
type TelegramNotifier struct {
	api      *tgbotapi.BotAPI
	chatID   int64
	minLevel models.RiskLevel
	logger   *zap.Logger
}

// NewTelegramNotifier creates the Telegram alerting sink. Returns (nil, nil)
// when alerting is disabled so the caller can fall back to another sink.
func NewTelegramNotifier(cfg *config.Config, logger *zap.Logger) (*TelegramNotifier, error) {
	if !cfg.Alerting.Enabled || cfg.Alerting.TelegramBotToken == "" {
		logger.Info("Telegram alerting is disabled (alerting.enabled=false or token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Alerting.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	minLevel := models.RiskLevel(cfg.Alerting.MinRiskLevel)
	if !minLevel.Valid() {
		minLevel = models.RiskHigh
	}

	logger.Info("Telegram alerting authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.String("min_risk_level", string(minLevel)))

	return &TelegramNotifier{
		api:      botAPI,
		chatID:   cfg.Alerting.TelegramChatID,
		minLevel: minLevel,
		logger:   logger,
	}, nil
}

func (n *TelegramNotifier) RiskEventCreated(_ context.Context, event Event) error {
	if event.RiskLevel.Severity() < n.minLevel.Severity() {
		return nil
	}

	text := fmt.Sprintf("⚠️ %s risk in session %d\nWeighted score: %.2f\nEvaluated at: %s",
		event.RiskLevel, event.SessionID, event.WeightedScore,
		event.EvaluatedAt.Format("2006-01-02 15:04:05 MST"))

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("Failed to send Telegram alert",
			zap.Int64("session_id", event.SessionID),
			zap.Error(err))
		return fmt.Errorf("failed to send Telegram alert: %w", err)
	}
	return nil
}
