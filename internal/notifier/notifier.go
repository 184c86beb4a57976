// Package notifier fans recorded risk events out to downstream consumers
// (doctor alerting). Transport details stay behind the Notifier interface.
package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
)

// Event is the outbound payload published once per RiskEvent creation.
type Event struct {
	SessionID     int64            `json:"session_id"`
	RiskLevel     models.RiskLevel `json:"risk_level"`
	WeightedScore float64          `json:"weighted_score"`
	EvaluatedAt   time.Time        `json:"evaluated_at"`
}

type Notifier interface {
	RiskEventCreated(ctx context.Context, event Event) error
}

// Noop discards events; used when alerting is disabled.
type Noop struct{}

func (Noop) RiskEventCreated(context.Context, Event) error { return nil }

// LogNotifier writes events to the structured log. Useful as a default sink
// and in development.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) RiskEventCreated(_ context.Context, event Event) error {
	n.Logger.Info("Risk event recorded",
		zap.Int64("session_id", event.SessionID),
		zap.String("risk_level", string(event.RiskLevel)),
		zap.Float64("weighted_score", event.WeightedScore),
		zap.Time("evaluated_at", event.EvaluatedAt))
	return nil
}
