// Package risk turns a scoring result into its durable side effects: the
// risk event, the advice-visibility decision, recommendations, and the
// session rollup. The three side effects are applied by the store in one
// transaction, so either all of them land or none do.
package risk

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/notifier"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/scoring"
)

// SanitizeInstruction tells the store to mark the outbound message sanitized
// and replace its advice text with the generic low-risk notice.
type SanitizeInstruction struct {
	MessageID        int64
	ContentEncrypted string
}

// Evaluation bundles everything one recorded scoring result must persist
// atomically. The store also folds Event.RiskLevel into the owning session
// (models.Session.ApplyRisk) inside the same transaction.
type Evaluation struct {
	Event           *models.RiskEvent
	Recommendations []*models.Recommendation
	Sanitize        *SanitizeInstruction
}

// Store persists an evaluation. SaveEvaluation must be idempotent on
// Event.AiResponseID: a retry after partial failure returns the already
// recorded event with created=false instead of creating a duplicate.
type Store interface {
	SaveEvaluation(ctx context.Context, eval *Evaluation) (event *models.RiskEvent, created bool, err error)
}

type Recorder struct {
	store       Store
	notifier    notifier.Notifier
	logger      *zap.Logger
	now         func() time.Time
	maxAttempts int
}

func NewRecorder(store Store, n notifier.Notifier, logger *zap.Logger) *Recorder {
	return &Recorder{
		store:       store,
		notifier:    n,
		logger:      logger,
		now:         time.Now,
		maxAttempts: 3,
	}
}

// Record creates the RiskEvent for a scored response and applies its side
// effects. Advice is shown as-is for MEDIUM and HIGH; for LOW the outbound
// message is sanitized and its text replaced by noticeEncrypted — the raw
// advice is suppressed by policy, not merely flagged. Persistence is retried
// a bounded number of times; the UNIQUE constraint on ai_response_id makes
// retries safe.
func (r *Recorder) Record(ctx context.Context, resp *models.AiResponse, result scoring.Result, noticeEncrypted string) (*models.RiskEvent, error) {
	event := &models.RiskEvent{
		AiResponseID:  resp.ID,
		SessionID:     resp.SessionID,
		RiskLevel:     result.RiskLevel,
		WeightedScore: result.WeightedScore,
		AdviceShown:   result.RiskLevel != models.RiskLow,
		EvaluatedAt:   r.now().UTC(),
	}

	eval := &Evaluation{
		Event:           event,
		Recommendations: Recommend(event),
	}
	if result.RiskLevel == models.RiskLow {
		eval.Sanitize = &SanitizeInstruction{
			MessageID:        resp.MessageID,
			ContentEncrypted: noticeEncrypted,
		}
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		saved, created, err := r.store.SaveEvaluation(ctx, eval)
		if err == nil {
			if created {
				r.publish(ctx, saved)
			} else {
				r.logger.Info("Risk event already recorded, skipping duplicate",
					zap.Int64("ai_response_id", resp.ID),
					zap.Int64("risk_event_id", saved.ID))
			}
			return saved, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		r.logger.Warn("Failed to persist risk evaluation, retrying",
			zap.Int64("ai_response_id", resp.ID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
	}

	return nil, fmt.Errorf("failed to record risk event for response %d after %d attempts: %w",
		resp.ID, r.maxAttempts, lastErr)
}

func (r *Recorder) publish(ctx context.Context, event *models.RiskEvent) {
	err := r.notifier.RiskEventCreated(ctx, notifier.Event{
		SessionID:     event.SessionID,
		RiskLevel:     event.RiskLevel,
		WeightedScore: event.WeightedScore,
		EvaluatedAt:   event.EvaluatedAt,
	})
	if err != nil {
		// Alerting is best-effort: the event itself is already durable.
		r.logger.Error("Failed to publish risk event notification",
			zap.Int64("risk_event_id", event.ID),
			zap.Error(err))
	}
}
