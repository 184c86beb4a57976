package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/risk"
)

const pqUniqueViolation = "23505"

type RiskRepository interface {
	risk.Store
	GetEventByResponseID(responseID int64) (*models.RiskEvent, error)
	GetEventsBySession(sessionID int64) ([]*models.RiskEvent, error)
	GetRecommendationsBySession(sessionID int64) ([]*models.Recommendation, error)
	GetRecommendationByID(id int64) (*models.Recommendation, error)
	AcceptRecommendation(id int64) (*models.Recommendation, error)
}

type riskRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewRiskRepository(db *sqlx.DB, logger *zap.Logger) RiskRepository {
	return &riskRepository{db: db, logger: logger}
}

// SaveEvaluation applies the full evaluation in one transaction: the risk
// event, its recommendations, the sanitization of the outbound message, and
// the session rollup. The UNIQUE constraint on risk_events.ai_response_id
// makes the call idempotent: a replay rolls back and returns the event
// recorded by the first attempt.
func (r *riskRepository) SaveEvaluation(ctx context.Context, eval *risk.Evaluation) (*models.RiskEvent, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	event := eval.Event
	query := `INSERT INTO risk_events (ai_response_id, session_id, risk_level, weighted_score, advice_shown, evaluated_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err = tx.QueryRowxContext(ctx, query,
		event.AiResponseID, event.SessionID, event.RiskLevel, event.WeightedScore, event.AdviceShown, event.EvaluatedAt,
	).StructScan(event)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			existing, loadErr := r.GetEventByResponseID(event.AiResponseID)
			if loadErr != nil {
				return nil, false, fmt.Errorf("risk event exists but could not be loaded: %w", loadErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to insert risk_event: %w", err)
	}

	for _, rec := range eval.Recommendations {
		rec.RiskEventID = event.ID
		recQuery := `INSERT INTO recommendations (risk_event_id, session_id, rec_type, reason, accepted_by_patient)
		             VALUES ($1, $2, $3, $4, false) RETURNING id, created_at`
		if err := tx.QueryRowxContext(ctx, recQuery, rec.RiskEventID, rec.SessionID, rec.RecType, rec.Reason).StructScan(rec); err != nil {
			return nil, false, fmt.Errorf("failed to insert recommendation: %w", err)
		}
	}

	if eval.Sanitize != nil {
		sanQuery := `UPDATE messages SET is_sanitized = true, content_encrypted = $1 WHERE id = $2`
		if _, err := tx.ExecContext(ctx, sanQuery, eval.Sanitize.ContentEncrypted, eval.Sanitize.MessageID); err != nil {
			return nil, false, fmt.Errorf("failed to sanitize message %d: %w", eval.Sanitize.MessageID, err)
		}
	}

	// Session rollup under a row lock so concurrent events for the same
	// session cannot interleave their read-modify-write.
	var session models.Session
	sessQuery := `SELECT id, user_id, final_risk_level, session_status, created_at, closed_at
	              FROM sessions WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &session, sessQuery, event.SessionID); err != nil {
		return nil, false, fmt.Errorf("failed to lock session %d: %w", event.SessionID, err)
	}
	session.ApplyRisk(event.RiskLevel)
	updateQuery := `UPDATE sessions SET final_risk_level = $1, session_status = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, updateQuery, session.FinalRiskLevel, session.SessionStatus, session.ID); err != nil {
		return nil, false, fmt.Errorf("failed to roll up session %d: %w", session.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit evaluation: %w", err)
	}
	return event, true, nil
}

func (r *riskRepository) GetEventByResponseID(responseID int64) (*models.RiskEvent, error) {
	var event models.RiskEvent
	query := `SELECT id, ai_response_id, session_id, risk_level, weighted_score, advice_shown, evaluated_at
	          FROM risk_events WHERE ai_response_id = $1`
	if err := r.db.Get(&event, query, responseID); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *riskRepository) GetEventsBySession(sessionID int64) ([]*models.RiskEvent, error) {
	var events []*models.RiskEvent
	query := `SELECT id, ai_response_id, session_id, risk_level, weighted_score, advice_shown, evaluated_at
	          FROM risk_events WHERE session_id = $1 ORDER BY evaluated_at, id`
	if err := r.db.Select(&events, query, sessionID); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *riskRepository) GetRecommendationsBySession(sessionID int64) ([]*models.Recommendation, error) {
	var recs []*models.Recommendation
	query := `SELECT id, risk_event_id, session_id, rec_type, reason, accepted_by_patient, created_at
	          FROM recommendations WHERE session_id = $1 ORDER BY id`
	if err := r.db.Select(&recs, query, sessionID); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *riskRepository) GetRecommendationByID(id int64) (*models.Recommendation, error) {
	var rec models.Recommendation
	query := `SELECT id, risk_event_id, session_id, rec_type, reason, accepted_by_patient, created_at
	          FROM recommendations WHERE id = $1`
	if err := r.db.Get(&rec, query, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// AcceptRecommendation records the explicit patient action; it is the only
// write path that ever sets accepted_by_patient.
func (r *riskRepository) AcceptRecommendation(id int64) (*models.Recommendation, error) {
	query := `UPDATE recommendations SET accepted_by_patient = true WHERE id = $1`
	if _, err := r.db.Exec(query, id); err != nil {
		return nil, err
	}
	return r.GetRecommendationByID(id)
}
