package repository

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
)

type AiResponseRepository interface {
	// SaveResponse persists the response and its detected symptom rows in one
	// transaction. The applied weights on the detail rows are the weights
	// used at evaluation time and are never touched again.
	SaveResponse(resp *models.AiResponse, detected []*models.DetectedSymptom) error
	GetResponseByID(id int64) (*models.AiResponse, error)
	GetDetectedSymptoms(responseID int64) ([]*models.DetectedSymptom, error)
	// GetUnscored returns scoreable responses that have no risk event yet,
	// oldest first. Non-empty only after a crash between saving a response
	// and recording its evaluation; the worker replays these on the next
	// cycle from the frozen detected_symptoms rows.
	GetUnscored(limit int) ([]*models.AiResponse, error)
}

type aiResponseRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAiResponseRepository(db *sqlx.DB, logger *zap.Logger) AiResponseRepository {
	return &aiResponseRepository{db: db, logger: logger}
}

func (r *aiResponseRepository) SaveResponse(resp *models.AiResponse, detected []*models.DetectedSymptom) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO ai_responses
	          (session_id, message_id, answers_message_id, model_version, declared_risk_level, advice_encrypted, json_valid, advice_used, scoreable, raw_payload)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at`
	err = tx.QueryRowx(query,
		resp.SessionID, resp.MessageID, resp.AnswersMessageID, resp.ModelVersion,
		resp.DeclaredRiskLevel, resp.AdviceEncrypted, resp.JSONValid, resp.AdviceUsed, resp.Scoreable, resp.RawPayload,
	).StructScan(resp)
	if err != nil {
		return fmt.Errorf("failed to insert ai_response: %w", err)
	}

	for _, d := range detected {
		d.AiResponseID = resp.ID
		detailQuery := `INSERT INTO detected_symptoms
		                (ai_response_id, symptom_id, symptom_code, confidence, applied_weight, rule_id)
		                VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		if err := tx.QueryRowx(detailQuery, d.AiResponseID, d.SymptomID, d.SymptomCode, d.Confidence, d.AppliedWeight, d.RuleID).StructScan(d); err != nil {
			return fmt.Errorf("failed to insert detected_symptom %q: %w", d.SymptomCode, err)
		}
	}

	return tx.Commit()
}

func (r *aiResponseRepository) GetResponseByID(id int64) (*models.AiResponse, error) {
	var resp models.AiResponse
	query := `SELECT id, session_id, message_id, answers_message_id, model_version, declared_risk_level,
	                 advice_encrypted, json_valid, advice_used, scoreable, raw_payload, created_at
	          FROM ai_responses WHERE id = $1`
	if err := r.db.Get(&resp, query, id); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *aiResponseRepository) GetDetectedSymptoms(responseID int64) ([]*models.DetectedSymptom, error) {
	var detected []*models.DetectedSymptom
	query := `SELECT id, ai_response_id, symptom_id, symptom_code, confidence, applied_weight, rule_id
	          FROM detected_symptoms WHERE ai_response_id = $1 ORDER BY id`
	if err := r.db.Select(&detected, query, responseID); err != nil {
		return nil, err
	}
	return detected, nil
}

func (r *aiResponseRepository) GetUnscored(limit int) ([]*models.AiResponse, error) {
	var responses []*models.AiResponse
	query := `
		SELECT r.id, r.session_id, r.message_id, r.answers_message_id, r.model_version, r.declared_risk_level,
		       r.advice_encrypted, r.json_valid, r.advice_used, r.scoreable, r.raw_payload, r.created_at
		FROM ai_responses r
		LEFT JOIN risk_events e ON e.ai_response_id = r.id
		WHERE r.scoreable AND e.id IS NULL
		ORDER BY r.id
		LIMIT $1`
	if err := r.db.Select(&responses, query, limit); err != nil {
		return nil, err
	}
	return responses, nil
}
