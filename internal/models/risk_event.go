package models

import "time"

// RiskEvent is the immutable record of one scoring evaluation, stored in
// 'risk_events'. Exactly one exists per AiResponse ('ai_response_id' carries
// a UNIQUE constraint, which is what makes recording retry-safe).
type RiskEvent struct {
	ID            int64     `db:"id" json:"id"`
	AiResponseID  int64     `db:"ai_response_id" json:"ai_response_id"`
	SessionID     int64     `db:"session_id" json:"session_id"`
	RiskLevel     RiskLevel `db:"risk_level" json:"risk_level"`
	WeightedScore float64   `db:"weighted_score" json:"weighted_score"`
	AdviceShown   bool      `db:"advice_shown" json:"advice_shown"`
	EvaluatedAt   time.Time `db:"evaluated_at" json:"evaluated_at"`
}
