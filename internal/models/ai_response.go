package models

import "time"

// AiResponse is the stored provider payload for one answered patient message,
// in the 'ai_responses' table. DeclaredRiskLevel is what the provider claimed
// and is informational only; the engine always classifies from its own
// weighted score. MessageID points at the OUT message carrying the advice.
type AiResponse struct {
	ID                int64     `db:"id" json:"id"`
	SessionID         int64     `db:"session_id" json:"session_id"`
	MessageID         int64     `db:"message_id" json:"message_id"`
	AnswersMessageID  int64     `db:"answers_message_id" json:"answers_message_id"`
	ModelVersion      string    `db:"model_version" json:"model_version"`
	DeclaredRiskLevel string    `db:"declared_risk_level" json:"declared_risk_level"`
	AdviceEncrypted   string    `db:"advice_encrypted" json:"-"`
	JSONValid         bool      `db:"json_valid" json:"json_valid"`
	AdviceUsed        bool      `db:"advice_used" json:"advice_used"`
	Scoreable         bool      `db:"scoreable" json:"scoreable"`
	RawPayload        []byte    `db:"raw_payload" json:"-"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// DetectedSymptom is one (symptom, confidence) reading of an AiResponse,
// stored in 'detected_symptoms'. AppliedWeight is frozen at evaluation time
// for audit: it is never recomputed when the rule catalog changes later.
// Unknown codes are kept with a zero applied weight and SymptomID unset.
type DetectedSymptom struct {
	ID            int64   `db:"id" json:"id"`
	AiResponseID  int64   `db:"ai_response_id" json:"ai_response_id"`
	SymptomID     *int64  `db:"symptom_id" json:"symptom_id,omitempty"`
	SymptomCode   string  `db:"symptom_code" json:"symptom_code"`
	Confidence    float64 `db:"confidence" json:"confidence"`
	AppliedWeight float64 `db:"applied_weight" json:"applied_weight"`
	RuleID        *int64  `db:"rule_id" json:"rule_id,omitempty"`
}
