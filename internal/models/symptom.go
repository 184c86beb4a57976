package models

import "time"

// SymptomDefinition is a canonical symptom stored in 'symptom_definitions'.
// Reference data: created by administrators, never deleted while referenced.
type SymptomDefinition struct {
	ID            int64     `db:"id" json:"id"`
	Code          string    `db:"code" json:"code"` // e.g. "SYM-042"
	Description   string    `db:"description" json:"description"`
	DefaultWeight float64   `db:"default_weight" json:"default_weight"`
	SeverityClass RiskLevel `db:"severity_class" json:"severity_class"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ScoringRule is one version of a symptom's weighting rule, stored in
// 'scoring_rules'. Rows are append-only: new versions are inserted, existing
// versions are never mutated, so past evaluations stay reproducible.
type ScoringRule struct {
	ID               int64     `db:"id" json:"id"`
	SymptomID        int64     `db:"symptom_id" json:"symptom_id"`
	RuleName         string    `db:"rule_name" json:"rule_name"`
	WeightMultiplier float64   `db:"weight_multiplier" json:"weight_multiplier"`
	AppliesToRisk    RiskLevel `db:"applies_to_risk" json:"applies_to_risk"`
	EffectiveFrom    time.Time `db:"effective_from" json:"effective_from"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
