package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
)

type SymptomRepository interface {
	CreateDefinition(def *models.SymptomDefinition) error
	GetDefinitionByCode(code string) (*models.SymptomDefinition, error)
	GetAllSymptomDefinitions() ([]*models.SymptomDefinition, error)
	CreateRule(rule *models.ScoringRule) error
	GetAllScoringRules() ([]*models.ScoringRule, error)
}

type symptomRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSymptomRepository(db *sqlx.DB, logger *zap.Logger) SymptomRepository {
	return &symptomRepository{db: db, logger: logger}
}

func (r *symptomRepository) CreateDefinition(def *models.SymptomDefinition) error {
	query := `INSERT INTO symptom_definitions (code, description, default_weight, severity_class)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowx(query, def.Code, def.Description, def.DefaultWeight, def.SeverityClass).StructScan(def)
}

func (r *symptomRepository) GetDefinitionByCode(code string) (*models.SymptomDefinition, error) {
	var def models.SymptomDefinition
	query := `SELECT id, code, description, default_weight, severity_class, created_at
	          FROM symptom_definitions WHERE code = $1`
	if err := r.db.Get(&def, query, code); err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *symptomRepository) GetAllSymptomDefinitions() ([]*models.SymptomDefinition, error) {
	var defs []*models.SymptomDefinition
	query := `SELECT id, code, description, default_weight, severity_class, created_at
	          FROM symptom_definitions ORDER BY code`
	if err := r.db.Select(&defs, query); err != nil {
		return nil, err
	}
	return defs, nil
}

// CreateRule appends a new rule version. Existing versions are never updated
// or deleted, which is what keeps past scoring decisions reproducible.
func (r *symptomRepository) CreateRule(rule *models.ScoringRule) error {
	query := `INSERT INTO scoring_rules (symptom_id, rule_name, weight_multiplier, applies_to_risk, effective_from)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRowx(query, rule.SymptomID, rule.RuleName, rule.WeightMultiplier, rule.AppliesToRisk, rule.EffectiveFrom).StructScan(rule)
}

func (r *symptomRepository) GetAllScoringRules() ([]*models.ScoringRule, error) {
	var ruleRows []*models.ScoringRule
	query := `SELECT id, symptom_id, rule_name, weight_multiplier, applies_to_risk, effective_from, created_at
	          FROM scoring_rules ORDER BY symptom_id, effective_from, id`
	if err := r.db.Select(&ruleRows, query); err != nil {
		return nil, err
	}
	return ruleRows, nil
}
