package rules

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/registry"
)

// Store is the read access to the symptom/rule tables the loader needs.
type Store interface {
	GetAllSymptomDefinitions() ([]*models.SymptomDefinition, error)
	GetAllScoringRules() ([]*models.ScoringRule, error)
}

// LoadCatalog builds a fresh catalog snapshot from the store. A symptom with
// no rule versions at all is a configuration gap worth flagging, but not
// fatal: the default-weight fallback keeps scoring well-defined.
func LoadCatalog(store Store, logger *zap.Logger) (*Catalog, error) {
	defs, err := store.GetAllSymptomDefinitions()
	if err != nil {
		return nil, fmt.Errorf("failed to load symptom definitions: %w", err)
	}

	ruleRows, err := store.GetAllScoringRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring rules: %w", err)
	}

	catalog := NewCatalog(registry.New(defs), ruleRows)

	for _, def := range defs {
		if len(catalog.bySymptom[def.ID]) == 0 {
			logger.Warn("Symptom has no scoring rule versions, default weight will apply",
				zap.String("code", def.Code),
				zap.Float64("default_weight", def.DefaultWeight))
		}
	}

	logger.Info("Rule catalog loaded",
		zap.Int("symptoms", len(defs)),
		zap.Int("rule_versions", len(ruleRows)))

	return catalog, nil
}
