// Package registry holds the canonical symptom definitions the rule catalog
// and the scorer resolve against.
package registry

import (
	"errors"
	"fmt"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
)

// ErrUnknownSymptom is returned when a symptom code is not registered. The
// caller must not silently drop the symptom from scoring: an unknown code is
// a reportable anomaly, recorded with a zero weight for audit.
var ErrUnknownSymptom = errors.New("unknown symptom code")

// Registry is an immutable snapshot of symptom definitions keyed by code.
type Registry struct {
	byCode map[string]*models.SymptomDefinition
}

func New(defs []*models.SymptomDefinition) *Registry {
	byCode := make(map[string]*models.SymptomDefinition, len(defs))
	for _, d := range defs {
		byCode[d.Code] = d
	}
	return &Registry{byCode: byCode}
}

// Lookup resolves a symptom code to its definition.
func (r *Registry) Lookup(code string) (*models.SymptomDefinition, error) {
	def, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSymptom, code)
	}
	return def, nil
}

func (r *Registry) Len() int {
	return len(r.byCode)
}
