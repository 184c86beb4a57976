// Package rules implements the rule catalog: point-in-time resolution of a
// symptom's effective weight against its append-only scoring rule versions.
package rules

import (
	"sort"
	"time"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/registry"
)

// Resolution is the outcome of resolving one symptom's weight at a point in
// time. Rule is nil when no version was effective yet and the symptom's
// default weight applied alone (multiplier 1).
type Resolution struct {
	Weight float64
	Rule   *models.ScoringRule
}

// Catalog is an immutable snapshot of scoring rules grouped per symptom,
// ordered by (effective_from, id) ascending. Rules are append-only in the
// store, so a snapshot taken at load time stays valid for evaluation; new
// versions become visible on the next snapshot.
type Catalog struct {
	reg       *registry.Registry
	bySymptom map[int64][]*models.ScoringRule
}

func NewCatalog(reg *registry.Registry, rules []*models.ScoringRule) *Catalog {
	bySymptom := make(map[int64][]*models.ScoringRule)
	for _, r := range rules {
		bySymptom[r.SymptomID] = append(bySymptom[r.SymptomID], r)
	}
	for _, versions := range bySymptom {
		sort.Slice(versions, func(i, j int) bool {
			if !versions[i].EffectiveFrom.Equal(versions[j].EffectiveFrom) {
				return versions[i].EffectiveFrom.Before(versions[j].EffectiveFrom)
			}
			return versions[i].ID < versions[j].ID
		})
	}
	return &Catalog{reg: reg, bySymptom: bySymptom}
}

// Registry exposes the symptom registry backing this catalog.
func (c *Catalog) Registry() *registry.Registry {
	return c.reg
}

// ResolveWeight selects the rule version with the latest effective_from <= at
// and returns symptom.default_weight * rule.weight_multiplier. When two
// versions share an effective_from, the highest id wins: rules are
// append-only, so the highest id is the most recently created version. A
// version with effective_from in the future is never selected. With no
// applicable version the default weight applies alone.
//
// Returns registry.ErrUnknownSymptom for codes not in the registry.
func (c *Catalog) ResolveWeight(code string, at time.Time) (Resolution, error) {
	def, err := c.reg.Lookup(code)
	if err != nil {
		return Resolution{}, err
	}

	versions := c.bySymptom[def.ID]
	// First version strictly after `at`; the applicable one sits just before.
	idx := sort.Search(len(versions), func(i int) bool {
		return versions[i].EffectiveFrom.After(at)
	})
	if idx == 0 {
		return Resolution{Weight: def.DefaultWeight}, nil
	}

	rule := versions[idx-1]
	return Resolution{Weight: def.DefaultWeight * rule.WeightMultiplier, Rule: rule}, nil
}
