// Package scoring computes the weighted score and risk classification for a
// set of detected symptoms. It is pure: same inputs and same catalog snapshot
// at the same evaluation date always yield the same result, so it needs no
// locking and may run on any number of workers.
package scoring

import (
	"errors"
	"math"
	"time"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/registry"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/rules"
)

// Input is one detected symptom as reported by the AI provider.
type Input struct {
	Code       string
	Confidence float64 // 0..1
}

// SymptomScore is the per-symptom audit detail of an evaluation. For an
// unknown code Known is false and the applied weight is zero; the row is
// still emitted so the gap is recorded, never silently dropped.
type SymptomScore struct {
	Code          string
	Confidence    float64
	AppliedWeight float64
	Contribution  float64
	RuleID        *int64
	Known         bool
}

// Result is one scoring evaluation.
type Result struct {
	WeightedScore float64
	RiskLevel     models.RiskLevel
	Symptoms      []SymptomScore
	UnknownCodes  []string
}

// Anomalous reports whether the evaluation hit unknown symptom codes and the
// owning response should be flagged for manual review.
func (r Result) Anomalous() bool {
	return len(r.UnknownCodes) > 0
}

// Thresholds is the ordered breakpoint table for risk classification.
// Classification is inclusive (>=) at each boundary and checked from HIGH
// down, so a score landing exactly on a boundary takes the higher tier:
// when uncertain, escalate, never downgrade.
type Thresholds struct {
	MediumMin float64
	HighMin   float64
}

func (t Thresholds) Classify(score float64) models.RiskLevel {
	switch {
	case score >= t.HighMin:
		return models.RiskHigh
	case score >= t.MediumMin:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

type Scorer struct {
	catalog    *rules.Catalog
	thresholds Thresholds
}

func NewScorer(catalog *rules.Catalog, thresholds Thresholds) *Scorer {
	return &Scorer{catalog: catalog, thresholds: thresholds}
}

// Score resolves each detected symptom's effective weight at the evaluation
// date and sums weight*confidence contributions. The sum is rounded to two
// decimal places once, at the end, so per-term rounding error cannot
// compound. An empty symptom list scores 0/LOW; the caller still records the
// event, since the absence of symptoms is itself worth auditing.
func (s *Scorer) Score(symptoms []Input, at time.Time) Result {
	res := Result{
		Symptoms: make([]SymptomScore, 0, len(symptoms)),
	}

	var sum float64
	for _, in := range symptoms {
		resolution, err := s.catalog.ResolveWeight(in.Code, at)
		if err != nil {
			if errors.Is(err, registry.ErrUnknownSymptom) {
				res.UnknownCodes = append(res.UnknownCodes, in.Code)
				res.Symptoms = append(res.Symptoms, SymptomScore{
					Code:       in.Code,
					Confidence: in.Confidence,
				})
				continue
			}
			// ResolveWeight only fails on unknown codes today; keep the
			// symptom visible with zero weight if that ever changes.
			res.UnknownCodes = append(res.UnknownCodes, in.Code)
			res.Symptoms = append(res.Symptoms, SymptomScore{Code: in.Code, Confidence: in.Confidence})
			continue
		}

		contribution := resolution.Weight * in.Confidence
		sum += contribution

		score := SymptomScore{
			Code:          in.Code,
			Confidence:    in.Confidence,
			AppliedWeight: resolution.Weight,
			Contribution:  contribution,
			Known:         true,
		}
		if resolution.Rule != nil {
			ruleID := resolution.Rule.ID
			score.RuleID = &ruleID
		}
		res.Symptoms = append(res.Symptoms, score)
	}

	res.WeightedScore = round2(sum)
	res.RiskLevel = s.thresholds.Classify(res.WeightedScore)
	return res
}

// Replay rebuilds a Result from frozen detected_symptoms audit rows. Used by
// crash recovery to record an evaluation whose response was persisted but
// whose risk event was not: the applied weights are read back as stored, so
// the replayed result is identical to the original even if the rule catalog
// has moved on since.
func Replay(detected []*models.DetectedSymptom, thresholds Thresholds) Result {
	res := Result{
		Symptoms: make([]SymptomScore, 0, len(detected)),
	}

	var sum float64
	for _, d := range detected {
		known := d.SymptomID != nil
		contribution := 0.0
		if known {
			contribution = d.AppliedWeight * d.Confidence
			sum += contribution
		} else {
			res.UnknownCodes = append(res.UnknownCodes, d.SymptomCode)
		}
		res.Symptoms = append(res.Symptoms, SymptomScore{
			Code:          d.SymptomCode,
			Confidence:    d.Confidence,
			AppliedWeight: d.AppliedWeight,
			Contribution:  contribution,
			RuleID:        d.RuleID,
			Known:         known,
		})
	}

	res.WeightedScore = round2(sum)
	res.RiskLevel = thresholds.Classify(res.WeightedScore)
	return res
}

// round2 rounds half away from zero to two decimal places, matching the
// stored weighted_score precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
