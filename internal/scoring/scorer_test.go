package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/registry"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/rules"
)

var testThresholds = Thresholds{MediumMin: 10.0, HighMin: 20.0}

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	reg := registry.New([]*models.SymptomDefinition{
		{ID: 1, Code: "fever", DefaultWeight: 8.0, SeverityClass: models.RiskMedium},
		{ID: 2, Code: "chest_pain", DefaultWeight: 10.0, SeverityClass: models.RiskHigh},
		{ID: 3, Code: "fatigue", DefaultWeight: 1.0, SeverityClass: models.RiskLow},
	})
	return NewScorer(rules.NewCatalog(reg, nil), testThresholds)
}

func TestClassifyBoundariesAreInclusive(t *testing.T) {
	assert.Equal(t, models.RiskLow, testThresholds.Classify(0))
	assert.Equal(t, models.RiskLow, testThresholds.Classify(9.99))
	assert.Equal(t, models.RiskMedium, testThresholds.Classify(10.0))
	assert.Equal(t, models.RiskMedium, testThresholds.Classify(19.99))
	assert.Equal(t, models.RiskHigh, testThresholds.Classify(20.0))
	assert.Equal(t, models.RiskHigh, testThresholds.Classify(57.3))
}

func TestScoreEmptySymptomList(t *testing.T) {
	s := newTestScorer(t)

	res := s.Score(nil, time.Now())
	assert.Equal(t, 0.0, res.WeightedScore)
	assert.Equal(t, models.RiskLow, res.RiskLevel)
	assert.Empty(t, res.Symptoms)
	assert.False(t, res.Anomalous())
}

func TestScoreWeightedSum(t *testing.T) {
	s := newTestScorer(t)

	// 8.0*1.0 + 10.0*0.7 = 15.00 -> MEDIUM
	res := s.Score([]Input{
		{Code: "fever", Confidence: 1.0},
		{Code: "chest_pain", Confidence: 0.7},
	}, time.Now())

	assert.Equal(t, 15.0, res.WeightedScore)
	assert.Equal(t, models.RiskMedium, res.RiskLevel)
	require.Len(t, res.Symptoms, 2)
	assert.Equal(t, 8.0, res.Symptoms[0].Contribution)
	assert.InDelta(t, 7.0, res.Symptoms[1].Contribution, 1e-9)
}

func TestScoreRoundsTheSumNotTheTerms(t *testing.T) {
	s := newTestScorer(t)

	// Three contributions of 0.005 each. Rounding per term would give 0.03;
	// rounding the sum gives round(0.015) = 0.02.
	res := s.Score([]Input{
		{Code: "fatigue", Confidence: 0.005},
		{Code: "fatigue", Confidence: 0.005},
		{Code: "fatigue", Confidence: 0.005},
	}, time.Now())

	assert.Equal(t, 0.02, res.WeightedScore)
}

func TestScoreUnknownSymptomContributesZero(t *testing.T) {
	s := newTestScorer(t)

	res := s.Score([]Input{
		{Code: "fever", Confidence: 0.5},
		{Code: "ghost_limb", Confidence: 0.9},
	}, time.Now())

	assert.Equal(t, 4.0, res.WeightedScore)
	assert.True(t, res.Anomalous())
	assert.Equal(t, []string{"ghost_limb"}, res.UnknownCodes)

	// The unknown code still gets an audit row, zero-weighted.
	require.Len(t, res.Symptoms, 2)
	unknown := res.Symptoms[1]
	assert.Equal(t, "ghost_limb", unknown.Code)
	assert.False(t, unknown.Known)
	assert.Equal(t, 0.0, unknown.AppliedWeight)
	assert.Equal(t, 0.0, unknown.Contribution)
}

func TestScoreIsDeterministic(t *testing.T) {
	s := newTestScorer(t)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	inputs := []Input{
		{Code: "fever", Confidence: 0.8},
		{Code: "chest_pain", Confidence: 0.95},
		{Code: "fatigue", Confidence: 0.3},
	}

	first := s.Score(inputs, at)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, s.Score(inputs, at))
	}
}

func TestReplayRebuildsFromFrozenWeights(t *testing.T) {
	symptomID := int64(2)
	ruleID := int64(4)

	// The stored applied weight (25.0) differs from any current default:
	// replay must trust the audit rows, not re-resolve.
	res := Replay([]*models.DetectedSymptom{
		{SymptomID: &symptomID, SymptomCode: "chest_pain", Confidence: 0.8, AppliedWeight: 25.0, RuleID: &ruleID},
		{SymptomID: nil, SymptomCode: "ghost_limb", Confidence: 0.5, AppliedWeight: 0},
	}, testThresholds)

	assert.Equal(t, 20.0, res.WeightedScore)
	assert.Equal(t, models.RiskHigh, res.RiskLevel)
	assert.True(t, res.Anomalous())
	require.Len(t, res.Symptoms, 2)
	assert.Equal(t, &ruleID, res.Symptoms[0].RuleID)
	assert.False(t, res.Symptoms[1].Known)
}
