package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/registry"
)

func testCatalog(t *testing.T, rules []*models.ScoringRule) *Catalog {
	t.Helper()
	reg := registry.New([]*models.SymptomDefinition{
		{ID: 1, Code: "chest_pain", DefaultWeight: 8.0, SeverityClass: models.RiskHigh},
		{ID: 2, Code: "headache", DefaultWeight: 2.0, SeverityClass: models.RiskLow},
	})
	return NewCatalog(reg, rules)
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return ts
}

func TestResolveWeightDefaultWhenNoRules(t *testing.T) {
	c := testCatalog(t, nil)

	res, err := c.ResolveWeight("chest_pain", date(t, "2025-06-01"))
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Weight)
	assert.Nil(t, res.Rule)
}

func TestResolveWeightPicksLatestEffectiveVersion(t *testing.T) {
	c := testCatalog(t, []*models.ScoringRule{
		{ID: 1, SymptomID: 1, WeightMultiplier: 1.5, EffectiveFrom: date(t, "2025-01-01")},
		{ID: 2, SymptomID: 1, WeightMultiplier: 2.0, EffectiveFrom: date(t, "2025-05-01")},
		{ID: 3, SymptomID: 1, WeightMultiplier: 0.5, EffectiveFrom: date(t, "2025-09-01")},
	})

	// Between the second and third versions the second applies.
	res, err := c.ResolveWeight("chest_pain", date(t, "2025-06-15"))
	require.NoError(t, err)
	require.NotNil(t, res.Rule)
	assert.Equal(t, int64(2), res.Rule.ID)
	assert.Equal(t, 16.0, res.Weight)

	// Exactly on a boundary the new version is already effective.
	res, err = c.ResolveWeight("chest_pain", date(t, "2025-09-01"))
	require.NoError(t, err)
	require.NotNil(t, res.Rule)
	assert.Equal(t, int64(3), res.Rule.ID)
	assert.Equal(t, 4.0, res.Weight)
}

func TestResolveWeightIgnoresFutureVersions(t *testing.T) {
	c := testCatalog(t, []*models.ScoringRule{
		{ID: 7, SymptomID: 1, WeightMultiplier: 3.0, EffectiveFrom: date(t, "2025-12-01")},
	})

	res, err := c.ResolveWeight("chest_pain", date(t, "2025-06-01"))
	require.NoError(t, err)
	assert.Nil(t, res.Rule)
	assert.Equal(t, 8.0, res.Weight)
}

func TestResolveWeightTieBreaksOnHighestID(t *testing.T) {
	// Two versions sharing an effective_from: the most recently created one
	// (highest id) wins.
	c := testCatalog(t, []*models.ScoringRule{
		{ID: 5, SymptomID: 1, WeightMultiplier: 1.25, EffectiveFrom: date(t, "2025-03-01")},
		{ID: 9, SymptomID: 1, WeightMultiplier: 2.5, EffectiveFrom: date(t, "2025-03-01")},
	})

	res, err := c.ResolveWeight("chest_pain", date(t, "2025-04-01"))
	require.NoError(t, err)
	require.NotNil(t, res.Rule)
	assert.Equal(t, int64(9), res.Rule.ID)
	assert.Equal(t, 20.0, res.Weight)
}

func TestResolveWeightUnknownSymptom(t *testing.T) {
	c := testCatalog(t, nil)

	_, err := c.ResolveWeight("space_madness", date(t, "2025-06-01"))
	assert.ErrorIs(t, err, registry.ErrUnknownSymptom)
}

func TestResolveWeightIsStablePerSnapshot(t *testing.T) {
	c := testCatalog(t, []*models.ScoringRule{
		{ID: 1, SymptomID: 2, WeightMultiplier: 4.0, EffectiveFrom: date(t, "2025-01-01")},
	})

	at := date(t, "2025-02-02")
	first, err := c.ResolveWeight("headache", at)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := c.ResolveWeight("headache", at)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
