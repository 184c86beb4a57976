package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRiskLevelOrder(t *testing.T) {
	assert.True(t, RiskLow.Severity() < RiskMedium.Severity())
	assert.True(t, RiskMedium.Severity() < RiskHigh.Severity())
	assert.Equal(t, 0, RiskLevel("BANANAS").Severity())

	assert.Equal(t, RiskHigh, MaxRiskLevel(RiskMedium, RiskHigh))
	assert.Equal(t, RiskHigh, MaxRiskLevel(RiskHigh, RiskLow))
	assert.Equal(t, RiskMedium, MaxRiskLevel(RiskMedium, RiskLow))
}

func TestApplyRiskIsMonotonic(t *testing.T) {
	s := &Session{FinalRiskLevel: RiskLow, SessionStatus: SessionOpen}

	s.ApplyRisk(RiskMedium)
	assert.Equal(t, RiskMedium, s.FinalRiskLevel)
	assert.Equal(t, SessionOpen, s.SessionStatus)

	// A later LOW event never lowers the rollup.
	s.ApplyRisk(RiskLow)
	assert.Equal(t, RiskMedium, s.FinalRiskLevel)
}

func TestApplyRiskHighEscalates(t *testing.T) {
	s := &Session{FinalRiskLevel: RiskLow, SessionStatus: SessionOpen}

	s.ApplyRisk(RiskHigh)
	assert.Equal(t, RiskHigh, s.FinalRiskLevel)
	assert.Equal(t, SessionEscalated, s.SessionStatus)

	// ESCALATED is sticky across later, calmer events.
	s.ApplyRisk(RiskLow)
	assert.Equal(t, RiskHigh, s.FinalRiskLevel)
	assert.Equal(t, SessionEscalated, s.SessionStatus)
}

func TestApplyRiskIgnoredWhenClosed(t *testing.T) {
	s := &Session{FinalRiskLevel: RiskLow, SessionStatus: SessionOpen}
	s.Close(time.Now())

	s.ApplyRisk(RiskHigh)
	assert.Equal(t, RiskLow, s.FinalRiskLevel)
	assert.Equal(t, SessionClosed, s.SessionStatus)
}

func TestCloseIsTerminal(t *testing.T) {
	s := &Session{FinalRiskLevel: RiskMedium, SessionStatus: SessionEscalated}

	first := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	s.Close(first)
	assert.Equal(t, SessionClosed, s.SessionStatus)
	assert.Equal(t, &first, s.ClosedAt)

	// Closing again does not move the timestamp.
	s.Close(first.Add(time.Hour))
	assert.Equal(t, &first, s.ClosedAt)
}
