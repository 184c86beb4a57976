package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	raw := []byte(`{
		"model_version": "triage-v2.1",
		"risk_level": "MEDIUM",
		"advice_text": "Rest and monitor your temperature.",
		"json_valid": true,
		"symptoms": [
			{"code": "fever", "confidence": 0.92},
			{"code": "fatigue", "confidence": 0.4}
		]
	}`)

	p, err := ParsePayload(raw)
	require.NoError(t, err)
	assert.Equal(t, "triage-v2.1", p.ModelVersion)
	require.Len(t, p.Symptoms, 2)
	assert.Equal(t, "fever", p.Symptoms[0].Code)
	assert.Equal(t, 0.92, p.Symptoms[0].Confidence)
}

func TestParsePayloadRejectsBrokenJSON(t *testing.T) {
	_, err := ParsePayload([]byte(`{"model_version": "v1", "symptoms": [`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParsePayloadRejectsEmptySymptomCode(t *testing.T) {
	_, err := ParsePayload([]byte(`{"symptoms": [{"code": "", "confidence": 0.5}]}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParsePayloadRejectsConfidenceOutOfRange(t *testing.T) {
	for _, confidence := range []string{"-0.1", "1.01", "7"} {
		_, err := ParsePayload([]byte(`{"symptoms": [{"code": "fever", "confidence": ` + confidence + `}]}`))
		assert.ErrorIs(t, err, ErrMalformedPayload, "confidence %s", confidence)
	}
}

func TestParsePayloadAllowsEmptySymptomList(t *testing.T) {
	p, err := ParsePayload([]byte(`{"model_version": "v1", "symptoms": []}`))
	require.NoError(t, err)
	assert.Empty(t, p.Symptoms)
}
