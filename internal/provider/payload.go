// Package provider talks to the external AI triage provider and validates
// its payloads. Symptom extraction from free text is entirely the provider's
// job; this package only consumes the finished (code, confidence) list.
package provider

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload marks provider output that cannot be used for scoring.
// The caller stores the response with json_valid=false, creates no RiskEvent,
// and surfaces the anomaly for manual review instead of guessing a risk level.
var ErrMalformedPayload = errors.New("malformed provider payload")

// SymptomReading is one detected symptom as the provider reports it.
type SymptomReading struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

// Payload is the finished provider output for one patient message. RiskLevel
// is the provider's own declaration and is stored for audit only; the engine
// never uses it to bypass its own scoring.
type Payload struct {
	ModelVersion string           `json:"model_version"`
	RiskLevel    string           `json:"risk_level"`
	AdviceText   string           `json:"advice_text"`
	JSONValid    bool             `json:"json_valid"`
	Symptoms     []SymptomReading `json:"symptoms"`
}

// ParsePayload decodes and validates raw provider output.
func ParsePayload(raw []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (p *Payload) Validate() error {
	for i, s := range p.Symptoms {
		if s.Code == "" {
			return fmt.Errorf("%w: symptom %d has an empty code", ErrMalformedPayload, i)
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			return fmt.Errorf("%w: symptom %q confidence %v outside [0,1]", ErrMalformedPayload, s.Code, s.Confidence)
		}
	}
	return nil
}
