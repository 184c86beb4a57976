package risk

import "github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"

const (
	mandatoryReason = "Your responses indicate symptoms that need urgent attention. Please seek immediate medical care."
	optionalReason  = "Your responses suggest symptoms worth discussing with a doctor. Consider booking a follow-up consultation."
)

// Recommend derives the recommendations a risk event requires: HIGH gets
// exactly one MANDATORY "seek immediate care" recommendation, MEDIUM one
// OPTIONAL follow-up, LOW none. AcceptedByPatient always starts false; only
// an explicit patient action may set it.
func Recommend(event *models.RiskEvent) []*models.Recommendation {
	switch event.RiskLevel {
	case models.RiskHigh:
		return []*models.Recommendation{{
			RiskEventID: event.ID,
			SessionID:   event.SessionID,
			RecType:     models.RecMandatory,
			Reason:      mandatoryReason,
		}}
	case models.RiskMedium:
		return []*models.Recommendation{{
			RiskEventID: event.ID,
			SessionID:   event.SessionID,
			RecType:     models.RecOptional,
			Reason:      optionalReason,
		}}
	default:
		return nil
	}
}
