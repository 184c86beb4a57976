package models

import "time"

type RecType string

const (
	RecMandatory RecType = "MANDATORY"
	RecOptional  RecType = "OPTIONAL"
)

// Recommendation is a care recommendation derived from a risk event, stored
// in 'recommendations'. AcceptedByPatient starts false and is only ever set
// by an explicit patient action; acceptance is tracked for audit and has no
// effect on session status.
type Recommendation struct {
	ID                int64     `db:"id" json:"id"`
	RiskEventID       int64     `db:"risk_event_id" json:"risk_event_id"`
	SessionID         int64     `db:"session_id" json:"session_id"`
	RecType           RecType   `db:"rec_type" json:"rec_type"`
	Reason            string    `db:"reason" json:"reason"`
	AcceptedByPatient bool      `db:"accepted_by_patient" json:"accepted_by_patient"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
