package models

import "time"

type SessionStatus string

const (
	SessionOpen      SessionStatus = "OPEN"
	SessionEscalated SessionStatus = "ESCALATED"
	SessionClosed    SessionStatus = "CLOSED"
)

// Session represents a triage conversation stored in the 'sessions' table.
// FinalRiskLevel is the running worst-case over all risk events of the
// session and never decreases while the session is OPEN or ESCALATED.
type Session struct {
	ID             int64         `db:"id" json:"id"`
	UserID         int64         `db:"user_id" json:"user_id"`
	FinalRiskLevel RiskLevel     `db:"final_risk_level" json:"final_risk_level"`
	SessionStatus  SessionStatus `db:"session_status" json:"session_status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	ClosedAt       *time.Time    `db:"closed_at" json:"closed_at,omitempty"`
}

// ApplyRisk folds a new risk event into the session: the final risk level is
// the monotonic max over the LOW < MEDIUM < HIGH order, and a HIGH event
// moves an OPEN session to ESCALATED. A CLOSED session is frozen and ignores
// the event entirely.
func (s *Session) ApplyRisk(level RiskLevel) {
	if s.SessionStatus == SessionClosed {
		return
	}
	s.FinalRiskLevel = MaxRiskLevel(s.FinalRiskLevel, level)
	if level == RiskHigh && s.SessionStatus == SessionOpen {
		s.SessionStatus = SessionEscalated
	}
}

// Close marks the session CLOSED, freezing its final risk level. Closing is
// terminal: no transition leaves CLOSED.
func (s *Session) Close(at time.Time) {
	if s.SessionStatus == SessionClosed {
		return
	}
	s.SessionStatus = SessionClosed
	s.ClosedAt = &at
}
