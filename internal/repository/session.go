package repository

import (
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
)

type SessionRepository interface {
	CreateSession(session *models.Session) error
	GetSessionByID(id int64) (*models.Session, error)
	GetSessionsByUser(userID int64) ([]*models.Session, error)
	CloseSession(id int64) (*models.Session, error)
}

type sessionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSessionRepository(db *sqlx.DB, logger *zap.Logger) SessionRepository {
	return &sessionRepository{db: db, logger: logger}
}

func (r *sessionRepository) CreateSession(session *models.Session) error {
	if session.FinalRiskLevel == "" {
		session.FinalRiskLevel = models.RiskLow
	}
	if session.SessionStatus == "" {
		session.SessionStatus = models.SessionOpen
	}
	query := `INSERT INTO sessions (user_id, final_risk_level, session_status)
	          VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowx(query, session.UserID, session.FinalRiskLevel, session.SessionStatus).StructScan(session)
}

func (r *sessionRepository) GetSessionByID(id int64) (*models.Session, error) {
	var session models.Session
	query := `SELECT id, user_id, final_risk_level, session_status, created_at, closed_at
	          FROM sessions WHERE id = $1`
	if err := r.db.Get(&session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) GetSessionsByUser(userID int64) ([]*models.Session, error) {
	var sessions []*models.Session
	query := `SELECT id, user_id, final_risk_level, session_status, created_at, closed_at
	          FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.Select(&sessions, query, userID); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CloseSession freezes the session. The state machine is enforced in SQL:
// CLOSED is terminal, so closing an already closed session is a no-op that
// returns the stored row unchanged.
func (r *sessionRepository) CloseSession(id int64) (*models.Session, error) {
	query := `UPDATE sessions SET session_status = $1, closed_at = $2
	          WHERE id = $3 AND session_status <> $1`
	if _, err := r.db.Exec(query, models.SessionClosed, time.Now().UTC(), id); err != nil {
		return nil, err
	}
	return r.GetSessionByID(id)
}
