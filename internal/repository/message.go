package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
)

type MessageRepository interface {
	SaveMessage(msg *models.Message) error
	GetMessageByID(id int64) (*models.Message, error)
	GetMessagesBySession(sessionID int64) ([]*models.Message, error)
	// GetUnansweredInbound returns IN messages of open sessions that have no
	// AiResponse yet, oldest first, so the triage worker processes each
	// session's messages in the order they arrived.
	GetUnansweredInbound(limit int) ([]*models.Message, error)
}

type messageRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewMessageRepository(db *sqlx.DB, logger *zap.Logger) MessageRepository {
	return &messageRepository{db: db, logger: logger}
}

func (r *messageRepository) SaveMessage(msg *models.Message) error {
	query := `INSERT INTO messages (session_id, direction, content_encrypted, is_sanitized)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowx(query, msg.SessionID, msg.Direction, msg.ContentEncrypted, msg.IsSanitized).StructScan(msg)
}

func (r *messageRepository) GetMessageByID(id int64) (*models.Message, error) {
	var msg models.Message
	query := `SELECT id, session_id, direction, content_encrypted, is_sanitized, created_at
	          FROM messages WHERE id = $1`
	if err := r.db.Get(&msg, query, id); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) GetMessagesBySession(sessionID int64) ([]*models.Message, error) {
	var messages []*models.Message
	query := `SELECT id, session_id, direction, content_encrypted, is_sanitized, created_at
	          FROM messages WHERE session_id = $1 ORDER BY id`
	if err := r.db.Select(&messages, query, sessionID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) GetUnansweredInbound(limit int) ([]*models.Message, error) {
	var messages []*models.Message
	query := `
		SELECT m.id, m.session_id, m.direction, m.content_encrypted, m.is_sanitized, m.created_at
		FROM messages m
		JOIN sessions s ON s.id = m.session_id
		LEFT JOIN ai_responses r ON r.session_id = m.session_id AND r.answers_message_id = m.id
		WHERE m.direction = 'IN'
		  AND s.session_status <> 'CLOSED'
		  AND r.id IS NULL
		ORDER BY m.id
		LIMIT $1`
	if err := r.db.Select(&messages, query, limit); err != nil {
		return nil, err
	}
	return messages, nil
}
