package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/crypto"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/repository"
)

type SessionHandler interface {
	CreateSession(c *gin.Context)
	GetSessions(c *gin.Context)
	GetSessionByID(c *gin.Context)
	CloseSession(c *gin.Context)
	GetMessages(c *gin.Context)
	PostMessage(c *gin.Context)
}

type sessionHandler struct {
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	keyManager  *crypto.KeyManager
	logger      *zap.Logger
}

func NewSessionHandler(
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	keyManager *crypto.KeyManager,
	logger *zap.Logger,
) SessionHandler {
	return &sessionHandler{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		keyManager:  keyManager,
		logger:      logger,
	}
}

// ownedSession loads the session from the :id param and enforces that the
// caller owns it (admins may read any). Writes the error response itself and
// returns nil when the request should stop.
func (h *sessionHandler) ownedSession(c *gin.Context) *models.Session {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return nil
	}

	session, err := h.sessionRepo.GetSessionByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return nil
		}
		h.logger.Error("Failed to get session", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		return nil
	}

	if session.UserID != c.GetInt64("user_id") && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your session"})
		return nil
	}
	return session
}

func (h *sessionHandler) CreateSession(c *gin.Context) {
	session := &models.Session{UserID: c.GetInt64("user_id")}
	if err := h.sessionRepo.CreateSession(session); err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (h *sessionHandler) GetSessions(c *gin.Context) {
	sessions, err := h.sessionRepo.GetSessionsByUser(c.GetInt64("user_id"))
	if err != nil {
		h.logger.Error("Failed to list sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *sessionHandler) GetSessionByID(c *gin.Context) {
	session := h.ownedSession(c)
	if session == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// CloseSession handles POST /api/sessions/:id/close. Closing freezes the
// final risk level; the transition is terminal.
func (h *sessionHandler) CloseSession(c *gin.Context) {
	session := h.ownedSession(c)
	if session == nil {
		return
	}

	closed, err := h.sessionRepo.CloseSession(session.ID)
	if err != nil {
		h.logger.Error("Failed to close session", zap.Int64("id", session.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": closed})
}

type messageView struct {
	ID          int64                   `json:"id"`
	Direction   models.MessageDirection `json:"direction"`
	Content     string                  `json:"content"`
	IsSanitized bool                    `json:"is_sanitized"`
}

func (h *sessionHandler) GetMessages(c *gin.Context) {
	session := h.ownedSession(c)
	if session == nil {
		return
	}

	owner, err := h.userRepo.GetUserByID(session.UserID)
	if err != nil {
		h.logger.Error("Failed to load session owner", zap.Int64("session_id", session.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}

	messages, err := h.messageRepo.GetMessagesBySession(session.ID)
	if err != nil {
		h.logger.Error("Failed to list messages", zap.Int64("session_id", session.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}

	views := make([]messageView, 0, len(messages))
	for _, msg := range messages {
		content, err := h.keyManager.DecryptContent(msg.ContentEncrypted, owner.ID, owner.DKEncrypted)
		if err != nil {
			h.logger.Error("Failed to decrypt message", zap.Int64("message_id", msg.ID), zap.Error(err))
			content = ""
		}
		views = append(views, messageView{
			ID:          msg.ID,
			Direction:   msg.Direction,
			Content:     content,
			IsSanitized: msg.IsSanitized,
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": views})
}

type postMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// PostMessage handles POST /api/sessions/:id/messages. The message is stored
// encrypted and answered asynchronously by the triage worker.
func (h *sessionHandler) PostMessage(c *gin.Context) {
	session := h.ownedSession(c)
	if session == nil {
		return
	}
	if session.SessionStatus == models.SessionClosed {
		c.JSON(http.StatusConflict, gin.H{"error": "Session is closed"})
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner, err := h.userRepo.GetUserByID(session.UserID)
	if err != nil {
		h.logger.Error("Failed to load session owner", zap.Int64("session_id", session.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store message"})
		return
	}

	encrypted, err := h.keyManager.EncryptContent(req.Text, owner.ID, owner.DKEncrypted)
	if err != nil {
		h.logger.Error("Failed to encrypt message", zap.Int64("session_id", session.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store message"})
		return
	}

	msg := &models.Message{
		SessionID:        session.ID,
		Direction:        models.DirectionIn,
		ContentEncrypted: encrypted,
	}
	if err := h.messageRepo.SaveMessage(msg); err != nil {
		h.logger.Error("Failed to save message", zap.Int64("session_id", session.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store message"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message_id": msg.ID})
}
