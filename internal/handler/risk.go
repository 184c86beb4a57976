package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/repository"
)

type RiskHandler interface {
	GetRiskEvents(c *gin.Context)
	GetRecommendations(c *gin.Context)
	AcceptRecommendation(c *gin.Context)
}

type riskHandler struct {
	riskRepo    repository.RiskRepository
	sessionRepo repository.SessionRepository
	logger      *zap.Logger
}

func NewRiskHandler(riskRepo repository.RiskRepository, sessionRepo repository.SessionRepository, logger *zap.Logger) RiskHandler {
	return &riskHandler{riskRepo: riskRepo, sessionRepo: sessionRepo, logger: logger}
}

func (h *riskHandler) sessionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return 0, false
	}

	session, err := h.sessionRepo.GetSessionByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return 0, false
		}
		h.logger.Error("Failed to get session", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		return 0, false
	}

	if session.UserID != c.GetInt64("user_id") && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your session"})
		return 0, false
	}
	return session.ID, true
}

// GetRiskEvents handles GET /api/sessions/:id/risk-events.
func (h *riskHandler) GetRiskEvents(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	events, err := h.riskRepo.GetEventsBySession(sessionID)
	if err != nil {
		h.logger.Error("Failed to list risk events", zap.Int64("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve risk events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"risk_events": events})
}

// GetRecommendations handles GET /api/sessions/:id/recommendations.
func (h *riskHandler) GetRecommendations(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	recs, err := h.riskRepo.GetRecommendationsBySession(sessionID)
	if err != nil {
		h.logger.Error("Failed to list recommendations", zap.Int64("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recommendations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// AcceptRecommendation handles POST /api/recommendations/:id/accept — the
// explicit patient action that sets accepted_by_patient. Acceptance is audit
// trail only: it never changes session status.
func (h *riskHandler) AcceptRecommendation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recommendation ID"})
		return
	}

	rec, err := h.riskRepo.GetRecommendationByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recommendation not found"})
			return
		}
		h.logger.Error("Failed to get recommendation", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recommendation"})
		return
	}

	session, err := h.sessionRepo.GetSessionByID(rec.SessionID)
	if err != nil {
		h.logger.Error("Failed to get session for recommendation", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recommendation"})
		return
	}
	if session.UserID != c.GetInt64("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your recommendation"})
		return
	}

	accepted, err := h.riskRepo.AcceptRecommendation(id)
	if err != nil {
		h.logger.Error("Failed to accept recommendation", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept recommendation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendation": accepted})
}
