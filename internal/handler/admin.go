package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/repository"
)

// AdminHandler manages the scoring reference data. Symptom definitions are
// immutable once created; scoring rules are append-only versions.
type AdminHandler interface {
	CreateSymptom(c *gin.Context)
	ListSymptoms(c *gin.Context)
	CreateRule(c *gin.Context)
	ListRules(c *gin.Context)
}

type adminHandler struct {
	symptomRepo repository.SymptomRepository
	logger      *zap.Logger
}

func NewAdminHandler(symptomRepo repository.SymptomRepository, logger *zap.Logger) AdminHandler {
	return &adminHandler{symptomRepo: symptomRepo, logger: logger}
}

type createSymptomRequest struct {
	Code          string  `json:"code" binding:"required"`
	Description   string  `json:"description" binding:"required"`
	DefaultWeight float64 `json:"default_weight" binding:"required,gt=0"`
	SeverityClass string  `json:"severity_class" binding:"required"`
}

func (h *adminHandler) CreateSymptom(c *gin.Context) {
	var req createSymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	severity := models.RiskLevel(req.SeverityClass)
	if !severity.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "severity_class must be LOW, MEDIUM or HIGH"})
		return
	}

	def := &models.SymptomDefinition{
		Code:          req.Code,
		Description:   req.Description,
		DefaultWeight: req.DefaultWeight,
		SeverityClass: severity,
	}
	if err := h.symptomRepo.CreateDefinition(def); err != nil {
		h.logger.Error("Failed to create symptom definition", zap.String("code", req.Code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create symptom definition"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"symptom": def})
}

func (h *adminHandler) ListSymptoms(c *gin.Context) {
	defs, err := h.symptomRepo.GetAllSymptomDefinitions()
	if err != nil {
		h.logger.Error("Failed to list symptom definitions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve symptom definitions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symptoms": defs})
}

type createRuleRequest struct {
	SymptomCode      string    `json:"symptom_code" binding:"required"`
	RuleName         string    `json:"rule_name" binding:"required"`
	WeightMultiplier float64   `json:"weight_multiplier" binding:"required,gt=0"`
	AppliesToRisk    string    `json:"applies_to_risk" binding:"required"`
	EffectiveFrom    time.Time `json:"effective_from" binding:"required"`
}

// CreateRule appends a new rule version; there is deliberately no update or
// delete endpoint, so past evaluations stay reproducible.
func (h *adminHandler) CreateRule(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target := models.RiskLevel(req.AppliesToRisk)
	if !target.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "applies_to_risk must be LOW, MEDIUM or HIGH"})
		return
	}

	def, err := h.symptomRepo.GetDefinitionByCode(req.SymptomCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown symptom code"})
			return
		}
		h.logger.Error("Failed to look up symptom", zap.String("code", req.SymptomCode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
		return
	}

	rule := &models.ScoringRule{
		SymptomID:        def.ID,
		RuleName:         req.RuleName,
		WeightMultiplier: req.WeightMultiplier,
		AppliesToRisk:    target,
		EffectiveFrom:    req.EffectiveFrom,
	}
	if err := h.symptomRepo.CreateRule(rule); err != nil {
		h.logger.Error("Failed to create scoring rule", zap.String("code", req.SymptomCode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

func (h *adminHandler) ListRules(c *gin.Context) {
	ruleRows, err := h.symptomRepo.GetAllScoringRules()
	if err != nil {
		h.logger.Error("Failed to list scoring rules", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": ruleRows})
}
