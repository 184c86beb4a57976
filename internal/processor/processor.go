// Package processor runs the triage loop: it picks up unanswered patient
// messages, asks the AI provider for a triage payload, scores the detected
// symptoms against the current rule catalog snapshot, and records the risk
// evaluation with all of its side effects.
package processor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/crypto"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/provider"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/repository"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/risk"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/rules"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/scoring"
)

const batchSize = 100

// Processor handles fetching, triaging, and recording patient messages.
type Processor struct {
	messageRepo    repository.MessageRepository
	responseRepo   repository.AiResponseRepository
	sessionRepo    repository.SessionRepository
	userRepo       repository.UserRepository
	ruleStore      rules.Store
	providerClient *provider.Client
	recorder       *risk.Recorder
	keyManager     *crypto.KeyManager
	thresholds     scoring.Thresholds
	lowRiskNotice  string
	logger         *zap.Logger
	pollInterval   int64
	locks          *sessionLocks
}

// NewProcessor creates a new triage processor.
func NewProcessor(
	messageRepo repository.MessageRepository,
	responseRepo repository.AiResponseRepository,
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	ruleStore rules.Store,
	providerClient *provider.Client,
	recorder *risk.Recorder,
	keyManager *crypto.KeyManager,
	thresholds scoring.Thresholds,
	lowRiskNotice string,
	logger *zap.Logger,
	pollInterval int64,
) *Processor {
	return &Processor{
		messageRepo:    messageRepo,
		responseRepo:   responseRepo,
		sessionRepo:    sessionRepo,
		userRepo:       userRepo,
		ruleStore:      ruleStore,
		providerClient: providerClient,
		recorder:       recorder,
		keyManager:     keyManager,
		thresholds:     thresholds,
		lowRiskNotice:  lowRiskNotice,
		logger:         logger,
		pollInterval:   pollInterval,
		locks:          newSessionLocks(),
	}
}

// Run starts the periodic triage cycle and blocks until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("Triage processor started.")

	ticker := time.NewTicker(time.Duration(p.pollInterval) * time.Second)
	defer ticker.Stop()

	// Recover evaluations interrupted by a previous shutdown before taking
	// on new work.
	p.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Triage processor stopped.")
			return
		case <-ticker.C:
			p.runCycle(ctx)
		}
	}
}

func (p *Processor) runCycle(ctx context.Context) {
	// Each cycle works against one catalog snapshot: rules are append-only,
	// so versions created mid-cycle simply wait for the next one.
	catalog, err := rules.LoadCatalog(p.ruleStore, p.logger)
	if err != nil {
		p.logger.Error("Failed to load rule catalog, skipping cycle", zap.Error(err))
		return
	}
	scorer := scoring.NewScorer(catalog, p.thresholds)

	p.recoverUnscored(ctx)

	messages, err := p.messageRepo.GetUnansweredInbound(batchSize)
	if err != nil {
		p.logger.Error("Failed to fetch unanswered messages", zap.Error(err))
		return
	}
	if len(messages) == 0 {
		return
	}
	p.logger.Info("Processing unanswered patient messages", zap.Int("count", len(messages)))

	// Different sessions run in parallel; within a session the messages stay
	// in arrival order under the session lock.
	bySession := make(map[int64][]*models.Message)
	for _, msg := range messages {
		bySession[msg.SessionID] = append(bySession[msg.SessionID], msg)
	}

	var wg sync.WaitGroup
	for sessionID, sessionMessages := range bySession {
		wg.Add(1)
		go func(sessionID int64, sessionMessages []*models.Message) {
			defer wg.Done()
			lock := p.locks.get(sessionID)
			lock.Lock()
			defer lock.Unlock()

			for _, msg := range sessionMessages {
				if ctx.Err() != nil {
					return
				}
				if err := p.processMessage(ctx, scorer, catalog, msg); err != nil {
					p.logger.Error("Failed to process message; will retry next cycle",
						zap.Int64("message_id", msg.ID),
						zap.Int64("session_id", sessionID),
						zap.Error(err))
					// Later messages of this session must not overtake a
					// failed one.
					return
				}
			}
		}(sessionID, sessionMessages)
	}
	wg.Wait()
}

func (p *Processor) processMessage(ctx context.Context, scorer *scoring.Scorer, catalog *rules.Catalog, msg *models.Message) error {
	session, err := p.sessionRepo.GetSessionByID(msg.SessionID)
	if err != nil {
		return err
	}
	user, err := p.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return err
	}

	text, err := p.keyManager.DecryptContent(msg.ContentEncrypted, user.ID, user.DKEncrypted)
	if err != nil {
		return err
	}

	payload, raw, err := p.providerClient.Triage(ctx, text)
	if err != nil {
		if errors.Is(err, provider.ErrMalformedPayload) {
			return p.storeMalformed(msg, user, raw, err)
		}
		return err
	}

	inputs := make([]scoring.Input, 0, len(payload.Symptoms))
	for _, s := range payload.Symptoms {
		inputs = append(inputs, scoring.Input{Code: s.Code, Confidence: s.Confidence})
	}
	result := scorer.Score(inputs, time.Now().UTC())

	if result.Anomalous() {
		// Scored over the known symptoms only; the gap goes to manual review
		// and is never treated as zero risk by default.
		p.logger.Warn("Provider reported unregistered symptom codes, response flagged for review",
			zap.Int64("message_id", msg.ID),
			zap.Strings("unknown_codes", result.UnknownCodes),
			zap.String("model_version", payload.ModelVersion))
	}

	adviceEncrypted, err := p.keyManager.EncryptContent(payload.AdviceText, user.ID, user.DKEncrypted)
	if err != nil {
		return err
	}

	// The OUT message initially carries the raw advice; for LOW risk the
	// recorder replaces it with the generic notice in the same transaction
	// that creates the risk event.
	outMsg := &models.Message{
		SessionID:        msg.SessionID,
		Direction:        models.DirectionOut,
		ContentEncrypted: adviceEncrypted,
	}
	if err := p.messageRepo.SaveMessage(outMsg); err != nil {
		return err
	}

	resp := &models.AiResponse{
		SessionID:         msg.SessionID,
		MessageID:         outMsg.ID,
		AnswersMessageID:  msg.ID,
		ModelVersion:      payload.ModelVersion,
		DeclaredRiskLevel: payload.RiskLevel,
		AdviceEncrypted:   adviceEncrypted,
		JSONValid:         payload.JSONValid && !result.Anomalous(),
		AdviceUsed:        result.RiskLevel != models.RiskLow,
		Scoreable:         true,
		RawPayload:        raw,
	}
	detected, err := detectedRows(result, catalog)
	if err != nil {
		return err
	}
	if err := p.responseRepo.SaveResponse(resp, detected); err != nil {
		return err
	}

	return p.recordEvaluation(ctx, resp, result, user)
}

// storeMalformed keeps the unparseable provider output for the human-review
// queue: json_valid=false, no risk event, and a sanitized fallback notice so
// the patient still gets an answer.
func (p *Processor) storeMalformed(msg *models.Message, user *models.User, raw []byte, cause error) error {
	p.logger.Error("Provider payload unparseable, storing for manual review",
		zap.Int64("message_id", msg.ID),
		zap.Error(cause))

	noticeEncrypted, err := p.keyManager.EncryptContent(p.lowRiskNotice, user.ID, user.DKEncrypted)
	if err != nil {
		return err
	}
	outMsg := &models.Message{
		SessionID:        msg.SessionID,
		Direction:        models.DirectionOut,
		ContentEncrypted: noticeEncrypted,
		IsSanitized:      true,
	}
	if err := p.messageRepo.SaveMessage(outMsg); err != nil {
		return err
	}

	resp := &models.AiResponse{
		SessionID:        msg.SessionID,
		MessageID:        outMsg.ID,
		AnswersMessageID: msg.ID,
		JSONValid:        false,
		Scoreable:        false,
		RawPayload:       raw,
	}
	return p.responseRepo.SaveResponse(resp, nil)
}

func (p *Processor) recordEvaluation(ctx context.Context, resp *models.AiResponse, result scoring.Result, user *models.User) error {
	var noticeEncrypted string
	if result.RiskLevel == models.RiskLow {
		var err error
		noticeEncrypted, err = p.keyManager.EncryptContent(p.lowRiskNotice, user.ID, user.DKEncrypted)
		if err != nil {
			return err
		}
	}
	_, err := p.recorder.Record(ctx, resp, result, noticeEncrypted)
	return err
}

// recoverUnscored replays responses whose evaluation never landed, using the
// frozen applied weights instead of re-resolving the catalog, so the outcome
// matches what the interrupted run would have recorded.
func (p *Processor) recoverUnscored(ctx context.Context) {
	responses, err := p.responseRepo.GetUnscored(batchSize)
	if err != nil {
		p.logger.Error("Failed to fetch unscored responses", zap.Error(err))
		return
	}

	for _, resp := range responses {
		if ctx.Err() != nil {
			return
		}

		lock := p.locks.get(resp.SessionID)
		lock.Lock()

		detected, err := p.responseRepo.GetDetectedSymptoms(resp.ID)
		if err == nil {
			result := scoring.Replay(detected, p.thresholds)
			p.logger.Info("Replaying interrupted risk evaluation",
				zap.Int64("ai_response_id", resp.ID),
				zap.String("risk_level", string(result.RiskLevel)))

			var session *models.Session
			var user *models.User
			if session, err = p.sessionRepo.GetSessionByID(resp.SessionID); err == nil {
				if user, err = p.userRepo.GetUserByID(session.UserID); err == nil {
					err = p.recordEvaluation(ctx, resp, result, user)
				}
			}
		}
		if err != nil {
			p.logger.Error("Failed to replay unscored response",
				zap.Int64("ai_response_id", resp.ID),
				zap.Error(err))
		}

		lock.Unlock()
	}
}

func detectedRows(result scoring.Result, catalog *rules.Catalog) ([]*models.DetectedSymptom, error) {
	detected := make([]*models.DetectedSymptom, 0, len(result.Symptoms))
	for _, s := range result.Symptoms {
		row := &models.DetectedSymptom{
			SymptomCode:   s.Code,
			Confidence:    s.Confidence,
			AppliedWeight: s.AppliedWeight,
			RuleID:        s.RuleID,
		}
		if s.Known {
			def, err := catalog.Registry().Lookup(s.Code)
			if err != nil {
				return nil, err
			}
			id := def.ID
			row.SymptomID = &id
		}
		detected = append(detected, row)
	}
	return detected, nil
}
