package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/notifier"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/scoring"
)

// fakeStore records evaluations in memory and is idempotent on
// Event.AiResponseID, like the real repository.
type fakeStore struct {
	byResponse map[int64]*models.RiskEvent
	saved      []*Evaluation
	failures   int // SaveEvaluation errors this many times before succeeding
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{byResponse: make(map[int64]*models.RiskEvent)}
}

func (s *fakeStore) SaveEvaluation(_ context.Context, eval *Evaluation) (*models.RiskEvent, bool, error) {
	if s.failures > 0 {
		s.failures--
		return nil, false, errors.New("connection reset")
	}
	if existing, ok := s.byResponse[eval.Event.AiResponseID]; ok {
		return existing, false, nil
	}
	s.nextID++
	eval.Event.ID = s.nextID
	s.byResponse[eval.Event.AiResponseID] = eval.Event
	s.saved = append(s.saved, eval)
	return eval.Event, true, nil
}

type countingNotifier struct {
	events []notifier.Event
}

func (n *countingNotifier) RiskEventCreated(_ context.Context, event notifier.Event) error {
	n.events = append(n.events, event)
	return nil
}

func newTestRecorder(store Store, n notifier.Notifier) *Recorder {
	r := NewRecorder(store, n, zap.NewNop())
	r.maxAttempts = 3
	return r
}

func resultWith(level models.RiskLevel, score float64) scoring.Result {
	return scoring.Result{WeightedScore: score, RiskLevel: level}
}

func TestRecordHighRisk(t *testing.T) {
	store := newFakeStore()
	notif := &countingNotifier{}
	rec := newTestRecorder(store, notif)

	resp := &models.AiResponse{ID: 11, SessionID: 3, MessageID: 42}
	event, err := rec.Record(context.Background(), resp, resultWith(models.RiskHigh, 24.5), "")
	require.NoError(t, err)

	assert.Equal(t, models.RiskHigh, event.RiskLevel)
	assert.Equal(t, 24.5, event.WeightedScore)
	assert.True(t, event.AdviceShown)
	assert.False(t, event.EvaluatedAt.IsZero())

	require.Len(t, store.saved, 1)
	eval := store.saved[0]
	assert.Nil(t, eval.Sanitize, "raw advice stays visible above LOW")
	require.Len(t, eval.Recommendations, 1)
	assert.Equal(t, models.RecMandatory, eval.Recommendations[0].RecType)
	assert.False(t, eval.Recommendations[0].AcceptedByPatient)

	require.Len(t, notif.events, 1)
	assert.Equal(t, int64(3), notif.events[0].SessionID)
}

func TestRecordMediumRisk(t *testing.T) {
	store := newFakeStore()
	rec := newTestRecorder(store, &countingNotifier{})

	resp := &models.AiResponse{ID: 12, SessionID: 3, MessageID: 43}
	event, err := rec.Record(context.Background(), resp, resultWith(models.RiskMedium, 12.0), "")
	require.NoError(t, err)
	assert.True(t, event.AdviceShown)

	eval := store.saved[0]
	assert.Nil(t, eval.Sanitize)
	require.Len(t, eval.Recommendations, 1)
	assert.Equal(t, models.RecOptional, eval.Recommendations[0].RecType)
}

func TestRecordLowRiskSanitizesAdvice(t *testing.T) {
	store := newFakeStore()
	rec := newTestRecorder(store, &countingNotifier{})

	resp := &models.AiResponse{ID: 13, SessionID: 5, MessageID: 44}
	event, err := rec.Record(context.Background(), resp, resultWith(models.RiskLow, 3.2), "enc-notice")
	require.NoError(t, err)
	assert.False(t, event.AdviceShown)

	eval := store.saved[0]
	assert.Empty(t, eval.Recommendations)
	require.NotNil(t, eval.Sanitize)
	assert.Equal(t, int64(44), eval.Sanitize.MessageID)
	assert.Equal(t, "enc-notice", eval.Sanitize.ContentEncrypted)
}

func TestRecordIsIdempotentOnResponseID(t *testing.T) {
	store := newFakeStore()
	notif := &countingNotifier{}
	rec := newTestRecorder(store, notif)

	resp := &models.AiResponse{ID: 20, SessionID: 7, MessageID: 50}
	first, err := rec.Record(context.Background(), resp, resultWith(models.RiskHigh, 30.0), "")
	require.NoError(t, err)

	second, err := rec.Record(context.Background(), resp, resultWith(models.RiskHigh, 30.0), "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.saved, 1, "no duplicate event rows")
	assert.Len(t, notif.events, 1, "no duplicate notifications")
}

func TestRecordRetriesTransientFailures(t *testing.T) {
	store := newFakeStore()
	store.failures = 2
	notif := &countingNotifier{}
	rec := newTestRecorder(store, notif)

	resp := &models.AiResponse{ID: 21, SessionID: 7, MessageID: 51}
	event, err := rec.Record(context.Background(), resp, resultWith(models.RiskMedium, 11.0), "")
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.Len(t, notif.events, 1)
}

func TestRecordGivesUpAfterMaxAttempts(t *testing.T) {
	store := newFakeStore()
	store.failures = 10
	notif := &countingNotifier{}
	rec := newTestRecorder(store, notif)

	resp := &models.AiResponse{ID: 22, SessionID: 7, MessageID: 52}
	_, err := rec.Record(context.Background(), resp, resultWith(models.RiskMedium, 11.0), "")
	require.Error(t, err)
	assert.Empty(t, notif.events)
}

func TestRecommendCardinality(t *testing.T) {
	high := &models.RiskEvent{ID: 1, SessionID: 2, RiskLevel: models.RiskHigh}
	medium := &models.RiskEvent{ID: 2, SessionID: 2, RiskLevel: models.RiskMedium}
	low := &models.RiskEvent{ID: 3, SessionID: 2, RiskLevel: models.RiskLow}

	require.Len(t, Recommend(high), 1)
	assert.Equal(t, models.RecMandatory, Recommend(high)[0].RecType)
	require.Len(t, Recommend(medium), 1)
	assert.Equal(t, models.RecOptional, Recommend(medium)[0].RecType)
	assert.Empty(t, Recommend(low))
}
