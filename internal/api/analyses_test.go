package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MarloweDigital/Stature/internal/assessment"
	"github.com/MarloweDigital/Stature/internal/catalog"
	"github.com/MarloweDigital/Stature/internal/scoring"
	"github.com/MarloweDigital/Stature/internal/store"
)

// MockStore implements store.Store for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateAnalysis(ctx context.Context, a *store.Analysis) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		a.ID = uuid.New()
		a.CreatedAt = time.Now().UTC()
	}
	return args.Error(0)
}

func (m *MockStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*store.Analysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Analysis), args.Error(1)
}

func (m *MockStore) ListAnalyses(ctx context.Context, filter store.AnalysisFilter) ([]*store.Analysis, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Analysis), args.Error(1)
}

func (m *MockStore) SubjectScores(ctx context.Context, subjectID string, limit int) ([]store.ScorePoint, error) {
	args := m.Called(ctx, subjectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.ScorePoint), args.Error(1)
}

func (m *MockStore) Stats(ctx context.Context) (*store.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Stats), args.Error(1)
}

func (m *MockStore) Close() error { return nil }

// MockEvents implements events.Client for testing
type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockEvents) Close() {}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHandler(s store.Store, e *MockEvents) *AnalysesHandler {
	engine := scoring.NewEngine(catalog.Default(), testLogger())
	if e == nil {
		return NewAnalysesHandler(s, nil, nil, engine, testLogger())
	}
	return NewAnalysesHandler(s, e, nil, engine, testLogger())
}

func postAnalysis(t *testing.T, h *AnalysesHandler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreateAnalysisWithDocument(t *testing.T) {
	ms := &MockStore{}
	me := &MockEvents{}
	ms.On("CreateAnalysis", mock.Anything, mock.AnythingOfType("*store.Analysis")).Return(nil)
	me.On("Publish", mock.Anything, mock.Anything).Return(nil)

	rec := postAnalysis(t, testHandler(ms, me), map[string]any{
		"subject_id": "subj-1",
		"domain":     "sales_message",
		"document": map[string]any{
			"modality":         "text",
			"relational_state": "fully_aligned",
			"dimensions": []any{
				map[string]any{"dimension_id": "frame_control", "score": float64(3)},
				map[string]any{"dimension_id": "conviction", "score": float64(3)},
				map[string]any{"dimension_id": "status_language", "score": float64(3)},
			},
			"diagnostics": map[string]any{"primary_patterns": []any{}, "supporting_evidence": []any{}},
			"corrections": map[string]any{"top_shifts": []any{}, "sample_rewrites": []any{}},
		},
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var a store.Analysis
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, 100, a.FinalScore)
	assert.Equal(t, scoring.LabelPositive, a.Label)
	assert.Equal(t, "sales_message", a.Domain)
	assert.NotNil(t, a.Score)
	assert.NotEmpty(t, a.Score.Notes)

	ms.AssertExpectations(t)
	me.AssertCalled(t, "Publish", mock.MatchedBy(func(subject string) bool {
		return len(subject) > 0
	}), mock.Anything)
}

func TestCreateAnalysisDegradedDocument(t *testing.T) {
	ms := &MockStore{}
	me := &MockEvents{}
	ms.On("CreateAnalysis", mock.Anything, mock.Anything).Return(nil)
	me.On("Publish", mock.Anything, mock.Anything).Return(nil)

	// corrections absent, diagnostics null: repaired, not rejected
	rec := postAnalysis(t, testHandler(ms, me), map[string]any{
		"subject_id": "subj-2",
		"document": map[string]any{
			"dimensions": []any{
				map[string]any{"dimension_id": "composure", "score": float64(-1)},
			},
			"diagnostics": nil,
		},
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var a store.Analysis
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.NotEmpty(t, a.Repairs)
	assert.NotNil(t, a.Assessment.Corrections.TopShifts)
	assert.NotNil(t, a.Assessment.Diagnostics.PrimaryPatterns)

	// computed + degraded events
	me.AssertNumberOfCalls(t, "Publish", 2)
}

func TestCreateAnalysisValidation(t *testing.T) {
	h := testHandler(&MockStore{}, nil)

	t.Run("missing subject", func(t *testing.T) {
		rec := postAnalysis(t, h, map[string]any{
			"document": map[string]any{},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing document and content", func(t *testing.T) {
		rec := postAnalysis(t, h, map[string]any{"subject_id": "subj-3"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewReader([]byte("not json")))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateAnalysisEmptyDimensions(t *testing.T) {
	me := &MockEvents{}
	me.On("Publish", mock.Anything, mock.Anything).Return(nil)
	h := testHandler(&MockStore{}, me)

	rec := postAnalysis(t, h, map[string]any{
		"subject_id": "subj-4",
		"document":   map[string]any{"dimensions": []any{}},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	me.AssertNumberOfCalls(t, "Publish", 1) // analysis.failed only
}

func TestGetAnalysis(t *testing.T) {
	ms := &MockStore{}
	h := testHandler(ms, nil)
	id := uuid.New()
	ms.On("GetAnalysis", mock.Anything, id).Return(&store.Analysis{
		ID: id, SubjectID: "subj-1", FinalScore: 47, Label: scoring.LabelMixed,
	}, nil)

	r := chi.NewRouter()
	r.Get("/api/v1/analyses/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var a store.Analysis
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, 47, a.FinalScore)
}

func TestGetAnalysisNotFound(t *testing.T) {
	ms := &MockStore{}
	h := testHandler(ms, nil)
	id := uuid.New()
	ms.On("GetAnalysis", mock.Anything, id).Return(nil, nil)

	r := chi.NewRouter()
	r.Get("/api/v1/analyses/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubjectScoresTrend(t *testing.T) {
	ms := &MockStore{}
	h := testHandler(ms, nil)
	ms.On("SubjectScores", mock.Anything, "subj-1", 0).Return([]store.ScorePoint{
		{AnalysisID: uuid.New(), Domain: "sales_message", FinalScore: 72, Label: "positive"},
		{AnalysisID: uuid.New(), Domain: "sales_message", FinalScore: 55, Label: "mixed"},
	}, nil)

	r := chi.NewRouter()
	r.Get("/api/v1/subjects/{id}/scores", h.SubjectScores)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects/subj-1/scores", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var points []store.ScorePoint
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	assert.Len(t, points, 2)
	assert.Equal(t, 72, points[0].FinalScore)
}

func TestExplainReturnsBreakdownAndNotes(t *testing.T) {
	ms := &MockStore{}
	id := uuid.New()
	engine := scoring.NewEngine(catalog.Default(), testLogger())
	cs, err := engine.Score(fullAssessment())
	assert.NoError(t, err)
	ms.On("GetAnalysis", mock.Anything, id).Return(&store.Analysis{
		ID: id, SubjectID: "subj-1", Domain: "sales_message",
		FinalScore: cs.FinalScore, Label: cs.Label, Score: cs,
	}, nil)

	h := NewExplainHandler(ms)
	r := chi.NewRouter()
	r.Get("/api/v1/scoring/explain/{analysis_id}", h.Explain)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scoring/explain/"+id.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "breakdown")
	assert.Contains(t, resp, "notes")
	assert.Contains(t, resp, "weighted_mean")
	assert.Contains(t, resp, "band_counts")
}

func fullAssessment() *assessment.RawAssessment {
	ra, _ := assessment.Normalize(map[string]any{
		"modality":         "text",
		"domain":           "sales_message",
		"relational_state": "neutral",
		"dimensions": []any{
			map[string]any{"dimension_id": "frame_control", "score": float64(2)},
			map[string]any{"dimension_id": "conviction", "score": float64(-1)},
			map[string]any{"dimension_id": "composure", "score": float64(0)},
		},
	})
	return ra
}
