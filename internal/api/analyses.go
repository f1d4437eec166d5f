package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MarloweDigital/Stature/internal/assessment"
	"github.com/MarloweDigital/Stature/internal/events"
	"github.com/MarloweDigital/Stature/internal/oracle"
	"github.com/MarloweDigital/Stature/internal/scoring"
	"github.com/MarloweDigital/Stature/internal/store"
)

type AnalysesHandler struct {
	store  store.Store
	events events.Client
	oracle oracle.Client
	engine *scoring.Engine
	logger *slog.Logger
}

func NewAnalysesHandler(s store.Store, e events.Client, o oracle.Client, engine *scoring.Engine, logger *slog.Logger) *AnalysesHandler {
	return &AnalysesHandler{store: s, events: e, oracle: o, engine: engine, logger: logger}
}

// CreateAnalysisRequest accepts either a pre-fetched model document or raw
// content for the oracle to assess. Document wins when both are present.
type CreateAnalysisRequest struct {
	SubjectID string         `json:"subject_id"`
	Domain    string         `json:"domain,omitempty"`
	Modality  string         `json:"modality,omitempty"`
	Content   string         `json:"content,omitempty"`
	Document  map[string]any `json:"document,omitempty"`
}

// Create normalizes the model document, scores it, persists the analysis, and
// publishes the score events. POST /api/v1/analyses
func (h *AnalysesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.SubjectID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "subject_id required"})
		return
	}
	if req.Document == nil && req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document or content required"})
		return
	}

	doc := any(req.Document)
	if req.Document == nil {
		if h.oracle == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "oracle not configured"})
			return
		}
		generated, err := h.oracle.GenerateAssessment(r.Context(), oracle.AssessmentRequest{
			SubjectID: req.SubjectID,
			Domain:    req.Domain,
			Modality:  req.Modality,
			Content:   req.Content,
		})
		if err != nil {
			h.logger.Error("oracle request failed", "subject", req.SubjectID, "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "assessment generation failed"})
			return
		}
		doc = generated
	}

	ra, repairs, err := assessment.Repair(doc)
	if err != nil {
		h.failAnalysis(req, "invalid_document", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	// The caller's declared domain and modality take precedence over whatever
	// the model put in the document.
	if req.Domain != "" {
		ra.Domain = req.Domain
	}
	if req.Modality != "" {
		ra.Modality = req.Modality
	}

	cs, err := h.engine.Score(ra)
	if err != nil {
		if errors.Is(err, scoring.ErrNoDimensions) {
			h.failAnalysis(req, "no_dimensions", err)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	a := &store.Analysis{
		SubjectID:       req.SubjectID,
		Domain:          ra.Domain,
		Modality:        ra.Modality,
		RelationalState: ra.RelationalState,
		FinalScore:      cs.FinalScore,
		Label:           cs.Label,
		Assessment:      ra,
		Score:           cs,
		Repairs:         repairs,
	}
	if err := h.store.CreateAnalysis(r.Context(), a); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	analysesScored.WithLabelValues(a.Domain, a.Label).Inc()
	finalScores.Observe(float64(cs.FinalScore))
	if len(repairs) > 0 {
		normalizerRepairs.Add(float64(len(repairs)))
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectScoreComputed(a.ID.String()), events.ScoreComputedEvent{
			AnalysisID:      a.ID.String(),
			SubjectID:       a.SubjectID,
			Domain:          a.Domain,
			FinalScore:      a.FinalScore,
			Label:           a.Label,
			RelationalState: a.RelationalState,
			Timestamp:       time.Now().UTC(),
		})
		if len(repairs) > 0 {
			_ = h.events.Publish(events.SubjectScoreDegraded(a.ID.String()), events.ScoreDegradedEvent{
				AnalysisID: a.ID.String(),
				SubjectID:  a.SubjectID,
				Repairs:    repairs,
			})
		}
	}

	writeJSON(w, http.StatusCreated, a)
}

func (h *AnalysesHandler) failAnalysis(req CreateAnalysisRequest, reason string, err error) {
	h.logger.Warn("analysis failed", "subject", req.SubjectID, "reason", reason, "error", err)
	scoringFailures.WithLabelValues(reason).Inc()
	if h.events != nil {
		_ = h.events.Publish(events.SubjectAnalysisFailed(), events.AnalysisFailedEvent{
			SubjectID: req.SubjectID,
			Domain:    req.Domain,
			Error:     err.Error(),
		})
	}
}

// List returns analyses matching the query filters. GET /api/v1/analyses
func (h *AnalysesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.AnalysisFilter{
		SubjectID: r.URL.Query().Get("subject_id"),
		Domain:    r.URL.Query().Get("domain"),
		Label:     r.URL.Query().Get("label"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	analyses, err := h.store.ListAnalyses(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if analyses == nil {
		analyses = []*store.Analysis{}
	}
	writeJSON(w, http.StatusOK, analyses)
}

// Get returns one analysis. GET /api/v1/analyses/{id}
func (h *AnalysesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid analysis id"})
		return
	}
	a, err := h.store.GetAnalysis(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// SubjectScores returns a subject's score trend, newest first.
// GET /api/v1/subjects/{id}/scores
func (h *AnalysesHandler) SubjectScores(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "id")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	points, err := h.store.SubjectScores(r.Context(), subjectID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if points == nil {
		points = []store.ScorePoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
