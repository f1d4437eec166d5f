package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MarloweDigital/Stature/internal/store"
)

type ExplainHandler struct {
	store store.Store
}

func NewExplainHandler(s store.Store) *ExplainHandler {
	return &ExplainHandler{store: s}
}

// Explain returns the full scoring derivation for an analysis: the
// per-dimension weighted breakdown, the penalty, and the notes. Report
// builders render from this; they never re-derive the score.
// GET /api/v1/scoring/explain/{analysis_id}
func (h *ExplainHandler) Explain(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "analysis_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid analysis_id"})
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

	resp := map[string]interface{}{
		"analysis_id":      a.ID,
		"subject_id":       a.SubjectID,
		"domain":           a.Domain,
		"final_score":      a.FinalScore,
		"label":            a.Label,
		"relational_state": a.RelationalState,
	}
	if a.Score != nil {
		resp["weighted_mean"] = a.Score.WeightedMean
		resp["penalty"] = a.Score.Penalty
		resp["breakdown"] = a.Score.Breakdown
		resp["band_counts"] = a.Score.BandCounts
		resp["raw_scores"] = a.Score.RawScores
		resp["notes"] = a.Score.Notes
	}
	if len(a.Repairs) > 0 {
		resp["repairs"] = a.Repairs
	}

	writeJSON(w, http.StatusOK, resp)
}
