package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tripdesk/backend/internal/models"
	"github.com/tripdesk/backend/internal/regen"
)

type RegenHandler struct {
	orch    *regen.Orchestrator
	tracker *regen.Tracker
	store   regen.Store
}

func NewRegenHandler(orch *regen.Orchestrator, tracker *regen.Tracker, store regen.Store) *RegenHandler {
	return &RegenHandler{orch: orch, tracker: tracker, store: store}
}

type batchResponse struct {
	BatchID   uuid.UUID          `json:"batch_id"`
	Status    models.BatchStatus `json:"status"`
	Scope     models.BatchScope  `json:"scope"`
	TotalJobs int                `json:"total_jobs"`
	Progress  int                `json:"progress"`
}

func toBatchResponse(b *models.RegenerationBatch) batchResponse {
	return batchResponse{
		BatchID:   b.ID,
		Status:    b.Status,
		Scope:     b.Scope,
		TotalJobs: b.TotalJobs,
		Progress:  b.ProgressPercentage(),
	}
}

type singleRequest struct {
	EntityType string    `json:"entity_type"` // "travel" or "activity"
	EntityID   uuid.UUID `json:"entity_id"`
}

func (h *RegenHandler) Single(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project ID"})
		return
	}

	var req singleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	batch, err := h.orch.RegenerateSingle(r.Context(), projectID, req.EntityType, req.EntityID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toBatchResponse(batch))
}

type dayRequest struct {
	DayID uuid.UUID `json:"day_id"`
}

func (h *RegenHandler) Day(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project ID"})
		return
	}

	var req dayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	batch, err := h.orch.RegenerateDay(r.Context(), projectID, req.DayID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toBatchResponse(batch))
}

type columnRequest struct {
	ColumnType string `json:"column_type"` // "travel" or an activity type
}

func (h *RegenHandler) Column(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project ID"})
		return
	}

	var req columnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	batch, err := h.orch.RegenerateColumn(r.Context(), projectID, req.ColumnType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toBatchResponse(batch))
}

func (h *RegenHandler) Project(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project ID"})
		return
	}

	batch, err := h.orch.RegenerateProject(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toBatchResponse(batch))
}

func (h *RegenHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid batch ID"})
		return
	}

	batch, err := h.store.GetBatch(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, batch)
}

// Status reports whether a project is regenerating, with per-batch progress.
func (h *RegenHandler) Status(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project ID"})
		return
	}

	snap, err := h.tracker.Status(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
