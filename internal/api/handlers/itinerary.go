package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tripdesk/backend/internal/itinerary"
	"github.com/tripdesk/backend/internal/llmcall"
)

type ItineraryHandler struct {
	svc   *itinerary.Service
	calls *llmcall.Service
}

func NewItineraryHandler(svc *itinerary.Service, calls *llmcall.Service) *ItineraryHandler {
	return &ItineraryHandler{svc: svc, calls: calls}
}

func (h *ItineraryHandler) Days(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project ID"})
		return
	}

	days, err := h.svc.DaysForProject(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"days": days, "count": len(days)})
}

func (h *ItineraryHandler) DayTravel(w http.ResponseWriter, r *http.Request) {
	dayID, err := uuid.Parse(chi.URLParam(r, "dayID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day ID"})
		return
	}

	travel, err := h.svc.TravelForDay(r.Context(), dayID)
	if err != nil {
		writeError(w, err)
		return
	}
	if travel == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"travel": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"travel": travel})
}

func (h *ItineraryHandler) DayActivities(w http.ResponseWriter, r *http.Request) {
	dayID, err := uuid.Parse(chi.URLParam(r, "dayID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day ID"})
		return
	}

	activities, err := h.svc.ActivitiesForDay(r.Context(), dayID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"activities": activities, "count": len(activities)})
}

// Call exposes the persisted LLM call record behind a generated cell.
func (h *ItineraryHandler) Call(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid call ID"})
		return
	}

	call, err := h.calls.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, call)
}
