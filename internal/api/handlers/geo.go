package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tripdesk/backend/internal/geo"
)

type GeoHandler struct {
	svc *geo.Service
}

func NewGeoHandler(svc *geo.Service) *GeoHandler {
	return &GeoHandler{svc: svc}
}

func (h *GeoHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.svc.Autocomplete(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results, "count": len(results)})
}

func (h *GeoHandler) ImportPlace(w http.ResponseWriter, r *http.Request) {
	var place geo.PlaceResult
	if err := json.NewDecoder(r.Body).Decode(&place); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	addr, err := h.svc.ImportPlace(r.Context(), place)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, addr)
}
