package handlers

import (
	"net/http"

	"github.com/tripdesk/backend/internal/llm"
)

type LLMHandler struct {
	gateway llm.Gateway
}

func NewLLMHandler(gateway llm.Gateway) *LLMHandler {
	return &LLMHandler{gateway: gateway}
}

func (h *LLMHandler) Models(w http.ResponseWriter, r *http.Request) {
	models := h.gateway.ListModels()
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": models, "count": len(models)})
}
