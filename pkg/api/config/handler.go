package config

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"investment_appraisal/pkg/core/agent"
)

type Response struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	AgentMgr *agent.Manager
}

// NewHandler creates a new config handler
func NewHandler(agentMgr *agent.Manager) *Handler {
	return &Handler{
		AgentMgr: agentMgr,
	}
}

// Routes mounts GET /api/config and POST /api/config/switch.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/config", h.HandleConfig)
	r.Post("/api/config/switch", h.HandleSwitch)
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.current())
}

func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.AgentMgr.SetGlobalProvider(req.Provider); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, h.current())
}

func (h *Handler) current() Response {
	return Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.ProviderNames(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("config: encode response", zap.Error(err))
	}
}
