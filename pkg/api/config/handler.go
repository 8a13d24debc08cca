// Package config exposes the agent provider settings over HTTP.
package config

import (
	"encoding/json"
	"net/http"

	"quarterly_financials/pkg/core/agent"
	"quarterly_financials/pkg/core/llm"
)

// AgentStatus is what an agent type will actually run with.
type AgentStatus struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

type Response struct {
	ActiveProvider string                 `json:"active_provider"`
	Available      []string               `json:"available"`
	Agents         map[string]AgentStatus `json:"agents"`
}

// SwitchRequest changes the global provider, or only one agent's provider
// when Agent is set.
type SwitchRequest struct {
	Provider string `json:"provider"`
	Agent    string `json:"agent,omitempty"`
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

func (h *Handler) status() Response {
	resp := Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.Available(),
		Agents:         map[string]AgentStatus{},
	}
	for _, name := range h.AgentMgr.AgentTypes() {
		st := AgentStatus{Provider: h.AgentMgr.ResolvedProvider(name)}
		if model, ok := h.AgentMgr.Options(name)[llm.OptionModel].(string); ok {
			st.Model = model
		}
		resp.Agents[name] = st
	}
	return resp
}

// HandleConfig handles GET /api/config
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(h.status())
}

// HandleSwitch handles POST /api/config/switch and answers with the
// resulting configuration.
func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var err error
	if req.Agent != "" {
		err = h.AgentMgr.SetAgentProvider(req.Agent, req.Provider)
	} else {
		err = h.AgentMgr.SetGlobalProvider(req.Provider)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.status())
}
