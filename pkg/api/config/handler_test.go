package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quarterly_financials/pkg/core/agent"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestHandleConfig(t *testing.T) {
	h := NewHandler(agent.NewManager(agent.Config{
		ActiveProvider: "gemini",
		Agents: map[string]agent.AgentConfig{
			agent.AgentFiller: {Provider: "gemini-classic", Model: "gemini-1.5-pro"},
		},
	}))

	rec := httptest.NewRecorder()
	h.HandleConfig(rec, httptest.NewRequest("GET", "/api/config", nil))

	resp := decode(t, rec)
	if resp.ActiveProvider != "gemini" {
		t.Errorf("active = %q", resp.ActiveProvider)
	}
	if len(resp.Available) != 3 {
		t.Errorf("available = %v", resp.Available)
	}
	want := AgentStatus{Provider: "gemini-classic", Model: "gemini-1.5-pro"}
	if got := resp.Agents[agent.AgentFiller]; got != want {
		t.Errorf("filler = %+v, want %+v", got, want)
	}
}

func TestHandleSwitch(t *testing.T) {
	mgr := agent.NewManager(agent.Config{ActiveProvider: "gemini"})
	h := NewHandler(mgr)

	tests := []struct {
		name   string
		body   string
		want   int
		active string
		filler string
	}{
		{"known provider", `{"provider": "deepseek"}`, http.StatusOK, "deepseek", "deepseek"},
		{"unknown provider", `{"provider": "nope"}`, http.StatusBadRequest, "deepseek", "deepseek"},
		{"bad body", `{`, http.StatusBadRequest, "deepseek", "deepseek"},
		{"filler only", `{"provider": "gemini-classic", "agent": "filler"}`, http.StatusOK, "deepseek", "gemini-classic"},
		{"filler unknown provider", `{"provider": "nope", "agent": "filler"}`, http.StatusBadRequest, "deepseek", "gemini-classic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleSwitch(rec, httptest.NewRequest("POST", "/api/config/switch", strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if got := mgr.GetActiveProvider(); got != tt.active {
				t.Errorf("active = %q, want %q", got, tt.active)
			}
			if got := mgr.ResolvedProvider(agent.AgentFiller); got != tt.filler {
				t.Errorf("filler = %q, want %q", got, tt.filler)
			}
			if rec.Code == http.StatusOK {
				if resp := decode(t, rec); resp.Agents[agent.AgentFiller].Provider != tt.filler {
					t.Errorf("response filler = %+v", resp.Agents[agent.AgentFiller])
				}
			}
		})
	}
}

func TestHandleSwitch_RejectsGet(t *testing.T) {
	h := NewHandler(agent.NewManager(agent.Config{}))
	rec := httptest.NewRecorder()
	h.HandleSwitch(rec, httptest.NewRequest("GET", "/api/config/switch", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}
