// Package statements serves quarterly statement tables over HTTP.
package statements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"quarterly_financials/pkg/core/agent"
	"quarterly_financials/pkg/core/catalog"
	"quarterly_financials/pkg/core/compute"
	"quarterly_financials/pkg/core/ingest"
	"quarterly_financials/pkg/core/present"
	"quarterly_financials/pkg/models"
)

// Loader resolves company facts by CIK or ticker.
type Loader interface {
	LoadFacts(ctx context.Context, cik string) (*models.CompanyFacts, error)
	LoadByTicker(ctx context.Context, ticker string) (*models.CompanyFacts, string, error)
}

// Recorder persists rendered tables. Optional.
type Recorder interface {
	Save(ctx context.Context, cik, entityName, source string, table *present.Table) (string, error)
}

// Response is the JSON body of GET /api/statements.
type Response struct {
	CIK        string         `json:"cik"`
	EntityName string         `json:"entity_name"`
	RunID      string         `json:"run_id,omitempty"`
	Agent      *agent.Report  `json:"agent,omitempty"`
	AgentError string         `json:"agent_error,omitempty"`
	Table      *present.Table `json:"table"`
}

// Handler holds dependencies for statement endpoints
type Handler struct {
	Loader  Loader
	Catalog *catalog.Catalog
	Repo    Recorder
	Agents  *agent.Manager // required for agent=1
}

// NewHandler creates a new statements handler. repo and agents may be nil.
func NewHandler(loader Loader, cat *catalog.Catalog, repo Recorder, agents *agent.Manager) *Handler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Handler{Loader: loader, Catalog: cat, Repo: repo, Agents: agents}
}

// HandleStatements handles GET /api/statements?cik=&ticker=&format=json|csv|markdown&agent=1
//
// With agent=1 the blank cells are handed to the filler agent, using the
// provider the agent manager currently resolves for it.
func (h *Handler) HandleStatements(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	cik := strings.TrimSpace(q.Get("cik"))
	ticker := strings.TrimSpace(q.Get("ticker"))
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" && format != "markdown" {
		http.Error(w, fmt.Sprintf("unsupported format %q", format), http.StatusBadRequest)
		return
	}
	if cik == "" && ticker == "" {
		http.Error(w, "cik or ticker is required", http.StatusBadRequest)
		return
	}
	useAgent, _ := strconv.ParseBool(q.Get("agent"))
	if useAgent && h.Agents == nil {
		http.Error(w, "agent is not configured on this server", http.StatusBadRequest)
		return
	}
	if cik != "" {
		normalized, err := ingest.NormalizeCIK(cik)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cik = normalized
	}

	var (
		facts *models.CompanyFacts
		err   error
	)
	if cik != "" {
		facts, err = h.Loader.LoadFacts(r.Context(), cik)
	} else {
		facts, cik, err = h.Loader.LoadByTicker(r.Context(), ticker)
	}
	if err != nil {
		log.Printf("[Statements] load failed (cik=%s ticker=%s): %v", cik, ticker, err)
		if errors.Is(err, models.ErrMalformedFacts) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	points, err := compute.Compute(facts, h.Catalog)
	if err != nil {
		if errors.Is(err, models.ErrMalformedFacts) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := Response{CIK: cik, EntityName: facts.EntityName}
	source := "api"
	if useAgent {
		source = "agent"
		report, err := agent.NewFiller(h.Agents, h.Catalog).Run(r.Context(), facts, points)
		resp.Agent = report
		if err != nil {
			// filled cells are kept; the table is still served
			log.Printf("[Statements] agent run for CIK%s stopped: %v", cik, err)
			resp.AgentError = err.Error()
		}
	}

	table := present.Pivot(points, h.Catalog)
	resp.Table = table
	if h.Repo != nil {
		id, err := h.Repo.Save(r.Context(), cik, facts.EntityName, source, table)
		if err != nil {
			log.Printf("[Statements] snapshot not saved for CIK%s: %v", cik, err)
		} else {
			resp.RunID = id
		}
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		if err := table.WriteCSV(w); err != nil {
			log.Printf("[Statements] %v", err)
		}
	case "markdown":
		md, err := table.RenderMarkdown()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, md)
	default:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
