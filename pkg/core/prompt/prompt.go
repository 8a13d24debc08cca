// Package prompt provides the prompt library for LLM interactions.
// Built-in prompts are registered at startup and can be replaced by JSON
// files loaded at runtime, so prompts can be tuned without code changes.
package prompt

// PromptTemplate represents a reusable prompt with metadata
type PromptTemplate struct {
	ID           string `json:"id"`            // Unique identifier (e.g., "agent.filler")
	Name         string `json:"name"`          // Human-readable name
	Category     string `json:"category"`      // Category derived from the folder when omitted
	Description  string `json:"description"`   // Description of prompt purpose
	SystemPrompt string `json:"system_prompt"` // The system prompt content
	Version      string `json:"version"`       // Version for tracking changes
}

// FillerID is the system prompt used by the blank-filling agent.
const FillerID = "agent.filler"

var builtins = []*PromptTemplate{
	{
		ID:          FillerID,
		Name:        "Blank filler",
		Category:    "agent",
		Description: "Locates or derives missing quarterly values from raw company facts",
		Version:     "1",
		SystemPrompt: `You are an assistant completing missing values in a quarterly financial dataset.

You receive a JSON document with:
- "blanks": missing entries as (key, year, quarter).
- "labels": the display name of each blank's key.
- "computed": the already computed metrics for every quarter of the blanks' fiscal years. Trust these values.
- "facts": candidate SEC XBRL concepts with their values keyed by period ("24Q1" = fiscal 2024 Q1, "24FY" = full year). A Q4 is often only available as the full year minus Q1, Q2 and Q3.

For each blank, determine the value:
- Prefer a fact concept that clearly matches the metric for that exact period.
- Otherwise derive it arithmetically from computed values or facts
  (e.g. a Q4 value as the FY total minus Q1, Q2 and Q3).
- Never guess or invent numbers. If the value cannot be determined, answer "~".

Reply with JSON only:
{"fills": [{"key": "<metric>", "year": <year>, "quarter": "<quarter>", "value": <number or "~">}]}`,
	},
}

// Builtin returns the compiled-in prompt for id, or nil.
func Builtin(id string) *PromptTemplate {
	for _, pt := range builtins {
		if pt.ID == id {
			cp := *pt
			return &cp
		}
	}
	return nil
}

// SystemPrompt returns the registered system prompt for id, falling back to
// the built-in one when nothing was loaded under that id.
func SystemPrompt(id string) string {
	if s, err := Get().GetSystemPrompt(id); err == nil && s != "" {
		return s
	}
	if pt := Builtin(id); pt != nil {
		return pt.SystemPrompt
	}
	return ""
}
