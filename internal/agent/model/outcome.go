package model

import "github.com/Wayfarer-core-poc-v1/server/internal/agent/budget"

// RunMeta reports how a run went.
type RunMeta struct {
	Rounds        int             `json:"rounds"`
	SearchCount   int             `json:"search_count"`
	TokenConsumed int             `json:"token_consumed"`
	Budget        *budget.Summary `json:"budget,omitempty"`
	CostUSD       float64         `json:"cost_usd"`
	Fallback      bool            `json:"fallback"`
	Enrichments   []string        `json:"enrichments,omitempty"`
	SkippedSteps  []string        `json:"skipped_steps,omitempty"`
	FailedSteps   []string        `json:"failed_steps,omitempty"`
}

// Outcome is the single JSON-serialisable result of a planning request: a plan, a
// partial result carrying the accumulated facts, or an error.
type Outcome struct {
	Success     bool              `json:"success"`
	Partial     bool              `json:"partial,omitempty"`
	Error       string            `json:"error,omitempty"`
	Message     string            `json:"message,omitempty"`
	Suggestion  string            `json:"suggestion,omitempty"`
	SessionID   string            `json:"session_id,omitempty"`
	PlanID      string            `json:"plan_id,omitempty"`
	Destination string            `json:"destination"`
	Days        int               `json:"days"`
	Profile     *UserProfile      `json:"user_profile,omitempty"`
	Plan        *TravelPlanResult `json:"plan,omitempty"`
	Facts       *ExtractedInfo    `json:"facts,omitempty"`
	Meta        *RunMeta          `json:"meta,omitempty"`
}

// FailureOutcome builds the {success:false, error} shape.
func FailureOutcome(msg, destination string, days int) *Outcome {
	return &Outcome{
		Success:     false,
		Error:       msg,
		Destination: destination,
		Days:        days,
		Suggestion:  "check the configuration or retry later",
	}
}
