package model

import (
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/budget"
)

// Gate decisions.
const (
	DecisionNeedMore = "need_more"
	DecisionProceed  = "proceed"
)

// NoteFilter scores raw search notes and keeps the most useful ones. Implementations
// carry per-run memory of what they have already seen.
type NoteFilter interface {
	FilterAndCompress(notes []SearchNote, maxNotes, maxCharsPerNote int, required []Category) []CompressedNote
	// SetTargets selects the categories that earn a scoring bonus.
	SetTargets(targets ...Category)
	// CoverageReport scores notes without touching the filter's memory.
	CoverageReport(notes []SearchNote) Coverage
}

// Coverage summarises which categories a set of notes covers.
type Coverage struct {
	Total     int              `json:"total"`
	Counts    map[Category]int `json:"counts"`
	Missing   []Category       `json:"missing"`
	AvgScore  float64          `json:"avg_score"`
	HighValue int              `json:"high_value"`
	LowValue  int              `json:"low_value"`
	TopNotes  []ScoredNote     `json:"top_notes"`
}

// RunOptions are the per-request knobs of one planning run.
type RunOptions struct {
	MaxRounds       int    `json:"max_rounds"`
	QualityLevel    string `json:"quality_level"`
	ParallelSearch  bool   `json:"parallel_search"`
	StrictBudget    bool   `json:"strict_budget"`
	ResultsPerQuery int    `json:"results_per_query"`
}

// PlanInput is the graph input.
type PlanInput struct {
	SessionID string
	Profile   UserProfile
	Options   RunOptions
}

// RoundReport flows from the extract stage into the gate branch and back into search.
type RoundReport struct {
	Round    int
	Decision string
	Missing  []string
}

// SearchBatch is what one search round hands to extraction.
type SearchBatch struct {
	Round   int
	Queries []string
	Notes   []CompressedNote
}

// PlanState stores per-run state for the Eino Graph.
// Concurrency model:
//   - Registered as Graph Local State via compose.WithGenLocalState, one instance per run.
//   - Reads/writes happen only inside state handlers or compose.ProcessState; nodes copy
//     what they need out of the state before doing I/O.
//   - Budget and Filter are per-run instances and are never shared between runs.
type PlanState struct {
	SessionID string
	Profile   UserProfile
	Options   RunOptions

	Round           int
	SearchedQueries []string
	MissingInfo     []string
	SearchCount     int
	Notes           []CompressedNote // every note kept so far, unique by title
	Extracted       ExtractedInfo

	Budget *budget.TokenBudget
	Filter NoteFilter

	// Accumulated total LLM cost (USD) across model invocations for this run
	TotalCostUSD float64
}
