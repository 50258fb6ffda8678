package budget

import (
	"sort"
	"strings"
)

// Stage names used by the planning loop.
const (
	StageQuery   = "query"
	StageExtract = "extract"
	StagePlan    = "plan"
)

// Quality levels selecting a preset.
const (
	QualityFast   = "fast"
	QualityNormal = "normal"
	QualityHigh   = "high"
)

// TokenBudget tracks per-stage allowances and consumption for one planning run.
// It only accounts; callers decide what to do when Exhausted reports true.
// Not safe for concurrent use.
type TokenBudget struct {
	allowance map[string]int
	consumed  map[string]int
	total     int

	// MaxNotesPerSearch and MaxNoteLength size the evaluator output per round.
	MaxNotesPerSearch int
	MaxNoteLength     int
}

// Preset describes the ceilings of a quality level.
type Preset struct {
	Query             int
	Extract           int
	Plan              int
	Total             int
	MaxNotesPerSearch int
	MaxNoteLength     int
}

var presets = map[string]Preset{
	QualityFast:   {Query: 800, Extract: 2500, Plan: 3500, Total: 12000, MaxNotesPerSearch: 3, MaxNoteLength: 600},
	QualityNormal: {Query: 1000, Extract: 4000, Plan: 5000, Total: 20000, MaxNotesPerSearch: 5, MaxNoteLength: 1000},
	QualityHigh:   {Query: 1500, Extract: 6000, Plan: 8000, Total: 30000, MaxNotesPerSearch: 8, MaxNoteLength: 1500},
}

// PresetFor returns the preset of level; unknown levels fall back to normal.
func PresetFor(level string) Preset {
	if p, ok := presets[strings.ToLower(strings.TrimSpace(level))]; ok {
		return p
	}
	return presets[QualityNormal]
}

// New creates a budget from explicit stage allowances and a total ceiling.
func New(allowance map[string]int, total int) *TokenBudget {
	b := &TokenBudget{
		allowance:         make(map[string]int, len(allowance)),
		consumed:          make(map[string]int),
		total:             total,
		MaxNotesPerSearch: presets[QualityNormal].MaxNotesPerSearch,
		MaxNoteLength:     presets[QualityNormal].MaxNoteLength,
	}
	for stage, n := range allowance {
		if n < 0 {
			n = 0
		}
		b.allowance[stage] = n
	}
	return b
}

// ForQualityLevel creates a fresh budget from the preset of level.
func ForQualityLevel(level string) *TokenBudget {
	p := PresetFor(level)
	b := New(map[string]int{
		StageQuery:   p.Query,
		StageExtract: p.Extract,
		StagePlan:    p.Plan,
	}, p.Total)
	b.MaxNotesPerSearch = p.MaxNotesPerSearch
	b.MaxNoteLength = p.MaxNoteLength
	return b
}

// Allowance returns the ceiling of stage, zero when unknown.
func (b *TokenBudget) Allowance(stage string) int {
	return b.allowance[stage]
}

// Consumed returns what stage has spent so far.
func (b *TokenBudget) Consumed(stage string) int {
	return b.consumed[stage]
}

// Record adds tokens to stage. Negative values are ignored.
func (b *TokenBudget) Record(stage string, tokens int) {
	if tokens <= 0 {
		return
	}
	b.consumed[stage] += tokens
}

// Remaining is never negative.
func (b *TokenBudget) Remaining(stage string) int {
	if r := b.allowance[stage] - b.consumed[stage]; r > 0 {
		return r
	}
	return 0
}

// TotalConsumed is the sum over all stages.
func (b *TokenBudget) TotalConsumed() int {
	sum := 0
	for _, n := range b.consumed {
		sum += n
	}
	return sum
}

// Total returns the configured total ceiling.
func (b *TokenBudget) Total() int {
	return b.total
}

// TotalRemaining is never negative.
func (b *TokenBudget) TotalRemaining() int {
	if r := b.total - b.TotalConsumed(); r > 0 {
		return r
	}
	return 0
}

// Exhausted reports whether the total ceiling has been exceeded.
func (b *TokenBudget) Exhausted() bool {
	return b.TotalConsumed() > b.total
}

// CanAfford reports whether stage and the total both still have room for tokens.
func (b *TokenBudget) CanAfford(stage string, tokens int) bool {
	return b.Remaining(stage) >= tokens && b.TotalRemaining() >= tokens
}

// StageSummary is one row of Summary.
type StageSummary struct {
	Stage     string `json:"stage"`
	Allowance int    `json:"allowance"`
	Consumed  int    `json:"consumed"`
	Remaining int    `json:"remaining"`
}

// Summary is a reporting snapshot.
type Summary struct {
	Stages         []StageSummary `json:"stages"`
	Total          int            `json:"total"`
	TotalConsumed  int            `json:"total_consumed"`
	TotalRemaining int            `json:"total_remaining"`
	Exhausted      bool           `json:"exhausted"`
}

// Summary lists every stage that has an allowance or consumption, sorted by name.
func (b *TokenBudget) Summary() Summary {
	seen := make(map[string]struct{}, len(b.allowance)+len(b.consumed))
	for s := range b.allowance {
		seen[s] = struct{}{}
	}
	for s := range b.consumed {
		seen[s] = struct{}{}
	}
	stages := make([]string, 0, len(seen))
	for s := range seen {
		stages = append(stages, s)
	}
	sort.Strings(stages)

	out := Summary{
		Total:          b.total,
		TotalConsumed:  b.TotalConsumed(),
		TotalRemaining: b.TotalRemaining(),
		Exhausted:      b.Exhausted(),
	}
	for _, s := range stages {
		out.Stages = append(out.Stages, StageSummary{
			Stage:     s,
			Allowance: b.Allowance(s),
			Consumed:  b.Consumed(s),
			Remaining: b.Remaining(s),
		})
	}
	return out
}
