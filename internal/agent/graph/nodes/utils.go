package nodes

import (
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/budget"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/llm"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/metrics"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

const (
	DefaultMaxRounds       = 2
	MaxRoundsLimit         = 5
	DefaultResultsPerQuery = 10

	queryCallEstimate     = 300
	maxParallelSearches   = 4
	maxNotesPerExtraction = 15
)

// NormalizeOptions fills defaults and clamps max rounds to [1, MaxRoundsLimit].
func NormalizeOptions(o model.RunOptions) model.RunOptions {
	if o.MaxRounds <= 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	o.MaxRounds = clampInt(o.MaxRounds, 1, MaxRoundsLimit)
	if o.ResultsPerQuery <= 0 {
		o.ResultsPerQuery = DefaultResultsPerQuery
	}
	o.QualityLevel = strings.ToLower(strings.TrimSpace(o.QualityLevel))
	if o.QualityLevel == "" {
		o.QualityLevel = budget.QualityNormal
	}
	return o
}

// MaxSteps bounds the node executions of a run: init, one search and one extract per
// round, and plan.
func MaxSteps(maxRounds int) int {
	return 2*maxRounds + 6
}

// recordUsage books one model call against the stage budget and the run cost.
func recordUsage(s *model.PlanState, m *metrics.Metrics, stage string, c llm.Completion) {
	tokens := c.Tokens()
	s.Budget.Record(stage, tokens)

	inC, outC, totalC := model.ComputeCost(&c.Usage, model.ResolvePricing(c.Model))
	s.TotalCostUSD += totalC
	m.LLMUsage(stage, c.Model, tokens, totalC)

	logx.Debug().
		Str("session_id", s.SessionID).
		Int("round", s.Round).
		Str("stage", stage).
		Str("model", c.Model).
		Int("prompt_tokens", c.Usage.PromptTokens).
		Int("completion_tokens", c.Usage.CompletionTokens).
		Int("total_tokens", tokens).
		Bool("estimated", c.Estimated).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Float64("run_cost_usd", s.TotalCostUSD).
		Msg("LLM usage")
}

// requiredCategories maps missing-info tags to the note categories that can fill them.
func requiredCategories(missing []string) []model.Category {
	var out []model.Category
	for _, tag := range missing {
		var c model.Category
		switch tag {
		case model.InfoPlaces:
			c = model.CategoryAttraction
		case model.InfoFood:
			c = model.CategoryFood
		case model.InfoAccommodation:
			c = model.CategoryAccommodation
		case model.InfoTransportation:
			c = model.CategoryTransport
		case model.InfoRoute:
			c = model.CategoryRoute
		case model.InfoAvoid:
			c = model.CategoryAvoid
		default:
			continue
		}
		out = append(out, c)
	}
	return out
}

// dedupeNotes returns the notes of in whose title is neither in seen nor earlier in in.
// Untitled notes are always kept.
func dedupeNotes(seen, in []model.CompressedNote) []model.CompressedNote {
	titles := make(map[string]struct{}, len(seen)+len(in))
	for _, n := range seen {
		titles[noteKey(n.Title)] = struct{}{}
	}
	var out []model.CompressedNote
	for _, n := range in {
		k := noteKey(n.Title)
		if k == "" {
			out = append(out, n)
			continue
		}
		if _, dup := titles[k]; dup {
			continue
		}
		titles[k] = struct{}{}
		out = append(out, n)
	}
	return out
}

func noteKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// clampInt returns v limited to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
