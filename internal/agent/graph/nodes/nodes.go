package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"golang.org/x/sync/errgroup"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/budget"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/evaluator"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph/parsers"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph/prompts"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/llm"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/merge"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/metrics"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/planner"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/quality"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/query"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

const (
	NodeInit    = "init"
	NodeSearch  = "search"
	NodeExtract = "extract"
	NodePlan    = "plan"
)

// Deps are the collaborators shared by every run of a compiled graph. They hold no
// per-run state.
type Deps struct {
	Queries  *query.Generator
	Search   model.SearchProvider
	Extract  *llm.Invoker
	Composer *planner.Composer
	Metrics  *metrics.Metrics
}

// NewInitPreHandler seeds the run state from the graph input.
func NewInitPreHandler() func(context.Context, model.PlanInput, *model.PlanState) (model.PlanInput, error) {
	return func(ctx context.Context, in model.PlanInput, s *model.PlanState) (model.PlanInput, error) {
		in.Options = NormalizeOptions(in.Options)
		p := in.Profile

		s.SessionID = in.SessionID
		s.Profile = p
		s.Options = in.Options
		s.Round = 0
		s.SearchedQueries = nil
		s.MissingInfo = nil
		s.SearchCount = 0
		s.Notes = nil
		s.Extracted = model.ExtractedInfo{}
		s.Budget = budget.ForQualityLevel(in.Options.QualityLevel)
		s.Filter = evaluator.New(p.Destination, p.Days, p.Preferences)
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInitNode emits the report that starts round one.
func NewInitNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.PlanInput) (model.RoundReport, error) {
		logx.Info().
			Str("session_id", in.SessionID).
			Str("destination", in.Profile.Destination).
			Int("days", in.Profile.Days).
			Int("max_rounds", in.Options.MaxRounds).
			Str("quality_level", in.Options.QualityLevel).
			Msg("planning run started")
		return model.RoundReport{Round: 0, Decision: model.DecisionNeedMore}, nil
	})
}

// searchView is what the search node copies out of state before doing I/O.
type searchView struct {
	sessionID string
	profile   model.UserProfile
	opts      model.RunOptions
	round     int
	history   []string
	skipLLM   bool
	filter    model.NoteFilter
	maxNotes  int
	maxLen    int
}

// NewSearchNode generates the round's queries, runs them and keeps the valuable notes.
// A failed query counts as zero results; the round always advances.
func NewSearchNode(deps *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, rep model.RoundReport) (model.SearchBatch, error) {
		var v searchView
		err := compose.ProcessState[*model.PlanState](ctx, func(_ context.Context, s *model.PlanState) error {
			s.Round++
			v = searchView{
				sessionID: s.SessionID,
				profile:   s.Profile,
				opts:      s.Options,
				round:     s.Round,
				history:   append([]string(nil), s.SearchedQueries...),
				skipLLM:   !s.Budget.CanAfford(budget.StageQuery, queryCallEstimate),
				filter:    s.Filter,
				maxNotes:  s.Budget.MaxNotesPerSearch,
				maxLen:    s.Budget.MaxNoteLength,
			}
			return nil
		})
		if err != nil {
			return model.SearchBatch{}, fmt.Errorf("read search state: %w", err)
		}

		gen := deps.Queries.Next(ctx, query.Request{
			Profile: v.profile,
			Round:   v.round,
			Missing: rep.Missing,
			History: v.history,
			SkipLLM: v.skipLLM,
		})
		if gen.Err != nil {
			logx.Warn().Err(gen.Err).Str("session_id", v.sessionID).Int("round", v.round).Msg("query model failed, using templates")
		}

		results := runQueries(ctx, deps, v, gen.Queries)

		var raw []model.SearchNote
		for _, notes := range results {
			raw = append(raw, notes...)
		}

		required := requiredCategories(rep.Missing)
		v.filter.SetTargets(required...)
		var kept []model.CompressedNote
		if len(raw) > 0 {
			cov := v.filter.CoverageReport(raw)
			logx.Debug().
				Str("session_id", v.sessionID).
				Int("round", v.round).
				Int("raw_notes", cov.Total).
				Float64("avg_score", cov.AvgScore).
				Int("high_value", cov.HighValue).
				Int("low_value", cov.LowValue).
				Interface("uncovered", cov.Missing).
				Msg("round coverage")
			kept = v.filter.FilterAndCompress(raw, v.maxNotes, v.maxLen, required)
		}

		var batch model.SearchBatch
		err = compose.ProcessState[*model.PlanState](ctx, func(_ context.Context, s *model.PlanState) error {
			s.SearchedQueries = append(s.SearchedQueries, gen.Queries...)
			s.SearchCount += len(gen.Queries)
			if gen.Completion != nil {
				recordUsage(s, deps.Metrics, budget.StageQuery, *gen.Completion)
			}
			fresh := dedupeNotes(s.Notes, kept)
			s.Notes = append(s.Notes, fresh...)
			batch = model.SearchBatch{Round: s.Round, Queries: gen.Queries, Notes: fresh}
			return nil
		})
		if err != nil {
			return model.SearchBatch{}, fmt.Errorf("write search state: %w", err)
		}

		logx.Info().
			Str("session_id", v.sessionID).
			Int("round", v.round).
			Int("queries", len(gen.Queries)).
			Bool("template_queries", gen.Fallback).
			Int("notes", len(batch.Notes)).
			Msg("search round finished")
		return batch, nil
	})
}

// runQueries returns one result slice per query, in query order. Queries run
// concurrently only when the run asked for it; the caller concatenates in query order.
func runQueries(ctx context.Context, deps *Deps, v searchView, queries []string) [][]model.SearchNote {
	results := make([][]model.SearchNote, len(queries))
	if deps.Search == nil || len(queries) == 0 {
		return results
	}

	one := func(i int) {
		notes, err := deps.Search.Search(ctx, queries[i], v.opts.ResultsPerQuery)
		switch {
		case err != nil:
			deps.Metrics.SearchQuery(metrics.SearchError)
			logx.Warn().Err(err).
				Str("session_id", v.sessionID).
				Int("round", v.round).
				Str("query", queries[i]).
				Msg("search failed, skipping query")
		case len(notes) == 0:
			deps.Metrics.SearchQuery(metrics.SearchEmpty)
		default:
			deps.Metrics.SearchQuery(metrics.SearchOK)
			results[i] = notes
		}
	}

	if !v.opts.ParallelSearch {
		for i := range queries {
			one(i)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(maxParallelSearches)
	for i := range queries {
		g.Go(func() error {
			one(i)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

type extractView struct {
	sessionID string
	profile   model.UserProfile
	round     int
	strict    bool
	canAfford func(int) bool
}

// NewExtractNode makes the single extraction call of a round, merges the result into the
// accumulator and runs the quality gate. Extraction failures leave the accumulator as is.
func NewExtractNode(deps *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, batch model.SearchBatch) (model.RoundReport, error) {
		var v extractView
		err := compose.ProcessState[*model.PlanState](ctx, func(_ context.Context, s *model.PlanState) error {
			b := s.Budget
			v = extractView{
				sessionID: s.SessionID,
				profile:   s.Profile,
				round:     s.Round,
				strict:    s.Options.StrictBudget,
				canAfford: func(n int) bool { return b.CanAfford(budget.StageExtract, n) },
			}
			return nil
		})
		if err != nil {
			return model.RoundReport{}, fmt.Errorf("read extract state: %w", err)
		}

		incoming, completion := extract(ctx, deps, v, batch.Notes)

		var rep model.RoundReport
		err = compose.ProcessState[*model.PlanState](ctx, func(_ context.Context, s *model.PlanState) error {
			if completion != nil {
				recordUsage(s, deps.Metrics, budget.StageExtract, *completion)
			}
			merge.Merge(&s.Extracted, incoming)

			decision := quality.Decide(&s.Extracted, s.Round, s.Options.MaxRounds)
			if decision.NeedMore() && s.Options.StrictBudget && s.Budget.Exhausted() {
				logx.Warn().Str("session_id", s.SessionID).Int("round", s.Round).Msg("token budget exhausted, proceeding to plan")
				decision = quality.Decision{Action: model.DecisionProceed}
			}
			s.MissingInfo = decision.Missing
			rep = model.RoundReport{Round: s.Round, Decision: decision.Action, Missing: decision.Missing}
			return nil
		})
		if err != nil {
			return model.RoundReport{}, fmt.Errorf("write extract state: %w", err)
		}

		logx.Info().
			Str("session_id", v.sessionID).
			Int("round", rep.Round).
			Str("decision", rep.Decision).
			Strs("missing", rep.Missing).
			Msg("extraction round finished")
		return rep, nil
	})
}

func extract(ctx context.Context, deps *Deps, v extractView, notes []model.CompressedNote) (*model.ExtractedInfo, *llm.Completion) {
	if len(notes) == 0 {
		logx.Debug().Str("session_id", v.sessionID).Int("round", v.round).Msg("no new notes, skipping extraction")
		return nil, nil
	}
	if len(notes) > maxNotesPerExtraction {
		notes = notes[:maxNotesPerExtraction]
	}

	msgs, err := prompts.RenderExtractMessages(ctx, prompts.ExtractInput{Profile: v.profile, Notes: notes})
	if err != nil {
		logx.Error().Err(err).Str("session_id", v.sessionID).Msg("render extract prompt")
		return nil, nil
	}
	if v.strict && !v.canAfford(budget.CountMessages(msgs)) {
		logx.Warn().Str("session_id", v.sessionID).Int("round", v.round).Msg("extract budget spent, skipping extraction")
		return nil, nil
	}

	completion, err := deps.Extract.Invoke(ctx, msgs)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", v.sessionID).Int("round", v.round).Msg("extraction failed, keeping accumulator")
		return nil, nil
	}

	rec := parsers.RecoverJSON(completion.Content, nil)
	deps.Metrics.JSONRecovery(rec.Strategy)
	if !rec.Recovered {
		return nil, &completion
	}
	info := parsers.DecodeExtraction(rec.Value)
	return &info, &completion
}

// NewGateCondition routes on the report produced by the extract node. The decision is
// recomputed after every extraction, never cached.
func NewGateCondition() func(context.Context, model.RoundReport) (string, error) {
	return func(ctx context.Context, rep model.RoundReport) (string, error) {
		if rep.Decision == model.DecisionNeedMore {
			logx.Debug().Int("round", rep.Round).Strs("missing", rep.Missing).Msg("Routing back to search")
			return NodeSearch, nil
		}
		logx.Debug().Int("round", rep.Round).Msg("Routing to plan")
		return NodePlan, nil
	}
}

// NewPlanNode makes the one planning call of the run and assembles the outcome.
func NewPlanNode(deps *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, rep model.RoundReport) (*model.Outcome, error) {
		var (
			sessionID string
			profile   model.UserProfile
			facts     model.ExtractedInfo
		)
		err := compose.ProcessState[*model.PlanState](ctx, func(_ context.Context, s *model.PlanState) error {
			sessionID, profile, facts = s.SessionID, s.Profile, s.Extracted
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("read plan state: %w", err)
		}

		comp := deps.Composer.Compose(ctx, profile, &facts)

		var out *model.Outcome
		err = compose.ProcessState[*model.PlanState](ctx, func(_ context.Context, s *model.PlanState) error {
			if comp.Completion != nil {
				recordUsage(s, deps.Metrics, budget.StagePlan, *comp.Completion)
			}
			if comp.Recovery != "" {
				deps.Metrics.JSONRecovery(comp.Recovery)
			}
			out = assembleOutcome(s, comp)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("write plan state: %w", err)
		}

		logx.Info().
			Str("session_id", sessionID).
			Int("rounds", out.Meta.Rounds).
			Bool("success", out.Success).
			Bool("partial", out.Partial).
			Bool("fallback", out.Meta.Fallback).
			Float64("cost_usd", out.Meta.CostUSD).
			Msg("planning run finished")
		return out, nil
	})
}

// assembleOutcome maps a composition onto the three terminal shapes: a plan, a partial
// result carrying the facts, or a skeleton plan when nothing was ever learned.
func assembleOutcome(s *model.PlanState, comp planner.Composition) *model.Outcome {
	summary := s.Budget.Summary()
	profile := s.Profile
	meta := &model.RunMeta{
		Rounds:        s.Round,
		SearchCount:   s.SearchCount,
		TokenConsumed: s.Budget.TotalConsumed(),
		Budget:        &summary,
		CostUSD:       s.TotalCostUSD,
		Fallback:      comp.Fallback,
	}
	out := &model.Outcome{
		SessionID:   s.SessionID,
		Destination: profile.Destination,
		Days:        profile.Days,
		Profile:     &profile,
		Meta:        meta,
	}

	plan := comp.Plan
	if comp.Err != nil && !s.Extracted.IsEmpty() {
		facts := s.Extracted
		out.Partial = true
		out.Facts = &facts
		out.Plan = &plan
		out.Message = fmt.Sprintf("collected facts about %s but could not compose a plan: %s", profile.Destination, errText(comp.Err))
		return out
	}

	out.Success = true
	out.Plan = &plan
	if comp.Fallback && s.Extracted.IsEmpty() {
		out.Message = "no travel information was found; returning an empty itinerary"
	}
	return out
}

func errText(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "unknown error"
	}
	return msg
}
