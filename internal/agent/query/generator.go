// Package query produces the search queries of each planning round.
package query

import (
	"context"
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph/parsers"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph/prompts"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/llm"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

// Per-round query counts.
const (
	FirstRoundQueries = 4
	MinLaterQueries   = 2
	MaxLaterQueries   = 4
	maxExtraQueries   = 2
)

// Request describes the round a batch is generated for.
type Request struct {
	Profile model.UserProfile
	Round   int
	Missing []string
	History []string // every query issued so far in this run
	SkipLLM bool     // use templates only, e.g. when the query budget is spent
}

// Result is a generated batch. Completion is nil when no model call succeeded.
type Result struct {
	Queries    []string
	Fallback   bool
	Completion *llm.Completion
	Err        error // model failure that caused the fallback, if any
}

// Generator asks the query model for a batch and falls back to templates.
type Generator struct {
	llm *llm.Invoker
}

func NewGenerator(inv *llm.Invoker) *Generator {
	return &Generator{llm: inv}
}

// Next returns the queries for req.Round, never repeating req.History. An empty result
// means every candidate was already searched.
func (g *Generator) Next(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.Profile.Destination) == "" {
		return Result{Fallback: true}
	}
	if req.Round < 1 {
		req.Round = 1
	}
	missing := req.Missing
	if req.Round > 1 && len(missing) == 0 {
		missing = defaultMissing
	}

	limit := laterLimit(missing)
	if req.Round == 1 {
		limit = FirstRoundQueries
	}

	var res Result
	var candidates []string
	if g != nil && g.llm != nil && !req.SkipLLM {
		queries, completion, err := g.generate(ctx, req, missing, limit)
		res.Completion = completion
		res.Err = err
		candidates = queries
	}
	if len(candidates) == 0 {
		res.Fallback = true
		candidates = fallbackCandidates(req.Profile, req.Round, missing)
	}

	picked := Dedupe(candidates, req.History, limit)
	if !res.Fallback && len(picked) < limit {
		// a short model batch is topped up from the templates of the same round
		if len(picked) == 0 {
			res.Fallback = true
		}
		seen := append(append([]string{}, req.History...), picked...)
		picked = append(picked, Dedupe(fallbackCandidates(req.Profile, req.Round, missing), seen, limit-len(picked))...)
	}
	if req.Round == 1 {
		extras := Dedupe(preferenceQueries(req.Profile, req.Round), append(append([]string{}, req.History...), picked...), maxExtraQueries)
		picked = append(picked, extras...)
	}
	res.Queries = picked

	logx.Debug().
		Str("component", "query_generator").
		Int("round", req.Round).
		Bool("fallback", res.Fallback).
		Strs("queries", res.Queries).
		Msg("queries generated")
	return res
}

func (g *Generator) generate(ctx context.Context, req Request, missing []string, count int) ([]string, *llm.Completion, error) {
	msgs, err := prompts.RenderQueryMessages(ctx, prompts.QueryInput{
		Profile: req.Profile,
		Round:   req.Round,
		Missing: missing,
		History: req.History,
		Count:   count,
	})
	if err != nil {
		return nil, nil, err
	}
	c, err := g.llm.Invoke(ctx, msgs)
	if err != nil {
		logx.Warn().Err(err).Int("round", req.Round).Msg("query model failed, using templates")
		return nil, nil, err
	}
	rec := parsers.RecoverJSON(c.Content, map[string]any{"queries": []any{}})
	return parsers.DecodeQueries(rec.Value), &c, nil
}

func laterLimit(missing []string) int {
	n := len(missing) + 1
	if n < MinLaterQueries {
		n = MinLaterQueries
	}
	if n > MaxLaterQueries {
		n = MaxLaterQueries
	}
	return n
}

// fallbackCandidates builds template queries from destination and day count only.
func fallbackCandidates(p model.UserProfile, round int, missing []string) []string {
	if round == 1 {
		return templateQueries(p, firstRoundSlots)
	}
	return templateQueries(p, missing)
}

// Dedupe trims candidates, drops blanks, anything in history and repeats, and keeps at most limit.
func Dedupe(candidates, history []string, limit int) []string {
	seen := make(map[string]struct{}, len(history)+len(candidates))
	for _, h := range history {
		seen[strings.TrimSpace(h)] = struct{}{}
	}
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
