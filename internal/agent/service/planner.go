// Package service is the JSON-in, JSON-out entry point of the travel planner. It never
// returns an error for a planning request; every result is a model.Outcome.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/metrics"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	errx "github.com/Wayfarer-core-poc-v1/server/internal/core/error"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

// Request carries the profile fields and run knobs of one planning call.
type Request struct {
	Destination    string   `json:"destination"`
	Days           int      `json:"days"`
	Origin         string   `json:"origin,omitempty"`
	DateRange      string   `json:"date_range,omitempty"`
	GroupType      string   `json:"group_type,omitempty"`
	Preferences    []string `json:"preferences,omitempty"`
	Budget         string   `json:"budget,omitempty"`
	MaxRounds      int      `json:"max_rounds,omitempty"`
	QualityLevel   string   `json:"quality_level,omitempty"`
	SkipMap        bool     `json:"skip_map,omitempty"`
	IncludeWeather bool     `json:"include_weather,omitempty"`
	SessionID      string   `json:"session_id,omitempty"`
}

// Profile converts the request into the immutable run profile.
func (r Request) Profile() model.UserProfile {
	return model.UserProfile{
		Origin:      strings.TrimSpace(r.Origin),
		Destination: strings.TrimSpace(r.Destination),
		Days:        r.Days,
		DateRange:   strings.TrimSpace(r.DateRange),
		GroupType:   strings.TrimSpace(r.GroupType),
		Preferences: cleanList(r.Preferences),
		Budget:      strings.TrimSpace(r.Budget),
	}
}

// Planner runs the planning graph, applies enrichments and stores the result.
type Planner struct {
	runner    graph.Runner
	plans     model.PlanRepository
	metrics   *metrics.Metrics
	defaults  model.PlannerConfig
	enrichers []Enricher
	now       func() time.Time
}

// NewPlanner wires the service. plans and m may be nil; runner may be nil, in which case
// every request reports the not-configured failure.
func NewPlanner(runner graph.Runner, plans model.PlanRepository, m *metrics.Metrics, defaults model.PlannerConfig, enrichers ...Enricher) *Planner {
	return &Planner{
		runner:    runner,
		plans:     plans,
		metrics:   m,
		defaults:  defaults,
		enrichers: enrichers,
		now:       time.Now,
	}
}

// Generate runs one planning request to completion.
func (p *Planner) Generate(ctx context.Context, req Request) *model.Outcome {
	profile := req.Profile()
	if p == nil || p.runner == nil {
		logx.Error().Str("destination", profile.Destination).Msg("planning requested but no runner is configured")
		p.observe(metrics.OutcomeFailure, 0, 0)
		return model.FailureOutcome(errx.ErrNotConfigured.Error(), profile.Destination, profile.Days)
	}
	if err := validate(profile); err != nil {
		p.observe(metrics.OutcomeFailure, 0, 0)
		out := model.FailureOutcome(err.Error(), profile.Destination, profile.Days)
		out.Suggestion = "provide a destination and a positive number of days"
		return out
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	start := p.now()
	out, err := p.runner.Invoke(ctx, model.PlanInput{
		SessionID: sessionID,
		Profile:   profile,
		Options:   p.options(req),
	})
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Str("destination", profile.Destination).Msg("planning run failed")
		p.observe(metrics.OutcomeFailure, 0, p.now().Sub(start))
		out = model.FailureOutcome(fmt.Sprintf("planning failed: %v", err), profile.Destination, profile.Days)
		out.SessionID = sessionID
		return out
	}
	out.SessionID = sessionID
	if out.Meta == nil {
		out.Meta = &model.RunMeta{}
	}

	if out.Success && out.Plan != nil {
		p.enrich(ctx, req, profile, out)
		p.store(ctx, sessionID, profile, out)
	}

	label := metrics.OutcomeSuccess
	switch {
	case out.Partial:
		label = metrics.OutcomePartial
	case !out.Success:
		label = metrics.OutcomeFailure
	}
	p.observe(label, out.Meta.Rounds, p.now().Sub(start))
	return out
}

func (p *Planner) options(req Request) model.RunOptions {
	opts := model.RunOptions{
		MaxRounds:       p.defaults.MaxRounds,
		QualityLevel:    p.defaults.QualityLevel,
		ParallelSearch:  p.defaults.ParallelSearch,
		StrictBudget:    p.defaults.StrictBudget,
		ResultsPerQuery: p.defaults.ResultsPerQuery,
	}
	if req.MaxRounds > 0 {
		opts.MaxRounds = req.MaxRounds
	}
	if q := strings.TrimSpace(req.QualityLevel); q != "" {
		opts.QualityLevel = q
	}
	return opts
}

func (p *Planner) store(ctx context.Context, sessionID string, profile model.UserProfile, out *model.Outcome) {
	if p.plans == nil {
		return
	}
	planID, err := p.plans.Create(ctx, sessionID, model.PlanRecordData{
		Plan:        out.Plan,
		Meta:        out.Meta,
		GeneratedAt: p.now().UTC().Format(time.RFC3339),
	}, fmt.Sprintf("%s %d-day trip", profile.Destination, profile.Days))
	if err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("failed to store plan")
		out.Meta.FailedSteps = append(out.Meta.FailedSteps, "store")
		return
	}
	out.PlanID = planID
}

func (p *Planner) observe(outcome string, rounds int, took time.Duration) {
	if p == nil {
		return
	}
	p.metrics.ObserveRun(outcome, rounds, took)
}

// Plans lists the stored plans of a session.
func (p *Planner) Plans(ctx context.Context, sessionID string) ([]*model.StoredPlan, error) {
	if p.plans == nil {
		return nil, errx.ErrNotConfigured
	}
	return p.plans.List(ctx, sessionID)
}

// StoredPlan returns one stored plan.
func (p *Planner) StoredPlan(ctx context.Context, sessionID, planID string) (*model.StoredPlan, error) {
	if p.plans == nil {
		return nil, errx.ErrNotConfigured
	}
	return p.plans.Get(ctx, sessionID, planID)
}

// ActivePlan returns the active plan of a session.
func (p *Planner) ActivePlan(ctx context.Context, sessionID string) (*model.StoredPlan, error) {
	if p.plans == nil {
		return nil, errx.ErrNotConfigured
	}
	return p.plans.Active(ctx, sessionID)
}

// ActivatePlan marks planID as the active plan of a session.
func (p *Planner) ActivatePlan(ctx context.Context, sessionID, planID string) error {
	if p.plans == nil {
		return errx.ErrNotConfigured
	}
	return p.plans.SetActive(ctx, sessionID, planID)
}

// DeletePlan removes one stored plan.
func (p *Planner) DeletePlan(ctx context.Context, sessionID, planID string) error {
	if p.plans == nil {
		return errx.ErrNotConfigured
	}
	return p.plans.Delete(ctx, sessionID, planID)
}

func validate(p model.UserProfile) error {
	switch {
	case p.Destination == "":
		return fmt.Errorf("%w: destination is required", errx.ErrInvalidProfile)
	case p.Days <= 0:
		return fmt.Errorf("%w: days must be positive", errx.ErrInvalidProfile)
	}
	return nil
}

func cleanList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
