package service

import (
	"context"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

// Enrichment kinds.
const (
	EnrichWeather = "weather"
	EnrichMap     = "map"
)

// Enricher adds auxiliary data to a composed plan, e.g. a forecast per day or validated
// map routes between stops. It may modify plan in place.
type Enricher interface {
	Kind() string
	Enrich(ctx context.Context, profile model.UserProfile, plan *model.TravelPlanResult) error
}

// enabled reports whether the request asked for an enrichment kind. Weather is opt-in,
// map validation is opt-out.
func enabled(req Request, kind string) bool {
	switch kind {
	case EnrichWeather:
		return req.IncludeWeather
	case EnrichMap:
		return !req.SkipMap
	default:
		return true
	}
}

// enrich runs every enabled enricher in order. Failures are recorded in the run meta and
// never fail the request.
func (p *Planner) enrich(ctx context.Context, req Request, profile model.UserProfile, out *model.Outcome) {
	for _, e := range p.enrichers {
		kind := e.Kind()
		if !enabled(req, kind) {
			out.Meta.SkippedSteps = append(out.Meta.SkippedSteps, kind)
			continue
		}
		if err := e.Enrich(ctx, profile, out.Plan); err != nil {
			logx.Warn().Err(err).Str("session_id", out.SessionID).Str("enrichment", kind).Msg("enrichment failed")
			out.Meta.FailedSteps = append(out.Meta.FailedSteps, kind)
			continue
		}
		out.Meta.Enrichments = append(out.Meta.Enrichments, kind)
	}
}
