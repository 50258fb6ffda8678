// Package planner turns the accumulated facts into a day-by-day itinerary.
package planner

import (
	"context"
	"encoding/json"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph/parsers"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph/prompts"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/llm"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	errx "github.com/Wayfarer-core-poc-v1/server/internal/core/error"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

// Composition is the outcome of Compose. Plan is always usable; Fallback reports that it
// came from the deterministic composer, and Err that the model call itself failed.
type Composition struct {
	Plan       model.TravelPlanResult
	Fallback   bool
	Recovery   string
	Completion *llm.Completion
	Err        error
}

// Composer makes the single planning call of a run.
type Composer struct {
	llm *llm.Invoker
}

func NewComposer(inv *llm.Invoker) *Composer {
	return &Composer{llm: inv}
}

// Compose asks the planning model for an itinerary and normalises the result. When the
// model fails or answers without usable days, the plan is built from facts instead.
func (c *Composer) Compose(ctx context.Context, profile model.UserProfile, facts *model.ExtractedInfo) Composition {
	var out Composition

	plan, ok := c.fromModel(ctx, profile, facts, &out)
	if !ok {
		plan = Fallback(profile, facts)
		out.Fallback = true
	}
	Normalize(&plan, profile.Days)
	out.Plan = plan

	logx.Debug().
		Str("component", "plan_composer").
		Bool("fallback", out.Fallback).
		Int("days", len(plan.Days)).
		Msg("plan composed")
	return out
}

func (c *Composer) fromModel(ctx context.Context, profile model.UserProfile, facts *model.ExtractedInfo, out *Composition) (model.TravelPlanResult, bool) {
	if c == nil || c.llm == nil {
		out.Err = errx.ErrNotConfigured
		return model.TravelPlanResult{}, false
	}
	msgs, err := prompts.RenderPlanMessages(ctx, prompts.PlanInput{Profile: profile, Facts: PromptFacts(facts)})
	if err != nil {
		out.Err = err
		return model.TravelPlanResult{}, false
	}
	completion, err := c.llm.Invoke(ctx, msgs)
	if err != nil {
		logx.Warn().Err(err).Str("destination", profile.Destination).Msg("planning model failed")
		out.Err = err
		return model.TravelPlanResult{}, false
	}
	out.Completion = &completion

	rec := parsers.RecoverJSON(completion.Content, nil)
	out.Recovery = rec.Strategy
	plan, ok := parsers.DecodePlan(rec.Value)
	if !ok {
		logx.Warn().Str("strategy", rec.Strategy).Msg("planning answer has no days, composing from facts")
	}
	return plan, ok
}

// promptFacts is the compact view of the accumulator embedded in the planning prompt.
type promptFacts struct {
	Routes         []model.Route        `json:"routes,omitempty"`
	Places         []model.Place        `json:"places,omitempty"`
	Food           []string             `json:"food,omitempty"`
	Accommodation  []model.Area         `json:"accommodation,omitempty"`
	Transportation model.Transportation `json:"transportation"`
	Avoid          []model.AvoidItem    `json:"avoid,omitempty"`
	Tips           []string             `json:"tips,omitempty"`
}

// PromptFacts serialises facts for the planning prompt, keeping the most useful entries.
func PromptFacts(facts *model.ExtractedInfo) string {
	if facts == nil || facts.IsEmpty() {
		return "{}"
	}
	view := promptFacts{
		Routes:         facts.Routes,
		Places:         facts.Places,
		Accommodation:  facts.Accommodation.RecommendedAreas,
		Transportation: facts.Transportation,
		Avoid:          facts.Avoid,
		Tips:           firstN(facts.Tips, 8),
	}
	if len(view.Routes) > 3 {
		view.Routes = view.Routes[:3]
	}
	if len(view.Places) > 12 {
		view.Places = view.Places[:12]
	}
	if len(view.Avoid) > 8 {
		view.Avoid = view.Avoid[:8]
	}
	for _, group := range [][]model.FoodItem{facts.Food.Specialties, facts.Food.Restaurants, facts.Food.Streets} {
		for _, f := range group {
			view.Food = append(view.Food, f.Name)
		}
	}
	view.Food = firstN(view.Food, 10)

	b, err := json.Marshal(view)
	if err != nil {
		return "{}"
	}
	return string(b)
}
