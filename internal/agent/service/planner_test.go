package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/metrics"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/repo"
)

type fakeRunner struct {
	out *model.Outcome
	err error
	got model.PlanInput
}

func (f *fakeRunner) Invoke(_ context.Context, in model.PlanInput) (*model.Outcome, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	out := *f.out
	if f.out.Meta != nil {
		meta := *f.out.Meta
		out.Meta = &meta
	}
	if f.out.Plan != nil {
		plan := *f.out.Plan
		out.Plan = &plan
	}
	return &out, nil
}

type fakeEnricher struct {
	kind string
	err  error
	hits int
}

func (f *fakeEnricher) Kind() string { return f.kind }

func (f *fakeEnricher) Enrich(_ context.Context, _ model.UserProfile, plan *model.TravelPlanResult) error {
	f.hits++
	if f.err != nil {
		return f.err
	}
	plan.Highlights = append(plan.Highlights, f.kind+" checked")
	return nil
}

func successOutcome() *model.Outcome {
	return &model.Outcome{
		Success:     true,
		Destination: "Rivertown",
		Days:        2,
		Plan:        &model.TravelPlanResult{Overview: "two days by the river", Days: []model.DayPlan{{Day: 1}, {Day: 2}}},
		Meta:        &model.RunMeta{Rounds: 2},
	}
}

func newStore(t *testing.T) *repo.RedisPlanRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return repo.NewRedisPlanRepository(rdb, time.Hour)
}

func TestGenerateStoresPlan(t *testing.T) {
	runner := &fakeRunner{out: successOutcome()}
	store := newStore(t)
	p := NewPlanner(runner, store, metrics.New(), model.PlannerConfig{MaxRounds: 2, QualityLevel: "normal", ResultsPerQuery: 10})

	out := p.Generate(context.Background(), Request{
		Destination:  "  Rivertown ",
		Days:         2,
		Preferences:  []string{"food", " Food ", ""},
		MaxRounds:    3,
		QualityLevel: "high",
		SessionID:    "s-1",
	})

	require.True(t, out.Success)
	assert.Equal(t, "s-1", out.SessionID)
	assert.NotEmpty(t, out.PlanID)

	assert.Equal(t, "Rivertown", runner.got.Profile.Destination)
	assert.Equal(t, []string{"food"}, runner.got.Profile.Preferences)
	assert.Equal(t, 3, runner.got.Options.MaxRounds)
	assert.Equal(t, "high", runner.got.Options.QualityLevel)
	assert.Equal(t, 10, runner.got.Options.ResultsPerQuery)

	active, err := p.ActivePlan(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, out.PlanID, active.PlanID)
	assert.Equal(t, "Rivertown 2-day trip", active.Name)
	assert.Equal(t, "two days by the river", active.RouteData.Plan.Overview)
}

func TestGenerateGeneratesSessionID(t *testing.T) {
	p := NewPlanner(&fakeRunner{out: successOutcome()}, nil, nil, model.PlannerConfig{})
	out := p.Generate(context.Background(), Request{Destination: "Rivertown", Days: 2})
	assert.True(t, out.Success)
	assert.Len(t, out.SessionID, 36)
	assert.Empty(t, out.PlanID)
}

func TestGenerateValidation(t *testing.T) {
	p := NewPlanner(&fakeRunner{out: successOutcome()}, nil, nil, model.PlannerConfig{})

	out := p.Generate(context.Background(), Request{Days: 2})
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "destination is required")

	out = p.Generate(context.Background(), Request{Destination: "Rivertown"})
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "days must be positive")
	assert.Equal(t, "Rivertown", out.Destination)
}

func TestGenerateNotConfigured(t *testing.T) {
	p := NewPlanner(nil, nil, nil, model.PlannerConfig{})
	out := p.Generate(context.Background(), Request{Destination: "Rivertown", Days: 3})
	assert.False(t, out.Success)
	assert.False(t, out.Partial)
	assert.Contains(t, out.Error, "not configured")
	assert.Equal(t, "Rivertown", out.Destination)
	assert.Equal(t, 3, out.Days)
}

func TestGenerateRunnerError(t *testing.T) {
	p := NewPlanner(&fakeRunner{err: errors.New("graph exploded")}, nil, nil, model.PlannerConfig{})
	out := p.Generate(context.Background(), Request{Destination: "Rivertown", Days: 3, SessionID: "s-9"})
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "graph exploded")
	assert.Equal(t, "s-9", out.SessionID)
}

func TestGeneratePartialIsNotStored(t *testing.T) {
	partial := &model.Outcome{
		Partial:     true,
		Destination: "Rivertown",
		Days:        2,
		Facts:       &model.ExtractedInfo{Places: []model.Place{{Name: "Old Tower"}}},
		Meta:        &model.RunMeta{Rounds: 2},
	}
	store := newStore(t)
	p := NewPlanner(&fakeRunner{out: partial}, store, nil, model.PlannerConfig{})

	out := p.Generate(context.Background(), Request{Destination: "Rivertown", Days: 2, SessionID: "s-2"})
	assert.True(t, out.Partial)
	assert.Empty(t, out.PlanID)

	plans, err := p.Plans(context.Background(), "s-2")
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestEnrichers(t *testing.T) {
	weather := &fakeEnricher{kind: EnrichWeather}
	maps := &fakeEnricher{kind: EnrichMap, err: errors.New("map api down")}
	p := NewPlanner(&fakeRunner{out: successOutcome()}, nil, nil, model.PlannerConfig{}, weather, maps)

	out := p.Generate(context.Background(), Request{Destination: "Rivertown", Days: 2})
	assert.Equal(t, 0, weather.hits)
	assert.Equal(t, 1, maps.hits)
	assert.Equal(t, []string{EnrichWeather}, out.Meta.SkippedSteps)
	assert.Equal(t, []string{EnrichMap}, out.Meta.FailedSteps)
	assert.True(t, out.Success)

	maps.err = nil
	out = p.Generate(context.Background(), Request{Destination: "Rivertown", Days: 2, IncludeWeather: true, SkipMap: true})
	assert.Equal(t, 1, weather.hits)
	assert.Equal(t, 1, maps.hits)
	assert.Equal(t, []string{EnrichWeather}, out.Meta.Enrichments)
	assert.Equal(t, []string{EnrichMap}, out.Meta.SkippedSteps)
	assert.Contains(t, out.Plan.Highlights, "weather checked")
}

func TestStoredPlanOperations(t *testing.T) {
	store := newStore(t)
	p := NewPlanner(&fakeRunner{out: successOutcome()}, store, nil, model.PlannerConfig{})
	ctx := context.Background()

	first := p.Generate(ctx, Request{Destination: "Rivertown", Days: 2, SessionID: "s-3"})
	second := p.Generate(ctx, Request{Destination: "Rivertown", Days: 2, SessionID: "s-3"})

	require.NoError(t, p.ActivatePlan(ctx, "s-3", first.PlanID))
	active, err := p.ActivePlan(ctx, "s-3")
	require.NoError(t, err)
	assert.Equal(t, first.PlanID, active.PlanID)

	got, err := p.StoredPlan(ctx, "s-3", second.PlanID)
	require.NoError(t, err)
	assert.Equal(t, second.PlanID, got.PlanID)

	require.NoError(t, p.DeletePlan(ctx, "s-3", first.PlanID))
	plans, err := p.Plans(ctx, "s-3")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, second.PlanID, plans[0].PlanID)
}

func TestStoreOperationsNeedRepository(t *testing.T) {
	p := NewPlanner(nil, nil, nil, model.PlannerConfig{})
	_, err := p.Plans(context.Background(), "s")
	assert.Error(t, err)
	assert.Error(t, p.DeletePlan(context.Background(), "s", "plan_x"))
}
