package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/llm"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/llm/llmtest"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

var rivertown = model.UserProfile{Destination: "Rivertown", Days: 3, Preferences: []string{"food"}}

func TestCleanPOI(t *testing.T) {
	cases := []struct {
		raw         string
		wantPOI     string
		wantRemoved string
	}{
		{raw: "visit Broad Street Food Market", wantPOI: "Broad Street Food Market", wantRemoved: "visit Broad Street Food Market"},
		{raw: "Go to the Old Tower", wantPOI: "the Old Tower", wantRemoved: "Go to the Old Tower"},
		{raw: "Old Tower", wantPOI: "Old Tower"},
		{raw: "Old Tower -> River Walk -> Night Market", wantPOI: "Old Tower", wantRemoved: "then River Walk → Night Market"},
		{raw: "explore Harbour → Lighthouse", wantPOI: "Harbour", wantRemoved: "explore Harbour, then Lighthouse"},
		{raw: "前往牛首山文化旅游区", wantPOI: "牛首山文化旅游区", wantRemoved: "前往牛首山文化旅游区"},
		{raw: "秦淮河夜游", wantPOI: "秦淮河", wantRemoved: "秦淮河夜游"},
		{raw: "  ", wantPOI: ""},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			poi, removed := CleanPOI(tc.raw)
			assert.Equal(t, tc.wantPOI, poi)
			assert.Equal(t, tc.wantRemoved, removed)
		})
	}
}

func TestNormalizeMovesVerbIntoActivity(t *testing.T) {
	plan := model.TravelPlanResult{Days: []model.DayPlan{{
		Day: 1,
		Schedule: []model.ScheduleItem{
			{Time: "12:00", POI: "visit Broad Street Food Market"},
			{Time: "15:00", POI: "return to Old Tower", Activity: "sunset photos", Duration: "2 hours"},
		},
	}}}

	Normalize(&plan, 1)

	first := plan.Days[0].Schedule[0]
	assert.Equal(t, "Broad Street Food Market", first.POI)
	assert.Equal(t, "visit Broad Street Food Market", first.Activity)
	assert.Equal(t, DefaultDuration, first.Duration)

	second := plan.Days[0].Schedule[1]
	assert.Equal(t, "Old Tower", second.POI)
	assert.Equal(t, "return to Old Tower; sunset photos", second.Activity)
	assert.Equal(t, "2 hours", second.Duration)
}

func TestNormalizeFitsDayCount(t *testing.T) {
	plan := model.TravelPlanResult{Days: []model.DayPlan{{Day: 1}}}
	Normalize(&plan, 3)
	require.Len(t, plan.Days, 3)
	assert.Equal(t, 3, plan.Days[2].Day)
	assert.NotNil(t, plan.Days[2].Schedule)

	Normalize(&plan, 2)
	assert.Len(t, plan.Days, 2)
}

func TestFallbackPrefersMatchingRoute(t *testing.T) {
	facts := &model.ExtractedInfo{
		Routes: []model.Route{
			{Source: "a", Days: 2, DailyPlan: []model.RouteDay{{Day: 1, Places: []string{"X"}}, {Day: 2, Places: []string{"Y"}}}},
			{Source: "b", Days: 3, DailyPlan: []model.RouteDay{
				{Day: 1, Places: []string{"Old Tower", "River Walk"}},
				{Day: 2, Places: []string{"Harbour"}},
				{Day: 3, Places: []string{"Museum"}},
			}},
		},
		Places: []model.Place{{Name: "Old Tower", Ticket: "free", Duration: "2 hours"}},
	}

	plan := Fallback(rivertown, facts)
	require.Len(t, plan.Days, 3)
	first := plan.Days[0].Schedule[0]
	assert.Equal(t, "Old Tower", first.POI)
	assert.Equal(t, "free", first.Ticket)
	assert.Equal(t, "09:00", first.Time)
	assert.Equal(t, "11:00", plan.Days[0].Schedule[1].Time)
}

func TestFallbackSpreadsPlaces(t *testing.T) {
	facts := &model.ExtractedInfo{Places: []model.Place{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}}
	plan := Fallback(rivertown, facts)

	require.Len(t, plan.Days, 3)
	assert.Len(t, plan.Days[0].Schedule, 2)
	assert.Len(t, plan.Days[1].Schedule, 2)
	assert.Empty(t, plan.Days[2].Schedule)
	assert.Equal(t, []string{"a", "b", "c"}, plan.Highlights)
}

func TestFallbackSkeleton(t *testing.T) {
	plan := Fallback(rivertown, nil)
	require.Len(t, plan.Days, 3)
	for i, d := range plan.Days {
		assert.Equal(t, i+1, d.Day)
		assert.NotNil(t, d.Schedule)
		assert.Empty(t, d.Schedule)
	}
}

func TestComposeUsesModelAnswer(t *testing.T) {
	answer := "Here is your plan:\n```json\n" + `{
  "overview": "Food-first weekend",
  "highlights": ["Broad Street Food Market"],
  "days": [
    {"day": 1, "theme": "Food", "schedule": [{"time": "12:00", "poi": "visit Broad Street Food Market", "tips": ["go hungry", "bring cash"]}]},
    {"day": 2, "schedule": []},
    {"day": 3, "schedule": []},
  ],
  "tips": {"transportation": "metro", "avoid": ["tourist menus"]}
}` + "\n```"
	fake := &llmtest.ChatModel{Responses: []string{answer}}
	c := NewComposer(llm.NewInvoker(fake, "fake-model", "plan"))

	out := c.Compose(context.Background(), rivertown, &model.ExtractedInfo{Places: []model.Place{{Name: "Broad Street Food Market"}}})
	require.NoError(t, out.Err)
	assert.False(t, out.Fallback)
	require.NotNil(t, out.Completion)
	require.Len(t, out.Plan.Days, 3)

	item := out.Plan.Days[0].Schedule[0]
	assert.Equal(t, "Broad Street Food Market", item.POI)
	assert.Equal(t, "go hungry; bring cash", item.Tips)
	assert.Equal(t, DefaultDuration, item.Duration)
	assert.Equal(t, "metro", out.Plan.Tips.Transport)
	assert.Equal(t, []string{"tourist menus"}, out.Plan.Tips.Avoid)
}

func TestComposeFallsBackOnUnusableAnswer(t *testing.T) {
	fake := &llmtest.ChatModel{Responses: []string{`{"overview": "no days here"}`}}
	c := NewComposer(llm.NewInvoker(fake, "fake-model", "plan"))

	out := c.Compose(context.Background(), rivertown, &model.ExtractedInfo{Places: []model.Place{{Name: "Old Tower"}}})
	assert.NoError(t, out.Err)
	assert.True(t, out.Fallback)
	require.Len(t, out.Plan.Days, 3)
	assert.Equal(t, "Old Tower", out.Plan.Days[0].Schedule[0].POI)
}

func TestComposeReportsModelFailure(t *testing.T) {
	fake := &llmtest.ChatModel{Err: errors.New("timeout")}
	c := NewComposer(llm.NewInvoker(fake, "fake-model", "plan"))

	out := c.Compose(context.Background(), rivertown, nil)
	assert.Error(t, out.Err)
	assert.True(t, out.Fallback)
	assert.Len(t, out.Plan.Days, 3)
}

func TestPromptFacts(t *testing.T) {
	assert.Equal(t, "{}", PromptFacts(nil))
	got := PromptFacts(&model.ExtractedInfo{Food: model.Food{Streets: []model.FoodItem{{Name: "Broad Street"}}}})
	assert.Contains(t, got, `"food":["Broad Street"]`)
}
