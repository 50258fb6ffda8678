package nodes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/budget"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/planner"
)

func TestNormalizeOptions(t *testing.T) {
	got := NormalizeOptions(model.RunOptions{})
	assert.Equal(t, DefaultMaxRounds, got.MaxRounds)
	assert.Equal(t, DefaultResultsPerQuery, got.ResultsPerQuery)
	assert.Equal(t, budget.QualityNormal, got.QualityLevel)

	got = NormalizeOptions(model.RunOptions{MaxRounds: 99, QualityLevel: " HIGH ", ResultsPerQuery: 3})
	assert.Equal(t, MaxRoundsLimit, got.MaxRounds)
	assert.Equal(t, "high", got.QualityLevel)
	assert.Equal(t, 3, got.ResultsPerQuery)
}

func TestDedupeNotes(t *testing.T) {
	seen := []model.CompressedNote{{Title: "Old Tower guide"}}
	in := []model.CompressedNote{
		{Title: "old  tower GUIDE"},
		{Title: "Food street"},
		{Title: "Food street"},
		{Title: ""},
		{Title: ""},
	}
	got := dedupeNotes(seen, in)
	require.Len(t, got, 3)
	assert.Equal(t, "Food street", got[0].Title)
}

func TestRequiredCategories(t *testing.T) {
	got := requiredCategories([]string{model.InfoPlaces, model.InfoFood, "weather", model.InfoTransportation})
	assert.Equal(t, []model.Category{model.CategoryAttraction, model.CategoryFood, model.CategoryTransport}, got)
	assert.Empty(t, requiredCategories(nil))
}

func newState(facts model.ExtractedInfo) *model.PlanState {
	return &model.PlanState{
		SessionID: "s-1",
		Profile:   model.UserProfile{Destination: "Rivertown", Days: 2},
		Round:     2,
		Extracted: facts,
		Budget:    budget.ForQualityLevel(budget.QualityNormal),
	}
}

func TestAssembleOutcome(t *testing.T) {
	skeleton := model.TravelPlanResult{Days: []model.DayPlan{{Day: 1}, {Day: 2}}}

	t.Run("plan", func(t *testing.T) {
		out := assembleOutcome(newState(model.ExtractedInfo{}), planner.Composition{Plan: skeleton})
		assert.True(t, out.Success)
		assert.False(t, out.Partial)
		assert.Empty(t, out.Message)
		assert.Equal(t, 2, out.Meta.Rounds)
	})

	t.Run("failed model with facts is partial", func(t *testing.T) {
		facts := model.ExtractedInfo{Places: []model.Place{{Name: "Old Tower"}}}
		out := assembleOutcome(newState(facts), planner.Composition{Plan: skeleton, Fallback: true, Err: errors.New("boom")})
		assert.False(t, out.Success)
		assert.True(t, out.Partial)
		require.NotNil(t, out.Facts)
		assert.Equal(t, "Old Tower", out.Facts.Places[0].Name)
		assert.Contains(t, out.Message, "boom")
	})

	t.Run("failed model without facts is a skeleton", func(t *testing.T) {
		out := assembleOutcome(newState(model.ExtractedInfo{}), planner.Composition{Plan: skeleton, Fallback: true, Err: errors.New("boom")})
		assert.True(t, out.Success)
		assert.True(t, out.Meta.Fallback)
		assert.Nil(t, out.Facts)
		assert.NotEmpty(t, out.Message)
		assert.Len(t, out.Plan.Days, 2)
	})
}
