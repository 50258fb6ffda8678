package query

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

func TestFallbackFirstRoundCoversSlots(t *testing.T) {
	g := NewGenerator(nil)
	res := g.Next(context.Background(), Request{Profile: rivertown, Round: 1})

	assert.True(t, res.Fallback)
	assert.Nil(t, res.Completion)
	assert.Equal(t, []string{
		"Rivertown 3-day itinerary",
		"Rivertown must-eat local food",
		"Rivertown where to stay best area",
		"Rivertown must-see attractions",
		"Rivertown local food ranking",
	}, res.Queries)
}

func TestLaterRoundTargetsMissing(t *testing.T) {
	g := NewGenerator(nil)
	res := g.Next(context.Background(), Request{
		Profile: rivertown,
		Round:   2,
		Missing: []string{model.InfoAccommodation},
	})
	assert.Equal(t, []string{
		"Rivertown where to stay best area",
		"Rivertown hotel area recommendations",
	}, res.Queries)
}

func TestLaterRoundDefaultsToAvoidAndTips(t *testing.T) {
	res := NewGenerator(nil).Next(context.Background(), Request{Profile: rivertown, Round: 2})
	require.Len(t, res.Queries, 3)
	assert.Equal(t, "Rivertown tourist traps to avoid", res.Queries[0])
	assert.Equal(t, "Rivertown practical travel tips", res.Queries[1])
}

func TestLaterRoundTargetsEveryMissingTag(t *testing.T) {
	res := NewGenerator(nil).Next(context.Background(), Request{
		Profile: rivertown,
		Round:   2,
		Missing: []string{model.InfoPlaces, model.InfoFood, model.InfoAccommodation, model.InfoTransportation},
	})
	assert.Equal(t, []string{
		"Rivertown must-see attractions",
		"Rivertown must-eat local food",
		"Rivertown where to stay best area",
		"how to get to Rivertown and get around",
	}, res.Queries)
}

func TestQueriesNeverRepeatAcrossRounds(t *testing.T) {
	g := NewGenerator(nil)
	var history []string
	missing := [][]string{nil, {model.InfoFood}, {model.InfoFood}, {model.InfoFood, model.InfoPlaces}, nil, nil}
	for round := 1; round <= len(missing); round++ {
		res := g.Next(context.Background(), Request{Profile: rivertown, Round: round, Missing: missing[round-1], History: history})
		history = append(history, res.Queries...)
	}

	seen := map[string]bool{}
	for _, q := range history {
		assert.False(t, seen[q], "query %q issued twice", q)
		seen[q] = true
	}
}

func TestModelQueriesAreUsed(t *testing.T) {
	fake := &llmtest.ChatModel{Responses: []string{"```json\n{\"queries\": [\"Rivertown food night market\", \"Rivertown 3-day itinerary\", \"Rivertown ferry\"]}\n```"}}
	g := NewGenerator(llm.NewInvoker(fake, "fake-model", "query"))

	res := g.Next(context.Background(), Request{
		Profile: rivertown,
		Round:   2,
		Missing: []string{model.InfoFood},
		History: []string{"Rivertown 3-day itinerary"},
	})
	assert.False(t, res.Fallback)
	require.NotNil(t, res.Completion)
	assert.Positive(t, res.Completion.Tokens())
	assert.Equal(t, []string{"Rivertown food night market", "Rivertown ferry"}, res.Queries)
	assert.Equal(t, 1, fake.Calls())
}

func TestShortModelBatchIsToppedUp(t *testing.T) {
	fake := &llmtest.ChatModel{Responses: []string{`{"queries": ["Rivertown nightlife", "Rivertown 3-day itinerary"]}`}}
	g := NewGenerator(llm.NewInvoker(fake, "fake-model", "query"))

	res := g.Next(context.Background(), Request{Profile: model.UserProfile{Destination: "Rivertown", Days: 3}, Round: 1})
	assert.False(t, res.Fallback)
	assert.Equal(t, []string{
		"Rivertown nightlife",
		"Rivertown 3-day itinerary",
		"Rivertown must-eat local food",
		"Rivertown where to stay best area",
	}, res.Queries)
}

func TestModelFailureFallsBack(t *testing.T) {
	fake := &llmtest.ChatModel{Err: errors.New("quota exceeded")}
	g := NewGenerator(llm.NewInvoker(fake, "fake-model", "query"))

	res := g.Next(context.Background(), Request{Profile: rivertown, Round: 2, Missing: []string{model.InfoFood}})
	assert.True(t, res.Fallback)
	assert.Error(t, res.Err)
	assert.NotEmpty(t, res.Queries)
}

func TestSkipLLM(t *testing.T) {
	fake := &llmtest.ChatModel{Responses: []string{`{"queries": ["x"]}`}}
	g := NewGenerator(llm.NewInvoker(fake, "fake-model", "query"))

	res := g.Next(context.Background(), Request{Profile: rivertown, Round: 1, SkipLLM: true})
	assert.True(t, res.Fallback)
	assert.Zero(t, fake.Calls())
}

func TestInferTravelType(t *testing.T) {
	assert.Equal(t, TravelFamily, InferTravelType(model.UserProfile{GroupType: "Family with kids"}))
	assert.Equal(t, TravelCouple, InferTravelType(model.UserProfile{Preferences: []string{"romantic dinners"}}))
	assert.Equal(t, TravelFreeStyle, InferTravelType(model.UserProfile{Preferences: []string{"food"}}))
}

func TestFamilyGroupAddsKidFriendlyQuery(t *testing.T) {
	p := model.UserProfile{Destination: "Rivertown", Days: 2, GroupType: "family"}
	res := NewGenerator(nil).Next(context.Background(), Request{Profile: p, Round: 1})
	assert.Contains(t, res.Queries, "Rivertown kid-friendly itinerary")
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{" a ", "b", "a", "", "c", "d"}, []string{"b"}, 2)
	assert.Equal(t, []string{"a", "c"}, got)
}
