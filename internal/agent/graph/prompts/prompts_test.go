package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

var profile = model.UserProfile{Destination: "Rivertown", Days: 3, Preferences: []string{"food"}}

func TestRenderQueryMessages(t *testing.T) {
	msgs, err := RenderQueryMessages(context.Background(), QueryInput{
		Profile: profile,
		Round:   2,
		Missing: []string{model.InfoFood, model.InfoAccommodation},
		History: []string{"Rivertown 3-day itinerary"},
		Count:   3,
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "Rivertown")
	assert.Contains(t, msgs[0].Content, "missing: food, accommodation")
	assert.Contains(t, msgs[0].Content, "- Rivertown 3-day itinerary")
	assert.Contains(t, msgs[0].Content, "exactly 3")
}

func TestRenderExtractMessagesNumbersNotes(t *testing.T) {
	msgs, err := RenderExtractMessages(context.Background(), ExtractInput{
		Profile: profile,
		Notes: []model.CompressedNote{
			{Title: "Old Tower", Content: "ticket free", Likes: 12},
			{Title: "Noodles", Content: "Broad Street"},
		},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Content, "[Note 1] Old Tower (12 likes)")
	assert.Contains(t, msgs[1].Content, "[Note 2] Noodles\n")
}

func TestRenderPlanMessagesDefaults(t *testing.T) {
	msgs, err := RenderPlanMessages(context.Background(), PlanInput{Profile: profile})
	require.NoError(t, err)
	assert.Contains(t, msgs[0].Content, "3-day itinerary for Rivertown")
	assert.Contains(t, msgs[0].Content, "budget: moderate")
	assert.Contains(t, msgs[1].Content, "{}")
}
