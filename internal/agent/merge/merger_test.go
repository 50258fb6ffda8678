package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

func sampleExtraction() *model.ExtractedInfo {
	return &model.ExtractedInfo{
		Routes: []model.Route{{
			Source: "note-1",
			Days:   3,
			DailyPlan: []model.RouteDay{
				{Day: 1, Places: []string{"Old Tower", "River Walk"}},
			},
		}},
		Places: []model.Place{{Name: "Old Tower", OpenTime: "09:00-17:00"}},
		Transportation: model.Transportation{
			Arrival: "Train to Rivertown Central",
			Local:   []string{"metro line 2", "bike share"},
		},
		Accommodation: model.Accommodation{
			RecommendedAreas: []model.Area{{Area: "Old Town", Reasons: []string{"walkable"}}},
			Tips:             []string{"book early"},
		},
		Food: model.Food{
			Specialties: []model.FoodItem{{Name: "river fish"}},
			Streets:     []model.FoodItem{{Name: "Broad Street Food Market"}},
		},
		Avoid: []model.AvoidItem{{Item: "taxis at the station", Reason: "overpriced"}},
		Tips:  []string{"carry cash"},
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	once := Merge(nil, sampleExtraction())
	snapshot := *Merge(&model.ExtractedInfo{}, sampleExtraction())

	twice := Merge(once, sampleExtraction())
	assert.Equal(t, snapshot, *twice)
}

func TestMergeBackfillsPlaceDetails(t *testing.T) {
	acc := Merge(nil, &model.ExtractedInfo{Places: []model.Place{{Name: "Old Tower"}}})
	acc = Merge(acc, &model.ExtractedInfo{Places: []model.Place{{Name: "Old Tower", Ticket: "free"}}})

	require.Len(t, acc.Places, 1)
	assert.Equal(t, "Old Tower", acc.Places[0].Name)
	assert.Equal(t, "free", acc.Places[0].Ticket)
}

func TestMergeFirstSeenDetailWins(t *testing.T) {
	acc := Merge(nil, &model.ExtractedInfo{Places: []model.Place{{Name: "Old Tower", Ticket: "$15"}}})
	acc = Merge(acc, &model.ExtractedInfo{Places: []model.Place{{Name: "Old Tower", Ticket: "free", Duration: "2 hours"}}})

	require.Len(t, acc.Places, 1)
	assert.Equal(t, "$15", acc.Places[0].Ticket)
	assert.Equal(t, "2 hours", acc.Places[0].Duration)
}

func TestMergeKeepsLongerArrival(t *testing.T) {
	acc := Merge(nil, &model.ExtractedInfo{Transportation: model.Transportation{Arrival: "train"}})
	acc = Merge(acc, &model.ExtractedInfo{Transportation: model.Transportation{Arrival: "fast train from the capital, 2 hours"}})
	acc = Merge(acc, &model.ExtractedInfo{Transportation: model.Transportation{Arrival: "bus"}})

	assert.Equal(t, "fast train from the capital, 2 hours", acc.Transportation.Arrival)
}

func TestMergeAreasUnionAndBackfill(t *testing.T) {
	acc := Merge(nil, &model.ExtractedInfo{Accommodation: model.Accommodation{
		RecommendedAreas: []model.Area{{Area: "Old Town", Reasons: []string{"walkable"}, PriceRange: "$80"}},
	}})
	acc = Merge(acc, &model.ExtractedInfo{Accommodation: model.Accommodation{
		RecommendedAreas: []model.Area{
			{Area: "Old Town", Reasons: []string{"walkable", "quiet"}, Nearby: []string{"Old Tower"}, Transport: "metro", PriceRange: "$120"},
			{Area: "Harbour"},
		},
	}})

	require.Len(t, acc.Accommodation.RecommendedAreas, 2)
	old := acc.Accommodation.RecommendedAreas[0]
	assert.Equal(t, []string{"walkable", "quiet"}, old.Reasons)
	assert.Equal(t, []string{"Old Tower"}, old.Nearby)
	assert.Equal(t, "metro", old.Transport)
	assert.Equal(t, "$80", old.PriceRange)
}

func TestMergeGrowsMonotonically(t *testing.T) {
	rounds := []*model.ExtractedInfo{
		sampleExtraction(),
		{Places: []model.Place{{Name: "Harbour Museum"}}, Avoid: []model.AvoidItem{{Item: "weekend crowds"}}},
		nil,
		{Routes: []model.Route{{Source: "note-2", Days: 2, DailyPlan: []model.RouteDay{{Day: 1}}}}},
		sampleExtraction(),
	}

	var acc *model.ExtractedInfo
	var prevPlaces, prevAvoid []string
	var prevRoutes []model.RouteKey
	for _, r := range rounds {
		acc = Merge(acc, r)
		assert.Subset(t, acc.PlaceNames(), prevPlaces)
		assert.Subset(t, acc.AvoidItems(), prevAvoid)
		assert.Subset(t, acc.RouteKeys(), prevRoutes)
		prevPlaces, prevAvoid, prevRoutes = acc.PlaceNames(), acc.AvoidItems(), acc.RouteKeys()
	}
	assert.Len(t, acc.Places, 2)
	assert.Len(t, acc.Routes, 2)
	assert.Len(t, acc.Avoid, 2)
}

func TestMergeNilInputs(t *testing.T) {
	assert.NotPanics(t, func() {
		acc := Merge(nil, nil)
		require.NotNil(t, acc)
		assert.True(t, acc.IsEmpty())
	})
}

func TestMergeDoesNotShareExtraWithInput(t *testing.T) {
	first := &model.ExtractedInfo{Places: []model.Place{{Name: "Old Tower", Extra: map[string]any{"a": 1}}}}
	second := &model.ExtractedInfo{Places: []model.Place{{Name: "Old Tower", Extra: map[string]any{"b": 2}}}}

	acc := Merge(nil, first)
	Merge(acc, second)

	assert.Equal(t, map[string]any{"a": 1}, first.Places[0].Extra)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, acc.Places[0].Extra)
}
