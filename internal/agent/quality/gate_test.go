package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

func fullFacts() *model.ExtractedInfo {
	return &model.ExtractedInfo{
		Routes: []model.Route{{Source: "n1", Days: 3, DailyPlan: []model.RouteDay{{Day: 1, Places: []string{"Old Tower"}}}}},
		Food: model.Food{
			Specialties: []model.FoodItem{{Name: "river fish"}},
			Restaurants: []model.FoodItem{{Name: "Harbour Grill"}},
		},
		Accommodation:  model.Accommodation{RecommendedAreas: []model.Area{{Area: "Old Town"}}},
		Transportation: model.Transportation{Arrival: "train"},
	}
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name        string
		facts       *model.ExtractedInfo
		round       int
		maxRounds   int
		wantAction  string
		wantMissing []string
	}{
		{
			name:       "max rounds forces proceed",
			facts:      nil,
			round:      2,
			maxRounds:  2,
			wantAction: model.DecisionProceed,
		},
		{
			name:        "empty accumulator needs everything",
			facts:       &model.ExtractedInfo{},
			round:       1,
			maxRounds:   3,
			wantAction:  model.DecisionNeedMore,
			wantMissing: []string{model.InfoPlaces, model.InfoFood, model.InfoAccommodation},
		},
		{
			name:        "transport checked from round two",
			facts:       &model.ExtractedInfo{},
			round:       2,
			maxRounds:   3,
			wantAction:  model.DecisionNeedMore,
			wantMissing: []string{model.InfoPlaces, model.InfoFood, model.InfoAccommodation, model.InfoTransportation},
		},
		{
			name:       "complete facts proceed",
			facts:      fullFacts(),
			round:      2,
			maxRounds:  3,
			wantAction: model.DecisionProceed,
		},
		{
			name: "standalone places stand in for a route",
			facts: func() *model.ExtractedInfo {
				f := fullFacts()
				f.Routes = nil
				f.Places = []model.Place{{Name: "a"}, {Name: "b"}, {Name: "c"}}
				return f
			}(),
			round:      1,
			maxRounds:  3,
			wantAction: model.DecisionProceed,
		},
		{
			name: "route without daily plan does not count",
			facts: func() *model.ExtractedInfo {
				f := fullFacts()
				f.Routes[0].DailyPlan = nil
				return f
			}(),
			round:       1,
			maxRounds:   3,
			wantAction:  model.DecisionNeedMore,
			wantMissing: []string{model.InfoPlaces},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.facts, tc.round, tc.maxRounds)
			assert.Equal(t, tc.wantAction, got.Action)
			assert.Equal(t, tc.wantMissing, got.Missing)
		})
	}
}

func TestDecideFoodOnlyAtMaxRounds(t *testing.T) {
	facts := &model.ExtractedInfo{Food: model.Food{Restaurants: []model.FoodItem{{Name: "Harbour Grill"}, {Name: "Noodle Bar"}}}}

	assert.True(t, Decide(facts, 1, 2).NeedMore())
	assert.Equal(t, model.DecisionProceed, Decide(facts, 2, 2).Action)
}
