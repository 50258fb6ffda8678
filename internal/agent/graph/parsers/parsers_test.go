package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverJSON(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		strategy  string
		recovered bool
		want      map[string]any
	}{
		{
			name:      "fenced block",
			content:   "Here you go:\n```json\n{\"queries\": [\"Rivertown food\"]}\n```\nEnjoy!",
			strategy:  StrategyDirect,
			recovered: true,
			want:      map[string]any{"queries": []any{"Rivertown food"}},
		},
		{
			name:      "prose around object",
			content:   `Sure. {"days": 2} Hope this helps.`,
			strategy:  StrategyDirect,
			recovered: true,
			want:      map[string]any{"days": float64(2)},
		},
		{
			name:      "comments and trailing commas",
			content:   "{\"a\": 1, // first\n \"b\": [1, 2,], /* done */}",
			strategy:  StrategyCleaned,
			recovered: true,
			want:      map[string]any{"a": float64(1), "b": []any{float64(1), float64(2)}},
		},
		{
			name:      "comment markers inside strings survive",
			content:   "{\"url\": \"https://example.com/a\", \"n\": 1,}",
			strategy:  StrategyCleaned,
			recovered: true,
			want:      map[string]any{"url": "https://example.com/a", "n": float64(1)},
		},
		{
			name:      "comma before bracket inside a string is kept",
			content:   `{"a": "x,]", "b": [1,2,],}`,
			strategy:  StrategyCleaned,
			recovered: true,
			want:      map[string]any{"a": "x,]", "b": []any{float64(1), float64(2)}},
		},
		{
			name:      "single quotes",
			content:   `{'name': 'Old Tower'}`,
			strategy:  StrategyQuotes,
			recovered: true,
			want:      map[string]any{"name": "Old Tower"},
		},
		{
			name:     "prose only",
			content:  "Sorry, I can only describe Rivertown in prose.",
			strategy: StrategyDefault,
			want:     map[string]any{"fallback": true},
		},
		{
			name:     "top level array",
			content:  `[1, 2, 3]`,
			strategy: StrategyDefault,
			want:     map[string]any{"fallback": true},
		},
		{
			name:     "empty",
			content:  "   ",
			strategy: StrategyDefault,
			want:     map[string]any{"fallback": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RecoverJSON(tt.content, map[string]any{"fallback": true})
			assert.Equal(t, tt.strategy, rec.Strategy)
			assert.Equal(t, tt.recovered, rec.Recovered)
			assert.Equal(t, tt.want, rec.Value)
		})
	}
}

func TestRecoverJSONDiagnostic(t *testing.T) {
	rec := RecoverJSON(`{"name": "Old Tower" "ticket": "free"}`, nil)
	assert.False(t, rec.Recovered)
	assert.Equal(t, map[string]any{}, rec.Value)
	assert.Contains(t, rec.Diagnostic, "<<HERE>>")
	assert.True(t, strings.HasPrefix(rec.Diagnostic, "offset "))
}

func TestRecoverJSONTruncatesHugeContent(t *testing.T) {
	huge := `{"a": "` + strings.Repeat("x", maxContentLen) + `"}`
	rec := RecoverJSON(huge, nil)
	assert.False(t, rec.Recovered)
	assert.Equal(t, StrategyDefault, rec.Strategy)
}

func TestExtractCandidate(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, ExtractCandidate("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": {"b": 2}}`, ExtractCandidate(`noise {"a": {"b": 2}} noise`))
	assert.Equal(t, "no braces", ExtractCandidate("  no braces  "))
}

func TestFixLineByLine(t *testing.T) {
	in := "{\n  \"a\": [\n    1,\n    2,\n  ],\n  \"b\": 3,\n\n}"
	want := "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": 3\n\n}"
	assert.Equal(t, want, FixLineByLine(in))
}

func TestDecodeQueries(t *testing.T) {
	assert.Equal(t, []string{"Rivertown food", "Old Tower tickets"},
		DecodeQueries(map[string]any{"keywords": []any{"Rivertown food", " ", "Old Tower tickets"}}))
	assert.Equal(t, []string{"only one"}, DecodeQueries(map[string]any{"queries": "only one"}))
	assert.Empty(t, DecodeQueries(map[string]any{}))
}

func TestDecodeExtraction(t *testing.T) {
	rec := RecoverJSON(`{
		"places": ["Old Tower", {"name": "River Park", "ticket": 20, "need_booking": "yes", "rating": 4.5}, {"ticket": "free"}],
		"routes": [{"source": "guide", "days": "2天", "daily_plan": [{"day": 1, "places": ["Old Tower"]}]}],
		"transportation": {"arrival": "train", "local": "metro"},
		"accommodation": {"recommended_areas": [{"name": "Old Town", "reasons": ["quiet"]}]},
		"food": {"restaurants": ["Harbor Noodle House", {"name": ""}]},
		"avoid": ["rush hour", {"item": "tourist menus", "reason": "overpriced"}],
		"tips": "carry cash"
	}`, nil)
	require.True(t, rec.Recovered)

	got := DecodeExtraction(rec.Value)
	require.Len(t, got.Places, 2)
	assert.Equal(t, "Old Tower", got.Places[0].Name)
	assert.Equal(t, "20", got.Places[1].Ticket)
	assert.True(t, got.Places[1].NeedBooking)
	assert.Equal(t, map[string]any{"rating": 4.5}, got.Places[1].Extra)

	require.Len(t, got.Routes, 1)
	assert.Equal(t, 2, got.Routes[0].Days)
	assert.Equal(t, []string{"Old Tower"}, got.Routes[0].DailyPlan[0].Places)

	assert.Equal(t, "train", got.Transportation.Arrival)
	assert.Equal(t, []string{"metro"}, got.Transportation.Local)
	assert.Equal(t, "Old Town", got.Accommodation.RecommendedAreas[0].Area)
	assert.Len(t, got.Food.Restaurants, 1)
	assert.Len(t, got.Avoid, 2)
	assert.Equal(t, "overpriced", got.Avoid[1].Reason)
	assert.Equal(t, []string{"carry cash"}, got.Tips)

	assert.Empty(t, DecodeExtraction(nil).Places)
}

func TestDecodePlan(t *testing.T) {
	rec := RecoverJSON(`{
		"overview": "Two days by the river",
		"days": [
			{"theme": "Old town", "schedule": [{"time": "09:00", "place": "Old Tower", "tips": ["go early", "bring water"]}],
			 "meals": {"lunch": "Harbor Noodle House", "dinner": {"name": "Lantern Dumplings", "location": "Market Street"}}},
			{"day": "Day 2", "theme": "Parks"}
		],
		"tips": {"transportation": ["metro", "bike"], "avoid": ["rush hour"]}
	}`, nil)
	require.True(t, rec.Recovered)

	plan, ok := DecodePlan(rec.Value)
	require.True(t, ok)
	require.Len(t, plan.Days, 2)
	assert.Equal(t, 1, plan.Days[0].Day)
	assert.Equal(t, 2, plan.Days[1].Day)
	assert.Equal(t, "Old Tower", plan.Days[0].Schedule[0].POI)
	assert.Equal(t, "go early; bring water", plan.Days[0].Schedule[0].Tips)
	assert.Equal(t, "Harbor Noodle House", plan.Days[0].Meals["lunch"].Recommend)
	assert.Equal(t, "Market Street", plan.Days[0].Meals["dinner"].Location)
	assert.Equal(t, "metro; bike", plan.Tips.Transport)
	assert.Equal(t, []string{"rush hour"}, plan.Tips.Avoid)

	_, ok = DecodePlan(map[string]any{"overview": "no days"})
	assert.False(t, ok)
}
