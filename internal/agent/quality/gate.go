// Package quality decides whether the accumulated facts are enough to plan.
package quality

import (
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

// Thresholds used by Decide.
const (
	MinPlaces    = 3
	MinFoodItems = 2
	MinAreas     = 1
)

// Decision is the gate outcome. Missing is set only for DecisionNeedMore.
type Decision struct {
	Action  string   `json:"action"`
	Missing []string `json:"missing,omitempty"`
}

// NeedMore reports whether another search round was requested.
func (d Decision) NeedMore() bool { return d.Action == model.DecisionNeedMore }

// Decide is a pure, LLM-free check run after every extraction round.
func Decide(facts *model.ExtractedInfo, round, maxRounds int) Decision {
	if round >= maxRounds {
		return Decision{Action: model.DecisionProceed}
	}
	if facts == nil {
		facts = &model.ExtractedInfo{}
	}

	var missing []string
	if !hasRoute(facts) && len(facts.Places) < MinPlaces {
		missing = append(missing, model.InfoPlaces)
	}
	if facts.FoodCount() < MinFoodItems {
		missing = append(missing, model.InfoFood)
	}
	if namedAreas(facts) < MinAreas {
		missing = append(missing, model.InfoAccommodation)
	}
	if round >= 2 && strings.TrimSpace(facts.Transportation.Arrival) == "" {
		missing = append(missing, model.InfoTransportation)
	}

	logx.Debug().
		Str("component", "quality_gate").
		Int("round", round).
		Int("avoid_items", len(facts.Avoid)).
		Strs("missing", missing).
		Msg("quality gate evaluated")

	if len(missing) > 0 {
		return Decision{Action: model.DecisionNeedMore, Missing: missing}
	}
	return Decision{Action: model.DecisionProceed}
}

func hasRoute(facts *model.ExtractedInfo) bool {
	for _, r := range facts.Routes {
		if len(r.DailyPlan) > 0 {
			return true
		}
	}
	return false
}

func namedAreas(facts *model.ExtractedInfo) int {
	n := 0
	for _, a := range facts.Accommodation.RecommendedAreas {
		if strings.TrimSpace(a.Area) != "" {
			n++
		}
	}
	return n
}
