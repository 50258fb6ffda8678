package planner

import (
	"regexp"
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

// DefaultDuration is used for schedule items that come without one.
const DefaultDuration = "1 hour"

var arrowSplit = regexp.MustCompile(`\s*(?:→|->|—>|=>|➡|➔)\s*`)

// Leading verbs that do not belong in a place name. Longer phrases come first.
var poiVerbPrefixes = []string{
	"check in at ", "check-in at ", "return to ", "go back to ", "back to ", "going to ", "go to ",
	"head to ", "heading to ", "arrive at ", "arrive in ", "depart from ", "walk to ", "stroll along ",
	"stroll through ", "stroll ", "visiting ", "visit ", "tour of ", "tour ", "explore ",
}

var poiCJKPrefixes = []string{"前往", "抵达", "到达", "游览", "参观", "夜游", "打卡", "启程返回", "返回", "逛"}

var poiCJKSuffixes = []string{"夜游", "打卡", "游览", "参观"}

// CleanPOI reduces a schedule stop to a bare place name. It returns the cleaned name and
// the descriptive text that was removed, which callers move into the activity field.
func CleanPOI(raw string) (poi, removed string) {
	poi = strings.TrimSpace(raw)
	if poi == "" {
		return "", ""
	}

	var rest []string
	if parts := arrowSplit.Split(poi, -1); len(parts) > 1 {
		poi = strings.TrimSpace(parts[0])
		for _, p := range parts[1:] {
			if p = strings.TrimSpace(p); p != "" {
				rest = append(rest, p)
			}
		}
	}

	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(poi)
		for _, p := range poiVerbPrefixes {
			if strings.HasPrefix(lower, p) && len(poi) > len(p) {
				poi = strings.TrimSpace(poi[len(p):])
				changed = true
				break
			}
		}
		for _, p := range poiCJKPrefixes {
			if strings.HasPrefix(poi, p) && len(poi) > len(p) {
				poi = strings.TrimSpace(strings.TrimPrefix(poi, p))
				changed = true
				break
			}
		}
	}
	for _, s := range poiCJKSuffixes {
		if strings.HasSuffix(poi, s) && len(poi) > len(s) {
			poi = strings.TrimSpace(strings.TrimSuffix(poi, s))
			break
		}
	}

	first := strings.TrimSpace(raw)
	if len(rest) > 0 {
		first = strings.TrimSpace(arrowSplit.Split(first, 2)[0])
	}
	if first != poi {
		removed = first
	}
	if len(rest) > 0 {
		tail := "then " + strings.Join(rest, " → ")
		if removed == "" {
			removed = tail
		} else {
			removed += ", " + tail
		}
	}
	return poi, removed
}

// Normalize enforces the itinerary field rules on every schedule item and fits the plan
// to the requested number of days.
func Normalize(plan *model.TravelPlanResult, days int) {
	if plan == nil {
		return
	}
	plan.Overview = strings.TrimSpace(plan.Overview)

	for d := range plan.Days {
		day := &plan.Days[d]
		if day.Day <= 0 {
			day.Day = d + 1
		}
		if day.Schedule == nil {
			day.Schedule = []model.ScheduleItem{}
		}
		for i := range day.Schedule {
			normalizeItem(&day.Schedule[i])
		}
	}

	if days <= 0 {
		return
	}
	if len(plan.Days) > days {
		plan.Days = plan.Days[:days]
	}
	for n := len(plan.Days) + 1; n <= days; n++ {
		plan.Days = append(plan.Days, emptyDay(n))
	}
}

func normalizeItem(item *model.ScheduleItem) {
	poi, removed := CleanPOI(item.POI)
	item.POI = poi
	if removed != "" {
		switch activity := strings.TrimSpace(item.Activity); {
		case activity == "":
			item.Activity = removed
		case !strings.Contains(activity, removed):
			item.Activity = removed + "; " + activity
		}
	}
	if strings.TrimSpace(item.Duration) == "" {
		item.Duration = DefaultDuration
	}
	item.Tips = strings.TrimSpace(item.Tips)
}

func emptyDay(n int) model.DayPlan {
	return model.DayPlan{Day: n, Schedule: []model.ScheduleItem{}}
}
