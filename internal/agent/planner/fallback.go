package planner

import (
	"fmt"
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

// timeSlots are the generic start times used when composing without the model.
var timeSlots = []string{"09:00", "11:00", "14:00", "16:00", "19:00"}

func slot(i int) string {
	if i < len(timeSlots) {
		return timeSlots[i]
	}
	return timeSlots[len(timeSlots)-1]
}

// Fallback composes a plan from the accumulated facts alone. A route matching the
// requested day count wins over other routes; without routes, standalone places are
// spread evenly across the days. With no facts the result is one empty day per
// requested day.
func Fallback(profile model.UserProfile, facts *model.ExtractedInfo) model.TravelPlanResult {
	if facts == nil {
		facts = &model.ExtractedInfo{}
	}
	days := profile.Days
	if days <= 0 {
		days = 1
	}

	plan := model.TravelPlanResult{
		Overview:   fmt.Sprintf("%d-day trip to %s", days, profile.Destination),
		Highlights: firstN(facts.PlaceNames(), 3),
		Tips:       tipsFromFacts(facts),
	}
	if plan.Highlights == nil {
		plan.Highlights = []string{}
	}
	for _, r := range facts.Routes {
		if r.Description != "" {
			plan.ReferenceRoutes = append(plan.ReferenceRoutes, r.Description)
		}
	}

	switch route, ok := pickRoute(facts.Routes, days); {
	case ok:
		plan.Days = daysFromRoute(route, facts)
	case len(facts.Places) > 0:
		plan.Days = daysFromPlaces(facts.Places, days)
	default:
		for n := 1; n <= days; n++ {
			plan.Days = append(plan.Days, emptyDay(n))
		}
	}
	return plan
}

func pickRoute(routes []model.Route, days int) (model.Route, bool) {
	var first *model.Route
	for i := range routes {
		r := routes[i]
		if len(r.DailyPlan) == 0 {
			continue
		}
		if r.Days == days || len(r.DailyPlan) == days {
			return r, true
		}
		if first == nil {
			first = &routes[i]
		}
	}
	if first != nil {
		return *first, true
	}
	return model.Route{}, false
}

func daysFromRoute(route model.Route, facts *model.ExtractedInfo) []model.DayPlan {
	out := make([]model.DayPlan, 0, len(route.DailyPlan))
	for i, rd := range route.DailyPlan {
		day := model.DayPlan{Day: i + 1, Theme: rd.Theme, Schedule: []model.ScheduleItem{}}
		for j, name := range rd.Places {
			day.Schedule = append(day.Schedule, itemFor(name, j, facts))
		}
		out = append(out, day)
	}
	return out
}

func daysFromPlaces(places []model.Place, days int) []model.DayPlan {
	perDay := (len(places) + days - 1) / days
	out := make([]model.DayPlan, 0, days)
	for n := 0; n < days; n++ {
		day := model.DayPlan{Day: n + 1, Schedule: []model.ScheduleItem{}}
		start := n * perDay
		for j := 0; j < perDay && start+j < len(places); j++ {
			day.Schedule = append(day.Schedule, placeItem(places[start+j], j))
		}
		out = append(out, day)
	}
	return out
}

func itemFor(name string, i int, facts *model.ExtractedInfo) model.ScheduleItem {
	if p := facts.FindPlace(strings.TrimSpace(name)); p != nil {
		return placeItem(*p, i)
	}
	return model.ScheduleItem{Time: slot(i), POI: name, Activity: "Sightseeing", Duration: DefaultDuration}
}

func placeItem(p model.Place, i int) model.ScheduleItem {
	item := model.ScheduleItem{
		Time:     slot(i),
		POI:      p.Name,
		Activity: "Sightseeing",
		Duration: p.Duration,
		Ticket:   p.Ticket,
		Tips:     p.Tips,
	}
	if p.OpenTime != "" {
		item.Tips = strings.Trim(strings.Join([]string{item.Tips, "open " + p.OpenTime}, "; "), "; ")
	}
	return item
}

func tipsFromFacts(facts *model.ExtractedInfo) model.TravelTips {
	transport := facts.Transportation.Arrival
	if len(facts.Transportation.Local) > 0 {
		transport = strings.Trim(transport+"; "+strings.Join(facts.Transportation.Local, "; "), "; ")
	}

	var food []string
	for _, group := range [][]model.FoodItem{facts.Food.Specialties, facts.Food.Restaurants, facts.Food.Streets} {
		for _, f := range group {
			food = append(food, f.Name)
		}
	}
	var areas []string
	for _, a := range facts.Accommodation.RecommendedAreas {
		areas = append(areas, a.Area)
	}

	avoid := facts.AvoidItems()
	if avoid == nil {
		avoid = []string{}
	}
	return model.TravelTips{
		Transport:     transport,
		Food:          strings.Join(firstN(food, 8), "; "),
		Accommodation: strings.Join(areas, "; "),
		Avoid:         avoid,
		Replaceable:   []string{},
		Practical:     facts.Tips,
	}
}

func firstN(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}
