package parsers

import (
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

// TipsSeparator joins list-valued tips into the scalar the itinerary schema requires.
const TipsSeparator = "; "

// DecodePlan maps a recovered planning object onto TravelPlanResult. ok is false when
// the object has no usable days.
func DecodePlan(m map[string]any) (plan model.TravelPlanResult, ok bool) {
	if m == nil {
		return plan, false
	}

	plan.Overview = str(m["overview"])
	plan.Highlights = strList(m["highlights"])
	plan.ReferenceRoutes = strList(m["reference_routes"])
	plan.Extra = extras(m, "overview", "highlights", "reference_routes", "days", "tips")

	for i, d := range objList(m["days"]) {
		day := model.DayPlan{
			Day:   intOf(d["day"]),
			Date:  str(d["date"]),
			Theme: str(d["theme"]),
			Extra: extras(d, "day", "date", "theme", "schedule", "meals"),
		}
		if day.Day <= 0 {
			day.Day = i + 1
		}
		for _, s := range objList(d["schedule"]) {
			day.Schedule = append(day.Schedule, model.ScheduleItem{
				Time:      str(s["time"]),
				POI:       firstNonEmpty(s, "poi", "place", "name"),
				Activity:  str(s["activity"]),
				Duration:  str(s["duration"]),
				Ticket:    str(s["ticket"]),
				Tips:      joinList(s["tips"]),
				RouteInfo: str(s["route_info"]),
				Extra:     extras(s, "time", "poi", "place", "name", "activity", "duration", "ticket", "tips", "route_info"),
			})
		}
		if meals := obj(d["meals"]); meals != nil {
			day.Meals = map[string]model.Meal{}
			for slot, raw := range meals {
				switch x := raw.(type) {
				case map[string]any:
					day.Meals[slot] = model.Meal{
						Recommend: firstNonEmpty(x, "recommend", "name"),
						Location:  str(x["location"]),
						Reason:    str(x["reason"]),
					}
				default:
					if s := str(x); s != "" {
						day.Meals[slot] = model.Meal{Recommend: s}
					}
				}
			}
		}
		plan.Days = append(plan.Days, day)
	}

	if t := obj(m["tips"]); t != nil {
		plan.Tips = model.TravelTips{
			Transport:     joinList(firstValue(t, "transport", "transportation")),
			Food:          joinList(t["food"]),
			Accommodation: joinList(t["accommodation"]),
			Budget:        joinList(t["budget"]),
			Avoid:         strList(t["avoid"]),
			Replaceable:   strList(t["replaceable"]),
			Practical:     strList(t["practical"]),
			Extra:         extras(t, "transport", "transportation", "food", "accommodation", "budget", "avoid", "replaceable", "practical"),
		}
	}

	return plan, len(plan.Days) > 0
}

func joinList(v any) string {
	if arr, ok := v.([]any); ok {
		return strings.Join(strList(arr), TipsSeparator)
	}
	return str(v)
}

func firstValue(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
