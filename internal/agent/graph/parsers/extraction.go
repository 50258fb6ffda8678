package parsers

import (
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

// DecodeExtraction maps a recovered extraction object onto ExtractedInfo. Missing or
// mistyped fields are skipped; a nil map yields an empty result.
func DecodeExtraction(m map[string]any) model.ExtractedInfo {
	var out model.ExtractedInfo
	if m == nil {
		return out
	}

	for _, r := range objList(m["routes"]) {
		route := model.Route{
			Source:      str(r["source"]),
			Days:        intOf(r["days"]),
			Description: str(r["description"]),
			Extra:       extras(r, "source", "days", "description", "daily_plan"),
		}
		for _, d := range objList(r["daily_plan"]) {
			route.DailyPlan = append(route.DailyPlan, model.RouteDay{
				Day:    intOf(d["day"]),
				Theme:  str(d["theme"]),
				Places: strList(d["places"]),
			})
		}
		out.Routes = append(out.Routes, route)
	}

	for _, raw := range placeRecords(m["places"]) {
		p := model.Place{
			Name:        str(raw["name"]),
			OpenTime:    str(raw["open_time"]),
			ClosedDay:   str(raw["closed_day"]),
			Ticket:      str(raw["ticket"]),
			Duration:    str(raw["duration"]),
			Tips:        str(raw["tips"]),
			NeedBooking: boolOf(raw["need_booking"]),
			Extra:       extras(raw, "name", "open_time", "closed_day", "ticket", "duration", "tips", "need_booking"),
		}
		if p.Name != "" {
			out.Places = append(out.Places, p)
		}
	}

	if t := obj(m["transportation"]); t != nil {
		out.Transportation.Arrival = str(t["arrival"])
		out.Transportation.Local = strList(t["local"])
	}

	if a := obj(m["accommodation"]); a != nil {
		for _, area := range objList(a["recommended_areas"]) {
			out.Accommodation.RecommendedAreas = append(out.Accommodation.RecommendedAreas, model.Area{
				Area:       firstNonEmpty(area, "area", "name"),
				Reasons:    strList(area["reasons"]),
				Nearby:     strList(area["nearby"]),
				Transport:  str(area["transport"]),
				PriceRange: str(area["price_range"]),
			})
		}
		out.Accommodation.Tips = strList(a["tips"])
	}

	if f := obj(m["food"]); f != nil {
		out.Food.Specialties = foodItems(f["specialties"])
		out.Food.Restaurants = foodItems(f["restaurants"])
		out.Food.Streets = foodItems(f["streets"])
	}

	if arr, ok := m["avoid"].([]any); ok {
		for _, it := range arr {
			switch x := it.(type) {
			case map[string]any:
				if item := str(x["item"]); item != "" {
					out.Avoid = append(out.Avoid, model.AvoidItem{Item: item, Reason: str(x["reason"])})
				}
			default:
				if item := str(x); item != "" {
					out.Avoid = append(out.Avoid, model.AvoidItem{Item: item})
				}
			}
		}
	}

	out.Tips = strList(m["tips"])
	return out
}

// placeRecords accepts objects or bare names.
func placeRecords(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, it := range arr {
		switch x := it.(type) {
		case map[string]any:
			out = append(out, x)
		case string:
			out = append(out, map[string]any{"name": x})
		}
	}
	return out
}

func foodItems(v any) []model.FoodItem {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []model.FoodItem
	for _, it := range arr {
		switch x := it.(type) {
		case map[string]any:
			item := model.FoodItem{
				Name:        str(x["name"]),
				Description: str(x["description"]),
				Type:        str(x["type"]),
				Specialty:   str(x["specialty"]),
				Location:    str(x["location"]),
				Features:    str(x["features"]),
			}
			if item.Name != "" {
				out = append(out, item)
			}
		default:
			if name := str(x); name != "" {
				out = append(out, model.FoodItem{Name: name})
			}
		}
	}
	return out
}
