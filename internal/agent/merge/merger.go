// Package merge folds one round of extracted facts into the run accumulator.
package merge

import (
	"maps"
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

// Merge folds in into acc and returns acc. A nil acc is allocated; a nil in is a no-op.
// Every join is keyed, so merging the same extraction twice changes nothing further.
func Merge(acc, in *model.ExtractedInfo) *model.ExtractedInfo {
	if acc == nil {
		acc = &model.ExtractedInfo{}
	}
	if in == nil {
		return acc
	}

	acc.Routes = mergeRoutes(acc.Routes, in.Routes)
	acc.Places = mergePlaces(acc.Places, in.Places)

	if a, b := strings.TrimSpace(acc.Transportation.Arrival), strings.TrimSpace(in.Transportation.Arrival); len([]rune(b)) > len([]rune(a)) {
		acc.Transportation.Arrival = b
	}
	acc.Transportation.Local = union(acc.Transportation.Local, in.Transportation.Local)

	acc.Accommodation.RecommendedAreas = mergeAreas(acc.Accommodation.RecommendedAreas, in.Accommodation.RecommendedAreas)
	acc.Accommodation.Tips = union(acc.Accommodation.Tips, in.Accommodation.Tips)

	acc.Food.Specialties = mergeFood(acc.Food.Specialties, in.Food.Specialties)
	acc.Food.Restaurants = mergeFood(acc.Food.Restaurants, in.Food.Restaurants)
	acc.Food.Streets = mergeFood(acc.Food.Streets, in.Food.Streets)

	acc.Avoid = mergeAvoid(acc.Avoid, in.Avoid)
	acc.Tips = union(acc.Tips, in.Tips)
	return acc
}

func mergeRoutes(acc, in []model.Route) []model.Route {
	seen := make(map[model.RouteKey]struct{}, len(acc))
	for _, r := range acc {
		seen[r.Key()] = struct{}{}
	}
	for _, r := range in {
		if r.Key().Source == "" && len(r.DailyPlan) == 0 {
			continue
		}
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		seen[r.Key()] = struct{}{}
		r.Source = strings.TrimSpace(r.Source)
		r.Extra = maps.Clone(r.Extra)
		acc = append(acc, r)
	}
	return acc
}

func mergePlaces(acc, in []model.Place) []model.Place {
	index := make(map[string]int, len(acc))
	for i, p := range acc {
		index[strings.TrimSpace(p.Name)] = i
	}
	for _, p := range in {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			p.Name = name
			p.Extra = maps.Clone(p.Extra)
			index[name] = len(acc)
			acc = append(acc, p)
			continue
		}
		cur := &acc[i]
		fill(&cur.Ticket, p.Ticket)
		fill(&cur.OpenTime, p.OpenTime)
		fill(&cur.ClosedDay, p.ClosedDay)
		fill(&cur.Duration, p.Duration)
		fill(&cur.Tips, p.Tips)
		if !cur.NeedBooking && p.NeedBooking {
			cur.NeedBooking = true
		}
		for k, v := range p.Extra {
			if _, exists := cur.Extra[k]; exists {
				continue
			}
			if cur.Extra == nil {
				cur.Extra = map[string]any{}
			}
			cur.Extra[k] = v
		}
	}
	return acc
}

func mergeAreas(acc, in []model.Area) []model.Area {
	index := make(map[string]int, len(acc))
	for i, a := range acc {
		index[strings.TrimSpace(a.Area)] = i
	}
	for _, a := range in {
		name := strings.TrimSpace(a.Area)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			a.Area = name
			a.Reasons = union(nil, a.Reasons)
			a.Nearby = union(nil, a.Nearby)
			index[name] = len(acc)
			acc = append(acc, a)
			continue
		}
		cur := &acc[i]
		cur.Reasons = union(cur.Reasons, a.Reasons)
		cur.Nearby = union(cur.Nearby, a.Nearby)
		fill(&cur.Transport, a.Transport)
		fill(&cur.PriceRange, a.PriceRange)
	}
	return acc
}

func mergeFood(acc, in []model.FoodItem) []model.FoodItem {
	seen := make(map[string]struct{}, len(acc))
	for _, f := range acc {
		seen[strings.TrimSpace(f.Name)] = struct{}{}
	}
	for _, f := range in {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		f.Name = name
		acc = append(acc, f)
	}
	return acc
}

func mergeAvoid(acc, in []model.AvoidItem) []model.AvoidItem {
	seen := make(map[string]struct{}, len(acc))
	for _, a := range acc {
		seen[strings.TrimSpace(a.Item)] = struct{}{}
	}
	for _, a := range in {
		item := strings.TrimSpace(a.Item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		a.Item = item
		acc = append(acc, a)
	}
	return acc
}

// fill sets *dst to src only when *dst is blank.
func fill(dst *string, src string) {
	if strings.TrimSpace(*dst) == "" && strings.TrimSpace(src) != "" {
		*dst = strings.TrimSpace(src)
	}
}

// union appends the items of in that acc does not already hold, keeping first-seen order.
func union(acc, in []string) []string {
	seen := make(map[string]struct{}, len(acc)+len(in))
	out := acc[:0:0]
	for _, s := range acc {
		s = strings.TrimSpace(s)
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
