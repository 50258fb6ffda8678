package query

import (
	"fmt"
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

// templatesByInfo holds two phrasings per missing-information tag. %[1]s is the
// destination and %[2]d the day count.
var templatesByInfo = map[string][2]string{
	model.InfoRoute:          {"%[1]s %[2]d-day itinerary", "%[1]s travel route plan"},
	model.InfoFood:           {"%[1]s must-eat local food", "%[1]s best food street"},
	model.InfoAccommodation:  {"%[1]s where to stay best area", "%[1]s hotel area recommendations"},
	model.InfoPlaces:         {"%[1]s must-see attractions", "%[1]s hidden gems locals love"},
	model.InfoTransportation: {"how to get to %[1]s and get around", "%[1]s metro and bus guide"},
	model.InfoAvoid:          {"%[1]s tourist traps to avoid", "%[1]s travel mistakes to avoid"},
	model.InfoTips:           {"%[1]s practical travel tips", "%[1]s things to know before visiting"},
}

// firstRoundSlots are the topics every run opens with.
var firstRoundSlots = []string{model.InfoRoute, model.InfoFood, model.InfoAccommodation, model.InfoPlaces}

// defaultMissing is targeted in later rounds when the gate reported nothing specific.
var defaultMissing = []string{model.InfoAvoid, model.InfoTips}

type expansion struct {
	keys    []string
	phrases []string
}

// preferenceExpansions map preference tags to extra query phrasings. The phrase is picked
// by round so a later round does not repeat the first one.
var preferenceExpansions = []expansion{
	{keys: []string{"photo", "camera", "拍照", "摄影", "出片"}, phrases: []string{"best photo spots", "scenic viewpoints"}},
	{keys: []string{"food", "美食", "吃货"}, phrases: []string{"local food ranking", "authentic local eats"}},
	{keys: []string{"family", "kid", "child", "亲子"}, phrases: []string{"kid-friendly activities", "family travel guide"}},
	{keys: []string{"couple", "romantic", "情侣"}, phrases: []string{"romantic spots for couples", "date night ideas"}},
	{keys: []string{"history", "culture", "museum", "历史", "文化"}, phrases: []string{"historic sites and museums", "cultural heritage walk"}},
	{keys: []string{"relax", "slow", "休闲", "度假"}, phrases: []string{"slow travel relaxing spots", "laid-back itinerary"}},
	{keys: []string{"intensive", "packed", "特种兵"}, phrases: []string{"one-day power itinerary", "see everything in a day"}},
	{keys: []string{"in-depth", "deep", "深度"}, phrases: []string{"off-the-beaten-path spots", "in-depth travel guide"}},
	{keys: []string{"nature", "hiking", "outdoor", "自然"}, phrases: []string{"nature and hiking trails", "scenic parks"}},
	{keys: []string{"shopping", "购物"}, phrases: []string{"shopping streets and markets", "local souvenirs"}},
	{keys: []string{"nightlife", "bar", "夜生活"}, phrases: []string{"nightlife and bars", "night markets"}},
}

// Travel types inferred from the profile.
const (
	TravelFamily    = "family"
	TravelCouple    = "couple"
	TravelFriends   = "friends"
	TravelSolo      = "solo"
	TravelElderly   = "elderly"
	TravelRelaxed   = "relaxed"
	TravelFreeStyle = "free-style"
)

var travelTypeHints = []struct {
	kind string
	keys []string
}{
	{TravelFamily, []string{"family", "kid", "child", "亲子", "带娃"}},
	{TravelCouple, []string{"couple", "romantic", "honeymoon", "情侣"}},
	{TravelFriends, []string{"friends", "group", "闺蜜", "朋友"}},
	{TravelSolo, []string{"solo", "alone", "一个人"}},
	{TravelElderly, []string{"elderly", "senior", "parents", "老人"}},
	{TravelRelaxed, []string{"relax", "slow", "休闲"}},
}

var groupQueries = map[string]string{
	TravelFamily:  "%s kid-friendly itinerary",
	TravelCouple:  "%s trip for couples",
	TravelFriends: "%s group trip with friends",
	TravelSolo:    "%s solo travel guide",
	TravelElderly: "%s senior-friendly travel",
	TravelRelaxed: "%s relaxed itinerary",
}

// InferTravelType classifies the trip from the group type, then the preferences.
func InferTravelType(p model.UserProfile) string {
	group := strings.ToLower(strings.TrimSpace(p.GroupType))
	for _, h := range travelTypeHints {
		if containsAny(group, h.keys) {
			return h.kind
		}
	}
	for _, pref := range p.Preferences {
		pref = strings.ToLower(pref)
		for _, h := range travelTypeHints {
			if containsAny(pref, h.keys) {
				return h.kind
			}
		}
	}
	return TravelFreeStyle
}

// preferenceQueries returns at most two extra queries from the profile.
func preferenceQueries(p model.UserProfile, round int) []string {
	var out []string
	for _, pref := range p.Preferences {
		pref = strings.ToLower(pref)
		for _, exp := range preferenceExpansions {
			if !containsAny(pref, exp.keys) {
				continue
			}
			idx := round - 1
			if idx >= len(exp.phrases) {
				idx = len(exp.phrases) - 1
			}
			if idx < 0 {
				idx = 0
			}
			out = append(out, p.Destination+" "+exp.phrases[idx])
			break
		}
	}
	if round == 1 {
		if tpl, ok := groupQueries[InferTravelType(p)]; ok {
			out = append(out, fmt.Sprintf(tpl, p.Destination))
		}
	}
	if len(out) > 2 {
		out = out[:2]
	}
	return out
}

// templateQueries renders the first phrasing of every tag, then the second.
func templateQueries(p model.UserProfile, tags []string) []string {
	var out []string
	for pass := 0; pass < 2; pass++ {
		for _, tag := range tags {
			tpl, ok := templatesByInfo[tag]
			if !ok {
				continue
			}
			out = append(out, fmt.Sprintf(tpl[pass], p.Destination, p.Days))
		}
	}
	return out
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
