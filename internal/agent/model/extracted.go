package model

import "strings"

// ExtractedInfo is the accumulator carried across rounds. Records keep an Extra map for
// fields the extraction model returned that have no typed home.
type ExtractedInfo struct {
	Routes         []Route        `json:"routes"`
	Places         []Place        `json:"places"`
	Transportation Transportation `json:"transportation"`
	Accommodation  Accommodation  `json:"accommodation"`
	Food           Food           `json:"food"`
	Avoid          []AvoidItem    `json:"avoid"`
	Tips           []string       `json:"tips"`
}

type Route struct {
	Source      string         `json:"source"`
	Days        int            `json:"days"`
	Description string         `json:"description,omitempty"`
	DailyPlan   []RouteDay     `json:"daily_plan"`
	Extra       map[string]any `json:"extra,omitempty"`
}

type RouteDay struct {
	Day    int      `json:"day"`
	Theme  string   `json:"theme,omitempty"`
	Places []string `json:"places"`
}

// RouteKey identifies a route across extractions.
type RouteKey struct {
	Source string
	Days   int
}

func (r Route) Key() RouteKey {
	return RouteKey{Source: strings.TrimSpace(r.Source), Days: r.Days}
}

type Place struct {
	Name        string         `json:"name"`
	OpenTime    string         `json:"open_time,omitempty"`
	ClosedDay   string         `json:"closed_day,omitempty"`
	Ticket      string         `json:"ticket,omitempty"`
	Duration    string         `json:"duration,omitempty"`
	Tips        string         `json:"tips,omitempty"`
	NeedBooking bool           `json:"need_booking,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

type Transportation struct {
	Arrival string   `json:"arrival"`
	Local   []string `json:"local"`
}

type Accommodation struct {
	RecommendedAreas []Area   `json:"recommended_areas"`
	Tips             []string `json:"tips"`
}

type Area struct {
	Area       string   `json:"area"`
	Reasons    []string `json:"reasons,omitempty"`
	Nearby     []string `json:"nearby,omitempty"`
	Transport  string   `json:"transport,omitempty"`
	PriceRange string   `json:"price_range,omitempty"`
}

type Food struct {
	Specialties []FoodItem `json:"specialties"`
	Restaurants []FoodItem `json:"restaurants"`
	Streets     []FoodItem `json:"streets"`
}

// FoodItem covers specialties, restaurants and food streets. A bare string from the
// model becomes a FoodItem with only Name set.
type FoodItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	Location    string `json:"location,omitempty"`
	Features    string `json:"features,omitempty"`
}

type AvoidItem struct {
	Item   string `json:"item"`
	Reason string `json:"reason,omitempty"`
}

// IsEmpty reports whether nothing has been accumulated yet.
func (e *ExtractedInfo) IsEmpty() bool {
	if e == nil {
		return true
	}
	return len(e.Routes) == 0 &&
		len(e.Places) == 0 &&
		strings.TrimSpace(e.Transportation.Arrival) == "" &&
		len(e.Transportation.Local) == 0 &&
		len(e.Accommodation.RecommendedAreas) == 0 &&
		len(e.Accommodation.Tips) == 0 &&
		e.FoodCount() == 0 &&
		len(e.Avoid) == 0 &&
		len(e.Tips) == 0
}

// FoodCount is the number of specialties, restaurants and streets together.
func (e *ExtractedInfo) FoodCount() int {
	if e == nil {
		return 0
	}
	return len(e.Food.Specialties) + len(e.Food.Restaurants) + len(e.Food.Streets)
}

// PlaceNames returns the accumulated place names in insertion order.
func (e *ExtractedInfo) PlaceNames() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Places))
	for _, p := range e.Places {
		names = append(names, p.Name)
	}
	return names
}

// RouteKeys returns the keys of the accumulated routes in insertion order.
func (e *ExtractedInfo) RouteKeys() []RouteKey {
	if e == nil {
		return nil
	}
	keys := make([]RouteKey, 0, len(e.Routes))
	for _, r := range e.Routes {
		keys = append(keys, r.Key())
	}
	return keys
}

// AvoidItems returns the accumulated avoid-list texts in insertion order.
func (e *ExtractedInfo) AvoidItems() []string {
	if e == nil {
		return nil
	}
	items := make([]string, 0, len(e.Avoid))
	for _, a := range e.Avoid {
		items = append(items, a.Item)
	}
	return items
}

// FindPlace returns the place with the given name, or nil.
func (e *ExtractedInfo) FindPlace(name string) *Place {
	if e == nil {
		return nil
	}
	for i := range e.Places {
		if e.Places[i].Name == name {
			return &e.Places[i]
		}
	}
	return nil
}
