package model

// TravelPlanResult is the final itinerary.
type TravelPlanResult struct {
	Overview        string         `json:"overview"`
	Highlights      []string       `json:"highlights"`
	ReferenceRoutes []string       `json:"reference_routes,omitempty"`
	Days            []DayPlan      `json:"days"`
	Tips            TravelTips     `json:"tips"`
	Extra           map[string]any `json:"extra,omitempty"`
}

type DayPlan struct {
	Day      int             `json:"day"`
	Date     string          `json:"date"`
	Theme    string          `json:"theme"`
	Schedule []ScheduleItem  `json:"schedule"`
	Meals    map[string]Meal `json:"meals,omitempty"`
	Extra    map[string]any  `json:"extra,omitempty"`
}

// ScheduleItem is one stop. POI is always a bare location name; what happens there goes
// into Activity.
type ScheduleItem struct {
	Time      string         `json:"time"`
	POI       string         `json:"poi"`
	Activity  string         `json:"activity"`
	Duration  string         `json:"duration"`
	Ticket    string         `json:"ticket,omitempty"`
	Tips      string         `json:"tips"`
	RouteInfo string         `json:"route_info,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

type Meal struct {
	Recommend string `json:"recommend"`
	Location  string `json:"location,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type TravelTips struct {
	Transport     string         `json:"transport"`
	Food          string         `json:"food"`
	Accommodation string         `json:"accommodation"`
	Budget        string         `json:"budget"`
	Avoid         []string       `json:"avoid"`
	Replaceable   []string       `json:"replaceable"`
	Practical     []string       `json:"practical,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}
