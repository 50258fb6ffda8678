package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// UserProfile is the immutable input of one planning run.
type UserProfile struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Days        int      `json:"days"`
	DateRange   string   `json:"date_range,omitempty"`
	GroupType   string   `json:"group_type"`
	Preferences []string `json:"preferences"`
	Budget      string   `json:"budget"`
}

// Category is a topical tag detected on a note.
type Category string

const (
	CategoryRoute         Category = "route"
	CategoryAttraction    Category = "attraction"
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryAccommodation Category = "accommodation"
	CategoryAvoid         Category = "avoid"
	CategoryUnknown       Category = "unknown"
)

// Categories lists the known categories in detection order.
var Categories = []Category{
	CategoryRoute,
	CategoryAttraction,
	CategoryFood,
	CategoryTransport,
	CategoryAccommodation,
	CategoryAvoid,
}

// Missing-information tags emitted by the quality gate and consumed by the query generator.
const (
	InfoPlaces         = "places"
	InfoFood           = "food"
	InfoAccommodation  = "accommodation"
	InfoTransportation = "transportation"
	InfoRoute          = "route"
	InfoAvoid          = "avoid"
	InfoTips           = "tips"
)

// Likes is a social-proof counter. It decodes from numbers and from strings such as
// "1,204", "3.2k" or "1.5w"; anything unparseable decodes to zero.
type Likes int

func (l *Likes) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*l = 0
		return nil
	}
	*l = Likes(ParseLikes(v))
	return nil
}

// ParseLikes converts an int, float or suffixed numeric string into a count.
func ParseLikes(v any) int {
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(x)
	case Likes:
		return int(x)
	case string:
		return parseLikesString(x)
	default:
		return 0
	}
}

func parseLikesString(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		multiplier = 1000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "w"), strings.HasSuffix(s, "W"):
		multiplier = 10000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "万"):
		multiplier = 10000
		s = strings.TrimSuffix(s, "万")
	}
	s = strings.NewReplacer(",", "", "，", "").Replace(strings.TrimSpace(s))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f * multiplier)
}

// SearchNote is one item returned by a search provider.
type SearchNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Likes   Likes  `json:"likes"`
	Source  string `json:"source,omitempty"`
	URL     string `json:"url,omitempty"`
}

// ScoredNote is the evaluator's view of a SearchNote.
type ScoredNote struct {
	Index       int        `json:"index"`
	Title       string     `json:"title"`
	Relevance   float64    `json:"relevance_score"`
	Density     float64    `json:"information_density"`
	Uniqueness  float64    `json:"uniqueness_score"`
	SocialBonus float64    `json:"social_bonus"`
	Penalty     float64    `json:"penalty"`
	FinalScore  float64    `json:"final_score"`
	Categories  []Category `json:"categories"`
	KeyInfo     []string   `json:"key_info"`
}

// HasCategory reports whether c was detected on the note.
func (s ScoredNote) HasCategory(c Category) bool {
	for _, got := range s.Categories {
		if got == c {
			return true
		}
	}
	return false
}

// CompressedNote is a kept note ready to be embedded in an extraction prompt.
type CompressedNote struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Score      float64    `json:"score"`
	KeyInfo    []string   `json:"key_info"`
	Categories []Category `json:"categories"`
	Likes      int        `json:"likes"`
}
