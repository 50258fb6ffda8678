// Package evaluator scores search notes for a destination and keeps the useful ones.
package evaluator

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

// DefaultThreshold is the minimum final score a note needs to be kept.
const DefaultThreshold = 0.15

// Evaluator holds per-run memory of key facts and place names already seen.
// It is not safe for concurrent use.
type Evaluator struct {
	destination string
	days        int
	preferences []string
	targets     []model.Category
	threshold   float64

	seenInfo   map[string]struct{}
	seenPlaces map[string]struct{}
}

var _ model.NoteFilter = (*Evaluator)(nil)

func New(destination string, days int, preferences []string, targets ...model.Category) *Evaluator {
	return &Evaluator{
		destination: strings.ToLower(strings.TrimSpace(destination)),
		days:        days,
		preferences: preferences,
		targets:     targets,
		threshold:   DefaultThreshold,
		seenInfo:    map[string]struct{}{},
		seenPlaces:  map[string]struct{}{},
	}
}

// SetTargets replaces the categories that earn a scoring bonus.
func (e *Evaluator) SetTargets(targets ...model.Category) {
	e.targets = targets
}

// clone copies the evaluator including its seen sets.
func (e *Evaluator) clone() *Evaluator {
	c := *e
	c.seenInfo = make(map[string]struct{}, len(e.seenInfo))
	for k := range e.seenInfo {
		c.seenInfo[k] = struct{}{}
	}
	c.seenPlaces = make(map[string]struct{}, len(e.seenPlaces))
	for k := range e.seenPlaces {
		c.seenPlaces[k] = struct{}{}
	}
	return &c
}

// DetectCategories returns the categories whose keywords appear in text. A category
// matches on two strong keywords, or one strong plus two weak ones.
func DetectCategories(text string) []model.Category {
	text = strings.ToLower(text)
	var out []model.Category
	for _, c := range model.Categories {
		kw := categoryTable[c]
		strong := countContained(text, kw.strong)
		weak := countContained(text, kw.weak)
		if strong >= 2 || (strong >= 1 && weak >= 2) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return []model.Category{model.CategoryUnknown}
	}
	return out
}

func countContained(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// Evaluate scores notes and returns them ordered by final score, best first.
// Scoring a note records its key facts, so the same facts score lower next time.
func (e *Evaluator) Evaluate(notes []model.SearchNote) []model.ScoredNote {
	scored := make([]model.ScoredNote, 0, len(notes))
	for i, n := range notes {
		scored = append(scored, e.score(i, n))
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].FinalScore > scored[b].FinalScore
	})
	return scored
}

func (e *Evaluator) score(index int, note model.SearchNote) model.ScoredNote {
	text := strings.ToLower(note.Title + " " + note.Content)
	categories := DetectCategories(text)

	relevance := e.relevance(text, categories)
	keyInfo := e.keyInfo(text)
	density := math.Min(1, float64(len(keyInfo))/math.Max(float64(utf8.RuneCountInString(text))/150, 1))
	uniqueness := e.uniqueness(keyInfo)

	social := 0.0
	if note.Likes > 0 {
		social = math.Min(0.15, float64(note.Likes)/10000)
	}

	targetBonus := 0.0
	for _, t := range e.targets {
		if containsCategory(categories, t) {
			targetBonus += 0.1
		}
	}

	penalty := lowValuePenalty(text)
	final := (relevance*0.25 + density*0.35 + uniqueness*0.20 + social + targetBonus) * (1 - penalty)

	display := keyInfo
	if len(display) > 5 {
		display = display[:5]
	}
	return model.ScoredNote{
		Index:       index,
		Title:       note.Title,
		Relevance:   round3(relevance),
		Density:     round3(density),
		Uniqueness:  round3(uniqueness),
		SocialBonus: round3(social),
		Penalty:     round3(penalty),
		FinalScore:  round3(final),
		Categories:  categories,
		KeyInfo:     display,
	}
}

func (e *Evaluator) relevance(text string, categories []model.Category) float64 {
	score := 0.0
	if e.destination != "" && strings.Contains(text, e.destination) {
		score += 0.3
	}
	if e.days > 0 {
		for _, p := range []string{"%d days", "%d-day", "%d day", "%d天", "%d日", "%dd"} {
			if strings.Contains(text, fmt.Sprintf(p, e.days)) {
				score += 0.15
				break
			}
		}
	}
	prefs := 0
	for _, p := range e.preferences {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(text, p) {
			prefs++
		}
	}
	score += math.Min(0.15, float64(prefs)*0.05)

	weight := 0
	for kw, w := range highValueKeywords {
		if strings.Contains(text, kw) {
			weight += w
		}
	}
	score += math.Min(0.25, float64(weight)/25)

	for _, c := range categories {
		if kw, ok := categoryTable[c]; ok {
			score += kw.weight * 0.03
		}
	}
	return math.Min(1, score)
}

func (e *Evaluator) keyInfo(text string) []string {
	var out []string
	for _, ex := range extractors {
		if entry, ok := ex(e, text); ok {
			out = append(out, entry)
		}
	}
	return out
}

func (e *Evaluator) uniqueness(keyInfo []string) float64 {
	if len(keyInfo) == 0 {
		return 0.5
	}
	fresh := 0
	for _, k := range keyInfo {
		if _, ok := e.seenInfo[k]; !ok {
			fresh++
		}
	}
	for _, k := range keyInfo {
		e.seenInfo[k] = struct{}{}
	}
	return float64(fresh) / float64(len(keyInfo))
}

func lowValuePenalty(text string) float64 {
	n := 0
	for _, m := range lowValueMarkers {
		if strings.Contains(text, m) {
			n++
		}
	}
	if utf8.RuneCountInString(text) < 100 {
		n++
	}
	return math.Min(0.5, float64(n)*0.1)
}

// FilterAndCompress keeps at most maxNotes of the best notes above the threshold. When a
// required category is left uncovered, a lower-ranked note carrying it takes a free slot
// or replaces the lowest-ranked kept note that covers no required category. Kept notes
// are compressed to maxCharsPerNote runes.
func (e *Evaluator) FilterAndCompress(notes []model.SearchNote, maxNotes, maxCharsPerNote int, required []model.Category) []model.CompressedNote {
	if len(notes) == 0 || maxNotes <= 0 {
		return nil
	}
	scored := e.Evaluate(notes)

	selected := make(map[int]bool)
	var order []model.ScoredNote
	for _, s := range scored {
		if len(order) >= maxNotes {
			break
		}
		if s.FinalScore >= e.threshold {
			order = append(order, s)
			selected[s.Index] = true
		}
	}

	if len(required) > 0 {
		covered := coveredBy(order)
		for _, s := range scored {
			if selected[s.Index] || !fillsGap(s, required, covered) {
				continue
			}
			if len(order) < maxNotes {
				order = append(order, s)
			} else {
				j := lastReplaceable(order, required)
				if j < 0 {
					break
				}
				delete(selected, order[j].Index)
				order[j] = s
			}
			selected[s.Index] = true
			covered = coveredBy(order)
		}
	}

	out := make([]model.CompressedNote, 0, len(order))
	for _, s := range order {
		n := notes[s.Index]
		out = append(out, model.CompressedNote{
			Title:      n.Title,
			Content:    Compress(n.Content, maxCharsPerNote),
			Score:      s.FinalScore,
			KeyInfo:    s.KeyInfo,
			Categories: s.Categories,
			Likes:      int(n.Likes),
		})
	}

	logx.Debug().
		Str("component", "evaluator").
		Int("input", len(notes)).
		Int("kept", len(out)).
		Msg("notes filtered")
	return out
}

func coveredBy(order []model.ScoredNote) map[model.Category]bool {
	covered := make(map[model.Category]bool)
	for _, s := range order {
		for _, c := range s.Categories {
			covered[c] = true
		}
	}
	return covered
}

// lastReplaceable returns the lowest-ranked note in order that carries no required
// category, or -1.
func lastReplaceable(order []model.ScoredNote, required []model.Category) int {
	for j := len(order) - 1; j >= 0; j-- {
		hit := false
		for _, r := range required {
			if order[j].HasCategory(r) {
				hit = true
				break
			}
		}
		if !hit {
			return j
		}
	}
	return -1
}

func fillsGap(s model.ScoredNote, required []model.Category, covered map[model.Category]bool) bool {
	for _, r := range required {
		if !covered[r] && s.HasCategory(r) {
			return true
		}
	}
	return false
}

// CoverageReport scores notes on a copy of the evaluator, leaving its memory untouched.
func (e *Evaluator) CoverageReport(notes []model.SearchNote) model.Coverage {
	scored := e.clone().Evaluate(notes)
	report := model.Coverage{
		Total:  len(scored),
		Counts: make(map[model.Category]int, len(model.Categories)),
	}
	for _, c := range model.Categories {
		report.Counts[c] = 0
	}
	sum := 0.0
	for _, s := range scored {
		sum += s.FinalScore
		switch {
		case s.FinalScore >= 0.5:
			report.HighValue++
		case s.FinalScore < e.threshold:
			report.LowValue++
		}
		for _, c := range s.Categories {
			if c != model.CategoryUnknown {
				report.Counts[c]++
			}
		}
	}
	for _, c := range model.Categories {
		if report.Counts[c] == 0 {
			report.Missing = append(report.Missing, c)
		}
	}
	if len(scored) > 0 {
		report.AvgScore = round3(sum / float64(len(scored)))
	}
	report.TopNotes = scored
	if len(scored) > 5 {
		report.TopNotes = scored[:5]
	}
	return report
}

func containsCategory(list []model.Category, c model.Category) bool {
	for _, got := range list {
		if got == c {
			return true
		}
	}
	return false
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
