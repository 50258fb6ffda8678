package evaluator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	timeRe = regexp.MustCompile(`\d{1,2}[:：]\d{2}|\b\d{1,2}\s?(?:am|pm)\b|\d{1,2}点|上午|下午|早上|晚上`)

	priceRe = regexp.MustCompile(`[$¥￥€£]\s?\d+(?:\.\d+)?|\d+(?:\.\d+)?\s?(?:元|块|yuan|usd|eur|dollars?)\b|人均\s?\d+|\d+\s?per person`)

	openHoursRe = regexp.MustCompile(`(?:open(?:ing)?(?: hours)?|hours)\s*[:：]?\s*\d{1,2}(?:[:：]\d{2})?\s*(?:am|pm)?\s*(?:-|–|~|～|to|至|到)\s*\d{1,2}(?:[:：]\d{2})?\s*(?:am|pm)?` +
		`|\d{1,2}[:：]\d{2}\s*(?:-|–|~|～|至|到)\s*\d{1,2}[:：]\d{2}` +
		`|开放时间[:：]?\s*[\d:：\-~～至到]+`)

	ticketRe = regexp.MustCompile(`(?:ticket|admission|entry|entrance)(?: fee| price)?\s*[:：]?\s*(?:free|[$¥￥€£]?\s?\d+)` +
		`|free (?:entry|admission)|门票[:：]?\s*\d+|票价[:：]?\s*\d+|免门票|免费`)

	transitRe = regexp.MustCompile(`(?:metro|subway|bus|tram)\s?(?:line\s?)?(?:no\.?\s?)?\d+|line\s?\d+|\d+\s?min(?:ute)?s? walk` +
		`|地铁\d+号线|公交\d+路|步行\d+分钟|打车\d+[分元]|高铁站|机场`)

	quotedRe = regexp.MustCompile(`["“「【《]([^"”」】》\n]{2,30})["”」】》]`)

	shopRe = regexp.MustCompile(`\p{Han}{2,8}(?:店|馆|楼|坊|记|居|斋)` +
		`|[a-z][a-z'&]+(?:\s[a-z'&]+){0,3}\s(?:cafe|café|bistro|restaurant|bakery|diner|kitchen|noodle house|tea house)`)

	avoidRe = regexp.MustCompile(`(?:avoid|don't|do not|never|beware of|be careful)\s[^.!?\n]{3,40}|(?:不要|避免|注意)[^。！？\n]{2,15}|别[^。！？\n]{2,10}`)
)

// extractor turns lower-cased note text into at most one key-info entry.
type extractor func(e *Evaluator, text string) (string, bool)

var extractors = []extractor{
	listExtractor("time", timeRe, 3),
	listExtractor("price", priceRe, 3),
	listExtractor("open", openHoursRe, 2),
	listExtractor("ticket", ticketRe, 2),
	listExtractor("transit", transitRe, 3),
	extractPlaces,
	listExtractor("shops", shopRe, 3),
	extractAvoid,
}

func listExtractor(label string, re *regexp.Regexp, limit int) extractor {
	return func(_ *Evaluator, text string) (string, bool) {
		matches := uniqueStrings(re.FindAllString(text, -1))
		if len(matches) == 0 {
			return "", false
		}
		if len(matches) > limit {
			matches = matches[:limit]
		}
		return label + ": " + strings.Join(matches, ", "), true
	}
}

// extractPlaces reports quoted names not yet seen in this run and remembers them.
func extractPlaces(e *Evaluator, text string) (string, bool) {
	var fresh []string
	for _, m := range quotedRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		if _, seen := e.seenPlaces[name]; seen {
			continue
		}
		e.seenPlaces[name] = struct{}{}
		fresh = append(fresh, name)
	}
	if len(fresh) == 0 {
		return "", false
	}
	if len(fresh) > 5 {
		fresh = fresh[:5]
	}
	return "places: " + strings.Join(fresh, ", "), true
}

func extractAvoid(_ *Evaluator, text string) (string, bool) {
	m := avoidRe.FindString(text)
	if m == "" {
		return "", false
	}
	return "avoid: " + truncateRunes(strings.TrimSpace(m), 40), true
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
