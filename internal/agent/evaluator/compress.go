package evaluator

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	paraPriceRe   = regexp.MustCompile(`\d+\s?(?:元|块|yuan|usd|dollars?)|[$¥￥€£]\s?\d+`)
	paraTimeRe    = regexp.MustCompile(`\d{1,2}[:：]\d{2}`)
	paraTransitRe = regexp.MustCompile(`地铁|公交|步行|metro|subway|bus|walk`)
)

type paragraph struct {
	text   string
	runes  int
	weight int
}

// Compress shortens content to at most maxChars runes, keeping the paragraphs that
// carry the most practical information. Content already within the limit is returned as is.
func Compress(content string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(content) <= maxChars {
		return content
	}

	var paras []paragraph
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		n := utf8.RuneCountInString(line)
		if n < 5 {
			continue
		}
		paras = append(paras, paragraph{text: line, runes: n, weight: paragraphWeight(line)})
	}
	sort.SliceStable(paras, func(i, j int) bool {
		if paras[i].weight != paras[j].weight {
			return paras[i].weight > paras[j].weight
		}
		return paras[i].runes > paras[j].runes
	})

	var kept []string
	used := 0
	for _, p := range paras {
		if used+p.runes > maxChars {
			if remaining := maxChars - used; remaining > 50 {
				kept = append(kept, string([]rune(p.text)[:remaining-3])+"...")
			}
			break
		}
		kept = append(kept, p.text)
		used += p.runes + 1
	}
	if len(kept) == 0 {
		return string([]rune(content)[:maxChars])
	}
	return strings.Join(kept, "\n")
}

func paragraphWeight(p string) int {
	lower := strings.ToLower(p)
	w := 0
	for kw, kwWeight := range highValueKeywords {
		if strings.Contains(lower, kw) {
			w += kwWeight
		}
	}
	if paraPriceRe.MatchString(lower) {
		w += 2
	}
	if paraTimeRe.MatchString(lower) {
		w += 2
	}
	if paraTransitRe.MatchString(lower) {
		w++
	}
	return w
}
