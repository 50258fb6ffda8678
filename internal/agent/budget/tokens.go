package budget

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
)

// EstimateTokens approximates the token count of text when a provider does not report
// usage: 1.5 per CJK rune, 0.3 per other rune.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	cjk, other := 0, 0
	for _, r := range text {
		if isCJK(r) {
			cjk++
		} else {
			other++
		}
	}
	return int(math.Ceil(float64(cjk)*1.5 + float64(other)*0.3))
}

// CountMessages estimates a chat request: content plus 4 per message plus 2 for priming.
func CountMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		if m == nil {
			continue
		}
		total += EstimateTokens(m.Content) + 4
	}
	return total + 2
}

// TruncateToBudget cuts text so that its estimate fits maxTokens. The cut moves back to
// the last sentence end when that keeps at least 70% of the allowed runes.
func TruncateToBudget(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if EstimateTokens(text) <= maxTokens {
		return text
	}

	runes := []rune(text)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if EstimateTokens(string(runes[:mid])) <= maxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	cut := string(runes[:lo])

	minKeep := int(float64(lo) * 0.7)
	last := -1
	for _, sep := range []string{"。", "！", "？", ". ", "! ", "? ", "\n"} {
		if i := strings.LastIndex(cut, sep); i >= 0 {
			end := i + len(sep)
			if end > last {
				last = end
			}
		}
	}
	if last > 0 && utf8.RuneCountInString(cut[:last]) >= minKeep {
		return strings.TrimRight(cut[:last], " ")
	}
	return cut
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r) ||
		(r >= 0x3000 && r <= 0x303f) ||
		(r >= 0xff00 && r <= 0xffef)
}
