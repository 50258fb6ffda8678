package parsers

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 256 * 1024 // 256KB
	contextRadius = 100        // chars shown around a parse error
)

// Recovery strategies, in the order they are tried.
const (
	StrategyDirect       = "direct"
	StrategyCleaned      = "cleaned"
	StrategyQuotes       = "single_quotes"
	StrategyLineByLine   = "line_by_line"
	StrategyDefault      = "default"
	StrategyPanicDefault = "panic_default"
)

var (
	fencedBlock  = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\\n?(.*?)```")
	lineTrailing = regexp.MustCompile(`,\s*$`)
)

// Recovery is the outcome of RecoverJSON.
type Recovery struct {
	Value      map[string]any
	Strategy   string
	Recovered  bool   // false when Value is the caller's default
	Diagnostic string // parse error offset and surrounding text when every attempt failed
}

// RecoverJSON extracts one JSON object from free-form model output, repairing common
// formatting mistakes. It never fails: when nothing parses, def (or an empty map) is
// returned and the diagnostic is logged.
func RecoverJSON(content string, def map[string]any) (rec Recovery) {
	if def == nil {
		def = map[string]any{}
	}
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "json_recovery").Msgf("panic recovered: %v", r)
			rec = Recovery{Value: def, Strategy: StrategyPanicDefault}
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "json_recovery").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	if strings.TrimSpace(content) == "" {
		return Recovery{Value: def, Strategy: StrategyDefault}
	}

	candidate := ExtractCandidate(content)

	if v, err := decodeObject(candidate); err == nil {
		return Recovery{Value: v, Strategy: StrategyDirect, Recovered: true}
	}

	cleaned := CleanJSON(candidate)
	if v, err := decodeObject(cleaned); err == nil {
		return Recovery{Value: v, Strategy: StrategyCleaned, Recovered: true}
	}

	if v, err := decodeObject(strings.ReplaceAll(cleaned, "'", `"`)); err == nil {
		return Recovery{Value: v, Strategy: StrategyQuotes, Recovered: true}
	}

	lined := FixLineByLine(candidate)
	v, err := decodeObject(lined)
	if err == nil {
		return Recovery{Value: v, Strategy: StrategyLineByLine, Recovered: true}
	}

	diag := describeError(lined, err)
	logx.Warn().
		Str("component", "json_recovery").
		Err(err).
		Str("context", diag).
		Msg("JSON recovery failed, using default")
	return Recovery{Value: def, Strategy: StrategyDefault, Diagnostic: diag}
}

// ExtractCandidate prefers a fenced code block and otherwise takes the text between the
// first '{' and the last '}'.
func ExtractCandidate(content string) string {
	content = strings.TrimSpace(content)
	if m := fencedBlock.FindStringSubmatch(content); m != nil {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			return inner
		}
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}

// CleanJSON strips comments outside string literals, trailing commas before a closing
// bracket and control characters.
func CleanJSON(s string) string {
	s = dropTrailingCommas(stripComments(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// FixLineByLine drops a trailing comma on any line whose next non-empty line starts with a
// closing bracket or brace.
func FixLineByLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		next := ""
		for j := i + 1; j < len(lines); j++ {
			if t := strings.TrimSpace(lines[j]); t != "" {
				next = t
				break
			}
		}
		if strings.HasPrefix(next, "]") || strings.HasPrefix(next, "}") {
			lines[i] = lineTrailing.ReplaceAllString(strings.TrimRight(lines[i], " \t\r"), "")
		}
	}
	return strings.Join(lines, "\n")
}

func decodeObject(s string) (map[string]any, error) {
	var v map[string]any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.New("not a json object")
	}
	return v, nil
}

// stripComments removes // and /* */ comments that are not inside a string literal.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
				continue
			}
			if c == quote {
				inString = false
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			inString = true
			quote = c
			b.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += end + 3
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// dropTrailingCommas removes a comma that is followed only by whitespace and then a
// closing bracket or brace. Commas inside string literals are kept.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
				continue
			}
			if c == quote {
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case ',':
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func describeError(s string, err error) string {
	var syn *json.SyntaxError
	offset := len(s)
	if errors.As(err, &syn) {
		offset = int(syn.Offset)
	}
	if offset > len(s) {
		offset = len(s)
	}
	start := offset - contextRadius
	if start < 0 {
		start = 0
	}
	end := offset + contextRadius
	if end > len(s) {
		end = len(s)
	}
	for start > 0 && !utf8.RuneStart(s[start]) {
		start--
	}
	for end < len(s) && !utf8.RuneStart(s[end]) {
		end++
	}
	return "offset " + strconv.Itoa(offset) + ": " + s[start:offset] + " <<HERE>> " + s[offset:end]
}
