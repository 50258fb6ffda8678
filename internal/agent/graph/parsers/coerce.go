package parsers

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var firstInt = regexp.MustCompile(`\d+`)

// str renders scalars as strings; lists are joined with "; ".
func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		return strings.Join(strList(x), "; ")
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// intOf accepts numbers and strings such as "3", "Day 3" or "3天".
func intOf(v any) int {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(x)
	case string:
		if m := firstInt.FindString(x); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	}
	return 0
}

func boolOf(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "true" || s == "yes" || s == "是" || s == "需要"
	}
	return false
}

// strList accepts a list of scalars or a single scalar; empty entries are dropped.
func strList(v any) []string {
	var out []string
	switch x := v.(type) {
	case []any:
		for _, it := range x {
			if m, ok := it.(map[string]any); ok {
				if s := firstNonEmpty(m, "name", "item", "text", "area"); s != "" {
					out = append(out, s)
				}
				continue
			}
			if s := str(it); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range x {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case nil:
	default:
		if s := str(x); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func objList(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		if m, ok := v.(map[string]any); ok {
			return []map[string]any{m}
		}
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, it := range arr {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func obj(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func firstNonEmpty(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// extras returns the keys of m not listed in known, or nil when there are none.
func extras(m map[string]any, known ...string) map[string]any {
	var out map[string]any
	for k, v := range m {
		isKnown := false
		for _, kk := range known {
			if k == kk {
				isKnown = true
				break
			}
		}
		if isKnown {
			continue
		}
		if out == nil {
			out = map[string]any{}
		}
		out[k] = v
	}
	return out
}
