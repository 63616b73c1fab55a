package form

import (
	"math"
	"strconv"
	"strings"
)

// EvaluateAggregates recomputes every aggregate field in data from its
// sibling sources and writes the results back. Sources that are missing or
// not parseable as finite numbers are skipped; when no source parses the
// aggregate renders as an empty string rather than zero, so a blank row
// stays visibly blank.
func EvaluateAggregates(fields []FieldSchema, data map[string]any) {
	evalAggregates(fields, nil, data)
}

func evalAggregates(fields []FieldSchema, prefix []string, data map[string]any) {
	for _, f := range fields {
		if f.IsGroup() {
			for _, sh := range f.SubHeaders {
				evalAggregates(sh.Fields, append(append([]string{}, prefix...), f.FieldName, sh.Name), data)
			}
			continue
		}
		if f.FieldType != FieldAggregate {
			continue
		}
		sum, any := 0.0, false
		for _, src := range f.AggregateFields {
			v, ok := parseNumeric(data[levelKey(prefix, src)])
			if ok {
				sum += v
				any = true
			}
		}
		key := levelKey(prefix, f.FieldName)
		if any {
			data[key] = strconv.FormatFloat(sum, 'f', -1, 64)
		} else {
			data[key] = ""
		}
	}
}

func levelKey(prefix []string, name string) string {
	if len(prefix) == 0 {
		return name
	}
	return pathKey(append(append([]string{}, prefix...), name)...)
}

func parseNumeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
