package services

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"alfredoptarigan/cv-screening/internal/models"
)

const (
	defaultScore = 50

	degradedSummary          = "Analysis could not be completed due to a processing error."
	degradedStrength         = "Unable to analyze strengths"
	degradedWeakness         = "Unable to analyze weaknesses"
	degradedDetailedAnalysis = "The AI response could not be parsed into a structured analysis."
)

// DegradedAnalysis is stored when model output cannot be decoded.
func DegradedAnalysis() models.Analysis {
	return models.Analysis{
		OverallScore:     defaultScore,
		Summary:          degradedSummary,
		Strengths:        []string{degradedStrength},
		Weaknesses:       []string{degradedWeakness},
		DetailedAnalysis: degradedDetailedAnalysis,
	}
}

// ParseAnalysis decodes the JSON object between the first '{' and the last
// '}' of raw. Missing fields take defaults; undecodable input yields
// DegradedAnalysis. It never fails and is deterministic.
func ParseAnalysis(raw string) models.Analysis {
	payload, ok := extractJSONObject(raw)
	if !ok {
		return DegradedAnalysis()
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return DegradedAnalysis()
	}

	analysis := models.Analysis{
		OverallScore: defaultScore,
		Strengths:    []string{},
		Weaknesses:   []string{},
	}

	if v, ok := lookupField(fields, "OverallScore"); ok {
		if score, ok := coerceScore(v); ok {
			analysis.OverallScore = score
		}
	}
	if v, ok := lookupField(fields, "Summary"); ok {
		analysis.Summary = coerceString(v)
	}
	if v, ok := lookupField(fields, "Strengths"); ok {
		analysis.Strengths = coerceStringList(v)
	}
	if v, ok := lookupField(fields, "Weaknesses"); ok {
		analysis.Weaknesses = coerceStringList(v)
	}
	if v, ok := lookupField(fields, "DetailedAnalysis"); ok {
		analysis.DetailedAnalysis = coerceString(v)
	}

	return analysis
}

func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// lookupField matches keys ignoring case, underscores and dashes, so
// "overall_score" finds OverallScore. An exact key wins; otherwise the
// lexically first match is used.
func lookupField(fields map[string]any, name string) (any, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}

	want := normalizeKey(name)
	var matches []string
	for k := range fields {
		if normalizeKey(k) == want {
			matches = append(matches, k)
		}
	}
	if len(matches) == 0 {
		return nil, false
	}
	sort.Strings(matches)
	return fields[matches[0]], true
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	return strings.ReplaceAll(key, "-", "")
}

func coerceScore(v any) (int, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "%"), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return int(math.Round(math.Max(0, math.Min(100, f)))), true
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		body, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(body)
	}
}

func coerceStringList(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}
