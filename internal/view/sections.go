package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ifrs-console/internal/model"
)

// AnalysisScoreKeys are the score cards of a full document analysis in display order.
var AnalysisScoreKeys = []struct{ Key, Label string }{
	{"s1_overall", "IFRS S1"},
	{"s2_overall", "IFRS S2"},
	{"governance", "Governance"},
	{"strategy", "Strategy"},
	{"risk_management", "Risk Management"},
	{"metrics_targets", "Metrics & Targets"},
	{"document_completeness", "Completeness"},
	{"ifrs_readiness", "IFRS Readiness"},
}

// Field is one displayable entry of an analysis section.
type Field struct {
	Key   string
	Label string
	Text  string
	Items []string
	Score *float64
}

type Section struct {
	Key    string
	Title  string
	Fields []Field
}

// Sections flattens a document analysis into titled sections. Absent
// sections are skipped.
func Sections(a *model.DocumentAnalysis) []Section {
	if a == nil {
		return nil
	}
	parts := []struct {
		key, title string
		body       map[string]json.RawMessage
	}{
		{"overview", "Document Overview", a.Overview},
		{"governance", "Governance", a.Governance},
		{"strategy", "Strategy", a.Strategy},
		{"risk_management", "Risk Management", a.RiskManagement},
		{"metrics_targets", "Metrics & Targets", a.MetricsTargets},
		{"overall_assessment", "Overall Assessment", a.OverallAssessment},
	}
	var out []Section
	for _, p := range parts {
		if len(p.body) == 0 {
			continue
		}
		out = append(out, Section{Key: p.key, Title: p.title, Fields: fields(p.body)})
	}
	return out
}

func fields(body map[string]json.RawMessage) []Field {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		f := Field{Key: k, Label: Humanize(k)}
		raw := bytes.TrimSpace(body[k])
		switch {
		case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
			continue
		case raw[0] == '"':
			var s string
			_ = json.Unmarshal(raw, &s)
			f.Text = s
		case raw[0] == '[':
			var items []json.RawMessage
			_ = json.Unmarshal(raw, &items)
			for _, it := range items {
				f.Items = append(f.Items, scalar(it))
			}
		case raw[0] == '{':
			f.Text = scalar(raw)
		default:
			if n, err := strconv.ParseFloat(string(raw), 64); err == nil && strings.Contains(k, "score") {
				s := Clamp(n, 0, 100)
				f.Score = &s
			} else {
				f.Text = string(raw)
			}
		}
		out = append(out, f)
	}
	return out
}

// scalar renders one JSON value as a single line.
func scalar(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", Humanize(k), t[k]))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(t)
	}
}

// Humanize turns snake_case keys into "Title Case" labels.
func Humanize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		if w == "" {
			continue
		}
		switch strings.ToLower(w) {
		case "ifrs", "s1", "s2", "ghg":
			words[i] = strings.ToUpper(w)
		default:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
