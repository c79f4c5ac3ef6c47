package view

import (
	"strings"

	"ifrs-console/internal/model"
)

// Bar is one column of the emissions chart in SVG units.
type Bar struct {
	Label  string
	Value  float64
	X      float64
	Y      float64
	Width  float64
	Height float64
}

const (
	chartHeight = 160
	barWidth    = 48
	barGap      = 32
)

// EmissionBars scales the three scopes to the tallest one. All-zero input
// gives flat bars.
func EmissionBars(e model.Emissions) []Bar {
	values := []struct {
		label string
		v     float64
	}{
		{"Scope 1", e.Scope1},
		{"Scope 2", e.Scope2},
		{"Scope 3", e.Scope3},
	}
	max := 0.0
	for _, v := range values {
		if v.v > max {
			max = v.v
		}
	}
	bars := make([]Bar, 0, len(values))
	for i, v := range values {
		val := v.v
		if val < 0 {
			val = 0
		}
		h := 0.0
		if max > 0 {
			h = chartHeight * val / max
		}
		bars = append(bars, Bar{
			Label:  v.label,
			Value:  val,
			X:      float64(barGap + i*(barWidth+barGap)),
			Y:      chartHeight - h,
			Width:  barWidth,
			Height: h,
		})
	}
	return bars
}

func HasEmissions(e model.Emissions) bool {
	return e.Scope1 > 0 || e.Scope2 > 0 || e.Scope3 > 0
}

// Card is a score card with its tier already resolved.
type Card struct {
	Key   string
	Title string
	Score float64
	Tier  Tier
	Hint  string
}

func NewCard(key, title string, score float64, hint string) Card {
	s := Clamp(score, 0, 100)
	return Card{Key: key, Title: title, Score: s, Tier: TierOf(s), Hint: hint}
}

// ComplianceDonuts are the headline IFRS S1 and S2 scores.
func ComplianceDonuts(r *model.ComplianceResult) []Donut {
	return []Donut{
		NewDonut("IFRS S1", NormalizeScore(r.S1Score)),
		NewDonut("IFRS S2", NormalizeScore(r.S2Score)),
	}
}

// ComplianceCards are the four pillar scores of a compliance result.
func ComplianceCards(r *model.ComplianceResult) []Card {
	return []Card{
		NewCard("governance", "Governance", NormalizeScore(r.GovernanceScore), "Board oversight and management's role"),
		NewCard("strategy", "Strategy", NormalizeScore(r.StrategyScore), "Risks, opportunities and business model effects"),
		NewCard("risk", "Risk Management", NormalizeScore(r.RiskScore), "Processes to identify and manage risks"),
		NewCard("metrics", "Metrics & Targets", NormalizeScore(r.MetricsScore), "Emissions metrics and climate targets"),
	}
}

func ClimateDonuts(r *model.ClimateResult) []Donut {
	return []Donut{
		NewDonut("Physical Risk", NormalizeScore(r.PhysicalRiskScore)),
		NewDonut("Transition Risk", NormalizeScore(r.TransitionRiskScore)),
		NewDonut("Scenario Alignment", NormalizeScore(r.ScenarioAlignmentScore)),
	}
}

// AnalysisCards picks the known score keys out of a document analysis.
// Keys the backend did not send are shown as 0.
func AnalysisCards(a *model.DocumentAnalysis) []Card {
	cards := make([]Card, 0, len(AnalysisScoreKeys))
	for _, k := range AnalysisScoreKeys {
		var v any
		if a != nil {
			v = a.Scores[k.Key]
		}
		cards = append(cards, NewCard(k.Key, k.Label, NormalizeScore(v), ""))
	}
	return cards
}

// Initials is the avatar text for an email address.
func Initials(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "?"
	}
	parts := strings.FieldsFunc(local, func(r rune) bool { return r == '.' || r == '_' || r == '-' })
	if len(parts) >= 2 {
		return strings.ToUpper(parts[0][:1] + parts[1][:1])
	}
	if len(local) >= 2 {
		return strings.ToUpper(local[:2])
	}
	return strings.ToUpper(local)
}

func FormatDate(t model.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("Jan 2, 2006")
}
