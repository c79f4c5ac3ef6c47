package view

import (
	"fmt"
	"math"
	"strconv"
)

type Tier string

const (
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
	TierNeedsWork Tier = "needs work"
)

// TierOf buckets a 0-100 score. 70 is good, 40 is fair, 39 needs work.
func TierOf(score float64) Tier {
	switch {
	case score >= 70:
		return TierGood
	case score >= 40:
		return TierFair
	default:
		return TierNeedsWork
	}
}

// Class is the CSS modifier for a tier.
func (t Tier) Class() string {
	switch t {
	case TierGood:
		return "tier-good"
	case TierFair:
		return "tier-fair"
	default:
		return "tier-poor"
	}
}

func (t Tier) Color() string {
	switch t {
	case TierGood:
		return "#16a34a"
	case TierFair:
		return "#d97706"
	default:
		return "#dc2626"
	}
}

// NormalizeScore turns whatever the backend sent into a displayable score.
// Missing, NaN and non-numeric values become 0; the result is clamped to [0,100].
func NormalizeScore(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		p, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		f = p
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return Clamp(f, 0, 100)
}

func Clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// FormatScore renders a score without trailing zeros, one decimal at most.
func FormatScore(score float64) string {
	return strconv.FormatFloat(math.Round(score*10)/10, 'f', -1, 64)
}

// Donut describes an SVG ring whose filled arc is the clamped score.
type Donut struct {
	Score         float64
	Label         string
	Tier          Tier
	Radius        float64
	Circumference float64
	Dash          string
}

const donutRadius = 40

func NewDonut(label string, score float64) Donut {
	s := Clamp(score, 0, 100)
	circ := 2 * math.Pi * donutRadius
	filled := circ * s / 100
	return Donut{
		Score:         s,
		Label:         label,
		Tier:          TierOf(s),
		Radius:        donutRadius,
		Circumference: circ,
		Dash:          fmt.Sprintf("%.2f %.2f", filled, circ-filled),
	}
}
