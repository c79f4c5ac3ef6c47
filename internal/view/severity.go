package view

import (
	"math"

	"ifrs-console/internal/model"
)

var severityLabels = [...]string{"Low", "Moderate", "Elevated", "High", "Critical"}

// SeverityLevel maps a likelihood/impact pair on a 1-5 scale to a band 0-4.
// The mean is rounded half up, so (3,4) lands on 4 and then band 3.
func SeverityLevel(likelihood, impact float64) int {
	mean := (likelihood + impact) / 2
	if math.IsNaN(mean) {
		return 0
	}
	level := int(math.Floor(mean+0.5)) - 1
	if level < 0 {
		return 0
	}
	if level > len(severityLabels)-1 {
		return len(severityLabels) - 1
	}
	return level
}

func SeverityLabel(level int) string {
	if level < 0 || level >= len(severityLabels) {
		return ""
	}
	return severityLabels[level]
}

func SeverityLabels() []string { return severityLabels[:] }

type HeatmapRow struct {
	Risk       string
	Likelihood float64
	Impact     float64
	Level      int
	Label      string
}

// HeatmapRows computes the severity of every matrix entry in order.
func HeatmapRows(items []model.SeverityItem) []HeatmapRow {
	rows := make([]HeatmapRow, 0, len(items))
	for _, it := range items {
		lvl := SeverityLevel(it.Likelihood, it.Impact)
		rows = append(rows, HeatmapRow{
			Risk:       it.Risk,
			Likelihood: it.Likelihood,
			Impact:     it.Impact,
			Level:      lvl,
			Label:      SeverityLabel(lvl),
		})
	}
	return rows
}
