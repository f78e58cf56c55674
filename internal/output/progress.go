package output

import (
	"fmt"
	"strings"
)

// Scalar formats a nullable summary value. Absent values render as a muted
// dash so a null-heavy summary still lines up.
func Scalar(v *float64) string {
	if v == nil {
		return StyleMuted.Render("–")
	}
	return fmt.Sprintf("%.1f", *v)
}

// Gauge renders a filled bar for a value against a maximum.
// Example: "████████░░ 148.2"
func Gauge(value, max float64, width int) string {
	if width <= 0 {
		width = 20
	}
	frac := 0.0
	if max > 0 {
		frac = value / max
	}
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s", StyleBold.Render(bar), StyleMuted.Render(fmt.Sprintf("%.1f", value)))
}

// TrendArrow returns a styled trend indicator for a delta value.
// Positive delta shows an up arrow, negative shows down, zero shows a dash.
// The improved parameter indicates whether higher values are better.
func TrendArrow(delta float64, higherIsBetter bool) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}

	isPositive := delta > 0
	isImproved := (isPositive && higherIsBetter) || (!isPositive && !higherIsBetter)

	var arrow string
	if isPositive {
		arrow = fmt.Sprintf("▲ +%.1f", delta)
	} else {
		arrow = fmt.Sprintf("▼ %.1f", delta)
	}

	if isImproved {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// AlertBanner renders one alert line with level-appropriate styling.
func AlertBanner(level, title, message string) string {
	label := fmt.Sprintf("[%s] %s", strings.ToUpper(level), title)
	styled := StyleWarning.Render(label)
	if level == "critical" {
		styled = StyleError.Render(label)
	}
	return fmt.Sprintf("%s %s", styled, StyleMuted.Render(message))
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
