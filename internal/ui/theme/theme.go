// Package theme holds the lipgloss styles used by the CLI reports.
package theme

import (
	"fmt"

	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Section = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary).
		MarginTop(1)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(16)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Verdicts
var (
	Pass = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Fail = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Warn = lipgloss.NewStyle().
		Foreground(Accent)
)

// Card frames one question.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(0, 1)

// Field renders a "label value" row.
func Field(label string, value any) string {
	return Label.Render(label) + Body.Render(fmt.Sprint(value))
}

// Verdict renders ok as a pass or fail badge with the given labels.
func Verdict(ok bool, yes, no string) string {
	if ok {
		return Pass.Render(yes)
	}
	return Fail.Render(no)
}

// Score renders a 0-10 score, colored against threshold.
func Score(v, threshold float64) string {
	s := fmt.Sprintf("%.2f", v)
	switch {
	case v >= threshold:
		return Pass.Render(s)
	case v >= threshold*0.7:
		return Warn.Render(s)
	default:
		return Fail.Render(s)
	}
}
