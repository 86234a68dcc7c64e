// package formatter renders report summaries and snapshot history as plain text, Markdown, CSV, JSON or styled terminal output
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/ga4x/internal/analytics"
	"github.com/desertthunder/ga4x/internal/models"
	"github.com/desertthunder/ga4x/internal/shared"
)

// Output formats accepted by [Format].
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatStyled   = "styled"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true).Align(lipgloss.Right).Width(12)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7D56F4")).Padding(0, 1)
)

// Report bundles a summary with the request that produced it.
type Report struct {
	Request analytics.ReportRequest
	Summary analytics.Summary
}

type metricLine struct {
	label string
	value string
}

func (r Report) lines() []metricLine {
	return []metricLine{
		{"Sessions", r.Summary.Sessions},
		{"Users", r.Summary.Users},
		{"Event count", r.Summary.EventCount},
	}
}

// Supported reports whether format names one of the output formats, wrapping [shared.ErrInvalidFlag] otherwise.
func Supported(format string) error {
	switch strings.ToLower(format) {
	case "", FormatText, FormatMarkdown, "md", FormatCSV, FormatJSON, FormatStyled:
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// Format renders r in the named format.
func Format(r Report, format string) ([]byte, error) {
	if err := Supported(format); err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case FormatMarkdown, "md":
		return ExportToMarkdown(r)
	case FormatCSV:
		return ExportToCSV(r)
	case FormatJSON:
		return ExportToJSON(r)
	case FormatStyled:
		return ExportToStyled(r)
	default:
		return ExportToText(r)
	}
}

// ExportToText renders r as aligned plain text
func ExportToText(r Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Property: %s\n", analytics.PropertyResource(r.Request.PropertyID)))
	buf.WriteString(fmt.Sprintf("Window: %s to %s\n\n", r.Request.StartDate, r.Request.EndDate))
	for _, l := range r.lines() {
		buf.WriteString(fmt.Sprintf("%-12s %s\n", l.label+":", l.value))
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders r as a Markdown heading and table
func ExportToMarkdown(r Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", analytics.PropertyResource(r.Request.PropertyID)))
	buf.WriteString(fmt.Sprintf("**Window**: %s to %s\n\n", r.Request.StartDate, r.Request.EndDate))
	buf.WriteString("| Metric | Value |\n")
	buf.WriteString("|---|---:|\n")
	for _, l := range r.lines() {
		buf.WriteString(fmt.Sprintf("| %s | %s |\n", l.label, l.value))
	}

	return buf.Bytes(), nil
}

// ExportToCSV renders r with columns: Property, StartDate, EndDate, Sessions, Users, EventCount
func ExportToCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	records := [][]string{
		{"Property", "StartDate", "EndDate", "Sessions", "Users", "EventCount"},
		{
			analytics.PropertyResource(r.Request.PropertyID),
			r.Request.StartDate,
			r.Request.EndDate,
			r.Summary.Sessions,
			r.Summary.Users,
			r.Summary.EventCount,
		},
	}
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders r as indented JSON
func ExportToJSON(r Report) ([]byte, error) {
	payload := struct {
		Property  string `json:"property"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		analytics.Summary
	}{
		Property:  analytics.PropertyResource(r.Request.PropertyID),
		StartDate: r.Request.StartDate,
		EndDate:   r.Request.EndDate,
		Summary:   r.Summary,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToStyled renders r in a bordered box for terminals
func ExportToStyled(r Report) ([]byte, error) {
	rows := []string{titleStyle.Render(analytics.PropertyResource(r.Request.PropertyID))}
	for _, l := range r.lines() {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(l.label), valueStyle.Render(l.value)))
	}
	rows = append(rows, labelStyle.Width(0).Italic(true).Render(r.Request.StartDate+" to "+r.Request.EndDate))

	return []byte(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)) + "\n"), nil
}

// ExportHistory renders snapshots as a plain text table, newest first as given
func ExportHistory(snapshots []*models.Snapshot) []byte {
	var buf bytes.Buffer

	if len(snapshots) == 0 {
		buf.WriteString("No snapshots recorded\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("%-36s  %-20s  %-6s  %10s  %10s  %12s\n", "ID", "Captured", "Source", "Sessions", "Users", "Events"))
	for _, s := range snapshots {
		summary := s.Summary()
		buf.WriteString(fmt.Sprintf("%-36s  %-20s  %-6s  %10s  %10s  %12s\n",
			s.ID(), s.CreatedAt().Local().Format(time.DateTime), s.Source(),
			summary.Sessions, summary.Users, summary.EventCount,
		))
	}

	return buf.Bytes()
}

// SnapshotReport converts a stored snapshot back into a [Report] for rendering.
func SnapshotReport(s *models.Snapshot) Report {
	return Report{
		Request: analytics.ReportRequest{
			PropertyID: s.PropertyID(),
			StartDate:  s.StartDate(),
			EndDate:    s.EndDate(),
		},
		Summary: s.Summary(),
	}
}
