package analytics

import (
	"context"

	"github.com/desertthunder/ga4x/internal/shared"
	"golang.org/x/oauth2"
)

// ReadOnlyScope grants read access to Google Analytics data.
const ReadOnlyScope = "https://www.googleapis.com/auth/analytics.readonly"

// Metric names requested from the Data API, in column order.
const (
	MetricSessions   = "sessions"
	MetricTotalUsers = "totalUsers"
	MetricEventCount = "eventCount"
)

// DefaultStartDate and DefaultEndDate describe the 90-day window ending today.
const (
	DefaultStartDate = "90daysAgo"
	DefaultEndDate   = "today"
)

// Reporter runs report queries on behalf of an authorized user.
type Reporter interface {
	RunReport(ctx context.Context, token *oauth2.Token, req ReportRequest) (*Report, error)
}

// ReportRequest describes one runReport call.
type ReportRequest struct {
	PropertyID string
	StartDate  string
	EndDate    string
	Metrics    []string
}

// NewReportRequest returns the sessions/totalUsers/eventCount query for cfg's property.
//
// Empty dates fall back to [DefaultStartDate] and [DefaultEndDate].
func NewReportRequest(cfg shared.AnalyticsConfig) ReportRequest {
	req := ReportRequest{
		PropertyID: cfg.PropertyID,
		StartDate:  cfg.StartDate,
		EndDate:    cfg.EndDate,
		Metrics:    []string{MetricSessions, MetricTotalUsers, MetricEventCount},
	}
	if req.StartDate == "" {
		req.StartDate = DefaultStartDate
	}
	if req.EndDate == "" {
		req.EndDate = DefaultEndDate
	}
	return req
}

// Report is the decoded runReport response body.
type Report struct {
	DimensionHeaders []DimensionHeader `json:"dimensionHeaders,omitempty"`
	MetricHeaders    []MetricHeader    `json:"metricHeaders,omitempty"`
	Rows             []Row             `json:"rows,omitempty"`
	RowCount         int               `json:"rowCount,omitempty"`
	Kind             string            `json:"kind,omitempty"`
}

// DimensionHeader names a dimension column.
type DimensionHeader struct {
	Name string `json:"name"`
}

// MetricHeader names a metric column and its value type (TYPE_INTEGER, TYPE_FLOAT, ...).
type MetricHeader struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Row holds one result row; MetricValues is aligned to [Report.MetricHeaders].
type Row struct {
	DimensionValues []Value `json:"dimensionValues,omitempty"`
	MetricValues    []Value `json:"metricValues,omitempty"`
}

// Value is a single cell. The API always encodes numbers as strings.
type Value struct {
	Value string `json:"value"`
}

// Summary is the three-metric view rendered by the web page and the CLI.
type Summary struct {
	Sessions   string `json:"sessions"`
	Users      string `json:"users"`
	EventCount string `json:"eventCount"`
}

// ZeroSummary returns a Summary with every metric set to "0".
func ZeroSummary() Summary {
	return Summary{Sessions: "0", Users: "0", EventCount: "0"}
}
