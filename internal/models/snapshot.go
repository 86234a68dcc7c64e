package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/ga4x/internal/analytics"
)

// Snapshot sources.
const (
	SourceWeb = "web"
	SourceCLI = "cli"
)

// Snapshot is a recorded report summary.
type Snapshot struct {
	id         string
	propertyID string
	startDate  string
	endDate    string
	summary    analytics.Summary
	source     string
	createdAt  time.Time
}

// NewSnapshot creates an unsaved snapshot of summary for req, stamped with the current UTC time.
func NewSnapshot(req analytics.ReportRequest, summary analytics.Summary, source string) *Snapshot {
	return &Snapshot{
		propertyID: analytics.PropertyResource(req.PropertyID),
		startDate:  req.StartDate,
		endDate:    req.EndDate,
		summary:    summary,
		source:     source,
		createdAt:  time.Now().UTC(),
	}
}

// RestoreSnapshot rebuilds a persisted snapshot.
func RestoreSnapshot(id, propertyID, startDate, endDate string, summary analytics.Summary, source string, createdAt time.Time) *Snapshot {
	return &Snapshot{
		id:         id,
		propertyID: propertyID,
		startDate:  startDate,
		endDate:    endDate,
		summary:    summary,
		source:     source,
		createdAt:  createdAt,
	}
}

func (s *Snapshot) ID() string                 { return s.id }
func (s *Snapshot) SetID(id string)            { s.id = id }
func (s *Snapshot) PropertyID() string         { return s.propertyID }
func (s *Snapshot) StartDate() string          { return s.startDate }
func (s *Snapshot) EndDate() string            { return s.endDate }
func (s *Snapshot) Summary() analytics.Summary { return s.summary }
func (s *Snapshot) Source() string             { return s.source }
func (s *Snapshot) CreatedAt() time.Time       { return s.createdAt }

// Validate checks the fields required for persistence.
func (s *Snapshot) Validate() error {
	if s.id == "" {
		return fmt.Errorf("snapshot id is required")
	}
	if s.propertyID == "" || s.propertyID == analytics.PropertyResource("") {
		return fmt.Errorf("snapshot property is required")
	}
	if s.startDate == "" || s.endDate == "" {
		return fmt.Errorf("snapshot date range is required")
	}
	switch s.source {
	case SourceWeb, SourceCLI:
	default:
		return fmt.Errorf("unknown snapshot source %q", s.source)
	}
	return nil
}
