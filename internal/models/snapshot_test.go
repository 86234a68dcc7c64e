package models

import (
	"testing"

	"github.com/desertthunder/ga4x/internal/analytics"
	"github.com/desertthunder/ga4x/internal/shared"
)

func TestSnapshot(t *testing.T) {
	req := analytics.NewReportRequest(shared.AnalyticsConfig{PropertyID: "123"})
	summary := analytics.Summary{Sessions: "1", Users: "2", EventCount: "3"}

	t.Run("NewSnapshot", func(t *testing.T) {
		s := NewSnapshot(req, summary, SourceWeb)

		if s.PropertyID() != "properties/123" {
			t.Errorf("expected properties/123, got %s", s.PropertyID())
		}
		if s.StartDate() != "90daysAgo" || s.EndDate() != "today" {
			t.Errorf("unexpected window %s..%s", s.StartDate(), s.EndDate())
		}
		if s.Summary() != summary {
			t.Errorf("expected summary %+v, got %+v", summary, s.Summary())
		}
		if s.CreatedAt().IsZero() {
			t.Error("expected created_at to be set")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		s := NewSnapshot(req, summary, SourceWeb)
		if err := s.Validate(); err == nil {
			t.Error("expected error without id")
		}

		s.SetID("abc")
		if err := s.Validate(); err != nil {
			t.Errorf("expected valid snapshot, got %v", err)
		}

		bad := NewSnapshot(req, summary, "carrier-pigeon")
		bad.SetID("abc")
		if err := bad.Validate(); err == nil {
			t.Error("expected error for unknown source")
		}

		req.PropertyID = ""
		empty := NewSnapshot(req, summary, SourceCLI)
		empty.SetID("abc")
		if err := empty.Validate(); err == nil {
			t.Error("expected error for empty property")
		}
	})
}
