package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/ga4x/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/googleapi"
)

func testAnalyticsConfig() shared.AnalyticsConfig {
	return shared.AnalyticsConfig{PropertyID: "123456"}
}

func testToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "test_access_token", TokenType: "Bearer"}
}

func TestNewReportRequest(t *testing.T) {
	req := NewReportRequest(testAnalyticsConfig())

	assert.Equal(t, "123456", req.PropertyID)
	assert.Equal(t, DefaultStartDate, req.StartDate)
	assert.Equal(t, DefaultEndDate, req.EndDate)
	assert.Equal(t, []string{MetricSessions, MetricTotalUsers, MetricEventCount}, req.Metrics)

	custom := NewReportRequest(shared.AnalyticsConfig{PropertyID: "1", StartDate: "2024-01-01", EndDate: "2024-03-31"})
	assert.Equal(t, "2024-01-01", custom.StartDate)
	assert.Equal(t, "2024-03-31", custom.EndDate)
}

func TestPropertyResource(t *testing.T) {
	assert.Equal(t, "properties/42", PropertyResource("42"))
	assert.Equal(t, "properties/42", PropertyResource("properties/42"))
}

func TestDataClient(t *testing.T) {
	t.Run("RunReport", func(t *testing.T) {
		var gotBody analyticsdata.RunReportRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1beta/properties/123456:runReport", r.URL.Path)
			assert.Equal(t, "Bearer test_access_token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"metricHeaders": [
					{"name": "sessions", "type": "TYPE_INTEGER"},
					{"name": "totalUsers", "type": "TYPE_INTEGER"},
					{"name": "eventCount", "type": "TYPE_INTEGER"}
				],
				"rows": [{"metricValues": [{"value": "1024"}, {"value": "512"}, {"value": "2048"}]}],
				"rowCount": 1,
				"kind": "analyticsData#runReport"
			}`))
		}))
		defer srv.Close()

		client := NewDataClient(srv.URL, srv.Client())
		req := NewReportRequest(testAnalyticsConfig())

		report, err := client.RunReport(context.Background(), testToken(), req)
		require.NoError(t, err)

		require.Len(t, gotBody.DateRanges, 1)
		assert.Equal(t, "90daysAgo", gotBody.DateRanges[0].StartDate)
		assert.Equal(t, "today", gotBody.DateRanges[0].EndDate)
		var metrics []string
		for _, m := range gotBody.Metrics {
			metrics = append(metrics, m.Name)
		}
		assert.Equal(t, []string{"sessions", "totalUsers", "eventCount"}, metrics)

		assert.Equal(t, 1, report.RowCount)
		assert.Equal(t, "analyticsData#runReport", report.Kind)
		require.Len(t, report.MetricHeaders, 3)
		assert.Equal(t, MetricHeader{Name: "totalUsers", Type: "TYPE_INTEGER"}, report.MetricHeaders[1])
		assert.Equal(t, Summary{Sessions: "1024", Users: "512", EventCount: "2048"}, Summarize(report, req))
	})

	t.Run("Empty Report", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"metricHeaders": [{"name": "sessions"}], "kind": "analyticsData#runReport"}`))
		}))
		defer srv.Close()

		req := NewReportRequest(testAnalyticsConfig())
		report, err := NewDataClient(srv.URL, srv.Client()).RunReport(context.Background(), testToken(), req)
		require.NoError(t, err)
		assert.Empty(t, report.Rows)
		assert.Equal(t, ZeroSummary(), Summarize(report, req))
	})

	t.Run("Missing Token", func(t *testing.T) {
		client := NewDataClient("http://127.0.0.1:0", nil)

		_, err := client.RunReport(context.Background(), nil, NewReportRequest(testAnalyticsConfig()))
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})

	t.Run("Network Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := NewDataClient(url, nil).RunReport(context.Background(), testToken(), NewReportRequest(testAnalyticsConfig()))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("Permission Denied", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": {"code": 403, "message": "User does not have sufficient permissions for this property.", "status": "PERMISSION_DENIED"}}`))
		}))
		defer srv.Close()

		_, err := NewDataClient(srv.URL, srv.Client()).RunReport(context.Background(), testToken(), NewReportRequest(testAnalyticsConfig()))
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, "PERMISSION_DENIED", apiErr.Status)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		assert.NotErrorIs(t, err, ErrPropertyNotFound)
		assert.Contains(t, err.Error(), "sufficient permissions")
	})

	t.Run("Non JSON Error Body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewDataClient(srv.URL, srv.Client()).RunReport(context.Background(), testToken(), NewReportRequest(testAnalyticsConfig()))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "upstream exploded")
	})

	t.Run("Malformed Body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"rows": [`))
		}))
		defer srv.Close()

		_, err := NewDataClient(srv.URL, srv.Client()).RunReport(context.Background(), testToken(), NewReportRequest(testAnalyticsConfig()))
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})
}

func TestTranslateError(t *testing.T) {
	t.Run("google API error keeps status from the body", func(t *testing.T) {
		gerr := &googleapi.Error{
			Code:    http.StatusNotFound,
			Message: "Property not found",
			Body:    `{"error": {"code": 404, "message": "Property not found", "status": "NOT_FOUND"}}`,
		}

		err := translateError(gerr)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "NOT_FOUND", apiErr.Status)
		assert.ErrorIs(t, err, ErrPropertyNotFound)
	})

	t.Run("google API error without a body", func(t *testing.T) {
		err := translateError(&googleapi.Error{Code: http.StatusForbidden, Message: "denied"})

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "denied", apiErr.Message)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("transport error", func(t *testing.T) {
		err := translateError(errors.New("dial tcp: connection refused"))

		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestFromResponse(t *testing.T) {
	report := fromResponse(&analyticsdata.RunReportResponse{
		MetricHeaders: []*analyticsdata.MetricHeader{{Name: "eventCount"}, {Name: "sessions"}},
		Rows: []*analyticsdata.Row{
			{MetricValues: []*analyticsdata.MetricValue{{Value: "2048"}, nil}},
			nil,
		},
		RowCount: 1,
	})

	require.Len(t, report.Rows, 1)
	assert.Equal(t, []Value{{Value: "2048"}, {}}, report.Rows[0].MetricValues)

	req := NewReportRequest(testAnalyticsConfig())
	assert.Equal(t, Summary{Sessions: "0", Users: "0", EventCount: "2048"}, Summarize(report, req))
}

func TestAPIError(t *testing.T) {
	notFound := decodeAPIError(http.StatusNotFound, []byte(`{"error": {"code": 404, "message": "Property not found", "status": "NOT_FOUND"}}`))

	assert.ErrorIs(t, notFound, ErrPropertyNotFound)
	assert.NotErrorIs(t, notFound, ErrForbidden)
	assert.Contains(t, notFound.Error(), "NOT_FOUND")

	empty := decodeAPIError(http.StatusInternalServerError, nil)
	assert.Equal(t, "Internal Server Error", empty.Message)
}
