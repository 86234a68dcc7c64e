// GA4 Data API implementation of [Reporter]
//
// Calls go through the generated google.golang.org/api/analyticsdata/v1beta client; responses are
// mapped onto [Report] so extraction never depends on the transport types.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/ga4x/internal/shared"
	"golang.org/x/oauth2"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DataAPIBaseURL is the production Data API host.
const DataAPIBaseURL = "https://analyticsdata.googleapis.com"

// DataClient implements [Reporter] against the Data API v1beta.
type DataClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDataClient creates a client for baseURL (default [DataAPIBaseURL]).
//
// The transport and timeout of client are reused underneath the per-call bearer transport.
func NewDataClient(baseURL string, client *http.Client) *DataClient {
	if baseURL == "" {
		baseURL = DataAPIBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &DataClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// PropertyResource returns the "properties/{id}" resource name for id.
func PropertyResource(id string) string {
	if strings.HasPrefix(id, "properties/") {
		return id
	}
	return "properties/" + id
}

// RunReport calls properties.runReport for req using token as the bearer credential.
func (c *DataClient) RunReport(ctx context.Context, token *oauth2.Token, req ReportRequest) (*Report, error) {
	if token == nil {
		return nil, fmt.Errorf("%w: no credentials for report request", shared.ErrNotAuthenticated)
	}

	svc, err := analyticsdata.NewService(ctx,
		option.WithHTTPClient(c.authorized(token)),
		option.WithEndpoint(c.baseURL+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Data API service: %v", shared.ErrAPIRequest, err)
	}

	body := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: req.StartDate, EndDate: req.EndDate}},
	}
	for _, name := range req.Metrics {
		body.Metrics = append(body.Metrics, &analyticsdata.Metric{Name: name})
	}

	resp, err := svc.Properties.RunReport(PropertyResource(req.PropertyID), body).Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}

	return fromResponse(resp), nil
}

// authorized wraps the base client so every request carries token and nothing refreshes it.
func (c *DataClient) authorized(token *oauth2.Token) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(token),
			Base:   c.httpClient.Transport,
		},
		Timeout: c.httpClient.Timeout,
	}
}

// translateError turns a non-2xx [googleapi.Error] into an [APIError]; anything else is a transport failure.
func translateError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := []byte(gerr.Body)
		if len(body) == 0 {
			body = []byte(gerr.Message)
		}
		return decodeAPIError(gerr.Code, body)
	}
	return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
}

func fromResponse(resp *analyticsdata.RunReportResponse) *Report {
	report := &Report{RowCount: int(resp.RowCount), Kind: resp.Kind}

	for _, h := range resp.DimensionHeaders {
		if h != nil {
			report.DimensionHeaders = append(report.DimensionHeaders, DimensionHeader{Name: h.Name})
		}
	}
	for _, h := range resp.MetricHeaders {
		if h != nil {
			report.MetricHeaders = append(report.MetricHeaders, MetricHeader{Name: h.Name, Type: h.Type})
		}
	}
	for _, r := range resp.Rows {
		if r == nil {
			continue
		}
		row := Row{}
		for _, v := range r.DimensionValues {
			row.DimensionValues = append(row.DimensionValues, dimensionValue(v))
		}
		for _, v := range r.MetricValues {
			row.MetricValues = append(row.MetricValues, metricValue(v))
		}
		report.Rows = append(report.Rows, row)
	}

	return report
}

func dimensionValue(v *analyticsdata.DimensionValue) Value {
	if v == nil {
		return Value{}
	}
	return Value{Value: v.Value}
}

func metricValue(v *analyticsdata.MetricValue) Value {
	if v == nil {
		return Value{}
	}
	return Value{Value: v.Value}
}
