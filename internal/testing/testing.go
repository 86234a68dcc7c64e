// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/desertthunder/ga4x/internal/analytics"
	"github.com/desertthunder/ga4x/internal/models"
	"golang.org/x/oauth2"
)

// MockReporter is a test double for [analytics.Reporter]
type MockReporter struct {
	mu     sync.Mutex
	Report *analytics.Report
	Err    error
	Calls  int
	Tokens []*oauth2.Token
}

func (m *MockReporter) RunReport(ctx context.Context, token *oauth2.Token, req analytics.ReportRequest) (*analytics.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Tokens = append(m.Tokens, token)
	return m.Report, m.Err
}

// CallCount returns the number of RunReport calls so far.
func (m *MockReporter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockAuthenticator is a test double for [analytics.Authenticator]
type MockAuthenticator struct {
	URL   string
	Token *oauth2.Token
	Err   error
	Codes []string
}

func (m *MockAuthenticator) AuthURL(state string) string {
	if state == "" {
		return m.URL
	}
	return m.URL + "&state=" + state
}

func (m *MockAuthenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	m.Codes = append(m.Codes, code)
	return m.Token, m.Err
}

// MockRecorder collects snapshots, optionally failing every Create.
type MockRecorder struct {
	Snapshots []*models.Snapshot
	Err       error
}

func (m *MockRecorder) Create(snapshot *models.Snapshot) error {
	if m.Err != nil {
		return m.Err
	}
	snapshot.SetID("mock-" + snapshot.Source())
	m.Snapshots = append(m.Snapshots, snapshot)
	return nil
}

// ReportWith builds a single-row report whose values are aligned to the standard three metrics.
func ReportWith(values ...string) *analytics.Report {
	report := &analytics.Report{
		MetricHeaders: []analytics.MetricHeader{
			{Name: analytics.MetricSessions, Type: "TYPE_INTEGER"},
			{Name: analytics.MetricTotalUsers, Type: "TYPE_INTEGER"},
			{Name: analytics.MetricEventCount, Type: "TYPE_INTEGER"},
		},
	}
	if values == nil {
		return report
	}
	row := analytics.Row{}
	for _, v := range values {
		row.MetricValues = append(row.MetricValues, analytics.Value{Value: v})
	}
	report.Rows = []analytics.Row{row}
	report.RowCount = 1
	return report
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SessionCookie returns the first cookie named name set on resp, failing the test when absent.
func SessionCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}
