package analytics

const zeroValue = "0"

// Column returns the index of metric within the report's value list, or -1 when it is absent.
//
// Metric headers are authoritative. When the response carries none, the position in requested is used.
func (r *Report) Column(metric string, requested []string) int {
	if r == nil {
		return -1
	}

	headers := make([]string, 0, len(r.MetricHeaders))
	for _, h := range r.MetricHeaders {
		headers = append(headers, h.Name)
	}
	if len(headers) == 0 {
		headers = requested
	}

	for i, name := range headers {
		if name == metric {
			return i
		}
	}
	return -1
}

// Value returns metric from the first row, or "0" when the row, column or value is missing.
func (r *Report) Value(metric string, requested []string) string {
	if r == nil || len(r.Rows) == 0 {
		return zeroValue
	}

	values := r.Rows[0].MetricValues
	idx := r.Column(metric, requested)
	if idx < 0 || idx >= len(values) || values[idx].Value == "" {
		return zeroValue
	}
	return values[idx].Value
}

// Summarize extracts sessions, users and event count from the first row of report.
//
// With no dimensions requested the API returns a single row whose metric values follow the
// header order. Zero rows, or a first row without values, yields [ZeroSummary].
func Summarize(report *Report, req ReportRequest) Summary {
	summary := ZeroSummary()
	if report == nil || len(report.Rows) == 0 || len(report.Rows[0].MetricValues) == 0 {
		return summary
	}

	summary.Sessions = report.Value(MetricSessions, req.Metrics)
	summary.Users = report.Value(MetricTotalUsers, req.Metrics)
	summary.EventCount = report.Value(MetricEventCount, req.Metrics)
	return summary
}
