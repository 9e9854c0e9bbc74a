package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	collector := NewCollector()
	collector.IncRequests()
	collector.IncRequests()
	collector.IncErrors()
	collector.IncRejections()

	rec := httptest.NewRecorder()
	NewHandler(collector).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, line := range []string{
		"placement_http_requests_total 2",
		"placement_http_errors_total 1",
		"placement_applications_total 0",
		"placement_application_rejections_total 1",
	} {
		if !strings.Contains(body, line) {
			t.Fatalf("expected %q in output:\n%s", line, body)
		}
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("expected text/plain, got %q", got)
	}
}
