package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Collector counts requests, 5xx responses and business rejections.
type Collector struct {
	requests     uint64
	errors       uint64
	applications uint64
	rejections   uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncRequests() {
	atomic.AddUint64(&c.requests, 1)
}

func (c *Collector) IncErrors() {
	atomic.AddUint64(&c.errors, 1)
}

func (c *Collector) IncApplications() {
	atomic.AddUint64(&c.applications, 1)
}

// IncRejections counts apply attempts refused as closed, ineligible or duplicate.
func (c *Collector) IncRejections() {
	atomic.AddUint64(&c.rejections, 1)
}

type Snapshot struct {
	Requests     uint64
	Errors       uint64
	Applications uint64
	Rejections   uint64
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Requests:     atomic.LoadUint64(&c.requests),
		Errors:       atomic.LoadUint64(&c.errors),
		Applications: atomic.LoadUint64(&c.applications),
		Rejections:   atomic.LoadUint64(&c.rejections),
	}
}

type Handler struct {
	collector *Collector
}

func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	var snap Snapshot
	if h.collector != nil {
		snap = h.collector.Snapshot()
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	writeCounter(w, "placement_http_requests_total", "Total number of HTTP requests.", snap.Requests)
	writeCounter(w, "placement_http_errors_total", "Total number of 5xx HTTP responses.", snap.Errors)
	writeCounter(w, "placement_applications_total", "Applications accepted for review.", snap.Applications)
	writeCounter(w, "placement_application_rejections_total", "Apply attempts refused by eligibility rules.", snap.Rejections)
}

func writeCounter(w http.ResponseWriter, name, help string, value uint64) {
	_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	_, _ = fmt.Fprintf(w, "# TYPE %s counter\n", name)
	_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
}
