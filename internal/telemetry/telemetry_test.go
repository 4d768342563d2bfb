// Package telemetry tests for the metrics registry.
package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
)

// TestHandler verifies the metrics endpoint serves registered series.
func TestHandler(t *testing.T) {
	CyclesRun.WithLabelValues("success").Inc()
	ItemsProcessed.WithLabelValues("synced").Inc()
	SubmissionsCreated.Inc()
	CycleDuration.Observe(0.05)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, metric := range []string{
		"catalog_sync_cycles_total",
		"catalog_sync_items_total",
		"catalog_sync_cycle_duration_seconds",
		"catalog_submissions_created_total",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected metric %s in output", metric)
		}
	}
}
