package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("pharmaflow")
	b := NewCollector("pharmaflow")

	a.Dispense("partial")
	a.Dispense("partial")
	b.Dispense("full")

	if body := scrape(t, a); !strings.Contains(body, `pharmaflow_dispensing_outcomes_total{outcome="partial"} 2`) {
		t.Errorf("a is missing its partial outcomes:\n%s", body)
	}
	if body := scrape(t, b); strings.Contains(body, `outcome="partial"`) {
		t.Errorf("b saw outcomes recorded on a:\n%s", body)
	}
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Dispense("full")
	c.Stock("medicine", "out", 3)
	c.PrescriptionCreated()
	c.Payment("cash")
	c.Order("pending")
	c.SetLowStock(4)
	c.AuditWritten()
	c.AuditDropped()
	c.RequestStarted()
	c.RequestFinished("GET", "/health", 200, time.Millisecond)
}

func TestHandlerExposesDomainSeries(t *testing.T) {
	c := NewCollector("pharmaflow")
	c.Stock("medicine", "out", 5)

	body := scrape(t, c)
	if !strings.Contains(body, `pharmaflow_inventory_stock_units_total{direction="out",ledger="medicine"} 5`) {
		t.Errorf("stock series missing from exposition:\n%s", body)
	}
}

func TestRequestSeriesUseRouteTemplate(t *testing.T) {
	c := NewCollector("pharmaflow")
	c.RequestStarted()
	c.RequestFinished("POST", "/api/v1/prescriptions/:id/items", 409, 20*time.Millisecond)

	body := scrape(t, c)
	want := `pharmaflow_http_requests_total{method="POST",path="/api/v1/prescriptions/:id/items",status="409"} 1`
	if !strings.Contains(body, want) {
		t.Errorf("request series missing from exposition:\n%s", body)
	}
	if !strings.Contains(body, "pharmaflow_http_in_flight_requests 0") {
		t.Errorf("in-flight gauge did not return to zero:\n%s", body)
	}
}
