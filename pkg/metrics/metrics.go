package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so several instances can coexist in one
// process. All recording methods are safe on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	DispenseOutcomes     *prometheus.CounterVec
	StockUnits           *prometheus.CounterVec
	PrescriptionsCreated prometheus.Counter
	PaymentsRecorded     *prometheus.CounterVec
	OrdersTotal          *prometheus.CounterVec
	LowStockBatches      prometheus.Gauge

	DBQueryDuration *prometheus.HistogramVec

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter
}

func NewCollector(serviceName string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{
		registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		DispenseOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "dispensing",
			Name:      "outcomes_total",
			Help:      "Dispense and update attempts by outcome: full, partial, shortfall or released.",
		}, []string{"outcome"}),

		StockUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "inventory",
			Name:      "stock_units_total",
			Help:      "Units moved through the ledgers by ledger and direction.",
		}, []string{"ledger", "direction"}),

		PrescriptionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "pharmacy",
			Name:      "prescriptions_created_total",
			Help:      "Total prescriptions created.",
		}),

		PaymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "pharmacy",
			Name:      "payments_total",
			Help:      "Prescription payments by method.",
		}, []string{"method"}),

		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "storefront",
			Name:      "orders_total",
			Help:      "Storefront orders by status they entered.",
		}, []string{"status"}),

		LowStockBatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "inventory",
			Name:      "low_stock_batches",
			Help:      "Medicine batches at or below their reorder level at the last alert check.",
		}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency distribution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"operation", "table"}),

		AuditEntriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),
	}

	reg.MustRegister(
		c.RequestsTotal, c.RequestDuration, c.InFlightGauge,
		c.DispenseOutcomes, c.StockUnits, c.PrescriptionsCreated, c.PaymentsRecorded,
		c.OrdersTotal, c.LowStockBatches,
		c.DBQueryDuration,
		c.AuditEntriesTotal, c.AuditBufferDropped,
	)
	return c
}

// Register adds extra collectors, such as database pool statistics.
func (c *Collector) Register(cs ...prometheus.Collector) error {
	for _, col := range cs {
		if err := c.registry.Register(col); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RequestStarted and RequestFinished bracket one HTTP request. path is the
// route template, never the raw URL.
func (c *Collector) RequestStarted() {
	if c == nil {
		return
	}
	c.InFlightGauge.Inc()
}

func (c *Collector) RequestFinished(method, path string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.InFlightGauge.Dec()
	code := strconv.Itoa(status)
	c.RequestsTotal.WithLabelValues(method, path, code).Inc()
	c.RequestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}

func (c *Collector) Dispense(outcome string) {
	if c == nil {
		return
	}
	c.DispenseOutcomes.WithLabelValues(outcome).Inc()
}

// Stock records units reserved ("out") or released ("in") on a ledger.
func (c *Collector) Stock(ledger, direction string, units int) {
	if c == nil || units <= 0 {
		return
	}
	c.StockUnits.WithLabelValues(ledger, direction).Add(float64(units))
}

func (c *Collector) PrescriptionCreated() {
	if c == nil {
		return
	}
	c.PrescriptionsCreated.Inc()
}

func (c *Collector) Payment(method string) {
	if c == nil {
		return
	}
	c.PaymentsRecorded.WithLabelValues(method).Inc()
}

func (c *Collector) Order(status string) {
	if c == nil {
		return
	}
	c.OrdersTotal.WithLabelValues(status).Inc()
}

func (c *Collector) SetLowStock(n int) {
	if c == nil {
		return
	}
	c.LowStockBatches.Set(float64(n))
}

func (c *Collector) AuditWritten() {
	if c == nil {
		return
	}
	c.AuditEntriesTotal.Inc()
}

func (c *Collector) AuditDropped() {
	if c == nil {
		return
	}
	c.AuditBufferDropped.Inc()
}
