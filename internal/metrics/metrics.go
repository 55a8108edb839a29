// Package metrics собирает метрики Prometheus маркетплейса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder — то, что сервисы знают о метриках.
type Recorder interface {
	LicenseIssued()
	PaymentEvent(eventType, outcome string)
	StatusChanged(status string)
}

// Collector — реализация Recorder поверх Prometheus.
type Collector struct {
	licensesIssued prometheus.Counter
	paymentEvents  *prometheus.CounterVec
	statusChanges  *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewCollector создаёт Collector и регистрирует метрики в reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		licensesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_licenses_issued_total",
			Help: "Количество выданных лицензий",
		}),
		paymentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_payment_events_total",
			Help: "События платёжного провайдера по типу и результату",
		}, []string{"type", "outcome"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_subscription_status_changes_total",
			Help: "Смены статуса подписки по новому статусу",
		}, []string{"status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketplace_http_request_duration_seconds",
			Help:    "Длительность HTTP‑запросов",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(c.licensesIssued, c.paymentEvents, c.statusChanges, c.httpDuration)
	return c
}

// LicenseIssued учитывает выданную лицензию.
func (c *Collector) LicenseIssued() {
	c.licensesIssued.Inc()
}

// PaymentEvent учитывает обработанное событие провайдера.
func (c *Collector) PaymentEvent(eventType, outcome string) {
	c.paymentEvents.WithLabelValues(eventType, outcome).Inc()
}

// StatusChanged учитывает смену статуса подписки.
func (c *Collector) StatusChanged(status string) {
	c.statusChanges.WithLabelValues(status).Inc()
}

// Middleware измеряет длительность запросов. В метку route пишется шаблон chi, а не сырой путь.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

// Handler возвращает обработчик /metrics.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop — Recorder, который ничего не делает.
type Nop struct{}

func (Nop) LicenseIssued()           {}
func (Nop) PaymentEvent(_, _ string) {}
func (Nop) StatusChanged(_ string)   {}
