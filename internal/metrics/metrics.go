package metrics

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsTotal counts submissions by engine host and outcome.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexnow_notifications_total",
			Help: "Total number of IndexNow submissions by outcome",
		},
		[]string{"engine", "outcome"},
	)

	// NotificationURLsTotal counts URLs sent per engine host.
	NotificationURLsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexnow_notification_urls_total",
			Help: "Total number of URLs carried by IndexNow submissions",
		},
		[]string{"engine"},
	)

	// NotificationDuration observes how long each submission took.
	NotificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "indexnow_notification_duration_seconds",
			Help:    "Duration of IndexNow submissions in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"engine"},
	)
)

// Outcome maps a Notify result to a low-cardinality label value:
// "ok", "connection_error" or the HTTP status code.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code, ok := indexnow.StatusCode(err); ok {
		return strconv.Itoa(code)
	}
	return "connection_error"
}

// RecordNotification updates the metrics for one submission.
func RecordNotification(engine string, urls int, d time.Duration, err error) {
	NotificationsTotal.WithLabelValues(engine, Outcome(err)).Inc()
	NotificationURLsTotal.WithLabelValues(engine).Add(float64(urls))
	NotificationDuration.WithLabelValues(engine).Observe(d.Seconds())
}

// Observer feeds the package metrics from an indexnow.Client.
type Observer struct{}

var _ indexnow.Observer = Observer{}

// ObserveNotification labels the metrics with the endpoint's hostname.
func (Observer) ObserveNotification(endpoint string, urls int, d time.Duration, err error) {
	engine := endpoint
	if u, parseErr := url.Parse(endpoint); parseErr == nil && u.Host != "" {
		engine = u.Hostname()
	}
	RecordNotification(engine, urls, d, err)
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for pickup by node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
