// Package metrics exports scan counters over HTTP for Prometheus, together
// with health and status endpoints.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"badgectl/session"
)

// Config holds the HTTP listener settings. An empty Listen disables it.
type Config struct {
	Listen string `yaml:"listen"`
}

// StatusFunc reports what the controller is doing.
type StatusFunc func() session.Snapshot

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry  *prometheus.Registry
	scans     prometheus.Counter
	responses *prometheus.CounterVec
	latency   prometheus.Histogram
	status    StatusFunc
	started   time.Time
}

// New creates and registers the collectors.
func New(status StatusFunc) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "badgectl_scans_total",
			Help: "Total number of credentials read",
		}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badgectl_responses_total",
			Help: "Host responses by classification",
		}, []string{"code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "badgectl_response_seconds",
			Help:    "Time spent waiting for the host",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2, 3},
		}),
		status:  status,
		started: time.Now(),
	}
	m.registry.MustRegister(
		m.scans,
		m.responses,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records a completed session.
func (m *Metrics) Observe(s *session.Session) {
	m.scans.Inc()
	m.responses.WithLabelValues(s.Code.String()).Inc()
	m.latency.Observe(s.Waited.Seconds())
}

// Router returns the HTTP routes.
func (m *Metrics) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/status", m.handleStatus).Methods("GET")
	return r
}

type statusBody struct {
	State      string `json:"state"`
	SessionID  string `json:"session_id,omitempty"`
	Credential string `json:"credential,omitempty"`
	UptimeSecs int64  `json:"uptime_seconds"`
}

func (m *Metrics) handleStatus(w http.ResponseWriter, r *http.Request) {
	body := statusBody{State: session.Idle.String()}
	if m.status != nil {
		snap := m.status()
		body.State = snap.State.String()
		body.SessionID = snap.SessionID
		body.Credential = snap.Credential
	}
	body.UptimeSecs = int64(time.Since(m.started).Seconds())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Write status: %v", err)
	}
}

// Serve listens on cfg.Listen until ctx is done. It returns nil at once when
// no address is configured.
func (m *Metrics) Serve(ctx context.Context, cfg Config) error {
	if cfg.Listen == "" {
		log.Println("Metrics disabled (no listen address)")
		return nil
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.Printf("Metrics listening on %s", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
