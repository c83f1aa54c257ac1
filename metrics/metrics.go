// Package metrics exposes session counters for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "melody"

// Recorder holds every collector a session updates. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	phrases  *prometheus.CounterVec
	decodes  *prometheus.CounterVec
	moves    *prometheus.CounterVec
	retries  *prometheus.CounterVec
	search   prometheus.Histogram
	dropped  prometheus.Counter
	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Recorder{
		phrases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phrases_captured_total",
			Help:      "Phrases closed by the segmenter, by boundary policy.",
		}, []string{"boundary"}),
		decodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phrase_decodes_total",
			Help:      "Phrase decode attempts by kind and result.",
		}, []string{"kind", "result"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Moves pushed to the board, by actor.",
		}, []string{"actor"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retry earcons played, by reason.",
		}, []string{"reason"}),
		search: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_search_seconds",
			Help:      "Wall time of engine move searches.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 0.75, 1, 2, 5},
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_events_dropped_total",
			Help:      "MIDI events dropped because the input queue was full.",
		}),
		gatherer: reg,
	}
	for _, c := range []prometheus.Collector{r.phrases, r.decodes, r.moves, r.retries, r.search, r.dropped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) Phrase(boundary string) {
	if r == nil {
		return
	}
	r.phrases.WithLabelValues(boundary).Inc()
}

// Decode records a classifier outcome; kind is square, castling or promotion.
func (r *Recorder) Decode(kind string, ok bool) {
	if r == nil {
		return
	}
	result := "miss"
	if ok {
		result = "hit"
	}
	r.decodes.WithLabelValues(kind, result).Inc()
}

func (r *Recorder) Move(actor string) {
	if r == nil {
		return
	}
	r.moves.WithLabelValues(actor).Inc()
}

func (r *Recorder) Retry(reason string) {
	if r == nil {
		return
	}
	r.retries.WithLabelValues(reason).Inc()
}

func (r *Recorder) Search(d time.Duration) {
	if r == nil {
		return
	}
	r.search.Observe(d.Seconds())
}

// Dropped adds the events lost since the previous call.
func (r *Recorder) Dropped(n uint64) {
	if r == nil || n == 0 {
		return
	}
	r.dropped.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
