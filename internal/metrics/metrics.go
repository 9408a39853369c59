// Package metrics exposes ingestion counters in Prometheus format.
//
// Exported metrics:
//   - emgscope_lines_total            lines read from the link
//   - emgscope_lines_decoded_total    lines that matched the protocol
//   - emgscope_lines_dropped_total    lines skipped as noise
//   - emgscope_samples_total{channel} values appended per channel
//   - emgscope_link_up                1 while the link is live
//   - emgscope_state{state}           1 for the current classification
package metrics

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/logger"
	"github.com/basturkme/4IER-HMI/internal/monitor"
	"github.com/basturkme/4IER-HMI/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "emgscope"

// Collector implements monitor.Observer on top of a private registry, so
// several pipelines (tests) never collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	Lines   prometheus.Counter
	Decoded prometheus.Counter
	Dropped prometheus.Counter
	Samples *prometheus.CounterVec
	LinkUp  prometheus.Gauge
	State   *prometheus.GaugeVec
}

var _ monitor.Observer = (*Collector)(nil)

// New creates a collector with every metric registered. channels are
// pre-declared so they show up at zero before the first sample.
func New(channels []string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Lines read from the sensor link.",
		}),
		Decoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_decoded_total",
			Help:      "Lines that matched the configured protocol.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_dropped_total",
			Help:      "Lines skipped because they were not data.",
		}),
		Samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Values appended to each channel.",
		}, []string{"channel"}),
		LinkUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "link_up",
			Help:      "1 while the sensor link is live.",
		}),
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "1 for the current classification state, 0 for the others.",
		}, []string{"state"}),
	}

	c.registry.MustRegister(
		c.Lines, c.Decoded, c.Dropped, c.Samples, c.LinkUp, c.State,
		collectors.NewGoCollector(),
	)

	for _, ch := range channels {
		c.Samples.WithLabelValues(ch)
	}
	for _, st := range monitor.States {
		c.State.WithLabelValues(string(st))
	}
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) LineRead() {
	c.Lines.Inc()
}

func (c *Collector) LineDecoded(values []protocol.Value) {
	c.Decoded.Inc()
	for _, v := range values {
		c.Samples.WithLabelValues(v.Channel).Inc()
	}
}

func (c *Collector) LineDropped() {
	c.Dropped.Inc()
}

func (c *Collector) LinkChanged(state monitor.LinkState) {
	if state == monitor.LinkUp {
		c.LinkUp.Set(1)
		return
	}
	c.LinkUp.Set(0)
}

func (c *Collector) StateChanged(state monitor.State) {
	for _, st := range monitor.States {
		v := 0.0
		if st == state {
			v = 1
		}
		c.State.WithLabelValues(string(st)).Set(v)
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Server serves /metrics until Shutdown.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	done chan struct{}
}

// Listen binds addr and starts serving c on /metrics in the background.
// Binding errors are returned straight away.
func Listen(addr string, c *Collector, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Noop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't start the metrics endpoint on "+addr,
			"Pick a free port for metrics.addr, or leave it empty to turn metrics off")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	s := &Server{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:   ln,
		done: make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server: %v", err)
		}
	}()
	log.Info("metrics on http://%s/metrics", ln.Addr())

	return s, nil
}

// Addr returns the bound address, useful with port 0.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server and waits for it to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}
