// Package observability exposes interview client metrics in Prometheus format.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/anshc022/vocahire/internal/protocol"
)

const namespace = "vocahire"

// Metrics groups all Prometheus instruments used by the client. A nil
// *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	Transitions        *prometheus.CounterVec
	FramesReceived     *prometheus.CounterVec
	AudioChunksSent    prometheus.Counter
	AudioBytesSent     prometheus.Counter
	PlaybackQueueDepth prometheus.Gauge
	SummaryFetches     *prometheus.CounterVec
	Faults             *prometheus.CounterVec
}

// NewMetrics registers every instrument on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Session state transitions by source and target state.",
		}, []string{"from", "to"}),
		FramesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Inbound channel frames by decoded kind.",
		}, []string{"kind"}),
		AudioChunksSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_chunks_sent_total",
			Help:      "Microphone chunks written to the channel.",
		}),
		AudioBytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_sent_total",
			Help:      "Microphone bytes written to the channel.",
		}),
		PlaybackQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playback_queue_depth",
			Help:      "Inbound audio buffers waiting to play.",
		}),
		SummaryFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_fetch_total",
			Help:      "Summary fetches by outcome.",
		}, []string{"outcome"}),
		Faults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Session faults by kind.",
		}, []string{"kind"}),
	}
}

// ObserveTransition counts one state change.
func (m *Metrics) ObserveTransition(from, to fsm.State) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveFrame counts one inbound frame.
func (m *Metrics) ObserveFrame(kind protocol.Kind) {
	if m == nil {
		return
	}
	m.FramesReceived.WithLabelValues(string(kind)).Inc()
}

// ObserveUplink adds the totals of one finished recording.
func (m *Metrics) ObserveUplink(chunks int, bytes int64) {
	if m == nil {
		return
	}
	m.AudioChunksSent.Add(float64(chunks))
	m.AudioBytesSent.Add(float64(bytes))
}

// SetQueueDepth records the current inbound queue length.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.PlaybackQueueDepth.Set(float64(n))
}

// ObserveSummaryFetch counts one summary fetch ("ok" or "error").
func (m *Metrics) ObserveSummaryFetch(outcome string) {
	if m == nil {
		return
	}
	m.SummaryFetches.WithLabelValues(outcome).Inc()
}

// ObserveFault counts one fault (permission, channel, capture, playback, summary).
func (m *Metrics) ObserveFault(kind string) {
	if m == nil {
		return
	}
	m.Faults.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
