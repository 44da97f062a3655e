package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danmuck/gamewire/internal/protocol"
	"github.com/danmuck/gamewire/internal/protocol/frame"
	"github.com/danmuck/gamewire/internal/protocol/message"
)

const unknownOpcodeLabel = "unknown"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamewire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamewire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDecodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamewire",
			Subsystem: "http",
			Name:      "decode_requests_total",
			Help:      "Decode requests served over HTTP by opcode and outcome.",
		},
		[]string{"service", "opcode", "kind"},
	)
	codecEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamewire",
			Subsystem: "codec",
			Name:      "encoded_total",
			Help:      "Messages encoded into envelopes.",
		},
		[]string{"opcode", "channel"},
	)
	codecDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamewire",
			Subsystem: "codec",
			Name:      "decoded_total",
			Help:      "Envelopes decoded into messages.",
		},
		[]string{"opcode", "channel"},
	)
	codecErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamewire",
			Subsystem: "codec",
			Name:      "errors_total",
			Help:      "Rejected encodes and decodes by error kind.",
		},
		[]string{"direction", "kind"},
	)
	codecTrailing = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamewire",
			Subsystem: "codec",
			Name:      "trailing_bytes_total",
			Help:      "Unread payload bytes left after a successful decode.",
		},
		[]string{"opcode"},
	)
	codecPayload = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamewire",
			Subsystem: "codec",
			Name:      "payload_bytes",
			Help:      "Payload size of coded messages.",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 8),
		},
		[]string{"direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration, httpDecodes,
			codecEncoded, codecDecoded, codecErrors, codecTrailing, codecPayload,
		)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDecodeRequest counts one decode request. opcode must come from a
// bounded set: a registry name or "unknown".
func RecordDecodeRequest(service, opcode, kind string) {
	RegisterMetrics()
	httpDecodes.WithLabelValues(service, opcode, kind).Inc()
}

// CodecMetrics records codec outcomes. Opcodes are labelled by registry
// name; opcodes outside the registry share one label so peers cannot grow
// the series set.
type CodecMetrics struct {
	registry *message.Registry
}

var _ message.Observer = (*CodecMetrics)(nil)

func NewCodecMetrics(registry *message.Registry) *CodecMetrics {
	RegisterMetrics()
	return &CodecMetrics{registry: registry}
}

func (m *CodecMetrics) opcodeLabel(opcode uint32) string {
	if m.registry == nil {
		return unknownOpcodeLabel
	}
	if d, ok := m.registry.Lookup(opcode); ok {
		return d.Name
	}
	return unknownOpcodeLabel
}

func (m *CodecMetrics) Encoded(opcode uint32, channel frame.Channel, size int) {
	codecEncoded.WithLabelValues(m.opcodeLabel(opcode), channel.String()).Inc()
	codecPayload.WithLabelValues("encode").Observe(float64(size))
}

func (m *CodecMetrics) Decoded(opcode uint32, channel frame.Channel, size int) {
	codecDecoded.WithLabelValues(m.opcodeLabel(opcode), channel.String()).Inc()
	codecPayload.WithLabelValues("decode").Observe(float64(size))
}

func (m *CodecMetrics) EncodeFailed(_ uint32, err error) {
	codecErrors.WithLabelValues("encode", protocol.Kind(err)).Inc()
}

func (m *CodecMetrics) DecodeFailed(_ uint32, err error) {
	codecErrors.WithLabelValues("decode", protocol.Kind(err)).Inc()
}

func (m *CodecMetrics) TrailingData(opcode uint32, bytes int) {
	codecTrailing.WithLabelValues(m.opcodeLabel(opcode)).Add(float64(bytes))
}
