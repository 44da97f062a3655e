package observability

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/danmuck/gamewire/internal/protocol"
	"github.com/danmuck/gamewire/internal/protocol/frame"
	"github.com/danmuck/gamewire/internal/protocol/messages"
	"github.com/danmuck/gamewire/internal/testutil/testlog"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("inspect", "GET", "/health", 200, 12*time.Millisecond)
	RecordHTTPRequest("inspect", "POST", "/decode", 400, 3*time.Millisecond)
}

func TestCodecMetricsLabels(t *testing.T) {
	testlog.Start(t)
	m := NewCodecMetrics(messages.Registry())

	ping := codecEncoded.WithLabelValues("CMSG_PING", "world")
	before := counterValue(t, ping)
	m.Encoded(messages.CMsgPing, frame.ChannelWorld, 8)
	if got := counterValue(t, ping); got != before+1 {
		t.Fatalf("encoded counter=%v want %v", got, before+1)
	}

	unknown := codecTrailing.WithLabelValues(unknownOpcodeLabel)
	before = counterValue(t, unknown)
	m.TrailingData(0xDEAD, 3)
	m.TrailingData(0xBEEF, 2)
	if got := counterValue(t, unknown); got != before+5 {
		t.Fatalf("trailing counter=%v want %v", got, before+5)
	}
}

func TestCodecMetricsErrorKinds(t *testing.T) {
	testlog.Start(t)
	m := NewCodecMetrics(messages.Registry())
	malformed := codecErrors.WithLabelValues("decode", "malformed")
	before := counterValue(t, malformed)
	m.DecodeFailed(messages.CMsgPing, fmt.Errorf("%w: short", protocol.ErrMalformedMessage))
	if got := counterValue(t, malformed); got != before+1 {
		t.Fatalf("error counter=%v want %v", got, before+1)
	}
}
