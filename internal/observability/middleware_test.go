package observability

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/danmuck/gamewire/internal/protocol"
	"github.com/danmuck/gamewire/internal/testutil/testlog"
)

func newAnnotatedRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(buf)))
	r.Use(RequestMetricsMiddleware("middleware-test"))
	r.POST("/decode", func(c *gin.Context) {
		AnnotateDecode(c, "CMSG_PING", fmt.Errorf("%w: short", protocol.ErrMalformedMessage))
		c.Status(http.StatusBadRequest)
	})
	r.POST("/unregistered", func(c *gin.Context) {
		AnnotateDecode(c, "", nil)
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func serve(r *gin.Engine, method, path string) {
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
}

func TestDecodeAnnotationLoggedAndCounted(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	r := newAnnotatedRouter(&buf)

	malformed := httpDecodes.WithLabelValues("middleware-test", "CMSG_PING", "malformed")
	unknown := httpDecodes.WithLabelValues("middleware-test", unknownOpcodeLabel, "none")
	beforeMalformed := counterValue(t, malformed)
	beforeUnknown := counterValue(t, unknown)

	serve(r, http.MethodPost, "/decode")
	line := buf.String()
	if !strings.Contains(line, `"opcode":"CMSG_PING"`) || !strings.Contains(line, `"decode_kind":"malformed"`) {
		t.Fatalf("decode fields missing from log: %s", line)
	}
	if !strings.Contains(line, `"level":"warn"`) {
		t.Fatalf("expected warn level for 400: %s", line)
	}

	serve(r, http.MethodPost, "/unregistered")
	if got := counterValue(t, malformed); got != beforeMalformed+1 {
		t.Fatalf("malformed counter=%v want %v", got, beforeMalformed+1)
	}
	if got := counterValue(t, unknown); got != beforeUnknown+1 {
		t.Fatalf("unknown counter=%v want %v", got, beforeUnknown+1)
	}
}

func TestUnannotatedRequestHasNoDecodeFields(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	serve(newAnnotatedRouter(&buf), http.MethodGet, "/health")
	if line := buf.String(); strings.Contains(line, "decode_kind") || !strings.Contains(line, `"status":200`) {
		t.Fatalf("unexpected log line: %s", line)
	}
}
