package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/danmuck/gamewire/internal/protocol"
)

const (
	decodeOpcodeKey = "gamewire.decode.opcode"
	decodeKindKey   = "gamewire.decode.kind"
)

// AnnotateDecode attaches a decode outcome to the request so the logger and
// metrics middleware can report it. opcode should be a registry name or
// "unknown"; err nil records kind "none".
func AnnotateDecode(c *gin.Context, opcode string, err error) {
	if opcode == "" {
		opcode = unknownOpcodeLabel
	}
	c.Set(decodeOpcodeKey, opcode)
	c.Set(decodeKindKey, protocol.Kind(err))
}

func decodeAnnotation(c *gin.Context) (opcode, kind string, ok bool) {
	opcode = c.GetString(decodeOpcodeKey)
	kind = c.GetString(decodeKindKey)
	return opcode, kind, kind != ""
}

// RequestLogger logs one line per request, at warn for 4xx and error for 5xx.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("bytes", c.Writer.Size())
		if opcode, kind, ok := decodeAnnotation(c); ok {
			event = event.Str("opcode", opcode).Str("decode_kind", kind)
		}
		event.
			Strs("errors", c.Errors.Errors()).
			Msg("http_request")
	}
}

func RequestMetricsMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		RecordHTTPRequest(service, c.Request.Method, path, c.Writer.Status(), time.Since(start))
		if opcode, kind, ok := decodeAnnotation(c); ok {
			RecordDecodeRequest(service, opcode, kind)
		}
	}
}
