package inspect

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/gamewire/internal/observability"
	"github.com/danmuck/gamewire/internal/protocol/frame"
)

// decodeRequest carries either a whole envelope or its parts.
type decodeRequest struct {
	Envelope string  `json:"envelope"`
	Opcode   *uint32 `json:"opcode"`
	Channel  string  `json:"channel"`
	Payload  string  `json:"payload"`
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": serviceName,
			"opcodes": s.codec.Registry().Len(),
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/opcodes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"opcodes": Opcodes(s.codec.Registry())})
	})

	s.router.POST("/decode", s.handleDecode)
}

func (s *Server) handleDecode(c *gin.Context) {
	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", ErrBadInput, err))
		return
	}

	var (
		out Decoded
		err error
	)
	switch {
	case req.Envelope != "" && req.Opcode != nil:
		err = fmt.Errorf("%w: envelope and opcode are exclusive", ErrBadInput)
	case req.Envelope != "":
		var raw []byte
		if raw, err = ParseHex(req.Envelope); err == nil {
			out, err = DecodeEnvelope(s.codec, raw)
		}
	case req.Opcode != nil:
		out, err = s.decodeParts(req)
	default:
		err = fmt.Errorf("%w: envelope or opcode required", ErrBadInput)
	}
	observability.AnnotateDecode(c, s.opcodeLabel(out.Opcode), err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// opcodeLabel returns the registry name, or "" for opcodes outside it.
func (s *Server) opcodeLabel(opcode uint32) string {
	if d, ok := s.codec.Registry().Lookup(opcode); ok {
		return d.Name
	}
	return ""
}

func (s *Server) decodeParts(req decodeRequest) (Decoded, error) {
	channel := frame.ChannelWorld
	if req.Channel != "" {
		ch, err := frame.ParseChannel(req.Channel)
		if err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", ErrBadInput, err)
		}
		channel = ch
	}
	payload, err := ParseHex(req.Payload)
	if err != nil {
		return Decoded{}, err
	}
	if uint64(len(payload)) > uint64(s.codec.FrameLimits().MaxPayloadBytes) {
		return Decoded{}, frame.ErrPayloadTooLarge
	}
	return DecodePayload(s.codec, frame.Envelope{Opcode: *req.Opcode, Channel: channel, Payload: payload})
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(StatusFor(err), gin.H{"error": err.Error()})
}
