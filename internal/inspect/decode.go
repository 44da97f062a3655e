package inspect

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/danmuck/gamewire/internal/protocol"
	"github.com/danmuck/gamewire/internal/protocol/frame"
	"github.com/danmuck/gamewire/internal/protocol/message"
)

var ErrBadInput = errors.New("inspect: bad input")

// Decoded is the JSON view of one decoded envelope. Consumed counts the
// input bytes the envelope occupied when it was unframed from raw bytes.
type Decoded struct {
	Opcode     uint32 `json:"opcode"`
	Name       string `json:"name"`
	Channel    string `json:"channel"`
	PayloadLen int    `json:"payload_len"`
	Consumed   int    `json:"consumed,omitempty"`
	Message    any    `json:"message"`
}

// OpcodeInfo is the JSON view of a registry entry.
type OpcodeInfo struct {
	Opcode    uint32 `json:"opcode"`
	Hex       string `json:"hex"`
	Name      string `json:"name"`
	Channel   string `json:"channel"`
	Direction string `json:"direction"`
	Decodable bool   `json:"decodable"`
}

func Opcodes(reg *message.Registry) []OpcodeInfo {
	descs := reg.Descriptors()
	out := make([]OpcodeInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, OpcodeInfo{
			Opcode:    d.Opcode,
			Hex:       fmt.Sprintf("%#06x", d.Opcode),
			Name:      d.Name,
			Channel:   d.Channel.String(),
			Direction: d.Direction.String(),
			Decodable: d.Decodable(),
		})
	}
	return out
}

// ParseHex accepts hex with optional 0x prefix and embedded whitespace.
func ParseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	return b, nil
}

// DecodeEnvelope unframes the first envelope in raw and decodes it.
func DecodeEnvelope(codec *message.Codec, raw []byte) (Decoded, error) {
	env, n, err := frame.Unmarshal(raw, codec.FrameLimits())
	if err != nil {
		return Decoded{}, err
	}
	out, err := DecodePayload(codec, env)
	out.Consumed = n
	return out, err
}

func DecodePayload(codec *message.Codec, env frame.Envelope) (Decoded, error) {
	out := Decoded{
		Opcode:     env.Opcode,
		Name:       codec.Registry().Name(env.Opcode),
		Channel:    env.Channel.String(),
		PayloadLen: len(env.Payload),
	}
	msg, err := codec.Decode(env)
	if err != nil {
		return out, err
	}
	out.Message = msg
	return out, nil
}

// StatusFor maps a decode error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadInput):
		return http.StatusBadRequest
	case errors.Is(err, protocol.ErrUnknownOpcode):
		return http.StatusNotFound
	case errors.Is(err, protocol.ErrEncodingInvariant):
		return http.StatusInternalServerError
	case errors.Is(err, protocol.ErrMalformedMessage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
