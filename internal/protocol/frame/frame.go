package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/gamewire/internal/protocol"
)

// HeaderLen is the fixed envelope header: opcode u32, channel u8, length u32.
const HeaderLen = 9

var (
	ErrShortHeader     = fmt.Errorf("%w: frame: short envelope header", protocol.ErrMalformedMessage)
	ErrShortPayload    = fmt.Errorf("%w: frame: short envelope payload", protocol.ErrMalformedMessage)
	ErrInvalidChannel  = fmt.Errorf("%w: frame: invalid channel", protocol.ErrMalformedMessage)
	ErrPayloadTooLarge = fmt.Errorf("%w: %w: frame: payload too large", protocol.ErrMalformedMessage, protocol.ErrLengthExceeded)
)

// Channel selects one of the logical connections multiplexed over a transport.
type Channel uint8

const (
	ChannelWorld    Channel = 0
	ChannelInstance Channel = 1
)

func (c Channel) Valid() bool {
	return c == ChannelWorld || c == ChannelInstance
}

func (c Channel) String() string {
	switch c {
	case ChannelWorld:
		return "world"
	case ChannelInstance:
		return "instance"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// ParseChannel maps a channel name back to its value.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "world":
		return ChannelWorld, nil
	case "instance":
		return ChannelInstance, nil
	default:
		return 0, fmt.Errorf("frame: unknown channel %q", s)
	}
}

// Header is the fixed wire header.
type Header struct {
	Opcode  uint32
	Channel Channel
	Length  uint32
}

// Envelope is one complete message on the wire.
type Envelope struct {
	Opcode  uint32
	Channel Channel
	Payload []byte
}

// Size returns the encoded size of e including its header.
func (e Envelope) Size() int {
	return HeaderLen + len(e.Payload)
}

// Limits constrains envelope decode/encode memory use.
type Limits struct {
	MaxPayloadBytes uint32
}

func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 64 * 1024,
	}
}

// ReadEnvelope reads one envelope. A clean end of stream before the first
// header byte is returned as io.EOF.
func ReadEnvelope(r io.Reader, limits Limits) (Envelope, error) {
	var fixed [HeaderLen]byte
	n, err := io.ReadFull(r, fixed[:])
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return Envelope{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Envelope{}, ErrShortHeader
		}
		return Envelope{}, err
	}

	h, err := DecodeHeader(fixed[:])
	if err != nil {
		return Envelope{}, err
	}
	if err := checkHeader(h, limits); err != nil {
		return Envelope{}, err
	}

	payload := make([]byte, h.Length)
	if h.Length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Envelope{}, ErrShortPayload
			}
			return Envelope{}, err
		}
	}

	return Envelope{Opcode: h.Opcode, Channel: h.Channel, Payload: payload}, nil
}

// WriteEnvelope writes e as header followed by payload.
func WriteEnvelope(w io.Writer, e Envelope, limits Limits) error {
	b, err := Marshal(e, limits)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Marshal returns the wire bytes of e.
func Marshal(e Envelope, limits Limits) ([]byte, error) {
	if !e.Channel.Valid() {
		return nil, ErrInvalidChannel
	}
	if uint64(len(e.Payload)) > uint64(limits.MaxPayloadBytes) {
		return nil, ErrPayloadTooLarge
	}
	h := Header{Opcode: e.Opcode, Channel: e.Channel, Length: uint32(len(e.Payload))}
	buf := make([]byte, HeaderLen, HeaderLen+len(e.Payload))
	putHeader(buf, h)
	return append(buf, e.Payload...), nil
}

// Unmarshal decodes the first envelope in b and returns the number of bytes
// it occupied. The payload is copied out of b.
func Unmarshal(b []byte, limits Limits) (Envelope, int, error) {
	if len(b) < HeaderLen {
		return Envelope{}, 0, ErrShortHeader
	}
	h, err := DecodeHeader(b[:HeaderLen])
	if err != nil {
		return Envelope{}, 0, err
	}
	if err := checkHeader(h, limits); err != nil {
		return Envelope{}, 0, err
	}
	if uint64(len(b)-HeaderLen) < uint64(h.Length) {
		return Envelope{}, 0, ErrShortPayload
	}
	end := HeaderLen + int(h.Length)
	payload := make([]byte, h.Length)
	copy(payload, b[HeaderLen:end])
	return Envelope{Opcode: h.Opcode, Channel: h.Channel, Payload: payload}, end, nil
}

func checkHeader(h Header, limits Limits) error {
	if !h.Channel.Valid() {
		return ErrInvalidChannel
	}
	if h.Length > limits.MaxPayloadBytes {
		return ErrPayloadTooLarge
	}
	return nil
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	putHeader(buf, h)
	return buf
}

func putHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Opcode)
	buf[4] = byte(h.Channel)
	binary.LittleEndian.PutUint32(buf[5:9], h.Length)
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderLen {
		return Header{}, fmt.Errorf("frame: invalid fixed header length: %d", len(b))
	}
	return Header{
		Opcode:  binary.LittleEndian.Uint32(b[0:4]),
		Channel: Channel(b[4]),
		Length:  binary.LittleEndian.Uint32(b[5:9]),
	}, nil
}
