// Package message defines the contract concrete message types implement and
// the codec that moves them between values and envelopes.
package message

import (
	"fmt"

	"github.com/danmuck/gamewire/internal/protocol"
	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
	"github.com/danmuck/gamewire/internal/protocol/frame"
)

// Message declares where a message travels.
type Message interface {
	Opcode() uint32
	Channel() frame.Channel
}

// Encodable is an outbound message. Write reports problems through the
// writer's sticky error.
type Encodable interface {
	Message
	Write(w *bitbuf.Writer)
}

// Decodable is an inbound message. Read fills the receiver, which starts as
// the zero value produced by its descriptor.
type Decodable interface {
	Message
	Read(r *bitbuf.Reader) error
}

// Direction tells which peer originates a message.
type Direction uint8

const (
	// ClientToServer messages are decoded by the server.
	ClientToServer Direction = iota + 1
	// ServerToClient messages are encoded by the server.
	ServerToClient
	// Bidirectional covers symmetric messages.
	Bidirectional
)

func (d Direction) String() string {
	switch d {
	case ClientToServer:
		return "client"
	case ServerToClient:
		return "server"
	case Bidirectional:
		return "both"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

var ErrChannelMismatch = fmt.Errorf("%w: message: channel mismatch", protocol.ErrMalformedMessage)

// DecodeError annotates a failed decode with the message it was for.
type DecodeError struct {
	Opcode uint32
	Name   string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("message: decode opcode=%#04x: %v", e.Opcode, e.Err)
	}
	return fmt.Sprintf("message: decode %s (opcode=%#04x): %v", e.Name, e.Opcode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError annotates a failed encode with the message it was for.
type EncodeError struct {
	Opcode uint32
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("message: encode opcode=%#04x: %v", e.Opcode, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
