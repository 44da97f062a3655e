package message

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/gamewire/internal/protocol"
	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
	"github.com/danmuck/gamewire/internal/protocol/frame"
)

// Observer receives codec outcomes, typically for metrics.
type Observer interface {
	Encoded(opcode uint32, channel frame.Channel, size int)
	Decoded(opcode uint32, channel frame.Channel, size int)
	EncodeFailed(opcode uint32, err error)
	DecodeFailed(opcode uint32, err error)
	TrailingData(opcode uint32, bytes int)
}

type nopObserver struct{}

func (nopObserver) Encoded(uint32, frame.Channel, int) {}
func (nopObserver) Decoded(uint32, frame.Channel, int) {}
func (nopObserver) EncodeFailed(uint32, error)         {}
func (nopObserver) DecodeFailed(uint32, error)         {}
func (nopObserver) TrailingData(uint32, int)           {}

// Options configures a Codec. The zero value is usable.
type Options struct {
	Limits      bitbuf.Limits
	FrameLimits frame.Limits
	// Strict panics on encode-side invariant violations. Decode never panics.
	Strict   bool
	Logger   *zerolog.Logger
	Observer Observer
}

func DefaultOptions() Options {
	return Options{
		Limits:      bitbuf.DefaultLimits(),
		FrameLimits: frame.DefaultLimits(),
	}
}

// Codec encodes outbound messages and decodes inbound envelopes against a
// registry. It keeps no state between calls and is safe for concurrent use.
type Codec struct {
	registry *Registry
	opts     Options
	logger   zerolog.Logger
	observer Observer
}

func NewCodec(registry *Registry, opts Options) *Codec {
	if opts.FrameLimits.MaxPayloadBytes == 0 {
		opts.FrameLimits = frame.DefaultLimits()
	}
	c := &Codec{
		registry: registry,
		opts:     opts,
		observer: opts.Observer,
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "codec").Logger()
	} else {
		c.logger = log.With().Str("component", "codec").Logger()
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	return c
}

func (c *Codec) Registry() *Registry {
	return c.registry
}

func (c *Codec) FrameLimits() frame.Limits {
	return c.opts.FrameLimits
}

// Encode writes msg into a fresh payload and returns its envelope. Payloads
// larger than the frame limit are rejected here rather than at framing.
func (c *Codec) Encode(msg Encodable) (frame.Envelope, error) {
	opcode := msg.Opcode()
	channel := msg.Channel()

	w := bitbuf.AcquireWriter()
	defer bitbuf.ReleaseWriter(w)

	if !channel.Valid() {
		w.Failf("message: invalid channel %s", channel)
	} else {
		msg.Write(w)
		w.FlushBits()
	}
	if limit := c.opts.FrameLimits.MaxPayloadBytes; uint64(w.Len()) > uint64(limit) {
		w.Failf("%w: %d bytes, limit %d", frame.ErrPayloadTooLarge, w.Len(), limit)
	}
	if err := w.Err(); err != nil {
		return frame.Envelope{}, c.encodeFailed(opcode, err)
	}

	payload := make([]byte, w.Len())
	copy(payload, w.Bytes())
	c.observer.Encoded(opcode, channel, len(payload))
	return frame.Envelope{Opcode: opcode, Channel: channel, Payload: payload}, nil
}

func (c *Codec) encodeFailed(opcode uint32, err error) error {
	err = &EncodeError{Opcode: opcode, Err: err}
	c.observer.EncodeFailed(opcode, err)
	c.logger.Error().
		Err(err).
		Uint32("opcode", opcode).
		Str("name", c.registry.Name(opcode)).
		Msg("encode rejected")
	if c.opts.Strict && protocol.IsInvariant(err) {
		panic(err)
	}
	return err
}

// Decode looks up env.Opcode and reads the payload into a new message. On
// failure it returns a nil message, never a partially populated one.
func (c *Codec) Decode(env frame.Envelope) (Decodable, error) {
	desc, ok := c.registry.Lookup(env.Opcode)
	if !ok || !desc.Decodable() {
		return nil, c.decodeFailed(env, desc, fmt.Errorf("%w: %#04x", protocol.ErrUnknownOpcode, env.Opcode))
	}
	if env.Channel != desc.Channel {
		return nil, c.decodeFailed(env, desc, fmt.Errorf("%w: got %s want %s", ErrChannelMismatch, env.Channel, desc.Channel))
	}

	r := bitbuf.NewReaderLimits(env.Payload, c.opts.Limits)
	msg, err := readMessage(desc, r)
	if err != nil {
		return nil, c.decodeFailed(env, desc, err)
	}

	if r.Remaining() > 0 || r.PendingValue() != 0 {
		c.observer.TrailingData(env.Opcode, r.Remaining())
		c.logger.Debug().
			Uint32("opcode", env.Opcode).
			Str("name", desc.Name).
			Int("trailing_bytes", r.Remaining()).
			Int("pending_bits", r.PendingBits()).
			Msg("trailing data ignored")
	}
	c.observer.Decoded(env.Opcode, env.Channel, len(env.Payload))
	return msg, nil
}

func readMessage(desc Descriptor, r *bitbuf.Reader) (msg Decodable, err error) {
	defer func() {
		if p := recover(); p != nil {
			msg = nil
			err = fmt.Errorf("%w: panic in %s.Read: %v", protocol.ErrEncodingInvariant, desc.Name, p)
		}
	}()
	msg = desc.New()
	if err := msg.Read(r); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *Codec) decodeFailed(env frame.Envelope, desc Descriptor, err error) error {
	err = &DecodeError{Opcode: env.Opcode, Name: desc.Name, Err: err}
	c.observer.DecodeFailed(env.Opcode, err)
	event := c.logger.Warn()
	if protocol.IsInvariant(err) {
		event = c.logger.Error()
	}
	event.
		Err(err).
		Uint32("opcode", env.Opcode).
		Str("channel", env.Channel.String()).
		Int("payload_len", len(env.Payload)).
		Str("kind", protocol.Kind(err)).
		Msg("decode rejected")
	return err
}

// WriteTo encodes msg and writes it to w as one envelope.
func (c *Codec) WriteTo(w io.Writer, msg Encodable) error {
	env, err := c.Encode(msg)
	if err != nil {
		return err
	}
	return frame.WriteEnvelope(w, env, c.opts.FrameLimits)
}

// ReadFrom reads one envelope from r and decodes it. A clean end of stream
// is returned as io.EOF.
func (c *Codec) ReadFrom(r io.Reader) (Decodable, error) {
	env, err := frame.ReadEnvelope(r, c.opts.FrameLimits)
	if err != nil {
		return nil, err
	}
	return c.Decode(env)
}
