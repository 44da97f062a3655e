package message

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/gamewire/internal/protocol"
	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
	"github.com/danmuck/gamewire/internal/protocol/frame"
	"github.com/danmuck/gamewire/internal/testutil/testlog"
)

const (
	opFlags   uint32 = 0x0100
	opBroken  uint32 = 0x0101
	opPanics  uint32 = 0x0102
	opOutOnly uint32 = 0x0103
)

// flagsMsg ends on bits without flushing so the codec's final flush is
// observable.
type flagsMsg struct {
	Counter uint32
	Urgent  bool
	Muted   bool
}

func (*flagsMsg) Opcode() uint32         { return opFlags }
func (*flagsMsg) Channel() frame.Channel { return frame.ChannelWorld }

func (m *flagsMsg) Write(w *bitbuf.Writer) {
	w.WriteUint32(m.Counter)
	w.WriteBit(m.Urgent)
	w.WriteBit(m.Muted)
}

func (m *flagsMsg) Read(r *bitbuf.Reader) error {
	var err error
	if m.Counter, err = r.ReadUint32(); err != nil {
		return err
	}
	if m.Urgent, err = r.ReadBit(); err != nil {
		return err
	}
	m.Muted, err = r.ReadBit()
	return err
}

// brokenMsg writes an aligned field over pending bits.
type brokenMsg struct{}

func (brokenMsg) Opcode() uint32         { return opBroken }
func (brokenMsg) Channel() frame.Channel { return frame.ChannelWorld }
func (brokenMsg) Write(w *bitbuf.Writer) {
	w.WriteBit(true)
	w.WriteUint16(1)
}

type panicMsg struct{}

func (*panicMsg) Opcode() uint32              { return opPanics }
func (*panicMsg) Channel() frame.Channel      { return frame.ChannelInstance }
func (*panicMsg) Read(r *bitbuf.Reader) error { panic("index out of range") }

type countingObserver struct {
	encoded, decoded, encodeFailed, decodeFailed, trailing int
}

func (o *countingObserver) Encoded(uint32, frame.Channel, int) { o.encoded++ }
func (o *countingObserver) Decoded(uint32, frame.Channel, int) { o.decoded++ }
func (o *countingObserver) EncodeFailed(uint32, error)         { o.encodeFailed++ }
func (o *countingObserver) DecodeFailed(uint32, error)         { o.decodeFailed++ }
func (o *countingObserver) TrailingData(uint32, int)           { o.trailing++ }

var factoryCalls int

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(
		Descriptor{Opcode: opFlags, Name: "TEST_FLAGS", Channel: frame.ChannelWorld, Direction: Bidirectional,
			New: func() Decodable { factoryCalls++; return &flagsMsg{} }},
		Descriptor{Opcode: opPanics, Name: "TEST_PANICS", Channel: frame.ChannelInstance, Direction: ClientToServer,
			New: func() Decodable { return &panicMsg{} }},
		Descriptor{Opcode: opOutOnly, Name: "TEST_OUT_ONLY", Channel: frame.ChannelWorld, Direction: ServerToClient},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func newTestCodec(t *testing.T, obs Observer) *Codec {
	t.Helper()
	opts := DefaultOptions()
	opts.Observer = obs
	return NewCodec(testRegistry(t), opts)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	testlog.Start(t)
	obs := &countingObserver{}
	c := newTestCodec(t, obs)

	in := &flagsMsg{Counter: 99, Urgent: true}
	env, err := c.Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if env.Opcode != opFlags || env.Channel != frame.ChannelWorld {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	// four bytes of counter plus the flushed flag byte
	if !bytes.Equal(env.Payload, []byte{99, 0, 0, 0, 0b01}) {
		t.Fatalf("unexpected payload: %v", env.Payload)
	}

	out, err := c.Decode(env)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := out.(*flagsMsg)
	if !ok {
		t.Fatalf("unexpected type %T", out)
	}
	if *got != *in {
		t.Fatalf("got %+v want %+v", got, in)
	}
	if obs.encoded != 1 || obs.decoded != 1 || obs.trailing != 0 {
		t.Fatalf("unexpected observer counts: %+v", obs)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	testlog.Start(t)
	c := newTestCodec(t, nil)
	msg := &flagsMsg{Counter: 7, Muted: true}
	a, err := c.Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := c.Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(a.Payload, b.Payload) {
		t.Fatalf("encodings differ: %v vs %v", a.Payload, b.Payload)
	}
}

func TestDecodeUnknownOpcodeNeverBuildsMessage(t *testing.T) {
	testlog.Start(t)
	c := newTestCodec(t, nil)
	before := factoryCalls
	msg, err := c.Decode(frame.Envelope{Opcode: 0xBEEF, Channel: frame.ChannelWorld, Payload: []byte{1, 2, 3}})
	if !errors.Is(err, protocol.ErrUnknownOpcode) {
		t.Fatalf("expected ErrUnknownOpcode, got %v", err)
	}
	if msg != nil {
		t.Fatalf("expected nil message, got %T", msg)
	}
	if factoryCalls != before {
		t.Fatalf("factory invoked for unknown opcode")
	}
	var decErr *DecodeError
	if !errors.As(err, &decErr) || decErr.Opcode != 0xBEEF {
		t.Fatalf("expected DecodeError for 0xBEEF, got %v", err)
	}
}

func TestDecodeOutboundOnlyIsUnknown(t *testing.T) {
	testlog.Start(t)
	c := newTestCodec(t, nil)
	_, err := c.Decode(frame.Envelope{Opcode: opOutOnly, Channel: frame.ChannelWorld})
	if !errors.Is(err, protocol.ErrUnknownOpcode) {
		t.Fatalf("expected ErrUnknownOpcode, got %v", err)
	}
}

func TestDecodeTruncatedIsMalformed(t *testing.T) {
	testlog.Start(t)
	c := newTestCodec(t, nil)
	msg, err := c.Decode(frame.Envelope{Opcode: opFlags, Channel: frame.ChannelWorld, Payload: []byte{1, 2}})
	if !errors.Is(err, protocol.ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
	if msg != nil {
		t.Fatalf("expected nil message on failure")
	}
}

func TestDecodeToleratesTrailingData(t *testing.T) {
	testlog.Start(t)
	obs := &countingObserver{}
	c := newTestCodec(t, obs)
	msg, err := c.Decode(frame.Envelope{Opcode: opFlags, Channel: frame.ChannelWorld, Payload: []byte{5, 0, 0, 0, 0b11, 0xAA, 0xBB}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := msg.(*flagsMsg); got.Counter != 5 || !got.Urgent || !got.Muted {
		t.Fatalf("unexpected message: %+v", got)
	}
	if obs.trailing != 1 {
		t.Fatalf("expected trailing data reported once, got %d", obs.trailing)
	}
}

func TestDecodeChannelMismatch(t *testing.T) {
	testlog.Start(t)
	c := newTestCodec(t, nil)
	_, err := c.Decode(frame.Envelope{Opcode: opFlags, Channel: frame.ChannelInstance, Payload: []byte{1, 0, 0, 0, 0}})
	if !errors.Is(err, ErrChannelMismatch) || !errors.Is(err, protocol.ErrMalformedMessage) {
		t.Fatalf("expected ErrChannelMismatch, got %v", err)
	}
}

func TestDecodeRecoversPanics(t *testing.T) {
	testlog.Start(t)
	obs := &countingObserver{}
	c := newTestCodec(t, obs)
	msg, err := c.Decode(frame.Envelope{Opcode: opPanics, Channel: frame.ChannelInstance})
	if !errors.Is(err, protocol.ErrEncodingInvariant) {
		t.Fatalf("expected ErrEncodingInvariant, got %v", err)
	}
	if msg != nil || obs.decodeFailed != 1 {
		t.Fatalf("unexpected result: msg=%v obs=%+v", msg, obs)
	}
}

func TestEncodeInvariantViolationRejected(t *testing.T) {
	testlog.Start(t)
	obs := &countingObserver{}
	c := newTestCodec(t, obs)
	_, err := c.Encode(brokenMsg{})
	if !errors.Is(err, protocol.ErrEncodingInvariant) {
		t.Fatalf("expected ErrEncodingInvariant, got %v", err)
	}
	if obs.encodeFailed != 1 || obs.encoded != 0 {
		t.Fatalf("unexpected observer counts: %+v", obs)
	}
}

func TestEncodeRejectsPayloadOverFrameLimit(t *testing.T) {
	testlog.Start(t)
	obs := &countingObserver{}
	opts := DefaultOptions()
	opts.Observer = obs
	opts.FrameLimits.MaxPayloadBytes = 4
	c := NewCodec(testRegistry(t), opts)

	env, err := c.Encode(&flagsMsg{Counter: 1})
	var encErr *EncodeError
	if !errors.As(err, &encErr) || encErr.Opcode != opFlags {
		t.Fatalf("expected EncodeError, got %v", err)
	}
	if !errors.Is(err, frame.ErrPayloadTooLarge) || !errors.Is(err, protocol.ErrEncodingInvariant) {
		t.Fatalf("expected oversized payload invariant, got %v", err)
	}
	if env.Payload != nil || obs.encodeFailed != 1 || obs.encoded != 0 {
		t.Fatalf("unexpected result: env=%+v obs=%+v", env, obs)
	}
}

func TestEncodeInvariantPanicsWhenStrict(t *testing.T) {
	testlog.Start(t)
	opts := DefaultOptions()
	opts.Strict = true
	c := NewCodec(testRegistry(t), opts)
	defer func() {
		p := recover()
		err, ok := p.(error)
		if !ok || !errors.Is(err, protocol.ErrEncodingInvariant) {
			t.Fatalf("expected invariant panic, got %v", p)
		}
	}()
	_, _ = c.Encode(brokenMsg{})
}

func TestWriteToReadFrom(t *testing.T) {
	testlog.Start(t)
	c := newTestCodec(t, nil)
	var buf bytes.Buffer
	for i := uint32(1); i <= 3; i++ {
		if err := c.WriteTo(&buf, &flagsMsg{Counter: i}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	for i := uint32(1); i <= 3; i++ {
		msg, err := c.ReadFrom(&buf)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got := msg.(*flagsMsg).Counter; got != i {
			t.Fatalf("got counter %d want %d", got, i)
		}
	}
	if _, err := c.ReadFrom(&buf); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
