package bitbuf

import (
	"errors"
	"fmt"
	"math"

	"github.com/danmuck/gamewire/internal/protocol"
)

const defaultWriterCap = 256

// Writer appends bit-packed fields to an owned, growable buffer.
//
// Write methods do not return errors. The first contract violation is kept
// and every later write becomes a no-op, so a broken message never yields a
// half-valid stream. Callers check Err once the message is written.
type Writer struct {
	buf     []byte
	pending byte
	nbits   uint8
	err     error
}

// NewWriter creates a writer with a default initial capacity.
func NewWriter() *Writer {
	return NewWriterSize(defaultWriterCap)
}

// NewWriterSize creates a writer with the given initial capacity.
func NewWriterSize(capacity int) *Writer {
	if capacity < 0 {
		capacity = 0
	}
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Reset empties the writer and clears its error, keeping the buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.pending = 0
	w.nbits = 0
	w.err = nil
}

// Bytes returns the completed bytes. Pending bits are not included until
// FlushBits. The slice is valid until the next write or Reset.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of completed bytes.
func (w *Writer) Len() int {
	return len(w.buf)
}

// BitCursor returns the number of pending bits in the partial byte (0..7).
func (w *Writer) BitCursor() int {
	return int(w.nbits)
}

// Err returns the first contract violation recorded by the writer.
func (w *Writer) Err() error {
	return w.err
}

// Failf records a contract violation. Sibling codecs use it to reject
// values the wire format cannot carry.
func (w *Writer) Failf(format string, args ...any) {
	if w.err != nil {
		return
	}
	err := fmt.Errorf(format, args...)
	if !errors.Is(err, protocol.ErrEncodingInvariant) {
		err = fmt.Errorf("%w: %w", protocol.ErrEncodingInvariant, err)
	}
	w.err = err
}

// WriteBit appends one bit.
func (w *Writer) WriteBit(v bool) {
	if w.err != nil {
		return
	}
	if v {
		w.pending |= 1 << w.nbits
	}
	w.nbits++
	if w.nbits == 8 {
		w.buf = append(w.buf, w.pending)
		w.pending = 0
		w.nbits = 0
	}
}

// WriteBits appends the low width bits of v, bit 0 first. The value must fit
// in width bits; callers mask wider values themselves.
func (w *Writer) WriteBits(v uint32, width uint) {
	if w.err != nil {
		return
	}
	if width == 0 || width > 32 {
		w.Failf("bitbuf: bit width %d out of range 1..32", width)
		return
	}
	if width < 32 && v>>width != 0 {
		w.Failf("bitbuf: value %d does not fit in %d bits", v, width)
		return
	}
	for i := uint(0); i < width; i++ {
		w.WriteBit(v&(1<<i) != 0)
	}
}

// FlushBits zero-pads the partial byte and appends it. It does nothing when
// the writer is already aligned.
func (w *Writer) FlushBits() {
	if w.err != nil || w.nbits == 0 {
		return
	}
	w.buf = append(w.buf, w.pending)
	w.pending = 0
	w.nbits = 0
}

func (w *Writer) aligned(op string) bool {
	if w.err != nil {
		return false
	}
	if w.nbits != 0 {
		w.Failf("bitbuf: %s with %d pending bits", op, w.nbits)
		return false
	}
	return true
}

func (w *Writer) WriteUint8(v uint8) {
	if !w.aligned("write u8") {
		return
	}
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteUint16(v uint16) {
	if !w.aligned("write u16") {
		return
	}
	w.buf = append(w.buf, byte(v), byte(v>>8))
}

func (w *Writer) WriteUint32(v uint32) {
	if !w.aligned("write u32") {
		return
	}
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (w *Writer) WriteUint64(v uint64) {
	if !w.aligned("write u64") {
		return
	}
	w.buf = append(w.buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func (w *Writer) WriteInt8(v int8)   { w.WriteUint8(uint8(v)) }
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// WriteFloat32 appends an IEEE 754 float32.
func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 appends an IEEE 754 float64.
func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteBool appends a whole-byte boolean (0x00 or 0x01). Use WriteBit for
// packed flags.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
		return
	}
	w.WriteUint8(0)
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(raw []byte) {
	if !w.aligned("write bytes") {
		return
	}
	w.buf = append(w.buf, raw...)
}

// WriteStringLength writes len(s) in width bits. The string body follows
// with WriteString after the next FlushBits.
func (w *Writer) WriteStringLength(s string, width uint) {
	if w.err != nil {
		return
	}
	if width == 0 || width > 32 {
		w.Failf("bitbuf: string length width %d out of range 1..32", width)
		return
	}
	if width < 32 && uint64(len(s)) >= uint64(1)<<width {
		w.Failf("bitbuf: string of %d bytes does not fit a %d-bit length", len(s), width)
		return
	}
	w.WriteBits(uint32(len(s)), width)
}

// WriteString appends the raw UTF-8 bytes of s.
func (w *Writer) WriteString(s string) {
	if !w.aligned("write string") {
		return
	}
	w.buf = append(w.buf, s...)
}
