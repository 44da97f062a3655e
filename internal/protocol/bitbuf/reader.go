package bitbuf

import (
	"fmt"
	"math"

	"github.com/danmuck/gamewire/internal/protocol"
)

// Reader consumes a bit-packed payload produced by a Writer.
//
// Every read is bounds checked against the payload. Running out of data is
// malformed input; reading an aligned field while bits are pending is a bug
// in the caller and reported as an invariant violation.
type Reader struct {
	buf     []byte
	pos     int
	pending byte
	nbits   uint8
	limits  Limits
}

// NewReader wraps buf with default limits. The reader does not copy buf.
func NewReader(buf []byte) *Reader {
	return NewReaderLimits(buf, DefaultLimits())
}

// NewReaderLimits wraps buf with explicit limits. Zero limit fields take
// their defaults.
func NewReaderLimits(buf []byte, limits Limits) *Reader {
	return &Reader{buf: buf, limits: limits.normalized()}
}

// Limits returns the limits in effect.
func (r *Reader) Limits() Limits {
	return r.limits
}

// Remaining returns the number of whole bytes not yet consumed. Bits left in
// a partially read byte are not counted.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// PendingBits returns the number of unread bits in the current partial byte.
func (r *Reader) PendingBits() int {
	return int(r.nbits)
}

// PendingValue returns the unread bits of the current partial byte.
func (r *Reader) PendingValue() byte {
	return r.pending
}

// Consumed returns the number of bytes taken from the payload.
func (r *Reader) Consumed() int {
	return r.pos
}

func truncated(op string, need, have int) error {
	return fmt.Errorf("%w: bitbuf: %s needs %d bytes, %d remain", protocol.ErrMalformedMessage, op, need, have)
}

func exceeded(op string, n, limit int) error {
	return fmt.Errorf("%w: %w: bitbuf: %s declares %d, limit %d",
		protocol.ErrMalformedMessage, protocol.ErrLengthExceeded, op, n, limit)
}

func unaligned(op string, pending uint8) error {
	return fmt.Errorf("%w: bitbuf: %s with %d pending bits", protocol.ErrEncodingInvariant, op, pending)
}

// ReadBit consumes one bit.
func (r *Reader) ReadBit() (bool, error) {
	if r.nbits == 0 {
		if r.pos >= len(r.buf) {
			return false, truncated("read bit", 1, 0)
		}
		r.pending = r.buf[r.pos]
		r.pos++
		r.nbits = 8
	}
	v := r.pending&1 != 0
	r.pending >>= 1
	r.nbits--
	return v, nil
}

// HasBit reads one presence flag.
func (r *Reader) HasBit() (bool, error) {
	return r.ReadBit()
}

// ReadBits consumes width bits, bit 0 first.
func (r *Reader) ReadBits(width uint) (uint32, error) {
	if width == 0 || width > 32 {
		return 0, fmt.Errorf("%w: bitbuf: bit width %d out of range 1..32", protocol.ErrEncodingInvariant, width)
	}
	// Check the whole field up front so a truncated field consumes nothing.
	if avail := int(r.nbits) + 8*r.Remaining(); int(width) > avail {
		return 0, fmt.Errorf("%w: bitbuf: read %d bits, %d remain", protocol.ErrMalformedMessage, width, avail)
	}
	var v uint32
	for i := uint(0); i < width; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit {
			v |= 1 << i
		}
	}
	return v, nil
}

// Align discards the pending bits of the current partial byte.
func (r *Reader) Align() {
	r.pending = 0
	r.nbits = 0
}

func (r *Reader) take(op string, n int) ([]byte, error) {
	if r.nbits != 0 {
		return nil, unaligned(op, r.nbits)
	}
	if n < 0 || n > r.Remaining() {
		return nil, truncated(op, n, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take("read u8", 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take("read u16", 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take("read u32", 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.take("read u64", 8)
	if err != nil {
		return 0, err
	}
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56, nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBool reads a whole-byte boolean. Any nonzero byte is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

// ReadBytes reads exactly n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n > r.limits.MaxBlobBytes {
		return nil, exceeded("read bytes", n, r.limits.MaxBlobBytes)
	}
	b, err := r.take("read bytes", n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadString reads an n-byte UTF-8 body whose length was read earlier.
func (r *Reader) ReadString(n int) (string, error) {
	if n > r.limits.MaxStringBytes {
		return "", exceeded("read string", n, r.limits.MaxStringBytes)
	}
	b, err := r.take("read string", n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadStringLength reads a width-bit string length. Lengths above max (when
// positive) or above the reader's string limit are rejected.
func (r *Reader) ReadStringLength(width uint, max int) (int, error) {
	v, err := r.ReadBits(width)
	if err != nil {
		return 0, err
	}
	limit := r.limits.MaxStringBytes
	if max > 0 && max < limit {
		limit = max
	}
	if int64(v) > int64(limit) {
		return 0, exceeded("string length", int(v), limit)
	}
	return int(v), nil
}

// ReadCount reads a width-bit collection count. Counts above max (when
// positive) or above the reader's collection limit are rejected before the
// caller allocates.
func (r *Reader) ReadCount(width uint, max int) (int, error) {
	v, err := r.ReadBits(width)
	if err != nil {
		return 0, err
	}
	return r.checkCount(uint64(v), max)
}

// ReadCount32 reads an aligned u32 collection count under the same rules as
// ReadCount.
func (r *Reader) ReadCount32(max int) (int, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return r.checkCount(uint64(v), max)
}

func (r *Reader) checkCount(n uint64, max int) (int, error) {
	limit := r.limits.MaxCollectionCount
	if max > 0 && max < limit {
		limit = max
	}
	if n > uint64(limit) {
		return 0, exceeded("collection count", int(min(n, math.MaxInt32)), limit)
	}
	return int(n), nil
}
