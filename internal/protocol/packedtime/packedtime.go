// Package packedtime encodes timestamps as fixed-width offsets from a
// reference epoch both peers agree on.
package packedtime

import (
	"fmt"
	"math"
	"time"

	"github.com/danmuck/gamewire/internal/protocol"
	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
)

// Epoch is the reference instant shared by encoder and decoder.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Width is the on-wire size of the offset.
type Width uint8

const (
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

func (w Width) max() uint64 {
	switch w {
	case Width16:
		return 1<<16 - 1
	case Width32:
		return 1<<32 - 1
	default:
		return 1<<40 - 1
	}
}

// Codec converts timestamps to offsets of Unit since Epoch. Offsets are
// capped so that converting them back stays inside the int64 range: 2^40
// units for 64-bit offsets, and never more than fits in a Duration for
// units that are not whole seconds.
type Codec struct {
	Epoch time.Time
	Unit  time.Duration
	Width Width
}

// Default is second resolution in 32 bits, covering 2000 to 2136.
func Default() Codec {
	return Codec{Epoch: Epoch, Unit: time.Second, Width: Width32}
}

// Minutes is minute resolution in 32 bits.
func Minutes() Codec {
	return Codec{Epoch: Epoch, Unit: time.Minute, Width: Width32}
}

func (c Codec) normalized() Codec {
	if c.Epoch.IsZero() {
		c.Epoch = Epoch
	}
	if c.Unit <= 0 {
		c.Unit = time.Second
	}
	if c.Width != Width16 && c.Width != Width64 {
		c.Width = Width32
	}
	return c
}

// maxDelta is the largest offset both Delta and Time can represent.
func (c Codec) maxDelta() uint64 {
	limit := c.Width.max()
	var fit uint64
	if c.Unit%time.Second == 0 {
		fit = uint64(math.MaxInt64/2) / uint64(c.Unit/time.Second)
	} else {
		fit = uint64(math.MaxInt64 / int64(c.Unit))
	}
	return min(limit, fit)
}

// Delta returns the offset of t in units since the epoch. Sub-unit precision
// is truncated.
func (c Codec) Delta(t time.Time) (uint64, error) {
	c = c.normalized()
	if t.Before(c.Epoch) {
		return 0, fmt.Errorf("packedtime: %s is before epoch %s", t.UTC().Format(time.RFC3339), c.Epoch.Format(time.RFC3339))
	}
	maxDelta := c.maxDelta()
	var delta uint64
	if c.Unit%time.Second == 0 {
		// whole-second units stay exact past the ~292 year Duration range
		delta = uint64(t.Unix()-c.Epoch.Unix()) / uint64(c.Unit/time.Second)
	} else {
		// t.Sub saturates, so compare instants before dividing
		if t.After(c.Epoch.Add(time.Duration(maxDelta) * c.Unit).Add(c.Unit - 1)) {
			return 0, fmt.Errorf("packedtime: %s overflows a %d-bit offset of %s", t.UTC().Format(time.RFC3339), c.Width, c.Unit)
		}
		delta = uint64(t.Sub(c.Epoch) / c.Unit)
	}
	if delta > maxDelta {
		return 0, fmt.Errorf("packedtime: %s overflows a %d-bit offset", t.UTC().Format(time.RFC3339), c.Width)
	}
	return delta, nil
}

// Time returns the instant delta units after the epoch.
func (c Codec) Time(delta uint64) time.Time {
	c = c.normalized()
	if c.Unit%time.Second == 0 {
		secs := int64(delta) * int64(c.Unit/time.Second)
		return time.Unix(c.Epoch.Unix()+secs, 0).In(c.Epoch.Location())
	}
	return c.Epoch.Add(time.Duration(delta) * c.Unit)
}

// Write appends the offset of t. The writer must be aligned. Out-of-range
// timestamps are caller errors and fail the writer.
func (c Codec) Write(w *bitbuf.Writer, t time.Time) {
	c = c.normalized()
	delta, err := c.Delta(t)
	if err != nil {
		w.Failf("%w", err)
		return
	}
	switch c.Width {
	case Width16:
		w.WriteUint16(uint16(delta))
	case Width64:
		w.WriteUint64(delta)
	default:
		w.WriteUint32(uint32(delta))
	}
}

// Read consumes an offset written by Write.
func (c Codec) Read(r *bitbuf.Reader) (time.Time, error) {
	c = c.normalized()
	var delta uint64
	switch c.Width {
	case Width16:
		v, err := r.ReadUint16()
		if err != nil {
			return time.Time{}, err
		}
		delta = uint64(v)
	case Width64:
		v, err := r.ReadUint64()
		if err != nil {
			return time.Time{}, err
		}
		delta = v
	default:
		v, err := r.ReadUint32()
		if err != nil {
			return time.Time{}, err
		}
		delta = uint64(v)
	}
	if delta > c.maxDelta() {
		return time.Time{}, fmt.Errorf("%w: packedtime: offset %d out of range", protocol.ErrMalformedMessage, delta)
	}
	return c.Time(delta), nil
}
