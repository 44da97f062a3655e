package guid

import (
	"fmt"
	"math/bits"

	"github.com/danmuck/gamewire/internal/protocol"
	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
)

// Mask64 returns the byte-presence mask of a 64-bit identifier.
func Mask64(id uint64) uint8 {
	var mask uint8
	for i := 0; i < 8; i++ {
		if byte(id>>(8*i)) != 0 {
			mask |= 1 << i
		}
	}
	return mask
}

// Mask128 returns the byte-presence mask of a GUID.
func Mask128(g GUID) uint16 {
	return uint16(Mask64(g.Low)) | uint16(Mask64(g.High))<<8
}

// PackedSize64 returns the encoded size in bytes of a 64-bit identifier.
func PackedSize64(id uint64) int {
	return 1 + bits.OnesCount8(Mask64(id))
}

// PackedSize returns the encoded size in bytes of a GUID.
func PackedSize(g GUID) int {
	return 2 + bits.OnesCount16(Mask128(g))
}

// WritePacked64 writes id as an 8-bit mask followed by its nonzero bytes.
// The writer is left aligned.
func WritePacked64(w *bitbuf.Writer, id uint64) {
	var raw [8]byte
	for i := range raw {
		raw[i] = byte(id >> (8 * i))
	}
	mask := Mask64(id)
	w.WriteBits(uint32(mask), 8)
	w.FlushBits()
	writeMasked(w, raw[:], uint32(mask))
}

// ReadPacked64 reads an identifier written by WritePacked64. The reader is
// left aligned.
func ReadPacked64(r *bitbuf.Reader) (uint64, error) {
	mask, err := r.ReadBits(8)
	if err != nil {
		return 0, err
	}
	r.Align()
	var raw [8]byte
	if err := readMasked(r, raw[:], mask); err != nil {
		return 0, err
	}
	var id uint64
	for i, b := range raw {
		id |= uint64(b) << (8 * i)
	}
	return id, nil
}

// WritePacked writes g as a 16-bit mask followed by its nonzero bytes.
func WritePacked(w *bitbuf.Writer, g GUID) {
	raw := g.Bytes()
	mask := Mask128(g)
	w.WriteBits(uint32(mask), 16)
	w.FlushBits()
	writeMasked(w, raw[:], uint32(mask))
}

// ReadPacked reads a GUID written by WritePacked.
func ReadPacked(r *bitbuf.Reader) (GUID, error) {
	mask, err := r.ReadBits(16)
	if err != nil {
		return GUID{}, err
	}
	r.Align()
	var raw [16]byte
	if err := readMasked(r, raw[:], mask); err != nil {
		return GUID{}, err
	}
	return FromBytes(raw), nil
}

func writeMasked(w *bitbuf.Writer, raw []byte, mask uint32) {
	written := 0
	for i, b := range raw {
		if mask&(1<<i) == 0 {
			continue
		}
		w.WriteUint8(b)
		written++
	}
	if want := bits.OnesCount32(mask); written != want {
		w.Failf("guid: mask declares %d bytes, wrote %d", want, written)
	}
}

func readMasked(r *bitbuf.Reader, raw []byte, mask uint32) error {
	if mask>>len(raw) != 0 {
		return fmt.Errorf("%w: guid: mask %#x wider than %d bytes", protocol.ErrEncodingInvariant, mask, len(raw))
	}
	read := 0
	for i := range raw {
		if mask&(1<<i) == 0 {
			continue
		}
		b, err := r.ReadUint8()
		if err != nil {
			return err
		}
		raw[i] = b
		read++
	}
	if want := bits.OnesCount32(mask); read != want {
		return fmt.Errorf("%w: guid: mask declares %d bytes, read %d", protocol.ErrEncodingInvariant, want, read)
	}
	return nil
}
