package bitbuf

import "testing"

// FuzzReader drives a mixed read sequence over arbitrary input. Reads may
// fail but must never panic or overrun the payload.
func FuzzReader(f *testing.F) {
	w := NewWriter()
	w.WriteBit(true)
	w.WriteStringLength("abc", 6)
	w.FlushBits()
	w.WriteUint32(7)
	w.WriteString("abc")
	f.Add(w.Bytes())
	f.Add([]byte{})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, data []byte) {
		r := NewReaderLimits(data, Limits{MaxStringBytes: 64, MaxBlobBytes: 64, MaxCollectionCount: 16})
		if _, err := r.HasBit(); err != nil {
			return
		}
		n, err := r.ReadStringLength(6, 0)
		if err != nil {
			return
		}
		r.Align()
		if _, err := r.ReadUint32(); err != nil {
			return
		}
		if _, err := r.ReadString(n); err != nil {
			return
		}
		count, err := r.ReadCount(4, 8)
		if err != nil {
			return
		}
		r.Align()
		for i := 0; i < count; i++ {
			if _, err := r.ReadUint16(); err != nil {
				return
			}
		}
		if r.Remaining() < 0 || r.Consumed() > len(data) {
			t.Fatalf("reader overran payload: consumed=%d len=%d", r.Consumed(), len(data))
		}
	})
}
