// Package guid encodes object identifiers in packed form: a presence mask
// with one bit per identifier byte, followed by only the nonzero bytes.
//
// Mask bit i covers identifier byte i, byte 0 being the least significant.
// A 64-bit identifier uses an 8-bit mask. A 128-bit GUID uses a 16-bit mask
// covering Low (bytes 0..7) then High (bytes 8..15).
package guid

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// GUID is a 128-bit object identifier. The codec treats it as opaque bytes.
type GUID struct {
	High uint64
	Low  uint64
}

// Empty is the all-zero identifier.
var Empty = GUID{}

func New(high, low uint64) GUID {
	return GUID{High: high, Low: low}
}

func (g GUID) IsEmpty() bool {
	return g.High == 0 && g.Low == 0
}

// Bytes returns the identifier bytes in mask order.
func (g GUID) Bytes() [16]byte {
	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(g.Low >> (8 * i))
		b[8+i] = byte(g.High >> (8 * i))
	}
	return b
}

// FromBytes reassembles a GUID from bytes in mask order.
func FromBytes(b [16]byte) GUID {
	var g GUID
	for i := 0; i < 8; i++ {
		g.Low |= uint64(b[i]) << (8 * i)
		g.High |= uint64(b[8+i]) << (8 * i)
	}
	return g
}

func (g GUID) String() string {
	return fmt.Sprintf("0x%016X%016X", g.High, g.Low)
}

func (g GUID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *GUID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Parse reads the String form, with or without the 0x prefix.
func Parse(s string) (GUID, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != 32 {
		return GUID{}, fmt.Errorf("guid: expected 32 hex digits, got %d", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return GUID{}, fmt.Errorf("guid: %w", err)
	}
	var g GUID
	for i := 0; i < 8; i++ {
		g.High = g.High<<8 | uint64(raw[i])
		g.Low = g.Low<<8 | uint64(raw[8+i])
	}
	return g, nil
}
