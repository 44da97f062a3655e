// Package bitbuf implements the bit-packed byte stream every message is
// encoded into and decoded from.
//
// Bits are packed LSB-first inside each byte. Fixed-width values are
// little-endian and byte-aligned: a Writer must FlushBits and a Reader must
// Align before any of them. Each Writer and Reader has exactly one owner for
// the duration of one encode or decode call.
package bitbuf
