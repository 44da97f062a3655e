// Package protocol owns the game wire contract and its error taxonomy.
//
// Ownership boundary:
// - bitbuf: bit/byte stream primitives
// - guid, packedtime: compressed field encodings
// - frame: envelope header primitives
// - message: encode/decode contract and opcode registry
// - messages: reference message set and static opcode table
package protocol
