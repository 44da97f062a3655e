package protocol

import "errors"

var (
	// ErrMalformedMessage reports input that cannot be a valid message:
	// a read past the payload, or a declared length the payload cannot hold.
	ErrMalformedMessage = errors.New("protocol: malformed message")
	// ErrUnknownOpcode reports an inbound opcode with no registered decoder.
	ErrUnknownOpcode = errors.New("protocol: unknown opcode")
	// ErrEncodingInvariant reports a broken codec contract inside a message
	// implementation. It never originates from network input.
	ErrEncodingInvariant = errors.New("protocol: encoding invariant violated")
	// ErrLengthExceeded reports a declared length above its configured limit.
	// It is always returned together with ErrMalformedMessage.
	ErrLengthExceeded = errors.New("protocol: declared length exceeds limit")
)

// IsMalformed reports whether err is a malformed-input failure.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedMessage)
}

// IsInvariant reports whether err is a codec contract violation.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrEncodingInvariant)
}

// Kind classifies err for logs and metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrUnknownOpcode):
		return "unknown_opcode"
	case errors.Is(err, ErrEncodingInvariant):
		return "invariant"
	case errors.Is(err, ErrLengthExceeded):
		return "length_exceeded"
	case errors.Is(err, ErrMalformedMessage):
		return "malformed"
	default:
		return "other"
	}
}
