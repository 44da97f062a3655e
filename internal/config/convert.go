package config

import (
	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
	"github.com/danmuck/gamewire/internal/protocol/frame"
	"github.com/danmuck/gamewire/internal/protocol/message"
)

func (c CodecConfig) BitbufLimits() bitbuf.Limits {
	return bitbuf.Limits{
		MaxStringBytes:     c.MaxStringBytes,
		MaxBlobBytes:       c.MaxBlobBytes,
		MaxCollectionCount: c.MaxCollectionCount,
	}
}

func (c CodecConfig) FrameLimits() frame.Limits {
	return frame.Limits{MaxPayloadBytes: c.MaxPayloadBytes}
}

// CodecOptions returns codec options for c. Logger and Observer are left
// for the caller.
func (c CodecConfig) CodecOptions() message.Options {
	return message.Options{
		Limits:      c.BitbufLimits(),
		FrameLimits: c.FrameLimits(),
		Strict:      c.StrictInvariants,
	}
}
