package messages

import (
	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
	"github.com/danmuck/gamewire/internal/protocol/frame"
)

// Ping is the client keepalive. Latency is the client's last measured
// round trip in milliseconds.
type Ping struct {
	Serial  uint32
	Latency uint32
}

func (*Ping) Opcode() uint32         { return CMsgPing }
func (*Ping) Channel() frame.Channel { return frame.ChannelWorld }

func (m *Ping) Write(w *bitbuf.Writer) {
	w.WriteUint32(m.Serial)
	w.WriteUint32(m.Latency)
}

func (m *Ping) Read(r *bitbuf.Reader) error {
	var err error
	if m.Serial, err = r.ReadUint32(); err != nil {
		return err
	}
	m.Latency, err = r.ReadUint32()
	return err
}

// Pong echoes the serial of a Ping.
type Pong struct {
	Serial uint32
}

func (*Pong) Opcode() uint32         { return SMsgPong }
func (*Pong) Channel() frame.Channel { return frame.ChannelWorld }

func (m *Pong) Write(w *bitbuf.Writer) {
	w.WriteUint32(m.Serial)
}

func (m *Pong) Read(r *bitbuf.Reader) error {
	var err error
	m.Serial, err = r.ReadUint32()
	return err
}
