package messages

import (
	"time"

	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
	"github.com/danmuck/gamewire/internal/protocol/frame"
	"github.com/danmuck/gamewire/internal/protocol/packedtime"
)

var (
	serverClock = packedtime.Default()
	gameClock   = packedtime.Minutes()
)

// LoginSetTimeSpeed tells a freshly logged-in client the wall clock, the
// in-game clock and how fast the latter advances.
type LoginSetTimeSpeed struct {
	ServerTime    time.Time
	GameTime      time.Time
	NewSpeed      float32
	HolidayOffset int32
}

func (*LoginSetTimeSpeed) Opcode() uint32         { return SMsgLoginSetTimeSpeed }
func (*LoginSetTimeSpeed) Channel() frame.Channel { return frame.ChannelWorld }

func (m *LoginSetTimeSpeed) Write(w *bitbuf.Writer) {
	serverClock.Write(w, m.ServerTime)
	gameClock.Write(w, m.GameTime)
	w.WriteFloat32(m.NewSpeed)
	w.WriteInt32(m.HolidayOffset)
}

func (m *LoginSetTimeSpeed) Read(r *bitbuf.Reader) error {
	var err error
	if m.ServerTime, err = serverClock.Read(r); err != nil {
		return err
	}
	if m.GameTime, err = gameClock.Read(r); err != nil {
		return err
	}
	if m.NewSpeed, err = r.ReadFloat32(); err != nil {
		return err
	}
	m.HolidayOffset, err = r.ReadInt32()
	return err
}

type TimeSyncRequest struct {
	SequenceIndex uint32
}

func (*TimeSyncRequest) Opcode() uint32         { return SMsgTimeSyncRequest }
func (*TimeSyncRequest) Channel() frame.Channel { return frame.ChannelInstance }

func (m *TimeSyncRequest) Write(w *bitbuf.Writer) {
	w.WriteUint32(m.SequenceIndex)
}

func (m *TimeSyncRequest) Read(r *bitbuf.Reader) error {
	var err error
	m.SequenceIndex, err = r.ReadUint32()
	return err
}

// TimeSyncResponse answers a TimeSyncRequest with the client's tick count
// in milliseconds.
type TimeSyncResponse struct {
	SequenceIndex uint32
	ClientTime    uint32
}

func (*TimeSyncResponse) Opcode() uint32         { return CMsgTimeSyncResponse }
func (*TimeSyncResponse) Channel() frame.Channel { return frame.ChannelInstance }

func (m *TimeSyncResponse) Write(w *bitbuf.Writer) {
	w.WriteUint32(m.SequenceIndex)
	w.WriteUint32(m.ClientTime)
}

func (m *TimeSyncResponse) Read(r *bitbuf.Reader) error {
	var err error
	if m.SequenceIndex, err = r.ReadUint32(); err != nil {
		return err
	}
	m.ClientTime, err = r.ReadUint32()
	return err
}
