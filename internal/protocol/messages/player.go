package messages

import (
	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
	"github.com/danmuck/gamewire/internal/protocol/frame"
	"github.com/danmuck/gamewire/internal/protocol/guid"
)

// MaxPlayerNameBytes is the largest name the 6-bit length can carry.
const MaxPlayerNameBytes = 1<<6 - 1

// Name query results.
const (
	NameResultOK       uint8 = 0
	NameResultNotFound uint8 = 1
)

type QueryPlayerName struct {
	Player guid.GUID
}

func (*QueryPlayerName) Opcode() uint32         { return CMsgQueryPlayerName }
func (*QueryPlayerName) Channel() frame.Channel { return frame.ChannelWorld }

func (m *QueryPlayerName) Write(w *bitbuf.Writer) {
	guid.WritePacked(w, m.Player)
}

func (m *QueryPlayerName) Read(r *bitbuf.Reader) error {
	var err error
	m.Player, err = guid.ReadPacked(r)
	return err
}

// PlayerNameData is present only when the lookup succeeded.
type PlayerNameData struct {
	IsDeleted bool
	Name      string
	Race      uint8
	Sex       uint8
	Class     uint8
	Level     uint8
}

// QueryPlayerNameResponse layout:
//
//	bit      data present
//	flush
//	u8       result
//	packed   player guid
//	if data:
//	  bit    is deleted
//	  6 bits name length
//	  flush
//	  u8 x4  race, sex, class, level
//	  bytes  name
type QueryPlayerNameResponse struct {
	Result uint8
	Player guid.GUID
	Data   bitbuf.Option[PlayerNameData]
}

func (*QueryPlayerNameResponse) Opcode() uint32         { return SMsgQueryPlayerNameResponse }
func (*QueryPlayerNameResponse) Channel() frame.Channel { return frame.ChannelWorld }

func (m *QueryPlayerNameResponse) Write(w *bitbuf.Writer) {
	bitbuf.WritePresence(w, m.Data)
	w.FlushBits()
	w.WriteUint8(m.Result)
	guid.WritePacked(w, m.Player)
	bitbuf.WriteOptional(w, m.Data, writePlayerNameData)
}

func writePlayerNameData(w *bitbuf.Writer, d PlayerNameData) {
	w.WriteBit(d.IsDeleted)
	w.WriteStringLength(d.Name, 6)
	w.FlushBits()
	w.WriteUint8(d.Race)
	w.WriteUint8(d.Sex)
	w.WriteUint8(d.Class)
	w.WriteUint8(d.Level)
	w.WriteString(d.Name)
}

func (m *QueryPlayerNameResponse) Read(r *bitbuf.Reader) error {
	if err := bitbuf.ReadPresence(r, &m.Data); err != nil {
		return err
	}
	r.Align()
	var err error
	if m.Result, err = r.ReadUint8(); err != nil {
		return err
	}
	if m.Player, err = guid.ReadPacked(r); err != nil {
		return err
	}
	return bitbuf.ReadOptional(r, &m.Data, readPlayerNameData)
}

func readPlayerNameData(r *bitbuf.Reader) (PlayerNameData, error) {
	var d PlayerNameData
	var err error
	if d.IsDeleted, err = r.ReadBit(); err != nil {
		return d, err
	}
	n, err := r.ReadStringLength(6, MaxPlayerNameBytes)
	if err != nil {
		return d, err
	}
	r.Align()
	for _, field := range []*uint8{&d.Race, &d.Sex, &d.Class, &d.Level} {
		if *field, err = r.ReadUint8(); err != nil {
			return d, err
		}
	}
	d.Name, err = r.ReadString(n)
	return d, err
}
