package messages

import (
	"fmt"
	"time"

	"github.com/danmuck/gamewire/internal/protocol"
	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
	"github.com/danmuck/gamewire/internal/protocol/frame"
	"github.com/danmuck/gamewire/internal/protocol/guid"
)

// Mail list bounds.
const (
	MaxMailEntries     = 50
	MaxMailItems       = 12
	MaxMailSubjectSize = 1<<8 - 1
	MaxMailBodySize    = 1<<13 - 1

	mailItemCountWidth = 4

	// id, flag word, money, flags, expires
	mailEntryMinBytes = 8 + 4 + 8 + 4 + 4
)

func errShortList(n, remaining int) error {
	return fmt.Errorf("%w: messages: %d mail entries cannot fit in %d bytes", protocol.ErrMalformedMessage, n, remaining)
}

// MailGetList asks for the contents of the mailbox object.
type MailGetList struct {
	Mailbox uint64
}

func (*MailGetList) Opcode() uint32         { return CMsgMailGetList }
func (*MailGetList) Channel() frame.Channel { return frame.ChannelWorld }

func (m *MailGetList) Write(w *bitbuf.Writer) {
	guid.WritePacked64(w, m.Mailbox)
}

func (m *MailGetList) Read(r *bitbuf.Reader) error {
	var err error
	m.Mailbox, err = guid.ReadPacked64(r)
	return err
}

// ItemInstance is an attachment.
type ItemInstance struct {
	ItemID uint32
	Seed   bitbuf.Option[uint32]
}

func (it *ItemInstance) Write(w *bitbuf.Writer) {
	w.WriteUint32(it.ItemID)
	bitbuf.WritePresence(w, it.Seed)
	w.FlushBits()
	bitbuf.WriteOptional(w, it.Seed, (*bitbuf.Writer).WriteUint32)
}

func (it *ItemInstance) Read(r *bitbuf.Reader) error {
	var err error
	if it.ItemID, err = r.ReadUint32(); err != nil {
		return err
	}
	if err = bitbuf.ReadPresence(r, &it.Seed); err != nil {
		return err
	}
	r.Align()
	return bitbuf.ReadOptional(r, &it.Seed, (*bitbuf.Reader).ReadUint32)
}

// MailEntry layout:
//
//	u64      mail id
//	bit x3   sender, alt sender, cod present
//	8 bits   subject length
//	13 bits  body length
//	4 bits   item count
//	flush
//	[packed guid sender] [u32 alt sender] [u64 cod]
//	u64      money
//	u32      flags
//	u32      expires (packed time)
//	bytes    subject, body
//	items
type MailEntry struct {
	MailID      uint64
	Sender      bitbuf.Option[guid.GUID]
	AltSenderID bitbuf.Option[uint32]
	Cod         bitbuf.Option[uint64]
	Money       uint64
	Flags       uint32
	Expires     time.Time
	Subject     string
	Body        string
	Items       []ItemInstance
}

func (e *MailEntry) Write(w *bitbuf.Writer) {
	if len(e.Items) > MaxMailItems {
		w.Failf("messages: mail %d carries %d items, max %d", e.MailID, len(e.Items), MaxMailItems)
		return
	}
	w.WriteUint64(e.MailID)
	bitbuf.WritePresence(w, e.Sender)
	bitbuf.WritePresence(w, e.AltSenderID)
	bitbuf.WritePresence(w, e.Cod)
	w.WriteStringLength(e.Subject, 8)
	w.WriteStringLength(e.Body, 13)
	w.WriteBits(uint32(len(e.Items)), mailItemCountWidth)
	w.FlushBits()

	bitbuf.WriteOptional(w, e.Sender, guid.WritePacked)
	bitbuf.WriteOptional(w, e.AltSenderID, (*bitbuf.Writer).WriteUint32)
	bitbuf.WriteOptional(w, e.Cod, (*bitbuf.Writer).WriteUint64)
	w.WriteUint64(e.Money)
	w.WriteUint32(e.Flags)
	serverClock.Write(w, e.Expires)
	w.WriteString(e.Subject)
	w.WriteString(e.Body)
	for i := range e.Items {
		e.Items[i].Write(w)
	}
}

func (e *MailEntry) Read(r *bitbuf.Reader) error {
	var err error
	if e.MailID, err = r.ReadUint64(); err != nil {
		return err
	}
	if err = bitbuf.ReadPresence(r, &e.Sender); err != nil {
		return err
	}
	if err = bitbuf.ReadPresence(r, &e.AltSenderID); err != nil {
		return err
	}
	if err = bitbuf.ReadPresence(r, &e.Cod); err != nil {
		return err
	}
	subjectLen, err := r.ReadStringLength(8, MaxMailSubjectSize)
	if err != nil {
		return err
	}
	bodyLen, err := r.ReadStringLength(13, MaxMailBodySize)
	if err != nil {
		return err
	}
	itemCount, err := r.ReadCount(mailItemCountWidth, MaxMailItems)
	if err != nil {
		return err
	}
	r.Align()

	if err = bitbuf.ReadOptional(r, &e.Sender, guid.ReadPacked); err != nil {
		return err
	}
	if err = bitbuf.ReadOptional(r, &e.AltSenderID, (*bitbuf.Reader).ReadUint32); err != nil {
		return err
	}
	if err = bitbuf.ReadOptional(r, &e.Cod, (*bitbuf.Reader).ReadUint64); err != nil {
		return err
	}
	if e.Money, err = r.ReadUint64(); err != nil {
		return err
	}
	if e.Flags, err = r.ReadUint32(); err != nil {
		return err
	}
	if e.Expires, err = serverClock.Read(r); err != nil {
		return err
	}
	if e.Subject, err = r.ReadString(subjectLen); err != nil {
		return err
	}
	if e.Body, err = r.ReadString(bodyLen); err != nil {
		return err
	}
	e.Items = nil
	if itemCount > 0 {
		e.Items = make([]ItemInstance, itemCount)
		for i := range e.Items {
			if err = e.Items[i].Read(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// MailListResult carries one page of the mailbox. TotalCount is the full
// mailbox size, which may exceed len(Mails).
type MailListResult struct {
	TotalCount int32
	Mails      []MailEntry
}

func (*MailListResult) Opcode() uint32         { return SMsgMailListResult }
func (*MailListResult) Channel() frame.Channel { return frame.ChannelWorld }

func (m *MailListResult) Write(w *bitbuf.Writer) {
	if len(m.Mails) > MaxMailEntries {
		w.Failf("messages: mail list of %d entries, max %d", len(m.Mails), MaxMailEntries)
		return
	}
	w.WriteInt32(m.TotalCount)
	w.WriteUint32(uint32(len(m.Mails)))
	for i := range m.Mails {
		m.Mails[i].Write(w)
	}
}

func (m *MailListResult) Read(r *bitbuf.Reader) error {
	var err error
	if m.TotalCount, err = r.ReadInt32(); err != nil {
		return err
	}
	n, err := r.ReadCount32(MaxMailEntries)
	if err != nil {
		return err
	}
	// Each entry needs at least its fixed-width fields.
	if n*mailEntryMinBytes > r.Remaining() {
		return errShortList(n, r.Remaining())
	}
	m.Mails = nil
	if n > 0 {
		m.Mails = make([]MailEntry, n)
		for i := range m.Mails {
			if err = m.Mails[i].Read(r); err != nil {
				return err
			}
		}
	}
	return nil
}
