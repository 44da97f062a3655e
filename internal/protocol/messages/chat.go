package messages

import (
	"github.com/danmuck/gamewire/internal/protocol/bitbuf"
	"github.com/danmuck/gamewire/internal/protocol/frame"
)

// Chat length fields.
const (
	chatTargetWidth = 9
	chatTextWidth   = 11

	MaxChatTargetBytes = 1<<chatTargetWidth - 1
	MaxChatTextBytes   = 1<<chatTextWidth - 1
)

// Chat types.
const (
	ChatSay     uint8 = 0
	ChatParty   uint8 = 1
	ChatGuild   uint8 = 2
	ChatWhisper uint8 = 3
	ChatChannel uint8 = 4
)

// ChatMessage is sent by a client to speak. Target names the whisper
// recipient or channel and is empty otherwise.
type ChatMessage struct {
	Type     uint8
	Language int32
	Target   string
	Text     string
}

func (*ChatMessage) Opcode() uint32         { return CMsgChatMessage }
func (*ChatMessage) Channel() frame.Channel { return frame.ChannelWorld }

func (m *ChatMessage) Write(w *bitbuf.Writer) {
	w.WriteUint8(m.Type)
	w.WriteInt32(m.Language)
	w.WriteStringLength(m.Target, chatTargetWidth)
	w.WriteStringLength(m.Text, chatTextWidth)
	w.FlushBits()
	w.WriteString(m.Target)
	w.WriteString(m.Text)
}

func (m *ChatMessage) Read(r *bitbuf.Reader) error {
	var err error
	if m.Type, err = r.ReadUint8(); err != nil {
		return err
	}
	if m.Language, err = r.ReadInt32(); err != nil {
		return err
	}
	targetLen, err := r.ReadStringLength(chatTargetWidth, MaxChatTargetBytes)
	if err != nil {
		return err
	}
	textLen, err := r.ReadStringLength(chatTextWidth, MaxChatTextBytes)
	if err != nil {
		return err
	}
	r.Align()
	if m.Target, err = r.ReadString(targetLen); err != nil {
		return err
	}
	m.Text, err = r.ReadString(textLen)
	return err
}
