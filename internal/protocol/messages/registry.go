// Package messages holds the concrete messages the server speaks and the
// registry that maps their opcodes.
package messages

import (
	"github.com/danmuck/gamewire/internal/protocol/frame"
	"github.com/danmuck/gamewire/internal/protocol/message"
)

// Opcodes.
const (
	CMsgPing                    uint32 = 0x0001
	SMsgPong                    uint32 = 0x0002
	CMsgQueryPlayerName         uint32 = 0x0010
	SMsgQueryPlayerNameResponse uint32 = 0x0011
	SMsgLoginSetTimeSpeed       uint32 = 0x0020
	SMsgTimeSyncRequest         uint32 = 0x0021
	CMsgTimeSyncResponse        uint32 = 0x0022
	CMsgChatMessage             uint32 = 0x0030
	CMsgMailGetList             uint32 = 0x0040
	SMsgMailListResult          uint32 = 0x0041
)

var table = []message.Descriptor{
	{Opcode: CMsgPing, Name: "CMSG_PING", Channel: frame.ChannelWorld, Direction: message.ClientToServer,
		New: func() message.Decodable { return &Ping{} }},
	{Opcode: SMsgPong, Name: "SMSG_PONG", Channel: frame.ChannelWorld, Direction: message.ServerToClient,
		New: func() message.Decodable { return &Pong{} }},
	{Opcode: CMsgQueryPlayerName, Name: "CMSG_QUERY_PLAYER_NAME", Channel: frame.ChannelWorld, Direction: message.ClientToServer,
		New: func() message.Decodable { return &QueryPlayerName{} }},
	{Opcode: SMsgQueryPlayerNameResponse, Name: "SMSG_QUERY_PLAYER_NAME_RESPONSE", Channel: frame.ChannelWorld, Direction: message.ServerToClient,
		New: func() message.Decodable { return &QueryPlayerNameResponse{} }},
	{Opcode: SMsgLoginSetTimeSpeed, Name: "SMSG_LOGIN_SET_TIME_SPEED", Channel: frame.ChannelWorld, Direction: message.ServerToClient,
		New: func() message.Decodable { return &LoginSetTimeSpeed{} }},
	{Opcode: SMsgTimeSyncRequest, Name: "SMSG_TIME_SYNC_REQUEST", Channel: frame.ChannelInstance, Direction: message.ServerToClient,
		New: func() message.Decodable { return &TimeSyncRequest{} }},
	{Opcode: CMsgTimeSyncResponse, Name: "CMSG_TIME_SYNC_RESPONSE", Channel: frame.ChannelInstance, Direction: message.ClientToServer,
		New: func() message.Decodable { return &TimeSyncResponse{} }},
	{Opcode: CMsgChatMessage, Name: "CMSG_CHAT_MESSAGE", Channel: frame.ChannelWorld, Direction: message.ClientToServer,
		New: func() message.Decodable { return &ChatMessage{} }},
	{Opcode: CMsgMailGetList, Name: "CMSG_MAIL_GET_LIST", Channel: frame.ChannelWorld, Direction: message.ClientToServer,
		New: func() message.Decodable { return &MailGetList{} }},
	{Opcode: SMsgMailListResult, Name: "SMSG_MAIL_LIST_RESULT", Channel: frame.ChannelWorld, Direction: message.ServerToClient,
		New: func() message.Decodable { return &MailListResult{} }},
}

var registry = message.MustRegistry(table...)

// Registry returns the process-wide opcode registry. It is immutable.
func Registry() *message.Registry {
	return registry
}
