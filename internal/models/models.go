package models

import (
	"encoding/json"
	"time"
)

// WSFrame is the envelope for every message on the client WebSocket.
type WSFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Client -> server frame types.
const (
	TypeCreateRoom    = "create_room"
	TypeJoinRoom      = "join_room"
	TypeCodeChange    = "code_change"
	TypeCursorChange  = "cursor_position_change"
	TypeSendingSignal = "sending_signal"
	TypeReturnSignal  = "returning_signal"
	TypeToggleVideo   = "toggle_video"
	TypeToggleAudio   = "toggle_audio"
	TypeChatMessage   = "chat_message"
)

// Server -> client frame types.
const (
	TypeRoomCreated      = "room_created"
	TypeRoomNotFound     = "room_not_found"
	TypeInitialRoomData  = "initial_room_data"
	TypeUserJoined       = "user_joined"
	TypeUserJoinedSignal = "user_joined_with_signal"
	TypeUserLeft         = "user_left"
	TypeReceiveCode      = "receive_code_change"
	TypeReceiveCursor    = "receive_cursor_position"
	TypeReturnedSignal   = "receiving_returned_signal"
	TypeReceiveMessage   = "receive_message"
	TypeMediaToggled     = "media_toggled"
	TypeError            = "error"
)

// CursorPosition is an editor coordinate reported by a client.
type CursorPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// MemberInfo is the public roster projection of a room member.
type MemberInfo struct {
	SessionID      string          `json:"sessionId"`
	DisplayName    string          `json:"displayName"`
	VideoEnabled   bool            `json:"videoEnabled"`
	AudioEnabled   bool            `json:"audioEnabled"`
	CursorPosition *CursorPosition `json:"cursorPosition"`
}

// RoomStatus is the read-only snapshot served over HTTP.
type RoomStatus struct {
	ID            string       `json:"id"`
	HostSessionID string       `json:"hostSessionId"`
	MemberCount   int          `json:"memberCount"`
	Members       []MemberInfo `json:"members"`
	CreatedAt     time.Time    `json:"createdAt"`
}

/*** Client -> server payloads ***/

type JoinRoomRequest struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

type CodeChange struct {
	RoomID         string          `json:"roomId"`
	Content        string          `json:"content"`
	CursorPosition *CursorPosition `json:"cursorPosition"`
}

type CursorChange struct {
	RoomID         string          `json:"roomId"`
	CursorPosition *CursorPosition `json:"cursorPosition"`
}

// SignalRequest carries an opaque handshake payload toward one peer.
// The signal blob is never parsed by the server.
type SignalRequest struct {
	TargetSessionID string          `json:"targetSessionId"`
	Signal          json.RawMessage `json:"signal"`
}

type ToggleRequest struct {
	RoomID  string `json:"roomId"`
	Enabled bool   `json:"enabled"`
}

type ChatMessage struct {
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
}

/*** Server -> client payloads ***/

type RoomCreated struct {
	RoomID string `json:"roomId"`
}

type InitialRoomData struct {
	DocumentContent string          `json:"documentContent"`
	CursorPosition  *CursorPosition `json:"cursorPosition"`
	Members         []MemberInfo    `json:"members"`
}

type UserJoined struct {
	SessionID   string       `json:"sessionId"`
	DisplayName string       `json:"displayName"`
	Members     []MemberInfo `json:"members"`
}

// UserJoinedWithSignal both introduces newly paired peers (Signal == nil)
// and forwards a caller's handshake payload (Signal != nil).
type UserJoinedWithSignal struct {
	Signal          json.RawMessage `json:"signal"`
	CallerSessionID string          `json:"callerSessionId"`
	DisplayName     string          `json:"displayName"`
}

type UserLeft struct {
	SessionID string       `json:"sessionId"`
	Members   []MemberInfo `json:"members"`
}

type ReceiveCodeChange struct {
	Content        string          `json:"content"`
	CursorPosition *CursorPosition `json:"cursorPosition"`
	SessionID      string          `json:"sessionId"`
}

type ReceiveCursorPosition struct {
	SessionID      string          `json:"sessionId"`
	CursorPosition *CursorPosition `json:"cursorPosition"`
}

type ReturnedSignal struct {
	Signal    json.RawMessage `json:"signal"`
	SessionID string          `json:"sessionId"`
}

type ReceiveMessage struct {
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
}

type MediaToggled struct {
	SessionID string `json:"sessionId"`
	Kind      string `json:"kind"` // "video" or "audio"
	Enabled   bool   `json:"enabled"`
}

// ErrorMessage reports a frame the server could not process back to its sender.
type ErrorMessage struct {
	Message string `json:"message"`
}
