package ws

import (
	"encoding/json"

	"bingo-battle/internal/game/viewmodel"
)

const (
	TypeJoinRoom      = "joinRoom"
	TypeFinalizeBoard = "finalizeBoard"
	TypeMakeMove      = "makeMove"

	TypeAck        = "ack"
	TypeRoomUpdate = "roomUpdate"
	TypeGameOver   = "gameOver"
)

const maxRequestIDLen = 64

// Envelope is every client frame. Payload is decoded once Type is known.
type Envelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type JoinPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type FinalizePayload struct {
	RoomID string `json:"roomId"`
	Board  []int  `json:"board"`
}

type MovePayload struct {
	RoomID string `json:"roomId"`
	Index  *int   `json:"index"`
}

type Ack struct {
	Type      string              `json:"type"`
	RequestID string              `json:"request_id,omitempty"`
	OK        bool                `json:"ok,omitempty"`
	Error     string              `json:"error,omitempty"`
	Room      *viewmodel.RoomView `json:"room,omitempty"`
	Slot      *int                `json:"slot,omitempty"`
}

type RoomUpdate struct {
	Type string             `json:"type"`
	Room viewmodel.RoomView `json:"room"`
}

type GameOver struct {
	Type   string                  `json:"type"`
	Winner *int                    `json:"winner"`
	Boards []viewmodel.BoardReveal `json:"boards"`
}
