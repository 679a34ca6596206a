package domain

import (
	"time"

	"github.com/pkg/errors"
)

var ErrConnectionClosed = errors.New("connection closed")

const (
	ClientUuidHeader = "X-Client-Key"
)

type messageType byte

const (
	LoadLevel = messageType(iota)
	SelectPiece
	MovePiece
	UndoMove
	ResetLevel
	StateUpdate
	PuzzleSolved
	TimeOver
)

type Message struct {
	Type    messageType
	Payload any
}

type LoadLevelPayload struct {
	Name string
}

type SelectPiecePayload struct {
	Slot int
}

type MovePiecePayload struct {
	Position Position
}

type StateUpdatePayload struct {
	Level     string
	State     GameState
	TimeLimit time.Duration
}

type PuzzleSolvedPayload struct {
	Elapsed time.Duration
}

type Client interface {
	WriteMessage(msg Message) error
	ReadMessage() (Message, error)
	Uuid() string
}
