package domain

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrStartOffBoard  = errors.New("start position is off the board")
	ErrStartOccupied  = errors.New("start position is a target or a blocker")
	ErrNoPieces       = errors.New("level has no pieces")
	ErrLevelNotFound  = errors.New("level not found")
	ErrEmptyLevelName = errors.New("empty level name")
)

type MoveRecord struct {
	Previous   Position
	Slot       int
	WasCapture bool
}

// GameState is a read-only copy of a game handed to renderers.
type GameState struct {
	Board        Board       `json:"board"`
	Position     Position    `json:"position"`
	Roster       []PieceSlot `json:"roster"`
	Selected     *int        `json:"selected,omitempty"`
	MovableTiles []Position  `json:"movableTiles"`
	CanUndo      bool        `json:"canUndo"`
	Solved       bool        `json:"solved"`
}

type Level struct {
	Name      string
	Board     Board
	Start     Position
	Pieces    []PieceType
	TimeLimit time.Duration
}

// Validate checks what a loader has to guarantee before a level reaches a game.
func (l Level) Validate() error {
	if l.Name == "" {
		return ErrEmptyLevelName
	}
	if !l.Start.OnBoard() {
		return errors.WithMessagef(ErrStartOffBoard, "level '%s': (%d, %d)", l.Name, l.Start.X, l.Start.Y)
	}
	if l.Board.At(l.Start) != Empty {
		return errors.WithMessagef(ErrStartOccupied, "level '%s': (%d, %d)", l.Name, l.Start.X, l.Start.Y)
	}
	if len(l.Pieces) == 0 {
		return errors.WithMessagef(ErrNoPieces, "level '%s'", l.Name)
	}
	for i, p := range l.Pieces {
		if !p.Valid() {
			return errors.WithMessagef(ErrUnknownPieceType, "level '%s': slot %d", l.Name, i)
		}
	}
	return nil
}

type Outcome string

const (
	Solved    = Outcome("solved")
	TimeUp    = Outcome("time_up")
	Abandoned = Outcome("abandoned")
)

type PlayReport struct {
	SessionID string        `json:"sessionId"`
	PlayerID  string        `json:"playerId"`
	Level     string        `json:"level"`
	Outcome   Outcome       `json:"outcome"`
	Elapsed   time.Duration `json:"elapsed"`
}

type PlayUseCase interface {
	Play(ctx context.Context, client Client, level Level) (Outcome, time.Duration, error)
}
