package domain

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownPieceType = errors.New("unknown piece type")

type PieceType byte

const (
	King = PieceType(iota)
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

var pieceNames = [...]string{
	King:   "king",
	Queen:  "queen",
	Rook:   "rook",
	Bishop: "bishop",
	Knight: "knight",
	Pawn:   "pawn",
}

func (p PieceType) String() string {
	if int(p) < len(pieceNames) {
		return pieceNames[p]
	}
	return "unknown"
}

func (p PieceType) Valid() bool {
	return int(p) < len(pieceNames)
}

func ParsePieceType(s string) (PieceType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, v := range pieceNames {
		if v == name {
			return PieceType(i), nil
		}
	}
	return 0, errors.WithMessagef(ErrUnknownPieceType, "'%s'", s)
}

func (p PieceType) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, errors.WithMessagef(ErrUnknownPieceType, "%d", p)
	}
	return []byte(p.String()), nil
}

func (p *PieceType) UnmarshalText(text []byte) error {
	v, err := ParsePieceType(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// PieceSlot is one entry of the roster. Its index is stable for the whole game.
type PieceSlot struct {
	Type PieceType `json:"type"`
	Used bool      `json:"used"`
}

func NewRoster(pieces []PieceType) []PieceSlot {
	roster := make([]PieceSlot, len(pieces))
	for i, p := range pieces {
		roster[i] = PieceSlot{Type: p}
	}
	return roster
}
