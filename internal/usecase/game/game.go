package game

import (
	"github.com/kiryu-dev/chess-puzzle/internal/domain"
	"github.com/kiryu-dev/chess-puzzle/internal/usecase/moves"
)

const noSelection = -1

// Game is the mutable state of one puzzle attempt. Every operation that
// cannot apply leaves the state untouched. A Game is not safe for
// concurrent use; it belongs to a single session.
type Game struct {
	board        domain.Board
	position     domain.Position
	roster       []domain.PieceSlot
	history      []domain.MoveRecord
	selected     int
	movableTiles []domain.Position
	solved       bool
	onSolved     func()
}

type Option func(g *Game)

// OnSolved registers fn to be called every time the board loses its last target.
func OnSolved(fn func()) Option {
	return func(g *Game) {
		g.onSolved = fn
	}
}

func NewGame(level domain.Level, opts ...Option) *Game {
	g := &Game{}
	for _, opt := range opts {
		opt(g)
	}
	g.Reset(level)
	return g
}

func (g *Game) Reset(level domain.Level) {
	g.board = level.Board
	g.position = level.Start
	g.roster = domain.NewRoster(level.Pieces)
	g.history = g.history[:0]
	g.deselect()
	g.solved = g.board.Targets() == 0
}

func (g *Game) SelectPiece(slot int) bool {
	if slot < 0 || slot >= len(g.roster) {
		return false
	}
	if g.roster[slot].Used || slot == g.selected {
		return false
	}
	g.selected = slot
	g.movableTiles = moves.Generate(&g.board, g.position, g.roster[slot].Type)
	return true
}

func (g *Game) AttemptMove(to domain.Position) bool {
	if g.selected == noSelection || !domain.ContainsPosition(g.movableTiles, to) {
		return false
	}
	capture := g.board.IsTarget(to)
	g.history = append(g.history, domain.MoveRecord{
		Previous:   g.position,
		Slot:       g.selected,
		WasCapture: capture,
	})
	if capture {
		g.board.Set(to, domain.Empty)
	}
	g.roster[g.selected].Used = true
	g.position = to
	g.deselect()
	g.updateSolved()
	return true
}

func (g *Game) Undo() bool {
	if len(g.history) == 0 {
		return false
	}
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	if last.WasCapture {
		g.board.Set(g.position, domain.Target)
	}
	g.roster[last.Slot].Used = false
	g.position = last.Previous
	g.deselect()
	g.updateSolved()
	return true
}

func (g *Game) IsSolved() bool {
	return g.board.Targets() == 0
}

func (g *Game) CanUndo() bool {
	return len(g.history) > 0
}

func (g *Game) Selected() (int, bool) {
	return g.selected, g.selected != noSelection
}

func (g *Game) Snapshot() domain.GameState {
	state := domain.GameState{
		Board:        g.board,
		Position:     g.position,
		Roster:       append([]domain.PieceSlot{}, g.roster...),
		MovableTiles: append([]domain.Position{}, g.movableTiles...),
		CanUndo:      g.CanUndo(),
		Solved:       g.IsSolved(),
	}
	if slot, ok := g.Selected(); ok {
		state.Selected = &slot
	}
	return state
}

func (g *Game) History() []domain.MoveRecord {
	return append([]domain.MoveRecord{}, g.history...)
}

func (g *Game) deselect() {
	g.selected = noSelection
	g.movableTiles = nil
}

func (g *Game) updateSolved() {
	solved := g.IsSolved()
	if solved && !g.solved && g.onSolved != nil {
		g.onSolved()
	}
	g.solved = solved
}
