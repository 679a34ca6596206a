package domain

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrBoardRows = errors.New("unexpected number of board rows")
	ErrBoardCell = errors.New("unexpected board cell")
)

// BoardSize is the side length of every puzzle board.
const BoardSize = 6

type Cell byte

const (
	Empty = Cell(iota)
	Target
	Blocker
)

var cellRunes = [...]rune{
	Empty:   '.',
	Target:  'T',
	Blocker: '#',
}

func (c Cell) Rune() rune {
	if int(c) < len(cellRunes) {
		return cellRunes[c]
	}
	return '?'
}

type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) OnBoard() bool {
	return p.X >= 0 && p.X < BoardSize && p.Y >= 0 && p.Y < BoardSize
}

// Board is indexed as [y][x]. Occupancy of the piece is tracked outside the board.
type Board [BoardSize][BoardSize]Cell

func (b Board) At(pos Position) Cell {
	return b[pos.Y][pos.X]
}

func (b *Board) Set(pos Position, cell Cell) {
	b[pos.Y][pos.X] = cell
}

func (b Board) IsBlocker(pos Position) bool {
	return b.At(pos) == Blocker
}

func (b Board) IsTarget(pos Position) bool {
	return b.At(pos) == Target
}

func (b Board) Targets() int {
	count := 0
	for _, row := range b {
		for _, cell := range row {
			if cell == Target {
				count++
			}
		}
	}
	return count
}

// ParseBoard reads one string per row, top row first, using '.', 'T' and '#'.
func ParseBoard(rows []string) (Board, error) {
	var board Board
	if len(rows) != BoardSize {
		return board, errors.WithMessagef(ErrBoardRows, "got %d, want %d", len(rows), BoardSize)
	}
	for y, row := range rows {
		cells := []rune(strings.TrimSpace(row))
		if len(cells) != BoardSize {
			return board, errors.WithMessagef(ErrBoardCell, "row %d has %d cells, want %d", y, len(cells), BoardSize)
		}
		for x, r := range cells {
			switch r {
			case '.':
				board[y][x] = Empty
			case 'T', 't':
				board[y][x] = Target
			case '#':
				board[y][x] = Blocker
			default:
				return board, errors.WithMessagef(ErrBoardCell, "'%c' at (%d, %d)", r, x, y)
			}
		}
	}
	return board, nil
}

func (b Board) Rows() []string {
	rows := make([]string, BoardSize)
	for y, row := range b {
		var sb strings.Builder
		for _, cell := range row {
			sb.WriteRune(cell.Rune())
		}
		rows[y] = sb.String()
	}
	return rows
}

func ContainsPosition(positions []Position, pos Position) bool {
	for _, p := range positions {
		if p == pos {
			return true
		}
	}
	return false
}
