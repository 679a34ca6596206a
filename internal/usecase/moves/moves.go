package moves

import (
	"github.com/kiryu-dev/chess-puzzle/internal/domain"
)

type vector struct {
	dx, dy int
}

var (
	kingSteps = []vector{
		{0, -1}, {1, -1}, {1, 0}, {1, 1},
		{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
	}
	knightSteps = []vector{
		{2, -1}, {1, -2}, {-1, -2}, {-2, -1},
		{-2, 1}, {-1, 2}, {1, 2}, {2, 1},
	}
	bishopRays = []vector{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}}
	rookRays   = []vector{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	queenRays  = append(append([]vector{}, bishopRays...), rookRays...)
)

/* pawns only ever advance towards y == 0 */
var (
	pawnForward  = vector{0, -1}
	pawnCaptures = []vector{{-1, -1}, {1, -1}}
)

// Generate returns every cell the given piece may move to from pos.
// The board is only read. A pos outside the board is a caller error.
func Generate(board *domain.Board, pos domain.Position, piece domain.PieceType) []domain.Position {
	switch piece {
	case domain.King:
		return steps(board, pos, kingSteps)
	case domain.Knight:
		return steps(board, pos, knightSteps)
	case domain.Bishop:
		return slides(board, pos, bishopRays)
	case domain.Rook:
		return slides(board, pos, rookRays)
	case domain.Queen:
		return slides(board, pos, queenRays)
	case domain.Pawn:
		return pawn(board, pos)
	default:
		return nil
	}
}

func steps(board *domain.Board, pos domain.Position, offsets []vector) []domain.Position {
	result := make([]domain.Position, 0, len(offsets))
	for _, v := range offsets {
		next := pos.Add(v.dx, v.dy)
		if next.OnBoard() && !board.IsBlocker(next) {
			result = append(result, next)
		}
	}
	return result
}

func slides(board *domain.Board, pos domain.Position, rays []vector) []domain.Position {
	result := make([]domain.Position, 0, domain.BoardSize*len(rays))
	for _, v := range rays {
		next := pos.Add(v.dx, v.dy)
		for next.OnBoard() && !board.IsBlocker(next) {
			result = append(result, next)
			if board.IsTarget(next) {
				break /* at most one capture per slide */
			}
			next = next.Add(v.dx, v.dy)
		}
	}
	return result
}

func pawn(board *domain.Board, pos domain.Position) []domain.Position {
	result := make([]domain.Position, 0, 1+len(pawnCaptures))
	next := pos.Add(pawnForward.dx, pawnForward.dy)
	if next.OnBoard() && board.At(next) == domain.Empty {
		result = append(result, next)
	}
	for _, v := range pawnCaptures {
		next := pos.Add(v.dx, v.dy)
		if next.OnBoard() && board.IsTarget(next) {
			result = append(result, next)
		}
	}
	return result
}
