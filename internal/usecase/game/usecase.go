package game

import (
	"context"
	"time"

	"github.com/kiryu-dev/chess-puzzle/internal/domain"
	"github.com/kiryu-dev/chess-puzzle/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type useCase struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) useCase {
	return useCase{
		logger: logger,
	}
}

// Play runs one puzzle attempt for client until it is solved, the level's
// time limit runs out or the client goes away.
func (u useCase) Play(ctx context.Context, client domain.Client, level domain.Level) (domain.Outcome, time.Duration, error) {
	if level.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, level.TimeLimit)
		defer cancel()
	}
	startedAt := time.Now()
	solved := false
	game := NewGame(level, OnSolved(func() {
		solved = true
	}))
	if err := sendState(client, level, game); err != nil {
		return domain.Abandoned, time.Since(startedAt), errors.WithMessage(err, "send initial state")
	}
	if game.IsSolved() {
		elapsed := time.Since(startedAt)
		return domain.Solved, elapsed, sendSolved(client, elapsed)
	}

	var (
		messages = make(chan domain.Message)
		readErrs = make(chan error, 1)
		done     = make(chan struct{})
	)
	defer close(done)
	go readMessages(client, messages, readErrs, done)

	for {
		select {
		case <-ctx.Done():
			elapsed := time.Since(startedAt)
			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return domain.Abandoned, elapsed, nil
			}
			if err := client.WriteMessage(domain.Message{Type: domain.TimeOver}); err != nil {
				return domain.TimeUp, elapsed, errors.WithMessage(err, "send message to player")
			}
			return domain.TimeUp, elapsed, nil
		case err := <-readErrs:
			elapsed := time.Since(startedAt)
			if errors.Is(err, domain.ErrConnectionClosed) {
				return domain.Abandoned, elapsed, nil
			}
			return domain.Abandoned, elapsed, errors.WithMessage(err, "read message from player")
		case msg := <-messages:
			if err := applyMessage(game, level, msg); err != nil {
				u.logger.Warn("skip player's message", zap.String("player", client.Uuid()), zap.Error(err))
			}
			if err := sendState(client, level, game); err != nil {
				return domain.Abandoned, time.Since(startedAt), errors.WithMessage(err, "send state")
			}
			if !solved {
				continue
			}
			elapsed := time.Since(startedAt)
			u.logger.Info("puzzle solved", zap.String("player", client.Uuid()),
				zap.String("level", level.Name), zap.Duration("elapsed", elapsed))
			return domain.Solved, elapsed, sendSolved(client, elapsed)
		}
	}
}

func readMessages(client domain.Client, out chan<- domain.Message, errs chan<- error, done <-chan struct{}) {
	for {
		msg, err := client.ReadMessage()
		if err != nil {
			errs <- err
			return
		}
		select {
		case out <- msg:
		case <-done:
			return
		}
	}
}

func applyMessage(game *Game, level domain.Level, msg domain.Message) error {
	switch msg.Type {
	case domain.SelectPiece:
		v, err := utils.DecodePayload[domain.SelectPiecePayload](msg.Payload)
		if err != nil {
			return errors.WithMessage(err, "decode 'SelectPiecePayload'")
		}
		game.SelectPiece(v.Slot)
	case domain.MovePiece:
		v, err := utils.DecodePayload[domain.MovePiecePayload](msg.Payload)
		if err != nil {
			return errors.WithMessage(err, "decode 'MovePiecePayload'")
		}
		game.AttemptMove(v.Position)
	case domain.UndoMove:
		game.Undo()
	case domain.ResetLevel:
		game.Reset(level)
	default:
		return errors.WithMessagef(errUnexpectedMessageType, "%d", msg.Type)
	}
	return nil
}

func sendSolved(client domain.Client, elapsed time.Duration) error {
	err := client.WriteMessage(domain.Message{
		Type:    domain.PuzzleSolved,
		Payload: domain.PuzzleSolvedPayload{Elapsed: elapsed},
	})
	if err != nil {
		return errors.WithMessage(err, "send message to player")
	}
	return nil
}

func sendState(client domain.Client, level domain.Level, game *Game) error {
	err := client.WriteMessage(domain.Message{
		Type: domain.StateUpdate,
		Payload: domain.StateUpdatePayload{
			Level:     level.Name,
			State:     game.Snapshot(),
			TimeLimit: level.TimeLimit,
		},
	})
	if err != nil {
		return errors.WithMessage(err, "send message to player")
	}
	return nil
}
