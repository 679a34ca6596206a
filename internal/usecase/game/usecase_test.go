package game

import (
	"context"
	"testing"
	"time"

	"github.com/kiryu-dev/chess-puzzle/internal/domain"
	"github.com/kiryu-dev/chess-puzzle/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClient struct {
	in  chan domain.Message
	out chan domain.Message
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		in:  make(chan domain.Message),
		out: make(chan domain.Message, 16),
	}
}

func (c *fakeClient) WriteMessage(msg domain.Message) error {
	c.out <- msg
	return nil
}

func (c *fakeClient) ReadMessage() (domain.Message, error) {
	msg, ok := <-c.in
	if !ok {
		return domain.Message{}, domain.ErrConnectionClosed
	}
	return msg, nil
}

func (c *fakeClient) Uuid() string {
	return "player"
}

func (c *fakeClient) next(t *testing.T) domain.Message {
	t.Helper()
	select {
	case msg := <-c.out:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message from the server")
	}
	return domain.Message{}
}

func (c *fakeClient) nextState(t *testing.T) domain.GameState {
	t.Helper()
	msg := c.next(t)
	require.Equal(t, domain.StateUpdate, msg.Type)
	v, err := utils.DecodePayload[domain.StateUpdatePayload](msg.Payload)
	require.NoError(t, err)
	return v.State
}

type playResult struct {
	outcome domain.Outcome
	elapsed time.Duration
	err     error
}

func startPlay(ctx context.Context, client *fakeClient, level domain.Level) <-chan playResult {
	results := make(chan playResult, 1)
	go func() {
		outcome, elapsed, err := New(zap.NewNop()).Play(ctx, client, level)
		results <- playResult{outcome: outcome, elapsed: elapsed, err: err}
	}()
	return results
}

func waitResult(t *testing.T, results <-chan playResult) playResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("play did not finish")
	}
	return playResult{}
}

func TestPlaySolved(t *testing.T) {
	client := newFakeClient()
	results := startPlay(context.Background(), client, rookLevel(t))

	state := client.nextState(t)
	assert.Equal(t, pos(3, 5), state.Position)
	assert.False(t, state.Solved)

	client.in <- domain.Message{Type: domain.SelectPiece, Payload: map[string]any{"Slot": 0}}
	state = client.nextState(t)
	require.NotNil(t, state.Selected)
	assert.Contains(t, state.MovableTiles, pos(3, 0))

	client.in <- domain.Message{Type: domain.MovePiece, Payload: domain.MovePiecePayload{Position: pos(3, 0)}}
	state = client.nextState(t)
	assert.True(t, state.Solved)
	assert.True(t, state.CanUndo)

	msg := client.next(t)
	require.Equal(t, domain.PuzzleSolved, msg.Type)

	r := waitResult(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, domain.Solved, r.outcome)
}

func TestPlayIgnoresBadMessages(t *testing.T) {
	client := newFakeClient()
	results := startPlay(context.Background(), client, rookLevel(t))
	initial := client.nextState(t)

	client.in <- domain.Message{Type: domain.LoadLevel, Payload: domain.LoadLevelPayload{Name: "other"}}
	assert.Equal(t, initial, client.nextState(t))

	client.in <- domain.Message{Type: domain.SelectPiece}
	assert.Equal(t, initial, client.nextState(t))

	client.in <- domain.Message{Type: domain.UndoMove}
	assert.Equal(t, initial, client.nextState(t))

	close(client.in)
	r := waitResult(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, domain.Abandoned, r.outcome)
}

func TestPlayResetAfterMove(t *testing.T) {
	level := mustLevel(t, pos(0, 5), []domain.PieceType{domain.King, domain.Rook},
		"T.....",
		"......",
		"......",
		"......",
		"......",
		"....T.",
	)
	client := newFakeClient()
	results := startPlay(context.Background(), client, level)
	initial := client.nextState(t)

	client.in <- domain.Message{Type: domain.SelectPiece, Payload: domain.SelectPiecePayload{Slot: 0}}
	client.nextState(t)
	client.in <- domain.Message{Type: domain.MovePiece, Payload: domain.MovePiecePayload{Position: pos(1, 5)}}
	moved := client.nextState(t)
	assert.Equal(t, pos(1, 5), moved.Position)

	client.in <- domain.Message{Type: domain.ResetLevel}
	assert.Equal(t, initial, client.nextState(t))

	close(client.in)
	r := waitResult(t, results)
	assert.Equal(t, domain.Abandoned, r.outcome)
}

func TestPlayTimeUp(t *testing.T) {
	level := rookLevel(t)
	level.TimeLimit = 50 * time.Millisecond
	client := newFakeClient()
	results := startPlay(context.Background(), client, level)
	client.nextState(t)

	msg := client.next(t)
	assert.Equal(t, domain.TimeOver, msg.Type)

	r := waitResult(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, domain.TimeUp, r.outcome)
	assert.GreaterOrEqual(t, r.elapsed, level.TimeLimit)
}

func TestPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := newFakeClient()
	results := startPlay(ctx, client, rookLevel(t))
	client.nextState(t)

	cancel()
	r := waitResult(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, domain.Abandoned, r.outcome)
}

func TestPlayLevelWithoutTargets(t *testing.T) {
	level := mustLevel(t, pos(0, 0), []domain.PieceType{domain.Pawn},
		"......",
		"......",
		"......",
		"......",
		"......",
		"......",
	)
	client := newFakeClient()
	results := startPlay(context.Background(), client, level)
	assert.True(t, client.nextState(t).Solved)
	assert.Equal(t, domain.PuzzleSolved, client.next(t).Type)
	assert.Equal(t, domain.Solved, waitResult(t, results).outcome)
}
