package ws

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/chess-puzzle/internal/domain"
	"github.com/kiryu-dev/chess-puzzle/internal/usecase/game"
	"github.com/kiryu-dev/chess-puzzle/internal/usecase/hub"
	"github.com/kiryu-dev/chess-puzzle/internal/usecase/reporter"
	"github.com/kiryu-dev/chess-puzzle/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopRepo struct{}

func (nopRepo) Report(context.Context, string, domain.PlayReport) error {
	return nil
}

func (nopRepo) HealthCheck(context.Context, string) (*domain.HealthCheckResponse, error) {
	return &domain.HealthCheckResponse{}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, domain.ReportUseCase) {
	t.Helper()
	board, err := domain.ParseBoard([]string{
		"...T..",
		"......",
		"......",
		"......",
		"......",
		"......",
	})
	require.NoError(t, err)
	levels := []domain.Level{{
		Name:      "first-capture",
		Board:     board,
		Start:     domain.Position{X: 3, Y: 5},
		Pieces:    []domain.PieceType{domain.Rook},
		TimeLimit: time.Minute,
	}}

	logger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	reports := make(chan domain.PlayReport)
	rep := reporter.New(nopRepo{}, nil, logger)
	go rep.Run(ctx, reports)
	h := hub.New(game.New(logger), levels, reports, logger)

	srv := httptest.NewServer(New("", h, rep, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, rep
}

func readState(t *testing.T, conn *websocket.Conn) domain.StateUpdatePayload {
	t.Helper()
	var msg domain.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, domain.StateUpdate, msg.Type)
	v, err := utils.DecodePayload[domain.StateUpdatePayload](msg.Payload)
	require.NoError(t, err)
	return v
}

func TestPlayOverWebsocket(t *testing.T) {
	srv, rep := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/play"
	header := http.Header{}
	header.Set(domain.ClientUuidHeader, "alice")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer func() {
		_ = conn.Close()
	}()

	require.NoError(t, conn.WriteJSON(domain.Message{
		Type:    domain.LoadLevel,
		Payload: domain.LoadLevelPayload{Name: "first-capture"},
	}))
	initial := readState(t, conn)
	assert.Equal(t, "first-capture", initial.Level)
	assert.Equal(t, time.Minute, initial.TimeLimit)
	assert.Equal(t, []domain.PieceSlot{{Type: domain.Rook}}, initial.State.Roster)
	assert.Equal(t, domain.Target, initial.State.Board.At(domain.Position{X: 3, Y: 0}))

	require.NoError(t, conn.WriteJSON(domain.Message{
		Type:    domain.SelectPiece,
		Payload: domain.SelectPiecePayload{Slot: 0},
	}))
	selected := readState(t, conn)
	assert.Contains(t, selected.State.MovableTiles, domain.Position{X: 3, Y: 0})

	require.NoError(t, conn.WriteJSON(domain.Message{
		Type:    domain.MovePiece,
		Payload: domain.MovePiecePayload{Position: domain.Position{X: 3, Y: 0}},
	}))
	moved := readState(t, conn)
	assert.True(t, moved.State.Solved)
	assert.True(t, moved.State.Roster[0].Used)

	var msg domain.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, domain.PuzzleSolved, msg.Type)

	require.Eventually(t, func() bool {
		return rep.Stats().Solved == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHealthAndReport(t *testing.T) {
	srv, _ := newTestServer(t)

	body, err := jsoniter.Marshal(domain.PlayReport{SessionID: "remote", Outcome: domain.TimeUp})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/report", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/report", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health domain.HealthCheckResponse
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, domain.ReportStats{TimeUp: 1}, health.Reports)
	assert.Zero(t, health.ActiveSessions)
}
