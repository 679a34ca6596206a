package hub

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiryu-dev/chess-puzzle/internal/domain"
	"github.com/kiryu-dev/chess-puzzle/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var (
	ErrSessionActive         = errors.New("player already has an active session")
	errUnexpectedMessageType = errors.New("unexpected message type")
)

type session struct {
	id        string
	playerID  string
	level     string
	startedAt time.Time
}

type useCase struct {
	game     domain.PlayUseCase
	levels   []domain.Level
	byName   map[string]int
	sessions map[string]session
	reports  chan<- domain.PlayReport
	active   *atomic.Int64
	mu       *sync.Mutex
	logger   *zap.Logger
}

func New(game domain.PlayUseCase, levels []domain.Level, reports chan<- domain.PlayReport, logger *zap.Logger) *useCase {
	byName := make(map[string]int, len(levels))
	for i, level := range levels {
		byName[level.Name] = i
	}
	return &useCase{
		game:     game,
		levels:   levels,
		byName:   byName,
		sessions: make(map[string]session),
		reports:  reports,
		active:   atomic.NewInt64(0),
		mu:       &sync.Mutex{},
		logger:   logger,
	}
}

func (u *useCase) Handle(ctx context.Context, client domain.Client) error {
	level, err := u.chooseLevel(client)
	if err != nil {
		return errors.WithMessage(err, "choose level")
	}
	s, err := u.openSession(client.Uuid(), level)
	if err != nil {
		return errors.WithMessage(err, "open session")
	}
	defer u.closeSession(s)

	outcome, elapsed, err := u.game.Play(ctx, client, level)
	report := domain.PlayReport{
		SessionID: s.id,
		PlayerID:  s.playerID,
		Level:     level.Name,
		Outcome:   outcome,
		Elapsed:   elapsed,
	}
	select {
	case u.reports <- report:
	case <-ctx.Done():
		u.logger.Warn("drop play report", zap.Any("report", report))
	}
	if err != nil {
		return errors.WithMessage(err, "play game")
	}
	return nil
}

// chooseLevel expects a LoadLevel message first. An empty name picks the first level.
func (u *useCase) chooseLevel(client domain.Client) (domain.Level, error) {
	msg, err := client.ReadMessage()
	if err != nil {
		return domain.Level{}, errors.WithMessage(err, "read message from player")
	}
	if msg.Type != domain.LoadLevel {
		return domain.Level{}, errors.WithMessagef(errUnexpectedMessageType, "%d", msg.Type)
	}
	v, err := utils.DecodePayload[domain.LoadLevelPayload](msg.Payload)
	if err != nil && !errors.Is(err, utils.ErrEmptyPayload) {
		return domain.Level{}, errors.WithMessage(err, "decode 'LoadLevelPayload'")
	}
	return u.Level(v.Name)
}

func (u *useCase) Level(name string) (domain.Level, error) {
	if len(u.levels) == 0 {
		return domain.Level{}, domain.ErrLevelNotFound
	}
	if name == "" {
		return u.levels[0], nil
	}
	i, ok := u.byName[name]
	if !ok {
		return domain.Level{}, errors.WithMessagef(domain.ErrLevelNotFound, "'%s'", name)
	}
	return u.levels[i], nil
}

func (u *useCase) openSession(playerID string, level domain.Level) (session, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, s := range u.sessions {
		if s.playerID == playerID {
			return session{}, errors.WithMessagef(ErrSessionActive, "session '%s'", s.id)
		}
	}
	s := session{
		id:        uuid.NewString(),
		playerID:  playerID,
		level:     level.Name,
		startedAt: time.Now(),
	}
	u.sessions[s.id] = s
	u.active.Inc()
	u.logger.Info("session opened", zap.String("session", s.id),
		zap.String("player", playerID), zap.String("level", level.Name),
		zap.Strings("board", level.Board.Rows()), zap.Stringers("pieces", level.Pieces))
	return s, nil
}

func (u *useCase) closeSession(s session) {
	u.mu.Lock()
	delete(u.sessions, s.id)
	u.mu.Unlock()
	u.active.Dec()
	u.logger.Info("session closed", zap.String("session", s.id), zap.String("player", s.playerID),
		zap.String("level", s.level), zap.Duration("duration", time.Since(s.startedAt)))
}

func (u *useCase) ActiveSessions() int64 {
	return u.active.Load()
}
