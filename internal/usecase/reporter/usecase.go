package reporter

import (
	"context"
	"time"

	"github.com/kiryu-dev/chess-puzzle/internal/domain"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxParallelReports = 4
	healthCheckPeriod  = 30 * time.Second
)

type useCase struct {
	repo      domain.ReportRepository
	peers     []string
	solved    *atomic.Int64
	timeUp    *atomic.Int64
	abandoned *atomic.Int64
	logger    *zap.Logger
}

func New(repo domain.ReportRepository, peers []string, logger *zap.Logger) *useCase {
	logger.Info("defined report peers", zap.Strings("peers", peers))
	return &useCase{
		repo:      repo,
		peers:     peers,
		solved:    atomic.NewInt64(0),
		timeUp:    atomic.NewInt64(0),
		abandoned: atomic.NewInt64(0),
		logger:    logger,
	}
}

// Run records every local report and forwards it to the peers until ctx is
// done or reports is closed.
func (u *useCase) Run(ctx context.Context, reports <-chan domain.PlayReport) {
	for {
		select {
		case <-ctx.Done():
			return
		case report, ok := <-reports:
			if !ok {
				return
			}
			u.Record(ctx, report)
			u.broadcast(ctx, report)
		}
	}
}

// Record counts a report without forwarding it.
func (u *useCase) Record(_ context.Context, report domain.PlayReport) {
	switch report.Outcome {
	case domain.Solved:
		u.solved.Inc()
	case domain.TimeUp:
		u.timeUp.Inc()
	case domain.Abandoned:
		u.abandoned.Inc()
	default:
		u.logger.Warn("unexpected outcome", zap.Any("report", report))
		return
	}
	u.logger.Info("play report", zap.String("session", report.SessionID),
		zap.String("player", report.PlayerID), zap.String("level", report.Level),
		zap.String("outcome", string(report.Outcome)), zap.Duration("elapsed", report.Elapsed))
}

func (u *useCase) Stats() domain.ReportStats {
	return domain.ReportStats{
		Solved:    u.solved.Load(),
		TimeUp:    u.timeUp.Load(),
		Abandoned: u.abandoned.Load(),
	}
}

func (u *useCase) broadcast(ctx context.Context, report domain.PlayReport) {
	if len(u.peers) == 0 {
		return
	}
	group := new(errgroup.Group)
	group.SetLimit(maxParallelReports)
	for _, addr := range u.peers {
		addr := addr
		group.Go(func() error {
			if err := u.repo.Report(ctx, addr, report); err != nil {
				u.logger.Warn("failed to send play report", zap.String("peer", addr), zap.Error(err))
			}
			return nil
		})
	}
	_ = group.Wait()
}

// WatchPeers logs the health of every peer periodically until ctx is done.
func (u *useCase) WatchPeers(ctx context.Context) {
	ticker := time.NewTicker(healthCheckPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, addr := range u.peers {
				resp, err := u.repo.HealthCheck(ctx, addr)
				if err != nil {
					u.logger.Warn(err.Error(), zap.String("peer", addr))
					continue
				}
				u.logger.Info("peer health", zap.String("peer", addr), zap.Any("health", resp))
			}
		}
	}
}
