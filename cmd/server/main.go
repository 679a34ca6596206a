package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiryu-dev/chess-puzzle/internal/adapters/webapi"
	"github.com/kiryu-dev/chess-puzzle/internal/config"
	"github.com/kiryu-dev/chess-puzzle/internal/domain"
	"github.com/kiryu-dev/chess-puzzle/internal/transport/ws"
	"github.com/kiryu-dev/chess-puzzle/internal/usecase/game"
	"github.com/kiryu-dev/chess-puzzle/internal/usecase/hub"
	"github.com/kiryu-dev/chess-puzzle/internal/usecase/reporter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	cfgPath := flag.String("config", "./config.yml", "path to config")
	flag.Parse()
	cfg, err := config.New(*cfgPath)
	if err != nil {
		logger.Fatal(err.Error())
	}
	logger.Info("loaded levels", zap.Int("count", len(cfg.Levels)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	reports := make(chan domain.PlayReport)
	var (
		repo   = webapi.New()
		rep    = reporter.New(repo, cfg.PeerAddrs(), logger)
		game   = game.New(logger)
		hub    = hub.New(game, cfg.Levels, reports, logger)
		server = ws.New(cfg.Addr, hub, rep, logger)
	)

	errGroup, gCtx := errgroup.WithContext(ctx)
	errGroup.Go(func() error {
		select {
		case s := <-sigChan:
			return errors.Errorf("captured signal: %v", s)
		case <-gCtx.Done():
			return nil
		}
	})
	errGroup.Go(func() error {
		rep.Run(gCtx, reports)
		return nil
	})
	errGroup.Go(func() error {
		rep.WatchPeers(gCtx)
		return nil
	})
	errGroup.Go(func() error {
		return server.ListenAndServe()
	})
	errGroup.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Info("failed to shutdown http server: " + err.Error())
		}
		return nil
	})
	if err := errGroup.Wait(); err != nil {
		logger.Info("gracefully shutting down the server: " + err.Error())
	}
}
