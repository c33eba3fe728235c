package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/server"
)

// tableServer owns a table, its transport and the optional round ledger
type tableServer struct {
	logger   *log.Logger
	table    *game.Table
	server   *server.Server
	store    *history.Store
	recorder *history.Recorder
}

// newTableServer wires a table to a websocket server from cfg
func newTableServer(ctx context.Context, cfg *server.ServerConfig, logger *log.Logger) (*tableServer, error) {
	gameCfg, err := cfg.GameConfig()
	if err != nil {
		return nil, err
	}

	seed := randutil.Seed(cfg.Seed())
	if cfg.Seed() != nil {
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		logger.Info("Using random seed", "seed", seed)
	}

	ts := &tableServer{logger: logger}
	tableOpts := []game.Option{game.WithConfig(gameCfg)}
	var serverOpts []server.Option

	if cfg.History != nil {
		store, err := history.Open(ctx, cfg.History.Driver, cfg.History.DSN, logger)
		if err != nil {
			return nil, err
		}
		ts.store = store
		ts.recorder = history.NewRecorder(store, logger, 64)
		tableOpts = append(tableOpts, game.WithRecorder(ts.recorder))
		serverOpts = append(serverOpts, server.WithHistory(store))
	}

	ts.table = game.NewTable(logger, quartz.NewReal(), randutil.New(seed), tableOpts...)
	ts.server = server.NewServer(logger, ts.table, serverOpts...)

	logger.Info("Table ready",
		"starting_chips", gameCfg.StartingChips,
		"min_bet", gameCfg.MinBet,
		"max_players", gameCfg.MaxPlayers,
		"min_bettors", gameCfg.MinBettors,
		"round_start_delay", gameCfg.RoundStartDelay,
		"result_dwell", gameCfg.ResultDwell,
		"history", cfg.History != nil)

	return ts, nil
}

// serve runs until ctx is cancelled or the listener fails, then shuts down
func (ts *tableServer) serve(ctx context.Context, ln net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- ts.server.Serve(ln)
	}()

	var err error
	select {
	case <-ctx.Done():
		ts.logger.Info("Shutting down server...")
	case err = <-serverErr:
		if err != nil {
			err = fmt.Errorf("server failed: %w", err)
		}
	}
	return errors.Join(err, ts.close())
}

func (ts *tableServer) close() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := ts.server.Shutdown(shutdownCtx)
	ts.table.Close()
	if ts.recorder != nil {
		ts.recorder.Close()
	}
	if ts.store != nil {
		err = errors.Join(err, ts.store.Close())
	}
	return err
}
