package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/bot"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/server"
	"github.com/lox/blackjack/internal/strategy"
)

// SpawnCmd runs a server in-process and seats bots at it
type SpawnCmd struct {
	Addr       string `kong:"default='localhost:0',help='Server address, defaults to random port on localhost'"`
	Spec       string `kong:"default='basic:3',help='Bot specification (e.g. basic:2,dealer:1,random:1)'"`
	Bet        int    `kong:"default='10',help='Flat bet per bot per round'"`
	Rounds     int    `kong:"default='10',help='Rounds each bot plays (0 for until out of chips)'"`
	Seed       int64  `kong:"help='Seed for deterministic testing (0 for random)'"`
	StartDelay string `kong:"default='500ms',help='Delay between the quorum bet and the deal'"`
	Dwell      string `kong:"default='1s',help='How long results stay on the table'"`
	History    string `kong:"help='Record rounds to this sqlite file'"`
	KeepAlive  bool   `kong:"help='Keep the server running after the bots finish'"`
	LogLevel   string `kong:"default='info',help='Log level (debug|info|warn|error)'"`
}

// botSpec is one entry of the --spec list
type botSpec struct {
	Strategy string
	Count    int
}

// parseSpecString parses "strategy:count" entries separated by commas. A
// missing count means one bot.
func parseSpecString(spec string) ([]botSpec, error) {
	var specs []botSpec
	for part := range strings.SplitSeq(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, countStr, hasCount := strings.Cut(part, ":")
		count := 1
		if hasCount {
			n, err := strconv.Atoi(countStr)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid bot count in %q", part)
			}
			count = n
		}
		if _, err := strategy.New(name, randutil.New(0), 1); err != nil {
			return nil, err
		}
		specs = append(specs, botSpec{Strategy: name, Count: count})
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no bots specified (use --spec to specify bots)")
	}
	return specs, nil
}

func (c *SpawnCmd) Run() error {
	logger, err := shared.SetupLogger(c.LogLevel)
	if err != nil {
		return err
	}

	specs, err := parseSpecString(c.Spec)
	if err != nil {
		return fmt.Errorf("failed to parse spec: %w", err)
	}
	total := 0
	for _, s := range specs {
		total += s.Count
	}

	cfg := server.DefaultServerConfig()
	cfg.Server.LogLevel = c.LogLevel
	cfg.Table.RoundStartDelay = c.StartDelay
	cfg.Table.ResultDwell = c.Dwell
	cfg.Table.MaxPlayers = max(cfg.Table.MaxPlayers, total)
	cfg.Table.MinBettors = max(1, min(total, cfg.Table.MinBettors))
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg.Table.Seed = &seed
	if c.History != "" {
		cfg.History = &server.HistorySettings{Driver: "sqlite", DSN: c.History}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	ts, err := newTableServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		_ = ts.close()
		return fmt.Errorf("failed to listen: %w", err)
	}
	serverURL := fmt.Sprintf("http://%s", ln.Addr())

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	serverDone := make(chan error, 1)
	go func() { serverDone <- ts.serve(serverCtx, ln) }()

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = server.WaitForHealthy(healthCtx, serverURL)
	cancel()
	if err != nil {
		stopServer()
		return errors.Join(fmt.Errorf("server failed to start: %w", err), <-serverDone)
	}
	logger.Info("Server started", "url", serverURL, "seed", seed)
	logger.Info("Spawning bots", "spec", c.Spec, "total_bots", total)

	rng := randutil.New(seed)
	g, gctx := errgroup.WithContext(ctx)
	n := 0
	for _, s := range specs {
		for range s.Count {
			n++
			strat, err := strategy.New(s.Strategy, randutil.New(rng.Int64()), c.Bet)
			if err != nil {
				return err
			}
			botCfg := bot.Config{
				ServerURL:      serverURL,
				Name:           fmt.Sprintf("%s-%d", s.Strategy, n),
				Strategy:       strat,
				MaxRounds:      c.Rounds,
				ConnectTimeout: 5 * time.Second,
			}
			g.Go(func() error {
				return bot.Run(gctx, botCfg, logger)
			})
		}
	}

	botErr := g.Wait()
	if botErr != nil && ctx.Err() == nil {
		logger.Error("Bot failed", "error", botErr)
	} else {
		logger.Info("All bots finished")
	}

	if c.KeepAlive && ctx.Err() == nil {
		logger.Info("Keeping server alive, press Ctrl+C to stop", "url", serverURL)
		<-ctx.Done()
	}
	stopServer()
	return errors.Join(botErr, <-serverDone)
}
