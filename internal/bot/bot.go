// Package bot plays the table automatically over a client connection.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
	"github.com/lox/blackjack/internal/strategy"
)

// ErrDisconnected is returned by Run when the server closes the connection
var ErrDisconnected = errors.New("disconnected from server")

// Actor is the part of a client a bot drives
type Actor interface {
	PlayerID() string
	PlaceBet(amount int) error
	Act(action game.Action) error
}

// Option configures a Bot
type Option func(*Bot)

// WithMaxRounds makes the bot stop after playing n rounds
func WithMaxRounds(n int) Option {
	return func(b *Bot) { b.maxRounds = n }
}

// WithMinBet sets the table minimum used for bet sizing until the server's
// welcome overrides it
func WithMinBet(n int) Option {
	return func(b *Bot) { b.minBet = n }
}

type actKey struct {
	round uint64
	cards int
}

// Bot reacts to table updates: it bets while betting is open and acts when
// it holds the turn
type Bot struct {
	actor     Actor
	strategy  strategy.Strategy
	logger    *log.Logger
	maxRounds int

	mu          sync.Mutex
	minBet      int
	betSent     bool
	betRound    uint64
	acted       actKey
	played      int
	lastCounted uint64
	chips       int
	finished    bool
	done        chan struct{}
}

// New creates a bot that plays through actor
func New(actor Actor, strat strategy.Strategy, logger *log.Logger, opts ...Option) *Bot {
	b := &Bot{
		actor:    actor,
		strategy: strat,
		logger:   logger.WithPrefix("bot"),
		minBet:   game.DefaultConfig().MinBet,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Finished is closed once the bot has stopped playing: it ran out of chips
// or reached its round limit
func (b *Bot) Finished() <-chan struct{} {
	return b.done
}

// Played returns the number of settled rounds the bot took part in
func (b *Bot) Played() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.played
}

// Chips returns the bot's chip count from the latest update
func (b *Bot) Chips() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chips
}

// HandleWelcome records the table minimum
func (b *Bot) HandleWelcome(w protocol.WelcomeData) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w.MinBet > 0 {
		b.minBet = w.MinBet
	}
}

// HandleUpdate decides what, if anything, to send for a table update
func (b *Bot) HandleUpdate(snap game.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	id := b.actor.PlayerID()
	me, ok := snap.Players[id]
	if !ok {
		return
	}
	b.chips = me.Chips

	switch snap.Phase {
	case game.PhaseBetting:
		b.betLocked(snap, me)
	case game.PhasePlaying:
		b.actLocked(snap, me)
	case game.PhaseFinished:
		b.settleLocked(snap, me)
	}
}

func (b *Bot) betLocked(snap game.Snapshot, me game.PlayerView) {
	if me.Bet > 0 || (b.betSent && b.betRound == snap.Round) {
		return
	}
	if b.maxRounds > 0 && b.played >= b.maxRounds {
		b.logger.Info("Round limit reached", "rounds", b.played, "chips", me.Chips)
		b.finishLocked()
		return
	}

	amount := b.strategy.Bet(me.Chips, b.minBet)
	if amount == 0 {
		b.logger.Info("Out of chips", "chips", me.Chips, "minBet", b.minBet)
		b.finishLocked()
		return
	}

	b.betSent, b.betRound = true, snap.Round
	b.logger.Debug("Placing bet", "amount", amount, "chips", me.Chips)
	if err := b.actor.PlaceBet(amount); err != nil {
		b.logger.Error("Failed to place bet", "error", err)
	}
}

func (b *Bot) actLocked(snap game.Snapshot, me game.PlayerView) {
	if snap.CurrentTurn != me.ID || len(snap.Dealer) == 0 {
		return
	}
	key := actKey{round: snap.Round, cards: len(me.Hand)}
	if b.acted == key {
		return
	}
	up, ok := snap.Dealer[0].Card()
	if !ok {
		return
	}

	action := b.strategy.Decide(strategy.Situation{
		Hand:     game.Cards(me.Hand),
		DealerUp: up,
		Chips:    me.Chips,
		Bet:      me.Bet,
	})
	b.acted = key

	b.logger.Debug("Acting", "action", action, "score", me.Score, "dealerUp", up)
	if err := b.actor.Act(action); err != nil {
		b.logger.Error("Failed to act", "action", action, "error", err)
	}
}

func (b *Bot) settleLocked(snap game.Snapshot, me game.PlayerView) {
	if me.Outcome == game.OutcomeNone || snap.Round == b.lastCounted || b.betRound+1 != snap.Round {
		return
	}
	b.lastCounted = snap.Round
	b.played++
	b.logger.Info("Round over", "round", snap.Round, "outcome", me.Outcome, "score", me.Score, "chips", me.Chips)
}

func (b *Bot) finishLocked() {
	if b.finished {
		return
	}
	b.finished = true
	close(b.done)
}

// Config describes one bot connection
type Config struct {
	ServerURL      string
	Name           string
	Strategy       strategy.Strategy
	MaxRounds      int
	ConnectTimeout time.Duration
}

// Run connects a bot and plays until ctx is cancelled, the bot finishes or
// the server closes the connection
func Run(ctx context.Context, cfg Config, logger *log.Logger) error {
	c := client.NewClient(cfg.ServerURL, logger.With("bot", cfg.Name))
	b := New(c, cfg.Strategy, logger.With("bot", cfg.Name), WithMaxRounds(cfg.MaxRounds))

	c.AddEventHandler(protocol.TypeWelcome, func(msg *protocol.Message) {
		var w protocol.WelcomeData
		if err := msg.Decode(&w); err == nil {
			b.HandleWelcome(w)
		}
	})
	c.OnTableUpdate(b.HandleUpdate)
	c.OnError(func(e protocol.ErrorData) {
		b.logger.Warn("Server rejected message", "code", e.Code, "message", e.Message)
	})

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := c.Connect(connectCtx); err != nil {
		return fmt.Errorf("bot %s: %w", cfg.Name, err)
	}
	defer func() { _ = c.Disconnect() }()

	if cfg.Name != "" {
		if err := c.SetName(cfg.Name); err != nil {
			return err
		}
	}

	select {
	case <-ctx.Done():
	case <-b.Finished():
	case <-c.Done():
		return ErrDisconnected
	}

	_ = c.Leave()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
	}
	b.logger.Info("Bot finished", "rounds", b.Played(), "chips", b.Chips())
	return nil
}
