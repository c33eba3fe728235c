package game

import (
	"context"
	"io"
	rand "math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
)

type captured struct {
	mu        sync.Mutex
	snapshots []Snapshot
	rounds    []RoundSummary
}

func (c *captured) OnTableUpdate(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, s)
}

func (c *captured) RecordRound(r RoundSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rounds = append(c.rounds, r)
}

func (c *captured) last() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshots[len(c.snapshots)-1]
}

func (c *captured) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snapshots)
}

func (c *captured) roundCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rounds)
}

type fixture struct {
	t      *testing.T
	table  *Table
	clock  *quartz.Mock
	events *captured
}

// newFixture builds a table whose every round deals the given cards in
// order: dealer first two, then two per bettor, then draws.
func newFixture(t *testing.T, cards string, opts ...Option) *fixture {
	t.Helper()

	var factory DeckFactory
	if cards != "" {
		stack := deck.MustParseCards(cards)
		factory = func(*rand.Rand) *deck.Deck { return deck.Stacked(stack...) }
	}

	events := &captured{}
	clock := quartz.NewMock(t)
	logger := log.NewWithOptions(io.Discard, log.Options{})

	allOpts := []Option{WithObserver(events), WithRecorder(events)}
	if factory != nil {
		allOpts = append(allOpts, WithDeckFactory(factory))
	}
	allOpts = append(allOpts, opts...)

	table := NewTable(logger, clock, randutil.New(1), allOpts...)
	t.Cleanup(table.Close)

	return &fixture{t: t, table: table, clock: clock, events: events}
}

func (f *fixture) advance(d time.Duration) {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f.clock.Advance(d).MustWait(ctx)
}

// seat joins each player and places their bet in order
func (f *fixture) seat(bets map[string]int, order ...string) {
	f.t.Helper()
	for _, id := range order {
		require.NoError(f.t, f.table.Join(id))
	}
	for _, id := range order {
		require.NoError(f.t, f.table.PlaceBet(id, bets[id]))
	}
}

// deal seats players, bets and fires the round start
func (f *fixture) deal(bets map[string]int, order ...string) {
	f.t.Helper()
	f.seat(bets, order...)
	f.advance(f.table.Config().RoundStartDelay)
	require.Equal(f.t, PhasePlaying, f.table.Phase())
}

func (f *fixture) player(id string) Player {
	f.t.Helper()
	p, ok := f.table.Player(id)
	require.True(f.t, ok, "player %s not seated", id)
	return p
}
