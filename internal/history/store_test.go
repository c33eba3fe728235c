package history

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), "sqlite", ":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func summary(round uint64, settled time.Time) game.RoundSummary {
	return game.RoundSummary{
		Round:       round,
		SettledAt:   settled,
		DealerHand:  deck.MustParseCards("10h 7c"),
		DealerTotal: 17,
		Results: []game.PlayerResult{
			{
				PlayerID:   "p1",
				Name:       "Alice",
				Hand:       deck.MustParseCards("As Kh"),
				Total:      21,
				Bet:        50,
				Payout:     125,
				Outcome:    game.OutcomeBlackjack,
				ChipsAfter: 1075,
			},
			{
				PlayerID:   "p2",
				Name:       "Bob",
				Hand:       deck.MustParseCards("10d 6s Kc"),
				Total:      26,
				Bet:        50,
				Outcome:    game.OutcomeLose,
				ChipsAfter: 950,
			},
		},
	}
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, store.Record(ctx, summary(i, base.Add(time.Duration(i)*time.Minute))))
	}

	rounds, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rounds, 2)

	assert.Equal(t, uint64(3), rounds[0].Round)
	assert.Equal(t, uint64(2), rounds[1].Round)

	got := rounds[0]
	want := summary(3, base.Add(3*time.Minute))
	assert.True(t, want.SettledAt.Equal(got.SettledAt))
	assert.Equal(t, want.DealerHand, got.DealerHand)
	assert.Equal(t, want.DealerTotal, got.DealerTotal)
	assert.Equal(t, want.Results, got.Results)
}

func TestRecentDefaultsLimit(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)

	rounds, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, rounds)

	require.NoError(t, store.Record(ctx, summary(1, time.Now())))
	rounds, err = store.Recent(ctx, -5)
	require.NoError(t, err)
	assert.Len(t, rounds, 1)
}

func TestNormalizeDriver(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sqlite", DriverSQLite},
		{"SQLite3", DriverSQLite},
		{"postgresql", DriverPostgres},
		{" pg ", DriverPostgres},
	}
	for _, tt := range tests {
		got, err := NormalizeDriver(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := NormalizeDriver("mysql")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "sqlite", " ", testLogger())
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	assert.Equal(t, "VALUES ($1, $2, $3)", pg.rebind("VALUES (?, ?, ?)"))

	lite := &Store{driver: DriverSQLite}
	assert.Equal(t, "VALUES (?, ?)", lite.rebind("VALUES (?, ?)"))
}

func TestRecorderFlushesOnClose(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	rec := NewRecorder(store, testLogger(), 8)

	for i := uint64(1); i <= 5; i++ {
		rec.RecordRound(summary(i, time.Now()))
	}
	rec.Close()

	rounds, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, rounds, 5)

	// recording after close is a no-op
	rec.RecordRound(summary(6, time.Now()))
	rec.Close()
}
