// Package history keeps a ledger of settled rounds in a SQL database.
//
// Two drivers are supported: "sqlite" (modernc.org/sqlite, pure Go, good
// for a single server and for tests with ":memory:") and "postgres"
// (github.com/lib/pq).
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultLimit = 20
	MaxLimit     = 500
)

var ErrUnsupportedDriver = errors.New("unsupported history driver")

// Store persists round summaries
type Store struct {
	db     *sql.DB
	driver string
	logger *log.Logger
}

// NormalizeDriver maps driver aliases onto a supported driver name
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
}

// Open connects to the database and ensures the schema exists
func Open(ctx context.Context, driver, dsn string, logger *log.Logger) (*Store, error) {
	driver, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty %s dsn", driver)
	}

	if driver == DriverSQLite && dsn != ":memory:" {
		if parent := filepath.Dir(dsn); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	s := &Store{db: db, driver: driver, logger: logger.WithPrefix("history")}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Info("History store ready", "driver", driver)
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.driver, err)
	}

	var stmts []string
	switch s.driver {
	case DriverSQLite:
		stmts = []string{
			`PRAGMA busy_timeout = 5000;`,
			`PRAGMA journal_mode = WAL;`,
			`
CREATE TABLE IF NOT EXISTS rounds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    round INTEGER NOT NULL,
    settled_at_ms INTEGER NOT NULL,
    dealer_hand TEXT NOT NULL,
    dealer_total INTEGER NOT NULL,
    results_json TEXT NOT NULL
);`,
		}
	case DriverPostgres:
		stmts = []string{`
CREATE TABLE IF NOT EXISTS rounds (
    id BIGSERIAL PRIMARY KEY,
    round BIGINT NOT NULL,
    settled_at_ms BIGINT NOT NULL,
    dealer_hand TEXT NOT NULL,
    dealer_total INTEGER NOT NULL,
    results_json TEXT NOT NULL
);`,
		}
	}
	stmts = append(stmts, `CREATE INDEX IF NOT EXISTS rounds_settled_at_idx ON rounds (settled_at_ms);`)

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s schema: %w", s.driver, err)
		}
	}
	return nil
}

// Close releases the database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends a settled round
func (s *Store) Record(ctx context.Context, summary game.RoundSummary) error {
	results, err := json.Marshal(summary.Results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	settledAt := summary.SettledAt
	if settledAt.IsZero() {
		settledAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO rounds (round, settled_at_ms, dealer_hand, dealer_total, results_json)
VALUES (?, ?, ?, ?, ?)
`), int64(summary.Round), settledAt.UTC().UnixMilli(), deck.FormatCards(summary.DealerHand), summary.DealerTotal, string(results))
	if err != nil {
		return fmt.Errorf("insert round %d: %w", summary.Round, err)
	}
	return nil
}

// Recent returns up to limit rounds, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]game.RoundSummary, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT round, settled_at_ms, dealer_hand, dealer_total, results_json
FROM rounds
ORDER BY id DESC
LIMIT ?
`), limit)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var out []game.RoundSummary
	for rows.Next() {
		var (
			round       int64
			settledAtMs int64
			dealerHand  string
			summary     game.RoundSummary
			resultsRaw  string
		)
		if err := rows.Scan(&round, &settledAtMs, &dealerHand, &summary.DealerTotal, &resultsRaw); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}

		summary.Round = uint64(round)
		summary.SettledAt = time.UnixMilli(settledAtMs).UTC()
		if summary.DealerHand, err = deck.ParseCards(dealerHand); err != nil {
			return nil, fmt.Errorf("round %d dealer hand: %w", round, err)
		}
		if err := json.Unmarshal([]byte(resultsRaw), &summary.Results); err != nil {
			return nil, fmt.Errorf("round %d results: %w", round, err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// rebind rewrites ? placeholders to the $n form postgres expects
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
