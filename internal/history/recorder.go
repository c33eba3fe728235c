package history

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
)

const writeTimeout = 3 * time.Second

// Recorder feeds settled rounds from the table into a Store on its own
// goroutine. RecordRound never blocks; when the queue is full the round is
// dropped and logged.
type Recorder struct {
	store  *Store
	logger *log.Logger
	queue  chan game.RoundSummary
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewRecorder starts a recorder with room for buffer pending rounds
func NewRecorder(store *Store, logger *log.Logger, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 64
	}
	r := &Recorder{
		store:  store,
		logger: logger.WithPrefix("history"),
		queue:  make(chan game.RoundSummary, buffer),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// RecordRound implements game.RoundRecorder
func (r *Recorder) RecordRound(summary game.RoundSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	select {
	case r.queue <- summary:
	default:
		r.logger.Warn("History queue full, dropping round", "round", summary.Round)
	}
}

// Close flushes pending rounds and stops the writer
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for summary := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.store.Record(ctx, summary); err != nil {
			r.logger.Error("Failed to record round", "round", summary.Round, "error", err)
		} else {
			r.logger.Debug("Round recorded", "round", summary.Round, "players", len(summary.Results))
		}
		cancel()
	}
}
