package game

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/deck"
)

// DeckFactory produces the deck for a new round
type DeckFactory func(rng *rand.Rand) *deck.Deck

// Option configures a Table
type Option func(*Table)

// WithConfig sets the table settings
func WithConfig(cfg Config) Option {
	return func(t *Table) { t.cfg = cfg }
}

// WithObserver registers an observer at construction time
func WithObserver(o Observer) Option {
	return func(t *Table) { t.observers = append(t.observers, o) }
}

// WithRecorder sets the recorder that receives settled rounds
func WithRecorder(r RoundRecorder) Option {
	return func(t *Table) { t.recorder = r }
}

// WithDeckFactory replaces the shuffled 52-card deck used for each round
func WithDeckFactory(f DeckFactory) Option {
	return func(t *Table) { t.newDeck = f }
}

// Table is the single shared blackjack table. All state is guarded by mu;
// no method returns with a partial mutation applied.
type Table struct {
	mu     sync.Mutex
	cfg    Config
	clock  quartz.Clock
	rng    *rand.Rand
	logger *log.Logger

	players map[string]*Player
	seats   []string // join order

	deck    *deck.Deck
	newDeck DeckFactory
	dealer  []deck.Card

	phase        Phase
	round        uint64
	bets         map[string]int
	betOrder     []string
	turnOrder    []string
	participants []string

	startTimer *quartz.Timer
	resetTimer *quartz.Timer

	observers []Observer
	recorder  RoundRecorder
}

// NewTable creates an empty table in the waiting phase
func NewTable(logger *log.Logger, clock quartz.Clock, rng *rand.Rand, opts ...Option) *Table {
	t := &Table{
		cfg:     DefaultConfig(),
		clock:   clock,
		rng:     rng,
		logger:  logger.WithPrefix("table"),
		players: make(map[string]*Player),
		newDeck: deck.New,
		phase:   PhaseWaiting,
		bets:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Config returns the table settings
func (t *Table) Config() Config {
	return t.cfg
}

// AddObserver registers an observer for table updates
func (t *Table) AddObserver(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Phase returns the current phase
func (t *Table) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Player returns a copy of the player with id
func (t *Table) Player(id string) (Player, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.players[id]
	if !ok {
		return Player{}, false
	}
	return p.clone(), true
}

// PlayerCount returns the number of seated players
func (t *Table) PlayerCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.players)
}

// Join seats a new player with the starting chip count
func (t *Table) Join(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.players[id]; exists {
		return ErrPlayerExists
	}
	if len(t.players) >= t.cfg.MaxPlayers {
		return ErrTableFull
	}

	t.players[id] = newPlayer(id, t.cfg.StartingChips)
	t.seats = append(t.seats, id)
	if t.phase == PhaseWaiting {
		t.phase = PhaseBetting
	}

	t.logger.Info("Player joined", "player", id, "players", len(t.players))
	t.publishLocked()
	return nil
}

// SetName updates a player's display name
func (t *Table) SetName(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Name = name

	t.logger.Debug("Player renamed", "player", id, "name", name)
	t.publishLocked()
	return nil
}

// PlaceBet stakes amount for the next round. The stake leaves the player's
// chips immediately.
func (t *Table) PlaceBet(id string, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	if t.phase != PhaseBetting {
		return fmt.Errorf("%w: betting is closed while %s", ErrWrongPhase, t.phase)
	}
	if _, placed := t.bets[id]; placed {
		return ErrAlreadyBet
	}
	if amount < t.cfg.MinBet || amount > p.Chips {
		return fmt.Errorf("%w: %d (min %d, chips %d)", ErrInvalidBet, amount, t.cfg.MinBet, p.Chips)
	}

	p.Chips -= amount
	p.Bet = amount
	t.bets[id] = amount
	t.betOrder = append(t.betOrder, id)

	t.logger.Info("Bet placed", "player", id, "amount", amount, "bettors", len(t.bets))

	if len(t.bets) >= t.cfg.MinBettors {
		t.scheduleStartLocked()
	}
	t.publishLocked()
	return nil
}

// Leave removes a player and any pending bet. A stake already taken is not
// refunded.
func (t *Table) Leave(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.players[id]; !ok {
		return ErrPlayerNotFound
	}

	delete(t.players, id)
	delete(t.bets, id)
	t.seats = slices.DeleteFunc(t.seats, func(s string) bool { return s == id })
	t.betOrder = slices.DeleteFunc(t.betOrder, func(s string) bool { return s == id })

	t.logger.Info("Player left", "player", id, "remaining", len(t.players))

	switch t.phase {
	case PhasePlaying:
		idx := slices.Index(t.turnOrder, id)
		if idx >= 0 {
			t.turnOrder = slices.Delete(t.turnOrder, idx, idx+1)
			if idx == 0 {
				t.skipFinishedLocked()
				if len(t.turnOrder) == 0 {
					t.finishRoundLocked()
				}
			}
		}
	case PhaseBetting:
		if len(t.bets) < t.cfg.MinBettors {
			t.cancelStartLocked()
		}
		if len(t.players) == 0 {
			t.phase = PhaseWaiting
		}
	}

	t.publishLocked()
	return nil
}

// Close cancels any pending scheduled transition
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelStartLocked()
	if t.resetTimer != nil {
		t.resetTimer.Stop()
		t.resetTimer = nil
	}
}

func (t *Table) scheduleStartLocked() {
	if t.startTimer != nil {
		return
	}
	round := t.round
	t.startTimer = t.clock.AfterFunc(t.cfg.RoundStartDelay, func() {
		t.startRound(round)
	}, "table", "start")
	t.logger.Debug("Round start scheduled", "delay", t.cfg.RoundStartDelay)
}

func (t *Table) cancelStartLocked() {
	if t.startTimer == nil {
		return
	}
	t.startTimer.Stop()
	t.startTimer = nil
	t.logger.Debug("Round start cancelled")
}

// startRound fires from the start timer. It only deals if the table is
// still waiting on the round that scheduled it.
func (t *Table) startRound(round uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTimer = nil
	if t.phase != PhaseBetting || t.round != round || len(t.bets) < t.cfg.MinBettors {
		t.logger.Debug("Stale round start ignored", "phase", t.phase, "round", t.round)
		return
	}

	t.dealLocked()
	t.publishLocked()
}

func (t *Table) dealLocked() {
	t.round++
	t.deck = t.newDeck(t.rng)
	t.dealer = nil

	bettors := make([]*Player, 0, len(t.betOrder))
	t.participants = make([]string, 0, len(t.betOrder))
	for _, id := range t.betOrder {
		if p, ok := t.players[id]; ok {
			p.resetForRound()
			bettors = append(bettors, p)
			t.participants = append(t.participants, id)
		}
	}

	for range 2 {
		card, err := t.deck.Draw()
		if err != nil {
			t.voidRoundLocked(err)
			return
		}
		t.dealer = append(t.dealer, card)
	}
	for _, p := range bettors {
		for range 2 {
			card, err := t.deck.Draw()
			if err != nil {
				t.voidRoundLocked(err)
				return
			}
			p.Hand = append(p.Hand, card)
		}
	}

	t.turnOrder = slices.Clone(t.participants)
	t.phase = PhasePlaying

	t.logger.Info("Round started", "round", t.round, "players", len(t.turnOrder), "dealerUp", t.dealer[0])

	t.skipFinishedLocked()
	if len(t.turnOrder) == 0 {
		t.finishRoundLocked()
	}
}

func (t *Table) scheduleResetLocked() {
	if t.resetTimer != nil {
		t.resetTimer.Stop()
	}
	round := t.round
	t.resetTimer = t.clock.AfterFunc(t.cfg.ResultDwell, func() {
		t.resetRound(round)
	}, "table", "reset")
}

// resetRound fires from the reset timer and reopens betting
func (t *Table) resetRound(round uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetTimer = nil
	if t.phase != PhaseFinished || t.round != round {
		t.logger.Debug("Stale round reset ignored", "phase", t.phase, "round", t.round)
		return
	}

	clear(t.bets)
	t.betOrder = nil
	t.turnOrder = nil
	t.participants = nil
	for _, p := range t.players {
		p.Bet = 0
	}

	if len(t.players) == 0 {
		t.phase = PhaseWaiting
	} else {
		t.phase = PhaseBetting
	}

	t.logger.Debug("Betting reopened", "round", t.round, "players", len(t.players))
	t.publishLocked()
}

func (t *Table) publishLocked() {
	if len(t.observers) == 0 {
		return
	}
	s := t.snapshotLocked()
	for _, o := range t.observers {
		o.OnTableUpdate(s)
	}
}
