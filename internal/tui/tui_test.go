package tui

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type fakeSender struct {
	bets    []int
	actions []game.Action
	names   []string
	chats   []string
	left    bool
	err     error
}

func (f *fakeSender) PlayerID() string { return "p1" }

func (f *fakeSender) SetName(name string) error {
	f.names = append(f.names, name)
	return f.err
}

func (f *fakeSender) PlaceBet(amount int) error {
	f.bets = append(f.bets, amount)
	return f.err
}

func (f *fakeSender) Act(action game.Action) error {
	f.actions = append(f.actions, action)
	return f.err
}

func (f *fakeSender) Chat(text string) error {
	f.chats = append(f.chats, text)
	return f.err
}

func (f *fakeSender) Leave() error {
	f.left = true
	return nil
}

func newTestModel() (*Model, *fakeSender) {
	sender := &fakeSender{}
	return NewModel(sender, log.NewWithOptions(io.Discard, log.Options{})), sender
}

func playingSnapshot() game.Snapshot {
	return game.Snapshot{
		Round:       1,
		Phase:       game.PhasePlaying,
		Seats:       []string{"p1", "p2"},
		Dealer:      []game.CardView{{Rank: "10", Suit: "♥"}, {Hidden: true}},
		DealerScore: 10,
		CurrentTurn: "p1",
		Players: map[string]game.PlayerView{
			"p1": {ID: "p1", Name: "Alice", Chips: 950, Bet: 50, Score: 16, Hand: []game.CardView{{Rank: "9", Suit: "♠"}, {Rank: "7", Suit: "♦"}}},
			"p2": {ID: "p2", Name: "Bob", Chips: 980, Bet: 20, Score: 12, Hand: []game.CardView{{Rank: "2", Suit: "♣"}, {Rank: "K", Suit: "♣"}}},
		},
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"", Command{Kind: CommandNone}},
		{"  ", Command{Kind: CommandNone}},
		{"bet 50", Command{Kind: CommandBet, Amount: 50}},
		{"BET 10", Command{Kind: CommandBet, Amount: 10}},
		{"hit", Command{Kind: CommandAction, Action: game.Hit}},
		{"h", Command{Kind: CommandAction, Action: game.Hit}},
		{"Stand", Command{Kind: CommandAction, Action: game.Stand}},
		{"d", Command{Kind: CommandAction, Action: game.Double}},
		{"name  Big Al ", Command{Kind: CommandName, Text: "Big Al"}},
		{"say Good luck, all", Command{Kind: CommandSay, Text: "Good luck, all"}},
		{"help", Command{Kind: CommandHelp}},
		{"quit", Command{Kind: CommandQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, input := range []string{"bet", "bet ten", "bet -5", "bet 0", "name", "say", "fold"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCommand(input)
			assert.Error(t, err)
		})
	}

	_, err := ParseCommand("split")
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestFormatCards(t *testing.T) {
	assert.Equal(t, "[A♠ ??]", formatCards([]game.CardView{{Rank: "A", Suit: "♠"}, {Hidden: true}}))
	assert.Equal(t, "[]", formatCards(nil))
}

func TestRenderTable(t *testing.T) {
	out := renderTable(playingSnapshot(), "p1")

	assert.Contains(t, out, "Round 1")
	assert.Contains(t, out, "Dealer [10♥ ??] (10)")
	assert.Contains(t, out, "▶ Alice (you)")
	assert.Contains(t, out, "bet $50")
	assert.Contains(t, out, "[9♠ 7♦] (16)")
	assert.Contains(t, out, "Bob")
	assert.Less(t, strings.Index(out, "Alice"), strings.Index(out, "Bob"), "seats render in seat order")
}

func TestSubmitSendsCommands(t *testing.T) {
	m, sender := newTestModel()

	assert.Nil(t, m.submit("bet 25"))
	assert.Nil(t, m.submit("hit"))
	assert.Nil(t, m.submit("name Alice"))
	assert.Nil(t, m.submit("say hi there"))

	assert.Equal(t, []int{25}, sender.bets)
	assert.Equal(t, []game.Action{game.Hit}, sender.actions)
	assert.Equal(t, []string{"Alice"}, sender.names)
	assert.Equal(t, []string{"hi there"}, sender.chats)
}

func TestSubmitLogsErrors(t *testing.T) {
	m, sender := newTestModel()

	m.submit("bet lots")
	assert.Empty(t, sender.bets)
	assert.Contains(t, m.Log()[len(m.Log())-1], "invalid bet amount")

	sender.err = errors.New("not connected")
	m.submit("stand")
	assert.Contains(t, m.Log()[len(m.Log())-1], "not connected")
}

func TestEnterSubmitsInput(t *testing.T) {
	m, sender := newTestModel()

	m.input.SetValue("bet 40")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []int{40}, sender.bets)
	assert.Empty(t, m.input.Value())
}

func TestQuitLeavesTable(t *testing.T) {
	m, sender := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, sender.left)
	assert.True(t, m.Quitting())
	assert.Empty(t, m.View())
}

func TestQuitCommand(t *testing.T) {
	m, sender := newTestModel()
	cmd := m.submit("quit")
	require.NotNil(t, cmd)
	assert.True(t, sender.left)
}

func TestDisconnectQuits(t *testing.T) {
	m, _ := newTestModel()
	_, cmd := m.Update(DisconnectedMsg{})
	require.NotNil(t, cmd)
	assert.True(t, m.Quitting())
}

func TestTableUpdatesAreLogged(t *testing.T) {
	m, _ := newTestModel()

	betting := game.Snapshot{
		Phase:   game.PhaseBetting,
		Players: map[string]game.PlayerView{"p1": {ID: "p1", Name: "Alice", Chips: 1000}},
	}
	m.Update(TableUpdateMsg{Snapshot: betting})
	m.Update(TableUpdateMsg{Snapshot: playingSnapshot()})

	finished := playingSnapshot()
	finished.Phase = game.PhaseFinished
	finished.CurrentTurn = ""
	finished.Dealer = []game.CardView{{Rank: "10", Suit: "♥"}, {Rank: "8", Suit: "♣"}}
	finished.DealerScore = 18
	p1 := finished.Players["p1"]
	p1.Outcome, p1.Chips = game.OutcomeLose, 950
	finished.Players["p1"] = p1
	m.Update(TableUpdateMsg{Snapshot: finished})

	logged := m.Log()
	assert.Contains(t, logged, "Betting is open. Type 'bet N' to join the round.")
	assert.Contains(t, logged, "Round 1 dealt. Dealer shows [10♥]")
	assert.Contains(t, logged, "Your turn with [9♠ 7♦] (16): hit, stand or double")
	assert.Contains(t, logged, "Dealer [10♥ 8♣] (18)")
	assert.Contains(t, logged, "Alice [9♠ 7♦] (16): lose, now $950")
}

func TestChatAndErrorsAreLogged(t *testing.T) {
	m, _ := newTestModel()

	m.Update(ChatMsg{Chat: protocol.ChatData{From: "Bob", Text: "hello"}})
	m.Update(ErrorMsg{Error: protocol.ErrorData{Code: protocol.CodeOutOfTurn, Message: "not your turn"}})

	logged := m.Log()
	assert.Contains(t, logged, "Bob: hello")
	assert.Contains(t, logged, "not your turn")
}

func TestViewRendersTable(t *testing.T) {
	m, _ := newTestModel()
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, m.View(), "Connecting...")

	m.Update(TableUpdateMsg{Snapshot: playingSnapshot()})
	view := m.View()
	assert.Contains(t, view, "Round 1")
	assert.Contains(t, view, "[hit] [stand] [double]")
}
