// Package tui is the interactive terminal client for the blackjack table.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

// Sender is the part of the client the TUI sends commands through
type Sender interface {
	PlayerID() string
	SetName(name string) error
	PlaceBet(amount int) error
	Act(action game.Action) error
	Chat(text string) error
	Leave() error
}

// TableUpdateMsg carries a table projection from the server
type TableUpdateMsg struct{ Snapshot game.Snapshot }

// ChatMsg carries a relayed chat line
type ChatMsg struct{ Chat protocol.ChatData }

// ErrorMsg carries a rejection from the server
type ErrorMsg struct{ Error protocol.ErrorData }

// DisconnectedMsg is sent when the server connection closes
type DisconnectedMsg struct{}

const sidebarWidth = 34

// Model is the bubbletea model for a seat at the table
type Model struct {
	sender Sender
	logger *log.Logger

	logViewport viewport.Model
	input       textinput.Model
	focusedPane int // 0 = log, 1 = input

	snapshot game.Snapshot
	hasTable bool
	gameLog  []string

	width    int
	height   int
	quitting bool
}

// NewModel creates a model that sends commands through sender
func NewModel(sender Sender, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet 50, hit, stand, double, say hello"
	ti.Focus()
	ti.CharLimit = 300
	ti.Width = 80
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &Model{
		sender:      sender,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		focusedPane: 1,
	}
	m.addLog(InfoStyle.Render(helpText))
	return m
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TableUpdateMsg:
		for _, line := range describeChange(m.snapshot, msg.Snapshot, m.sender.PlayerID()) {
			m.addLog(line)
		}
		m.snapshot = msg.Snapshot
		m.hasTable = true

	case ChatMsg:
		m.addLog(ChatStyle.Render(protocol.FormatChat(msg.Chat)))

	case ErrorMsg:
		m.addLog(ErrorStyle.Render(msg.Error.Message))

	case DisconnectedMsg:
		m.addLog(ErrorStyle.Render("Disconnected from server"))
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, m.quit()
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.input.Focus()
			} else {
				m.focusedPane = 0
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := m.input.Value()
				m.input.SetValue("")
				if cmd := m.submit(line); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit runs a line of input. It returns a command only when the program
// should exit.
func (m *Model) submit(line string) tea.Cmd {
	cmd, err := ParseCommand(line)
	if err != nil {
		m.addLog(ErrorStyle.Render(err.Error()))
		return nil
	}

	switch cmd.Kind {
	case CommandNone:
		return nil
	case CommandHelp:
		m.addLog(InfoStyle.Render(helpText))
	case CommandQuit:
		return m.quit()
	case CommandBet:
		err = m.sender.PlaceBet(cmd.Amount)
	case CommandAction:
		err = m.sender.Act(cmd.Action)
	case CommandName:
		err = m.sender.SetName(cmd.Text)
	case CommandSay:
		err = m.sender.Chat(cmd.Text)
	}
	if err != nil {
		m.logger.Warn("Failed to send command", "command", line, "error", err)
		m.addLog(ErrorStyle.Render(err.Error()))
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	if err := m.sender.Leave(); err != nil {
		m.logger.Debug("Leave not sent", "error", err)
	}
	m.quitting = true
	return tea.Quit
}

// Quitting reports whether the user asked to leave
func (m *Model) Quitting() bool {
	return m.quitting
}

// Log returns the entries written to the game log
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent) + 2

	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	paneHeight := max(m.height-actionHeight-2, 1)

	tableContent := "Connecting..."
	if m.hasTable {
		tableContent = renderTable(m.snapshot, m.sender.PlayerID())
	}
	tablePane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(tableContent)

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	logBorder := lipgloss.Color("#626262")
	if m.focusedPane == 0 {
		logBorder = lipgloss.Color("#04B575")
	}
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(logBorder).
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, tablePane)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, actionPane)
}

func (m *Model) renderActionPane() string {
	var b strings.Builder

	self := m.sender.PlayerID()
	me, seated := m.snapshot.Players[self]
	switch {
	case !m.hasTable || !seated:
		b.WriteString(HandInfoStyle.Render("Waiting..."))
	case m.snapshot.Phase == game.PhaseBetting && me.Bet == 0:
		b.WriteString(ActionsStyle.Render("Place your bet: bet N"))
	case m.snapshot.Phase == game.PhasePlaying && m.snapshot.CurrentTurn == self:
		b.WriteString(HandInfoStyle.Render("Hand: " + formatCards(me.Hand)))
		b.WriteString("  ")
		b.WriteString(ActionsStyle.Render("Actions: [hit] [stand] [double]"))
	default:
		b.WriteString(HandInfoStyle.Render("Waiting..."))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}
