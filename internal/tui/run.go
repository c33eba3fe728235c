package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

// Options configures an interactive session
type Options struct {
	// Name is sent after the welcome when set
	Name           string
	// AltScreen runs the program in the terminal's alternate screen
	AltScreen      bool
	// ConnectTimeout bounds the dial and welcome, zero means no limit
	ConnectTimeout time.Duration
}

// Run connects c, then drives the terminal UI until the user quits, the
// server disconnects or ctx is cancelled
func Run(ctx context.Context, c *client.Client, logger *log.Logger, opts Options) error {
	model := NewModel(c, logger)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(model, programOpts...)

	// Handlers block in p.Send until the program loop starts, which keeps
	// early updates in order.
	c.OnTableUpdate(func(s game.Snapshot) { p.Send(TableUpdateMsg{Snapshot: s}) })
	c.OnChat(func(chat protocol.ChatData) { p.Send(ChatMsg{Chat: chat}) })
	c.OnError(func(e protocol.ErrorData) { p.Send(ErrorMsg{Error: e}) })

	connectCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.ConnectTimeout > 0 {
		connectCtx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
	}
	err := c.Connect(connectCtx)
	cancel()
	if err != nil {
		return err
	}
	defer func() { _ = c.Disconnect() }()

	if opts.Name != "" {
		if err := c.SetName(opts.Name); err != nil {
			return err
		}
	}

	go func() {
		select {
		case <-c.Done():
			p.Send(DisconnectedMsg{})
		case <-ctx.Done():
		}
	}()

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
