package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	rand "math/rand/v2"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
	"github.com/lox/blackjack/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

type harness struct {
	t      *testing.T
	table  *game.Table
	clock  *quartz.Mock
	server *Server
	http   *httptest.Server
	wsURL  string
}

// newHarness serves a table over httptest. Player ids are p1, p2, ... in
// connection order and every round deals cards in the given order.
func newHarness(t *testing.T, cfg game.Config, cards string, opts ...Option) *harness {
	t.Helper()

	clock := quartz.NewMock(t)
	tableOpts := []game.Option{game.WithConfig(cfg)}
	if cards != "" {
		stack := deck.MustParseCards(cards)
		tableOpts = append(tableOpts, game.WithDeckFactory(func(*rand.Rand) *deck.Deck {
			return deck.Stacked(stack...)
		}))
	}
	table := game.NewTable(testLogger(), clock, randutil.New(1), tableOpts...)
	t.Cleanup(table.Close)

	var seq atomic.Int64
	opts = append([]Option{WithIDGenerator(func() string {
		return fmt.Sprintf("p%d", seq.Add(1))
	})}, opts...)

	srv := NewServer(testLogger(), table, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &harness{
		t:      t,
		table:  table,
		clock:  clock,
		server: srv,
		http:   ts,
		wsURL:  "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
	}
}

func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.clock.Advance(d).MustWait(ctx)
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

// dial connects and consumes the welcome message
func (h *harness) dial() *testClient {
	h.t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(h.wsURL, nil)
	require.NoError(h.t, err)
	c := &testClient{t: h.t, conn: conn}
	h.t.Cleanup(func() { _ = conn.Close() })

	msg := c.next()
	require.Equal(h.t, protocol.TypeWelcome, msg.Type)
	var welcome protocol.WelcomeData
	require.NoError(h.t, msg.Decode(&welcome))
	c.id = welcome.PlayerID
	return c
}

func (c *testClient) send(messageType protocol.MessageType, data any) {
	c.t.Helper()
	raw, err := protocol.Encode(messageType, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, raw))
}

func (c *testClient) next() protocol.Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)

	var msg protocol.Message
	require.NoError(c.t, json.Unmarshal(data, &msg))
	return msg
}

// waitFor reads until a message of the given type satisfies match
func (c *testClient) waitFor(messageType protocol.MessageType, match func(protocol.Message) bool) protocol.Message {
	c.t.Helper()
	for {
		msg := c.next()
		if msg.Type == messageType && (match == nil || match(msg)) {
			return msg
		}
	}
}

// waitForUpdate reads table updates until match accepts one
func (c *testClient) waitForUpdate(match func(game.Snapshot) bool) game.Snapshot {
	c.t.Helper()
	var snap game.Snapshot
	c.waitFor(protocol.TypeTableUpdate, func(msg protocol.Message) bool {
		require.NoError(c.t, msg.Decode(&snap))
		return match(snap)
	})
	return snap
}

func (c *testClient) waitForError() protocol.ErrorData {
	c.t.Helper()
	var data protocol.ErrorData
	msg := c.waitFor(protocol.TypeError, nil)
	require.NoError(c.t, msg.Decode(&data))
	return data
}
