package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/service"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/mechanical-tictactoe/pkg/proto"
)

type firstChooser struct{}

func (firstChooser) IntN(int) int { return 0 }

func newTestServer(t *testing.T) (*httptest.Server, *usecase.GameManager) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	games := usecase.NewGameManager(logger, service.NewBotService(firstChooser{}), usecase.Options{
		Players: entity.DefaultPlayers(),
	})
	server := New(logger, games)
	ts := httptest.NewServer(server)

	t.Cleanup(func() {
		server.Close()
		ts.Close()
		games.Shutdown()
	})

	return ts, games
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) proto.Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg proto.Message
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func readCell(t *testing.T, conn *websocket.Conn) proto.CellPayload {
	t.Helper()

	msg := readMessage(t, conn)
	require.Equal(t, proto.ActionCellChanged, msg.Action)

	var cell proto.CellPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &cell))

	return cell
}

func readStatus(t *testing.T, conn *websocket.Conn) entity.Status {
	t.Helper()

	msg := readMessage(t, conn)
	require.Equal(t, proto.ActionStatusChanged, msg.Action)

	var status entity.Status
	require.NoError(t, json.Unmarshal(msg.Payload, &status))

	return status
}

func send(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func TestServer_Connect(t *testing.T) {
	// Given: a running server
	ts, games := newTestServer(t)

	// When: a browser connects
	conn := dial(t, ts)

	// Then: it is told about its session and that it moves first
	msg := readMessage(t, conn)
	assert.Equal(t, proto.ActionSession, msg.Action)
	assert.NotEmpty(t, msg.SessionID)

	var payload proto.SessionPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, entity.DefaultPlayers(), payload.Players)
	assert.Equal(t, entity.Board{}, payload.Board)

	assert.Equal(t, "Your turn (O)", readStatus(t, conn).Message)

	_, ok := games.Get(msg.SessionID)
	assert.True(t, ok)
}

func TestServer_Play(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)

	readMessage(t, conn)
	readStatus(t, conn)

	t.Run("Human move is answered by the opponent", func(t *testing.T) {
		// When: the human takes the center
		send(t, conn, `{"action":"game:turn","payload":{"cell":4}}`)

		// Then: the move, the opponent's turn, its corner reply and the human's turn follow
		assert.Equal(t, proto.CellPayload{Cell: 4, Mark: entity.PlayerO}, readCell(t, conn))
		assert.Equal(t, "AI's turn (X)", readStatus(t, conn).Message)
		assert.Equal(t, proto.CellPayload{Cell: 0, Mark: entity.PlayerX}, readCell(t, conn))
		assert.Equal(t, "Your turn (O)", readStatus(t, conn).Message)
	})

	t.Run("Invalid input is ignored and restart clears the board", func(t *testing.T) {
		// Given: messages that must not change anything
		send(t, conn, `{"action":"game:turn","payload":{"cell":4}}`)
		send(t, conn, `{"action":"game:turn","payload":{"cell":9}}`)
		send(t, conn, `{"action":"game:turn","payload":{}}`)
		send(t, conn, `{"action":"game:leave"}`)
		send(t, conn, `not json`)

		// When: the human restarts
		send(t, conn, `{"action":"game:restart"}`)

		// Then: the next messages are the restart's, nothing was sent for the rejected input
		assert.Equal(t, proto.CellPayload{Cell: 0, Mark: entity.EmptyCell}, readCell(t, conn))
		assert.Equal(t, proto.CellPayload{Cell: 4, Mark: entity.EmptyCell}, readCell(t, conn))

		status := readStatus(t, conn)
		assert.Equal(t, entity.PhaseHumanTurn, status.Phase)
		assert.Equal(t, "Your turn (O)", status.Message)
	})
}

func TestServer_Disconnect(t *testing.T) {
	// Given: a connected browser
	ts, games := newTestServer(t)
	conn := dial(t, ts)
	msg := readMessage(t, conn)

	// When: it goes away
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.NoError(t, conn.Close())

	// Then: its session is closed
	assert.Eventually(t, func() bool {
		_, ok := games.Get(msg.SessionID)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
