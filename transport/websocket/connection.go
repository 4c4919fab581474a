package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/mechanical-tictactoe/pkg/proto"
)

const writeWait = 10 * time.Second

// connection serializes writes: gorilla allows one concurrent writer per connection.
type connection struct {
	ws *websocket.Conn

	writeMu sync.Mutex
}

func newConnection(ws *websocket.Conn) *connection {
	return &connection{ws: ws}
}

func (that *connection) Send(_ context.Context, msg proto.Message) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) Read() ([]byte, error) {
	_, data, err := that.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	return data, nil
}

func (that *connection) Close() error {
	return that.ws.Close()
}
