package transport

import (
	"strings"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/DimaSavosin/DrawAndGuess/internal/game"
)

// WSConn carries the same line protocol over websocket text frames, one
// frame per line. Non-text frames are skipped.
type WSConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *WSConn) ReadLine() (string, error) {
	for {
		t, msg, err := w.c.ReadMessage()
		if err != nil {
			return "", err
		}
		if t != websocket.TextMessage {
			continue
		}
		return strings.TrimRight(string(msg), "\r\n"), nil
	}
}

func (w *WSConn) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteMessage(websocket.TextMessage, []byte(line))
}

func (w *WSConn) Close() error {
	return w.c.Close()
}

// WSHandler returns the fiber handler for the websocket endpoint.
func WSHandler(handle func(game.Conn)) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		handle(&WSConn{c: c})
	})
}
