package transport

import (
	"bufio"
	"net"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/DimaSavosin/DrawAndGuess/internal/game"
)

// LineConn adapts a raw net.Conn to the newline-terminated text protocol.
// Writes are serialized; reads are expected from a single goroutine.
type LineConn struct {
	c  net.Conn
	r  *bufio.Reader
	mu sync.Mutex
}

func NewLineConn(c net.Conn) *LineConn {
	return &LineConn{c: c, r: bufio.NewReader(c)}
}

func (l *LineConn) ReadLine() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (l *LineConn) WriteLine(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.c.Write([]byte(line + "\n"))
	return err
}

func (l *LineConn) Close() error {
	return l.c.Close()
}

// ServeTCP accepts clients until the listener closes, handing each
// connection to handle on its own goroutine.
func ServeTCP(ln net.Listener, handle func(game.Conn), log zerolog.Logger) {
	for {
		c, err := ln.Accept()
		if err != nil {
			log.Info().Err(err).Msg("tcp listener closed")
			return
		}
		log.Debug().Str("remote", c.RemoteAddr().String()).Msg("client connected")
		go handle(NewLineConn(c))
	}
}
