package game

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory Conn for driving workers and sessions in tests.
type fakeConn struct {
	inbox chan string

	mu     sync.Mutex
	sent   []string
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbox: make(chan string, 64)}
}

// push feeds lines the "client" will send.
func (c *fakeConn) push(lines ...string) {
	for _, l := range lines {
		c.inbox <- l
	}
}

func (c *fakeConn) ReadLine() (string, error) {
	line, ok := <-c.inbox
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (c *fakeConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return io.ErrClosedPipe
	}
	c.sent = append(c.sent, line)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.inbox)
	}
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) sentLines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *fakeConn) received(line string) bool {
	for _, l := range c.sentLines() {
		if l == line {
			return true
		}
	}
	return false
}

func (c *fakeConn) receivedPrefix(prefix string) (string, bool) {
	for _, l := range c.sentLines() {
		if strings.HasPrefix(l, prefix) {
			return l, true
		}
	}
	return "", false
}

func (c *fakeConn) countLines(line string) int {
	n := 0
	for _, l := range c.sentLines() {
		if l == line {
			n++
		}
	}
	return n
}

func waitForLine(t *testing.T, c *fakeConn, line string) {
	t.Helper()
	require.Eventually(t, func() bool { return c.received(line) },
		2*time.Second, 5*time.Millisecond, "expected line %q, got %v", line, c.sentLines())
}

func waitForPrefix(t *testing.T, c *fakeConn, prefix string) string {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := c.receivedPrefix(prefix)
		return ok
	}, 2*time.Second, 5*time.Millisecond, "expected prefix %q, got %v", prefix, c.sentLines())
	line, _ := c.receivedPrefix(prefix)
	return line
}
