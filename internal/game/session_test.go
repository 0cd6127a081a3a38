package game

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(zerolog.Nop())
}

func TestRegisterRejectsBlankNickname(t *testing.T) {
	reg := newTestRegistry()

	for _, nick := range []string{"", "   ", "\t"} {
		_, err := reg.Register(nick, newFakeConn())
		assert.ErrorIs(t, err, ErrEmptyNickname, "nickname %q", nick)
	}
	assert.Equal(t, 0, reg.Count())
}

func TestRegisterCaseInsensitiveUniqueness(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.Register("Bob", newFakeConn())
	require.NoError(t, err)

	for _, nick := range []string{"bob", "BOB", "bOb"} {
		_, err := reg.Register(nick, newFakeConn())
		assert.ErrorIs(t, err, ErrNicknameTaken, "nickname %q", nick)
	}
	assert.Equal(t, 1, reg.Count())
}

func TestRemoveFreesNickname(t *testing.T) {
	reg := newTestRegistry()

	s, err := reg.Register("Bob", newFakeConn())
	require.NoError(t, err)

	reg.Remove(s)
	assert.Equal(t, 0, reg.Count())

	_, err = reg.Register("bob", newFakeConn())
	assert.NoError(t, err)
}

func TestRegisterTrimsNickname(t *testing.T) {
	reg := newTestRegistry()

	s, err := reg.Register("  Alice  ", newFakeConn())
	require.NoError(t, err)
	assert.Equal(t, "Alice", s.Nickname())
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	reg := newTestRegistry()

	ca, cb, cc := newFakeConn(), newFakeConn(), newFakeConn()
	a, err := reg.Register("A", ca)
	require.NoError(t, err)
	b, err := reg.Register("B", cb)
	require.NoError(t, err)
	c, err := reg.Register("C", cc)
	require.NoError(t, err)

	reg.BroadcastExcept([]*Session{a, b, c}, a, "hello")

	waitForLine(t, cb, "hello")
	waitForLine(t, cc, "hello")
	assert.False(t, ca.received("hello"))
}

func TestSendAfterCloseNeverDelivers(t *testing.T) {
	reg := newTestRegistry()

	c := newFakeConn()
	s, err := reg.Register("A", c)
	require.NoError(t, err)

	reg.Remove(s)
	s.Send("late line")

	assert.Never(t, func() bool { return c.received("late line") },
		100*time.Millisecond, 10*time.Millisecond)
}

func TestBroadcastSurvivesDeadTarget(t *testing.T) {
	reg := newTestRegistry()

	ca, cb := newFakeConn(), newFakeConn()
	a, err := reg.Register("A", ca)
	require.NoError(t, err)
	b, err := reg.Register("B", cb)
	require.NoError(t, err)

	reg.Remove(a) // a's connection is gone

	reg.Broadcast([]*Session{a, b}, "still alive")
	waitForLine(t, cb, "still alive")
}
