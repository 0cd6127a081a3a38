package game

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimaSavosin/DrawAndGuess/internal/words"
)

func newTestEnv(t *testing.T, wordList []string, timeout time.Duration) (*Registry, *Directory) {
	t.Helper()
	bank, err := words.NewBank(wordList)
	require.NoError(t, err)
	reg := NewRegistry(zerolog.Nop())
	dir := NewDirectory(reg, bank, timeout, zerolog.Nop())
	dir.graceDelay = time.Hour // keep ended lobbies inspectable
	return reg, dir
}

func newTestPlayer(t *testing.T, reg *Registry, nick string) (*Session, *fakeConn) {
	t.Helper()
	c := newFakeConn()
	s, err := reg.Register(nick, c)
	require.NoError(t, err)
	return s, c
}

func TestCreateLobbyCapacityBounds(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		wantErr  error
	}{
		{"below minimum", 1, ErrBadCapacity},
		{"minimum", 2, nil},
		{"maximum", 10, nil},
		{"above maximum", 11, ErrBadCapacity},
		{"zero", 0, ErrBadCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, dir := newTestEnv(t, []string{"apple"}, time.Minute)
			leader, _ := newTestPlayer(t, reg, "Leader")

			_, err := dir.Create("pw", tt.capacity, leader)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateLobbyDuplicatePassword(t *testing.T) {
	reg, dir := newTestEnv(t, []string{"apple"}, time.Minute)
	a, _ := newTestPlayer(t, reg, "A")
	b, _ := newTestPlayer(t, reg, "B")

	_, err := dir.Create("pw123", 3, a)
	require.NoError(t, err)

	_, err = dir.Create("pw123", 3, b)
	assert.ErrorIs(t, err, ErrLobbyExists)
}

func TestCreateLobbySendsCode(t *testing.T) {
	reg, dir := newTestEnv(t, []string{"apple"}, time.Minute)
	a, ca := newTestPlayer(t, reg, "A")

	l, err := dir.Create("pw", 2, a)
	require.NoError(t, err)
	require.Len(t, l.Code(), 6)

	waitForLine(t, ca, "OK "+l.Code())
}

func TestJoinUnknownPassword(t *testing.T) {
	reg, dir := newTestEnv(t, []string{"apple"}, time.Minute)
	a, _ := newTestPlayer(t, reg, "A")

	_, err := dir.Join("nope", a)
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestJoinFullLobby(t *testing.T) {
	reg, dir := newTestEnv(t, []string{"apple"}, time.Minute)
	a, _ := newTestPlayer(t, reg, "A")
	b, _ := newTestPlayer(t, reg, "B")
	c, _ := newTestPlayer(t, reg, "C")

	_, err := dir.Create("pw", 2, a)
	require.NoError(t, err)
	_, err = dir.Join("pw", b)
	require.NoError(t, err)

	_, err = dir.Join("pw", c)
	assert.ErrorIs(t, err, ErrLobbyFull)
}

func TestJoinBroadcastsAndStartsAtCapacity(t *testing.T) {
	reg, dir := newTestEnv(t, []string{"apple"}, time.Minute)
	a, ca := newTestPlayer(t, reg, "A")
	b, cb := newTestPlayer(t, reg, "B")

	l, err := dir.Create("pw", 2, a)
	require.NoError(t, err)
	assert.Equal(t, StateWaiting, l.State())

	_, err = dir.Join("pw", b)
	require.NoError(t, err)

	waitForLine(t, ca, msgJoined("B"))
	waitForLine(t, ca, msgGameStarting)
	waitForLine(t, cb, msgGameStarting)

	// join order is turn order: A, the first joiner, draws round one
	waitForLine(t, ca, evYouAreDrawer("apple"))
	waitForLine(t, cb, evYouAreGuesser)
	assert.Equal(t, StateRoundActive, l.State())
}

func TestLeaveLastPlayerDeletesLobby(t *testing.T) {
	reg, dir := newTestEnv(t, []string{"apple"}, time.Minute)
	a, _ := newTestPlayer(t, reg, "A")

	_, err := dir.Create("pw", 2, a)
	require.NoError(t, err)

	dir.Leave(a)
	assert.Empty(t, dir.Snapshot())

	// the password is free again
	b, _ := newTestPlayer(t, reg, "B")
	_, err = dir.Create("pw", 2, b)
	assert.NoError(t, err)
}

func TestLeaveUnknownSessionIsNoop(t *testing.T) {
	reg, dir := newTestEnv(t, []string{"apple"}, time.Minute)
	a, _ := newTestPlayer(t, reg, "A")
	b, _ := newTestPlayer(t, reg, "B")

	_, err := dir.Create("pw", 2, a)
	require.NoError(t, err)

	dir.Leave(b) // never joined anything
	assert.Len(t, dir.Snapshot(), 1)
}

func TestSnapshotReportsLobbies(t *testing.T) {
	reg, dir := newTestEnv(t, []string{"apple"}, time.Minute)
	a, _ := newTestPlayer(t, reg, "A")

	l, err := dir.Create("pw", 4, a)
	require.NoError(t, err)

	infos := dir.Snapshot()
	require.Len(t, infos, 1)
	assert.Equal(t, l.Code(), infos[0].Code)
	assert.Equal(t, 1, infos[0].Players)
	assert.Equal(t, 4, infos[0].Capacity)
	assert.Equal(t, "waiting", infos[0].State)
}
