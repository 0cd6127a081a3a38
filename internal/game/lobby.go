package game

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/DimaSavosin/DrawAndGuess/internal/words"
	"github.com/DimaSavosin/DrawAndGuess/pkg/utils"
)

var (
	ErrLobbyExists   = errors.New("lobby already exists for this password")
	ErrLobbyNotFound = errors.New("lobby not found")
	ErrLobbyFull     = errors.New("lobby is full")
	ErrBadCapacity   = errors.New("capacity must be between 2 and 10")
)

const (
	minCapacity = 2
	maxCapacity = 10

	// how long the final scoreboard stays up before the lobby resets
	defaultGraceDelay = 5 * time.Second
)

// GameState is the lifecycle of one lobby.
type GameState int

const (
	StateWaiting GameState = iota
	StateRoundActive
	StateSettling
	StateEnded
)

func (s GameState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateRoundActive:
		return "round_active"
	case StateSettling:
		return "settling"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Lobby is a password-scoped group of players and the round state of the
// game they are playing. Every field below mu is guarded by it; timer
// callbacks and connection workers both go through the mutex, never mutate
// directly.
type Lobby struct {
	mu       sync.Mutex
	password string
	code     string
	capacity int
	members  []*Session // join order, also the turn order seed
	leader   *Session
	scores   map[*Session]int

	state       GameState
	round       int        // 1-based, 0 while waiting
	totalRounds int        // frozen member count at game start
	drawOrder   []*Session // snapshot taken at game start
	drawer      *Session
	word        string
	gen         uint64 // round generation, bumps on every settle/start
	timer       *time.Timer

	registry     *Registry
	bank         *words.Bank
	roundTimeout time.Duration
	graceDelay   time.Duration
	log          zerolog.Logger
}

// Code returns the opaque display code assigned at creation.
func (l *Lobby) Code() string {
	return l.code
}

// State returns the lobby's current game state.
func (l *Lobby) State() GameState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Scores returns a nickname -> points copy of the scoreboard.
func (l *Lobby) Scores() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.scores))
	for s, pts := range l.scores {
		out[s.Nickname()] = pts
	}
	return out
}

func (l *Lobby) isMemberLocked(s *Session) bool {
	for _, m := range l.members {
		if m == s {
			return true
		}
	}
	return false
}

// LobbyInfo is the read-only view exposed over HTTP.
type LobbyInfo struct {
	Code     string `json:"code"`
	Players  int    `json:"players"`
	Capacity int    `json:"capacity"`
	State    string `json:"state"`
}

// Directory owns every lobby, keyed by password. Lock order is always
// Directory.mu before Lobby.mu.
type Directory struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby

	registry     *Registry
	bank         *words.Bank
	roundTimeout time.Duration
	graceDelay   time.Duration
	log          zerolog.Logger
}

func NewDirectory(registry *Registry, bank *words.Bank, roundTimeout time.Duration, log zerolog.Logger) *Directory {
	return &Directory{
		lobbies:      make(map[string]*Lobby),
		registry:     registry,
		bank:         bank,
		roundTimeout: roundTimeout,
		graceDelay:   defaultGraceDelay,
		log:          log,
	}
}

// Create makes a new lobby for password with leader as its first member and
// tells the leader "OK <code>". At most one lobby exists per password.
func (d *Directory) Create(password string, capacity int, leader *Session) (*Lobby, error) {
	if capacity < minCapacity || capacity > maxCapacity {
		return nil, ErrBadCapacity
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.lobbies[password]; exists {
		return nil, ErrLobbyExists
	}

	l := &Lobby{
		password:     password,
		code:         utils.ShortCode(),
		capacity:     capacity,
		members:      []*Session{leader},
		leader:       leader,
		scores:       map[*Session]int{leader: 0},
		state:        StateWaiting,
		registry:     d.registry,
		bank:         d.bank,
		roundTimeout: d.roundTimeout,
		graceDelay:   d.graceDelay,
		log:          d.log.With().Str("lobby", password).Logger(),
	}
	d.lobbies[password] = l

	leader.Send("OK " + l.code)
	l.log.Info().Str("code", l.code).Int("capacity", capacity).Str("leader", leader.Nickname()).Msg("lobby created")
	return l, nil
}

// Join adds s to the lobby for password, in arrival order. Reaching capacity
// starts the game.
func (d *Directory) Join(password string, s *Session) (*Lobby, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.lobbies[password]
	if !ok {
		return nil, ErrLobbyNotFound
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.members) >= l.capacity {
		return nil, ErrLobbyFull
	}

	l.members = append(l.members, s)
	l.scores[s] = 0

	s.Send("OK")
	l.registry.Broadcast(l.members, msgJoined(s.Nickname()))
	l.log.Info().Str("player", s.Nickname()).Int("players", len(l.members)).Msg("player joined")

	// only a waiting lobby starts on reaching capacity; joining a lobby
	// whose game is already running must not touch the frozen turn order
	// or the live scores
	if l.state == StateWaiting && len(l.members) == l.capacity {
		l.startGameLocked()
	}
	return l, nil
}

// Leave removes s from whichever lobby it belongs to. The last member out
// deletes the lobby.
func (d *Directory) Leave(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for password, l := range d.lobbies {
		l.mu.Lock()
		if !l.isMemberLocked(s) {
			l.mu.Unlock()
			continue
		}
		empty := l.removeMemberLocked(s)
		l.mu.Unlock()
		if empty {
			delete(d.lobbies, password)
			d.log.Info().Str("lobby", password).Msg("lobby deleted, all players left")
		}
		return
	}
}

// Snapshot lists every lobby for the HTTP inspection endpoint.
func (d *Directory) Snapshot() []LobbyInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]LobbyInfo, 0, len(d.lobbies))
	for _, l := range d.lobbies {
		l.mu.Lock()
		out = append(out, LobbyInfo{
			Code:     l.code,
			Players:  len(l.members),
			Capacity: l.capacity,
			State:    l.state.String(),
		})
		l.mu.Unlock()
	}
	return out
}
