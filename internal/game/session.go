package game

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrNicknameTaken = errors.New("nickname already in use")
	ErrEmptyNickname = errors.New("nickname is empty")
)

// Conn is the minimal line-oriented connection surface the game needs. The
// transport package provides TCP and websocket implementations.
type Conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
}

// Session is one registered player connection. All outbound traffic goes
// through the send channel so messages from one source are never reordered.
type Session struct {
	nickname string
	conn     Conn
	send     chan string
	done     chan struct{}
	once     sync.Once
	log      zerolog.Logger
}

func newSession(nickname string, conn Conn, log zerolog.Logger) *Session {
	s := &Session{
		nickname: nickname,
		conn:     conn,
		send:     make(chan string, 256),
		done:     make(chan struct{}),
		log:      log.With().Str("player", nickname).Logger(),
	}
	go s.writePump()
	return s
}

func (s *Session) Nickname() string { return s.nickname }

// Send queues a line for delivery. It never blocks; a full queue means the
// client stopped reading and the line is dropped. A closed session is
// checked first so nothing new is enqueued behind the shutdown flush.
func (s *Session) Send(line string) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.send <- line:
	case <-s.done:
	default:
		s.log.Warn().Msg("send queue full, dropping line")
	}
}

// close shuts the session down once. The write pump flushes what is already
// queued, then closes the connection, which also unblocks a pending read.
func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

func (s *Session) writePump() {
	defer s.conn.Close()

	for {
		select {
		case line := <-s.send:
			if err := s.conn.WriteLine(line); err != nil {
				s.log.Debug().Err(err).Msg("write failed, closing session")
				s.close()
				return
			}
		case <-s.done:
			// flush whatever is still queued
			for {
				select {
				case line := <-s.send:
					if err := s.conn.WriteLine(line); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// Registry tracks every registered session and enforces case-insensitive
// nickname uniqueness.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session // keyed by lowercased nickname
	log      zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		log:      log,
	}
}

// Register creates a session for nickname. The comparison against existing
// sessions is case-insensitive; blank nicknames are rejected.
func (r *Registry) Register(nickname string, conn Conn) (*Session, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrEmptyNickname
	}
	key := strings.ToLower(nickname)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.sessions[key]; taken {
		return nil, ErrNicknameTaken
	}
	s := newSession(nickname, conn, r.log)
	r.sessions[key] = s
	r.log.Info().Str("player", nickname).Int("online", len(r.sessions)).Msg("player registered")
	return s, nil
}

// Remove drops the session from the registry and closes it. Lobby cleanup is
// the directory's job and must run before this (see Worker.disconnect).
func (r *Registry) Remove(s *Session) {
	if s == nil {
		return
	}
	r.mu.Lock()
	delete(r.sessions, strings.ToLower(s.nickname))
	online := len(r.sessions)
	r.mu.Unlock()

	s.close()
	r.log.Info().Str("player", s.nickname).Int("online", online).Msg("player removed")
}

// Count reports how many sessions are registered.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Broadcast fans a line out to every target. A dead target only drops its
// own copy.
func (r *Registry) Broadcast(targets []*Session, line string) {
	for _, s := range targets {
		s.Send(line)
	}
}

// BroadcastExcept fans a line out to every target but sender.
func (r *Registry) BroadcastExcept(targets []*Session, sender *Session, line string) {
	for _, s := range targets {
		if s == sender {
			continue
		}
		s.Send(line)
	}
}
