package game

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Worker drives one connection: nickname registration first, then a blocking
// read loop that classifies each line and dispatches it. A read error is an
// implicit leave, never fatal to the server.
type Worker struct {
	registry *Registry
	lobbies  *Directory
	log      zerolog.Logger
}

func NewWorker(registry *Registry, lobbies *Directory, log zerolog.Logger) *Worker {
	return &Worker{
		registry: registry,
		lobbies:  lobbies,
		log:      log,
	}
}

// Handle runs the full lifecycle of conn. Blocks until the client goes away
// or breaks protocol.
func (w *Worker) Handle(conn Conn) {
	sess, err := w.registerNickname(conn)
	if err != nil {
		_ = conn.Close()
		return
	}
	defer w.disconnect(sess)

	sess.Send(msgWelcome(sess.Nickname()))

	var lobby *Lobby
	for {
		line, err := conn.ReadLine()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		joined, keepOpen := w.dispatch(sess, lobby, line)
		if joined != nil {
			lobby = joined
		}
		if !keepOpen {
			return
		}
	}
}

// registerNickname prompts until a usable nickname arrives. Writes go
// straight to the connection here; the session's write pump takes over after
// registration.
func (w *Worker) registerNickname(conn Conn) (*Session, error) {
	prompt := msgNicknamePrompt
	for {
		if err := conn.WriteLine(prompt); err != nil {
			return nil, err
		}
		line, err := conn.ReadLine()
		if err != nil {
			return nil, err
		}

		sess, err := w.registry.Register(line, conn)
		switch {
		case err == nil:
			return sess, nil
		case errors.Is(err, ErrNicknameTaken):
			prompt = msgNicknameTaken
		case errors.Is(err, ErrEmptyNickname):
			prompt = msgNicknamePrompt
		default:
			return nil, err
		}
	}
}

// dispatch handles one command line. It returns the lobby the session just
// entered (nil otherwise) and whether the connection stays open.
func (w *Worker) dispatch(sess *Session, lobby *Lobby, line string) (*Lobby, bool) {
	fields := strings.Fields(line)

	switch fields[0] {
	case "CREATE_LOBBY":
		if len(fields) != 3 {
			sess.Send("ERROR BAD_COMMAND")
			return nil, false
		}
		if lobby != nil {
			sess.Send("ERROR ALREADY_IN_LOBBY")
			return nil, true
		}
		capacity, err := strconv.Atoi(fields[2])
		if err != nil {
			sess.Send("ERROR BAD_COMMAND")
			return nil, false
		}
		l, err := w.lobbies.Create(fields[1], capacity, sess)
		if err != nil {
			sess.Send("ERROR " + errorCode(err))
			return nil, false
		}
		return l, true

	case "JOIN_LOBBY":
		if len(fields) != 2 {
			sess.Send("ERROR BAD_COMMAND")
			return nil, false
		}
		if lobby != nil {
			sess.Send("ERROR ALREADY_IN_LOBBY")
			return nil, true
		}
		l, err := w.lobbies.Join(fields[1], sess)
		if err != nil {
			sess.Send("ERROR " + errorCode(err))
			return nil, false
		}
		return l, true

	case "PRESS", "DRAG":
		if len(fields) != 3 || !isCoordinate(fields[1]) || !isCoordinate(fields[2]) {
			sess.Send("ERROR BAD_COMMAND")
			return nil, false
		}
		if lobby == nil {
			sess.Send(msgNotInLobby)
			return nil, true
		}
		lobby.HandleDraw(sess, fields[0], fields[1], fields[2])
		return nil, true

	case "CLEAR_REQUEST":
		if lobby == nil {
			sess.Send(msgNotInLobby)
			return nil, true
		}
		lobby.HandleClear(sess)
		return nil, true

	default:
		// chat or guess
		if lobby == nil {
			sess.Send(msgNotInLobby)
			return nil, true
		}
		lobby.HandleChat(sess, line)
		return nil, true
	}
}

// disconnect is the single cleanup path for both explicit closes and read
// errors: lobby cascade first, then the registry.
func (w *Worker) disconnect(sess *Session) {
	w.lobbies.Leave(sess)
	w.registry.Remove(sess)
}

// isCoordinate accepts only finite, non-negative numbers; ParseFloat alone
// would let NaN and Inf through onto the wire.
func isCoordinate(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrLobbyExists):
		return "LOBBY_EXISTS"
	case errors.Is(err, ErrLobbyNotFound):
		return "LOBBY_NOT_FOUND"
	case errors.Is(err, ErrLobbyFull):
		return "LOBBY_FULL"
	case errors.Is(err, ErrBadCapacity):
		return "BAD_CAPACITY"
	default:
		return "INTERNAL"
	}
}
