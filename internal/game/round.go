package game

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// Round lifecycle. Every round settles through exactly one of two racing
// paths: a correct guess or the timeout callback. Both run under l.mu and
// check the round generation; whichever sees the live generation first bumps
// it, so the loser is a no-op.

// startGameLocked freezes the turn order and kicks off round one. The member
// list at this moment defines totalRounds: one drawing turn per player.
func (l *Lobby) startGameLocked() {
	l.totalRounds = len(l.members)
	l.drawOrder = make([]*Session, len(l.members))
	copy(l.drawOrder, l.members)
	l.round = 1
	for s := range l.scores {
		l.scores[s] = 0
	}

	l.registry.Broadcast(l.members, msgGameStarting)
	l.log.Info().Int("rounds", l.totalRounds).Msg("game started")

	l.startRoundLocked()
}

// startRoundLocked starts the round at the current index, skipping rounds
// whose snapshotted drawer has since left. Runs past the last round into
// game end.
func (l *Lobby) startRoundLocked() {
	for l.round <= l.totalRounds {
		drawer := l.drawOrder[(l.round-1)%len(l.drawOrder)]
		if !l.isMemberLocked(drawer) {
			l.round++
			continue
		}

		l.drawer = drawer
		l.word = l.bank.Random()
		l.state = StateRoundActive
		l.gen++
		gen := l.gen

		drawer.Send(evYouAreDrawer(l.word))
		l.registry.BroadcastExcept(l.members, drawer, evYouAreGuesser)
		l.registry.Broadcast(l.members, msgRoundStarted(l.round, drawer.Nickname()))
		l.registry.Broadcast(l.members, msgTimerStarted(int(l.roundTimeout.Seconds())))

		l.timer = time.AfterFunc(l.roundTimeout, func() {
			l.handleTimeout(gen)
		})

		l.log.Info().Int("round", l.round).Str("drawer", drawer.Nickname()).Str("word", l.word).Msg("round started")
		return
	}
	l.endGameLocked()
}

// handleTimeout is the timer path. gen pins it to the round that armed the
// timer; a stale generation means that round already settled.
func (l *Lobby) handleTimeout(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen || l.state != StateRoundActive {
		return
	}
	l.gen++
	l.timer = nil

	l.registry.Broadcast(l.members, msgTimeUp(l.word))
	l.log.Info().Int("round", l.round).Msg("round timed out")
	l.advanceLocked()
}

// HandleChat routes a chat line: correct guesses settle the round, the
// drawer's own matching guess is rejected privately, everything else is
// relayed as chat (with a private closeness hint for near misses).
func (l *Lobby) HandleChat(s *Session, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	guessing := l.state == StateRoundActive && l.word != ""
	if guessing && strings.EqualFold(text, l.word) {
		if s == l.drawer {
			s.Send(msgDrawerNoGuess)
			return
		}
		l.settleCorrectLocked(s)
		return
	}

	l.registry.Broadcast(l.members, msgChat(s.Nickname(), text))

	if guessing && s != l.drawer {
		dist := levenshtein.ComputeDistance(strings.ToLower(text), strings.ToLower(l.word))
		if dist > 0 && dist <= 2 {
			s.Send(msgCloseGuess())
		}
	}
}

// settleCorrectLocked is the guess path: cancel the timer, award the point,
// announce, advance.
func (l *Lobby) settleCorrectLocked(guesser *Session) {
	l.stopTimerLocked()
	l.gen++

	l.scores[guesser]++
	l.registry.Broadcast(l.members, msgCorrectGuess(guesser.Nickname(), l.word))
	l.registry.Broadcast(l.members, msgScores(l.scores))
	l.log.Info().Int("round", l.round).Str("winner", guesser.Nickname()).Msg("word guessed")

	l.advanceLocked()
}

// HandleDraw relays a stroke from the current drawer to everyone else.
// Anyone else gets a private rejection and nothing is broadcast.
func (l *Lobby) HandleDraw(s *Session, verb, x, y string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateRoundActive || s != l.drawer {
		s.Send(msgCannotDraw)
		return
	}
	l.registry.BroadcastExcept(l.members, s, evDraw(verb, x, y))
}

// HandleClear handles the drawer's canvas-clear request.
func (l *Lobby) HandleClear(s *Session) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateRoundActive || s != l.drawer {
		s.Send(msgCannotDraw)
		return
	}
	l.registry.Broadcast(l.members, evClearCanvas)
}

// advanceLocked moves past a settled round: wipe the canvas, bump the index,
// start the next round or end the game.
func (l *Lobby) advanceLocked() {
	l.state = StateSettling
	l.registry.Broadcast(l.members, evClearCanvas)
	l.round++
	l.startRoundLocked()
}

// endGameLocked broadcasts the final scoreboard and schedules the reset back
// to waiting after a client-facing grace period.
func (l *Lobby) endGameLocked() {
	l.stopTimerLocked()
	l.state = StateEnded
	l.drawer = nil
	l.word = ""

	l.registry.Broadcast(l.members, msgScores(l.scores))
	l.registry.Broadcast(l.members, evGameEnded)
	l.log.Info().Msg("game ended")

	gen := l.gen
	time.AfterFunc(l.graceDelay, func() {
		l.resetAfterGame(gen)
	})
}

func (l *Lobby) resetAfterGame(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen || l.state != StateEnded {
		return
	}
	l.resetLocked()
}

// resetLocked returns the lobby to waiting with a zeroed scoreboard.
func (l *Lobby) resetLocked() {
	l.stopTimerLocked()
	l.gen++
	l.state = StateWaiting
	l.round = 0
	l.totalRounds = 0
	l.drawOrder = nil
	l.drawer = nil
	l.word = ""
	for s := range l.scores {
		l.scores[s] = 0
	}
}

func (l *Lobby) stopTimerLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

// removeMemberLocked takes s out of the lobby and keeps the game coherent:
// a departing drawer aborts the active round, and dropping below two players
// mid-game resets the lobby to waiting. Reports whether the lobby is empty.
func (l *Lobby) removeMemberLocked(s *Session) bool {
	for i, m := range l.members {
		if m == s {
			l.members = append(l.members[:i], l.members[i+1:]...)
			break
		}
	}
	delete(l.scores, s)

	if len(l.members) == 0 {
		l.stopTimerLocked()
		l.gen++
		return true
	}

	if l.leader == s {
		l.leader = l.members[0]
	}
	l.registry.Broadcast(l.members, msgLeft(s.Nickname()))

	if l.state == StateRoundActive {
		switch {
		case len(l.members) < minCapacity:
			l.registry.Broadcast(l.members, msgGameReset)
			l.log.Info().Msg("game reset, not enough players")
			l.resetLocked()
		case s == l.drawer:
			l.stopTimerLocked()
			l.gen++
			l.registry.Broadcast(l.members, msgDrawerLeft(l.word))
			l.log.Info().Int("round", l.round).Msg("round aborted, drawer left")
			l.advanceLocked()
		}
	}
	return false
}
