package game

import (
	"fmt"
	"sort"
	"strings"
)

// Wire strings of the line protocol. Keyword events are matched verbatim by
// clients, the rest is display text.
const (
	msgNicknamePrompt = "Enter your nickname:"
	msgNicknameTaken  = "Nickname already in use. Enter your nickname:"
	msgNotInLobby     = "You are not in a lobby."
	msgCannotDraw     = "You cannot draw right now."
	msgDrawerNoGuess  = "The drawer cannot guess the word."
	msgGameStarting   = "Game is starting!"
	msgGameReset      = "Not enough players left. The game has been reset."

	evYouAreGuesser = "YOU_ARE_GUESSER"
	evClearCanvas   = "CLEAR_CANVAS"
	evGameEnded     = "GAME_ENDED"
)

func msgWelcome(nick string) string {
	return fmt.Sprintf("Welcome, %s!", nick)
}

func evYouAreDrawer(word string) string {
	return "YOU_ARE_DRAWER " + word
}

func msgJoined(nick string) string {
	return fmt.Sprintf("%s has joined the lobby.", nick)
}

func msgLeft(nick string) string {
	return fmt.Sprintf("%s has left the lobby.", nick)
}

func msgRoundStarted(round int, drawer string) string {
	return fmt.Sprintf("Round %d has started. The drawer is %s", round, drawer)
}

func msgTimerStarted(seconds int) string {
	return fmt.Sprintf("You have %d seconds to guess the word!", seconds)
}

func msgCorrectGuess(nick, word string) string {
	return fmt.Sprintf("Player %s guessed the word! The word was: %s", nick, word)
}

func msgTimeUp(word string) string {
	return fmt.Sprintf("Time is up! The word was: %s", word)
}

func msgDrawerLeft(word string) string {
	return fmt.Sprintf("The drawer left the game. The word was: %s", word)
}

func msgCloseGuess() string {
	return "You are close!"
}

func msgChat(nick, text string) string {
	return nick + ": " + text
}

func evDraw(verb, x, y string) string {
	return fmt.Sprintf("DRAW %s %s %s", verb, x, y)
}

// msgScores renders the scoreboard in nickname order so output is stable.
func msgScores(scores map[*Session]int) string {
	lines := make([]string, 0, len(scores))
	for s, pts := range scores {
		lines = append(lines, fmt.Sprintf("%s: %d points", s.Nickname(), pts))
	}
	sort.Strings(lines)
	return "Scores: " + strings.Join(lines, ", ")
}
