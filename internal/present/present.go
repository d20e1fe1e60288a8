// Package present turns engine results into the short texts shown to players.
// Both the HTTP API and the terminal client use it so the wording stays in one place.
package present

import (
	"fmt"

	"github.com/robalobadob/flagquiz/internal/game"
)

// Feedback is a title/message pair, rendered by clients as an alert.
type Feedback struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Outcome describes a single guess.
func Outcome(o game.Outcome) Feedback {
	title := "Doh! That's not right..."
	if o.Correct() {
		title = "Correct!"
	}
	return Feedback{
		Title:   title,
		Message: fmt.Sprintf("That's the flag of %s", o.Guessed),
	}
}

// GameOver summarises a finished game.
func GameOver(finalScore int) Feedback {
	return Feedback{
		Title:   "Game Over",
		Message: fmt.Sprintf("Final Score: %d out of %d.", finalScore, game.RoundsPerGame),
	}
}

// Prompt is the question line for a round.
func Prompt(r game.Round) string {
	return "Tap the flag of " + r.Target()
}
