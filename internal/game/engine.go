// internal/game/engine.go
//
// Round engine for a single play session.
// Responsibilities:
//   - Create sessions at round 1 with a freshly dealt round.
//   - Evaluate guesses and bump the score on a hit.
//   - Move to the next round, or end the game after RoundsPerGame rounds.
//
// Notes:
//   - Randomness is supplied by a Drawer so the engine itself stays pure.
//   - Game over snapshots the score into FinalScore before resetting, in the
//     same transition; there is no separate "paused on summary" state.

package game

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrChoiceOutOfRange = errors.New("choice out of range")
	ErrAlreadyAnswered  = errors.New("round already answered")
)

// Drawer deals the round for a 1-based round number.
type Drawer interface {
	Deal(roundNumber int) Round
}

// now is swapped in tests.
var now = time.Now

// New starts a session at round 1.
func New(d Drawer, mode Mode) *Game {
	g := &Game{
		ID:          uuid.NewString(),
		Mode:        mode,
		RoundNumber: 1,
		StartedAt:   now().UTC(),
	}
	g.Round = d.Deal(g.RoundNumber)
	return g
}

// SubmitGuess evaluates choice against the current round.
// It never advances; call Advance once the feedback has been shown.
func (g *Game) SubmitGuess(choice int) (Outcome, error) {
	if choice < 0 || choice >= ChoicesPerRound {
		return Outcome{}, ErrChoiceOutOfRange
	}
	if g.Round.Answered {
		return Outcome{}, ErrAlreadyAnswered
	}
	g.GameOver = false

	g.Round.Answered = true
	g.Round.Choice = choice

	out := Outcome{
		Verdict: VerdictIncorrect,
		Choice:  choice,
		Guessed: g.Round.Countries[choice],
		Target:  g.Round.Target(),
	}
	if choice == g.Round.CorrectIndex {
		g.Score++
		out.Verdict = VerdictCorrect
	}
	out.Score = g.Score
	return out, nil
}

// Advance moves to the next round. After the last round it ends the game:
// FinalScore takes the score, then score and round reset for a fresh game.
func (g *Game) Advance(d Drawer) State {
	if g.RoundNumber >= RoundsPerGame {
		t := now().UTC()
		g.FinalScore = g.Score
		g.FinishedIn = t.Sub(g.StartedAt).Milliseconds()
		g.GameOver = true
		g.GamesCompleted++
		g.Score = 0
		g.RoundNumber = 1
		g.StartedAt = t
	} else {
		g.GameOver = false
		g.RoundNumber++
	}
	g.Round = d.Deal(g.RoundNumber)
	return g.State()
}

// State returns a snapshot of the session.
func (g *Game) State() State {
	phase := PhasePlaying
	if g.GameOver {
		phase = PhaseGameOver
	}
	return State{
		Phase:       phase,
		Score:       g.Score,
		RoundNumber: g.RoundNumber,
		Round:       g.Round,
		GameOver:    g.GameOver,
		FinalScore:  g.FinalScore,
	}
}
