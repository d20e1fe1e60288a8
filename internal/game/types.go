// internal/game/types.go
//
// Core type definitions for the round engine.
// Defines:
//   - Round: three distinct countries plus the index of the target.
//   - Outcome: result of a single guess (correct/incorrect).
//   - Game: state of one play session across repeated 8-round games.
//   - State: read-only view returned by Advance.

package game

import "time"

const (
	RoundsPerGame   = 8
	ChoicesPerRound = 3
)

// Mode distinguishes free play from the date-seeded daily challenge.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeDaily   Mode = "daily"
)

// Verdict is the evaluation of one guess.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// Phase is the coarse engine state.
type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

// Round is one "pick the correct flag among three" question.
type Round struct {
	Countries    [ChoicesPerRound]string `json:"countries"`
	CorrectIndex int                     `json:"correctIndex"`
	Answered     bool                    `json:"answered"`
	Choice       int                     `json:"choice"` // meaningful only when Answered
}

// Target is the country the player has to find.
func (r Round) Target() string { return r.Countries[r.CorrectIndex] }

// Outcome is returned by SubmitGuess for the presentation layer.
type Outcome struct {
	Verdict Verdict `json:"verdict"`
	Choice  int     `json:"choice"`
	Guessed string  `json:"guessed"`
	Target  string  `json:"target"`
	Score   int     `json:"score"`
}

// Correct reports whether the guess hit the target.
func (o Outcome) Correct() bool { return o.Verdict == VerdictCorrect }

// Game holds one play session. A session outlives a single 8-round game:
// after game over the counters reset and a new game starts in place.
type Game struct {
	ID             string    `json:"id"`
	Mode           Mode      `json:"mode"`
	Score          int       `json:"score"`
	RoundNumber    int       `json:"roundNumber"` // 1-based
	Round          Round     `json:"round"`
	GameOver       bool      `json:"gameOver"`   // set by the advance that ended a game, cleared by the next operation
	FinalScore     int       `json:"finalScore"` // score of the most recently completed game
	GamesCompleted int       `json:"gamesCompleted"`
	StartedAt      time.Time `json:"startedAt"`  // start of the current game
	FinishedIn     int64     `json:"finishedIn"` // ms taken by the most recently completed game
	Date           string    `json:"date,omitempty"`
	Seed           int64     `json:"seed,omitempty"`
}

// State is a snapshot of the engine after a transition.
type State struct {
	Phase       Phase `json:"phase"`
	Score       int   `json:"score"`
	RoundNumber int   `json:"roundNumber"`
	Round       Round `json:"round"`
	GameOver    bool  `json:"gameOver"`
	FinalScore  int   `json:"finalScore"`
}
