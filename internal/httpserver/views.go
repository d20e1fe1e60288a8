package httpserver

import (
	"github.com/robalobadob/flagquiz/internal/game"
	"github.com/robalobadob/flagquiz/internal/present"
)

// flagView is one tappable flag. ID doubles as the client image name.
type flagView struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// gameView is what clients render. Target names the country to find, so the
// answer is derivable from Flags; CorrectIndex is filled in after a guess
// only to save clients the lookup when showing feedback.
type gameView struct {
	GameID        string            `json:"gameId"`
	Mode          game.Mode         `json:"mode"`
	Phase         game.Phase        `json:"phase"`
	Round         int               `json:"round"`
	RoundsPerGame int               `json:"roundsPerGame"`
	Score         int               `json:"score"`
	Prompt        string            `json:"prompt"`
	Target        string            `json:"target"`
	Flags         []flagView        `json:"flags"`
	Answered      bool              `json:"answered"`
	CorrectIndex  *int              `json:"correctIndex,omitempty"`
	GameOver      bool              `json:"gameOver"`
	FinalScore    *int              `json:"finalScore,omitempty"`
	Summary       *present.Feedback `json:"summary,omitempty"`
	Date          string            `json:"date,omitempty"`
}

func (s *Server) view(g *game.Game) gameView {
	v := gameView{
		GameID:        g.ID,
		Mode:          g.Mode,
		Phase:         g.State().Phase,
		Round:         g.RoundNumber,
		RoundsPerGame: game.RoundsPerGame,
		Score:         g.Score,
		Prompt:        present.Prompt(g.Round),
		Target:        g.Round.Target(),
		Flags:         make([]flagView, 0, game.ChoicesPerRound),
		Answered:      g.Round.Answered,
		GameOver:      g.GameOver,
		Date:          g.Date,
	}
	for _, id := range g.Round.Countries {
		desc, _ := s.pool.Describe(id)
		v.Flags = append(v.Flags, flagView{ID: id, Description: desc})
	}
	if g.Round.Answered {
		idx := g.Round.CorrectIndex
		v.CorrectIndex = &idx
	}
	if g.GameOver {
		final := g.FinalScore
		summary := present.GameOver(final)
		v.FinalScore = &final
		v.Summary = &summary
	}
	return v
}
