// internal/httpserver/routes_game.go
//
// Classic (free play) game endpoints:
//   - POST /game/new     → create a session at round 1
//   - GET  /game/{id}    → current view
//   - POST /game/guess   → evaluate a choice, return outcome + feedback text
//   - POST /game/advance → next round, or game over (result recorded)

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flagquiz/internal/game"
	"github.com/robalobadob/flagquiz/internal/present"
	"github.com/robalobadob/flagquiz/internal/results"
)

var errWrongMode = errors.New("wrong game mode")

type guessReq struct {
	GameID string `json:"gameId"`
	Choice *int   `json:"choice"`
}

type guessRes struct {
	Outcome  game.Outcome     `json:"outcome"`
	Feedback present.Feedback `json:"feedback"`
	Game     gameView         `json:"game"`
}

type advanceReq struct {
	GameID string `json:"gameId"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	g := game.New(s.dealer, game.ModeClassic)
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.metrics.SessionStarted(game.ModeClassic)
	log.Debug().Str("gameId", g.ID).Msg("game created")
	writeJSON(w, s.view(g))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, s.view(g))
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.GameID == "" || req.Choice == nil {
		writeError(w, http.StatusBadRequest, "invalid")
		return
	}
	res, err := s.applyGuess(r, req.GameID, game.ModeClassic, *req.Choice)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	g, err := s.applyAdvance(r, req.GameID, game.ModeClassic, func(*game.Game) (game.Drawer, error) {
		return s.dealer, nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	if g.GameOver {
		userID, anonID := s.owner(w, r)
		s.recordGame(r, g, userID, anonID)
	}
	writeJSON(w, s.view(g))
}

// applyGuess evaluates a choice on a game of the given mode.
func (s *Server) applyGuess(r *http.Request, id string, mode game.Mode, choice int) (*guessRes, error) {
	var out game.Outcome
	g, err := s.store.Update(r.Context(), id, func(g *game.Game) error {
		if g.Mode != mode {
			return errWrongMode
		}
		var err error
		out, err = g.SubmitGuess(choice)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Guess(mode, out.Verdict)
	return &guessRes{Outcome: out, Feedback: present.Outcome(out), Game: s.view(g)}, nil
}

// applyAdvance moves a game of the given mode forward with the drawer picked for it.
func (s *Server) applyAdvance(r *http.Request, id string, mode game.Mode, drawer func(*game.Game) (game.Drawer, error)) (*game.Game, error) {
	g, err := s.store.Update(r.Context(), id, func(g *game.Game) error {
		if g.Mode != mode {
			return errWrongMode
		}
		d, err := drawer(g)
		if err != nil {
			return err
		}
		g.Advance(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if g.GameOver {
		s.metrics.GameFinished(mode, g.FinalScore)
		log.Info().Str("gameId", g.ID).Str("mode", string(mode)).Int("finalScore", g.FinalScore).Msg("game finished")
	}
	return g, nil
}

// recordGame stores the game that just ended (best effort).
func (s *Server) recordGame(r *http.Request, g *game.Game, userID, anonID string) {
	err := s.results.RecordGame(r.Context(), results.Result{
		SessionID:   g.ID,
		UserID:      userID,
		AnonymousID: anonID,
		Mode:        string(g.Mode),
		Score:       g.FinalScore,
		Rounds:      game.RoundsPerGame,
		ElapsedMs:   g.FinishedIn,
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("record game")
	}
}
