// internal/httpserver/routes_stats.go
//
// Read-only endpoints: the country pool, the all-time leaderboard and the
// signed-in player's stats and history.

package httpserver

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flagquiz/internal/countries"
	"github.com/robalobadob/flagquiz/internal/results"
)

type countriesRes struct {
	Countries []countries.Country `json:"countries"`
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, countriesRes{Countries: s.pool.Countries()})
}

type leaderboardRes struct {
	Top []results.LBRow `json:"top"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.results.Leaderboard(r.Context(), 20)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, leaderboardRes{Top: rows})
}

func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	me := userFrom(r.Context())
	st, err := s.results.UserStats(r.Context(), me.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, st)
}

type myGamesRes struct {
	Games []results.GameRow `json:"games"`
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	me := userFrom(r.Context())
	games, err := s.results.RecentGames(r.Context(), me.ID, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, myGamesRes{Games: games})
}
