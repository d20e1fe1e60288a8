// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes four endpoints under /daily:
//   - POST /daily/new         → start today's daily game (creates or reuses session)
//   - POST /daily/guess       → submit a choice for the current round
//   - POST /daily/advance     → next round; the result is recorded at game over
//   - GET  /daily/leaderboard → top 20 results for today (or a given date)
//
// Each player gets one scored attempt per day (enforced by DB + in-memory index).
// The game itself lives in the session store like a classic game; rounds are
// dealt from a dealer seeded with HMAC(salt, date), so every player sees the
// same eight rounds.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flagquiz/internal/daily"
	"github.com/robalobadob/flagquiz/internal/game"
	"github.com/robalobadob/flagquiz/internal/results"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	salt     string
	sessions map[string]*dailySession // keyed by game id
	byPlayer map[string]string        // playerID|date -> game id
	mu       sync.Mutex               // guards sessions and byPlayer
}

// dailySession indexes a player's in-progress daily game.
type dailySession struct {
	GameID   string
	PlayerID string
	Date     string
	Finished bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		salt:     s.cfg.DailySalt,
		sessions: make(map[string]*dailySession),
		byPlayer: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Post("/advance", dd.handleAdvance)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

func (d *dailyServer) today() string {
	return daily.DateKey(d.srv.now())
}

// playerID is the signed-in user id, or the anonymous cookie id.
func (d *dailyServer) playerID(w http.ResponseWriter, r *http.Request) (id, userID, anonID string) {
	userID, anonID = d.srv.owner(w, r)
	if userID != "" {
		return userID, userID, ""
	}
	return anonID, "", anonID
}

// dealer rebuilds the deterministic dealer for a seed.
func (d *dailyServer) dealer(seed int64) (game.Drawer, error) {
	return game.NewSeededDealer(d.srv.pool.IDs(), seed)
}

// session returns the daily session gameID if it belongs to playerID.
// The lookup ignores the clock, so a game started before midnight UTC
// finishes under the date it was dealt for.
func (d *dailyServer) session(playerID, gameID string) (*dailySession, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sess, ok := d.sessions[gameID]
	if !ok || sess.PlayerID != playerID {
		return nil, false
	}
	return sess, true
}

// prune drops sessions older than yesterday and finished ones from past
// dates. Yesterday's open games stay so they can still be completed.
// Callers hold d.mu.
func (d *dailyServer) prune(today string) {
	yesterday := daily.DateKey(d.srv.now().AddDate(0, 0, -1))
	for id, sess := range d.sessions {
		if sess.Date == today || (sess.Date == yesterday && !sess.Finished) {
			continue
		}
		delete(d.sessions, id)
		if d.byPlayer[sess.PlayerID+"|"+sess.Date] == id {
			delete(d.byPlayer, sess.PlayerID+"|"+sess.Date)
		}
	}
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID string    `json:"gameId"`
	Date   string    `json:"date"`
	Played bool      `json:"played"`
	Game   *gameView `json:"game,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
// A player with a recorded attempt for today gets Played=true and no game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	pid, _, _ := d.playerID(w, r)
	date := d.today()

	played, err := d.srv.results.AlreadyPlayedDaily(r.Context(), pid, date)
	if err != nil {
		log.Error().Err(err).Msg("daily lookup")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		writeJSON(w, dailyNewRes{Date: date, Played: true})
		return
	}

	key := pid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune(date)

	if sess, ok := d.sessions[d.byPlayer[key]]; ok {
		if sess.Finished {
			writeJSON(w, dailyNewRes{Date: date, Played: true})
			return
		}
		if g, err := d.srv.store.Get(r.Context(), sess.GameID); err == nil {
			v := d.srv.view(g)
			writeJSON(w, dailyNewRes{GameID: g.ID, Date: date, Game: &v})
			return
		}
		// the stored game expired; start over below
		delete(d.sessions, sess.GameID)
	}

	seed := daily.SeedForKey(date, d.salt)
	dealer, err := d.dealer(seed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "pool_error")
		return
	}
	g := game.New(dealer, game.ModeDaily)
	g.Date = date
	g.Seed = seed
	if err := d.srv.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save daily game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.sessions[g.ID] = &dailySession{GameID: g.ID, PlayerID: pid, Date: date}
	d.byPlayer[key] = g.ID
	d.srv.metrics.SessionStarted(game.ModeDaily)
	log.Debug().Str("gameId", g.ID).Str("date", date).Msg("daily game created")

	v := d.srv.view(g)
	writeJSON(w, dailyNewRes{GameID: g.ID, Date: date, Game: &v})
}

// -----------------------------------------------------------------------------
// /daily/guess

// handleGuess applies a choice to the player's daily game.
// Rejects unknown sessions (409 no_session) and finished ones (409 daily_locked).
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.GameID == "" || req.Choice == nil {
		writeError(w, http.StatusBadRequest, "invalid")
		return
	}
	pid, _, _ := d.playerID(w, r)
	sess, ok := d.session(pid, req.GameID)
	if !ok {
		writeError(w, http.StatusConflict, "no_session")
		return
	}
	if d.finished(sess) {
		writeError(w, http.StatusConflict, "daily_locked")
		return
	}

	res, err := d.srv.applyGuess(r, req.GameID, game.ModeDaily, *req.Choice)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, res)
}

// -----------------------------------------------------------------------------
// /daily/advance

// handleAdvance moves the daily game on. At game over the session locks and
// the attempt is stored for the daily leaderboard and the player's history.
func (d *dailyServer) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	pid, userID, anonID := d.playerID(w, r)
	sess, ok := d.session(pid, req.GameID)
	if !ok {
		writeError(w, http.StatusConflict, "no_session")
		return
	}
	if d.finished(sess) {
		writeError(w, http.StatusConflict, "daily_locked")
		return
	}

	g, err := d.srv.applyAdvance(r, req.GameID, game.ModeDaily, func(g *game.Game) (game.Drawer, error) {
		return d.dealer(g.Seed)
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	if g.GameOver {
		d.mu.Lock()
		sess.Finished = true
		d.mu.Unlock()

		inserted, err := d.srv.results.InsertDailyResult(r.Context(), results.DailyResult{
			PlayerID:  pid,
			Date:      g.Date,
			Score:     g.FinalScore,
			ElapsedMs: g.FinishedIn,
		})
		if err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("record daily result")
		}
		if inserted {
			d.srv.recordGame(r, g, userID, anonID)
		}
	}
	writeJSON(w, d.srv.view(g))
}

func (d *dailyServer) finished(sess *dailySession) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sess.Finished
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// dailyLBRes is returned by /daily/leaderboard.
type dailyLBRes struct {
	Date string               `json:"date"`
	Top  []results.DailyLBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = d.today()
	}
	rows, err := d.srv.results.DailyLeaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, dailyLBRes{Date: date, Top: rows})
}
