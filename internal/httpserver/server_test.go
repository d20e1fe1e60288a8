package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/flagquiz/assets"
	"github.com/robalobadob/flagquiz/internal/config"
	"github.com/robalobadob/flagquiz/internal/countries"
	"github.com/robalobadob/flagquiz/internal/game"
	"github.com/robalobadob/flagquiz/internal/metrics"
	"github.com/robalobadob/flagquiz/internal/results"
	"github.com/robalobadob/flagquiz/internal/store"
)

var testDay = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

// testClock is a movable time source for Deps.Now.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, filepath.Join(t.TempDir(), "app.db"), &testClock{now: testDay})
}

// newTestServerWith starts a server on the database at dbPath with a fresh
// session store, as a restarted process would have.
func newTestServerWith(t *testing.T, dbPath string, clock *testClock) *httptest.Server {
	t.Helper()
	db, err := results.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := results.Migrate(db, assets.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := countries.Load("")
	if err != nil {
		t.Fatalf("load pool: %v", err)
	}
	dealer, err := game.NewDealer(pool.IDs(), rand.NewSource(42))
	if err != nil {
		t.Fatal(err)
	}
	s := New(Deps{
		Store:   store.NewMemoryStore(),
		Results: results.NewStore(db),
		Pool:    pool,
		Dealer:  dealer,
		Metrics: metrics.New(),
		Config: &config.Config{
			Env:          "local",
			ClientOrigin: "http://localhost:5173",
			DailySalt:    "test_salt",
			Auth: config.Auth{
				JWTSecret:      "test_secret",
				JWTExpiresDays: 1,
				CookieName:     "flagquiz_token",
			},
		},
		Now: clock.Now,
	})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

// client is a cookie-carrying player.
type client struct {
	t    *testing.T
	base string
	hc   *http.Client
}

func newClient(t *testing.T, ts *httptest.Server) *client {
	jar, _ := cookiejar.New(nil)
	return &client{t: t, base: ts.URL, hc: &http.Client{Jar: jar}}
}

// do sends body as JSON (a string is sent raw) and returns status and payload.
func (c *client) do(method, path string, body any) (int, []byte) {
	c.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			c.t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.hc.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	payload, _ := io.ReadAll(res.Body)
	return res.StatusCode, payload
}

// call expects status want and decodes the payload into out (if non-nil).
func (c *client) call(method, path string, body any, want int, out any) {
	c.t.Helper()
	code, payload := c.do(method, path, body)
	if code != want {
		c.t.Fatalf("%s %s: expected %d, got %d (%s)", method, path, want, code, payload)
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			c.t.Fatalf("%s %s: decode %s: %v", method, path, payload, err)
		}
	}
}

func (c *client) expectError(method, path string, body any, want int, code string) {
	c.t.Helper()
	var e struct {
		Error string `json:"error"`
	}
	c.call(method, path, body, want, &e)
	if e.Error != code {
		c.t.Errorf("%s %s: expected error %q, got %q", method, path, code, e.Error)
	}
}

func correctChoice(t *testing.T, v gameView) int {
	t.Helper()
	for i, f := range v.Flags {
		if f.ID == v.Target {
			return i
		}
	}
	t.Fatalf("target %q not among flags %+v", v.Target, v.Flags)
	return -1
}

// playGame plays all rounds of the game, guessing right the first `hits` times,
// and returns the view from the advance that ended it.
func (c *client) playGame(prefix string, v gameView, hits int) gameView {
	c.t.Helper()
	for i := 0; i < game.RoundsPerGame; i++ {
		choice := correctChoice(c.t, v)
		if i >= hits {
			choice = (choice + 1) % game.ChoicesPerRound
		}
		var res guessRes
		c.call(http.MethodPost, prefix+"/guess", map[string]any{"gameId": v.GameID, "choice": choice}, http.StatusOK, &res)
		v = gameView{}
		c.call(http.MethodPost, prefix+"/advance", map[string]any{"gameId": res.Game.GameID}, http.StatusOK, &v)
	}
	return v
}

func TestHealthAndCountries(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	var health map[string]bool
	c.call(http.MethodGet, "/health", nil, http.StatusOK, &health)
	if !health["ok"] {
		t.Errorf("unexpected health body %v", health)
	}

	var cs countriesRes
	c.call(http.MethodGet, "/countries", nil, http.StatusOK, &cs)
	if len(cs.Countries) != 11 {
		t.Errorf("expected 11 countries, got %d", len(cs.Countries))
	}

	c.expectError(http.MethodGet, "/nope", nil, http.StatusNotFound, "not_found")
}

func TestClassicRoundFlow(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	var v gameView
	c.call(http.MethodPost, "/game/new", nil, http.StatusOK, &v)
	if v.GameID == "" || v.Round != 1 || v.Score != 0 || v.Phase != game.PhasePlaying {
		t.Fatalf("unexpected new game %+v", v)
	}
	if len(v.Flags) != game.ChoicesPerRound {
		t.Fatalf("expected 3 flags, got %d", len(v.Flags))
	}
	if v.CorrectIndex != nil {
		t.Error("correctIndex is only filled in after a guess")
	}
	if v.Prompt != "Tap the flag of "+v.Target {
		t.Errorf("unexpected prompt %q", v.Prompt)
	}

	choice := correctChoice(t, v)
	var res guessRes
	c.call(http.MethodPost, "/game/guess", map[string]any{"gameId": v.GameID, "choice": choice}, http.StatusOK, &res)
	if !res.Outcome.Correct() || res.Outcome.Score != 1 {
		t.Errorf("expected correct outcome with score 1, got %+v", res.Outcome)
	}
	if res.Feedback.Title != "Correct!" || res.Feedback.Message != "That's the flag of "+v.Target {
		t.Errorf("unexpected feedback %+v", res.Feedback)
	}
	if res.Game.Round != 1 || res.Game.CorrectIndex == nil || *res.Game.CorrectIndex != choice {
		t.Errorf("guess must not advance and must reveal the answer: %+v", res.Game)
	}

	c.expectError(http.MethodPost, "/game/guess", map[string]any{"gameId": v.GameID, "choice": choice},
		http.StatusConflict, "already_answered")

	var next gameView
	c.call(http.MethodPost, "/game/advance", map[string]any{"gameId": v.GameID}, http.StatusOK, &next)
	if next.Round != 2 || next.Score != 1 || next.Answered {
		t.Errorf("unexpected state after advance %+v", next)
	}

	var fetched gameView
	c.call(http.MethodGet, "/game/"+v.GameID, nil, http.StatusOK, &fetched)
	if fetched.Round != 2 || fetched.Target != next.Target {
		t.Errorf("GET returned stale game %+v", fetched)
	}
}

func TestGameErrors(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	var v gameView
	c.call(http.MethodPost, "/game/new", nil, http.StatusOK, &v)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"bad json", "/game/guess", "{", http.StatusBadRequest, "bad_json"},
		{"missing choice", "/game/guess", map[string]any{"gameId": v.GameID}, http.StatusBadRequest, "invalid"},
		{"negative choice", "/game/guess", map[string]any{"gameId": v.GameID, "choice": -1}, http.StatusBadRequest, "choice_out_of_range"},
		{"choice too big", "/game/guess", map[string]any{"gameId": v.GameID, "choice": 3}, http.StatusBadRequest, "choice_out_of_range"},
		{"unknown game", "/game/guess", map[string]any{"gameId": "nope", "choice": 0}, http.StatusNotFound, "not_found"},
		{"advance bad json", "/game/advance", "[", http.StatusBadRequest, "bad_json"},
		{"advance unknown", "/game/advance", map[string]any{"gameId": "nope"}, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.t = t
			c.expectError(http.MethodPost, tt.path, tt.body, tt.status, tt.code)
		})
	}
	c.t = t

	c.expectError(http.MethodGet, "/game/nope", nil, http.StatusNotFound, "not_found")

	// rejected guesses leave the game untouched
	var after gameView
	c.call(http.MethodGet, "/game/"+v.GameID, nil, http.StatusOK, &after)
	if after.Answered || after.Score != 0 {
		t.Errorf("game mutated by rejected guesses: %+v", after)
	}

	// a daily game cannot be driven through the classic routes
	var d dailyNewRes
	c.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &d)
	c.expectError(http.MethodPost, "/game/guess", map[string]any{"gameId": d.GameID, "choice": 0},
		http.StatusConflict, "wrong_mode")
}

func TestFullGameRecordsResult(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	c.call(http.MethodPost, "/auth/signup", credentials{Username: "vexillo", Password: "secret-pass"}, http.StatusOK, nil)

	var v gameView
	c.call(http.MethodPost, "/game/new", nil, http.StatusOK, &v)
	end := c.playGame("/game", v, game.RoundsPerGame)

	if !end.GameOver || end.Phase != game.PhaseGameOver {
		t.Fatalf("expected game over after 8 advances, got %+v", end)
	}
	if end.FinalScore == nil || *end.FinalScore != 8 {
		t.Fatalf("expected final score 8, got %+v", end.FinalScore)
	}
	if end.Summary == nil || end.Summary.Title != "Game Over" || end.Summary.Message != "Final Score: 8 out of 8." {
		t.Errorf("unexpected summary %+v", end.Summary)
	}
	if end.Score != 0 || end.Round != 1 || len(end.Flags) != 3 {
		t.Errorf("session must reset to a fresh round 1, got %+v", end)
	}

	var lb leaderboardRes
	c.call(http.MethodGet, "/leaderboard", nil, http.StatusOK, &lb)
	if len(lb.Top) != 1 || lb.Top[0].Username != "vexillo" || lb.Top[0].BestScore != 8 || lb.Top[0].PerfectGames != 1 {
		t.Errorf("unexpected leaderboard %+v", lb.Top)
	}

	var st results.Stats
	c.call(http.MethodGet, "/stats/me", nil, http.StatusOK, &st)
	if st.GamesPlayed != 1 || st.BestScore != 8 {
		t.Errorf("unexpected stats %+v", st)
	}

	var mine myGamesRes
	c.call(http.MethodGet, "/games/mine", nil, http.StatusOK, &mine)
	if len(mine.Games) != 1 || mine.Games[0].SessionID != v.GameID || mine.Games[0].Mode != "classic" {
		t.Errorf("unexpected history %+v", mine.Games)
	}

	// the next guess acknowledges game over
	var res guessRes
	c.call(http.MethodPost, "/game/guess", map[string]any{"gameId": v.GameID, "choice": 0}, http.StatusOK, &res)
	if res.Game.GameOver {
		t.Error("game over flag should clear on the next guess")
	}
}

func TestGuestGamesClaimedOnSignup(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	var v gameView
	c.call(http.MethodPost, "/game/new", nil, http.StatusOK, &v)
	end := c.playGame("/game", v, 3)
	if end.FinalScore == nil || *end.FinalScore != 3 {
		t.Fatalf("expected final score 3, got %+v", end.FinalScore)
	}

	var lb leaderboardRes
	c.call(http.MethodGet, "/leaderboard", nil, http.StatusOK, &lb)
	if len(lb.Top) != 0 {
		t.Errorf("guests are not ranked, got %+v", lb.Top)
	}

	c.call(http.MethodPost, "/auth/signup", credentials{Username: "late_joiner", Password: "secret-pass"}, http.StatusOK, nil)

	var mine myGamesRes
	c.call(http.MethodGet, "/games/mine", nil, http.StatusOK, &mine)
	if len(mine.Games) != 1 || mine.Games[0].Score != 3 {
		t.Errorf("guest game not claimed: %+v", mine.Games)
	}
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	c.expectError(http.MethodGet, "/auth/me", nil, http.StatusUnauthorized, "Unauthorized")
	c.expectError(http.MethodGet, "/stats/me", nil, http.StatusUnauthorized, "Unauthorized")
	c.expectError(http.MethodPost, "/auth/signup", credentials{Username: "ab", Password: "secret-pass"},
		http.StatusBadRequest, "username must be 3–24 chars")
	c.expectError(http.MethodPost, "/auth/signup", credentials{Username: "flag fan", Password: "secret-pass"},
		http.StatusBadRequest, "username: letters, numbers, underscore only")
	c.expectError(http.MethodPost, "/auth/signup", credentials{Username: "flagfan", Password: "short"},
		http.StatusBadRequest, "password must be 8–100 chars")
	c.expectError(http.MethodPost, "/auth/signup", "nope", http.StatusBadRequest, "bad_json")

	c.call(http.MethodPost, "/auth/signup", credentials{Username: "flagfan", Password: "secret-pass"}, http.StatusOK, nil)

	var me authUser
	c.call(http.MethodGet, "/auth/me", nil, http.StatusOK, &me)
	if me.Username != "flagfan" || me.ID == "" {
		t.Errorf("unexpected /auth/me %+v", me)
	}

	other := newClient(t, ts)
	other.expectError(http.MethodPost, "/auth/signup", credentials{Username: "FlagFan", Password: "secret-pass"},
		http.StatusConflict, "Username taken")
	other.expectError(http.MethodPost, "/auth/login", credentials{Username: "flagfan", Password: "wrong-pass"},
		http.StatusUnauthorized, "Invalid username or password")
	other.call(http.MethodPost, "/auth/login", credentials{Username: "flagfan", Password: "secret-pass"}, http.StatusOK, nil)
	other.call(http.MethodGet, "/auth/me", nil, http.StatusOK, nil)

	c.call(http.MethodPost, "/auth/logout", nil, http.StatusOK, nil)
	c.expectError(http.MethodGet, "/auth/me", nil, http.StatusUnauthorized, "Unauthorized")

	// forged tokens are rejected
	code, _ := c.doBearer("/auth/me", "not-a-jwt")
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a forged token, got %d", code)
	}
}

func (c *client) doBearer(path, token string) (int, []byte) {
	c.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, c.base+path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer res.Body.Close()
	payload, _ := io.ReadAll(res.Body)
	return res.StatusCode, payload
}

func TestDailyChallenge(t *testing.T) {
	ts := newTestServer(t)
	guest := newClient(t, ts)
	player := newClient(t, ts)
	player.call(http.MethodPost, "/auth/signup", credentials{Username: "daily_dan", Password: "secret-pass"}, http.StatusOK, nil)

	var g, p dailyNewRes
	guest.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &g)
	player.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &p)
	if g.Played || g.Date != "2026-10-18" || g.Game == nil || g.Game.Mode != game.ModeDaily {
		t.Fatalf("unexpected daily start %+v", g)
	}
	if g.GameID == p.GameID {
		t.Error("players must get their own sessions")
	}
	if g.Game.Target != p.Game.Target || g.Game.Flags[0] != p.Game.Flags[0] {
		t.Error("everyone gets the same daily rounds")
	}

	// starting again resumes the same game
	var again dailyNewRes
	guest.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &again)
	if again.GameID != g.GameID {
		t.Errorf("expected resumed session %s, got %s", g.GameID, again.GameID)
	}

	// sessions belong to their player
	player.expectError(http.MethodPost, "/daily/guess", map[string]any{"gameId": g.GameID, "choice": 0},
		http.StatusConflict, "no_session")

	guestEnd := guest.playGame("/daily", *g.Game, 5)
	playerEnd := player.playGame("/daily", *p.Game, game.RoundsPerGame)
	if *guestEnd.FinalScore != 5 || *playerEnd.FinalScore != 8 {
		t.Fatalf("unexpected final scores %d / %d", *guestEnd.FinalScore, *playerEnd.FinalScore)
	}

	guest.expectError(http.MethodPost, "/daily/guess", map[string]any{"gameId": g.GameID, "choice": 0},
		http.StatusConflict, "daily_locked")
	guest.expectError(http.MethodPost, "/daily/advance", map[string]any{"gameId": g.GameID},
		http.StatusConflict, "daily_locked")

	var replay dailyNewRes
	guest.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &replay)
	if !replay.Played || replay.GameID != "" {
		t.Errorf("expected played=true, got %+v", replay)
	}

	var lb dailyLBRes
	guest.call(http.MethodGet, "/daily/leaderboard", nil, http.StatusOK, &lb)
	if lb.Date != "2026-10-18" || len(lb.Top) != 2 {
		t.Fatalf("unexpected daily leaderboard %+v", lb)
	}
	if lb.Top[0].Name != "daily_dan" || lb.Top[0].Score != 8 || lb.Top[1].Name != "guest" || lb.Top[1].Score != 5 {
		t.Errorf("unexpected order %+v", lb.Top)
	}

	var other dailyLBRes
	guest.call(http.MethodGet, "/daily/leaderboard?date=2026-10-17", nil, http.StatusOK, &other)
	if len(other.Top) != 0 {
		t.Errorf("expected empty leaderboard for another day, got %+v", other.Top)
	}

	var mine myGamesRes
	player.call(http.MethodGet, "/games/mine", nil, http.StatusOK, &mine)
	if len(mine.Games) != 1 || mine.Games[0].Mode != "daily" {
		t.Errorf("daily game missing from history: %+v", mine.Games)
	}
}

func TestDailyRejectsUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)
	c.expectError(http.MethodPost, "/daily/guess", map[string]any{"gameId": "missing", "choice": 1},
		http.StatusConflict, "no_session")
	c.expectError(http.MethodPost, "/daily/advance", map[string]any{"gameId": "missing"},
		http.StatusConflict, "no_session")
	c.expectError(http.MethodPost, "/daily/guess", map[string]any{"choice": 1}, http.StatusBadRequest, "invalid")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)
	c.call(http.MethodPost, "/game/new", nil, http.StatusOK, nil)

	code, body := c.do(http.MethodGet, "/metrics", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(string(body), `flagquiz_sessions_started_total{mode="classic"} 1`) {
		t.Errorf("sessions counter missing from /metrics output")
	}
}

func TestDailyAttemptFollowsGuestOntoAccount(t *testing.T) {
	for _, tc := range []struct {
		name string
		path string
	}{
		{"signup", "/auth/signup"},
		{"login", "/auth/login"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tc.path == "/auth/login" {
				newClient(t, ts).call(http.MethodPost, "/auth/signup",
					credentials{Username: "returning", Password: "secret-pass"}, http.StatusOK, nil)
			}

			c := newClient(t, ts)
			var start dailyNewRes
			c.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &start)
			c.playGame("/daily", *start.Game, 2)

			c.call(http.MethodPost, tc.path, credentials{Username: "returning", Password: "secret-pass"}, http.StatusOK, nil)

			var again dailyNewRes
			c.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &again)
			if !again.Played || again.GameID != "" {
				t.Fatalf("account must inherit the guest's attempt, got %+v", again)
			}

			var lb dailyLBRes
			c.call(http.MethodGet, "/daily/leaderboard", nil, http.StatusOK, &lb)
			if len(lb.Top) != 1 || lb.Top[0].Name != "returning" || lb.Top[0].Score != 2 {
				t.Errorf("expected a single entry for the account, got %+v", lb.Top)
			}
		})
	}
}

func TestDailyGameCrossesMidnight(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 10, 17, 23, 59, 50, 0, time.UTC)}
	ts := newTestServerWith(t, filepath.Join(t.TempDir(), "app.db"), clock)
	c := newClient(t, ts)

	var start dailyNewRes
	c.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &start)
	if start.Date != "2026-10-17" {
		t.Fatalf("unexpected date %q", start.Date)
	}

	v := *start.Game
	for i := 0; i < game.RoundsPerGame; i++ {
		var res guessRes
		c.call(http.MethodPost, "/daily/guess", map[string]any{"gameId": v.GameID, "choice": correctChoice(t, v)}, http.StatusOK, &res)
		if i == 0 {
			clock.Set(time.Date(2026, 10, 18, 0, 0, 10, 0, time.UTC))
		}
		v = gameView{}
		c.call(http.MethodPost, "/daily/advance", map[string]any{"gameId": res.Game.GameID}, http.StatusOK, &v)
	}
	if !v.GameOver || v.Date != "2026-10-17" {
		t.Fatalf("expected yesterday's game to finish, got %+v", v)
	}

	var lb dailyLBRes
	c.call(http.MethodGet, "/daily/leaderboard?date=2026-10-17", nil, http.StatusOK, &lb)
	if len(lb.Top) != 1 || lb.Top[0].Score != 8 {
		t.Errorf("attempt not recorded under its own date: %+v", lb.Top)
	}

	var today dailyNewRes
	c.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &today)
	if today.Played || today.Date != "2026-10-18" || today.GameID == start.GameID {
		t.Errorf("today's challenge should be fresh, got %+v", today)
	}
}

func TestDailyPlayedSurvivesRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "app.db")
	clock := &testClock{now: testDay}

	first := newTestServerWith(t, dbPath, clock)
	c := newClient(t, first)
	var start dailyNewRes
	c.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &start)
	c.playGame("/daily", *start.Game, 6)
	first.Close()

	// same cookies, new process with an empty session index
	second := newTestServerWith(t, dbPath, clock)
	c.base = second.URL

	var again dailyNewRes
	c.call(http.MethodPost, "/daily/new", nil, http.StatusOK, &again)
	if !again.Played || again.GameID != "" {
		t.Errorf("expected played=true after restart, got %+v", again)
	}
	c.expectError(http.MethodPost, "/daily/guess", map[string]any{"gameId": start.GameID, "choice": 0},
		http.StatusConflict, "no_session")
}

func TestDailyPruneKeepsOpenGamesFromYesterday(t *testing.T) {
	clock := &testClock{now: testDay}
	d := &dailyServer{
		srv:      &Server{now: clock.Now},
		sessions: map[string]*dailySession{},
		byPlayer: map[string]string{},
	}
	add := func(id, date string, finished bool) {
		d.sessions[id] = &dailySession{GameID: id, PlayerID: "p-" + id, Date: date, Finished: finished}
		d.byPlayer["p-"+id+"|"+date] = id
	}
	add("today", "2026-10-18", true)
	add("open-yesterday", "2026-10-17", false)
	add("done-yesterday", "2026-10-17", true)
	add("stale", "2026-10-15", false)

	d.prune("2026-10-18")

	for id, keep := range map[string]bool{
		"today":          true,
		"open-yesterday": true,
		"done-yesterday": false,
		"stale":          false,
	} {
		if _, ok := d.sessions[id]; ok != keep {
			t.Errorf("%s: kept=%v, want %v", id, ok, keep)
		}
	}
	if len(d.byPlayer) != 2 {
		t.Errorf("player index not pruned: %v", d.byPlayer)
	}
}
