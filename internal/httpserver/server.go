// internal/httpserver/server.go
//
// HTTP server wiring for the Guess the Flag backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/countries", "/leaderboard", "/metrics".
//   - Game endpoints (optional auth): /game/new, /game/{id}, /game/guess, /game/advance.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - Every game mutation goes through store.Update, so concurrent requests on
//     one game are applied one after another.
//   - Result persistence is best effort; gameplay responses never fail on it.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flagquiz/internal/config"
	"github.com/robalobadob/flagquiz/internal/countries"
	"github.com/robalobadob/flagquiz/internal/game"
	"github.com/robalobadob/flagquiz/internal/metrics"
	"github.com/robalobadob/flagquiz/internal/results"
	"github.com/robalobadob/flagquiz/internal/store"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Store   store.Store
	Results *results.Store
	Pool    *countries.Pool
	Dealer  game.Drawer // classic mode rounds
	Metrics *metrics.Metrics
	Config  *config.Config
	Now     func() time.Time // daily date source; defaults to time.Now
}

// Server bundles router, session store, results DB and the country pool.
type Server struct {
	r       *chi.Mux
	store   store.Store
	results *results.Store
	pool    *countries.Pool
	dealer  game.Drawer
	metrics *metrics.Metrics
	cfg     *config.Config
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   d.Store,
		results: d.Results,
		pool:    d.Pool,
		dealer:  d.Dealer,
		metrics: d.Metrics,
		cfg:     d.Config,
		now:     d.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"flagquiz","endpoints":["/health","/countries","POST /game/new","POST /game/guess","POST /game/advance","/daily/*","/auth/*","/leaderboard","/metrics"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.r.Get("/countries", s.handleCountries)
	s.r.Get("/leaderboard", s.handleLeaderboard)

	// guests can play; a valid token attributes results to the account
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Get("/game/{id}", s.handleGetGame)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/advance", s.handleAdvance)
		s.mountDaily(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one debug line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// writeGameError maps engine/store errors onto HTTP responses.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrChoiceOutOfRange):
		writeError(w, http.StatusBadRequest, "choice_out_of_range")
	case errors.Is(err, game.ErrAlreadyAnswered):
		writeError(w, http.StatusConflict, "already_answered")
	case errors.Is(err, errWrongMode):
		writeError(w, http.StatusConflict, "wrong_mode")
	default:
		log.Error().Err(err).Msg("game update")
		writeError(w, http.StatusInternalServerError, "save_failed")
	}
}
