// internal/results/store.go
//
// Durable record of finished games.
// Responsibilities:
//   - Insert one row per completed 8-round game (owned by a user or an anonymous id).
//   - Maintain per-user aggregate stats in the same transaction.
//   - Serve the all-time leaderboard and a user's recent games.

package results

import (
	"context"
	"database/sql"
	"time"
)

// Store wraps the results database.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Result is a finished game.
type Result struct {
	SessionID   string
	UserID      string // empty for guests
	AnonymousID string // set when UserID is empty
	Mode        string
	Score       int
	Rounds      int
	ElapsedMs   int64
	FinishedAt  time.Time
}

// GameRow is a finished game as listed for its owner.
type GameRow struct {
	SessionID  string `json:"sessionId"`
	Mode       string `json:"mode"`
	Score      int    `json:"score"`
	Rounds     int    `json:"rounds"`
	ElapsedMs  int64  `json:"elapsedMs"`
	FinishedAt string `json:"finishedAt"`
}

// LBRow is one leaderboard entry.
type LBRow struct {
	Username     string `json:"username"`
	BestScore    int    `json:"bestScore"`
	PerfectGames int    `json:"perfectGames"`
	GamesPlayed  int    `json:"gamesPlayed"`
}

// RecordGame stores a finished game and, for signed-in players, bumps their stats.
func (s *Store) RecordGame(ctx context.Context, r Result) error {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO games (session_id, user_id, anonymous_id, mode, score, rounds, elapsed_ms, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, nullable(r.UserID), nullable(r.AnonymousID), r.Mode, r.Score, r.Rounds, r.ElapsedMs,
		r.FinishedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	if r.UserID != "" {
		perfect := 0
		if r.Score == r.Rounds {
			perfect = 1
		}
		if _, err := tx.ExecContext(ctx, `
            UPDATE users SET
                games_played  = games_played + 1,
                total_score   = total_score + ?,
                best_score    = MAX(best_score, ?),
                perfect_games = perfect_games + ?
            WHERE id = ?`,
			r.Score, r.Score, perfect, r.UserID,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Leaderboard returns players ordered by best score, then perfect games,
// then fewer games played. Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT username, best_score, perfect_games, games_played
        FROM users
        WHERE games_played > 0
        ORDER BY best_score DESC, perfect_games DESC, games_played ASC, created_at ASC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Username, &r.BestScore, &r.PerfectGames, &r.GamesPlayed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentGames lists a user's latest finished games, newest first.
func (s *Store) RecentGames(ctx context.Context, userID string, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT session_id, mode, score, rounds, elapsed_ms, finished_at
        FROM games WHERE user_id=? ORDER BY finished_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.SessionID, &g.Mode, &g.Score, &g.Rounds, &g.ElapsedMs, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ClaimAnonGames moves a guest's history onto an account and folds it into the stats.
// Daily attempts move too; for a date the account already played, the
// account's attempt is kept and the guest's is dropped.
func (s *Store) ClaimAnonGames(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET player_id=? WHERE player_id=?`, userID, anonID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM daily_results WHERE player_id=?`, anonID); err != nil {
		return err
	}

	var n, total, best, perfect int
	if err := tx.QueryRowContext(ctx, `
        SELECT COUNT(1), COALESCE(SUM(score),0), COALESCE(MAX(score),0),
               COALESCE(SUM(CASE WHEN score = rounds THEN 1 ELSE 0 END),0)
        FROM games WHERE anonymous_id=?`, anonID,
	).Scan(&n, &total, &best, &perfect); err != nil {
		return err
	}
	if n > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
            UPDATE users SET
                games_played  = games_played + ?,
                total_score   = total_score + ?,
                best_score    = MAX(best_score, ?),
                perfect_games = perfect_games + ?
            WHERE id = ?`, n, total, best, perfect, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
