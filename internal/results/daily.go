package results

import "context"

// DailyResult is a player's scored attempt at one day's challenge.
type DailyResult struct {
	PlayerID  string `json:"-"` // user id or anonymous id
	Date      string `json:"date"`
	Score     int    `json:"score"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// DailyLBRow is one entry of a daily leaderboard. Name is the username, or
// "guest" for anonymous players.
type DailyLBRow struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// AlreadyPlayedDaily reports whether the player has a recorded attempt for date.
func (s *Store) AlreadyPlayedDaily(ctx context.Context, playerID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE player_id=? AND date=?`,
		playerID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertDailyResult records an attempt. A second attempt for the same
// player and date is ignored; inserted reports whether this one counted.
func (s *Store) InsertDailyResult(ctx context.Context, r DailyResult) (inserted bool, err error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player_id, date, score, elapsed_ms) VALUES(?,?,?,?)`,
		r.PlayerID, r.Date, r.Score, r.ElapsedMs,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DailyLeaderboard orders by score (high first), then time (fast first).
func (s *Store) DailyLeaderboard(ctx context.Context, date string, limit int) ([]DailyLBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT COALESCE(u.username, 'guest'), d.score, d.elapsed_ms
        FROM daily_results d
        LEFT JOIN users u ON u.id = d.player_id
        WHERE d.date=?
        ORDER BY d.score DESC, d.elapsed_ms ASC, d.created_at ASC
        LIMIT ?`, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DailyLBRow{}
	for rows.Next() {
		var r DailyLBRow
		if err := rows.Scan(&r.Name, &r.Score, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
