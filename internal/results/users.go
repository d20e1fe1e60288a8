package results

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUsernameTaken = errors.New("username taken")
	ErrUserNotFound  = errors.New("user not found")
)

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	TotalScore   int       `json:"totalScore"`
	BestScore    int       `json:"bestScore"`
	PerfectGames int       `json:"perfectGames"`
}

// CreateUser inserts a user with an already hashed password.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=?`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339)); err != nil {
		// lost a race with a concurrent signup
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// FindUserByUsername matches case-insensitively (the column is NOCASE).
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, created_at, games_played, total_score, best_score, perfect_games
        FROM users WHERE username=?`, username))
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, created_at, games_played, total_score, best_score, perfect_games
        FROM users WHERE id=?`, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created,
		&u.GamesPlayed, &u.TotalScore, &u.BestScore, &u.PerfectGames); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// Stats is a player's aggregate record.
type Stats struct {
	GamesPlayed  int     `json:"gamesPlayed"`
	TotalScore   int     `json:"totalScore"`
	BestScore    int     `json:"bestScore"`
	PerfectGames int     `json:"perfectGames"`
	AverageScore float64 `json:"averageScore"`
}

// UserStats reads the aggregates kept by RecordGame and ClaimAnonGames.
func (s *Store) UserStats(ctx context.Context, userID string) (Stats, error) {
	u, err := s.FindUserByID(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		GamesPlayed:  u.GamesPlayed,
		TotalScore:   u.TotalScore,
		BestScore:    u.BestScore,
		PerfectGames: u.PerfectGames,
	}
	if u.GamesPlayed > 0 {
		st.AverageScore = float64(u.TotalScore) / float64(u.GamesPlayed)
	}
	return st, nil
}
