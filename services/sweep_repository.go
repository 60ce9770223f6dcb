package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zealAPI/internal/apperr"
	"zealAPI/internal/types/badge"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/progress"
	"zealAPI/internal/types/user"
)

// SweepRepository is the Postgres side of the lifecycle sweep.
type SweepRepository struct {
	db *pgxpool.Pool
}

func NewSweepRepository(db *pgxpool.Pool) *SweepRepository {
	return &SweepRepository{db: db}
}

func (r *SweepRepository) DueChallenges(ctx context.Context, now time.Time) ([]*challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE status = $1 AND challenge_end < $2 ORDER BY challenge_end`

	rows, err := r.db.Query(ctx, query, challenge.StatusLive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []*challenge.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, c)
	}
	return due, rows.Err()
}

// CompleteChallenge only moves a Live challenge. Losing the race to another
// sweeper is reported so that badges are not granted twice.
func (r *SweepRepository) CompleteChallenge(ctx context.Context, challengeID uuid.UUID, now time.Time) error {
	result, err := r.db.Exec(ctx,
		`UPDATE challenges SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		challengeID, challenge.StatusCompleted, now, challenge.StatusLive,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("challenge %s is no longer live: %w", challengeID, apperr.ErrInvariantViolation)
	}
	return nil
}

func (r *SweepRepository) ProgressForChallenge(ctx context.Context, challengeID uuid.UUID) ([]*progress.Record, error) {
	return recordsForChallenge(ctx, r.db, challengeID)
}

func (r *SweepRepository) GetBadge(ctx context.Context, badgeID uuid.UUID) (*badge.Badge, error) {
	b, err := scanBadge(r.db.QueryRow(ctx, `SELECT `+badgeColumns+` FROM badges WHERE id = $1`, badgeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("badge %s: %w", badgeID, apperr.ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (r *SweepRepository) GetUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (r *SweepRepository) SaveUserBadges(ctx context.Context, u *user.User) error {
	badges := u.Badges
	if badges == nil {
		badges = []user.UserBadge{}
	}
	_, err := r.db.Exec(ctx, `UPDATE users SET badges = $2, updated_at = NOW() WHERE id = $1`, u.ID, badges)
	return err
}

func (r *SweepRepository) AllUsers(ctx context.Context) ([]*user.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SweepRepository) SaveUserLevel(ctx context.Context, userID uuid.UUID, level user.Level) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET level = $2, updated_at = NOW() WHERE id = $1`, userID, level)
	return err
}
