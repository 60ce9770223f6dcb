package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"zealAPI/internal/apperr"
	"zealAPI/internal/types/badge"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/progress"
	"zealAPI/internal/types/user"
)

type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const challengeColumns = `
	id, creator_id, name, image, badge_criteria, badge_id, challenge_start, challenge_end,
	type, exercise_type, status, exercises, active_days, users, created_at, updated_at`

func scanChallenge(row scanner) (*challenge.Challenge, error) {
	c := &challenge.Challenge{}
	var creatorID *uuid.UUID
	err := row.Scan(
		&c.ID,
		&creatorID,
		&c.Name,
		&c.Image,
		&c.BadgeCriteria,
		&c.BadgeID,
		&c.ChallengeStart,
		&c.ChallengeEnd,
		&c.Type,
		&c.ExerciseType,
		&c.Status,
		&c.Exercises,
		&c.ActiveDays,
		&c.Users,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if creatorID != nil {
		c.CreatorID = *creatorID
	}
	if c.Users == nil {
		c.Users = []uuid.UUID{}
	}
	return c, nil
}

func getChallenge(ctx context.Context, q querier, challengeID uuid.UUID, lock string) (*challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1 ` + lock

	c, err := scanChallenge(q.QueryRow(ctx, query, challengeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("challenge %s: %w", challengeID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return c, nil
}

const recordColumns = `
	p.id, p.challenge_id, p.user_id, u.username, u.image_url, p.finished_at, p.daily_progress,
	p.total_progress, p.points, p.total_time, p.challenge_type, p.created_at, p.updated_at`

const recordFrom = ` FROM progress_records p JOIN users u ON u.id = p.user_id `

func scanRecord(row scanner) (*progress.Record, error) {
	r := &progress.Record{}
	err := row.Scan(
		&r.ID,
		&r.ChallengeID,
		&r.UserID,
		&r.Username,
		&r.ImageURL,
		&r.FinishedAt,
		&r.DailyProgress,
		&r.TotalProgress,
		&r.Points,
		&r.TotalTime,
		&r.ChallengeType,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func recordsForChallenge(ctx context.Context, q querier, challengeID uuid.UUID) ([]*progress.Record, error) {
	query := `SELECT ` + recordColumns + recordFrom + `WHERE p.challenge_id = $1 ORDER BY p.created_at`

	rows, err := q.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var records []*progress.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

const userColumns = `
	id, clerk_id, email, username, image_url, points, level,
	total_time_in_seconds, total_calories_burnt, badges, created_at, updated_at`

func scanUser(row scanner) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.ImageURL,
		&u.Points,
		&u.Level,
		&u.TotalTimeInSeconds,
		&u.TotalCaloriesBurnt,
		&u.Badges,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func userIDByClerkID(ctx context.Context, q querier, clerkID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user %s: %w", clerkID, apperr.ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return id, nil
}

const badgeColumns = `id, name, image, category, description, type, created_at`

func scanBadge(row scanner) (*badge.Badge, error) {
	b := &badge.Badge{}
	if err := row.Scan(&b.ID, &b.Name, &b.Image, &b.Category, &b.Description, &b.Type, &b.CreatedAt); err != nil {
		return nil, err
	}
	return b, nil
}
