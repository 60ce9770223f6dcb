package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"zealAPI/internal/apperr"
	"zealAPI/internal/clock"
	"zealAPI/internal/schedule"
	"zealAPI/internal/tracker"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/notification"
	"zealAPI/internal/types/progress"
)

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind notification.NotificationType, title, body string, data map[string]any)
	Broadcast(ctx context.Context, except uuid.UUID, kind notification.NotificationType, title, body string, data map[string]any)
}

type ChallengeService struct {
	db       *pgxpool.Pool
	notifier Notifier
	clock    clock.Clock
	log      *zap.Logger
}

func NewChallengeService(db *pgxpool.Pool, notifier Notifier, c clock.Clock, log *zap.Logger) *ChallengeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChallengeService{db: db, notifier: notifier, clock: c, log: log}
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, clerkID string, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	if req.ChallengeEnd.Before(req.ChallengeStart) {
		return nil, fmt.Errorf("challenge ends before it starts: %w", apperr.ErrInvariantViolation)
	}

	creatorID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	days := schedule.Build(req.ChallengeStart, req.ChallengeEnd, req.Days, now.Location())
	c, err := challenge.New(challenge.NewParams{
		CreatorID:      creatorID,
		Name:           req.Name,
		Image:          req.Image,
		BadgeCriteria:  req.BadgeCriteria,
		BadgeID:        req.BadgeID,
		ChallengeStart: req.ChallengeStart,
		ChallengeEnd:   req.ChallengeEnd,
		Type:           req.Type,
		Exercises:      req.Exercises,
	}, days, now)
	if err != nil {
		return nil, err
	}

	query := `
	INSERT INTO challenges (id, creator_id, name, image, badge_criteria, badge_id, challenge_start, challenge_end,
		type, exercise_type, status, exercises, active_days, users, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, '{}', $14, $14)
	`
	_, err = s.db.Exec(ctx, query,
		c.ID, c.CreatorID, c.Name, c.Image, c.BadgeCriteria, c.BadgeID, c.ChallengeStart, c.ChallengeEnd,
		c.Type, c.ExerciseType, c.Status, c.Exercises, c.ActiveDays, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	s.log.Info("challenge created",
		zap.String("challenge_id", c.ID.String()),
		zap.String("type", string(c.Type)),
		zap.Int("active_days", len(c.ActiveDays)),
	)

	go s.notifier.Broadcast(context.Background(), creatorID, notification.TypeNewChallenge,
		"New challenge!",
		fmt.Sprintf("%s is live. Join now.", c.Name),
		map[string]any{"challenge_id": c.ID.String()},
	)

	return c, nil
}

func (s *ChallengeService) GetChallenge(ctx context.Context, challengeID uuid.UUID) (*challenge.Challenge, error) {
	return getChallenge(ctx, s.db, challengeID, "")
}

func (s *ChallengeService) ListLiveChallenges(ctx context.Context) ([]*challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE status = $1 ORDER BY challenge_start`

	rows, err := s.db.Query(ctx, query, challenge.StatusLive)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	challenges := []*challenge.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

func (s *ChallengeService) UpdateSchedule(ctx context.Context, challengeID uuid.UUID, req *challenge.UpdateScheduleRequest) (*challenge.Challenge, error) {
	if req.ChallengeEnd.Before(req.ChallengeStart) {
		return nil, fmt.Errorf("challenge ends before it starts: %w", apperr.ErrInvariantViolation)
	}

	var updated *challenge.Challenge
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		c, err := getChallenge(ctx, tx, challengeID, "FOR UPDATE")
		if err != nil {
			return err
		}

		now := s.clock.Now()
		days := schedule.Build(req.ChallengeStart, req.ChallengeEnd, req.Days, now.Location())
		if err := c.Reschedule(req.ChallengeStart, req.ChallengeEnd, days, now); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE challenges
			SET challenge_start = $2, challenge_end = $3, active_days = $4, updated_at = $5
			WHERE id = $1`,
			c.ID, c.ChallengeStart, c.ChallengeEnd, c.ActiveDays, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update schedule: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ChallengeService) DeleteChallenge(ctx context.Context, challengeID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		c, err := getChallenge(ctx, tx, challengeID, "FOR UPDATE")
		if err != nil {
			return err
		}
		if err := c.EnsureMutable(); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, c.ID); err != nil {
			return fmt.Errorf("failed to delete challenge: %w", err)
		}
		return nil
	})
}

// JoinChallenge adds the user to the challenge and seeds their progress
// record from the active days as they stand right now.
func (s *ChallengeService) JoinChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID) (*progress.Record, error) {
	var (
		rec *progress.Record
		c   *challenge.Challenge
	)
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		userID, err := userIDByClerkID(ctx, tx, clerkID)
		if err != nil {
			return err
		}

		c, err = getChallenge(ctx, tx, challengeID, "FOR UPDATE")
		if err != nil {
			return err
		}

		now := s.clock.Now()
		days, err := c.Join(userID, now)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE challenges SET users = array_append(users, $2), updated_at = $3 WHERE id = $1`,
			c.ID, userID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}

		rec = tracker.NewRecord(c, userID, days, now)
		return insertRecord(ctx, tx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user joined challenge",
		zap.String("challenge_id", c.ID.String()),
		zap.String("user_id", rec.UserID.String()),
		zap.Int("days", len(rec.DailyProgress)),
	)

	s.notifier.Notify(ctx, rec.UserID, notification.TypeChallengeJoined,
		"Challenge joined",
		fmt.Sprintf("You joined %s. Good luck!", c.Name),
		map[string]any{"challenge_id": c.ID.String()},
	)
	return rec, nil
}

func insertRecord(ctx context.Context, tx pgx.Tx, rec *progress.Record) error {
	query := `
	INSERT INTO progress_records (id, challenge_id, user_id, finished_at, daily_progress, total_progress,
		points, total_time, challenge_type, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := tx.Exec(ctx, query,
		rec.ID, rec.ChallengeID, rec.UserID, rec.FinishedAt, rec.DailyProgress, rec.TotalProgress,
		rec.Points, rec.TotalTime, rec.ChallengeType, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create progress record: %w", err)
	}
	return nil
}
