package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"zealAPI/internal/apperr"
	"zealAPI/internal/clock"
	"zealAPI/internal/points"
	"zealAPI/internal/tracker"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/progress"
)

type ProgressService struct {
	db      *pgxpool.Pool
	tracker *tracker.Tracker
	log     *zap.Logger
}

func NewProgressService(db *pgxpool.Pool, c clock.Clock, log *zap.Logger) *ProgressService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressService{db: db, tracker: tracker.NewTracker(c), log: log}
}

func (s *ProgressService) GetProgress(ctx context.Context, clerkID string, challengeID uuid.UUID) (*progress.Record, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	return getRecord(ctx, s.db, challengeID, userID, "")
}

// RecordExerciseCompletion applies one completion event and credits the
// user in the same transaction. Nothing is written when the tracker refuses.
func (s *ProgressService) RecordExerciseCompletion(ctx context.Context, clerkID string, challengeID, exerciseID uuid.UUID, req *progress.CompleteExerciseRequest) (*progress.CompletionResult, error) {
	var result *progress.CompletionResult

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		userID, err := userIDByClerkID(ctx, tx, clerkID)
		if err != nil {
			return err
		}

		var status challenge.Status
		err = tx.QueryRow(ctx, `SELECT status FROM challenges WHERE id = $1 FOR SHARE`, challengeID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("challenge %s: %w", challengeID, apperr.ErrNotFound)
			}
			return fmt.Errorf("failed to get challenge status: %w", err)
		}
		if status == challenge.StatusCompleted {
			return fmt.Errorf("challenge %s is completed: %w", challengeID, apperr.ErrInvariantViolation)
		}

		rec, err := getRecord(ctx, tx, challengeID, userID, "FOR UPDATE OF p")
		if err != nil {
			return err
		}

		done, err := s.tracker.RecordExerciseCompletion(rec, challengeID, exerciseID, req.TimeTaken, req.FinishedAt)
		if err != nil {
			return err
		}

		awarded, err := points.Award(rec)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE progress_records
			SET daily_progress = $2, total_progress = $3, points = $4, total_time = $5, finished_at = $6, updated_at = $7
			WHERE id = $1`,
			rec.ID, rec.DailyProgress, rec.TotalProgress, rec.Points, rec.TotalTime, rec.FinishedAt, rec.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE users
			SET points = points + $2,
				total_time_in_seconds = total_time_in_seconds + $3,
				total_calories_burnt = total_calories_burnt + $4,
				updated_at = NOW()
			WHERE id = $1`,
			userID, awarded, done.TimeTaken, done.CaloriesBurnt,
		)
		if err != nil {
			return fmt.Errorf("failed to credit user: %w", err)
		}

		result = &progress.CompletionResult{Record: rec, PointsAwarded: awarded}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.PointsAwarded > 0 {
		pointsAwarded.WithLabelValues(string(result.Record.ChallengeType)).Add(result.PointsAwarded)
	}
	s.log.Info("exercise completed",
		zap.String("challenge_id", challengeID.String()),
		zap.String("exercise_id", exerciseID.String()),
		zap.Float64("total_progress", result.Record.TotalProgress),
		zap.Float64("points_awarded", result.PointsAwarded),
	)
	return result, nil
}

func getRecord(ctx context.Context, q querier, challengeID, userID uuid.UUID, lock string) (*progress.Record, error) {
	query := `SELECT ` + recordColumns + recordFrom + `WHERE p.challenge_id = $1 AND p.user_id = $2 ` + lock

	rec, err := scanRecord(q.QueryRow(ctx, query, challengeID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("progress for challenge %s: %w", challengeID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return rec, nil
}
