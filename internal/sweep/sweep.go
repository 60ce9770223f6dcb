// Package sweep closes expired challenges, hands out their badges and
// recomputes user levels. It knows nothing about how it is scheduled.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zealAPI/internal/apperr"
	"zealAPI/internal/award"
	"zealAPI/internal/clock"
	"zealAPI/internal/points"
	"zealAPI/internal/ranking"
	"zealAPI/internal/types/badge"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/notification"
	"zealAPI/internal/types/progress"
	"zealAPI/internal/types/user"
)

type Repository interface {
	DueChallenges(ctx context.Context, now time.Time) ([]*challenge.Challenge, error)
	CompleteChallenge(ctx context.Context, challengeID uuid.UUID, now time.Time) error
	ProgressForChallenge(ctx context.Context, challengeID uuid.UUID) ([]*progress.Record, error)
	GetBadge(ctx context.Context, badgeID uuid.UUID) (*badge.Badge, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*user.User, error)
	SaveUserBadges(ctx context.Context, u *user.User) error
	AllUsers(ctx context.Context) ([]*user.User, error)
	SaveUserLevel(ctx context.Context, userID uuid.UUID, level user.Level) error
}

// Notifier is fire-and-forget; delivery failures are its own business.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind notification.NotificationType, title, body string, data map[string]any)
}

type ItemKind string

const (
	ItemChallenge ItemKind = "challenge"
	ItemBadge     ItemKind = "badge"
	ItemUser      ItemKind = "user"
)

// ItemFailure names one skipped item. Badge failures also carry the
// challenge and badge, which is what a manual re-grant needs.
type ItemFailure struct {
	Kind        ItemKind  `json:"kind"`
	ID          uuid.UUID `json:"id"`
	ChallengeID uuid.UUID `json:"challenge_id"`
	BadgeID     uuid.UUID `json:"badge_id"`
	Err         error     `json:"-"`
}

func (f ItemFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Kind, f.ID, f.Err)
}

func (f ItemFailure) Unwrap() []error {
	return []error{apperr.ErrBestEffortItem, f.Err}
}

type Report struct {
	StartedAt        time.Time     `json:"started_at"`
	FinishedAt       time.Time     `json:"finished_at"`
	ChallengesClosed []uuid.UUID   `json:"challenges_closed"`
	BadgesAwarded    int           `json:"badges_awarded"`
	LevelChanges     int           `json:"level_changes"`
	Failures         []ItemFailure `json:"failures"`
}

func (r *Report) fail(kind ItemKind, id uuid.UUID, err error) {
	r.Failures = append(r.Failures, ItemFailure{Kind: kind, ID: id, Err: err})
}

type Sweeper struct {
	repo     Repository
	notifier Notifier
	clock    clock.Clock
	log      *zap.Logger
}

func New(repo Repository, notifier Notifier, c clock.Clock, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{repo: repo, notifier: notifier, clock: c, log: log}
}

// Run performs both passes. Only a failure to list the work for a pass is
// returned; per-item failures land in the report.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: s.clock.Now()}

	errA := s.closeChallenges(ctx, report)
	errB := s.recomputeLevels(ctx, report)

	report.FinishedAt = s.clock.Now()
	s.log.Info("sweep finished",
		zap.Int("challenges_closed", len(report.ChallengesClosed)),
		zap.Int("badges_awarded", report.BadgesAwarded),
		zap.Int("level_changes", report.LevelChanges),
		zap.Int("failures", len(report.Failures)),
	)

	if errA != nil {
		return report, errA
	}
	return report, errB
}

func (s *Sweeper) closeChallenges(ctx context.Context, report *Report) error {
	now := s.clock.Now()
	due, err := s.repo.DueChallenges(ctx, now)
	if err != nil {
		s.log.Error("failed to list due challenges", zap.Error(err))
		return fmt.Errorf("failed to list due challenges: %w", err)
	}

	for _, c := range due {
		if !c.IsDue(now) {
			continue
		}
		if err := s.closeChallenge(ctx, c, now, report); err != nil {
			s.log.Error("failed to close challenge", zap.String("challenge_id", c.ID.String()), zap.Error(err))
			report.fail(ItemChallenge, c.ID, err)
			continue
		}
		report.ChallengesClosed = append(report.ChallengesClosed, c.ID)
	}
	return nil
}

// closeChallenge gathers everything the badge step needs before flipping the
// status, so a failed load leaves the challenge Live for the next run.
func (s *Sweeper) closeChallenge(ctx context.Context, c *challenge.Challenge, now time.Time, report *Report) error {
	var (
		b      *badge.Badge
		ranked []*progress.Record
	)
	if c.BadgeCriteria != nil {
		if c.BadgeID == nil {
			return fmt.Errorf("badge criteria %s without badge: %w", *c.BadgeCriteria, apperr.ErrInvariantViolation)
		}

		records, err := s.repo.ProgressForChallenge(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}
		ranked = ranking.Rank(records)

		b, err = s.repo.GetBadge(ctx, *c.BadgeID)
		if err != nil {
			return fmt.Errorf("failed to load badge %s: %w", *c.BadgeID, err)
		}
	}

	if err := s.repo.CompleteChallenge(ctx, c.ID, now); err != nil {
		return fmt.Errorf("failed to complete challenge: %w", err)
	}
	c.Status = challenge.StatusCompleted

	for _, rec := range award.Recipients(c.BadgeCriteria, ranked) {
		if err := s.grant(ctx, rec.UserID, b, c); err != nil {
			s.log.Error("failed to award badge",
				zap.String("challenge_id", c.ID.String()),
				zap.String("user_id", rec.UserID.String()),
				zap.String("badge_id", b.ID.String()),
				zap.Error(err),
			)
			report.Failures = append(report.Failures, ItemFailure{
				Kind:        ItemBadge,
				ID:          rec.UserID,
				ChallengeID: c.ID,
				BadgeID:     b.ID,
				Err:         err,
			})
			continue
		}
		report.BadgesAwarded++
	}
	return nil
}

func (s *Sweeper) grant(ctx context.Context, userID uuid.UUID, b *badge.Badge, c *challenge.Challenge) error {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	award.Grant(u, b)
	if err := s.repo.SaveUserBadges(ctx, u); err != nil {
		return err
	}

	s.notifier.Notify(ctx, u.ID, notification.TypeBadgeAwarded,
		"You earned a badge!",
		fmt.Sprintf("You received the %s badge for %s.", b.Name, c.Name),
		map[string]any{"challenge_id": c.ID.String(), "badge_id": b.ID.String()},
	)
	return nil
}

func (s *Sweeper) recomputeLevels(ctx context.Context, report *Report) error {
	users, err := s.repo.AllUsers(ctx)
	if err != nil {
		s.log.Error("failed to list users", zap.Error(err))
		return fmt.Errorf("failed to list users: %w", err)
	}

	for _, u := range users {
		level := points.LevelFor(u.Points)
		if level == u.Level {
			continue
		}
		if err := s.repo.SaveUserLevel(ctx, u.ID, level); err != nil {
			s.log.Error("failed to save level", zap.String("user_id", u.ID.String()), zap.Error(err))
			report.fail(ItemUser, u.ID, err)
			continue
		}
		u.Level = level
		report.LevelChanges++

		s.notifier.Notify(ctx, u.ID, notification.TypeLevelUp,
			"Level up!",
			fmt.Sprintf("You reached the %s level.", level),
			map[string]any{"level": string(level)},
		)
	}
	return nil
}
