package tracker

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"zealAPI/internal/apperr"
	"zealAPI/internal/clock"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/progress"
)

// CaloriesPerSecond converts exercise seconds into calories burnt.
const CaloriesPerSecond = 0.08

// NewRecord seeds a progress record from the active days a user joined with.
func NewRecord(c *challenge.Challenge, userID uuid.UUID, days []challenge.ActiveDay, now time.Time) *progress.Record {
	daily := make([]progress.DailyProgress, 0, len(days))
	for _, d := range days {
		exercises := make([]progress.ExerciseStatus, 0, len(c.Exercises))
		for _, e := range c.Exercises {
			exercises = append(exercises, progress.ExerciseStatus{ExerciseID: e.ID})
		}
		daily = append(daily, progress.DailyProgress{
			Day:       d.Day,
			Date:      d.Date,
			Exercises: exercises,
		})
	}

	return &progress.Record{
		ID:            uuid.New(),
		ChallengeID:   c.ID,
		UserID:        userID,
		DailyProgress: daily,
		TotalProgress: 0,
		Points:        0,
		TotalTime:     FormatDuration(0),
		ChallengeType: c.Type,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Completion describes what a single completion event changed.
type Completion struct {
	DayIndex      int
	TimeTaken     int
	CaloriesBurnt float64
}

type Tracker struct {
	clock clock.Clock
}

func NewTracker(c clock.Clock) *Tracker {
	return &Tracker{clock: c}
}

// RecordExerciseCompletion marks one exercise of today's entry finished and
// recomputes the day, overall percentage and total time. The record is left
// for the caller to persist.
func (t *Tracker) RecordExerciseCompletion(rec *progress.Record, challengeID, exerciseID uuid.UUID, timeTaken int, finishedAt time.Time) (*Completion, error) {
	if rec == nil || rec.ChallengeID != challengeID {
		return nil, fmt.Errorf("progress for challenge %s: %w", challengeID, apperr.ErrNotFound)
	}

	now := t.clock.Now()
	loc := now.Location()
	today := clock.DateKey(now, loc)
	todayName := now.Weekday().String()

	dayIdx := -1
	for i := range rec.DailyProgress {
		d := &rec.DailyProgress[i]
		if clock.DateKey(d.Date, loc) == today && strings.EqualFold(d.Day, todayName) {
			dayIdx = i
			break
		}
	}
	if dayIdx < 0 {
		return nil, fmt.Errorf("%s %s: %w", todayName, today, apperr.ErrExerciseMismatch)
	}
	day := &rec.DailyProgress[dayIdx]

	exIdx := -1
	var wasFinished bool
	for i := range day.Exercises {
		ex := &day.Exercises[i]
		if ex.ExerciseID == exerciseID {
			exIdx = i
			wasFinished = ex.IsFinished
			ex.IsFinished = true
			ex.TimeTaken = timeTaken
			ex.CaloriesBurnt = float64(timeTaken) * CaloriesPerSecond
			break
		}
	}

	// Only the finished flag is put back; time and calories stay as written.
	after := t.clock.Now()
	if clock.DateKey(after, loc) != today {
		if exIdx >= 0 {
			day.Exercises[exIdx].IsFinished = wasFinished
		}
		return nil, fmt.Errorf("started on %s, now %s: %w", today, clock.DateKey(after, loc), apperr.ErrDayRolledOver)
	}

	if exIdx < 0 {
		return nil, fmt.Errorf("exercise %s on %s: %w", exerciseID, today, apperr.ErrNotFound)
	}

	day.CompletionInPercent = DayCompletion(day)
	day.IsAttempted = true
	attemptedAt := after
	day.AttemptedAt = &attemptedAt

	rec.TotalProgress = TotalProgress(rec.DailyProgress)
	rec.TotalTime = FormatDuration(TotalSeconds(rec.DailyProgress))
	fin := finishedAt
	rec.FinishedAt = &fin
	rec.UpdatedAt = after

	return &Completion{
		DayIndex:      dayIdx,
		TimeTaken:     timeTaken,
		CaloriesBurnt: day.Exercises[exIdx].CaloriesBurnt,
	}, nil
}

func DayCompletion(day *progress.DailyProgress) float64 {
	if len(day.Exercises) == 0 {
		return 0
	}
	finished := 0
	for _, e := range day.Exercises {
		if e.IsFinished {
			finished++
		}
	}
	return float64(finished) / float64(len(day.Exercises)) * 100
}

// TotalProgress averages the day percentages, rounded to two decimals.
func TotalProgress(days []progress.DailyProgress) float64 {
	if len(days) == 0 {
		return 0
	}
	var sum float64
	for _, d := range days {
		sum += d.CompletionInPercent
	}
	return Round2(sum / float64(len(days)))
}

func TotalSeconds(days []progress.DailyProgress) int {
	total := 0
	for _, d := range days {
		for _, e := range d.Exercises {
			total += e.TimeTaken
		}
	}
	return total
}

// FormatDuration renders seconds as H:MM:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
