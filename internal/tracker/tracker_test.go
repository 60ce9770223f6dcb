package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zealAPI/internal/apperr"
	"zealAPI/internal/clock"
	"zealAPI/internal/schedule"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/progress"
)

var monWedFri = []challenge.WeekdayPattern{
	{Day: "Monday", IsActive: true},
	{Day: "Tuesday", IsActive: false},
	{Day: "Wednesday", IsActive: true},
	{Day: "Thursday", IsActive: false},
	{Day: "Friday", IsActive: true},
	{Day: "Saturday", IsActive: false},
	{Day: "Sunday", IsActive: false},
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.January, day, hour, 0, 0, 0, time.UTC)
}

func newChallenge(t *testing.T) *challenge.Challenge {
	t.Helper()
	days := schedule.Build(at(1, 0), at(7, 0), monWedFri, time.UTC)
	c, err := challenge.New(challenge.NewParams{
		Name:           "Core week",
		ChallengeStart: at(1, 0),
		ChallengeEnd:   at(7, 0),
		Type:           challenge.TypeCommunity,
		Exercises: []challenge.Exercise{
			{Name: "Plank", Duration: 60, Kind: challenge.ExerciseTypeTime},
			{Name: "Squats", Reps: 20, Sets: 3, Kind: challenge.ExerciseTypeReps},
		},
	}, days, at(1, 0))
	require.NoError(t, err)
	return c
}

func joined(t *testing.T) (*challenge.Challenge, *progress.Record) {
	t.Helper()
	c := newChallenge(t)
	userID := uuid.New()
	days, err := c.Join(userID, at(1, 0))
	require.NoError(t, err)
	return c, NewRecord(c, userID, days, at(1, 0))
}

func TestNewRecordSeedsOnlyActiveDays(t *testing.T) {
	c, rec := joined(t)

	require.Len(t, rec.DailyProgress, 3)
	assert.Equal(t, []string{"Monday", "Wednesday", "Friday"},
		[]string{rec.DailyProgress[0].Day, rec.DailyProgress[1].Day, rec.DailyProgress[2].Day})
	for _, d := range rec.DailyProgress {
		assert.Zero(t, d.CompletionInPercent)
		assert.False(t, d.IsAttempted)
		require.Len(t, d.Exercises, len(c.Exercises))
		for _, e := range d.Exercises {
			assert.False(t, e.IsFinished)
		}
	}
	assert.Equal(t, challenge.TypeCommunity, rec.ChallengeType)
	assert.Equal(t, "0:00:00", rec.TotalTime)
}

func TestRecordExerciseCompletionUpdatesDayAndTotals(t *testing.T) {
	c, rec := joined(t)
	tr := NewTracker(clock.NewFixed(at(3, 10)))
	finished := at(3, 10)

	res, err := tr.RecordExerciseCompletion(rec, c.ID, c.Exercises[0].ID, 90, finished)
	require.NoError(t, err)

	assert.Equal(t, 1, res.DayIndex)
	day := rec.DailyProgress[1]
	assert.True(t, day.Exercises[0].IsFinished)
	assert.Equal(t, 90, day.Exercises[0].TimeTaken)
	assert.InDelta(t, 7.2, day.Exercises[0].CaloriesBurnt, 1e-9)
	assert.InDelta(t, 50, day.CompletionInPercent, 1e-9)
	assert.True(t, day.IsAttempted)
	require.NotNil(t, day.AttemptedAt)
	assert.InDelta(t, 16.67, rec.TotalProgress, 1e-9)
	assert.Equal(t, "0:01:30", rec.TotalTime)
	require.NotNil(t, rec.FinishedAt)
	assert.True(t, rec.FinishedAt.Equal(finished))
}

func TestAllExercisesFinishedReachesHundred(t *testing.T) {
	c, rec := joined(t)

	for _, day := range []int{1, 3, 5} {
		tr := NewTracker(clock.NewFixed(at(day, 12)))
		for _, e := range c.Exercises {
			_, err := tr.RecordExerciseCompletion(rec, c.ID, e.ID, 30, at(day, 12))
			require.NoError(t, err)
		}
	}

	assert.Equal(t, 100.00, rec.TotalProgress)
	assert.Len(t, rec.DailyProgress, 3)
	assert.Equal(t, "0:03:00", rec.TotalTime)
}

func TestUnknownExerciseIsNotFoundAndLeavesProgress(t *testing.T) {
	c, rec := joined(t)
	tr := NewTracker(clock.NewFixed(at(3, 10)))

	_, err := tr.RecordExerciseCompletion(rec, c.ID, uuid.New(), 30, at(3, 10))

	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Zero(t, rec.TotalProgress)
	assert.False(t, rec.DailyProgress[1].IsAttempted)
}

func TestInactiveDayIsExerciseMismatch(t *testing.T) {
	c, rec := joined(t)
	tr := NewTracker(clock.NewFixed(at(2, 10))) // Tuesday, not scheduled

	_, err := tr.RecordExerciseCompletion(rec, c.ID, c.Exercises[0].ID, 30, at(2, 10))

	assert.ErrorIs(t, err, apperr.ErrExerciseMismatch)
}

func TestWrongChallengeIsNotFound(t *testing.T) {
	c, rec := joined(t)
	tr := NewTracker(clock.NewFixed(at(3, 10)))

	_, err := tr.RecordExerciseCompletion(rec, uuid.New(), c.Exercises[0].ID, 30, at(3, 10))

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDayRolloverRevertsFinishedFlagOnly(t *testing.T) {
	c, rec := joined(t)
	before := time.Date(2024, time.January, 3, 23, 59, 59, 0, time.UTC)
	after := before.Add(2 * time.Second)
	tr := NewTracker(clock.NewFixed(before, after))

	_, err := tr.RecordExerciseCompletion(rec, c.ID, c.Exercises[0].ID, 45, before)

	require.ErrorIs(t, err, apperr.ErrDayRolledOver)
	ex := rec.DailyProgress[1].Exercises[0]
	assert.False(t, ex.IsFinished)
	assert.Equal(t, 45, ex.TimeTaken)
	assert.InDelta(t, 3.6, ex.CaloriesBurnt, 1e-9)
	assert.Zero(t, rec.DailyProgress[1].CompletionInPercent)
	assert.Zero(t, rec.TotalProgress)
	assert.Nil(t, rec.FinishedAt)
}

func TestDailyProgressLengthNeverChanges(t *testing.T) {
	c, rec := joined(t)
	n := len(rec.DailyProgress)

	for hour := 6; hour < 12; hour++ {
		tr := NewTracker(clock.NewFixed(at(5, hour)))
		_, _ = tr.RecordExerciseCompletion(rec, c.ID, c.Exercises[hour%2].ID, 10, at(5, hour))
		_, _ = tr.RecordExerciseCompletion(rec, c.ID, uuid.New(), 10, at(5, hour))
	}

	assert.Len(t, rec.DailyProgress, n)
}

func TestTrackerUsesClockLocation(t *testing.T) {
	c, rec := joined(t)
	// 23:30 UTC on Tuesday is already Wednesday in UTC+2.
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, time.January, 2, 23, 30, 0, 0, time.UTC).In(loc)
	for i := range rec.DailyProgress {
		d := rec.DailyProgress[i].Date
		rec.DailyProgress[i].Date = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}
	tr := NewTracker(clock.NewFixed(now))

	res, err := tr.RecordExerciseCompletion(rec, c.ID, c.Exercises[1].ID, 20, now)

	require.NoError(t, err)
	assert.Equal(t, 1, res.DayIndex)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00:00", FormatDuration(0))
	assert.Equal(t, "0:00:59", FormatDuration(59))
	assert.Equal(t, "1:01:01", FormatDuration(3661))
	assert.Equal(t, "27:46:40", FormatDuration(100000))
}

func TestCompletionMatchesScheduleBuiltFromUTCInput(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	start := time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.October, 13, 10, 0, 0, 0, ny) // Tuesday

	c, err := challenge.New(challenge.NewParams{
		Name:           "Zone week",
		ChallengeStart: start,
		ChallengeEnd:   end,
		Type:           challenge.TypeFriends,
		Exercises:      []challenge.Exercise{{Name: "Lunges", Reps: 10, Sets: 2, Kind: challenge.ExerciseTypeReps}},
	}, schedule.Build(start, end, schedule.FullWeek(), ny), now)
	require.NoError(t, err)
	userID := uuid.New()
	days, err := c.Join(userID, now)
	require.NoError(t, err)
	rec := NewRecord(c, userID, days, now)

	res, err := NewTracker(clock.NewFixed(now)).RecordExerciseCompletion(rec, c.ID, c.Exercises[0].ID, 40, now)

	require.NoError(t, err)
	day := rec.DailyProgress[res.DayIndex]
	assert.Equal(t, "Tuesday", day.Day)
	assert.Equal(t, "2026-10-13", clock.DateKey(day.Date, ny))
	assert.InDelta(t, 100, day.CompletionInPercent, 1e-9)
}
