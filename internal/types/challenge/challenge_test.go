package challenge

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zealAPI/internal/apperr"
)

var created = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func newLive(t *testing.T) *Challenge {
	t.Helper()
	days := []ActiveDay{
		{Day: "Monday", IsActive: true, Date: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), WeekNumber: 1},
		{Day: "Tuesday", IsActive: false, Date: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), WeekNumber: 1},
		{Day: "Wednesday", IsActive: true, Date: time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC), WeekNumber: 1},
	}
	c, err := New(NewParams{
		Name:           "Three day burn",
		ChallengeStart: days[0].Date,
		ChallengeEnd:   days[2].Date,
		Type:           TypeCommunity,
		Exercises:      []Exercise{{Name: "Burpees", Reps: 10, Sets: 3, Kind: ExerciseTypeReps}},
	}, days, created)
	require.NoError(t, err)
	return c
}

func TestNewChallengeStartsLiveAndMutable(t *testing.T) {
	c := newLive(t)

	assert.Equal(t, StatusLive, c.Status)
	assert.NotEqual(t, uuid.Nil, c.Exercises[0].ID)
	assert.NoError(t, c.EnsureMutable())
}

func TestJoinReturnsOnlyActiveDays(t *testing.T) {
	c := newLive(t)

	days, err := c.Join(uuid.New(), created)

	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "Monday", days[0].Day)
	assert.Equal(t, "Wednesday", days[1].Day)
	assert.Len(t, c.ActiveDays, 3)
}

func TestJoinedChallengeCannotBeRescheduledOrDeleted(t *testing.T) {
	c := newLive(t)
	_, err := c.Join(uuid.New(), created)
	require.NoError(t, err)
	before := c.ActiveDays
	newEnd := c.ChallengeEnd.AddDate(0, 0, 7)

	err = c.Reschedule(c.ChallengeStart, newEnd, nil, created.Add(time.Hour))

	assert.ErrorIs(t, err, apperr.ErrInvariantViolation)
	assert.ErrorIs(t, c.EnsureMutable(), apperr.ErrInvariantViolation)
	assert.Equal(t, before, c.ActiveDays)
	assert.False(t, c.ChallengeEnd.Equal(newEnd))
}

func TestRescheduleWithoutParticipants(t *testing.T) {
	c := newLive(t)
	later := created.Add(time.Hour)
	newEnd := c.ChallengeEnd.AddDate(0, 0, 1)
	days := append(c.ActiveDays, ActiveDay{Day: "Thursday", IsActive: true, Date: newEnd, WeekNumber: 1})

	err := c.Reschedule(c.ChallengeStart, newEnd, days, later)

	require.NoError(t, err)
	assert.Len(t, c.ActiveDays, 4)
	assert.True(t, c.ChallengeEnd.Equal(newEnd))
	assert.True(t, c.UpdatedAt.Equal(later))
}

func TestDuplicateJoinIsRejected(t *testing.T) {
	c := newLive(t)
	userID := uuid.New()
	_, err := c.Join(userID, created)
	require.NoError(t, err)

	_, err = c.Join(userID, created)

	assert.ErrorIs(t, err, apperr.ErrInvariantViolation)
	assert.Len(t, c.Users, 1)
}

func TestCompletedChallengeRejectsJoinAndChanges(t *testing.T) {
	c := newLive(t)
	c.Status = StatusCompleted

	_, err := c.Join(uuid.New(), created)

	assert.ErrorIs(t, err, apperr.ErrInvariantViolation)
	assert.Empty(t, c.Users)
	assert.ErrorIs(t, c.EnsureMutable(), apperr.ErrInvariantViolation)
	assert.False(t, c.IsDue(created.AddDate(1, 0, 0)))
}

func TestIsDueOnlyAfterEnd(t *testing.T) {
	c := newLive(t)

	assert.False(t, c.IsDue(c.ChallengeEnd))
	assert.True(t, c.IsDue(c.ChallengeEnd.Add(time.Second)))
}
