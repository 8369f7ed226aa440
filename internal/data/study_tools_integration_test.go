package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	"github.com/pulse-camp/portal-api/internal/migrate"
	"github.com/pulse-camp/portal-api/internal/testutil"
)

func TestGradeRepoDerivesPoints(t *testing.T) {
	pool := testutil.SetupTestPool(t, migrate.Run)
	profiles := NewProfileRepo(pool)
	grades := NewGradeRepo(pool)
	ctx := context.Background()

	student := seedProfile(t, profiles, domainauth.RoleIDStudent)

	e, err := grades.Create(ctx, student.ID, &model.CreateGradeEntryRequest{
		CourseName: "Calculus I",
		Credits:    4,
		Grade:      "a-",
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.7, e.GradePoints, 0.001)

	_, err = grades.Create(ctx, student.ID, &model.CreateGradeEntryRequest{
		CourseName: "History",
		Credits:    3,
		Grade:      "Z",
	})
	assert.True(t, apperrors.IsValidation(err))

	list, err := grades.List(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, grades.Delete(ctx, e.ID, student.ID))
	err = grades.Delete(ctx, e.ID, student.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestScheduleRepoRejectsOverlap(t *testing.T) {
	pool := testutil.SetupTestPool(t, migrate.Run)
	profiles := NewProfileRepo(pool)
	schedule := NewScheduleRepo(pool)
	ctx := context.Background()

	student := seedProfile(t, profiles, domainauth.RoleIDStudent)

	_, err := schedule.Create(ctx, student.ID, &model.CreateScheduleBlockRequest{
		Title: "Algebra", Weekday: 1, StartMinutes: 9 * 60, EndMinutes: 10 * 60,
	})
	require.NoError(t, err)

	_, err = schedule.Create(ctx, student.ID, &model.CreateScheduleBlockRequest{
		Title: "Chemistry", Weekday: 1, StartMinutes: 9*60 + 30, EndMinutes: 11 * 60,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// Back to back is fine, as is the same slot on another day.
	_, err = schedule.Create(ctx, student.ID, &model.CreateScheduleBlockRequest{
		Title: "Chemistry", Weekday: 1, StartMinutes: 10 * 60, EndMinutes: 11 * 60,
	})
	require.NoError(t, err)
	_, err = schedule.Create(ctx, student.ID, &model.CreateScheduleBlockRequest{
		Title: "Chemistry", Weekday: 2, StartMinutes: 9*60 + 30, EndMinutes: 11 * 60,
	})
	require.NoError(t, err)

	blocks, err := schedule.List(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, blocks, 3)
}

func TestStudyRepoStartFinish(t *testing.T) {
	pool := testutil.SetupTestPool(t, migrate.Run)
	profiles := NewProfileRepo(pool)
	study := NewStudyRepo(pool)
	ctx := context.Background()

	student := seedProfile(t, profiles, domainauth.RoleIDStudent)

	s, err := study.Start(ctx, student.ID, &model.StartStudySessionRequest{PlannedMinutes: 25})
	require.NoError(t, err)
	assert.Equal(t, model.StudySessionKindStudy, s.Kind, "kind defaults to study")
	assert.Nil(t, s.EndedAt)

	done, err := study.Finish(ctx, s.ID, student.ID)
	require.NoError(t, err)
	require.NotNil(t, done.EndedAt)
	assert.GreaterOrEqual(t, done.ElapsedMinutes, 0)

	_, err = study.Finish(ctx, s.ID, student.ID)
	assert.True(t, apperrors.IsNotFound(err), "finishing twice is rejected")

	totals, err := study.DayTotals(ctx, student.ID, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, totals, 1)
}

func TestQuizRepoRoundTrip(t *testing.T) {
	pool := testutil.SetupTestPool(t, migrate.Run)
	profiles := NewProfileRepo(pool)
	quizzes := NewQuizRepo(pool)
	ctx := context.Background()

	student := seedProfile(t, profiles, domainauth.RoleIDStudent)

	questions := []model.QuizQuestion{
		{ID: "q1", Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
		{ID: "q2", Question: "3*3?", Options: []string{"9", "6"}, CorrectAnswer: "9"},
	}
	q, err := quizzes.Create(ctx, student.ID, "arithmetic", model.QuizDifficultyEasy, questions)
	require.NoError(t, err)
	require.Len(t, q.Questions, 2)
	assert.Equal(t, "4", q.Questions[0].CorrectAnswer)

	got, err := quizzes.Get(ctx, q.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, questions, got.Questions)

	res := got.Score([]model.QuizAnswer{{QuestionID: "q1", Answer: "4"}})
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 2, res.Total)

	other := seedProfile(t, profiles, domainauth.RoleIDStudent)
	_, err = quizzes.Get(ctx, q.ID, other.ID)
	assert.True(t, apperrors.IsNotFound(err), "quizzes are owner scoped")
}

func TestNotificationRepoReadFlow(t *testing.T) {
	pool := testutil.SetupTestPool(t, migrate.Run)
	profiles := NewProfileRepo(pool)
	notifications := NewNotificationRepo(pool)
	ctx := context.Background()

	student := seedProfile(t, profiles, domainauth.RoleIDStudent)

	for _, title := range []string{"Assignment posted", "Grade published"} {
		_, err := notifications.Create(ctx, &model.CreateNotificationRequest{
			UserID: student.ID,
			Title:  title,
		})
		require.NoError(t, err)
	}

	count, err := notifications.UnreadCount(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := notifications.List(ctx, student.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, notifications.MarkRead(ctx, list[0].ID, student.ID))
	count, err = notifications.UnreadCount(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, notifications.MarkAllRead(ctx, student.ID))
	count, err = notifications.UnreadCount(ctx, student.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
