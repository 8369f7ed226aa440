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

func TestCourseRepoLifecycle(t *testing.T) {
	pool := testutil.SetupTestPool(t, migrate.Run)
	profiles := NewProfileRepo(pool)
	courses := NewCourseRepo(pool)
	ctx := context.Background()

	teacher := seedProfile(t, profiles, domainauth.RoleIDTeacher)

	course, err := courses.Create(ctx, teacher.ID, &model.CreateCourseRequest{
		Name:        "Signals and Systems",
		Description: "Weekly lab course",
	})
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, course.CreatedBy)
	assert.Equal(t, teacher.ID, course.InstructorID)
	assert.True(t, course.Public, "courses default to public")

	t.Run("update is creator scoped", func(t *testing.T) {
		name := "Signals and Systems II"
		_, err := courses.Update(ctx, course.ID, teacher.ID, &model.UpdateCourseRequest{Name: &name})
		require.NoError(t, err)

		stranger := seedProfile(t, profiles, domainauth.RoleIDTeacher)
		_, err = courses.Update(ctx, course.ID, stranger.ID, &model.UpdateCourseRequest{Name: &name})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("note material requires content", func(t *testing.T) {
		_, err := courses.CreateMaterial(ctx, teacher.ID, &model.CreateMaterialRequest{
			CourseID: course.ID,
			Name:     "Lecture 1",
			Type:     model.MaterialTypeNote,
		})
		assert.True(t, apperrors.IsValidation(err))

		content := "Fourier basics"
		mat, err := courses.CreateMaterial(ctx, teacher.ID, &model.CreateMaterialRequest{
			CourseID: course.ID,
			Name:     "Lecture 1",
			Type:     model.MaterialTypeNote,
			Content:  &content,
		})
		require.NoError(t, err)
		assert.Equal(t, course.ID, mat.CourseID)

		mats, err := courses.ListMaterials(ctx, course.ID)
		require.NoError(t, err)
		assert.Len(t, mats, 1)
	})

	t.Run("delete removes the course", func(t *testing.T) {
		require.NoError(t, courses.Delete(ctx, course.ID, teacher.ID))
		_, err := courses.Get(ctx, course.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestAssignmentRepoFanOut(t *testing.T) {
	pool := testutil.SetupTestPool(t, migrate.Run)
	profiles := NewProfileRepo(pool)
	courses := NewCourseRepo(pool)
	assignments := NewAssignmentRepo(pool)
	ctx := context.Background()

	teacher := seedProfile(t, profiles, domainauth.RoleIDTeacher)
	alice := seedProfile(t, profiles, domainauth.RoleIDStudent)
	bob := seedProfile(t, profiles, domainauth.RoleIDStudent)

	course, err := courses.Create(ctx, teacher.ID, &model.CreateCourseRequest{Name: "Databases"})
	require.NoError(t, err)

	due := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Second)
	a, err := assignments.Create(ctx, teacher.ID, &model.CreateAssignmentRequest{
		Title:      "Normalization exercise",
		CourseID:   course.ID,
		DueDate:    &due,
		StudentIDs: []string{alice.ID, bob.ID},
	})
	require.NoError(t, err)

	recipients, err := assignments.Recipients(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, recipients, 2)
	for _, rec := range recipients {
		assert.Equal(t, model.AssignmentStatusPending, rec.Status)
	}

	t.Run("student sees it with their own status", func(t *testing.T) {
		list, err := assignments.ListForStudent(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a.ID, list[0].ID)
		assert.Equal(t, model.AssignmentStatusPending, list[0].Status)

		require.NoError(t, assignments.UpdateStatus(ctx, a.ID, alice.ID, model.AssignmentStatusSubmitted))

		list, err = assignments.ListForStudent(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AssignmentStatusSubmitted, list[0].Status)

		// Bob's copy is untouched.
		bobs, err := assignments.ListForStudent(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AssignmentStatusPending, bobs[0].Status)
	})

	t.Run("recipients make the course visible to the student", func(t *testing.T) {
		mine, err := courses.ListForStudent(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, course.ID, mine[0].ID)
	})

	t.Run("bad status is rejected", func(t *testing.T) {
		err := assignments.UpdateStatus(ctx, a.ID, alice.ID, model.AssignmentStatus("done"))
		assert.True(t, apperrors.IsValidation(err))
	})
}
