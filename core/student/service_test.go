package student_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/student"
	"github.com/tutorpost/backend/core/tutor"
	inmemdb "github.com/tutorpost/backend/storage/database/inmem"
	testutil "github.com/tutorpost/backend/tests"
)

func setup(t *testing.T) (*student.Service, student.Repository, tutor.Repository) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return student.NewService(inmemdb.NewStudentRepository(db)),
		inmemdb.NewStudentRepository(db),
		inmemdb.NewTutorRepository(db)
}

func Test_SanitizeTutorIDs(t *testing.T) {
	t1 := "cc1e46e4-9838-48a1-901c-57d0192492c3"
	t2 := "7b3a842e-62a7-4a97-81e6-a86e05dd1667"

	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "dupes dropped", input: []string{t1, t1, t2}, want: []string{t1, t2}},
		{name: "malformed dropped", input: []string{t1, "not-an-id", ""}, want: []string{t1}},
		{name: "whitespace trimmed", input: []string{" " + t1 + " "}, want: []string{t1}},
		{name: "all invalid", input: []string{"x", "y"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, student.SanitizeTutorIDs(tt.input))
		})
	}
}

func Test_Service_SetTutors(t *testing.T) {
	svc, repo, tutRepo := setup(t)
	ctx := context.Background()

	tut1 := testutil.CreateTutor(t, tutRepo, "T1", "t1@test.cd", "")
	tut2 := testutil.CreateTutor(t, tutRepo, "T2", "t2@test.cd", "")
	s := testutil.CreateStudent(t, repo, "Hero", "hero@test.cd", "", tut1.ID)

	// wholesale replace: tut1 unassigned, tut2 assigned, junk dropped
	got, err := svc.SetTutors(ctx, s.ID, []string{tut2.ID, tut2.ID, "not-an-id"})
	require.NoError(t, err)
	assert.Equal(t, []string{tut2.ID}, got.Tutors)

	// counters resynced on both sides of the swap
	t1, err := tutRepo.GetTutorByID(ctx, tut1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, t1.AssignedUsers)
	t2, err := tutRepo.GetTutorByID(ctx, tut2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, t2.AssignedUsers)

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.SetTutors(ctx, "cc1e46e4-9838-48a1-901c-57d0192492c3", []string{tut1.ID})
		assert.Equal(t, student.ErrNotFound, errors.Cause(err))
	})
}

func Test_Service_RemoveTutorRefs(t *testing.T) {
	svc, repo, tutRepo := setup(t)
	ctx := context.Background()

	tut := testutil.CreateTutor(t, tutRepo, "T1", "t1@test.cd", "")
	other := testutil.CreateTutor(t, tutRepo, "T2", "t2@test.cd", "")
	s1 := testutil.CreateStudent(t, repo, "Hero", "hero@test.cd", "", tut.ID, other.ID)
	s2 := testutil.CreateStudent(t, repo, "King", "king@test.cd", "", tut.ID)
	s3 := testutil.CreateStudent(t, repo, "Awe", "awe@test.cd", "")

	n, err := svc.RemoveTutorRefs(ctx, tut.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// only the matching element is pulled, the rest of each set survives
	got1, _ := svc.GetByID(ctx, s1.ID)
	assert.Equal(t, []string{other.ID}, got1.Tutors)
	got2, _ := svc.GetByID(ctx, s2.ID)
	assert.Empty(t, got2.Tutors)
	got3, _ := svc.GetByID(ctx, s3.ID)
	assert.Empty(t, got3.Tutors)

	// idempotent: a second pass matches no one and is not an error
	n, err = svc.RemoveTutorRefs(ctx, tut.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func Test_Service_RemoveTutorRefs_syncsCounter(t *testing.T) {
	svc, repo, tutRepo := setup(t)
	ctx := context.Background()

	tut := testutil.CreateTutor(t, tutRepo, "T1", "t1@test.cd", "")
	s := testutil.CreateStudent(t, repo, "Hero", "hero@test.cd", "")
	_, err := svc.SetTutors(ctx, s.ID, []string{tut.ID})
	require.NoError(t, err)
	got, err := tutRepo.GetTutorByID(ctx, tut.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.AssignedUsers)

	_, err = svc.RemoveTutorRefs(ctx, tut.ID)
	require.NoError(t, err)

	// the surviving tutor's counter follows the pulled refs
	got, err = tutRepo.GetTutorByID(ctx, tut.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AssignedUsers)
}

func Test_Service_Delete(t *testing.T) {
	svc, repo, tutRepo := setup(t)
	ctx := context.Background()

	shared := testutil.CreateTutor(t, tutRepo, "T1", "t1@test.cd", "")
	solo := testutil.CreateTutor(t, tutRepo, "T2", "t2@test.cd", "")
	doomed := testutil.CreateStudent(t, repo, "Hero", "hero@test.cd", "")
	keeper := testutil.CreateStudent(t, repo, "King", "king@test.cd", "")
	_, err := svc.SetTutors(ctx, doomed.ID, []string{shared.ID, solo.ID})
	require.NoError(t, err)
	_, err = svc.SetTutors(ctx, keeper.ID, []string{shared.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, doomed.ID))
	_, err = svc.GetByID(ctx, doomed.ID)
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))

	// counters recounted from the surviving students only
	got, err := tutRepo.GetTutorByID(ctx, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AssignedUsers)
	got, err = tutRepo.GetTutorByID(ctx, solo.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AssignedUsers)

	t.Run("unknown user", func(t *testing.T) {
		err := svc.Delete(ctx, "cc1e46e4-9838-48a1-901c-57d0192492c3")
		assert.Equal(t, student.ErrNotFound, errors.Cause(err))
	})
}

func Test_Service_EnrollDemotedTutor(t *testing.T) {
	svc, repo, tutRepo := setup(t)
	ctx := context.Background()

	tut := testutil.CreateTutor(t, tutRepo, "Jane", "jane@test.cd", "LordOfTheRings")
	tut.Age = 34
	tut.State = "NY"
	tut, err := tutRepo.UpdateTutor(ctx, tut)
	require.NoError(t, err)

	got, err := svc.EnrollDemotedTutor(ctx, tut)
	require.NoError(t, err)
	assert.Equal(t, tut.Name, got.Name)
	assert.Equal(t, tut.Email, got.Email)
	assert.Equal(t, tut.Age, got.Age)
	assert.Equal(t, tut.State, got.State)
	assert.Equal(t, student.Role, got.Role)
	// the hash is carried verbatim: the original password still works
	assert.NoError(t, got.CheckPassword("LordOfTheRings"))

	t.Run("email conflict", func(t *testing.T) {
		other := testutil.CreateTutor(t, tutRepo, "Other", "hero@test.cd", "LordOfTheRings")
		testutil.CreateStudent(t, repo, "Hero", "hero@test.cd", "")

		_, err := svc.EnrollDemotedTutor(ctx, other)
		assert.True(t, core.IsConflict(errors.Cause(err)))

		// nothing was written on either side
		_, err = tutRepo.GetTutorByID(ctx, other.ID)
		assert.NoError(t, err)
		students, err := svc.QueryAll(ctx)
		require.NoError(t, err)
		var heroes int
		for _, s := range students {
			if s.Email == "hero@test.cd" {
				heroes++
			}
		}
		assert.Equal(t, 1, heroes)
	})
}

func Test_Service_GetWithTutors(t *testing.T) {
	svc, repo, tutRepo := setup(t)
	ctx := context.Background()

	tut := testutil.CreateTutor(t, tutRepo, "Jane", "jane@test.cd", "")
	s := testutil.CreateStudent(t, repo, "Hero", "hero@test.cd", "", tut.ID)

	got, infos, err := svc.GetWithTutors(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tut.ID}, got.Tutors)
	require.Len(t, infos, 1)
	assert.Equal(t, student.TutorInfo{ID: tut.ID, Name: "Jane", Email: "jane@test.cd"}, infos[0])
}
