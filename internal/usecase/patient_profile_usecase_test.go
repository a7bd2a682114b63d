package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"go-consultation-booking/internal/delivery/dto"
	"go-consultation-booking/internal/domain/entity"
	"go-consultation-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPatientTestEnv(t *testing.T) (PatientProfileUsecase, *fakePatientRepo, *fakeUserRepo) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	users := newFakeUserRepo()
	patients := newFakePatientRepo()
	auditRepo := newFakeAuditRepo()

	return NewPatientProfileUsecase(log, users, patients, service.NewAuditService(log, auditRepo)), patients, users
}

func seedPatient(t *testing.T, patients *fakePatientRepo, users *fakeUserRepo) entity.Actor {
	t.Helper()
	ctx := context.Background()

	active := true
	user := &entity.User{
		RoleID:   entity.RoleIDPatient,
		Email:    "jamie@example.test",
		FullName: "Jamie Doe",
		IsActive: &active,
	}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, patients.Create(ctx, &entity.PatientProfile{
		UserID:      user.ID,
		DateOfBirth: time.Date(1992, 7, 3, 0, 0, 0, 0, time.UTC),
		Gender:      entity.GenderFemale,
		PhoneNumber: "08123456789",
		User:        *user,
	}))

	return entity.Actor{UserID: user.ID, RoleID: entity.RoleIDPatient}
}

func TestGetPatientProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the caller's profile", func(t *testing.T) {
		uc, patients, users := newPatientTestEnv(t)
		actor := seedPatient(t, patients, users)

		resp, err := uc.GetProfile(ctx, actor)
		require.NoError(t, err)
		assert.Equal(t, actor.UserID, resp.ID)
		assert.Equal(t, "Jamie Doe", resp.FullName)
	})

	t.Run("missing profile", func(t *testing.T) {
		uc, _, _ := newPatientTestEnv(t)
		_, err := uc.GetProfile(ctx, entity.Actor{UserID: uuid.New(), RoleID: entity.RoleIDPatient})
		assert.ErrorIs(t, err, ErrPatientNotFound)
	})
}

func TestUpdatePatientProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("patches only the provided fields", func(t *testing.T) {
		uc, patients, users := newPatientTestEnv(t)
		actor := seedPatient(t, patients, users)

		resp, err := uc.UpdateProfile(ctx, actor, &dto.UpdatePatientProfileRequest{
			PhoneNumber: "08987654321",
			Address:     "12 Elm Street",
		})
		require.NoError(t, err)

		assert.Equal(t, "Jamie Doe", resp.FullName)
		assert.Equal(t, "08987654321", resp.PhoneNumber)
		assert.Equal(t, "12 Elm Street", resp.Address)
	})

	t.Run("parses the date of birth", func(t *testing.T) {
		uc, patients, users := newPatientTestEnv(t)
		actor := seedPatient(t, patients, users)

		resp, err := uc.UpdateProfile(ctx, actor, &dto.UpdatePatientProfileRequest{DateOfBirth: "1990-01-15"})
		require.NoError(t, err)
		assert.Equal(t, "1990-01-15", resp.DateOfBirth)

		_, err = uc.UpdateProfile(ctx, actor, &dto.UpdatePatientProfileRequest{DateOfBirth: "15/01/1990"})
		assert.ErrorIs(t, err, ErrInvalidDateFormat)
	})

	t.Run("renaming updates the account record too", func(t *testing.T) {
		uc, patients, users := newPatientTestEnv(t)
		actor := seedPatient(t, patients, users)

		_, err := uc.UpdateProfile(ctx, actor, &dto.UpdatePatientProfileRequest{FullName: "Jamie Smith"})
		require.NoError(t, err)

		user, err := users.FindByID(ctx, actor.UserID)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Jamie Smith", user.FullName)
	})
}
