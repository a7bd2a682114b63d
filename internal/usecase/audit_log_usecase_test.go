package usecase

import (
	"context"
	"io"
	"testing"

	"go-consultation-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuditTestEnv(t *testing.T) (AuditLogUsecase, *fakeAuditRepo) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := newFakeAuditRepo()
	return NewAuditLogUsecase(log, repo), repo
}

func seedAuditLogs(t *testing.T, repo *fakeAuditRepo, n int) {
	t.Helper()
	userID := uuid.New()
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Create(context.Background(), &entity.AuditLog{
			UserID:   &userID,
			Action:   entity.AuditActionAppointmentBook,
			Metadata: entity.JSON{"entity": "appointment"},
		}))
	}
}

func TestGetAllAuditLogs(t *testing.T) {
	ctx := context.Background()

	t.Run("pages through the trail", func(t *testing.T) {
		uc, repo := newAuditTestEnv(t)
		seedAuditLogs(t, repo, 5)

		resp, err := uc.GetAllAuditLogs(ctx, adminActor(), 2, 0)
		require.NoError(t, err)
		assert.Len(t, resp.Logs, 2)
		assert.Equal(t, int64(5), resp.Total)

		resp, err = uc.GetAllAuditLogs(ctx, adminActor(), 2, 4)
		require.NoError(t, err)
		assert.Len(t, resp.Logs, 1)
	})

	t.Run("a non-positive limit falls back to the default page size", func(t *testing.T) {
		uc, repo := newAuditTestEnv(t)
		seedAuditLogs(t, repo, 3)

		resp, err := uc.GetAllAuditLogs(ctx, adminActor(), 0, 0)
		require.NoError(t, err)
		assert.Len(t, resp.Logs, 3)
	})

	t.Run("only readers of the full trail are admitted", func(t *testing.T) {
		uc, _ := newAuditTestEnv(t)

		patient := entity.Actor{UserID: uuid.New(), RoleID: entity.RoleIDPatient}
		_, err := uc.GetAllAuditLogs(ctx, patient, 10, 0)
		assert.ErrorIs(t, err, ErrForbidden)

		doctor := entity.Actor{UserID: uuid.New(), RoleID: entity.RoleIDDoctor}
		_, err = uc.GetAllAuditLogs(ctx, doctor, 10, 0)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestGetAuditLog(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a single entry", func(t *testing.T) {
		uc, repo := newAuditTestEnv(t)
		seedAuditLogs(t, repo, 1)

		resp, err := uc.GetAuditLog(ctx, adminActor(), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, entity.AuditActionAppointmentBook, resp.Action)
	})

	t.Run("unknown id", func(t *testing.T) {
		uc, _ := newAuditTestEnv(t)
		_, err := uc.GetAuditLog(ctx, adminActor(), 42)
		assert.ErrorIs(t, err, ErrAuditLogNotFound)
	})

	t.Run("non-admin actors are rejected", func(t *testing.T) {
		uc, repo := newAuditTestEnv(t)
		seedAuditLogs(t, repo, 1)

		patient := entity.Actor{UserID: uuid.New(), RoleID: entity.RoleIDPatient}
		_, err := uc.GetAuditLog(ctx, patient, 1)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
