package repository

import (
	"context"

	"go-consultation-booking/internal/domain/entity"

	"github.com/google/uuid"
)

type DoctorProfileRepository interface {
	Create(ctx context.Context, profile *entity.DoctorProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error)
	FindAvailable(ctx context.Context) ([]entity.DoctorProfile, error)
	FindPending(ctx context.Context) ([]entity.DoctorProfile, error)
	Search(ctx context.Context, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error)
	Specializations(ctx context.Context) ([]string, error)
	Update(ctx context.Context, profile *entity.DoctorProfile) error
	Delete(ctx context.Context, userID uuid.UUID) (int64, error)
}
