package repository

import (
	"context"

	"go-consultation-booking/internal/domain/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error

	// CreateWithProfile creates the user together with its role profile in
	// one atomic unit. Exactly one of doctor/patient is non-nil.
	CreateWithProfile(ctx context.Context, user *entity.User, doctor *entity.DoctorProfile, patient *entity.PatientProfile) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
