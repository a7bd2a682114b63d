package repository

import (
	"context"
	"errors"
	"time"

	"go-consultation-booking/internal/domain/entity"
	domainRepo "go-consultation-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// blockingStatuses are the statuses that occupy a slot for conflict purposes.
var blockingStatuses = []entity.AppointmentStatus{
	entity.AppointmentStatusScheduled,
	entity.AppointmentStatusConfirmed,
	entity.AppointmentStatusRescheduled,
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient.User").
		Preload("Doctor.User").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindBlockingByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time, excludeID uuid.UUID) ([]entity.Appointment, error) {
	query := r.db.WithContext(ctx).
		Where("doctor_id = ? AND status IN ?", doctorID, blockingStatuses)

	if !from.IsZero() {
		query = query.Where("scheduled_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("scheduled_at < ?", to)
	}
	if excludeID != uuid.Nil {
		query = query.Where("id != ?", excludeID)
	}

	var appointments []entity.Appointment
	err := query.Order("scheduled_at ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindUpcoming(ctx context.Context, ownerID uuid.UUID, ownerRole int, now time.Time) ([]entity.Appointment, error) {
	query := r.db.WithContext(ctx).
		Preload("Patient.User").
		Preload("Doctor.User").
		Where("scheduled_at > ? AND status != ?", now, entity.AppointmentStatusCancelled)

	query = scopeToOwner(query, ownerID, ownerRole)

	var appointments []entity.Appointment
	err := query.Order("scheduled_at ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindHistory(ctx context.Context, ownerID uuid.UUID, ownerRole int, now time.Time) ([]entity.Appointment, error) {
	query := r.db.WithContext(ctx).
		Preload("Patient.User").
		Preload("Doctor.User").
		Where("scheduled_at <= ? OR status IN ?", now, []entity.AppointmentStatus{
			entity.AppointmentStatusCompleted,
			entity.AppointmentStatusCancelled,
		})

	query = scopeToOwner(query, ownerID, ownerRole)

	var appointments []entity.Appointment
	err := query.Order("scheduled_at DESC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	return r.db.WithContext(ctx).
		Omit("Patient", "Doctor").
		Save(appointment).Error
}

// CancelIfActive atomically cancels the appointment ONLY if it's not already
// cancelled. Returns affected rows: 1 = cancelled now, 0 = already cancelled
// (prevents double-cancel race).
func (r *appointmentRepository) CancelIfActive(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status != ?", id, entity.AppointmentStatusCancelled).
		Updates(map[string]interface{}{
			"status":     entity.AppointmentStatusCancelled,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}

// scopeToOwner narrows a query to the appointments owned by the given party.
// A patient owns appointments where they are the patient; a doctor where they
// are the doctor. Any other role is unscoped (read-all paths).
func scopeToOwner(query *gorm.DB, ownerID uuid.UUID, ownerRole int) *gorm.DB {
	switch ownerRole {
	case entity.RoleIDPatient:
		return query.Where("patient_id = ?", ownerID)
	case entity.RoleIDDoctor:
		return query.Where("doctor_id = ?", ownerID)
	}
	return query
}
