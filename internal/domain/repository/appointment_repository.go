package repository

import (
	"context"
	"time"

	"go-consultation-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentRepository is the persistence port for appointments. It is the
// only interface the scheduling engine mutates through; implementations must
// never physically delete rows (cancellation is a status change).
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)

	// FindBlockingByDoctor returns all appointments for the doctor that still
	// block a slot (scheduled, confirmed or rescheduled), optionally excluding
	// one appointment by ID (zero UUID = no exclusion). Used for the conflict
	// window check and for slot enumeration on a given calendar date
	// (from inclusive, to exclusive; zero times = unbounded).
	FindBlockingByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time, excludeID uuid.UUID) ([]entity.Appointment, error)

	// FindUpcoming returns non-cancelled appointments scheduled after now,
	// ascending. Zero ownerID with ownerRole 0 means no ownership filter.
	FindUpcoming(ctx context.Context, ownerID uuid.UUID, ownerRole int, now time.Time) ([]entity.Appointment, error)

	// FindHistory returns appointments already in the past or in a terminal
	// state, descending by scheduled time.
	FindHistory(ctx context.Context, ownerID uuid.UUID, ownerRole int, now time.Time) ([]entity.Appointment, error)

	// Update persists the appointment's mutable fields (scheduled_at, status,
	// updated_at).
	Update(ctx context.Context, appointment *entity.Appointment) error

	// CancelIfActive atomically cancels the appointment only if it is not
	// already cancelled. Returns affected rows: 1 = cancelled now,
	// 0 = was already cancelled (makes double-cancel race-free).
	CancelIfActive(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
}
