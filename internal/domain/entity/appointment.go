package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

const (
	// AppointmentDurationMinutes is the fixed planning unit for a consultation.
	AppointmentDurationMinutes = 30

	// ConflictWindow is the interval around scheduled_at within which no other
	// non-cancelled appointment for the same doctor may exist.
	ConflictWindow = 60 * time.Minute
)

// Appointment represents a consultation slot booked between a patient and a doctor
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	ScheduledAt     time.Time         `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes int               `gorm:"not null;default:30" json:"duration_minutes"`
	Description     string            `gorm:"type:text" json:"description,omitempty"`
	Status          AppointmentStatus `gorm:"type:appointment_status;not null;default:'scheduled';index" json:"status"`
	Fee             decimal.Decimal   `gorm:"type:numeric(10,2);not null" json:"fee"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  DoctorProfile  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsCancelled checks if the appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsTerminal checks if the appointment is in a state that accepts no further transitions
func (a *Appointment) IsTerminal() bool {
	return a.Status == AppointmentStatusCompleted || a.Status == AppointmentStatusCancelled
}

// BlocksSlot reports whether the appointment counts toward the doctor's
// conflict window. Cancelled appointments free their slot; completed ones
// are in the past and kept for history only.
func (a *Appointment) BlocksSlot() bool {
	switch a.Status {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusRescheduled:
		return true
	}
	return false
}

// ConflictsWith reports whether t falls inside the appointment's conflict window.
func (a *Appointment) ConflictsWith(t time.Time) bool {
	d := a.ScheduledAt.Sub(t)
	if d < 0 {
		d = -d
	}
	return d < ConflictWindow
}

// CanConfirm reports whether the confirm transition is legal from the current status
func (a *Appointment) CanConfirm() bool {
	return a.Status == AppointmentStatusScheduled
}

// CanCancel reports whether the cancel transition is legal from the current status
func (a *Appointment) CanCancel() bool {
	return a.BlocksSlot()
}

// CanReschedule reports whether the reschedule transition is legal from the current status
func (a *Appointment) CanReschedule() bool {
	return a.BlocksSlot()
}
