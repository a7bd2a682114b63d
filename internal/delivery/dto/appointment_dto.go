package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID        uuid.UUID  `json:"doctor_id" validate:"required"`
	PatientID       *uuid.UUID `json:"patient_id" validate:"omitempty"` // override bookings only
	ScheduledAt     string     `json:"scheduled_at" validate:"required"` // Format: RFC3339
	DurationMinutes int        `json:"duration_minutes" validate:"omitempty,min=1"`
	Description     string     `json:"description" validate:"omitempty,max=2000"`
}

type RescheduleAppointmentRequest struct {
	ScheduledAt string `json:"scheduled_at" validate:"required"` // Format: RFC3339
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID        `json:"id"`
	PatientID       uuid.UUID        `json:"patient_id"`
	DoctorID        uuid.UUID        `json:"doctor_id"`
	PatientName     string           `json:"patient_name,omitempty"`
	DoctorName      string           `json:"doctor_name,omitempty"`
	ScheduledAt     time.Time        `json:"scheduled_at"`
	DurationMinutes int              `json:"duration_minutes"`
	Description     string           `json:"description,omitempty"`
	Status          string           `json:"status"`
	Fee             decimal.Decimal  `json:"fee"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type SlotListResponse struct {
	DoctorID uuid.UUID   `json:"doctor_id"`
	Date     string      `json:"date"`
	Slots    []time.Time `json:"slots"`
	Total    int         `json:"total"`
}
