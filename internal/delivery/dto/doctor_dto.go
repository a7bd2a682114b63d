package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type UpdateAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

type SearchDoctorsRequest struct {
	Name           string `json:"name" validate:"omitempty"`
	Specialization string `json:"specialization" validate:"omitempty"`
	MinExperience  int    `json:"min_experience" validate:"omitempty,min=0"`
}

// Response DTOs

type DoctorProfileResponse struct {
	UserID          uuid.UUID       `json:"user_id"`
	LicenseNumber   string          `json:"license_number"`
	Specialization  string          `json:"specialization"`
	ExperienceYears int             `json:"experience_years"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	IsApproved      bool            `json:"is_approved"`
	IsAvailable     bool            `json:"is_available"`
	WorkdayStart    string          `json:"workday_start"`
	WorkdayEnd      string          `json:"workday_end"`
	Biography       string          `json:"biography,omitempty"`
}

type DoctorResponse struct {
	ID              uuid.UUID       `json:"id"`
	Email           string          `json:"email"`
	FullName        string          `json:"full_name"`
	LicenseNumber   string          `json:"license_number"`
	Specialization  string          `json:"specialization"`
	ExperienceYears int             `json:"experience_years"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	IsApproved      bool            `json:"is_approved"`
	IsAvailable     bool            `json:"is_available"`
	Biography       string          `json:"biography,omitempty"`
	IsActive        *bool           `json:"is_active,omitempty"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

type SpecializationListResponse struct {
	Specializations []string `json:"specializations"`
	Total           int      `json:"total"`
}
