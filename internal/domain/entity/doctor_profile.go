package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Default working window for slot enumeration. WorkdayEnd is the last
// bookable start time, not closing time.
const (
	DefaultWorkdayStart = "09:00"
	DefaultWorkdayEnd   = "17:30"
)

// DoctorProfile represents doctor-specific profile data
type DoctorProfile struct {
	UserID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	LicenseNumber   string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_number"`
	Specialization  string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	ExperienceYears int             `gorm:"not null;default:0" json:"experience_years"`
	ConsultationFee decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"consultation_fee"`
	IsApproved      bool            `gorm:"not null;default:false;index" json:"is_approved"`
	IsAvailable     bool            `gorm:"not null;default:false;index" json:"is_available"`
	WorkdayStart    string          `gorm:"type:time;not null;default:'09:00'" json:"workday_start"`
	WorkdayEnd      string          `gorm:"type:time;not null;default:'17:30'" json:"workday_end"`
	Biography       string          `gorm:"type:text" json:"biography,omitempty"`

	// Relationships
	User         User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// IsBookable checks if the doctor can accept new appointments
func (d *DoctorProfile) IsBookable() bool {
	return d.IsApproved && d.IsAvailable
}
