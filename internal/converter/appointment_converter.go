package converter

import (
	"time"

	"go-consultation-booking/internal/delivery/dto"
	"go-consultation-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		DoctorID:        appointment.DoctorID,
		ScheduledAt:     appointment.ScheduledAt,
		DurationMinutes: appointment.DurationMinutes,
		Description:     appointment.Description,
		Status:          string(appointment.Status),
		Fee:             appointment.Fee,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}

	// Include party names if relations are loaded
	if appointment.Patient.User.ID != uuid.Nil {
		response.PatientName = appointment.Patient.User.FullName
	}
	if appointment.Doctor.User.ID != uuid.Nil {
		response.DoctorName = appointment.Doctor.User.FullName
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		resp := AppointmentToResponse(&appointments[i])
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// SlotsToResponse wraps a computed slot list in its response DTO
func SlotsToResponse(doctorID uuid.UUID, date time.Time, slots []time.Time) *dto.SlotListResponse {
	if slots == nil {
		slots = []time.Time{}
	}
	return &dto.SlotListResponse{
		DoctorID: doctorID,
		Date:     date.UTC().Format("2006-01-02"),
		Slots:    slots,
		Total:    len(slots),
	}
}
