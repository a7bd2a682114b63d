package service

import (
	"go-consultation-booking/internal/domain/entity"
)

// AppointmentOperation identifies a mutation on an appointment for
// permission checks.
type AppointmentOperation string

const (
	OperationConfirm    AppointmentOperation = "confirm"
	OperationCancel     AppointmentOperation = "cancel"
	OperationReschedule AppointmentOperation = "reschedule"
)

// PermissionService decides whether an actor may read or mutate an
// appointment. Decisions dispatch on capability membership, not role names.
type PermissionService struct{}

func NewPermissionService() *PermissionService {
	return &PermissionService{}
}

// CanAccess reports whether the actor may read the appointment.
func (s *PermissionService) CanAccess(actor entity.Actor, appointment *entity.Appointment) bool {
	if actor.Can(entity.CapabilityReadAll) {
		return true
	}
	if !actor.Can(entity.CapabilityReadOwn) {
		return false
	}
	return s.owns(actor, appointment)
}

// CanMutate reports whether the actor may apply the operation to the
// appointment. Confirm is restricted to the owning doctor; cancel and
// reschedule are allowed to either owning party.
func (s *PermissionService) CanMutate(actor entity.Actor, appointment *entity.Appointment, op AppointmentOperation) bool {
	if actor.Can(entity.CapabilityOverride) {
		return true
	}
	if !actor.Can(entity.CapabilityMutateOwn) {
		return false
	}

	switch op {
	case OperationConfirm:
		return actor.IsDoctor() && appointment.DoctorID == actor.UserID
	case OperationCancel, OperationReschedule:
		return s.owns(actor, appointment)
	}
	return false
}

func (s *PermissionService) owns(actor entity.Actor, appointment *entity.Appointment) bool {
	switch {
	case actor.IsPatient():
		return appointment.PatientID == actor.UserID
	case actor.IsDoctor():
		return appointment.DoctorID == actor.UserID
	}
	return false
}
