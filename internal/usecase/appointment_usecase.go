package usecase

import (
	"context"
	"time"

	"go-consultation-booking/internal/converter"
	"go-consultation-booking/internal/delivery/dto"
	"go-consultation-booking/internal/domain/entity"
	"go-consultation-booking/internal/domain/repository"
	"go-consultation-booking/internal/service"
	"go-consultation-booking/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrPatientNotFound     = apperr.New(apperr.KindNotFound, "patient", "", "patient not found")
	ErrDoctorNotFound      = apperr.New(apperr.KindNotFound, "doctor", "", "doctor not found")
	ErrAppointmentNotFound = apperr.New(apperr.KindNotFound, "appointment", "", "appointment not found")
	ErrDoctorUnavailable   = apperr.New(apperr.KindUnavailable, "doctor", "", "doctor is not accepting appointments")
	ErrPastDate            = apperr.New(apperr.KindValidation, "appointment", apperr.ReasonPastDate, "appointment time must be in the future")
	ErrInvalidDuration     = apperr.New(apperr.KindValidation, "appointment", apperr.ReasonInvalidDuration, "appointments are booked in 30-minute units")
	ErrInvalidDateTime     = apperr.New(apperr.KindValidation, "appointment", "", "invalid date/time format")
	ErrSlotTaken           = apperr.New(apperr.KindConflict, "appointment", apperr.ReasonSlotTaken, "requested time conflicts with an existing appointment")
	ErrForbidden           = apperr.New(apperr.KindForbidden, "appointment", "", "operation not permitted for this actor")
	ErrInvalidTransition   = apperr.New(apperr.KindInvalidState, "appointment", apperr.ReasonNotAllowed, "status transition not allowed")
)

type AppointmentUsecase interface {
	ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.SlotListResponse, error)
	Get(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	Book(ctx context.Context, actor entity.Actor, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	Confirm(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) error
	Cancel(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) error
	Reschedule(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
	ListUpcoming(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	ListHistory(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientProfileRepository
	doctorRepo      repository.DoctorProfileRepository
	availability    *service.AvailabilityService
	permissions     *service.PermissionService
	locks           *service.DoctorLockService
	slotCache       *service.SlotCacheService
	auditService    service.AuditService
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientProfileRepository,
	doctorRepo repository.DoctorProfileRepository,
	availability *service.AvailabilityService,
	permissions *service.PermissionService,
	locks *service.DoctorLockService,
	slotCache *service.SlotCacheService,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:             log,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		doctorRepo:      doctorRepo,
		availability:    availability,
		permissions:     permissions,
		locks:           locks,
		slotCache:       slotCache,
		auditService:    auditService,
	}
}

// ListAvailableSlots returns the open slot start times for a doctor on a date
// (format YYYY-MM-DD), ascending. Served from the Redis cache when possible.
func (u *appointmentUsecase) ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.SlotListResponse, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return nil, ErrInvalidDateTime
	}

	if u.slotCache != nil {
		if slots, ok := u.slotCache.Get(ctx, doctorID, day); ok {
			// A cached entry may predate slots slipping into the past.
			return converter.SlotsToResponse(doctorID, day, futureSlots(slots, time.Now().UTC())), nil
		}
	}

	slots, err := retryRead(u.log, func() ([]time.Time, error) {
		return u.availability.SlotsFor(ctx, doctorID, day)
	})
	if err != nil {
		u.log.Warnf("Failed to compute slots for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	if u.slotCache != nil {
		u.slotCache.Set(ctx, doctorID, day, slots)
	}
	return converter.SlotsToResponse(doctorID, day, slots), nil
}

// Get returns a single appointment. The actor must own it or hold the
// read-all capability.
func (u *appointmentUsecase) Get(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := retryRead(u.log, func() (*entity.Appointment, error) {
		return u.appointmentRepo.FindByID(ctx, appointmentID)
	})
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !u.permissions.CanAccess(actor, appointment) {
		return nil, ErrForbidden
	}
	return converter.AppointmentToResponse(appointment), nil
}

// Book creates a new scheduled appointment.
//
// Preconditions are checked in order, first failure wins:
// 1. Patient exists
// 2. Doctor exists, approved and available
// 3. Requested time strictly in the future
// 4. Slot free of the 60-minute conflict window
//
// The free check and insert run under the doctor's lock and the check is
// re-evaluated there, so two racing bookings for overlapping windows resolve
// to exactly one success.
func (u *appointmentUsecase) Book(ctx context.Context, actor entity.Actor, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	patientID, err := u.resolvePatientID(actor, req.PatientID)
	if err != nil {
		return nil, err
	}

	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	at = at.UTC()

	if req.DurationMinutes != 0 && req.DurationMinutes != entity.AppointmentDurationMinutes {
		return nil, ErrInvalidDuration
	}

	// Step 1: patient must exist
	patient, err := u.patientRepo.FindByUserID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	// Step 2: doctor must exist, be approved and available
	doctor, err := u.doctorRepo.FindByUserID(ctx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsBookable() {
		return nil, ErrDoctorUnavailable
	}

	// Step 3: strictly future-dated
	if !at.After(time.Now().UTC()) {
		return nil, ErrPastDate
	}

	// Step 4: conflict check and insert, serialized per doctor. The check
	// runs after acquiring the lock, not only before.
	unlock := u.locks.Lock(req.DoctorID)
	defer unlock()

	free, err := u.availability.IsFree(ctx, req.DoctorID, at, uuid.Nil)
	if err != nil {
		u.log.Warnf("Failed availability check for doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if !free {
		return nil, ErrSlotTaken
	}

	appointment := &entity.Appointment{
		PatientID:       patientID,
		DoctorID:        req.DoctorID,
		ScheduledAt:     at,
		DurationMinutes: entity.AppointmentDurationMinutes,
		Description:     req.Description,
		Status:          entity.AppointmentStatusScheduled,
		Fee:             doctor.ConsultationFee,
	}

	if err := u.appointmentRepo.Create(ctx, appointment); err != nil {
		u.log.Errorf("Failed to insert appointment: %+v", err)
		return nil, err
	}

	u.afterWrite(ctx, actor, entity.AuditActionAppointmentBook, appointment, nil)

	u.log.Infof("Appointment booked: id=%s, doctor=%s, at=%s", appointment.ID, req.DoctorID, at.Format(time.RFC3339))
	return u.reload(ctx, appointment)
}

// Confirm transitions a scheduled appointment to confirmed.
// Only the owning doctor may confirm.
func (u *appointmentUsecase) Confirm(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) error {
	appointment, err := u.findOwned(ctx, actor, appointmentID, service.OperationConfirm)
	if err != nil {
		return err
	}

	unlock := u.locks.Lock(appointment.DoctorID)
	defer unlock()

	// Re-read under the lock; a concurrent cancel may have committed
	// between the first read and lock acquisition.
	appointment, err = u.findOwned(ctx, actor, appointmentID, service.OperationConfirm)
	if err != nil {
		return err
	}
	if !appointment.CanConfirm() {
		return ErrInvalidTransition
	}

	appointment.Status = entity.AppointmentStatusConfirmed
	appointment.UpdatedAt = time.Now().UTC()
	if err := u.appointmentRepo.Update(ctx, appointment); err != nil {
		u.log.Warnf("Failed to confirm appointment %s: %+v", appointmentID, err)
		return err
	}

	u.afterWrite(ctx, actor, entity.AuditActionAppointmentConfirm, appointment, nil)

	u.log.Infof("Appointment confirmed: id=%s", appointmentID)
	return nil
}

// Cancel transitions an appointment to cancelled. Either owning party may
// cancel a future appointment. Cancelling an already-cancelled appointment
// is a no-op success, which makes cancel safe to retry.
func (u *appointmentUsecase) Cancel(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) error {
	appointment, err := u.findOwned(ctx, actor, appointmentID, service.OperationCancel)
	if err != nil {
		return err
	}

	if appointment.IsCancelled() {
		return nil
	}
	if !appointment.CanCancel() {
		return ErrInvalidTransition
	}
	if !appointment.ScheduledAt.After(time.Now().UTC()) {
		return ErrInvalidTransition
	}

	unlock := u.locks.Lock(appointment.DoctorID)
	defer unlock()

	// Guarded update; zero affected rows means a concurrent cancel won,
	// which is still a success for this caller.
	affected, err := u.appointmentRepo.CancelIfActive(ctx, appointmentID, time.Now().UTC())
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return err
	}
	if affected == 0 {
		return nil
	}

	u.afterWrite(ctx, actor, entity.AuditActionAppointmentCancel, appointment, entity.AppointmentStatusCancelled)

	u.log.Infof("Appointment cancelled: id=%s", appointmentID)
	return nil
}

// Reschedule moves an appointment to a new time for the same doctor. The
// record is updated in place and its status becomes rescheduled; no new
// record is spawned. The appointment's own current slot is excluded from the
// conflict check.
func (u *appointmentUsecase) Reschedule(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	newTime, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	newTime = newTime.UTC()

	appointment, err := u.findOwned(ctx, actor, appointmentID, service.OperationReschedule)
	if err != nil {
		return nil, err
	}

	unlock := u.locks.Lock(appointment.DoctorID)
	defer unlock()

	// The state guards must run under the lock: re-read so a cancel that
	// committed since the first read cannot be overwritten back to active.
	appointment, err = u.findOwned(ctx, actor, appointmentID, service.OperationReschedule)
	if err != nil {
		return nil, err
	}

	if !appointment.CanReschedule() {
		return nil, ErrInvalidTransition
	}
	now := time.Now().UTC()
	if !appointment.ScheduledAt.After(now) {
		return nil, ErrInvalidTransition
	}
	if !newTime.After(now) {
		return nil, ErrPastDate
	}

	free, err := u.availability.IsFree(ctx, appointment.DoctorID, newTime, appointment.ID)
	if err != nil {
		u.log.Warnf("Failed availability check for doctor %s: %+v", appointment.DoctorID, err)
		return nil, err
	}
	if !free {
		return nil, ErrSlotTaken
	}

	oldTime := appointment.ScheduledAt
	appointment.ScheduledAt = newTime
	appointment.Status = entity.AppointmentStatusRescheduled
	appointment.UpdatedAt = now
	if err := u.appointmentRepo.Update(ctx, appointment); err != nil {
		u.log.Warnf("Failed to reschedule appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	u.afterWrite(ctx, actor, entity.AuditActionAppointmentReschedule, appointment, oldTime)

	u.log.Infof("Appointment rescheduled: id=%s, from=%s, to=%s", appointmentID, oldTime.Format(time.RFC3339), newTime.Format(time.RFC3339))
	return u.reload(ctx, appointment)
}

// ListUpcoming returns future non-cancelled appointments ascending, scoped to
// the actor's own records unless the actor can read all.
func (u *appointmentUsecase) ListUpcoming(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	ownerID, ownerRole := listScope(actor)

	appointments, err := retryRead(u.log, func() ([]entity.Appointment, error) {
		return u.appointmentRepo.FindUpcoming(ctx, ownerID, ownerRole, time.Now().UTC())
	})
	if err != nil {
		u.log.Warnf("Failed to list upcoming appointments for %s: %+v", actor.UserID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// ListHistory returns past or terminal appointments descending, scoped like
// ListUpcoming.
func (u *appointmentUsecase) ListHistory(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	ownerID, ownerRole := listScope(actor)

	appointments, err := retryRead(u.log, func() ([]entity.Appointment, error) {
		return u.appointmentRepo.FindHistory(ctx, ownerID, ownerRole, time.Now().UTC())
	})
	if err != nil {
		u.log.Warnf("Failed to list appointment history for %s: %+v", actor.UserID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// findOwned loads the appointment and checks the actor may apply op to it.
func (u *appointmentUsecase) findOwned(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, op service.AppointmentOperation) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !u.permissions.CanMutate(actor, appointment, op) {
		return nil, ErrForbidden
	}
	return appointment, nil
}

// resolvePatientID determines whose appointment is being booked. Patients
// book for themselves; an actor with the override capability may book on
// behalf of a given patient.
func (u *appointmentUsecase) resolvePatientID(actor entity.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if actor.IsPatient() {
		return actor.UserID, nil
	}
	if actor.Can(entity.CapabilityOverride) && requested != nil {
		return *requested, nil
	}
	return uuid.Nil, ErrForbidden
}

// afterWrite records the audit trail entry and drops cached slot listings
// for the doctor. Both are non-fatal; the write has already committed.
func (u *appointmentUsecase) afterWrite(ctx context.Context, actor entity.Actor, action string, appointment *entity.Appointment, detail interface{}) {
	userID := actor.UserID
	metadata := entity.JSON{
		"status":       string(appointment.Status),
		"scheduled_at": appointment.ScheduledAt.Format(time.RFC3339),
	}
	if detail != nil {
		metadata["detail"] = detail
	}
	if err := u.auditService.LogUpdate(ctx, &userID, action, "appointment", appointment.ID.String(), nil, metadata); err != nil {
		u.log.Warnf("Failed to audit %s for appointment %s (non-fatal): %+v", action, appointment.ID, err)
	}

	if u.slotCache != nil {
		u.slotCache.Invalidate(ctx, appointment.DoctorID)
	}
}

// reload fetches the appointment with its relations for the response,
// falling back to the bare record if the reload fails.
func (u *appointmentUsecase) reload(ctx context.Context, appointment *entity.Appointment) (*dto.AppointmentResponse, error) {
	full, err := u.appointmentRepo.FindByID(ctx, appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

// listScope returns the ownership filter for list queries: unscoped for
// actors with the read-all capability, otherwise the actor's own records.
func listScope(actor entity.Actor) (uuid.UUID, int) {
	if actor.Can(entity.CapabilityReadAll) {
		return uuid.Nil, 0
	}
	return actor.UserID, actor.RoleID
}

// futureSlots keeps only start times strictly after now. Freshly computed
// listings are already filtered by AvailabilityService; cached ones are not.
func futureSlots(slots []time.Time, now time.Time) []time.Time {
	out := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		if s.After(now) {
			out = append(out, s)
		}
	}
	return out
}

// retryRead re-invokes fn exactly once when it fails with an infrastructure
// fault. Domain errors are deterministic and are never retried. Only pure
// read paths may use this; writes surface infrastructure errors directly.
func retryRead[T any](log *logrus.Logger, fn func() (T, error)) (T, error) {
	out, err := fn()
	if err != nil && !apperr.IsDomain(err) {
		log.Warnf("Read failed, retrying once: %+v", err)
		out, err = fn()
	}
	return out, err
}
