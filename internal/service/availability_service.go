package service

import (
	"context"
	"time"

	"go-consultation-booking/internal/domain/entity"
	"go-consultation-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AvailabilityService computes open consultation slots for a doctor and is the
// authoritative conflict gate before any booking or reschedule write.
type AvailabilityService struct {
	log             *logrus.Logger
	doctorRepo      repository.DoctorProfileRepository
	appointmentRepo repository.AppointmentRepository
	calendar        *SlotCalendar
}

func NewAvailabilityService(
	log *logrus.Logger,
	doctorRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	calendar *SlotCalendar,
) *AvailabilityService {
	return &AvailabilityService{
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		calendar:        calendar,
	}
}

// SlotsFor returns the open candidate start times for the doctor on the given
// calendar date, ascending. An unapproved or unavailable doctor yields an
// empty sequence. Slots at or before now and slots inside the conflict window
// of an existing non-cancelled appointment are removed.
func (s *AvailabilityService) SlotsFor(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]time.Time, error) {
	doctor, err := s.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil || !doctor.IsBookable() {
		return []time.Time{}, nil
	}

	dayStart := date.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	existing, err := s.appointmentRepo.FindBlockingByDoctor(ctx, doctorID, dayStart, dayEnd, uuid.Nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	open := make([]time.Time, 0)
	for _, candidate := range s.calendar.Enumerate(date, doctor.WorkdayStart, doctor.WorkdayEnd) {
		if !candidate.After(now) {
			continue
		}
		if conflictsWithAny(existing, candidate) {
			continue
		}
		open = append(open, candidate)
	}
	return open, nil
}

// IsFree reports whether no non-cancelled appointment of the doctor lies
// within the conflict window of at. The enumerated slot list is advisory;
// this check is the invariant enforcer and must be re-evaluated under the
// doctor's lock before every write. excludeID skips the appointment being
// rescheduled (uuid.Nil = no exclusion).
func (s *AvailabilityService) IsFree(ctx context.Context, doctorID uuid.UUID, at time.Time, excludeID uuid.UUID) (bool, error) {
	from := at.Add(-entity.ConflictWindow)
	to := at.Add(entity.ConflictWindow)

	existing, err := s.appointmentRepo.FindBlockingByDoctor(ctx, doctorID, from, to, excludeID)
	if err != nil {
		return false, err
	}
	return !conflictsWithAny(existing, at), nil
}

func conflictsWithAny(appointments []entity.Appointment, t time.Time) bool {
	for i := range appointments {
		if appointments[i].ConflictsWith(t) {
			return true
		}
	}
	return false
}
