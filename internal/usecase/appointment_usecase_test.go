package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"go-consultation-booking/internal/delivery/dto"
	"go-consultation-booking/internal/domain/entity"
	"go-consultation-booking/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	uc           AppointmentUsecase
	appointments *fakeAppointmentRepo
	doctors      *fakeDoctorRepo
	patients     *fakePatientRepo
	audit        *fakeAuditRepo

	doctorID  uuid.UUID
	patientID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	appointments := newFakeAppointmentRepo()
	doctors := newFakeDoctorRepo()
	patients := newFakePatientRepo()
	auditRepo := newFakeAuditRepo()

	calendar := service.NewSlotCalendar()
	availability := service.NewAvailabilityService(log, doctors, appointments, calendar)
	permissions := service.NewPermissionService()
	locks := service.NewDoctorLockService(log)
	t.Cleanup(locks.Stop)
	auditService := service.NewAuditService(log, auditRepo)

	env := &testEnv{
		uc:           NewAppointmentUsecase(log, appointments, patients, doctors, availability, permissions, locks, nil, auditService),
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		audit:        auditRepo,
		doctorID:     uuid.New(),
		patientID:    uuid.New(),
	}

	doctors.Create(context.Background(), &entity.DoctorProfile{
		UserID:          env.doctorID,
		LicenseNumber:   "LIC-1001",
		Specialization:  "Cardiology",
		ConsultationFee: decimal.RequireFromString("150.00"),
		IsApproved:      true,
		IsAvailable:     true,
		WorkdayStart:    entity.DefaultWorkdayStart,
		WorkdayEnd:      entity.DefaultWorkdayEnd,
	})
	patients.Create(context.Background(), &entity.PatientProfile{
		UserID:      env.patientID,
		DateOfBirth: time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
		Gender:      entity.GenderMale,
	})

	return env
}

func (e *testEnv) patient() entity.Actor {
	return entity.Actor{UserID: e.patientID, RoleID: entity.RoleIDPatient}
}

func (e *testEnv) doctor() entity.Actor {
	return entity.Actor{UserID: e.doctorID, RoleID: entity.RoleIDDoctor}
}

func (e *testEnv) admin() entity.Actor {
	return entity.Actor{UserID: uuid.New(), RoleID: entity.RoleIDAdmin}
}

// tomorrowAt returns tomorrow at the given wall clock time in UTC, which is
// always strictly in the future.
func tomorrowAt(hour, min int) time.Time {
	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func (e *testEnv) book(t *testing.T, at time.Time) uuid.UUID {
	t.Helper()
	resp, err := e.uc.Book(context.Background(), e.patient(), bookReq(e.doctorID, at))
	require.NoError(t, err)
	return resp.ID
}

func bookReq(doctorID uuid.UUID, at time.Time) *dto.BookAppointmentRequest {
	return &dto.BookAppointmentRequest{
		DoctorID:    doctorID,
		ScheduledAt: at.Format(time.RFC3339),
	}
}

func rescheduleReq(at time.Time) *dto.RescheduleAppointmentRequest {
	return &dto.RescheduleAppointmentRequest{ScheduledAt: at.Format(time.RFC3339)}
}

func TestBookAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("books a free future slot", func(t *testing.T) {
		env := newTestEnv(t)
		at := tomorrowAt(10, 0)

		resp, err := env.uc.Book(ctx, env.patient(), bookReq(env.doctorID, at))
		require.NoError(t, err)

		assert.Equal(t, string(entity.AppointmentStatusScheduled), resp.Status)
		assert.Equal(t, env.patientID, resp.PatientID)
		assert.Equal(t, env.doctorID, resp.DoctorID)
		assert.True(t, resp.ScheduledAt.Equal(at))
		assert.Equal(t, entity.AppointmentDurationMinutes, resp.DurationMinutes)
		assert.True(t, resp.Fee.Equal(decimal.RequireFromString("150.00")))
		assert.Contains(t, env.audit.actions(), entity.AuditActionAppointmentBook)
	})

	t.Run("fee is snapshotted at booking time", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		// Raise the doctor's fee after booking
		profile, _ := env.doctors.FindByUserID(ctx, env.doctorID)
		profile.ConsultationFee = decimal.RequireFromString("300.00")
		require.NoError(t, env.doctors.Update(ctx, profile))

		stored, err := env.appointments.FindByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, stored.Fee.Equal(decimal.RequireFromString("150.00")))
	})

	t.Run("rejects a time within the conflict window", func(t *testing.T) {
		env := newTestEnv(t)
		env.book(t, tomorrowAt(10, 0))

		_, err := env.uc.Book(ctx, env.patient(), bookReq(env.doctorID, tomorrowAt(10, 20)))
		assert.ErrorIs(t, err, ErrSlotTaken)

		_, err = env.uc.Book(ctx, env.patient(), bookReq(env.doctorID, tomorrowAt(10, 59)))
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("a gap of exactly the conflict window is allowed", func(t *testing.T) {
		env := newTestEnv(t)
		env.book(t, tomorrowAt(10, 0))

		_, err := env.uc.Book(ctx, env.patient(), bookReq(env.doctorID, tomorrowAt(11, 0)))
		assert.NoError(t, err)
	})

	t.Run("cancelled appointments do not block the slot", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))
		require.NoError(t, env.uc.Cancel(ctx, env.patient(), id))

		_, err := env.uc.Book(ctx, env.patient(), bookReq(env.doctorID, tomorrowAt(10, 0)))
		assert.NoError(t, err)
	})

	t.Run("rejects past times", func(t *testing.T) {
		env := newTestEnv(t)
		req := bookReq(env.doctorID, time.Now().UTC().Add(-time.Hour))

		_, err := env.uc.Book(ctx, env.patient(), req)
		assert.ErrorIs(t, err, ErrPastDate)
	})

	t.Run("rejects durations other than the planning unit", func(t *testing.T) {
		env := newTestEnv(t)
		req := bookReq(env.doctorID, tomorrowAt(10, 0))
		req.DurationMinutes = 45

		_, err := env.uc.Book(ctx, env.patient(), req)
		assert.ErrorIs(t, err, ErrInvalidDuration)

		// Zero means default and thirty is the unit itself
		req.DurationMinutes = entity.AppointmentDurationMinutes
		_, err = env.uc.Book(ctx, env.patient(), req)
		assert.NoError(t, err)
	})

	t.Run("rejects unknown doctor", func(t *testing.T) {
		env := newTestEnv(t)
		req := bookReq(uuid.New(), tomorrowAt(10, 0))

		_, err := env.uc.Book(ctx, env.patient(), req)
		assert.ErrorIs(t, err, ErrDoctorNotFound)
	})

	t.Run("rejects unapproved or unavailable doctor", func(t *testing.T) {
		env := newTestEnv(t)
		profile, _ := env.doctors.FindByUserID(ctx, env.doctorID)
		profile.IsAvailable = false
		require.NoError(t, env.doctors.Update(ctx, profile))

		_, err := env.uc.Book(ctx, env.patient(), bookReq(env.doctorID, tomorrowAt(10, 0)))
		assert.ErrorIs(t, err, ErrDoctorUnavailable)
	})

	t.Run("admin may book on behalf of a patient", func(t *testing.T) {
		env := newTestEnv(t)
		req := bookReq(env.doctorID, tomorrowAt(10, 0))
		req.PatientID = &env.patientID

		resp, err := env.uc.Book(ctx, env.admin(), req)
		require.NoError(t, err)
		assert.Equal(t, env.patientID, resp.PatientID)
	})

	t.Run("admin booking for an unknown patient fails before the doctor check", func(t *testing.T) {
		env := newTestEnv(t)
		unknown := uuid.New()
		// unknown doctor too, to prove the patient check runs first
		req := bookReq(uuid.New(), tomorrowAt(10, 0))
		req.PatientID = &unknown

		_, err := env.uc.Book(ctx, env.admin(), req)
		assert.ErrorIs(t, err, ErrPatientNotFound)
	})

	t.Run("doctor without override cannot book for others", func(t *testing.T) {
		env := newTestEnv(t)
		req := bookReq(env.doctorID, tomorrowAt(10, 0))
		req.PatientID = &env.patientID

		_, err := env.uc.Book(ctx, env.doctor(), req)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("rejects malformed timestamps", func(t *testing.T) {
		env := newTestEnv(t)
		req := bookReq(env.doctorID, tomorrowAt(10, 0))
		req.ScheduledAt = "tomorrow at ten"

		_, err := env.uc.Book(ctx, env.patient(), req)
		assert.ErrorIs(t, err, ErrInvalidDateTime)
	})
}

func TestBookAppointmentRace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Same doctor, overlapping windows: exactly one booking may win.
	times := []time.Time{
		tomorrowAt(10, 0),
		tomorrowAt(10, 0),
		tomorrowAt(10, 30),
		tomorrowAt(10, 30),
		tomorrowAt(10, 15),
		tomorrowAt(10, 0),
		tomorrowAt(10, 45),
		tomorrowAt(10, 15),
	}

	var wg sync.WaitGroup
	results := make([]error, len(times))
	for i, at := range times {
		wg.Add(1)
		go func(i int, at time.Time) {
			defer wg.Done()
			req := bookReq(env.doctorID, at)
			_, err := env.uc.Book(ctx, env.patient(), req)
			results[i] = err
		}(i, at)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, len(times)-1, conflicts)
}

func TestBookAppointmentDistinctDoctorsDoNotInterfere(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	otherDoctor := uuid.New()
	env.doctors.Create(ctx, &entity.DoctorProfile{
		UserID:          otherDoctor,
		LicenseNumber:   "LIC-1002",
		Specialization:  "Dermatology",
		ConsultationFee: decimal.RequireFromString("90.00"),
		IsApproved:      true,
		IsAvailable:     true,
		WorkdayStart:    entity.DefaultWorkdayStart,
		WorkdayEnd:      entity.DefaultWorkdayEnd,
	})

	at := tomorrowAt(10, 0)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, doctorID := range []uuid.UUID{env.doctorID, otherDoctor} {
		wg.Add(1)
		go func(i int, doctorID uuid.UUID) {
			defer wg.Done()
			req := bookReq(doctorID, at)
			_, err := env.uc.Book(ctx, env.patient(), req)
			errs[i] = err
		}(i, doctorID)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestConfirmAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("owning doctor confirms a scheduled appointment", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		require.NoError(t, env.uc.Confirm(ctx, env.doctor(), id))

		stored, _ := env.appointments.FindByID(ctx, id)
		assert.Equal(t, entity.AppointmentStatusConfirmed, stored.Status)
	})

	t.Run("patient cannot confirm", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		err := env.uc.Confirm(ctx, env.patient(), id)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("another doctor cannot confirm", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		other := entity.Actor{UserID: uuid.New(), RoleID: entity.RoleIDDoctor}
		err := env.uc.Confirm(ctx, other, id)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin override may confirm", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		assert.NoError(t, env.uc.Confirm(ctx, env.admin(), id))
	})

	t.Run("confirm is only legal from scheduled", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))
		require.NoError(t, env.uc.Confirm(ctx, env.doctor(), id))

		err := env.uc.Confirm(ctx, env.doctor(), id)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.uc.Confirm(ctx, env.doctor(), uuid.New())
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("a cancel landing before the lock wins over confirm", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		// Cancel commits between confirm's first read and its locked
		// re-read, as a concurrent request would.
		env.appointments.afterFindByID = func() {
			env.appointments.afterFindByID = nil
			_, err := env.appointments.CancelIfActive(ctx, id, time.Now().UTC())
			require.NoError(t, err)
		}

		err := env.uc.Confirm(ctx, env.doctor(), id)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		stored, _ := env.appointments.FindByID(ctx, id)
		assert.Equal(t, entity.AppointmentStatusCancelled, stored.Status)
	})
}

func TestCancelAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("patient cancels own future appointment", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		require.NoError(t, env.uc.Cancel(ctx, env.patient(), id))

		stored, _ := env.appointments.FindByID(ctx, id)
		assert.Equal(t, entity.AppointmentStatusCancelled, stored.Status)
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		require.NoError(t, env.uc.Cancel(ctx, env.patient(), id))
		assert.NoError(t, env.uc.Cancel(ctx, env.patient(), id))
	})

	t.Run("owning doctor may cancel", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		assert.NoError(t, env.uc.Cancel(ctx, env.doctor(), id))
	})

	t.Run("unrelated patient cannot cancel", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		other := entity.Actor{UserID: uuid.New(), RoleID: entity.RoleIDPatient}
		err := env.uc.Cancel(ctx, other, id)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("past appointments cannot be cancelled", func(t *testing.T) {
		env := newTestEnv(t)
		past := &entity.Appointment{
			ID:          uuid.New(),
			PatientID:   env.patientID,
			DoctorID:    env.doctorID,
			ScheduledAt: time.Now().UTC().Add(-2 * time.Hour),
			Status:      entity.AppointmentStatusScheduled,
		}
		require.NoError(t, env.appointments.Create(ctx, past))

		err := env.uc.Cancel(ctx, env.patient(), past.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("completed appointments cannot be cancelled", func(t *testing.T) {
		env := newTestEnv(t)
		done := &entity.Appointment{
			ID:          uuid.New(),
			PatientID:   env.patientID,
			DoctorID:    env.doctorID,
			ScheduledAt: tomorrowAt(10, 0),
			Status:      entity.AppointmentStatusCompleted,
		}
		require.NoError(t, env.appointments.Create(ctx, done))

		err := env.uc.Cancel(ctx, env.patient(), done.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestRescheduleAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the appointment in place", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))
		newTime := tomorrowAt(14, 0)

		resp, err := env.uc.Reschedule(ctx, env.patient(), id, rescheduleReq(newTime))
		require.NoError(t, err)

		assert.Equal(t, id, resp.ID)
		assert.Equal(t, string(entity.AppointmentStatusRescheduled), resp.Status)
		assert.True(t, resp.ScheduledAt.Equal(newTime))
	})

	t.Run("own slot does not conflict with itself", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		// Nudge within the old window; only the appointment itself occupies it
		_, err := env.uc.Reschedule(ctx, env.patient(), id, rescheduleReq(tomorrowAt(10, 30)))
		assert.NoError(t, err)
	})

	t.Run("conflicts with another appointment are rejected", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))
		env.book(t, tomorrowAt(14, 0))

		_, err := env.uc.Reschedule(ctx, env.patient(), id, rescheduleReq(tomorrowAt(14, 30)))
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("new time must be in the future", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		_, err := env.uc.Reschedule(ctx, env.patient(), id, rescheduleReq(time.Now().UTC().Add(-time.Hour)))
		assert.ErrorIs(t, err, ErrPastDate)
	})

	t.Run("cancelled appointments cannot be rescheduled", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))
		require.NoError(t, env.uc.Cancel(ctx, env.patient(), id))

		_, err := env.uc.Reschedule(ctx, env.patient(), id, rescheduleReq(tomorrowAt(14, 0)))
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("a rescheduled appointment may be rescheduled again", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		_, err := env.uc.Reschedule(ctx, env.patient(), id, rescheduleReq(tomorrowAt(14, 0)))
		require.NoError(t, err)
		_, err = env.uc.Reschedule(ctx, env.patient(), id, rescheduleReq(tomorrowAt(16, 0)))
		assert.NoError(t, err)
	})

	t.Run("a cancel landing before the lock wins over reschedule", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))
		original := tomorrowAt(10, 0)

		env.appointments.afterFindByID = func() {
			env.appointments.afterFindByID = nil
			_, err := env.appointments.CancelIfActive(ctx, id, time.Now().UTC())
			require.NoError(t, err)
		}

		_, err := env.uc.Reschedule(ctx, env.patient(), id, rescheduleReq(tomorrowAt(14, 0)))
		assert.ErrorIs(t, err, ErrInvalidTransition)

		// The cancelled record is not resurrected or moved.
		stored, _ := env.appointments.FindByID(ctx, id)
		assert.Equal(t, entity.AppointmentStatusCancelled, stored.Status)
		assert.True(t, stored.ScheduledAt.Equal(original))
	})
}

func TestListAvailableSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("full workday yields eighteen slots", func(t *testing.T) {
		env := newTestEnv(t)
		date := tomorrowAt(0, 0)

		resp, err := env.uc.ListAvailableSlots(ctx, env.doctorID, date.Format("2006-01-02"))
		require.NoError(t, err)

		require.Len(t, resp.Slots, 18)
		assert.Equal(t, 18, resp.Total)
		assert.True(t, resp.Slots[0].Equal(tomorrowAt(9, 0)))
		assert.True(t, resp.Slots[17].Equal(tomorrowAt(17, 30)))
		for i := 1; i < len(resp.Slots); i++ {
			assert.True(t, resp.Slots[i-1].Before(resp.Slots[i]))
		}
	})

	t.Run("a booking blocks every slot inside its conflict window", func(t *testing.T) {
		env := newTestEnv(t)
		env.book(t, tomorrowAt(10, 0))
		date := tomorrowAt(0, 0)

		resp, err := env.uc.ListAvailableSlots(ctx, env.doctorID, date.Format("2006-01-02"))
		require.NoError(t, err)

		// 09:30, 10:00 and 10:30 are gone; 09:00 and 11:00 survive
		assert.Len(t, resp.Slots, 15)
		for _, s := range resp.Slots {
			assert.False(t, s.Equal(tomorrowAt(9, 30)))
			assert.False(t, s.Equal(tomorrowAt(10, 0)))
			assert.False(t, s.Equal(tomorrowAt(10, 30)))
		}
	})

	t.Run("unavailable doctor has no slots", func(t *testing.T) {
		env := newTestEnv(t)
		profile, _ := env.doctors.FindByUserID(ctx, env.doctorID)
		profile.IsAvailable = false
		require.NoError(t, env.doctors.Update(ctx, profile))

		resp, err := env.uc.ListAvailableSlots(ctx, env.doctorID, tomorrowAt(0, 0).Format("2006-01-02"))
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.uc.ListAvailableSlots(ctx, env.doctorID, "next tuesday")
		assert.ErrorIs(t, err, ErrInvalidDateTime)
	})
}

func TestGetAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("owning parties and admin may read", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		for _, actor := range []entity.Actor{env.patient(), env.doctor(), env.admin()} {
			resp, err := env.uc.Get(ctx, actor, id)
			require.NoError(t, err)
			assert.Equal(t, id, resp.ID)
			assert.Equal(t, env.patientID, resp.PatientID)
		}
	})

	t.Run("unrelated actors cannot read", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))

		otherPatient := entity.Actor{UserID: uuid.New(), RoleID: entity.RoleIDPatient}
		_, err := env.uc.Get(ctx, otherPatient, id)
		assert.ErrorIs(t, err, ErrForbidden)

		otherDoctor := entity.Actor{UserID: uuid.New(), RoleID: entity.RoleIDDoctor}
		_, err = env.uc.Get(ctx, otherDoctor, id)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.uc.Get(ctx, env.patient(), uuid.New())
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})
}

func TestFutureSlots(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	cached := []time.Time{
		now.Add(-30 * time.Minute),
		now,
		now.Add(30 * time.Minute),
		now.Add(time.Hour),
	}

	// A cached listing may contain starts that slipped into the past
	// during its lifetime; they must never be served.
	got := futureSlots(cached, now)
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(now.Add(30*time.Minute)))
	assert.True(t, got[1].Equal(now.Add(time.Hour)))

	assert.Empty(t, futureSlots(nil, now))
}

func TestListAppointments(t *testing.T) {
	ctx := context.Background()

	t.Run("patient sees only their own upcoming appointments", func(t *testing.T) {
		env := newTestEnv(t)
		env.book(t, tomorrowAt(10, 0))

		otherPatient := uuid.New()
		env.patients.Create(ctx, &entity.PatientProfile{UserID: otherPatient, DateOfBirth: time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC), Gender: entity.GenderFemale})
		other := entity.Actor{UserID: otherPatient, RoleID: entity.RoleIDPatient}
		_, err := env.uc.Book(ctx, other, bookReq(env.doctorID, tomorrowAt(14, 0)))
		require.NoError(t, err)

		mine, err := env.uc.ListUpcoming(ctx, env.patient())
		require.NoError(t, err)
		assert.Equal(t, 1, mine.Total)
		assert.Equal(t, env.patientID, mine.Appointments[0].PatientID)
	})

	t.Run("doctor sees all appointments on their calendar", func(t *testing.T) {
		env := newTestEnv(t)
		env.book(t, tomorrowAt(10, 0))
		env.book(t, tomorrowAt(14, 0))

		resp, err := env.uc.ListUpcoming(ctx, env.doctor())
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		env := newTestEnv(t)
		env.book(t, tomorrowAt(10, 0))

		resp, err := env.uc.ListUpcoming(ctx, env.admin())
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("cancelled appointments drop out of upcoming", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))
		require.NoError(t, env.uc.Cancel(ctx, env.patient(), id))

		resp, err := env.uc.ListUpcoming(ctx, env.patient())
		require.NoError(t, err)
		assert.Zero(t, resp.Total)
	})

	t.Run("history returns past and terminal records", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.book(t, tomorrowAt(10, 0))
		require.NoError(t, env.uc.Cancel(ctx, env.patient(), id))

		resp, err := env.uc.ListHistory(ctx, env.patient())
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("a transient read fault is retried once", func(t *testing.T) {
		env := newTestEnv(t)
		env.book(t, tomorrowAt(10, 0))
		env.appointments.failListOnce = errors.New("connection reset")

		resp, err := env.uc.ListUpcoming(ctx, env.patient())
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
	})
}
