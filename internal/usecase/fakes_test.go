package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-consultation-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// in-memory repository fakes used across the usecase tests

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Appointment

	// failListOnce makes the next list call fail once with the given error
	failListOnce error

	// afterFindByID runs after each FindByID, outside the repo mutex.
	// Used to interleave a concurrent write between a read and the
	// caller's next step.
	afterFindByID func()
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{items: map[uuid.UUID]*entity.Appointment{}}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	cp := *appointment
	r.items[appointment.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	var out *entity.Appointment
	if a, ok := r.items[id]; ok {
		cp := *a
		out = &cp
	}
	hook := r.afterFindByID
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindBlockingByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time, excludeID uuid.UUID) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.items {
		if a.DoctorID != doctorID || a.ID == excludeID || !a.BlocksSlot() {
			continue
		}
		if !from.IsZero() && a.ScheduledAt.Before(from) {
			continue
		}
		if !to.IsZero() && !a.ScheduledAt.Before(to) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindUpcoming(ctx context.Context, ownerID uuid.UUID, ownerRole int, now time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failListOnce != nil {
		err := r.failListOnce
		r.failListOnce = nil
		return nil, err
	}
	var out []entity.Appointment
	for _, a := range r.items {
		if a.IsCancelled() || !a.ScheduledAt.After(now) {
			continue
		}
		if !r.owned(a, ownerID, ownerRole) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *fakeAppointmentRepo) FindHistory(ctx context.Context, ownerID uuid.UUID, ownerRole int, now time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.items {
		if a.ScheduledAt.After(now) && !a.IsTerminal() {
			continue
		}
		if !r.owned(a, ownerID, ownerRole) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return out, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *appointment
	r.items[appointment.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) CancelIfActive(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.IsCancelled() {
		return 0, nil
	}
	a.Status = entity.AppointmentStatusCancelled
	a.UpdatedAt = at
	return 1, nil
}

func (r *fakeAppointmentRepo) owned(a *entity.Appointment, ownerID uuid.UUID, ownerRole int) bool {
	switch ownerRole {
	case entity.RoleIDPatient:
		return a.PatientID == ownerID
	case entity.RoleIDDoctor:
		return a.DoctorID == ownerID
	}
	return true
}

type fakeDoctorRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.DoctorProfile
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{items: map[uuid.UUID]*entity.DoctorProfile{}}
}

func (r *fakeDoctorRepo) Create(ctx context.Context, profile *entity.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.items[profile.UserID] = &cp
	return nil
}

func (r *fakeDoctorRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeDoctorRepo) FindAvailable(ctx context.Context) ([]entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DoctorProfile
	for _, p := range r.items {
		if p.IsBookable() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeDoctorRepo) FindPending(ctx context.Context) ([]entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DoctorProfile
	for _, p := range r.items {
		if !p.IsApproved {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeDoctorRepo) Search(ctx context.Context, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DoctorProfile
	for _, p := range r.items {
		if filter.Specialization != "" && p.Specialization != filter.Specialization {
			continue
		}
		if filter.MinExperience > 0 && p.ExperienceYears < filter.MinExperience {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeDoctorRepo) Specializations(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, p := range r.items {
		if !seen[p.Specialization] {
			seen[p.Specialization] = true
			out = append(out, p.Specialization)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeDoctorRepo) Update(ctx context.Context, profile *entity.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.items[profile.UserID] = &cp
	return nil
}

func (r *fakeDoctorRepo) Delete(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[userID]; !ok {
		return 0, nil
	}
	delete(r.items, userID)
	return 1, nil
}

type fakePatientRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.PatientProfile
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{items: map[uuid.UUID]*entity.PatientProfile{}}
}

func (r *fakePatientRepo) Create(ctx context.Context, profile *entity.PatientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.items[profile.UserID] = &cp
	return nil
}

func (r *fakePatientRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.PatientProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) Update(ctx context.Context, profile *entity.PatientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.items[profile.UserID] = &cp
	return nil
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []entity.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = int64(len(r.logs) + 1)
	log.CreatedAt = time.Now().UTC()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeAuditRepo) FindAll(ctx context.Context, limit, offset int) ([]entity.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := int64(len(r.logs))
	if offset >= len(r.logs) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(r.logs) {
		end = len(r.logs)
	}
	out := make([]entity.AuditLog, end-offset)
	copy(out, r.logs[offset:end])
	return out, total, nil
}

func (r *fakeAuditRepo) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.logs {
		if r.logs[i].ID == id {
			cp := r.logs[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.logs))
	for i := range r.logs {
		out[i] = r.logs[i].Action
	}
	return out
}

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: map[uuid.UUID]*entity.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.items[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) CreateWithProfile(ctx context.Context, user *entity.User, doctor *entity.DoctorProfile, patient *entity.PatientProfile) error {
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.items[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}
