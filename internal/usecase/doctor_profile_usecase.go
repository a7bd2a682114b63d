package usecase

import (
	"context"

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
	ErrDoctorAlreadyApproved = apperr.New(apperr.KindInvalidState, "doctor", apperr.ReasonNotAllowed, "doctor is already approved")
	ErrDoctorNotPurgeable    = apperr.New(apperr.KindInvalidState, "doctor", apperr.ReasonNotAllowed, "only rejected doctor profiles can be purged")
)

type DoctorProfileUsecase interface {
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	ListAvailable(ctx context.Context) (*dto.DoctorListResponse, error)
	Search(ctx context.Context, req *dto.SearchDoctorsRequest) (*dto.DoctorListResponse, error)
	ListSpecializations(ctx context.Context) (*dto.SpecializationListResponse, error)
	ListPending(ctx context.Context, actor entity.Actor) (*dto.DoctorListResponse, error)
	Approve(ctx context.Context, actor entity.Actor, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	Reject(ctx context.Context, actor entity.Actor, doctorID uuid.UUID) error
	Purge(ctx context.Context, actor entity.Actor, doctorID uuid.UUID) error
	SetAvailability(ctx context.Context, actor entity.Actor, req *dto.UpdateAvailabilityRequest) (*dto.DoctorResponse, error)
}

type doctorProfileUsecase struct {
	log          *logrus.Logger
	userRepo     repository.UserRepository
	doctorRepo   repository.DoctorProfileRepository
	slotCache    *service.SlotCacheService
	auditService service.AuditService
}

func NewDoctorProfileUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorProfileRepository,
	slotCache *service.SlotCacheService,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		log:          log,
		userRepo:     userRepo,
		doctorRepo:   doctorRepo,
		slotCache:    slotCache,
		auditService: auditService,
	}
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, apperr.Infra(err, "find doctor profile")
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

// ListAvailable returns approved doctors currently accepting appointments.
func (u *doctorProfileUsecase) ListAvailable(ctx context.Context) (*dto.DoctorListResponse, error) {
	profiles, err := retryRead(u.log, func() ([]entity.DoctorProfile, error) {
		return u.doctorRepo.FindAvailable(ctx)
	})
	if err != nil {
		u.log.Warnf("Failed to find available doctors: %+v", err)
		return nil, apperr.Infra(err, "find available doctors")
	}

	doctors := converter.DoctorProfilesToResponses(profiles)

	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

func (u *doctorProfileUsecase) Search(ctx context.Context, req *dto.SearchDoctorsRequest) (*dto.DoctorListResponse, error) {
	filter := &entity.DoctorFilter{
		Name:           req.Name,
		Specialization: req.Specialization,
		MinExperience:  req.MinExperience,
	}

	profiles, err := retryRead(u.log, func() ([]entity.DoctorProfile, error) {
		return u.doctorRepo.Search(ctx, filter)
	})
	if err != nil {
		u.log.Warnf("Failed to search doctors: %+v", err)
		return nil, apperr.Infra(err, "search doctors")
	}

	doctors := converter.DoctorProfilesToResponses(profiles)

	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

func (u *doctorProfileUsecase) ListSpecializations(ctx context.Context) (*dto.SpecializationListResponse, error) {
	specializations, err := retryRead(u.log, func() ([]string, error) {
		return u.doctorRepo.Specializations(ctx)
	})
	if err != nil {
		u.log.Warnf("Failed to list specializations: %+v", err)
		return nil, apperr.Infra(err, "list specializations")
	}

	return &dto.SpecializationListResponse{
		Specializations: specializations,
		Total:           len(specializations),
	}, nil
}

func (u *doctorProfileUsecase) ListPending(ctx context.Context, actor entity.Actor) (*dto.DoctorListResponse, error) {
	if !actor.Can(entity.CapabilityReadAll) {
		return nil, ErrForbidden
	}

	profiles, err := u.doctorRepo.FindPending(ctx)
	if err != nil {
		u.log.Warnf("Failed to find pending doctors: %+v", err)
		return nil, apperr.Infra(err, "find pending doctors")
	}

	doctors := converter.DoctorProfilesToResponses(profiles)

	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

// Approve marks a pending doctor profile as approved and opens it for booking.
func (u *doctorProfileUsecase) Approve(ctx context.Context, actor entity.Actor, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	if !actor.Can(entity.CapabilityOverride) {
		return nil, ErrForbidden
	}

	profile, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, apperr.Infra(err, "find doctor profile")
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	if profile.IsApproved {
		return nil, ErrDoctorAlreadyApproved
	}

	oldValue := converter.DoctorProfileToResponse(profile)

	profile.IsApproved = true
	profile.IsAvailable = true

	if err := u.doctorRepo.Update(ctx, profile); err != nil {
		u.log.Warnf("Failed to approve doctor: %+v", err)
		return nil, apperr.Infra(err, "approve doctor")
	}

	newValue := converter.DoctorProfileToResponse(profile)
	if err := u.auditService.LogUpdate(ctx, &actor.UserID, entity.AuditActionDoctorApprove, "doctor_profile", doctorID.String(), oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return newValue, nil
}

// Reject deactivates a pending doctor's account instead of deleting it, so
// the application stays on record. Purge removes it for good.
func (u *doctorProfileUsecase) Reject(ctx context.Context, actor entity.Actor, doctorID uuid.UUID) error {
	if !actor.Can(entity.CapabilityOverride) {
		return ErrForbidden
	}

	profile, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return apperr.Infra(err, "find doctor profile")
	}
	if profile == nil {
		return ErrDoctorNotFound
	}
	if profile.IsApproved {
		return ErrDoctorAlreadyApproved
	}

	oldValue := converter.DoctorProfileToResponse(profile)

	inactive := false
	profile.IsAvailable = false
	profile.User.IsActive = &inactive

	if err := u.doctorRepo.Update(ctx, profile); err != nil {
		u.log.Warnf("Failed to reject doctor: %+v", err)
		return apperr.Infra(err, "reject doctor")
	}
	if err := u.userRepo.Update(ctx, &profile.User); err != nil {
		u.log.Warnf("Failed to deactivate doctor account: %+v", err)
		return apperr.Infra(err, "deactivate doctor account")
	}

	if err := u.auditService.LogUpdate(ctx, &actor.UserID, entity.AuditActionDoctorReject, "doctor_profile", doctorID.String(), oldValue, converter.DoctorProfileToResponse(profile)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return nil
}

// Purge permanently removes a rejected doctor account. Only unapproved
// profiles whose account is already deactivated qualify.
func (u *doctorProfileUsecase) Purge(ctx context.Context, actor entity.Actor, doctorID uuid.UUID) error {
	if !actor.Can(entity.CapabilityOverride) {
		return ErrForbidden
	}

	profile, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return apperr.Infra(err, "find doctor profile")
	}
	if profile == nil {
		return ErrDoctorNotFound
	}
	if profile.IsApproved || profile.User.IsActive == nil || *profile.User.IsActive {
		return ErrDoctorNotPurgeable
	}

	oldValue := converter.DoctorProfileToResponse(profile)

	affectedRows, err := u.userRepo.Delete(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to purge doctor: %+v", err)
		return apperr.Infra(err, "purge doctor")
	}
	if affectedRows == 0 {
		return ErrDoctorNotFound
	}

	if err := u.auditService.LogDelete(ctx, &actor.UserID, entity.AuditActionDoctorPurge, "doctor_profile", doctorID.String(), oldValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return nil
}

// SetAvailability toggles whether the calling doctor accepts new appointments.
// Turning availability off hides the doctor from slot listings but leaves
// already booked appointments untouched.
func (u *doctorProfileUsecase) SetAvailability(ctx context.Context, actor entity.Actor, req *dto.UpdateAvailabilityRequest) (*dto.DoctorResponse, error) {
	if !actor.IsDoctor() {
		return nil, ErrForbidden
	}

	profile, err := u.doctorRepo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, apperr.Infra(err, "find doctor profile")
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	if !profile.IsApproved {
		return nil, ErrDoctorUnavailable
	}

	oldValue := converter.DoctorProfileToResponse(profile)

	profile.IsAvailable = *req.IsAvailable

	if err := u.doctorRepo.Update(ctx, profile); err != nil {
		u.log.Warnf("Failed to update availability: %+v", err)
		return nil, apperr.Infra(err, "update availability")
	}

	if u.slotCache != nil {
		u.slotCache.Invalidate(ctx, actor.UserID)
	}

	newValue := converter.DoctorProfileToResponse(profile)
	if err := u.auditService.LogUpdate(ctx, &actor.UserID, entity.AuditActionDoctorAvailability, "doctor_profile", actor.UserID.String(), oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return newValue, nil
}
