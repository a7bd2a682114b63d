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

	"github.com/sirupsen/logrus"
)

type PatientProfileUsecase interface {
	GetProfile(ctx context.Context, actor entity.Actor) (*dto.PatientResponse, error)
	UpdateProfile(ctx context.Context, actor entity.Actor, req *dto.UpdatePatientProfileRequest) (*dto.PatientResponse, error)
}

type patientProfileUsecase struct {
	log          *logrus.Logger
	userRepo     repository.UserRepository
	patientRepo  repository.PatientProfileRepository
	auditService service.AuditService
}

func NewPatientProfileUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		log:          log,
		userRepo:     userRepo,
		patientRepo:  patientRepo,
		auditService: auditService,
	}
}

func (u *patientProfileUsecase) GetProfile(ctx context.Context, actor entity.Actor) (*dto.PatientResponse, error) {
	profile, err := u.patientRepo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, apperr.Infra(err, "find patient profile")
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientProfileToResponse(profile, &profile.User), nil
}

func (u *patientProfileUsecase) UpdateProfile(ctx context.Context, actor entity.Actor, req *dto.UpdatePatientProfileRequest) (*dto.PatientResponse, error) {
	profile, err := u.patientRepo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, apperr.Infra(err, "find patient profile")
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	oldValue := converter.PatientProfileToResponse(profile, &profile.User)

	if req.FullName != "" {
		profile.User.FullName = req.FullName
	}
	if req.PhoneNumber != "" {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		profile.DateOfBirth = dob
	}
	if req.Address != "" {
		profile.Address = req.Address
	}

	if err := u.patientRepo.Update(ctx, profile); err != nil {
		u.log.Warnf("Failed to update patient profile: %+v", err)
		return nil, apperr.Infra(err, "update patient profile")
	}
	if err := u.userRepo.Update(ctx, &profile.User); err != nil {
		u.log.Warnf("Failed to update patient user: %+v", err)
		return nil, apperr.Infra(err, "update patient user")
	}

	newValue := converter.PatientProfileToResponse(profile, &profile.User)
	if err := u.auditService.LogUpdate(ctx, &actor.UserID, entity.AuditActionProfileUpdate, "patient_profile", actor.UserID.String(), oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return newValue, nil
}
