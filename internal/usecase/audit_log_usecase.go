package usecase

import (
	"context"

	"go-consultation-booking/internal/converter"
	"go-consultation-booking/internal/delivery/dto"
	"go-consultation-booking/internal/domain/entity"
	"go-consultation-booking/internal/domain/repository"
	"go-consultation-booking/pkg/apperr"

	"github.com/sirupsen/logrus"
)

var ErrAuditLogNotFound = apperr.New(apperr.KindNotFound, "audit_log", "", "audit log not found")

const defaultAuditPageSize = 50

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, actor entity.Actor, limit, offset int) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, actor entity.Actor, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, actor entity.Actor, limit, offset int) (*dto.AuditLogListResponse, error) {
	if !actor.Can(entity.CapabilityReadAll) {
		return nil, ErrForbidden
	}

	if limit <= 0 {
		limit = defaultAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}

	logs, total, err := u.auditLogRepo.FindAll(ctx, limit, offset)
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, apperr.Infra(err, "find audit logs")
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: total,
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, actor entity.Actor, id int64) (*dto.AuditLogResponse, error) {
	if !actor.Can(entity.CapabilityReadAll) {
		return nil, ErrForbidden
	}

	auditLog, err := u.auditLogRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, apperr.Infra(err, "find audit log")
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
