package usecase

import (
	"context"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
)

const maxAuditPageSize = 200

// AuditUsecase exposes the ingest audit trail.
type AuditUsecase interface {
	ListAudits(ctx context.Context, query *repository.ListAuditQuery) ([]entity.IngestAudit, int64, error)
}

func NewAuditUsecase(repo repository.AuditRepository) AuditUsecase {
	return &auditUsecase{repo: repo}
}

type auditUsecase struct {
	repo repository.AuditRepository
}

func (u *auditUsecase) ListAudits(ctx context.Context, query *repository.ListAuditQuery) ([]entity.IngestAudit, int64, error) {
	if query == nil {
		query = &repository.ListAuditQuery{}
	}
	if query.PageNo <= 0 {
		query.PageNo = 1
	}
	if query.PageSize <= 0 || query.PageSize > maxAuditPageSize {
		query.PageSize = maxAuditPageSize
	}
	return u.repo.List(ctx, query)
}
