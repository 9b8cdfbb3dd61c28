package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type auditRepo struct {
	s *Store
}

// AuditLogs bitácora de auditoría en memoria. No participa de las unidades de trabajo:
// se escribe después del commit.
func (s *Store) AuditLogs() repository.AuditLogRepository {
	return &auditRepo{s: s}
}

func (r *auditRepo) Create(_ context.Context, entry *entity.AuditLog) error {
	r.s.auditMu.Lock()
	defer r.s.auditMu.Unlock()
	r.s.audit = append(r.s.audit, *entry)
	return nil
}

// AuditEntries copia de la bitácora registrada.
func (s *Store) AuditEntries() []entity.AuditLog {
	s.auditMu.Lock()
	defer s.auditMu.Unlock()
	return slices.Clone(s.audit)
}
