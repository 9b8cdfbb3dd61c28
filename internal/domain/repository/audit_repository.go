package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AuditLogRepository bitácora durable de acciones (solo inserción).
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
}
