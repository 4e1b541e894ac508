package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/eliudmichira/Hama-Estate-sub005/internal/domain"
)

// Gateway loads and saves a tenant's billing aggregate as one unit: account,
// payment ledger, and maintenance requests. Implementations must return
// domain.ErrTenantNotFound for unknown tenants and wrap infrastructure
// failures in domain.ErrPersistence so callers can match with errors.Is.
type Gateway interface {
	Load(ctx context.Context, tenantID uuid.UUID) (*domain.TenantAggregate, error)
	Save(ctx context.Context, tenantID uuid.UUID, agg *domain.TenantAggregate) error
}
