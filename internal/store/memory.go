package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/eliudmichira/Hama-Estate-sub005/internal/domain"
)

// Memory is an in-process Gateway used by tests and local runs without
// Postgres. Aggregates are deep-copied on the way in and out so callers can
// never mutate stored state through a shared slice.
type Memory struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]*domain.TenantAggregate
}

func NewMemory() *Memory {
	return &Memory{tenants: make(map[uuid.UUID]*domain.TenantAggregate)}
}

func copyAggregate(agg *domain.TenantAggregate) *domain.TenantAggregate {
	out := &domain.TenantAggregate{Account: agg.Account}
	out.Ledger = append([]domain.PaymentRecord(nil), agg.Ledger...)
	out.Requests = append([]domain.MaintenanceRequest(nil), agg.Requests...)
	return out
}

// Put seeds a tenant aggregate, replacing any existing one.
func (m *Memory) Put(agg *domain.TenantAggregate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[agg.Account.ID] = copyAggregate(agg)
}

func (m *Memory) Load(_ context.Context, tenantID uuid.UUID) (*domain.TenantAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	agg, ok := m.tenants[tenantID]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	if err := agg.Account.Validate(); err != nil {
		return nil, err
	}
	return copyAggregate(agg), nil
}

func (m *Memory) Save(_ context.Context, tenantID uuid.UUID, agg *domain.TenantAggregate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[tenantID]; !ok {
		return domain.ErrTenantNotFound
	}
	m.tenants[tenantID] = copyAggregate(agg)
	return nil
}
