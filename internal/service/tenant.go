// Package service wires the billing core to the persistence gateway. Every
// mutation persists before it acknowledges: a snapshot returned from here
// never reflects state that failed to save.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eliudmichira/Hama-Estate-sub005/internal/billing"
	"github.com/eliudmichira/Hama-Estate-sub005/internal/domain"
	"github.com/eliudmichira/Hama-Estate-sub005/internal/store"
)

type TenantService struct {
	gw  store.Gateway
	log *zap.Logger
}

func NewTenantService(gw store.Gateway, log *zap.Logger) *TenantService {
	return &TenantService{gw: gw, log: log}
}

// Aggregate returns the raw tenant aggregate.
func (s *TenantService) Aggregate(ctx context.Context, tenantID uuid.UUID) (*domain.TenantAggregate, error) {
	return s.gw.Load(ctx, tenantID)
}

// Snapshot loads the tenant and reconciles it at the given instant.
func (s *TenantService) Snapshot(ctx context.Context, tenantID uuid.UUID, now time.Time) (*domain.BillingSnapshot, error) {
	agg, err := s.gw.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	snap := billing.Compute(agg.Account, agg.Ledger, agg.Requests, now)
	return &snap, nil
}

// RecordPayment appends a payment to the tenant's ledger and returns the
// created record together with the refreshed snapshot. The append reaches
// the gateway before the snapshot is computed: a failed save surfaces the
// gateway error and leaves nothing recorded, so the caller keeps showing
// the pre-payment state. Coverage is judged at read time; over- and
// underpayments are accepted here.
func (s *TenantService) RecordPayment(ctx context.Context, tenantID uuid.UUID, req domain.PaymentRequest, now time.Time) (*domain.PaymentRecord, *domain.BillingSnapshot, error) {
	if !req.Amount.IsPositive() {
		return nil, nil, domain.ErrInvalidAmount
	}
	if !req.Method.Valid() {
		return nil, nil, domain.ErrInvalidRequest
	}

	agg, err := s.gw.Load(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	rec := domain.PaymentRecord{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: strings.TrimSpace(req.Reference),
		PaidAt:    now,
	}
	agg.Ledger = append(agg.Ledger, rec)

	if err := s.gw.Save(ctx, tenantID, agg); err != nil {
		s.log.Warn("payment not persisted, rolling back view",
			zap.String("tenant_id", tenantID.String()),
			zap.String("amount", req.Amount.String()),
			zap.Error(err))
		return nil, nil, err
	}

	s.log.Info("payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", rec.ID.String()),
		zap.String("amount", rec.Amount.String()))

	snap := billing.Compute(agg.Account, agg.Ledger, agg.Requests, now)
	return &rec, &snap, nil
}

// SetAutoPay toggles the auto-pay instruction. Enabling requires a method;
// disabling clears it. The ledger is never touched.
func (s *TenantService) SetAutoPay(ctx context.Context, tenantID uuid.UUID, req domain.AutoPayRequest, now time.Time) (*domain.TenantAccount, *domain.BillingSnapshot, error) {
	if req.Enabled && !req.Method.Valid() {
		return nil, nil, domain.ErrMissingPaymentMethod
	}

	agg, err := s.gw.Load(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	if req.Enabled {
		agg.Account.AutoPay = domain.AutoPay{Enabled: true, Method: req.Method}
	} else {
		agg.Account.AutoPay = domain.AutoPay{}
	}

	if err := s.gw.Save(ctx, tenantID, agg); err != nil {
		return nil, nil, err
	}

	s.log.Info("auto-pay updated",
		zap.String("tenant_id", tenantID.String()),
		zap.Bool("enabled", req.Enabled))

	snap := billing.Compute(agg.Account, agg.Ledger, agg.Requests, now)
	return &agg.Account, &snap, nil
}

// FileMaintenanceRequest creates an open request for the tenant and returns
// it with the refreshed snapshot (the open count feeds the dashboard).
func (s *TenantService) FileMaintenanceRequest(ctx context.Context, tenantID uuid.UUID, input domain.MaintenanceInput, now time.Time) (*domain.MaintenanceRequest, *domain.BillingSnapshot, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, nil, domain.ErrInvalidRequest
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !priority.Valid() {
		return nil, nil, domain.ErrInvalidRequest
	}

	agg, err := s.gw.Load(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	req := domain.MaintenanceRequest{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Title:     title,
		Details:   strings.TrimSpace(input.Details),
		Priority:  priority,
		Status:    domain.StatusOpen,
		CreatedAt: now,
	}
	agg.Requests = append(agg.Requests, req)

	if err := s.gw.Save(ctx, tenantID, agg); err != nil {
		return nil, nil, err
	}

	s.log.Info("maintenance request filed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("request_id", req.ID.String()),
		zap.String("priority", string(req.Priority)))

	snap := billing.Compute(agg.Account, agg.Ledger, agg.Requests, now)
	return &req, &snap, nil
}

// UpdateMaintenanceStatus advances a request along its lifecycle. Backward
// moves are rejected before anything is persisted; a successful transition
// is saved and reflected in the returned snapshot's open count.
func (s *TenantService) UpdateMaintenanceStatus(ctx context.Context, tenantID, requestID uuid.UUID, next domain.RequestStatus, now time.Time) (*domain.MaintenanceRequest, *domain.BillingSnapshot, error) {
	agg, err := s.gw.Load(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	idx := -1
	for i := range agg.Requests {
		if agg.Requests[i].ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, domain.ErrRequestNotFound
	}

	if err := agg.Requests[idx].Transition(next); err != nil {
		return nil, nil, err
	}

	if err := s.gw.Save(ctx, tenantID, agg); err != nil {
		return nil, nil, err
	}

	s.log.Info("maintenance request updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("request_id", requestID.String()),
		zap.String("status", string(next)))

	snap := billing.Compute(agg.Account, agg.Ledger, agg.Requests, now)
	return &agg.Requests[idx], &snap, nil
}
