package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how rent is (or will be) paid.
type PaymentMethod string

const (
	MethodMobileMoney PaymentMethod = "mobile_money"
	MethodCard        PaymentMethod = "card"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	return m == MethodMobileMoney || m == MethodCard
}

// AutoPay is the tenant's standing auto-payment instruction. The core only
// tracks the flag; an external executor acts on it.
type AutoPay struct {
	Enabled bool          `json:"enabled"`
	Method  PaymentMethod `json:"method,omitempty"`
}

// TenantAccount is the billing identity of a tenant: what they owe monthly,
// when it falls due, and the lease bounds the obligation lives inside.
type TenantAccount struct {
	ID          uuid.UUID       `json:"id"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	DueDay      int             `json:"due_day"`
	LeaseStart  time.Time       `json:"lease_start"`
	LeaseEnd    *time.Time      `json:"lease_end,omitempty"` // nil = open-ended lease
	AutoPay     AutoPay         `json:"auto_pay"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate checks the account invariants. It runs once, at the persistence
// boundary; the core assumes accounts that pass it.
func (a TenantAccount) Validate() error {
	if a.MonthlyRent.IsNegative() {
		return ErrInvalidAccount
	}
	if a.DueDay < 1 || a.DueDay > 31 {
		return ErrInvalidAccount
	}
	if a.LeaseEnd != nil && a.LeaseEnd.Before(a.LeaseStart) {
		return ErrInvalidAccount
	}
	return nil
}

// PaymentRecord is one entry in a tenant's append-only payment ledger.
// Records are never edited or removed once written.
type PaymentRecord struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
}

// RequestPriority ranks a maintenance request.
type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityNormal RequestPriority = "normal"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p RequestPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RequestStatus is the lifecycle state of a maintenance request.
type RequestStatus string

const (
	StatusOpen       RequestStatus = "open"
	StatusInProgress RequestStatus = "in_progress"
	StatusResolved   RequestStatus = "resolved"
	StatusClosed     RequestStatus = "closed"
)

// Terminal reports whether the request is finished and no longer counts
// toward the dashboard's open-request alert.
func (s RequestStatus) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// rank orders statuses along the forward-only lifecycle.
func (s RequestStatus) rank() int {
	switch s {
	case StatusOpen:
		return 0
	case StatusInProgress:
		return 1
	case StatusResolved, StatusClosed:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
// Requests only move forward: open -> in_progress -> resolved/closed.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	if s.rank() < 0 || next.rank() < 0 || s.Terminal() {
		return false
	}
	return next.rank() > s.rank()
}

// MaintenanceRequest is a tenant-filed service request. Loosely coupled to
// billing; only the open count feeds the billing snapshot.
type MaintenanceRequest struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Title     string          `json:"title"`
	Details   string          `json:"details,omitempty"`
	Priority  RequestPriority `json:"priority"`
	Status    RequestStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Transition advances the request status, rejecting backward moves.
func (r *MaintenanceRequest) Transition(next RequestStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	r.Status = next
	return nil
}

// BillingStatus is the derived payment state of the current period.
type BillingStatus string

const (
	BillingPaid    BillingStatus = "paid"
	BillingDue     BillingStatus = "due"
	BillingOverdue BillingStatus = "overdue"
)

// NextAction is the advisory hint rendered next to the billing status.
type NextAction string

const (
	ActionAllSet         NextAction = "all_set"
	ActionPayNow         NextAction = "pay_now"
	ActionAutoPayHandles NextAction = "autopay_will_handle"
	ActionSetUpAutoPay   NextAction = "set_up_autopay"
)

// BillingSnapshot is the derived, never-persisted view of a tenant's billing
// state. DaysUntilDue is negative when overdue. LeaseDaysLeft is nil for an
// open-ended lease, which callers must treat as distinct from a lease that is
// merely far from ending.
type BillingSnapshot struct {
	Status            BillingStatus `json:"status"`
	DaysUntilDue      int           `json:"days_until_due"`
	DueDate           time.Time     `json:"due_date"`
	NextAction        NextAction    `json:"next_action"`
	LeaseExpiringSoon bool          `json:"lease_expiring_soon"`
	LeaseDaysLeft     *int          `json:"lease_days_left"`
	OpenRequests      int           `json:"open_requests"`
}

// TenantAggregate is the unit the persistence gateway loads and saves
// atomically: the account plus everything keyed to it.
type TenantAggregate struct {
	Account  TenantAccount        `json:"account"`
	Ledger   []PaymentRecord      `json:"ledger"`
	Requests []MaintenanceRequest `json:"requests"`
}

// PaymentRequest is the DTO for recording a payment.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference,omitempty"`
}

// AutoPayRequest is the DTO for toggling auto-pay.
type AutoPayRequest struct {
	Enabled bool          `json:"enabled"`
	Method  PaymentMethod `json:"method,omitempty"`
}

// MaintenanceInput is the DTO for filing a maintenance request.
type MaintenanceInput struct {
	Title    string          `json:"title"`
	Details  string          `json:"details,omitempty"`
	Priority RequestPriority `json:"priority"`
}

// MaintenanceStatusUpdate is the DTO for advancing a request's status.
type MaintenanceStatusUpdate struct {
	Status RequestStatus `json:"status"`
}
