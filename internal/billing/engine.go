package billing

import (
	"time"

	"github.com/eliudmichira/Hama-Estate-sub005/internal/domain"
)

// LeaseExpiryWindowDays is the horizon for the lease-expiry reminder.
const LeaseExpiryWindowDays = 60

// OpenRequestCount counts maintenance requests that still need attention
// (anything not resolved or closed).
func OpenRequestCount(requests []domain.MaintenanceRequest) int {
	n := 0
	for _, r := range requests {
		if !r.Status.Terminal() {
			n++
		}
	}
	return n
}

// leaseDaysLeft returns ceil(leaseEnd - now) in days, or nil for an
// open-ended lease.
func leaseDaysLeft(leaseEnd *time.Time, now time.Time) *int {
	if leaseEnd == nil {
		return nil
	}
	days := DaysBetween(now, *leaseEnd)
	return &days
}

// nextAction applies the advisory decision table, first match wins:
// paid -> all set; overdue -> pay now; due -> auto-pay handles it when
// enabled, otherwise suggest setting it up.
func nextAction(status domain.BillingStatus, autoPayEnabled bool) domain.NextAction {
	switch {
	case status == domain.BillingPaid:
		return domain.ActionAllSet
	case status == domain.BillingOverdue:
		return domain.ActionPayNow
	case autoPayEnabled:
		return domain.ActionAutoPayHandles
	default:
		return domain.ActionSetUpAutoPay
	}
}

// Compute reconciles an account against its ledger and maintenance list at
// the given instant, producing the snapshot the dashboards render. Pure:
// same inputs, same snapshot; no input is mutated.
func Compute(account domain.TenantAccount, ledger []domain.PaymentRecord, requests []domain.MaintenanceRequest, now time.Time) domain.BillingSnapshot {
	res := Resolve(now, account.DueDay, account.MonthlyRent, ledger)
	daysLeft := leaseDaysLeft(account.LeaseEnd, now)

	return domain.BillingSnapshot{
		Status:            res.Status,
		DaysUntilDue:      res.DaysUntilDue,
		DueDate:           res.DueDate,
		NextAction:        nextAction(res.Status, account.AutoPay.Enabled),
		LeaseExpiringSoon: daysLeft != nil && *daysLeft <= LeaseExpiryWindowDays,
		LeaseDaysLeft:     daysLeft,
		OpenRequests:      OpenRequestCount(requests),
	}
}
