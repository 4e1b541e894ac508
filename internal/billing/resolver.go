// Package billing holds the rent reconciliation core: pure functions that
// derive the current period's payment state from a tenant account, its
// payment ledger, and an explicitly supplied clock. Nothing in this package
// reads the system time or mutates its inputs.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eliudmichira/Hama-Estate-sub005/internal/domain"
)

// lastDayOfMonth returns the number of days in t's month.
// Day zero of the next month normalizes to the last day of this one.
func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// DueDateIn returns the due date for the billing period containing ref.
// The due day is clamped to the last day of ref's month, so dueDay=31 in
// February yields Feb 28 (29 in a leap year). The result never rolls into
// an adjacent month.
func DueDateIn(ref time.Time, dueDay int) time.Time {
	day := dueDay
	if last := lastDayOfMonth(ref); day > last {
		day = last
	}
	return time.Date(ref.Year(), ref.Month(), day, 0, 0, 0, 0, ref.Location())
}

// DaysBetween returns the calendar days from a's date to b's date, ignoring
// time-of-day. Negative when b is earlier. Both dates are re-anchored at UTC
// midnight before subtracting: in the wall-clock zone a midnight-to-midnight
// span across a DST transition is not 24 hours, which would make a plain
// duration division miscount by a day.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// Covered reports whether any ledger record settles the period containing
// ref: paid within the same calendar month and year, with an amount at or
// above the monthly rent. Partial payments never cover a period, and the
// ledger is scanned without assuming any ordering.
func Covered(ledger []domain.PaymentRecord, monthlyRent decimal.Decimal, ref time.Time) bool {
	for _, rec := range ledger {
		if rec.PaidAt.Year() != ref.Year() || rec.PaidAt.Month() != ref.Month() {
			continue
		}
		if rec.Amount.GreaterThanOrEqual(monthlyRent) {
			return true
		}
	}
	return false
}

// Resolution is the outcome of resolving one billing period.
type Resolution struct {
	Status       domain.BillingStatus
	DaysUntilDue int
	DueDate      time.Time
}

// Resolve derives the current period's status from the clock, the due day,
// and the ledger. A covered period is paid regardless of the date; an
// uncovered one is overdue once the due date has passed and due otherwise.
func Resolve(now time.Time, dueDay int, monthlyRent decimal.Decimal, ledger []domain.PaymentRecord) Resolution {
	dueDate := DueDateIn(now, dueDay)
	days := DaysBetween(now, dueDate)

	status := domain.BillingDue
	switch {
	case Covered(ledger, monthlyRent, now):
		status = domain.BillingPaid
	case days < 0:
		status = domain.BillingOverdue
	}

	return Resolution{Status: status, DaysUntilDue: days, DueDate: dueDate}
}
