package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliudmichira/Hama-Estate-sub005/internal/domain"
)

func testAccount(dueDay int) domain.TenantAccount {
	return domain.TenantAccount{
		ID:          uuid.New(),
		MonthlyRent: decimal.NewFromInt(25000),
		DueDay:      dueDay,
		LeaseStart:  date(2024, time.June, 1),
	}
}

func request(status domain.RequestStatus) domain.MaintenanceRequest {
	return domain.MaintenanceRequest{
		ID:       uuid.New(),
		Title:    "leaking tap",
		Priority: domain.PriorityNormal,
		Status:   status,
	}
}

func TestOpenRequestCount(t *testing.T) {
	requests := []domain.MaintenanceRequest{
		request(domain.StatusOpen),
		request(domain.StatusInProgress),
		request(domain.StatusResolved),
		request(domain.StatusClosed),
		request(domain.StatusOpen),
	}
	assert.Equal(t, 3, OpenRequestCount(requests))
	assert.Equal(t, 0, OpenRequestCount(nil))
}

func TestComputeNextActionTable(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		autoPay bool
		ledger  []domain.PaymentRecord
		status  domain.BillingStatus
		action  domain.NextAction
	}{
		{
			name:   "paid means all set regardless of autopay",
			now:    date(2025, time.January, 20),
			ledger: []domain.PaymentRecord{payment(25000, date(2025, time.January, 3))},
			status: domain.BillingPaid,
			action: domain.ActionAllSet,
		},
		{
			name:    "paid with autopay still all set",
			now:     date(2025, time.January, 20),
			autoPay: true,
			ledger:  []domain.PaymentRecord{payment(25000, date(2025, time.January, 3))},
			status:  domain.BillingPaid,
			action:  domain.ActionAllSet,
		},
		{
			name:   "overdue means pay now even with autopay off",
			now:    date(2025, time.January, 20),
			status: domain.BillingOverdue,
			action: domain.ActionPayNow,
		},
		{
			name:    "overdue means pay now even with autopay on",
			now:     date(2025, time.January, 20),
			autoPay: true,
			status:  domain.BillingOverdue,
			action:  domain.ActionPayNow,
		},
		{
			name:    "due with autopay on",
			now:     date(2025, time.January, 2),
			autoPay: true,
			status:  domain.BillingDue,
			action:  domain.ActionAutoPayHandles,
		},
		{
			name:   "due with autopay off",
			now:    date(2025, time.January, 2),
			status: domain.BillingDue,
			action: domain.ActionSetUpAutoPay,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := testAccount(10)
			if tt.autoPay {
				account.AutoPay = domain.AutoPay{Enabled: true, Method: domain.MethodMobileMoney}
			}

			snap := Compute(account, tt.ledger, nil, tt.now)
			assert.Equal(t, tt.status, snap.Status)
			assert.Equal(t, tt.action, snap.NextAction)
		})
	}
}

// Toggling auto-pay changes only the advisory action on a due period.
func TestComputeAutoPayToggleChangesOnlyAction(t *testing.T) {
	account := testAccount(20)
	now := date(2025, time.January, 5)

	before := Compute(account, nil, nil, now)
	require.Equal(t, domain.BillingDue, before.Status)
	require.Equal(t, domain.ActionSetUpAutoPay, before.NextAction)

	account.AutoPay = domain.AutoPay{Enabled: true, Method: domain.MethodCard}
	after := Compute(account, nil, nil, now)

	assert.Equal(t, domain.ActionAutoPayHandles, after.NextAction)

	after.NextAction = before.NextAction
	assert.Equal(t, before, after, "only next_action may differ")
}

func TestComputeLeaseExpiry(t *testing.T) {
	now := date(2025, time.January, 15)

	t.Run("ending within the window", func(t *testing.T) {
		account := testAccount(1)
		end := now.AddDate(0, 0, 45)
		account.LeaseEnd = &end

		snap := Compute(account, nil, nil, now)
		assert.True(t, snap.LeaseExpiringSoon)
		require.NotNil(t, snap.LeaseDaysLeft)
		assert.Equal(t, 45, *snap.LeaseDaysLeft)
	})

	t.Run("ending far away", func(t *testing.T) {
		account := testAccount(1)
		end := now.AddDate(1, 0, 0)
		account.LeaseEnd = &end

		snap := Compute(account, nil, nil, now)
		assert.False(t, snap.LeaseExpiringSoon)
		require.NotNil(t, snap.LeaseDaysLeft)
		assert.Equal(t, 365, *snap.LeaseDaysLeft)
	})

	t.Run("open-ended lease is not merely far away", func(t *testing.T) {
		account := testAccount(1)

		snap := Compute(account, nil, nil, now)
		assert.False(t, snap.LeaseExpiringSoon)
		assert.Nil(t, snap.LeaseDaysLeft, "open-ended lease must be distinguishable")
	})

	t.Run("exactly at the window boundary", func(t *testing.T) {
		account := testAccount(1)
		end := now.AddDate(0, 0, LeaseExpiryWindowDays)
		account.LeaseEnd = &end

		snap := Compute(account, nil, nil, now)
		assert.True(t, snap.LeaseExpiringSoon)
	})
}

func TestComputeIsPure(t *testing.T) {
	account := testAccount(10)
	end := date(2025, time.June, 30)
	account.LeaseEnd = &end
	ledger := []domain.PaymentRecord{
		payment(5000, date(2025, time.January, 2)),
		payment(25000, date(2025, time.January, 9)),
	}
	requests := []domain.MaintenanceRequest{request(domain.StatusOpen)}
	now := date(2025, time.January, 15)

	first := Compute(account, ledger, requests, now)
	second := Compute(account, ledger, requests, now)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.BillingPaid, first.Status)
	assert.Equal(t, 1, first.OpenRequests)
}
