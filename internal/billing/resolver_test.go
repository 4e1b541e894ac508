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

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func payment(amount int64, paidAt time.Time) domain.PaymentRecord {
	return domain.PaymentRecord{
		ID:     uuid.New(),
		Amount: decimal.NewFromInt(amount),
		Method: domain.MethodMobileMoney,
		PaidAt: paidAt,
	}
}

func TestDueDateIn(t *testing.T) {
	tests := []struct {
		name   string
		ref    time.Time
		dueDay int
		want   time.Time
	}{
		{
			name:   "plain mid-month due day",
			ref:    date(2025, time.January, 15),
			dueDay: 5,
			want:   date(2025, time.January, 5),
		},
		{
			name:   "due day 31 clamps to Feb 28",
			ref:    date(2025, time.February, 10),
			dueDay: 31,
			want:   date(2025, time.February, 28),
		},
		{
			name:   "due day 31 clamps to Feb 29 in leap year",
			ref:    date(2024, time.February, 10),
			dueDay: 31,
			want:   date(2024, time.February, 29),
		},
		{
			name:   "due day 30 clamps in February only",
			ref:    date(2025, time.April, 1),
			dueDay: 30,
			want:   date(2025, time.April, 30),
		},
		{
			name:   "due day 31 in a 30-day month",
			ref:    date(2025, time.June, 20),
			dueDay: 31,
			want:   date(2025, time.June, 30),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueDateIn(tt.ref, tt.dueDay)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

// The due date must always land inside the reference month, never roll over.
func TestDueDateInStaysWithinMonth(t *testing.T) {
	for dueDay := 1; dueDay <= 31; dueDay++ {
		for m := time.January; m <= time.December; m++ {
			ref := date(2025, m, 12)
			got := DueDateIn(ref, dueDay)
			require.Equal(t, ref.Year(), got.Year())
			require.Equal(t, ref.Month(), got.Month(), "dueDay %d month %v rolled to %v", dueDay, m, got.Month())
		}
	}
}

func TestDaysBetween(t *testing.T) {
	now := time.Date(2025, time.January, 15, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, -14, DaysBetween(now, date(2025, time.January, 1)))
	assert.Equal(t, 0, DaysBetween(now, date(2025, time.January, 15)))
	assert.Equal(t, 10, DaysBetween(now, date(2025, time.January, 25)))
	// Time-of-day on either side is irrelevant.
	assert.Equal(t, 1, DaysBetween(now, time.Date(2025, time.January, 16, 0, 5, 0, 0, time.UTC)))
}

// Day counts must track the calendar even when the wall-clock zone observes
// DST: a spring-forward day is 23 hours long and must still count as one day.
func TestDaysBetweenAcrossDSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2025-03-09 02:00 springs forward in America/New_York.
	springStart := time.Date(2025, time.March, 8, 9, 0, 0, 0, loc)
	assert.Equal(t, 1, DaysBetween(springStart, time.Date(2025, time.March, 9, 9, 0, 0, 0, loc)))
	assert.Equal(t, 2, DaysBetween(springStart, time.Date(2025, time.March, 10, 9, 0, 0, 0, loc)))

	// 2025-11-02 02:00 falls back; the 25-hour day is still one day.
	fallStart := time.Date(2025, time.November, 1, 9, 0, 0, 0, loc)
	assert.Equal(t, 2, DaysBetween(fallStart, time.Date(2025, time.November, 3, 9, 0, 0, 0, loc)))
}

func TestResolveCountsCalendarDaysInDSTZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	rent := decimal.NewFromInt(25000)

	// March 1 to March 31 is 30 calendar days, spring-forward or not.
	res := Resolve(time.Date(2025, time.March, 1, 9, 0, 0, 0, loc), 31, rent, nil)
	assert.Equal(t, 30, res.DaysUntilDue)

	// Walking across the transition, the count never stalls or repeats.
	prev := Resolve(time.Date(2025, time.March, 7, 9, 0, 0, 0, loc), 31, rent, nil)
	for day := 8; day <= 12; day++ {
		cur := Resolve(time.Date(2025, time.March, day, 9, 0, 0, 0, loc), 31, rent, nil)
		require.Equal(t, prev.DaysUntilDue-1, cur.DaysUntilDue, "day %d", day)
		prev = cur
	}
}

func TestCovered(t *testing.T) {
	rent := decimal.NewFromInt(25000)
	jan := date(2025, time.January, 15)

	tests := []struct {
		name   string
		ledger []domain.PaymentRecord
		want   bool
	}{
		{
			name:   "empty ledger never covers",
			ledger: nil,
			want:   false,
		},
		{
			name:   "full payment in month covers",
			ledger: []domain.PaymentRecord{payment(25000, date(2025, time.January, 5))},
			want:   true,
		},
		{
			name:   "overpayment covers",
			ledger: []domain.PaymentRecord{payment(30000, date(2025, time.January, 20))},
			want:   true,
		},
		{
			name:   "partial payment does not cover",
			ledger: []domain.PaymentRecord{payment(24999, date(2025, time.January, 5))},
			want:   false,
		},
		{
			name:   "previous month's payment does not cover",
			ledger: []domain.PaymentRecord{payment(25000, date(2024, time.December, 28))},
			want:   false,
		},
		{
			name:   "same month previous year does not cover",
			ledger: []domain.PaymentRecord{payment(25000, date(2024, time.January, 5))},
			want:   false,
		},
		{
			name: "one qualifying record among noise covers, order irrelevant",
			ledger: []domain.PaymentRecord{
				payment(5000, date(2025, time.January, 2)),
				payment(25000, date(2024, time.December, 1)),
				payment(25000, date(2025, time.January, 9)),
				payment(1000, date(2025, time.January, 30)),
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Covered(tt.ledger, rent, jan))
		})
	}
}

func TestResolveOverdueWithEmptyLedger(t *testing.T) {
	res := Resolve(date(2025, time.January, 15), 1, decimal.NewFromInt(25000), nil)

	assert.Equal(t, domain.BillingOverdue, res.Status)
	assert.Equal(t, -14, res.DaysUntilDue)
	assert.True(t, res.DueDate.Equal(date(2025, time.January, 1)))
}

func TestResolvePaidOverridesDate(t *testing.T) {
	ledger := []domain.PaymentRecord{payment(25000, date(2025, time.January, 5))}
	res := Resolve(date(2025, time.January, 15), 1, decimal.NewFromInt(25000), ledger)

	assert.Equal(t, domain.BillingPaid, res.Status)
	assert.Equal(t, -14, res.DaysUntilDue)
}

func TestResolveDueBeforeDueDate(t *testing.T) {
	res := Resolve(date(2025, time.January, 10), 20, decimal.NewFromInt(25000), nil)

	assert.Equal(t, domain.BillingDue, res.Status)
	assert.Equal(t, 10, res.DaysUntilDue)
}

func TestResolveDueOnDueDay(t *testing.T) {
	res := Resolve(date(2025, time.January, 20), 20, decimal.NewFromInt(25000), nil)

	assert.Equal(t, domain.BillingDue, res.Status)
	assert.Equal(t, 0, res.DaysUntilDue)
}

// Walking the clock forward one day at a time, daysUntilDue decreases by
// exactly one within a period, crosses zero once, and jumps back up only
// when the next period starts.
func TestDaysUntilDueMonotonicWithinPeriod(t *testing.T) {
	rent := decimal.NewFromInt(25000)
	dueDay := 15

	prev := Resolve(date(2025, time.March, 1), dueDay, rent, nil)
	zeroCrossings := 0
	for day := 2; day <= 31; day++ {
		cur := Resolve(date(2025, time.March, day), dueDay, rent, nil)
		require.Equal(t, prev.DaysUntilDue-1, cur.DaysUntilDue, "day %d", day)
		if prev.DaysUntilDue > 0 && cur.DaysUntilDue <= 0 {
			zeroCrossings++
		}
		prev = cur
	}
	assert.Equal(t, 1, zeroCrossings)

	// First day of April: new period, counter resets upward.
	next := Resolve(date(2025, time.April, 1), dueDay, rent, nil)
	assert.Greater(t, next.DaysUntilDue, prev.DaysUntilDue)
	assert.Equal(t, 14, next.DaysUntilDue)
}
