package engine

import (
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/shopspring/decimal"
)

// payrollCap is the last payroll boundary of any month; shorter months pay
// on their last day instead.
const payrollCap = 30

// ProjectEvents turns accepted service records into one INFLOW (collection,
// shifted by CxcDays) and one OUTFLOW (driver payout on the next payroll
// boundary) each. All inflows are emitted before all outflows, which fixes
// the tie order of the timeline.
func ProjectEvents(records []domain.ServiceRecord, scenario domain.ScenarioConfig) []domain.CashEvent {
	growth := decimal.NewFromFloat(scenario.Growth)

	inflows := make([]domain.CashEvent, 0, len(records))
	outflows := make([]domain.CashEvent, 0, len(records))
	for _, r := range records {
		if r.IsCancelled() {
			continue
		}
		inflows = append(inflows, domain.CashEvent{
			Date:   r.Date.AddDate(0, 0, scenario.CxcDays),
			Amount: scale(r.Financials.TotalValue, growth),
			Kind:   domain.EventInflow,
		})
		outflows = append(outflows, domain.CashEvent{
			Date:   PayrollDate(r.Date, scenario.CxpFreq),
			Amount: -scale(r.Financials.DriverPayment, growth),
			Kind:   domain.EventOutflow,
		})
	}
	return append(inflows, outflows...)
}

func scale(amount domain.Money, growth decimal.Decimal) domain.Money {
	return domain.MoneyFromDecimal(amount.Decimal().Mul(growth))
}

// PayrollDate returns the payout date for work done on t under a payroll
// cycle of freq days. Boundaries fall on multiples of freq up to day 30 (or
// the last day of a shorter month); work after the last boundary rolls to
// the first boundary of the next month. The clock time of t is kept.
func PayrollDate(t time.Time, freq int) time.Time {
	if freq < 1 {
		freq = 1
	}
	y, m, day := t.Date()
	hh, mm, ss := t.Clock()
	loc := t.Location()

	limit := min(payrollCap, daysIn(y, m, loc))
	if day <= limit {
		next := ((day + freq - 1) / freq) * freq
		next = min(next, limit)
		return time.Date(y, m, next, hh, mm, ss, t.Nanosecond(), loc)
	}

	// day 31 (or past a short month's cap): first boundary of next month
	first := time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
	ny, nm, _ := first.Date()
	next := min(freq, payrollCap, daysIn(ny, nm, loc))
	return time.Date(ny, nm, next, hh, mm, ss, t.Nanosecond(), loc)
}
