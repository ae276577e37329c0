package engine

import (
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
)

// ScheduleFixedCosts emits one FIXED_COST event per expense for every
// calendar month that intersects [from, to]. The day is clamped to the
// month length and only dates inside the day-granular window are kept.
// Events are dated at midnight in from's location.
func ScheduleFixedCosts(expenses []domain.FixedExpense, from, to time.Time) []domain.CashEvent {
	if len(expenses) == 0 {
		return nil
	}
	loc := from.Location()
	start := startOfDay(from)
	end := startOfDay(to.In(loc))
	if end.Before(start) {
		return nil
	}

	var events []domain.CashEvent
	month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)
	for !month.After(end) {
		y, m, _ := month.Date()
		last := daysIn(y, m, loc)
		for _, exp := range expenses {
			day := max(1, min(exp.DayOfMonth, last))
			date := time.Date(y, m, day, 0, 0, 0, 0, loc)
			if date.Before(start) || date.After(end) {
				continue
			}
			events = append(events, domain.CashEvent{
				Date:   date,
				Amount: -exp.Amount.Abs(),
				Kind:   domain.EventFixedCost,
			})
		}
		month = month.AddDate(0, 1, 0)
	}
	return events
}
