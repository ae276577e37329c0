package engine

import (
	"slices"
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
)

// BuildTimeline returns a copy of events sorted ascending by date. The sort
// is stable, so same-instant events keep their insertion order.
func BuildTimeline(events []domain.CashEvent) []domain.CashEvent {
	timeline := slices.Clone(events)
	slices.SortStableFunc(timeline, func(a, b domain.CashEvent) int {
		return a.Date.Compare(b.Date)
	})
	return timeline
}

// WalkResult is the outcome of a single pass over a sorted timeline.
type WalkResult struct {
	Series         []domain.BalancePoint
	MinCash        domain.Money
	MaxCash        domain.Money
	EndCash        domain.Money
	InsolvencyDate *time.Time
}

// Balances returns the balance column of the series.
func (w WalkResult) Balances() []domain.Money {
	out := make([]domain.Money, len(w.Series))
	for i, p := range w.Series {
		out[i] = p.Balance
	}
	return out
}

// Walk applies every event to a running balance seeded with startCash.
// The first series point is the opening balance at opening; each event adds
// one point. InsolvencyDate is the first event that takes the balance below
// zero.
func Walk(timeline []domain.CashEvent, startCash domain.Money, opening time.Time) WalkResult {
	w := WalkResult{
		Series:  make([]domain.BalancePoint, 0, len(timeline)+1),
		MinCash: startCash,
		MaxCash: startCash,
	}
	w.Series = append(w.Series, domain.BalancePoint{Date: opening, Balance: startCash})

	cash := startCash
	for _, ev := range timeline {
		cash += ev.Amount
		w.MinCash = min(w.MinCash, cash)
		w.MaxCash = max(w.MaxCash, cash)
		if cash < 0 && w.InsolvencyDate == nil {
			d := ev.Date
			w.InsolvencyDate = &d
		}
		w.Series = append(w.Series, domain.BalancePoint{Date: ev.Date, Balance: cash})
	}
	w.EndCash = cash
	return w
}
