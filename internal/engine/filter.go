package engine

import (
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
)

// FilterRecords keeps records dated on or after the filter cutoff. Records
// without a date are always kept so data-quality issues stay visible.
func FilterRecords(records []domain.ServiceRecord, f domain.TimeFilter, now time.Time) []domain.ServiceRecord {
	cutoff, ok := f.Cutoff(now)
	if !ok {
		return records
	}
	out := make([]domain.ServiceRecord, 0, len(records))
	for _, r := range records {
		if r.Date.IsZero() || !r.Date.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// FilterTransactions applies the same cutoff to bank transactions.
func FilterTransactions(transactions []domain.BankTransaction, f domain.TimeFilter, now time.Time) []domain.BankTransaction {
	cutoff, ok := f.Cutoff(now)
	if !ok {
		return transactions
	}
	out := make([]domain.BankTransaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Date.IsZero() || !t.Date.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out
}
