// Package domain defines the treasury entities shared by the stress engine,
// the service layer and the data adapters. All monetary fields are Money
// (integer minor units); all dates are resolved time.Time values.
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ============================================================
// Service (trip) records
// ============================================================

// ServiceStatus is the lifecycle state of a trip.
type ServiceStatus string

const (
	ServiceActive    ServiceStatus = "ACTIVE"
	ServiceCompleted ServiceStatus = "COMPLETED"
	ServiceCancelled ServiceStatus = "CANCELLED"
)

// Financials holds the money side of a service record.
type Financials struct {
	TotalValue    Money `json:"totalValue"`
	DriverPayment Money `json:"driverPayment"`
	TotalCost     Money `json:"totalCost"`
}

// ServiceRecord is one trip. A zero Date means the source date was missing
// or unparseable.
type ServiceRecord struct {
	ID         string        `json:"id"`
	Date       time.Time     `json:"date"`
	Status     ServiceStatus `json:"status"`
	ClientName string        `json:"clientName"`
	Financials Financials    `json:"financials"`
}

// IsCancelled reports whether the record is excluded from projections.
func (r ServiceRecord) IsCancelled() bool {
	return strings.EqualFold(string(r.Status), string(ServiceCancelled))
}

// UnmarshalJSON tolerates bad dates: the record is kept with a zero Date so
// totals stay reconcilable.
func (r *ServiceRecord) UnmarshalJSON(data []byte) error {
	type alias ServiceRecord
	aux := struct {
		*alias
		Date any `json:"date"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Date, _ = parseAnyTimestamp(aux.Date)
	return nil
}

// ============================================================
// Bank transactions
// ============================================================

// TxType classifies a bank movement.
type TxType string

const (
	TxIncome  TxType = "INCOME"
	TxExpense TxType = "EXPENSE"
)

// BankTransaction is a resolved bank statement line. Amount is signed.
type BankTransaction struct {
	Date        time.Time `json:"date"`
	Amount      Money     `json:"amount"`
	Type        TxType    `json:"type"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	ClientName  string    `json:"clientName,omitempty"`
}

// UnmarshalJSON tolerates bad dates the same way as ServiceRecord: the line
// is kept with a zero Date so bank totals still reconcile.
func (t *BankTransaction) UnmarshalJSON(data []byte) error {
	type alias BankTransaction
	aux := struct {
		*alias
		Date any `json:"date"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Date, _ = parseAnyTimestamp(aux.Date)
	return nil
}

// ============================================================
// Fixed expenses
// ============================================================

// FixedExpense is a recurring monthly cost. DayOfMonth is clamped to the
// month length when scheduled.
type FixedExpense struct {
	Description string `json:"description" yaml:"description"`
	Amount      Money  `json:"amount" yaml:"amount"`
	DayOfMonth  int    `json:"dayOfMonth" yaml:"day_of_month"`
}

// ============================================================
// Timestamps
// ============================================================

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the date formats emitted by the ops backends.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseAnyTimestamp(v any) (time.Time, bool) {
	switch d := v.(type) {
	case string:
		return ParseTimestamp(d)
	case float64:
		// epoch milliseconds, as serialized by JS clients
		if d <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(d)).UTC(), true
	default:
		return time.Time{}, false
	}
}
