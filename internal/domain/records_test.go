package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
)

func TestServiceRecord_UnmarshalJSON(t *testing.T) {
	data := `[
		{"id": "s-1", "date": "2025-01-15T08:30:00Z", "status": "COMPLETED", "clientName": "BANCO X",
		 "financials": {"totalValue": "$ 100.000", "driverPayment": 60000, "totalCost": 0}},
		{"id": "s-2", "date": "2025-01-16", "status": "ACTIVE", "financials": {"totalValue": 1}},
		{"id": "s-3", "date": 1736899200000, "status": "ACTIVE"},
		{"id": "s-4", "date": "not a date", "status": "CANCELLED"}
	]`

	var records []domain.ServiceRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	if !records[0].Date.Equal(time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected date: %s", records[0].Date)
	}
	if records[0].Financials.TotalValue != 100_000 || records[0].Financials.DriverPayment != 60_000 {
		t.Errorf("unexpected financials: %+v", records[0].Financials)
	}
	if records[0].ClientName != "BANCO X" {
		t.Errorf("expected client BANCO X, got %s", records[0].ClientName)
	}
	if !records[1].Date.Equal(time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date-only value: %s", records[1].Date)
	}
	if !records[2].Date.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected epoch-millis value: %s", records[2].Date)
	}
	if !records[3].Date.IsZero() {
		t.Errorf("expected zero date for unparseable input, got %s", records[3].Date)
	}
	if !records[3].IsCancelled() {
		t.Error("expected s-4 to be cancelled")
	}
}

func TestBankTransaction_UnmarshalJSON(t *testing.T) {
	data := `{"date": "2025-02-01 10:00:00", "amount": "-45.000", "type": "EXPENSE", "description": "PAGO NÓMINA"}`

	var tx domain.BankTransaction
	if err := json.Unmarshal([]byte(data), &tx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.Amount != -45_000 || tx.Type != domain.TxExpense {
		t.Errorf("unexpected transaction: %+v", tx)
	}
	if !tx.Date.Equal(time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date: %s", tx.Date)
	}
}

func TestBankTransaction_UnmarshalJSON_BadDate(t *testing.T) {
	data := `{"date": "yesterday", "amount": 250000, "type": "INCOME", "description": "Recaudo BANCO X"}`

	var tx domain.BankTransaction
	if err := json.Unmarshal([]byte(data), &tx); err != nil {
		t.Fatalf("expected the line to be kept, got %v", err)
	}
	if !tx.Date.IsZero() {
		t.Errorf("expected zero date, got %s", tx.Date)
	}
	if tx.Amount != 250_000 {
		t.Errorf("expected amount 250000, got %d", tx.Amount)
	}
}

func TestIsCancelled_CaseInsensitive(t *testing.T) {
	r := domain.ServiceRecord{Status: "cancelled"}
	if !r.IsCancelled() {
		t.Error("expected lowercase status to count as cancelled")
	}
}
