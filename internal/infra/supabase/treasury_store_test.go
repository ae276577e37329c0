package supabase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/boddenberg/treasury-stress-go/internal/infra/resilience"
	"github.com/boddenberg/treasury-stress-go/internal/infra/supabase"

	"go.uber.org/zap"
)

func newClient(t *testing.T, handler http.HandlerFunc) *supabase.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return supabase.NewClient(
		srv.Client(),
		srv.URL,
		"anon-key",
		"service-key",
		resilience.NewCircuitBreaker(t.Name()),
		resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond},
		zap.NewNop(),
	)
}

func TestListServiceRecords(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/services" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon-key" || r.Header.Get("Authorization") != "Bearer service-key" {
			t.Error("expected supabase auth headers")
		}
		if r.URL.Query().Get("offset") != "0" {
			t.Errorf("expected first page, got offset %s", r.URL.Query().Get("offset"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "s-1", "date": "2025-01-15T08:00:00Z", "status": "completed", "client_name": " BANCO X ",
			 "total_value": 100000, "driver_payment": "60.000", "total_cost": null},
			{"id": "s-2", "date": "garbage", "status": "CANCELLED", "client_name": "Acme",
			 "total_value": 5, "driver_payment": 3, "total_cost": 4}
		]`))
	})

	records, err := client.ListServiceRecords(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	r := records[0]
	if r.ClientName != "BANCO X" || r.Status != domain.ServiceCompleted {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.Financials.TotalValue != 100_000 || r.Financials.DriverPayment != 60_000 {
		t.Errorf("unexpected financials: %+v", r.Financials)
	}
	if !records[1].Date.IsZero() {
		t.Errorf("expected zero date for garbage input, got %s", records[1].Date)
	}
	if !records[1].IsCancelled() {
		t.Error("expected s-2 to be cancelled")
	}
}

func TestListBankTransactions(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/bank_transactions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"id": "t-1", "date": "2025-02-01", "amount": 250000, "type": "income", "description": "Recaudo BANCO X"}
		]`))
	})

	txs, err := client.ListBankTransactions(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(txs) != 1 || txs[0].Type != domain.TxIncome || txs[0].Amount != 250_000 {
		t.Errorf("unexpected transactions: %+v", txs)
	}
}

func TestListServiceRecords_NoContent(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	records, err := client.ListServiceRecords(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestListServiceRecords_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	})

	_, err := client.ListServiceRecords(context.Background())

	var extErr *domain.ErrExternalService
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

func TestListServiceRecords_MissingTable(t *testing.T) {
	calls := 0
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"relation \"public.services\" does not exist"}`))
	})

	records, err := client.ListServiceRecords(context.Background())

	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v (records=%d)", err, len(records))
	}
	if nf.ID != "services" {
		t.Errorf("expected missing table 'services', got '%s'", nf.ID)
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}
