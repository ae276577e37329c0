package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/boddenberg/treasury-stress-go/internal/infra/client"
	"github.com/boddenberg/treasury-stress-go/internal/infra/resilience"
)

func newOpsClient(t *testing.T, handler http.HandlerFunc) *client.OpsClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return client.NewOpsClient(
		srv.Client(),
		srv.URL,
		resilience.NewCircuitBreaker(t.Name()),
		resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond},
	)
}

func TestOpsClient_ListServiceRecords(t *testing.T) {
	c := newOpsClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/services" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"id": "s-1", "date": "2025-01-01", "status": "COMPLETED", "clientName": "BANCO X",
			 "financials": {"totalValue": 100000, "driverPayment": 60000}}
		]`))
	})

	records, err := c.ListServiceRecords(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 1 || records[0].Financials.TotalValue != 100_000 {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestOpsClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newOpsClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"date": "2025-01-02", "amount": -500, "type": "EXPENSE", "description": "PAGO NOMINA"}]`))
	})

	txs, err := c.ListBankTransactions(context.Background())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
	if len(txs) != 1 || txs[0].Amount != -500 {
		t.Errorf("unexpected transactions: %+v", txs)
	}
}

func TestOpsClient_NotFound(t *testing.T) {
	var calls atomic.Int32
	c := newOpsClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.ListServiceRecords(context.Background())

	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected no retries on 404, got %d calls", calls.Load())
	}
}

func TestOpsClient_BadPayload(t *testing.T) {
	c := newOpsClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	})

	_, err := c.ListServiceRecords(context.Background())

	var extErr *domain.ErrExternalService
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}
