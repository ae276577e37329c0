// Package client talks to the fleet operations API over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/boddenberg/treasury-stress-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// OpsClient fetches service records and bank transactions from the ops API.
type OpsClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewOpsClient creates a new OpsClient.
func NewOpsClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *OpsClient {
	return &OpsClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// ListServiceRecords fetches every trip with retry, circuit breaker, and tracing.
func (c *OpsClient) ListServiceRecords(ctx context.Context) ([]domain.ServiceRecord, error) {
	ctx, span := tracer.Start(ctx, "OpsClient.ListServiceRecords")
	defer span.End()

	records, err := resilience.Execute(ctx, c.cb, c.cfg, "ops/services", func(ctx context.Context) ([]domain.ServiceRecord, error) {
		var out []domain.ServiceRecord
		if err := c.getJSON(ctx, "/v1/services", "services", &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("records.count", len(records)))
	return records, nil
}

// ListBankTransactions fetches the bank statement lines.
func (c *OpsClient) ListBankTransactions(ctx context.Context) ([]domain.BankTransaction, error) {
	ctx, span := tracer.Start(ctx, "OpsClient.ListBankTransactions")
	defer span.End()

	txs, err := resilience.Execute(ctx, c.cb, c.cfg, "ops/bank-transactions", func(ctx context.Context) ([]domain.BankTransaction, error) {
		var out []domain.BankTransaction
		if err := c.getJSON(ctx, "/v1/bank-transactions", "bank-transactions", &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("transactions.count", len(txs)))
	return txs, nil
}

func (c *OpsClient) getJSON(ctx context.Context, path, resource string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resilience.Permanent(&domain.ErrNotFound{Resource: resource, ID: path})
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("ops API returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return resilience.Permanent(fmt.Errorf("ops API returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resilience.Permanent(fmt.Errorf("failed to decode %s: %w", resource, err))
	}
	return nil
}
