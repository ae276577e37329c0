package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/boddenberg/treasury-stress-go/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// serviceRow maps the services table.
type serviceRow struct {
	ID            string       `json:"id"`
	Date          string       `json:"date"`
	Status        string       `json:"status"`
	ClientName    string       `json:"client_name"`
	TotalValue    domain.Money `json:"total_value"`
	DriverPayment domain.Money `json:"driver_payment"`
	TotalCost     domain.Money `json:"total_cost"`
}

// bankTransactionRow maps the bank_transactions table.
type bankTransactionRow struct {
	ID          string       `json:"id"`
	Date        string       `json:"date"`
	Amount      domain.Money `json:"amount"`
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	ClientName  string       `json:"client_name"`
}

// ListServiceRecords reads every row of the services table.
func (c *Client) ListServiceRecords(ctx context.Context) ([]domain.ServiceRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListServiceRecords")
	defer span.End()

	rows, err := fetchAll[serviceRow](ctx, c, "services", "date.asc")
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("records.count", len(rows)))

	records := make([]domain.ServiceRecord, 0, len(rows))
	for _, r := range rows {
		date, ok := domain.ParseTimestamp(r.Date)
		if !ok {
			c.logger.Warn("supabase: service with unparseable date",
				zap.String("service_id", r.ID),
				zap.String("date", r.Date),
			)
		}
		records = append(records, domain.ServiceRecord{
			ID:         r.ID,
			Date:       date,
			Status:     domain.ServiceStatus(strings.ToUpper(r.Status)),
			ClientName: strings.TrimSpace(r.ClientName),
			Financials: domain.Financials{
				TotalValue:    r.TotalValue,
				DriverPayment: r.DriverPayment,
				TotalCost:     r.TotalCost,
			},
		})
	}
	return records, nil
}

// ListBankTransactions reads every row of the bank_transactions table.
func (c *Client) ListBankTransactions(ctx context.Context) ([]domain.BankTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBankTransactions")
	defer span.End()

	rows, err := fetchAll[bankTransactionRow](ctx, c, "bank_transactions", "date.asc")
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("transactions.count", len(rows)))

	txs := make([]domain.BankTransaction, 0, len(rows))
	for _, r := range rows {
		date, ok := domain.ParseTimestamp(r.Date)
		if !ok {
			c.logger.Warn("supabase: bank transaction with unparseable date",
				zap.String("transaction_id", r.ID),
				zap.String("date", r.Date),
			)
		}
		txs = append(txs, domain.BankTransaction{
			Date:        date,
			Amount:      r.Amount,
			Type:        domain.TxType(strings.ToUpper(r.Type)),
			Description: r.Description,
			Category:    r.Category,
			ClientName:  strings.TrimSpace(r.ClientName),
		})
	}
	return txs, nil
}

// fetchAll pages through table until a short page comes back.
func fetchAll[R any](ctx context.Context, c *Client, table, order string) ([]R, error) {
	var all []R
	for offset := 0; ; offset += pageSize {
		query := fmt.Sprintf("select=*&order=%s&limit=%d&offset=%d", order, pageSize, offset)

		page, err := resilience.Execute(ctx, c.cb, c.cfg, "supabase/"+table, func(ctx context.Context) ([]R, error) {
			body, err := c.doRequest(ctx, table, query)
			if err != nil {
				return nil, err
			}
			if len(body) == 0 {
				return nil, nil
			}
			var rows []R
			if err := json.Unmarshal(body, &rows); err != nil {
				return nil, resilience.Permanent(fmt.Errorf("failed to decode %s: %w", table, err))
			}
			return rows, nil
		})
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}
