// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the treasury
// service from the concrete record sources.
package port

import (
	"context"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
)

// TreasuryStore supplies the raw inputs of a stress run. Implementations
// resolve every date and amount before returning; records with unparseable
// dates come back with a zero Date rather than being dropped.
type TreasuryStore interface {
	ListServiceRecords(ctx context.Context) ([]domain.ServiceRecord, error)
	ListBankTransactions(ctx context.Context) ([]domain.BankTransaction, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Flush()
	Len() int
}
