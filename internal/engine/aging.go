package engine

import (
	"cmp"
	"slices"
	"strings"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/shopspring/decimal"
)

// unnamedClient groups records with no client name.
const unnamedClient = "PARTICULAR"

// AggregateAging builds one aging profile per client from the accepted
// records. INCOME bank transactions attributed to a client are netted
// against its debt. Profiles are sorted by TotalOutstanding descending, then
// by name.
func AggregateAging(
	records []domain.ServiceRecord,
	transactions []domain.BankTransaction,
	policy domain.ClassificationPolicy,
	riskThreshold domain.Money,
) []domain.ClientAgingProfile {
	debt := make(map[string]domain.Money)
	display := make(map[string]string)
	for _, r := range records {
		if r.IsCancelled() {
			continue
		}
		name := clientName(r.ClientName)
		key := strings.ToUpper(name)
		if _, ok := display[key]; !ok {
			display[key] = name
		}
		debt[key] += r.Financials.TotalValue
	}

	for key, received := range receivedByClient(transactions, display) {
		debt[key] -= received
	}

	profiles := make([]domain.ClientAgingProfile, 0, len(debt))
	for key, total := range debt {
		total = max(total, 0)
		category, share := Classify(display[key], policy)
		current := domain.MoneyFromDecimal(total.Decimal().Mul(decimal.NewFromFloat(share)))
		overdue := total - current

		risk := domain.RiskLow
		if overdue > riskThreshold {
			risk = domain.RiskHigh
		}
		profiles = append(profiles, domain.ClientAgingProfile{
			ClientName:       display[key],
			Category:         category,
			TotalOutstanding: total,
			BucketCurrent:    current,
			BucketOverdue:    overdue,
			RiskFlag:         risk,
		})
	}

	slices.SortFunc(profiles, func(a, b domain.ClientAgingProfile) int {
		if c := cmp.Compare(b.TotalOutstanding, a.TotalOutstanding); c != 0 {
			return c
		}
		return cmp.Compare(a.ClientName, b.ClientName)
	})
	return profiles
}

// Classify returns the first matching category and its current share.
func Classify(name string, policy domain.ClassificationPolicy) (domain.ClientCategory, float64) {
	upper := strings.ToUpper(name)
	for _, rule := range policy.Rules {
		for _, p := range rule.Patterns {
			if p != "" && strings.Contains(upper, strings.ToUpper(p)) {
				return rule.Category, rule.CurrentShare
			}
		}
	}
	return domain.CategoryGeneral, policy.DefaultShare
}

// receivedByClient attributes INCOME transactions to known clients, by
// ClientName first and otherwise by the longest client name found in the
// description (ties go to the alphabetically first name). Unattributed
// income is left for the portfolio totals.
func receivedByClient(transactions []domain.BankTransaction, clients map[string]string) map[string]domain.Money {
	received := make(map[string]domain.Money)
	for _, tx := range transactions {
		if tx.Type != domain.TxIncome {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(tx.ClientName))
		if _, ok := clients[key]; !ok {
			key = matchDescription(tx.Description, clients)
		}
		if key == "" {
			continue
		}
		received[key] += tx.Amount.Abs()
	}
	return received
}

func matchDescription(description string, clients map[string]string) string {
	desc := strings.ToUpper(description)
	best := ""
	for key := range clients {
		if !strings.Contains(desc, key) {
			continue
		}
		if len(key) > len(best) || (len(key) == len(best) && key < best) {
			best = key
		}
	}
	return best
}

func clientName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return unnamedClient
	}
	return name
}
