package engine

import (
	"strings"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/shopspring/decimal"
)

// assumedCostRatio is applied to records that carry no cost breakdown.
var assumedCostRatio = decimal.NewFromFloat(0.8)

// payrollMarkers identify bank expenses that settle driver payouts.
var payrollMarkers = []string{"NÓMINA", "NOMINA", "PAGO"}

// Analyze computes the financial summary strip. Cancelled records count as
// trips but contribute no money.
func Analyze(records []domain.ServiceRecord, transactions []domain.BankTransaction) domain.FinancialAnalytics {
	var a domain.FinancialAnalytics
	for _, r := range records {
		a.TotalTrips++
		if r.IsCancelled() {
			a.CancelledTrips++
			continue
		}
		if strings.EqualFold(string(r.Status), string(domain.ServiceCompleted)) {
			a.CompletedTrips++
		}

		f := r.Financials
		a.TotalRevenue += f.TotalValue
		cost := f.TotalCost
		if cost == 0 {
			cost = domain.MoneyFromDecimal(f.TotalValue.Decimal().Mul(assumedCostRatio))
		}
		a.TotalCost += cost
		a.CxpGenerated += f.DriverPayment
	}

	a.Margin = a.TotalRevenue - a.TotalCost
	if a.TotalRevenue != 0 {
		pct := a.Margin.Decimal().Div(a.TotalRevenue.Decimal()).Mul(decimal.NewFromInt(100)).Round(1)
		a.MarginPercent = pct.InexactFloat64()
	}

	var collected, paid domain.Money
	for _, tx := range transactions {
		switch {
		case tx.Type == domain.TxIncome:
			collected += tx.Amount.Abs()
		case tx.Type == domain.TxExpense && isPayrollPayment(tx):
			paid += tx.Amount.Abs()
		}
	}

	a.CxcGenerated = a.TotalRevenue
	a.CxcPending = a.CxcGenerated - collected
	a.CxpPending = max(a.CxpGenerated-paid, 0)
	return a
}

func isPayrollPayment(tx domain.BankTransaction) bool {
	text := strings.ToUpper(tx.Description + " " + tx.Category)
	for _, m := range payrollMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
