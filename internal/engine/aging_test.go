package engine_test

import (
	"testing"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/boddenberg/treasury-stress-go/internal/engine"
)

func client(name string, value domain.Money) domain.ServiceRecord {
	return domain.ServiceRecord{
		ID:         name,
		Date:       day(2025, 1, 10),
		Status:     domain.ServiceCompleted,
		ClientName: name,
		Financials: domain.Financials{TotalValue: value},
	}
}

func findProfile(t *testing.T, profiles []domain.ClientAgingProfile, name string) domain.ClientAgingProfile {
	t.Helper()
	for _, p := range profiles {
		if p.ClientName == name {
			return p
		}
	}
	t.Fatalf("profile %q not found", name)
	return domain.ClientAgingProfile{}
}

func TestAggregateAging_BankClient(t *testing.T) {
	profiles := engine.AggregateAging(
		[]domain.ServiceRecord{client("BANCO X", 1_000_000)},
		nil,
		domain.DefaultClassificationPolicy(),
		20_000_000,
	)

	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	p := profiles[0]
	if p.Category != domain.CategoryBank {
		t.Errorf("expected BANK, got %s", p.Category)
	}
	if p.BucketCurrent != 950_000 || p.BucketOverdue != 50_000 {
		t.Errorf("expected 950000/50000, got %d/%d", p.BucketCurrent, p.BucketOverdue)
	}
	if p.RiskFlag != domain.RiskLow {
		t.Errorf("expected LOW risk, got %s", p.RiskFlag)
	}
}

func TestAggregateAging_Classification(t *testing.T) {
	records := []domain.ServiceRecord{
		client("Alcaldía de Medellín", 100_000_000),
		client("Acme Logística", 10_000),
		client("Acme Logística", 5_000),
		client("", 1_001),
		{ID: "x", ClientName: "BANCO CANCELADO", Status: domain.ServiceCancelled,
			Financials: domain.Financials{TotalValue: 9_999_999}},
	}

	profiles := engine.AggregateAging(records, nil, domain.DefaultClassificationPolicy(), 20_000_000)

	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}

	gov := findProfile(t, profiles, "Alcaldía de Medellín")
	if gov.Category != domain.CategoryGovernment {
		t.Errorf("expected GOVERNMENT, got %s", gov.Category)
	}
	if gov.BucketCurrent != 40_000_000 || gov.BucketOverdue != 60_000_000 {
		t.Errorf("expected 40M/60M, got %d/%d", gov.BucketCurrent, gov.BucketOverdue)
	}
	if gov.RiskFlag != domain.RiskHigh {
		t.Errorf("expected HIGH risk, got %s", gov.RiskFlag)
	}

	acme := findProfile(t, profiles, "Acme Logística")
	if acme.Category != domain.CategoryGeneral || acme.TotalOutstanding != 15_000 {
		t.Errorf("expected GENERAL_CORPORATE with 15000, got %s with %d", acme.Category, acme.TotalOutstanding)
	}
	if acme.BucketCurrent != 12_000 || acme.BucketOverdue != 3_000 {
		t.Errorf("expected 12000/3000, got %d/%d", acme.BucketCurrent, acme.BucketOverdue)
	}

	anon := findProfile(t, profiles, "PARTICULAR")
	if anon.BucketCurrent+anon.BucketOverdue != anon.TotalOutstanding {
		t.Errorf("buckets do not add up: %d + %d != %d", anon.BucketCurrent, anon.BucketOverdue, anon.TotalOutstanding)
	}
}

func TestAggregateAging_RiskThresholdIsStrict(t *testing.T) {
	// 100M general client: overdue is exactly 20M
	profiles := engine.AggregateAging(
		[]domain.ServiceRecord{client("Transportes Andinos", 100_000_000)},
		nil,
		domain.DefaultClassificationPolicy(),
		20_000_000,
	)
	if profiles[0].BucketOverdue != 20_000_000 {
		t.Fatalf("expected overdue 20M, got %d", profiles[0].BucketOverdue)
	}
	if profiles[0].RiskFlag != domain.RiskLow {
		t.Errorf("expected LOW at the threshold, got %s", profiles[0].RiskFlag)
	}
}

func TestAggregateAging_NetsIncome(t *testing.T) {
	records := []domain.ServiceRecord{
		client("BANCO X", 1_000_000),
		client("Acme", 10_000),
		client("Paid Up", 3_000),
	}
	transactions := []domain.BankTransaction{
		{Type: domain.TxIncome, Amount: 4_000, ClientName: "acme"},
		{Type: domain.TxIncome, Amount: 200_000, Description: "Transferencia BANCO X factura 12"},
		{Type: domain.TxIncome, Amount: 5_000, ClientName: "Paid Up"},
		{Type: domain.TxExpense, Amount: -500_000, Description: "BANCO X comision"},
		{Type: domain.TxIncome, Amount: 1_000, Description: "unknown payer"},
	}

	profiles := engine.AggregateAging(records, transactions, domain.DefaultClassificationPolicy(), 20_000_000)

	if got := findProfile(t, profiles, "Acme").TotalOutstanding; got != 6_000 {
		t.Errorf("expected Acme 6000, got %d", got)
	}
	if got := findProfile(t, profiles, "BANCO X").TotalOutstanding; got != 800_000 {
		t.Errorf("expected BANCO X 800000, got %d", got)
	}
	paid := findProfile(t, profiles, "Paid Up")
	if paid.TotalOutstanding != 0 || paid.BucketCurrent != 0 || paid.BucketOverdue != 0 {
		t.Errorf("expected overpaid client floored at zero, got %+v", paid)
	}
}

func TestAggregateAging_SortOrder(t *testing.T) {
	records := []domain.ServiceRecord{
		client("Beta", 500),
		client("Alpha", 500),
		client("Gamma", 900),
	}

	profiles := engine.AggregateAging(records, nil, domain.DefaultClassificationPolicy(), 20_000_000)

	want := []string{"Gamma", "Alpha", "Beta"}
	for i, name := range want {
		if profiles[i].ClientName != name {
			t.Errorf("position %d: expected %s, got %s", i, name, profiles[i].ClientName)
		}
	}
}

func TestClassify_CustomPolicy(t *testing.T) {
	policy := domain.ClassificationPolicy{
		Rules: []domain.ClassificationRule{
			{Category: "COOPERATIVE", Patterns: []string{"coop"}, CurrentShare: 0.5},
		},
		DefaultShare: 1,
	}

	category, share := engine.Classify("Coopetrans Ltda", policy)
	if category != "COOPERATIVE" || share != 0.5 {
		t.Errorf("expected COOPERATIVE/0.5, got %s/%v", category, share)
	}

	category, share = engine.Classify("BANCO X", policy)
	if category != domain.CategoryGeneral || share != 1 {
		t.Errorf("expected GENERAL_CORPORATE/1, got %s/%v", category, share)
	}
}

func TestAggregateAging_DescriptionTieIsDeterministic(t *testing.T) {
	records := []domain.ServiceRecord{client("ACME", 100_000), client("BETA", 100_000)}
	txs := []domain.BankTransaction{
		{Date: day(2025, 1, 20), Type: domain.TxIncome, Amount: 10_000, Description: "Transferencia BETA / ACME"},
	}

	// map iteration order changes between runs; the attribution must not
	for i := 0; i < 50; i++ {
		profiles := engine.AggregateAging(records, txs, domain.DefaultClassificationPolicy(), 20_000_000)

		if got := findProfile(t, profiles, "ACME").TotalOutstanding; got != 90_000 {
			t.Fatalf("run %d: expected ACME outstanding 90000, got %d", i, got)
		}
		if got := findProfile(t, profiles, "BETA").TotalOutstanding; got != 100_000 {
			t.Fatalf("run %d: expected BETA outstanding 100000, got %d", i, got)
		}
	}
}
