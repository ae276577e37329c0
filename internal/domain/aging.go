package domain

// ClientCategory drives the receivable split heuristic.
type ClientCategory string

const (
	CategoryBank       ClientCategory = "BANK"
	CategoryGovernment ClientCategory = "GOVERNMENT"
	CategoryGeneral    ClientCategory = "GENERAL_CORPORATE"
)

// RiskFlag marks clients whose overdue bucket crosses the threshold.
type RiskFlag string

const (
	RiskLow  RiskFlag = "LOW"
	RiskHigh RiskFlag = "HIGH"
)

// ClassificationRule assigns Category to any client whose upper-cased name
// contains one of Patterns. CurrentShare is the 0-30 day fraction.
type ClassificationRule struct {
	Category     ClientCategory `json:"category" yaml:"category"`
	Patterns     []string       `json:"patterns" yaml:"patterns"`
	CurrentShare float64        `json:"currentShare" yaml:"current_share"`
}

// ClassificationPolicy is evaluated in rule order; the first match wins and
// unmatched clients get DefaultShare as GENERAL_CORPORATE.
type ClassificationPolicy struct {
	Rules        []ClassificationRule `json:"rules" yaml:"rules"`
	DefaultShare float64              `json:"defaultShare" yaml:"default_share"`
}

// DefaultClassificationPolicy: banks pay well, government pays slow.
func DefaultClassificationPolicy() ClassificationPolicy {
	return ClassificationPolicy{
		Rules: []ClassificationRule{
			{Category: CategoryBank, Patterns: []string{"BANCO", "SUR"}, CurrentShare: 0.95},
			{Category: CategoryGovernment, Patterns: []string{"ALCALDÍA", "ALCALDIA", "GOB"}, CurrentShare: 0.40},
		},
		DefaultShare: 0.80,
	}
}

// ClientAgingProfile is one row of the receivables aging table.
// BucketCurrent + BucketOverdue == TotalOutstanding.
//
// CSV column order used by the export: name, risk, totalOutstanding,
// bucketCurrent, bucketOverdue.
type ClientAgingProfile struct {
	ClientName       string         `json:"clientName"`
	Category         ClientCategory `json:"category"`
	TotalOutstanding Money          `json:"totalOutstanding"`
	BucketCurrent    Money          `json:"bucketCurrent"`
	BucketOverdue    Money          `json:"bucketOverdue"`
	RiskFlag         RiskFlag       `json:"riskFlag"`
}
